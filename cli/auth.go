// ABOUTME: Session CLI commands: login, logout, whoami, passwd and reset
// ABOUTME: The session file stores the logged-in user between invocations
package cli

import (
	"context"
	"fmt"

	"github.com/harperreed/medcrm/crm"
)

// LoginCommand checks credentials and stores the session
func LoginCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("login")
	userID := fs.String("user", "", "User ID (ADM for the administrator)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userID == "" && fs.NArg() > 0 {
		*userID = fs.Arg(0)
	}
	if *userID == "" {
		return fmt.Errorf("--user is required")
	}

	password, err := app.readPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := app.Service.Login(ctx, *userID, password)
	if err != nil {
		return err
	}
	if err := app.Sessions.Save(*user); err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "✓ Logged in as %s (%s)\n", user.Name, user.Role)
	if user.MustChangePassword {
		fmt.Fprintln(app.Out, "  You must set a new password before continuing: medcrm passwd")
	}
	return nil
}

func LogoutCommand(ctx context.Context, app *App, args []string) error {
	if err := app.Sessions.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "✓ Logged out")
	return nil
}

func WhoAmICommand(ctx context.Context, app *App, args []string) error {
	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "%s (ID: %s)\n", me.Name, me.ID)
	fmt.Fprintf(app.Out, "  Role: %s\n", me.Role)
	if me.Email != "" {
		fmt.Fprintf(app.Out, "  Email: %s\n", me.Email)
	}
	if me.MustChangePassword {
		fmt.Fprintln(app.Out, "  Password change required")
	}
	return nil
}

// PasswdCommand changes the current user's password. A forced change
// skips the old password prompt.
func PasswdCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("passwd")
	if err := fs.Parse(args); err != nil {
		return err
	}
	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}

	var old string
	if !me.MustChangePassword {
		if old, err = app.readPassword("Current password: "); err != nil {
			return err
		}
	}
	newPassword, err := app.readPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := app.readPassword("Repeat new password: ")
	if err != nil {
		return err
	}
	if newPassword != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if me.MustChangePassword {
		me, err = app.Service.ChangePassword(ctx, me, newPassword)
	} else {
		me, err = app.Service.ChangeOwnPassword(ctx, me, old, newPassword)
	}
	if err != nil {
		return err
	}
	if err := app.Sessions.Save(*me); err != nil {
		return err
	}

	fmt.Fprintln(app.Out, "✓ Password changed")
	return nil
}

// ResetCommand wipes all data. It needs --yes.
func ResetCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("reset")
	yes := fs.Bool("yes", false, "Confirm deleting every record")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("%w: reset deletes all data, pass --yes to confirm", crm.ErrValidation)
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.ResetData(ctx, me); err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "✓ All data has been reset")
	return nil
}
