// ABOUTME: Salesperson management CLI commands for administrators
// ABOUTME: New accounts get a temporary password that must be changed on first login
package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/medcrm/models"
)

// AddSalespersonCommand creates a salesperson and prompts for their
// temporary password
func AddSalespersonCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("add-salesperson")
	name := fs.String("name", "", "Full name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	address := fs.String("address", "", "Postal address")
	title := fs.String("title", "", "Job title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	password, err := app.readPassword("Temporary password: ")
	if err != nil {
		return err
	}

	sp, err := app.Service.AddSalesperson(ctx, me, models.Salesperson{
		Name:    *name,
		Email:   *email,
		Phone:   *phone,
		Address: *address,
		Title:   *title,
	}, password)
	if err != nil {
		return fmt.Errorf("failed to create salesperson: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Salesperson created: %s (ID: %s)\n", sp.Name, sp.ID)
	fmt.Fprintf(app.Out, "  Log in with: medcrm login --user %s\n", sp.ID)
	return nil
}

func ListSalespeopleCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("list-salespeople")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	view, err := app.Service.View(ctx, me)
	if err != nil {
		return err
	}

	if len(view.Salespeople) == 0 {
		fmt.Fprintln(app.Out, "No salespeople found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTITLE\tEMAIL\tPHONE\tID")
	fmt.Fprintln(w, "----\t-----\t-----\t-----\t--")
	for _, sp := range view.Salespeople {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", sp.Name, dash(sp.Title), dash(sp.Email), dash(sp.Phone), sp.ID)
	}
	_ = w.Flush()
	return nil
}

// UpdateSalespersonCommand patches a profile. --reset-password prompts
// for a new temporary password.
func UpdateSalespersonCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("update-salesperson")
	name := fs.String("name", "", "Full name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	address := fs.String("address", "", "Postal address")
	title := fs.String("title", "", "Job title")
	reset := fs.Bool("reset-password", false, "Set a new temporary password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "salesperson")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	view, err := app.Service.View(ctx, me)
	if err != nil {
		return err
	}
	sp, ok := find(view.Salespeople, id, func(s models.Salesperson) string { return s.ID })
	if !ok {
		return notFoundErr("salesperson", id)
	}

	if isSet(fs, "name") {
		sp.Name = *name
	}
	if isSet(fs, "email") {
		sp.Email = *email
	}
	if isSet(fs, "phone") {
		sp.Phone = *phone
	}
	if isSet(fs, "address") {
		sp.Address = *address
	}
	if isSet(fs, "title") {
		sp.Title = *title
	}

	var password string
	if *reset {
		if password, err = app.readPassword("Temporary password: "); err != nil {
			return err
		}
	}

	updated, err := app.Service.UpdateSalesperson(ctx, me, sp, password)
	if err != nil {
		return fmt.Errorf("failed to update salesperson: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Salesperson updated: %s\n", updated.Name)
	if *reset {
		fmt.Fprintln(app.Out, "  They must change the password on next login")
	}
	return nil
}

// DeleteSalespersonCommand removes a salesperson; their records move to
// the administrator
func DeleteSalespersonCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("delete-salesperson")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "salesperson")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteSalesperson(ctx, me, id); err != nil {
		return fmt.Errorf("failed to delete salesperson: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Salesperson deleted: %s (records reassigned to %s)\n", id, models.AdminID)
	return nil
}
