// ABOUTME: Long-running front ends: the HTTP API server and the terminal UI
// ABOUTME: Both run until the context is cancelled or the user quits
package cli

import (
	"context"

	"github.com/harperreed/medcrm/tui"
	"github.com/harperreed/medcrm/web"
)

// ServeCommand runs the HTTP API. Clients authenticate with their own
// credentials, so no CLI session is needed.
func ServeCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", app.Config.HTTPAddr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	server, err := web.NewServer(app.Service, web.Options{
		Addr:      *addr,
		JWTSecret: app.Config.JWTSecret,
		TokenTTL:  app.Config.TokenTTL,
	}, app.Logger)
	if err != nil {
		return err
	}
	return server.Start(ctx)
}

// TUICommand opens the terminal UI as the logged-in user.
func TUICommand(ctx context.Context, app *App, args []string) error {
	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return tui.Run(ctx, app.Service, me)
}
