// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio acting as the logged-in user
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/medcrm/handlers"
)

// MCPCommand starts the MCP server on stdio. Each tool call resolves the
// session again so logging out stops further calls.
func MCPCommand(ctx context.Context, app *App) error {
	app.Logger.Info("starting MCP server", zap.String("session", app.Sessions.Path()))

	h := handlers.New(app.Service, app.Actor)
	server := handlers.NewServer(h, app.Version)

	return server.Run(ctx, &mcp.StdioTransport{})
}
