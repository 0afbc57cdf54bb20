// ABOUTME: Entry point for the Black Medical CRM CLI, MCP server, TUI and HTTP API
// ABOUTME: Loads config, opens the store and routes to the requested command
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/harperreed/medcrm/cli"
	"github.com/harperreed/medcrm/config"
	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/db"
	"github.com/harperreed/medcrm/logging"
)

const version = "0.2.0"

var commands = map[string]cli.Command{
	"login":     cli.LoginCommand,
	"logout":    cli.LogoutCommand,
	"whoami":    cli.WhoAmICommand,
	"passwd":    cli.PasswdCommand,
	"reset":     cli.ResetCommand,
	"crm":       cli.CRMCommand,
	"backup":    cli.BackupCommand,
	"search":    cli.SearchCommand,
	"dashboard": cli.DashboardCommand,
	"serve":     cli.ServeCommand,
	"tui":       cli.TUICommand,
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/medcrm/crm.db)")
	backend := flag.String("backend", "", "Storage backend: sqlite or badger (default: $CRM_BACKEND or sqlite)")
	envFile := flag.String("env", ".env", "Environment file to load")
	flag.Usage = printUsage

	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("medcrm version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	if err := run(args, *envFile, *dbPath, *backend); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, envFile, dbPath, backend string) error {
	command, commandArgs := args[0], args[1:]
	if command == "help" {
		printUsage()
		return nil
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if backend != "" {
		cfg.Backend = backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path := cfg.DatabasePath()
	store, err := db.OpenBackend(cfg.Backend, path)
	if err != nil {
		return err
	}
	repo := db.NewRepository(store, logger)
	defer func() { _ = repo.Close() }()
	logger.Debug("opened store", zap.String("backend", cfg.Backend), zap.String("path", path))

	opts := []crm.Option{crm.WithLogger(logger)}
	if cfg.AdminPassword != "" {
		opts = append(opts, crm.WithAdminPassword(cfg.AdminPassword))
	}
	svc := crm.NewService(repo, opts...)
	if err := svc.Bootstrap(ctx); err != nil {
		return err
	}

	app := cli.NewApp(svc, db.NewSessionStore(cfg.SessionPath, logger), cfg, logger, version)

	switch command {
	case "mcp":
		return cli.MCPCommand(ctx, app)
	case "viz":
		if len(commandArgs) == 0 || commandArgs[0] != "graph" {
			return fmt.Errorf("viz requires a subcommand: graph")
		}
		return cli.VizGraphCommand(ctx, app, commandArgs[1:])
	}

	cmd, ok := commands[command]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
	return cmd(ctx, app, commandArgs)
}

func printUsage() {
	fmt.Printf(`medcrm - Black Medical CRM v%s

USAGE:
  medcrm [global flags] <command> [flags] [args]

GLOBAL FLAGS:
  --version                 Show version and exit
  --db-path <path>          Database path (default: ~/.local/share/medcrm/crm.db)
  --backend <name>          Storage backend: sqlite or badger
  --env <file>              Environment file to load (default: .env)

SESSION:
  medcrm login --user <id>  Log in (prompts for the password)
  medcrm logout             End the session
  medcrm whoami             Show the logged-in user
  medcrm passwd             Change your password

RECORDS:
  medcrm crm <command>      Manage clients, leads, opportunities, tasks,
                            tickets, interactions, products, salespeople
                            and WhatsApp templates
    Note: flags must come before the record ID

  medcrm search <term>      Search visible records (at least 2 characters)
  medcrm dashboard          Show KPIs
    --range <r>               all, 7d, 30d or month

BACKUPS:
  medcrm backup full [--output <file>]         Full backup (admin)
  medcrm backup restore <file>                 Replace everything (admin)
  medcrm backup export-salesperson <id>        Hand-off file for a salesperson (admin)
  medcrm backup workday [--output <file>]      End-of-day export (salesperson)
  medcrm backup import <file>                  Load an admin hand-off (salesperson)
  medcrm backup merge <file>                   Merge a workday export (admin)
  medcrm backup xlsx [--output <file>]         Excel workbook of your view

VIZ:
  medcrm viz graph          Pipeline graph in DOT
    --client <id>             Center on one client
    --svg                     Render SVG instead of DOT
    --output <file>           Output file (default: stdout)

SERVERS:
  medcrm mcp                MCP server on stdio, acting as the logged-in user
  medcrm serve              HTTP JSON API (needs CRM_JWT_SECRET)
    --addr <addr>             Listen address (default: %s)
  medcrm tui                Full-screen terminal UI

ADMIN:
  medcrm reset --yes        Wipe all data and restore the default admin

CRM COMMANDS:
`, version, config.DefaultHTTPAddr)
	cli.PrintCRMCommands(os.Stdout)
	fmt.Print(`
EXAMPLES:
  # First login as the administrator
  medcrm login --user ADM

  # Add a lead and convert it into an opportunity
  medcrm crm add-lead --name "Eva Ruiz" --company "Clínica Norte" --phone "+34 600 111 222"
  medcrm crm convert-lead --product <product-id>:2 <lead-id>

  # Move an opportunity to won (creates the client)
  medcrm crm set-stage <opportunity-id> Ganada
`)
}
