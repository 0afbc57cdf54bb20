// ABOUTME: Backup CLI commands: full export/restore, salesperson hand-off, workday merge and XLSX
// ABOUTME: Files default to the conventional backup names in the current directory
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/harperreed/medcrm/backup"
	"github.com/harperreed/medcrm/models"
)

// BackupCommand dispatches the backup subcommands.
func BackupCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("backup requires a subcommand: full, restore, export-salesperson, workday, import, merge or xlsx")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "full":
		return backupFull(ctx, app, rest)
	case "restore":
		return backupRestore(ctx, app, rest)
	case "export-salesperson":
		return backupExportSalesperson(ctx, app, rest)
	case "workday":
		return backupWorkday(ctx, app, rest)
	case "import":
		return backupImport(ctx, app, rest)
	case "merge":
		return backupMerge(ctx, app, rest)
	case "xlsx":
		return backupWorkbook(ctx, app, rest)
	default:
		return fmt.Errorf("unknown backup command: %s", sub)
	}
}

// writeOutput writes data to path, or to stdout when path is "-".
func (a *App) writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := a.Out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(a.Out, "✓ Wrote %s\n", path)
	return nil
}

func encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return append(data, '\n'), nil
}

func readInput(fs *flag.FlagSet) ([]byte, error) {
	if fs.NArg() < 1 {
		return nil, fmt.Errorf("backup file required")
	}
	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	return data, nil
}

func backupFull(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("backup full")
	output := fs.String("output", "", "Output file, - for stdout (default: black-medical-full-backup-<date>.json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	b, err := app.Service.ExportFull(ctx, me)
	if err != nil {
		return err
	}
	data, err := encode(b)
	if err != nil {
		return err
	}
	path := *output
	if path == "" {
		path = backup.FullFilename(time.Now())
	}
	return app.writeOutput(path, data)
}

func backupRestore(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("backup restore")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := readInput(fs)
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.RestoreFull(ctx, me, data); err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "✓ Full backup restored")
	return nil
}

func backupExportSalesperson(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("backup export-salesperson")
	output := fs.String("output", "", "Output file, - for stdout (default: backup-vendedor-<name>-<date>.json)")
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
	b, err := app.Service.ExportSalesperson(ctx, me, id)
	if err != nil {
		return err
	}
	data, err := encode(b)
	if err != nil {
		return err
	}
	path := *output
	if path == "" {
		name := id
		if sp, ok := find(b.Salespeople, id, func(s models.Salesperson) string { return s.ID }); ok {
			name = sp.Name
		}
		path = backup.SalespersonFilename(name, time.Now())
	}
	return app.writeOutput(path, data)
}

func backupWorkday(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("backup workday")
	output := fs.String("output", "", "Output file, - for stdout (default: jornada-<name>-<date>.json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	b, err := app.Service.ExportWorkday(ctx, me)
	if err != nil {
		return err
	}
	data, err := encode(b)
	if err != nil {
		return err
	}
	path := *output
	if path == "" {
		path = backup.WorkdayFilename(me.Name, time.Now())
	}
	return app.writeOutput(path, data)
}

func backupImport(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("backup import")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := readInput(fs)
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.ImportFromAdmin(ctx, me, data); err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "✓ Data imported from administrator backup")
	return nil
}

func backupMerge(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("backup merge")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := readInput(fs)
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.MergeWorkday(ctx, me, data); err != nil {
		return err
	}
	fmt.Fprintln(app.Out, "✓ Workday merged")
	return nil
}

func backupWorkbook(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("backup xlsx")
	output := fs.String("output", "", "Output file (default: black-medical-<date>.xlsx)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := app.Service.ExportWorkbook(ctx, me, &buf); err != nil {
		return err
	}
	path := *output
	if path == "" {
		path = fmt.Sprintf("black-medical-%s.xlsx", time.Now().Format(models.DateLayout))
	}
	return app.writeOutput(path, buf.Bytes())
}
