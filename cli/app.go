// ABOUTME: Shared state for CLI commands: service, session store and I/O
// ABOUTME: Resolves the logged-in user and prompts for passwords
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/harperreed/medcrm/config"
	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/db"
	"github.com/harperreed/medcrm/models"
)

// App bundles what every command needs.
type App struct {
	Service  *crm.Service
	Sessions *db.SessionStore
	Config   *config.Config
	Logger   *zap.Logger
	Version  string

	Out io.Writer
	In  io.Reader

	reader *bufio.Reader
}

func NewApp(svc *crm.Service, sessions *db.SessionStore, cfg *config.Config, logger *zap.Logger, version string) *App {
	return &App{
		Service:  svc,
		Sessions: sessions,
		Config:   cfg,
		Logger:   logger,
		Version:  version,
		Out:      os.Stdout,
		In:       os.Stdin,
	}
}

// CurrentUser returns the session user refreshed from the store. A session
// whose account was deleted is cleared.
func (a *App) CurrentUser(ctx context.Context) (*models.User, error) {
	stored, err := a.Sessions.Load()
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("%w: run 'medcrm login' first", crm.ErrUnauthenticated)
	}
	user, err := a.Service.ResolveSession(ctx, stored)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = a.Sessions.Clear()
		return nil, fmt.Errorf("%w: session expired, run 'medcrm login' again", crm.ErrUnauthenticated)
	}
	if *user != *stored {
		if err := a.Sessions.Save(*user); err != nil {
			a.Logger.Warn("failed to refresh session", zap.Error(err))
		}
	}
	return user, nil
}

// Actor adapts CurrentUser for the MCP handlers.
func (a *App) Actor(ctx context.Context) (*models.User, error) {
	return a.CurrentUser(ctx)
}

// readPassword prompts without echo on a terminal and reads a plain line
// otherwise.
func (a *App) readPassword(prompt string) (string, error) {
	if f, ok := a.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.Out, prompt)
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.Out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(pw), nil
	}

	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// isSet reports whether the named flag was given on the command line.
func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func argID(fs *flag.FlagSet, kind string) (string, error) {
	if fs.NArg() < 1 {
		return "", fmt.Errorf("%s ID required", kind)
	}
	return fs.Arg(0), nil
}

func find[T any](items []T, want string, id func(T) string) (T, bool) {
	for _, item := range items {
		if id(item) == want {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func notFoundErr(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, crm.ErrNotFound)
}
