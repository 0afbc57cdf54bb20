// ABOUTME: Tests for the CLI commands
// ABOUTME: Drives commands against a temporary SQLite store and session file
package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/medcrm/config"
	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/db"
	"github.com/harperreed/medcrm/models"
)

type cliEnv struct {
	app *App
	out *bytes.Buffer
	ctx context.Context
	dir string
}

func setupTestCLI(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()

	backend, err := db.OpenBackend(db.BackendSQLite, filepath.Join(dir, "crm.db"))
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	repo := db.NewRepository(backend, logger)
	t.Cleanup(func() { _ = repo.Close() })

	svc := crm.NewService(repo, crm.WithLogger(logger), crm.WithHashCost(bcrypt.MinCost))
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx))

	sessions := db.NewSessionStore(filepath.Join(dir, "session.json"), logger)
	app := NewApp(svc, sessions, &config.Config{}, logger, "test")
	out := &bytes.Buffer{}
	app.Out = out
	app.In = strings.NewReader("")

	return &cliEnv{app: app, out: out, ctx: ctx, dir: dir}
}

// input feeds answers to the next password prompts.
func (e *cliEnv) input(lines ...string) {
	e.app.In = strings.NewReader(strings.Join(lines, "\n") + "\n")
	e.app.reader = nil
}

func (e *cliEnv) run(t *testing.T, cmd Command, args ...string) string {
	t.Helper()
	e.out.Reset()
	require.NoError(t, cmd(e.ctx, e.app, args))
	return e.out.String()
}

func (e *cliEnv) loginAdmin(t *testing.T) {
	t.Helper()
	e.input(crm.DefaultAdminPassword)
	e.run(t, LoginCommand, "--user", models.AdminID)
}

func TestCommandsRequireLogin(t *testing.T) {
	env := setupTestCLI(t)

	err := WhoAmICommand(env.ctx, env.app, nil)
	assert.ErrorIs(t, err, crm.ErrUnauthenticated)

	err = ListClientsCommand(env.ctx, env.app, nil)
	assert.ErrorIs(t, err, crm.ErrUnauthenticated)
}

func TestLoginWhoAmILogout(t *testing.T) {
	env := setupTestCLI(t)

	env.input("wrong-password")
	err := LoginCommand(env.ctx, env.app, []string{"--user", models.AdminID})
	assert.ErrorIs(t, err, crm.ErrInvalidCredentials)

	env.loginAdmin(t)
	out := env.run(t, WhoAmICommand)
	assert.Contains(t, out, "Admin Manager (ID: ADM)")
	assert.Contains(t, out, "Role: admin")

	env.run(t, LogoutCommand)
	_, err = os.Stat(env.app.Sessions.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestSalespersonForcedPasswordChange(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	env.input("temporal1")
	out := env.run(t, AddSalespersonCommand, "--name", "Ana López")
	require.Contains(t, out, "✓ Salesperson created")
	view, err := env.app.Service.View(env.ctx, mustUser(t, env))
	require.NoError(t, err)
	spID := view.Salespeople[0].ID

	env.input("temporal1")
	out = env.run(t, LoginCommand, "--user", spID)
	assert.Contains(t, out, "You must set a new password")

	err = ListLeadsCommand(env.ctx, env.app, nil)
	assert.ErrorIs(t, err, crm.ErrPasswordChangeRequired)

	env.input("nuevaClave1", "otraClave1")
	err = PasswdCommand(env.ctx, env.app, nil)
	assert.EqualError(t, err, "passwords do not match")

	env.input("nuevaClave1", "nuevaClave1")
	env.run(t, PasswdCommand)

	out = env.run(t, ListLeadsCommand)
	assert.Contains(t, out, "No leads found")
}

func mustUser(t *testing.T, env *cliEnv) *models.User {
	t.Helper()
	u, err := env.app.CurrentUser(env.ctx)
	require.NoError(t, err)
	return u
}

func TestStaleSessionIsCleared(t *testing.T) {
	env := setupTestCLI(t)
	require.NoError(t, env.app.Sessions.Save(models.User{ID: "sales-404", Name: "Ghost", Role: models.RoleSalesperson}))

	_, err := env.app.CurrentUser(env.ctx)
	assert.ErrorIs(t, err, crm.ErrUnauthenticated)

	stored, err := env.app.Sessions.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestClientCommands(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	out := env.run(t, AddClientCommand, "--name", "Hospital X", "--contact", "Dr. Ruiz")
	assert.Contains(t, out, "✓ Client created: Hospital X")

	view, err := env.app.Service.View(env.ctx, mustUser(t, env))
	require.NoError(t, err)
	id := view.Clients[0].ID

	env.run(t, UpdateClientCommand, "--phone", "600111222", id)
	out = env.run(t, ListClientsCommand)
	assert.Contains(t, out, "Hospital X")
	assert.Contains(t, out, "Dr. Ruiz")
	assert.Contains(t, out, "600111222")
	assert.Contains(t, out, "Total: 1 client(s)")

	err = AddClientCommand(env.ctx, env.app, nil)
	assert.EqualError(t, err, "--name is required")

	env.run(t, DeleteClientCommand, id)
	out = env.run(t, ListClientsCommand)
	assert.Contains(t, out, "No clients found")
}

func TestOpportunityFlow(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	env.run(t, AddProductCommand, "--name", "Monitor", "--price", "100")
	me := mustUser(t, env)
	view, err := env.app.Service.View(env.ctx, me)
	require.NoError(t, err)
	productID := view.Products[0].ID

	out := env.run(t, AddOpportunityCommand, "--client-name", "Hospital X", "--product", productID+":2")
	assert.Contains(t, out, "✓ Opportunity created: Hospital X")
	assert.Contains(t, out, "Value: €200")

	out = env.run(t, ListTasksCommand)
	assert.Contains(t, out, "Cierre Oportunidad: Hospital X")

	view, err = env.app.Service.View(env.ctx, me)
	require.NoError(t, err)
	oppID := view.Opportunities[0].ID

	out = env.run(t, SetStageCommand, oppID, models.StageWon)
	assert.Contains(t, out, "is now Ganada")
	assert.Contains(t, out, "Client:")

	out = env.run(t, ListClientsCommand)
	assert.Contains(t, out, "Hospital X")

	err = AddOpportunityCommand(env.ctx, env.app, []string{"--client-name", "Y", "--product", "bad"})
	assert.Error(t, err)
}

func TestConvertLeadCommand(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	env.run(t, AddLeadCommand, "--name", "Eva", "--company", "Clinica Y", "--phone", "+34 600 111 222")
	me := mustUser(t, env)
	view, err := env.app.Service.View(env.ctx, me)
	require.NoError(t, err)
	leadID := view.Leads[0].ID

	out := env.run(t, ConvertLeadCommand, "--stage", models.StageWon, leadID)
	assert.Contains(t, out, "✓ Opportunity created: Clinica Y")
	assert.Contains(t, out, "Client:")

	out = env.run(t, ListLeadsCommand)
	assert.Contains(t, out, models.LeadStatusQualified)
}

func TestStatusCommandsNeedTwoArguments(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	err := SetTaskStatusCommand(env.ctx, env.app, []string{"task-1"})
	assert.EqualError(t, err, "usage: <task-id> <status>")
}

func TestSetTaskStatusJoinsWords(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	env.run(t, AddTaskCommand, "--title", "Llamar", "--due", "2024-06-20")
	view, err := env.app.Service.View(env.ctx, mustUser(t, env))
	require.NoError(t, err)

	out := env.run(t, SetTaskStatusCommand, view.Tasks[0].ID, "En", "Progreso")
	assert.Contains(t, out, "is now En Progreso")
}

func TestBackupFullRoundTrip(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	env.run(t, AddClientCommand, "--name", "Hospital X")
	path := filepath.Join(env.dir, "full.json")
	out := env.run(t, BackupCommand, "full", "--output", path)
	assert.Contains(t, out, "✓ Wrote "+path)

	env.run(t, ResetCommand, "--yes")
	out = env.run(t, ListClientsCommand)
	assert.Contains(t, out, "No clients found")

	env.run(t, BackupCommand, "restore", path)
	out = env.run(t, ListClientsCommand)
	assert.Contains(t, out, "Hospital X")
}

func TestResetNeedsConfirmation(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	err := ResetCommand(env.ctx, env.app, nil)
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestBackupXLSX(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	path := filepath.Join(env.dir, "crm.xlsx")
	env.run(t, BackupCommand, "xlsx", "--output", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestSearchAndDashboard(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	env.run(t, AddClientCommand, "--name", "Hospital Norte")

	out := env.run(t, SearchCommand, "norte")
	assert.Contains(t, out, "Hospital Norte")
	assert.Contains(t, out, "Total: 1 result(s)")

	err := SearchCommand(env.ctx, env.app, []string{"n"})
	assert.Error(t, err)

	out = env.run(t, DashboardCommand, "--range", "month")
	assert.Contains(t, out, "BLACK MEDICAL CRM DASHBOARD")

	err = DashboardCommand(env.ctx, env.app, []string{"--range", "year"})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestVizGraphCommand(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	env.run(t, AddOpportunityCommand, "--client-name", "Hospital X")
	out := env.run(t, VizGraphCommand)
	assert.Contains(t, out, "digraph")
}

func TestCRMDispatch(t *testing.T) {
	env := setupTestCLI(t)
	env.loginAdmin(t)

	err := CRMCommand(env.ctx, env.app, []string{"frobnicate"})
	assert.EqualError(t, err, "unknown crm command: frobnicate")

	out := env.run(t, CRMCommand, "list-products")
	assert.Contains(t, out, "No products found")

	var help bytes.Buffer
	PrintCRMCommands(&help)
	assert.Contains(t, help.String(), "medcrm crm add-client")
}
