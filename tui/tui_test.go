// ABOUTME: Tests for the TUI model
// ABOUTME: Drives key messages through Update against a temporary store
package tui

import (
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/db"
	"github.com/harperreed/medcrm/models"
)

func setupTestModel(t *testing.T) (Model, *crm.Service, *models.User) {
	t.Helper()
	backend, err := db.OpenBackend(db.BackendSQLite, filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	repo := db.NewRepository(backend, logger)
	t.Cleanup(func() { _ = repo.Close() })

	svc := crm.NewService(repo, crm.WithLogger(logger), crm.WithHashCost(bcrypt.MinCost))
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx))
	admin, err := svc.Login(ctx, models.AdminID, crm.DefaultAdminPassword)
	require.NoError(t, err)

	return NewModel(ctx, svc, admin), svc, admin
}

// loaded runs the initial load the way the bubbletea runtime would.
func loaded(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(m.Init()())
	return next.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = next.(Model)
		// Commands issued while typing a filter only blink the cursor.
		if cmd != nil && !m.searching {
			if out := cmd(); out != nil {
				if _, ok := out.(viewLoadedMsg); ok {
					next, _ = m.Update(out)
					m = next.(Model)
				}
			}
		}
	}
	return m
}

func TestListShowsClients(t *testing.T) {
	m, svc, admin := setupTestModel(t)
	_, err := svc.AddClient(context.Background(), admin, models.Client{Name: "Hospital Norte", ContactPerson: "Dr. Ruiz"})
	require.NoError(t, err)

	m = loaded(t, m)
	out := m.View()
	assert.Contains(t, out, "Clients")
	assert.Contains(t, out, "Hospital Norte")
	assert.Contains(t, out, "Dr. Ruiz")
}

func TestTabSwitchesCollections(t *testing.T) {
	m, _, _ := setupTestModel(t)
	m = loaded(t, m)

	m = press(m, "tab")
	assert.Equal(t, EntityLeads, m.entityType)
	assert.Contains(t, m.View(), "No leads found")

	for i := 0; i < int(entityCount)-1; i++ {
		m = press(m, "tab")
	}
	assert.Equal(t, EntityClients, m.entityType)
}

func TestFilterNarrowsRows(t *testing.T) {
	m, svc, admin := setupTestModel(t)
	ctx := context.Background()
	_, err := svc.AddClient(ctx, admin, models.Client{Name: "Hospital Norte"})
	require.NoError(t, err)
	_, err = svc.AddClient(ctx, admin, models.Client{Name: "Clinica Sur"})
	require.NoError(t, err)

	m = loaded(t, m)
	m = press(m, "/", "s", "u", "r", "enter")
	assert.False(t, m.searching)
	assert.Len(t, m.filteredIDs(), 1)

	out := m.View()
	assert.Contains(t, out, "Clinica Sur")
	assert.NotContains(t, out, "Hospital Norte")

	m = press(m, "esc")
	assert.Len(t, m.filteredIDs(), 2)
}

func TestDetailAdvancesTaskStatus(t *testing.T) {
	m, svc, admin := setupTestModel(t)
	_, err := svc.AddTask(context.Background(), admin, models.Task{Title: "Llamar", DueDate: "2024-06-20"})
	require.NoError(t, err)

	m = loaded(t, m)
	m.entityType = EntityTasks
	m = press(m, "enter")
	require.Equal(t, ViewDetail, m.viewMode)
	assert.Contains(t, m.View(), "Llamar")

	m = press(m, "s")
	assert.Equal(t, "✓ Status set to "+models.TaskStatusInProgress, m.statusMessage)
	require.Len(t, m.data.Tasks, 1)
	assert.Equal(t, models.TaskStatusInProgress, m.data.Tasks[0].Status)
}

func TestDeleteConfirmation(t *testing.T) {
	m, svc, admin := setupTestModel(t)
	_, err := svc.AddClient(context.Background(), admin, models.Client{Name: "Hospital Norte"})
	require.NoError(t, err)

	m = loaded(t, m)
	m = press(m, "enter", "d")
	require.Equal(t, ViewConfirmDelete, m.viewMode)
	assert.Contains(t, m.View(), "DELETE CONFIRMATION")
	assert.Contains(t, m.View(), "leads of the same company")

	m = press(m, "n")
	assert.Equal(t, ViewDetail, m.viewMode)

	m = press(m, "d", "y")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Empty(t, m.data.Clients)
	assert.Contains(t, m.View(), "No clients found")
}

func TestDashboardAndGraph(t *testing.T) {
	m, svc, admin := setupTestModel(t)
	_, err := svc.AddOpportunity(context.Background(), admin, models.Opportunity{}, "Hospital Norte")
	require.NoError(t, err)

	m = loaded(t, m)
	m = press(m, "D")
	require.Equal(t, ViewDashboard, m.viewMode)
	assert.Contains(t, m.View(), "BLACK MEDICAL CRM DASHBOARD")

	m = press(m, "2")
	assert.Equal(t, crm.Range7d, m.dashRange)

	m = press(m, "esc", "g")
	require.Equal(t, ViewGraph, m.viewMode)
	assert.Contains(t, m.graphDOT, "digraph")

	m = press(m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
}

func TestLoadErrorIsShown(t *testing.T) {
	m, _, _ := setupTestModel(t)
	m.user = &models.User{ID: "nobody"}
	m = loaded(t, m)
	assert.Contains(t, m.View(), "Error:")
}
