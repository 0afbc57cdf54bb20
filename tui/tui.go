// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Full-screen browser over the logged-in user's CRM view
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewGraph
	ViewConfirmDelete
	ViewDashboard
)

// EntityType represents the collection shown in the list
type EntityType int

const (
	EntityClients EntityType = iota
	EntityLeads
	EntityOpportunities
	EntityTasks
	EntityTickets
	EntityProducts
	entityCount
)

var entityNames = []string{"Clients", "Leads", "Opportunities", "Tasks", "Tickets", "Products"}

// viewLoadedMsg carries a freshly derived view.
type viewLoadedMsg struct {
	view *models.View
	err  error
}

// Model is the main bubbletea model
type Model struct {
	ctx  context.Context
	svc  *crm.Service
	user *models.User
	data *models.View

	viewMode   ViewMode
	entityType EntityType

	// List view state
	selectedRow int
	search      textinput.Model
	searching   bool

	// Detail view state
	selectedID string

	// Graph view state
	graphDOT string

	dashRange string

	statusMessage string

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model for user.
func NewModel(ctx context.Context, svc *crm.Service, user *models.User) Model {
	search := textinput.New()
	search.Placeholder = "filter"
	search.Prompt = "/ "
	return Model{
		ctx:        ctx,
		svc:        svc,
		user:       user,
		viewMode:   ViewList,
		entityType: EntityClients,
		search:     search,
		width:      100,
		height:     24,
	}
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, svc *crm.Service, user *models.User) error {
	_, err := tea.NewProgram(NewModel(ctx, svc, user), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return m.load
}

func (m Model) load() tea.Msg {
	view, err := m.svc.View(m.ctx, m.user)
	return viewLoadedMsg{view: view, err: err}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewLoadedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.data = msg.view
			if n := len(m.filteredIDs()); m.selectedRow >= n && n > 0 {
				m.selectedRow = n - 1
			}
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n\n" + helpStyle.Render("r: Retry • q: Quit")
	}
	if m.data == nil {
		return "Loading..."
	}
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	case ViewDashboard:
		return m.renderDashboardView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.statusMessage = ""
		return m, m.load
	}
	if m.err != nil || m.data == nil {
		return m, nil
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ViewDashboard:
		return m.handleDashboardKeys(msg)
	}

	return m, nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))
)
