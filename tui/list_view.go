// ABOUTME: List view for TUI
// ABOUTME: Tabbed tables over each collection of the current view with a live filter
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("BLACK MEDICAL CRM · %s", m.user.Name)))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n")
	}

	s.WriteString(m.renderTable())
	s.WriteString("\n")

	if m.statusMessage != "" {
		s.WriteString(statusStyle.Render(m.statusMessage))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, tab := range entityNames {
		if EntityType(i) == m.entityType {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// listing is one collection laid out as table rows, with the record ID
// behind each row.
type listing struct {
	columns []table.Column
	rows    []table.Row
	ids     []string
}

func (l *listing) add(id string, cells ...string) {
	l.rows = append(l.rows, table.Row(cells))
	l.ids = append(l.ids, id)
}

func (m Model) buildListing() listing {
	v := m.data
	var l listing
	switch m.entityType {
	case EntityClients:
		l.columns = []table.Column{{Title: "Name", Width: 30}, {Title: "Contact", Width: 20}, {Title: "Phone", Width: 15}, {Title: "Email", Width: 25}}
		for _, c := range v.Clients {
			l.add(c.ID, c.Name, c.ContactPerson, c.Phone, c.Email)
		}
	case EntityLeads:
		l.columns = []table.Column{{Title: "Name", Width: 22}, {Title: "Company", Width: 22}, {Title: "Status", Width: 12}, {Title: "Phone", Width: 15}, {Title: "Last contact", Width: 12}}
		for _, ld := range v.Leads {
			l.add(ld.ID, ld.Name, ld.Company, ld.Status, ld.Phone, ld.LastInteractionDate)
		}
	case EntityOpportunities:
		l.columns = []table.Column{{Title: "Client", Width: 28}, {Title: "Stage", Width: 14}, {Title: "Value", Width: 12}, {Title: "Close", Width: 12}, {Title: "Salesperson", Width: 18}}
		for _, o := range v.Opportunities {
			l.add(o.ID, o.ClientName, o.Stage, "€"+crm.FormatEuro(o.Value), o.CloseDate, m.salespersonName(o.SalespersonID))
		}
	case EntityTasks:
		l.columns = []table.Column{{Title: "Title", Width: 34}, {Title: "Due", Width: 12}, {Title: "Status", Width: 12}, {Title: "Related", Width: 24}}
		for _, t := range v.Tasks {
			l.add(t.ID, t.Title, t.DueDate, t.Status, t.AssociatedName)
		}
	case EntityTickets:
		l.columns = []table.Column{{Title: "Client", Width: 22}, {Title: "Issue", Width: 34}, {Title: "Status", Width: 12}, {Title: "Priority", Width: 9}}
		for _, t := range v.SupportTickets {
			l.add(t.ID, t.ClientName, t.Issue, t.Status, t.Priority)
		}
	case EntityProducts:
		l.columns = []table.Column{{Title: "Name", Width: 30}, {Title: "Category", Width: 20}, {Title: "Price", Width: 12}}
		for _, p := range v.Products {
			l.add(p.ID, p.Name, p.Category, "€"+crm.FormatEuro(p.Price))
		}
	}
	return l.filter(m.search.Value())
}

// filter keeps rows where any cell contains term, ignoring case.
func (l listing) filter(term string) listing {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return l
	}
	out := listing{columns: l.columns}
	for i, row := range l.rows {
		for _, cell := range row {
			if strings.Contains(strings.ToLower(cell), term) {
				out.add(l.ids[i], row...)
				break
			}
		}
	}
	return out
}

func (m Model) salespersonName(id string) string {
	if id == models.AdminID {
		return "Admin"
	}
	for _, sp := range m.data.Salespeople {
		if sp.ID == id {
			return sp.Name
		}
	}
	return id
}

func (m Model) filteredIDs() []string {
	return m.buildListing().ids
}

func (m Model) renderTable() string {
	l := m.buildListing()
	if len(l.rows) == 0 {
		return fmt.Sprintf("No %s found\n", strings.ToLower(entityNames[m.entityType]))
	}

	height := m.height - 10
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(l.columns),
		table.WithRows(l.rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	if m.selectedRow < len(l.rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View details",
		"/: Filter",
		"D: Dashboard",
		"g: Pipeline graph",
		"r: Refresh",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMessage = ""
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.filteredIDs())-1 {
			m.selectedRow++
		}
	case "tab":
		m.entityType = (m.entityType + 1) % entityCount
		m.selectedRow = 0
	case "shift+tab":
		m.entityType = (m.entityType + entityCount - 1) % entityCount
		m.selectedRow = 0
	case "enter":
		ids := m.filteredIDs()
		if m.selectedRow < len(ids) {
			m.selectedID = ids[m.selectedRow]
			m.viewMode = ViewDetail
		}
	case "/":
		m.searching = true
		m.search.Focus()
		return m, nil
	case "esc":
		m.search.SetValue("")
		m.selectedRow = 0
	case "D":
		m.viewMode = ViewDashboard
	case "g":
		m.selectedID = ""
		m.generateGraph()
		m.viewMode = ViewGraph
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		if msg.String() == "esc" {
			m.search.SetValue("")
		}
		m.selectedRow = 0
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.selectedRow = 0
	return m, cmd
}
