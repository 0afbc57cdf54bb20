// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Deletes the selected record through the CRM service after confirmation
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

var cascadeNotes = map[EntityType]string{
	EntityClients:       "Its opportunities and tickets go too,\nalong with leads of the same company\nand all their tasks and interactions.",
	EntityLeads:         "Its interactions go too.",
	EntityOpportunities: "Its closing task and interactions go too.",
	EntityProducts:      "Opportunities holding it are revalued.",
}

func (m Model) renderConfirmDeleteView() string {
	kind := strings.ToLower(strings.TrimSuffix(entityNames[m.entityType], "s"))
	if m.entityType == EntityOpportunities {
		kind = "opportunity"
	}

	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := fmt.Sprintf("Are you sure you want to delete this %s?", kind)
	info := fmt.Sprintf("\nID: %s\n", m.selectedID)
	warning := "\nThis action cannot be undone!"
	if note, ok := cascadeNotes[m.entityType]; ok {
		warning = "\n" + note + warning
	}

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		info,
		warning,
		"",
		buttons,
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		confirmBoxStyle.Render(content),
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.viewMode = ViewList
		if err := m.performDelete(); err != nil {
			m.statusMessage = "Error: " + err.Error()
			return m, nil
		}
		m.statusMessage = "✓ Deleted"
		m.selectedID = ""
		return m, m.load
	case "n", "N", "esc":
		m.viewMode = ViewDetail
	}

	return m, nil
}

func (m Model) performDelete() error {
	id := m.selectedID
	switch m.entityType {
	case EntityClients:
		return m.svc.DeleteClient(m.ctx, m.user, id)
	case EntityLeads:
		return m.svc.DeleteLead(m.ctx, m.user, id)
	case EntityOpportunities:
		return m.svc.DeleteOpportunity(m.ctx, m.user, id)
	case EntityTasks:
		return m.svc.DeleteTask(m.ctx, m.user, id)
	case EntityTickets:
		return m.svc.DeleteTicket(m.ctx, m.user, id)
	case EntityProducts:
		return m.svc.DeleteProduct(m.ctx, m.user, id)
	default:
		return fmt.Errorf("unknown entity type")
	}
}
