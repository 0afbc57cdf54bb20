// ABOUTME: Graph view for TUI
// ABOUTME: Shows the DOT source of the pipeline or a single client graph
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/medcrm/viz"
)

func (m Model) renderGraphView() string {
	var s strings.Builder

	title := "PIPELINE GRAPH"
	if m.selectedID != "" {
		title = "CLIENT GRAPH"
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")

	if m.statusMessage != "" {
		s.WriteString(errorStyle.Render(m.statusMessage))
	} else {
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Render(m.graphDOT))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Esc: Back • q: Quit"))

	return s.String()
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		if m.selectedID == "" {
			m.viewMode = ViewList
		} else {
			m.viewMode = ViewDetail
		}
		m.graphDOT = ""
		m.statusMessage = ""
	}
	return m, nil
}

// generateGraph renders the selected client's graph, or the whole
// pipeline when nothing is selected.
func (m *Model) generateGraph() {
	generator := viz.NewGraphGenerator(m.data)

	var (
		dot string
		err error
	)
	if m.selectedID == "" {
		dot, err = generator.GeneratePipelineGraph(m.ctx)
	} else {
		dot, err = generator.GenerateClientGraph(m.ctx, m.selectedID)
	}
	if err != nil {
		m.statusMessage = "Error: " + err.Error()
		return
	}
	m.graphDOT = dot
}
