// ABOUTME: TUI dashboard view
// ABOUTME: Shows KPIs for the current view over a selectable date range
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/viz"
)

var dashboardRanges = map[string]string{
	"1": crm.RangeAll,
	"2": crm.Range7d,
	"3": crm.Range30d,
	"4": crm.RangeMonth,
}

func (m Model) renderDashboardView() string {
	rng := m.dashRange
	if rng == "" {
		rng = crm.RangeAll
	}
	start, err := crm.RangeStart(rng, time.Now())
	if err != nil {
		return errorStyle.Render("Error: " + err.Error())
	}
	stats := crm.ComputeStats(m.data, start)
	stats.Range = rng

	var s strings.Builder
	s.WriteString(viz.RenderDashboard(stats))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("1: All • 2: 7 days • 3: 30 days • 4: This month • Esc: Back • q: Quit"))
	return s.String()
}

func (m Model) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		m.viewMode = ViewList
		return m, nil
	}
	if rng, ok := dashboardRanges[key]; ok {
		m.dashRange = rng
	}
	return m, nil
}
