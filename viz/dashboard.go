// ABOUTME: Terminal dashboard rendering
// ABOUTME: Draws KPI cards, per-salesperson bars and the pipeline as ASCII
package viz

import (
	"fmt"
	"strings"

	"github.com/harperreed/medcrm/crm"
)

const barWidth = 10

var rangeTitles = map[string]string{
	crm.RangeAll:   "todo el periodo",
	crm.Range7d:    "últimos 7 días",
	crm.Range30d:   "últimos 30 días",
	crm.RangeMonth: "este mes",
}

func RenderDashboard(stats *crm.DashboardStats) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  BLACK MEDICAL CRM DASHBOARD\n")
	if title, ok := rangeTitles[stats.Range]; ok {
		out.WriteString(fmt.Sprintf("  (%s)\n", title))
	}
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("RESUMEN\n")
	out.WriteString(fmt.Sprintf("  🏥 %d clientes (%d activos)  🎯 %d prospectos activos\n",
		stats.TotalClients, stats.ActiveClients, stats.ActiveLeads))
	out.WriteString(fmt.Sprintf("  👥 %d vendedores  📦 %d productos\n\n",
		stats.SalespeopleCount, stats.ProductsCount))

	out.WriteString("EMBUDO\n")
	renderPipeline(&out, stats.Pipeline)
	out.WriteString("\n")

	renderCounts(&out, "PROSPECTOS POR VENDEDOR", stats.LeadsBySalesperson)
	renderCounts(&out, "INTERACCIONES POR VENDEDOR", stats.InteractionsBySalesperson)
	renderCounts(&out, "OPORTUNIDADES POR VENDEDOR", stats.OpportunitiesBySalesperson)
	renderCounts(&out, "CLIENTES ASEGURADOS", stats.SecuredClientsBySalesperson)

	if len(stats.LeadsBySource) > 0 {
		out.WriteString("PROSPECTOS POR FUENTE\n")
		for _, s := range stats.LeadsBySource {
			source := s.Source
			if source == "" {
				source = "(sin fuente)"
			}
			out.WriteString(fmt.Sprintf("  %-20s %d\n", source, s.Count))
		}
	}

	return out.String()
}

func bar(count, max int) string {
	if max == 0 {
		max = 1
	}
	n := (count * barWidth) / max
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

func renderPipeline(out *strings.Builder, pipeline []crm.StageSummary) {
	maxCount := 0
	for _, s := range pipeline {
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	for _, s := range pipeline {
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d (€%s)\n",
			s.Stage, bar(s.Count, maxCount), s.Count, crm.FormatEuro(s.Value)))
	}
}

func renderCounts(out *strings.Builder, title string, counts []crm.SalespersonCount) {
	if len(counts) == 0 {
		return
	}
	out.WriteString(title + "\n")
	maxCount := 0
	for _, c := range counts {
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}
	for _, c := range counts {
		out.WriteString(fmt.Sprintf("  %-13s %s  %2d\n", c.Name, bar(c.Count, maxCount), c.Count))
	}
	out.WriteString("\n")
}
