// ABOUTME: Detail view for TUI
// ABOUTME: Shows one record with its related records and advances its status
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

// Status cycles used by the "s" key.
var (
	leadStatusCycle   = []string{models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusQualified, models.LeadStatusLost}
	taskStatusCycle   = []string{models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted}
	ticketStatusCycle = []string{models.TicketStatusOpen, models.TicketStatusInProgress, models.TicketStatusClosed}
)

func next(cycle []string, current string) string {
	for i, s := range cycle {
		if s == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[0]
}

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DETAIL · " + strings.ToUpper(entityNames[m.entityType])))
	s.WriteString("\n\n")

	switch m.entityType {
	case EntityClients:
		s.WriteString(m.renderClientDetail())
	case EntityLeads:
		s.WriteString(m.renderLeadDetail())
	case EntityOpportunities:
		s.WriteString(m.renderOpportunityDetail())
	case EntityTasks:
		s.WriteString(m.renderTaskDetail())
	case EntityTickets:
		s.WriteString(m.renderTicketDetail())
	case EntityProducts:
		s.WriteString(m.renderProductDetail())
	}

	s.WriteString("\n")
	if m.statusMessage != "" {
		s.WriteString(statusStyle.Render(m.statusMessage))
		s.WriteString("\n")
	}
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func missing(kind string) string {
	return fmt.Sprintf("This %s no longer exists.\n", kind)
}

func (m Model) renderClientDetail() string {
	c, ok := findByID(m.data.Clients, m.selectedID, func(c models.Client) string { return c.ID })
	if !ok {
		return missing("client")
	}

	var s strings.Builder
	s.WriteString(m.renderField("Name", c.Name))
	s.WriteString(m.renderField("Contact", c.ContactPerson))
	s.WriteString(m.renderField("Email", c.Email))
	s.WriteString(m.renderField("Phone", c.Phone))
	s.WriteString(m.renderField("Address", c.Address))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("OPPORTUNITIES"))
	s.WriteString("\n")
	for _, o := range m.data.Opportunities {
		if o.ClientID == c.ID {
			s.WriteString(fmt.Sprintf("  • %s · €%s\n", o.Stage, crm.FormatEuro(o.Value)))
		}
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("SUPPORT TICKETS"))
	s.WriteString("\n")
	for _, t := range m.data.SupportTickets {
		if t.ClientID == c.ID {
			s.WriteString(fmt.Sprintf("  • [%s] %s (%s)\n", t.Status, t.Issue, t.Priority))
		}
	}
	return s.String()
}

func (m Model) renderLeadDetail() string {
	l, ok := findByID(m.data.Leads, m.selectedID, func(l models.Lead) string { return l.ID })
	if !ok {
		return missing("lead")
	}

	var s strings.Builder
	s.WriteString(m.renderField("Name", l.Name))
	s.WriteString(m.renderField("Company", l.Company))
	s.WriteString(m.renderField("Email", l.Email))
	s.WriteString(m.renderField("Phone", l.Phone))
	s.WriteString(m.renderField("Source", l.Source))
	s.WriteString(m.renderField("Status", l.Status))
	s.WriteString(m.renderField("Salesperson", m.salespersonName(l.SalespersonID)))
	s.WriteString(m.renderField("Last contact", l.LastInteractionDate))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("INTERACTIONS"))
	s.WriteString("\n")
	for _, i := range m.data.Interactions {
		if i.LeadID == l.ID {
			s.WriteString(fmt.Sprintf("  • [%s] %s: %s\n", i.Date.Format(models.DateLayout), i.Type, i.Notes))
		}
	}
	return s.String()
}

func (m Model) renderOpportunityDetail() string {
	o, ok := findByID(m.data.Opportunities, m.selectedID, func(o models.Opportunity) string { return o.ID })
	if !ok {
		return missing("opportunity")
	}

	var s strings.Builder
	s.WriteString(m.renderField("Client", o.ClientName))
	s.WriteString(m.renderField("Stage", o.Stage))
	s.WriteString(m.renderField("Value", "€"+crm.FormatEuro(o.Value)))
	s.WriteString(m.renderField("Close date", o.CloseDate))
	s.WriteString(m.renderField("Salesperson", m.salespersonName(o.SalespersonID)))

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("PRODUCTS"))
	s.WriteString("\n")
	for _, p := range o.Products {
		s.WriteString(fmt.Sprintf("  • %d × %s @ €%s\n", p.Quantity, p.ProductName, crm.FormatEuro(p.Price)))
	}

	s.WriteString("\n")
	s.WriteString(sectionStyle.Render("INTERACTIONS"))
	s.WriteString("\n")
	for _, i := range m.data.Interactions {
		if i.OpportunityID == o.ID {
			s.WriteString(fmt.Sprintf("  • [%s] %s: %s\n", i.Date.Format(models.DateLayout), i.Type, i.Notes))
		}
	}
	return s.String()
}

func (m Model) renderTaskDetail() string {
	t, ok := findByID(m.data.Tasks, m.selectedID, func(t models.Task) string { return t.ID })
	if !ok {
		return missing("task")
	}

	var s strings.Builder
	s.WriteString(m.renderField("Title", t.Title))
	s.WriteString(m.renderField("Description", t.Description))
	s.WriteString(m.renderField("Due", t.DueDate))
	s.WriteString(m.renderField("Status", t.Status))
	s.WriteString(m.renderField("Related", t.AssociatedName))
	s.WriteString(m.renderField("Salesperson", m.salespersonName(t.SalespersonID)))
	if t.IsClosingTask() {
		s.WriteString(m.renderField("Opportunity value", "€"+crm.FormatEuro(*t.OpportunityValue)))
	}
	return s.String()
}

func (m Model) renderTicketDetail() string {
	t, ok := findByID(m.data.SupportTickets, m.selectedID, func(t models.SupportTicket) string { return t.ID })
	if !ok {
		return missing("ticket")
	}

	var s strings.Builder
	s.WriteString(m.renderField("Client", t.ClientName))
	s.WriteString(m.renderField("Issue", t.Issue))
	s.WriteString(m.renderField("Status", t.Status))
	s.WriteString(m.renderField("Priority", t.Priority))
	s.WriteString(m.renderField("Opened", t.CreatedDate))
	s.WriteString(m.renderField("Assigned to", m.salespersonName(t.AssignedTo)))
	return s.String()
}

func (m Model) renderProductDetail() string {
	p, ok := findByID(m.data.Products, m.selectedID, func(p models.Product) string { return p.ID })
	if !ok {
		return missing("product")
	}

	var s strings.Builder
	s.WriteString(m.renderField("Name", p.Name))
	s.WriteString(m.renderField("Category", p.Category))
	s.WriteString(m.renderField("Price", "€"+crm.FormatEuro(p.Price)))
	s.WriteString(m.renderField("Description", p.Description))
	return s.String()
}

func findByID[T any](items []T, want string, id func(T) string) (T, bool) {
	for _, item := range items {
		if id(item) == want {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{"Esc: Back"}
	if m.entityType != EntityClients && m.entityType != EntityProducts {
		help = append(help, "s: Next status")
	}
	if m.entityType == EntityClients {
		help = append(help, "g: Client graph")
	}
	help = append(help, "d: Delete", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.statusMessage = ""
	case "d":
		m.viewMode = ViewConfirmDelete
	case "g":
		if m.entityType == EntityClients {
			m.generateGraph()
			m.viewMode = ViewGraph
		}
	case "s":
		if err := m.advanceStatus(); err != nil {
			m.statusMessage = "Error: " + err.Error()
			return m, nil
		}
		return m, m.load
	}

	return m, nil
}

// advanceStatus moves the selected record to the next status in its cycle.
func (m *Model) advanceStatus() error {
	var (
		status string
		err    error
	)
	switch m.entityType {
	case EntityLeads:
		l, _ := findByID(m.data.Leads, m.selectedID, func(l models.Lead) string { return l.ID })
		status = next(leadStatusCycle, l.Status)
		_, err = m.svc.SetLeadStatus(m.ctx, m.user, m.selectedID, status)
	case EntityOpportunities:
		o, _ := findByID(m.data.Opportunities, m.selectedID, func(o models.Opportunity) string { return o.ID })
		status = next(models.Stages, o.Stage)
		_, err = m.svc.SetOpportunityStage(m.ctx, m.user, m.selectedID, status)
	case EntityTasks:
		t, _ := findByID(m.data.Tasks, m.selectedID, func(t models.Task) string { return t.ID })
		status = next(taskStatusCycle, t.Status)
		_, err = m.svc.SetTaskStatus(m.ctx, m.user, m.selectedID, status)
	case EntityTickets:
		t, _ := findByID(m.data.SupportTickets, m.selectedID, func(t models.SupportTicket) string { return t.ID })
		status = next(ticketStatusCycle, t.Status)
		_, err = m.svc.SetTicketStatus(m.ctx, m.user, m.selectedID, status)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	m.statusMessage = "✓ Status set to " + status
	return nil
}
