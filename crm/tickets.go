// ABOUTME: Support ticket operations
// ABOUTME: Tickets must reference an existing client whose name is copied onto them
package crm

import (
	"context"
	"strings"

	"github.com/harperreed/medcrm/models"
)

func validateTicket(ds *models.Dataset, t *models.SupportTicket) error {
	client, _ := ds.FindClient(t.ClientID)
	if client == nil {
		return invalid("clientId", "unknown client %q", t.ClientID)
	}
	t.ClientName = client.Name

	t.Issue = strings.TrimSpace(t.Issue)
	if t.Issue == "" {
		return invalid("issue", "issue description is required")
	}
	if t.Status == "" {
		t.Status = models.TicketStatusOpen
	}
	if !models.IsValidTicketStatus(t.Status) {
		return invalid("status", "unknown ticket status %q", t.Status)
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(t.Priority) {
		return invalid("priority", "unknown priority %q", t.Priority)
	}
	return nil
}

func (s *Service) AddTicket(ctx context.Context, actor *models.User, ticket models.SupportTicket) (models.SupportTicket, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := validateTicket(ds, &ticket); err != nil {
			return err
		}
		if ticket.AssignedTo == "" {
			ticket.AssignedTo = me.ID
		}
		ticket.ID = s.ids.New(PrefixTicket)
		ticket.CreatedDate = s.today()
		ds.SupportTickets = prepend(ds.SupportTickets, ticket)
		return nil
	})
	return ticket, err
}

func (s *Service) UpdateTicket(ctx context.Context, actor *models.User, ticket models.SupportTicket) (models.SupportTicket, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindTicket(ticket.ID)
		if existing == nil {
			return notFound("ticket", ticket.ID)
		}
		if err := validateTicket(ds, &ticket); err != nil {
			return err
		}
		if ticket.CreatedDate == "" {
			ticket.CreatedDate = existing.CreatedDate
		}
		*existing = ticket
		return nil
	})
	return ticket, err
}

func (s *Service) DeleteTicket(ctx context.Context, actor *models.User, ticketID string) error {
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if t, _ := ds.FindTicket(ticketID); t == nil {
			return notFound("ticket", ticketID)
		}
		ds.SupportTickets = filter(ds.SupportTickets, func(t models.SupportTicket) bool { return t.ID != ticketID })
		return nil
	})
}
