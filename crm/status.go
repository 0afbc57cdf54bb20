// ABOUTME: Single-field status changes for leads, opportunities, tasks and tickets
// ABOUTME: Used by the CLI, MCP and HTTP surfaces to move records along
package crm

import (
	"context"

	"github.com/harperreed/medcrm/models"
)

func (s *Service) SetLeadStatus(ctx context.Context, actor *models.User, leadID, status string) (models.Lead, error) {
	var out models.Lead
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		lead, _ := ds.FindLead(leadID)
		if lead == nil {
			return notFound("lead", leadID)
		}
		if !canManage(me, lead.SalespersonID) {
			return ErrForbidden
		}
		if !models.IsValidLeadStatus(status) {
			return invalid("status", "unknown lead status %q", status)
		}
		lead.Status = status
		out = *lead
		return nil
	})
	return out, err
}

// SetOpportunityStage moves an opportunity and runs the same won-client
// and closing-task handling as a full update.
func (s *Service) SetOpportunityStage(ctx context.Context, actor *models.User, opportunityID, stage string) (models.Opportunity, error) {
	var out models.Opportunity
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindOpportunity(opportunityID)
		if existing == nil {
			return notFound("opportunity", opportunityID)
		}
		opp := *existing
		opp.Products = clone(existing.Products)
		opp.Stage = stage
		updated, err := s.updateOpportunity(ds, me, opp)
		out = updated
		return err
	})
	return out, err
}

func (s *Service) SetTaskStatus(ctx context.Context, actor *models.User, taskID, status string) (models.Task, error) {
	var out models.Task
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		task, _ := ds.FindTask(taskID)
		if task == nil {
			return notFound("task", taskID)
		}
		if !canManage(me, task.SalespersonID) {
			return ErrForbidden
		}
		if !models.IsValidTaskStatus(status) {
			return invalid("status", "unknown task status %q", status)
		}
		task.Status = status
		out = *task
		return nil
	})
	return out, err
}

func (s *Service) SetTicketStatus(ctx context.Context, actor *models.User, ticketID, status string) (models.SupportTicket, error) {
	var out models.SupportTicket
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		ticket, _ := ds.FindTicket(ticketID)
		if ticket == nil {
			return notFound("ticket", ticketID)
		}
		if !models.IsValidTicketStatus(status) {
			return invalid("status", "unknown ticket status %q", status)
		}
		ticket.Status = status
		out = *ticket
		return nil
	})
	return out, err
}
