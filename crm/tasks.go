// ABOUTME: Task operations for the agenda
// ABOUTME: Derives the associated name from the linked opportunity, client or lead
package crm

import (
	"context"
	"strings"

	"github.com/harperreed/medcrm/models"
)

// associatedName prefers the linked opportunity's client, then the client,
// then the lead.
func associatedName(ds *models.Dataset, t models.Task) string {
	if t.OpportunityID != "" {
		if o, _ := ds.FindOpportunity(t.OpportunityID); o != nil && o.ClientName != "" {
			return o.ClientName
		}
	}
	if t.ClientID != "" {
		if c, _ := ds.FindClient(t.ClientID); c != nil && c.Name != "" {
			return c.Name
		}
	}
	if t.LeadID != "" {
		if l, _ := ds.FindLead(t.LeadID); l != nil {
			return l.Name
		}
	}
	return ""
}

// Closing tasks follow their opportunity. Only their status may change.
func errClosingTask(id string) error {
	return invalid("id", "task %s mirrors an opportunity and changes with it", id)
}

func validateTask(task *models.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return invalid("title", "task title is required")
	}
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	if !models.IsValidTaskStatus(task.Status) {
		return invalid("status", "unknown task status %q", task.Status)
	}
	return nil
}

func (s *Service) AddTask(ctx context.Context, actor *models.User, task models.Task) (models.Task, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := validateTask(&task); err != nil {
			return err
		}
		owner, err := assignOwner(ds, me, task.SalespersonID)
		if err != nil {
			return err
		}
		task.SalespersonID = owner
		task.ID = s.ids.New(PrefixTask)
		task.OpportunityValue = nil
		task.AssociatedName = associatedName(ds, task)
		ds.Tasks = prepend(ds.Tasks, task)
		return nil
	})
	return task, err
}

func (s *Service) UpdateTask(ctx context.Context, actor *models.User, task models.Task) (models.Task, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindTask(task.ID)
		if existing == nil {
			return notFound("task", task.ID)
		}
		if !canManage(me, existing.SalespersonID) {
			return ErrForbidden
		}
		if existing.IsClosingTask() {
			return errClosingTask(existing.ID)
		}
		if err := validateTask(&task); err != nil {
			return err
		}
		owner, err := assignOwner(ds, me, task.SalespersonID)
		if err != nil {
			return err
		}
		task.SalespersonID = owner
		task.OpportunityValue = nil
		task.AssociatedName = associatedName(ds, task)
		*existing = task
		return nil
	})
	return task, err
}

func (s *Service) DeleteTask(ctx context.Context, actor *models.User, taskID string) error {
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindTask(taskID)
		if existing == nil {
			return notFound("task", taskID)
		}
		if !canManage(me, existing.SalespersonID) {
			return ErrForbidden
		}
		if existing.IsClosingTask() {
			return errClosingTask(taskID)
		}
		ds.Tasks = filter(ds.Tasks, func(t models.Task) bool { return t.ID != taskID })
		return nil
	})
}
