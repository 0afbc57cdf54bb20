// ABOUTME: Lead operations and lead-to-opportunity conversion
// ABOUTME: Leads default to the acting salesperson and cascade to their interactions
package crm

import (
	"context"
	"strings"

	"github.com/harperreed/medcrm/models"
)

func validateLead(lead *models.Lead) error {
	lead.Name = strings.TrimSpace(lead.Name)
	if lead.Name == "" {
		return invalid("name", "lead name is required")
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if !models.IsValidLeadStatus(lead.Status) {
		return invalid("status", "unknown lead status %q", lead.Status)
	}
	return nil
}

func (s *Service) AddLead(ctx context.Context, actor *models.User, lead models.Lead) (models.Lead, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := validateLead(&lead); err != nil {
			return err
		}
		owner, err := assignOwner(ds, me, lead.SalespersonID)
		if err != nil {
			return err
		}
		lead.SalespersonID = owner
		lead.ID = s.ids.New(PrefixLead)
		lead.CreatedAt = s.timestamp()
		ds.Leads = prepend(ds.Leads, lead)
		return nil
	})
	return lead, err
}

func (s *Service) UpdateLead(ctx context.Context, actor *models.User, lead models.Lead) (models.Lead, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindLead(lead.ID)
		if existing == nil {
			return notFound("lead", lead.ID)
		}
		if !canManage(me, existing.SalespersonID) {
			return ErrForbidden
		}
		if err := validateLead(&lead); err != nil {
			return err
		}
		owner, err := assignOwner(ds, me, lead.SalespersonID)
		if err != nil {
			return err
		}
		lead.SalespersonID = owner
		if lead.CreatedAt == nil {
			lead.CreatedAt = existing.CreatedAt
		}
		*existing = lead
		return nil
	})
	return lead, err
}

func (s *Service) DeleteLead(ctx context.Context, actor *models.User, leadID string) error {
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindLead(leadID)
		if existing == nil {
			return notFound("lead", leadID)
		}
		if !canManage(me, existing.SalespersonID) {
			return ErrForbidden
		}
		ds.Leads = filter(ds.Leads, func(l models.Lead) bool { return l.ID != leadID })
		ds.Interactions = filter(ds.Interactions, func(i models.Interaction) bool { return i.LeadID != leadID })
		return nil
	})
}

// ConvertInput describes the opportunity a lead turns into.
type ConvertInput struct {
	Products      []models.OpportunityProduct
	CloseDate     string
	Stage         string
	SalespersonID string
}

// ConvertLead creates an opportunity for the lead's company valued at the
// line-item total and marks the lead qualified. Without an explicit
// salesperson the opportunity keeps the lead's owner. Converting straight into
// the won stage also creates (or reuses) the client.
func (s *Service) ConvertLead(ctx context.Context, actor *models.User, leadID string, in ConvertInput) (models.Opportunity, error) {
	var opp models.Opportunity
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		lead, _ := ds.FindLead(leadID)
		if lead == nil {
			return notFound("lead", leadID)
		}
		if !canManage(me, lead.SalespersonID) {
			return ErrForbidden
		}

		// The opportunity stays with the lead's salesperson unless told otherwise.
		owner := in.SalespersonID
		if owner == "" {
			if u, _ := ds.FindUser(lead.SalespersonID); u != nil {
				owner = lead.SalespersonID
			}
		}

		created, err := s.addOpportunity(ds, me, models.Opportunity{
			Products:       in.Products,
			CloseDate:      in.CloseDate,
			Stage:          in.Stage,
			SalespersonID:  owner,
			Value:          models.LineTotal(in.Products),
			OriginalLeadID: leadID,
		}, lead.Company)
		if err != nil {
			return err
		}
		opp = created
		lead.Status = models.LeadStatusQualified
		return nil
	})
	return opp, err
}
