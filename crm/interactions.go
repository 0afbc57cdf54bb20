// ABOUTME: Interaction log operations
// ABOUTME: Logging an interaction on a lead stamps its last interaction date
package crm

import (
	"context"

	"github.com/harperreed/medcrm/models"
)

func validateInteraction(ds *models.Dataset, i *models.Interaction) error {
	if !models.IsValidInteractionType(i.Type) {
		return invalid("type", "unknown interaction type %q", i.Type)
	}
	if i.LeadID != "" && i.OpportunityID != "" {
		return invalid("leadId", "an interaction links to a lead or an opportunity, not both")
	}
	if i.LeadID != "" {
		if l, _ := ds.FindLead(i.LeadID); l == nil {
			return invalid("leadId", "unknown lead %q", i.LeadID)
		}
	}
	if i.OpportunityID != "" {
		if o, _ := ds.FindOpportunity(i.OpportunityID); o == nil {
			return invalid("opportunityId", "unknown opportunity %q", i.OpportunityID)
		}
	}
	return nil
}

// AddInteraction records an interaction stamped with the current time.
func (s *Service) AddInteraction(ctx context.Context, actor *models.User, interaction models.Interaction) (models.Interaction, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		created, err := s.addInteraction(ds, me, interaction)
		interaction = created
		return err
	})
	return interaction, err
}

func (s *Service) addInteraction(ds *models.Dataset, me *models.User, interaction models.Interaction) (models.Interaction, error) {
	if err := validateInteraction(ds, &interaction); err != nil {
		return interaction, err
	}
	owner, err := assignOwner(ds, me, interaction.SalespersonID)
	if err != nil {
		return interaction, err
	}
	now := s.now().UTC()
	interaction.SalespersonID = owner
	interaction.ID = s.ids.New(PrefixInteraction)
	interaction.Date = now
	ds.Interactions = prepend(ds.Interactions, interaction)

	if interaction.LeadID != "" {
		lead, _ := ds.FindLead(interaction.LeadID)
		lead.LastInteractionDate = now.Format(models.DateLayout)
	}
	return interaction, nil
}

func (s *Service) UpdateInteraction(ctx context.Context, actor *models.User, interaction models.Interaction) (models.Interaction, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindInteraction(interaction.ID)
		if existing == nil {
			return notFound("interaction", interaction.ID)
		}
		if !canManage(me, existing.SalespersonID) {
			return ErrForbidden
		}
		if err := validateInteraction(ds, &interaction); err != nil {
			return err
		}
		if interaction.SalespersonID == "" {
			interaction.SalespersonID = existing.SalespersonID
		}
		if interaction.Date.IsZero() {
			interaction.Date = existing.Date
		}
		*existing = interaction
		return nil
	})
	return interaction, err
}

func (s *Service) DeleteInteraction(ctx context.Context, actor *models.User, interactionID string) error {
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindInteraction(interactionID)
		if existing == nil {
			return notFound("interaction", interactionID)
		}
		if !canManage(me, existing.SalespersonID) {
			return ErrForbidden
		}
		ds.Interactions = filter(ds.Interactions, func(i models.Interaction) bool { return i.ID != interactionID })
		return nil
	})
}
