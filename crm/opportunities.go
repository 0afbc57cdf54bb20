// ABOUTME: Opportunity operations and the mirrored closing task
// ABOUTME: Winning an opportunity without a client creates or reuses one by name
package crm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/harperreed/medcrm/models"
)

func closingTaskTitle(clientName string) string {
	return "Cierre Oportunidad: " + clientName
}

func closingTaskDescription(value float64) string {
	return fmt.Sprintf("Valor estimado: €%s", FormatEuro(value))
}

func validateOpportunity(opp *models.Opportunity) error {
	if opp.Stage == "" {
		opp.Stage = models.StageProspecting
	}
	if !models.IsValidStage(opp.Stage) {
		return invalid("stage", "unknown stage %q", opp.Stage)
	}
	if opp.Value < 0 {
		return invalid("value", "must not be negative")
	}
	for _, p := range opp.Products {
		if p.ProductID == "" {
			return invalid("products", "line item without product")
		}
		if p.Quantity <= 0 {
			return invalid("products", "quantity for %s must be positive", p.ProductID)
		}
	}
	if opp.Products == nil {
		opp.Products = []models.OpportunityProduct{}
	}
	return nil
}

// AddOpportunity creates an opportunity. The client name comes from
// clientName when given, otherwise from the client referenced by ClientID.
func (s *Service) AddOpportunity(ctx context.Context, actor *models.User, opp models.Opportunity, clientName string) (models.Opportunity, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		created, err := s.addOpportunity(ds, me, opp, clientName)
		opp = created
		return err
	})
	return opp, err
}

func (s *Service) addOpportunity(ds *models.Dataset, me *models.User, opp models.Opportunity, clientName string) (models.Opportunity, error) {
	name := strings.TrimSpace(clientName)
	if name == "" && opp.ClientID != "" {
		if c, _ := ds.FindClient(opp.ClientID); c != nil {
			name = c.Name
		}
	}
	if name == "" {
		return opp, invalid("clientName", "client name could not be determined")
	}
	opp.ClientName = name

	if err := validateOpportunity(&opp); err != nil {
		return opp, err
	}
	owner, err := assignOwner(ds, me, opp.SalespersonID)
	if err != nil {
		return opp, err
	}
	opp.SalespersonID = owner
	opp.ID = s.ids.New(PrefixOpportunity)
	opp.CreatedAt = s.timestamp()

	if err := s.resolveWonClient(ds, &opp); err != nil {
		return opp, err
	}

	ds.Opportunities = prepend(ds.Opportunities, opp)
	s.upsertClosingTask(ds, opp, true)
	return opp, nil
}

// UpdateOpportunity replaces the opportunity and re-syncs its closing task.
func (s *Service) UpdateOpportunity(ctx context.Context, actor *models.User, opp models.Opportunity) (models.Opportunity, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		updated, err := s.updateOpportunity(ds, me, opp)
		opp = updated
		return err
	})
	return opp, err
}

func (s *Service) updateOpportunity(ds *models.Dataset, me *models.User, opp models.Opportunity) (models.Opportunity, error) {
	existing, _ := ds.FindOpportunity(opp.ID)
	if existing == nil {
		return opp, notFound("opportunity", opp.ID)
	}
	if !canManage(me, existing.SalespersonID) {
		return opp, ErrForbidden
	}
	if err := validateOpportunity(&opp); err != nil {
		return opp, err
	}
	owner, err := assignOwner(ds, me, opp.SalespersonID)
	if err != nil {
		return opp, err
	}
	opp.SalespersonID = owner
	if opp.CreatedAt == nil {
		opp.CreatedAt = existing.CreatedAt
	}
	if strings.TrimSpace(opp.ClientName) == "" {
		opp.ClientName = existing.ClientName
	}

	if err := s.resolveWonClient(ds, &opp); err != nil {
		return opp, err
	}

	*existing = opp
	s.upsertClosingTask(ds, opp, false)
	return opp, nil
}

// resolveWonClient links a won opportunity to a client, reusing one with
// the same name or creating one from the original lead's contact details.
// Opportunities that already reference a client take its current name.
func (s *Service) resolveWonClient(ds *models.Dataset, opp *models.Opportunity) error {
	if opp.Stage == models.StageWon && opp.ClientID == "" {
		var client *models.Client
		for i := range ds.Clients {
			if strings.EqualFold(ds.Clients[i].Name, opp.ClientName) {
				client = &ds.Clients[i]
				break
			}
		}
		if client == nil {
			created := models.Client{
				Name:          opp.ClientName,
				ContactPerson: "N/A",
				Email:         "N/A",
				Phone:         "N/A",
			}
			if opp.OriginalLeadID != "" {
				if lead, _ := ds.FindLead(opp.OriginalLeadID); lead != nil {
					created.ContactPerson = orNA(lead.Name)
					created.Email = orNA(lead.Email)
					created.Phone = orNA(lead.Phone)
				}
			}
			c, err := s.addClient(ds, created)
			if err != nil {
				return err
			}
			s.logger.Info("created client for won opportunity",
				zap.String("client_id", c.ID),
				zap.String("opportunity_id", opp.ID))
			opp.ClientID = c.ID
			opp.ClientName = c.Name
			return nil
		}
		opp.ClientID = client.ID
		opp.ClientName = client.Name
		return nil
	}

	if opp.ClientID != "" {
		if c, _ := ds.FindClient(opp.ClientID); c != nil {
			opp.ClientName = c.Name
		}
	}
	return nil
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}

// upsertClosingTask creates or refreshes the task mirroring opp. Manual tasks
// linked to opp are left alone. A refreshed task keeps its status.
func (s *Service) upsertClosingTask(ds *models.Dataset, opp models.Opportunity, prependNew bool) {
	if task, _ := ds.FindClosingTask(opp.ID); task != nil {
		task.Title = closingTaskTitle(opp.ClientName)
		task.Description = closingTaskDescription(opp.Value)
		task.DueDate = opp.CloseDate
		task.SalespersonID = opp.SalespersonID
		task.ClientID = opp.ClientID
		task.AssociatedName = opp.ClientName
		task.OpportunityValue = &opp.Value
		return
	}

	task := models.Task{
		ID:               ClosingTaskID(opp.ID),
		Title:            closingTaskTitle(opp.ClientName),
		Description:      closingTaskDescription(opp.Value),
		DueDate:          opp.CloseDate,
		SalespersonID:    opp.SalespersonID,
		Status:           models.TaskStatusPending,
		ClientID:         opp.ClientID,
		AssociatedName:   opp.ClientName,
		OpportunityID:    opp.ID,
		OpportunityValue: &opp.Value,
	}
	if prependNew {
		ds.Tasks = prepend(ds.Tasks, task)
	} else {
		ds.Tasks = append(ds.Tasks, task)
	}
}

// DeleteOpportunity removes the opportunity with its closing task and
// interactions.
func (s *Service) DeleteOpportunity(ctx context.Context, actor *models.User, opportunityID string) error {
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindOpportunity(opportunityID)
		if existing == nil {
			return notFound("opportunity", opportunityID)
		}
		if !canManage(me, existing.SalespersonID) {
			return ErrForbidden
		}
		ds.Opportunities = filter(ds.Opportunities, func(o models.Opportunity) bool { return o.ID != opportunityID })
		ds.Tasks = filter(ds.Tasks, func(t models.Task) bool { return t.OpportunityID != opportunityID })
		ds.Interactions = filter(ds.Interactions, func(i models.Interaction) bool { return i.OpportunityID != opportunityID })
		return nil
	})
}

// CatalogLine snapshots a catalog product into an opportunity line item.
// A nil price takes the catalog price.
func CatalogLine(catalog []models.Product, productID string, quantity int, price *float64) (models.OpportunityProduct, error) {
	for _, p := range catalog {
		if p.ID != productID {
			continue
		}
		line := models.OpportunityProduct{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    quantity,
			Price:       p.Price,
		}
		if price != nil {
			line.Price = *price
		}
		return line, nil
	}
	return models.OpportunityProduct{}, notFound("product", productID)
}
