// ABOUTME: Client operations including the cascading delete
// ABOUTME: Keeps denormalized client names on opportunities, tickets and tasks in sync
package crm

import (
	"context"
	"strings"

	"github.com/harperreed/medcrm/models"
)

func (s *Service) AddClient(ctx context.Context, actor *models.User, client models.Client) (models.Client, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		created, err := s.addClient(ds, client)
		client = created
		return err
	})
	return client, err
}

func (s *Service) addClient(ds *models.Dataset, client models.Client) (models.Client, error) {
	client.Name = strings.TrimSpace(client.Name)
	if client.Name == "" {
		return client, invalid("name", "client name is required")
	}
	client.ID = s.ids.New(PrefixClient)
	client.CreatedAt = s.timestamp()
	ds.Clients = prepend(ds.Clients, client)
	return client, nil
}

// UpdateClient replaces the client record and refreshes the client name
// copied onto opportunities, tickets and closing tasks that point at it.
func (s *Service) UpdateClient(ctx context.Context, actor *models.User, client models.Client) (models.Client, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindClient(client.ID)
		if existing == nil {
			return notFound("client", client.ID)
		}
		client.Name = strings.TrimSpace(client.Name)
		if client.Name == "" {
			return invalid("name", "client name is required")
		}
		if client.CreatedAt == nil {
			client.CreatedAt = existing.CreatedAt
		}
		*existing = client

		for i := range ds.Opportunities {
			if ds.Opportunities[i].ClientID == client.ID {
				ds.Opportunities[i].ClientName = client.Name
			}
		}
		for i := range ds.SupportTickets {
			if ds.SupportTickets[i].ClientID == client.ID {
				ds.SupportTickets[i].ClientName = client.Name
			}
		}
		for i := range ds.Tasks {
			t := &ds.Tasks[i]
			if t.ClientID != client.ID {
				continue
			}
			if t.IsClosingTask() {
				t.Title = closingTaskTitle(client.Name)
			}
			t.AssociatedName = associatedName(ds, *t)
		}
		return nil
	})
	return client, err
}

// DeleteClient removes the client together with every opportunity matching
// it by ID or name, every lead whose company carries its name, and the
// tasks, tickets and interactions hanging off those records.
func (s *Service) DeleteClient(ctx context.Context, actor *models.User, clientID string) error {
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		return deleteClient(ds, clientID)
	})
}

func deleteClient(ds *models.Dataset, clientID string) error {
	client, _ := ds.FindClient(clientID)
	if client == nil {
		return notFound("client", clientID)
	}
	name := strings.ToLower(client.Name)

	deletedOpps := make(map[string]bool)
	for _, o := range ds.Opportunities {
		if o.ClientID == clientID || strings.ToLower(o.ClientName) == name {
			deletedOpps[o.ID] = true
		}
	}
	deletedLeads := make(map[string]bool)
	for _, l := range ds.Leads {
		if strings.ToLower(l.Company) == name {
			deletedLeads[l.ID] = true
		}
	}

	ds.Clients = filter(ds.Clients, func(c models.Client) bool { return c.ID != clientID })
	ds.Opportunities = filter(ds.Opportunities, func(o models.Opportunity) bool { return !deletedOpps[o.ID] })
	ds.Leads = filter(ds.Leads, func(l models.Lead) bool { return !deletedLeads[l.ID] })
	ds.Tasks = filter(ds.Tasks, func(t models.Task) bool {
		return t.ClientID != clientID && !(t.OpportunityID != "" && deletedOpps[t.OpportunityID])
	})
	ds.SupportTickets = filter(ds.SupportTickets, func(t models.SupportTicket) bool { return t.ClientID != clientID })
	ds.Interactions = filter(ds.Interactions, func(i models.Interaction) bool {
		return !(i.OpportunityID != "" && deletedOpps[i.OpportunityID]) &&
			!(i.LeadID != "" && deletedLeads[i.LeadID])
	})
	return nil
}
