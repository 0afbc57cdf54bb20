// ABOUTME: Tests for cascading mutations across collections
// ABOUTME: Covers client, lead, opportunity, product and salesperson deletes
package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/medcrm/models"
)

func TestDeleteClientCascades(t *testing.T) {
	env := setupTestService(t)
	sp := env.addSalesperson(t, "Ana Ruiz")
	prod := env.addProduct(t, "Monitor", 100)
	client := env.addClient(t, "Hospital X")
	other := env.addClient(t, "Centro Z")

	byID, err := env.svc.AddOpportunity(env.ctx, sp, models.Opportunity{
		ClientID: client.ID,
		Products: []models.OpportunityProduct{{ProductID: prod.ID, ProductName: prod.Name, Quantity: 1, Price: 100}},
		Value:    100,
	}, "")
	require.NoError(t, err)

	// matches by name only
	byName, err := env.svc.AddOpportunity(env.ctx, sp, models.Opportunity{Value: 50}, "hospital x")
	require.NoError(t, err)

	lead, err := env.svc.AddLead(env.ctx, sp, models.Lead{Name: "Eva", Company: "HOSPITAL X"})
	require.NoError(t, err)
	keepLead, err := env.svc.AddLead(env.ctx, sp, models.Lead{Name: "Luis", Company: "Centro Z"})
	require.NoError(t, err)

	_, err = env.svc.AddTask(env.ctx, sp, models.Task{Title: "Llamar", ClientID: client.ID})
	require.NoError(t, err)
	_, err = env.svc.AddTicket(env.ctx, sp, models.SupportTicket{ClientID: client.ID, Issue: "Pantalla rota"})
	require.NoError(t, err)
	_, err = env.svc.AddTicket(env.ctx, sp, models.SupportTicket{ClientID: other.ID, Issue: "Calibración"})
	require.NoError(t, err)

	_, err = env.svc.AddInteraction(env.ctx, sp, models.Interaction{LeadID: lead.ID, Type: models.InteractionCall, Notes: "hola"})
	require.NoError(t, err)
	_, err = env.svc.AddInteraction(env.ctx, sp, models.Interaction{OpportunityID: byName.ID, Type: models.InteractionEmail})
	require.NoError(t, err)
	kept, err := env.svc.AddInteraction(env.ctx, sp, models.Interaction{LeadID: keepLead.ID, Type: models.InteractionMeeting})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteClient(env.ctx, sp, client.ID))

	ds := env.dataset(t)
	for _, c := range ds.Clients {
		assert.NotEqual(t, client.ID, c.ID)
	}
	assert.Empty(t, ds.Opportunities)
	require.Len(t, ds.Leads, 1)
	assert.Equal(t, keepLead.ID, ds.Leads[0].ID)
	for _, task := range ds.Tasks {
		assert.NotEqual(t, client.ID, task.ClientID)
		assert.NotEqual(t, byID.ID, task.OpportunityID)
		assert.NotEqual(t, byName.ID, task.OpportunityID)
	}
	require.Len(t, ds.SupportTickets, 1)
	assert.Equal(t, other.ID, ds.SupportTickets[0].ClientID)
	require.Len(t, ds.Interactions, 1)
	assert.Equal(t, kept.ID, ds.Interactions[0].ID)
}

func TestDeleteMissingClientLeavesStoreUntouched(t *testing.T) {
	env := setupTestService(t)
	env.addClient(t, "Hospital X")

	err := env.svc.DeleteClient(env.ctx, env.admin, "cli-missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, env.dataset(t).Clients, 1)
}

func TestUpdateClientResyncsNames(t *testing.T) {
	env := setupTestService(t)
	client := env.addClient(t, "Hospital X")

	opp, err := env.svc.AddOpportunity(env.ctx, env.admin, models.Opportunity{ClientID: client.ID, Value: 10}, "")
	require.NoError(t, err)
	_, err = env.svc.AddTicket(env.ctx, env.admin, models.SupportTicket{ClientID: client.ID, Issue: "Falla"})
	require.NoError(t, err)

	client.Name = "Hospital X Central"
	_, err = env.svc.UpdateClient(env.ctx, env.admin, client)
	require.NoError(t, err)

	ds := env.dataset(t)
	o, _ := ds.FindOpportunity(opp.ID)
	assert.Equal(t, "Hospital X Central", o.ClientName)
	assert.Equal(t, "Hospital X Central", ds.SupportTickets[0].ClientName)
	task, _ := ds.FindClosingTask(opp.ID)
	require.NotNil(t, task)
	assert.Equal(t, "Cierre Oportunidad: Hospital X Central", task.Title)
	assert.Equal(t, "Hospital X Central", task.AssociatedName)
}

func TestDeleteLeadRemovesInteractions(t *testing.T) {
	env := setupTestService(t)
	lead, err := env.svc.AddLead(env.ctx, env.admin, models.Lead{Name: "Eva"})
	require.NoError(t, err)
	_, err = env.svc.AddInteraction(env.ctx, env.admin, models.Interaction{LeadID: lead.ID, Type: models.InteractionCall})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteLead(env.ctx, env.admin, lead.ID))

	ds := env.dataset(t)
	assert.Empty(t, ds.Leads)
	assert.Empty(t, ds.Interactions)
}

func TestDeleteOpportunityRemovesTaskAndInteractions(t *testing.T) {
	env := setupTestService(t)
	opp, err := env.svc.AddOpportunity(env.ctx, env.admin, models.Opportunity{Value: 10}, "Hospital X")
	require.NoError(t, err)
	_, err = env.svc.AddInteraction(env.ctx, env.admin, models.Interaction{OpportunityID: opp.ID, Type: models.InteractionEmail})
	require.NoError(t, err)
	require.Len(t, env.dataset(t).Tasks, 1)

	require.NoError(t, env.svc.DeleteOpportunity(env.ctx, env.admin, opp.ID))

	ds := env.dataset(t)
	assert.Empty(t, ds.Opportunities)
	assert.Empty(t, ds.Tasks)
	assert.Empty(t, ds.Interactions)
}

func TestDeleteProductRevaluesOpportunities(t *testing.T) {
	env := setupTestService(t)
	monitor := env.addProduct(t, "Monitor", 100)
	camilla := env.addProduct(t, "Camilla", 350)

	mixed, err := env.svc.AddOpportunity(env.ctx, env.admin, models.Opportunity{
		Products: []models.OpportunityProduct{
			{ProductID: monitor.ID, ProductName: "Monitor", Quantity: 2, Price: 100},
			{ProductID: camilla.ID, ProductName: "Camilla", Quantity: 1, Price: 350},
		},
		Value: 500, // negotiated discount
	}, "Hospital X")
	require.NoError(t, err)

	untouched, err := env.svc.AddOpportunity(env.ctx, env.admin, models.Opportunity{
		Products: []models.OpportunityProduct{{ProductID: camilla.ID, ProductName: "Camilla", Quantity: 1, Price: 350}},
		Value:    300,
	}, "Centro Z")
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteProduct(env.ctx, env.admin, monitor.ID))

	ds := env.dataset(t)
	require.Len(t, ds.Products, 1)

	o, _ := ds.FindOpportunity(mixed.ID)
	require.Len(t, o.Products, 1)
	assert.Equal(t, camilla.ID, o.Products[0].ProductID)
	assert.InDelta(t, models.LineTotal(o.Products), o.Value, 0.0001)

	task, _ := ds.FindClosingTask(mixed.ID)
	require.NotNil(t, task)
	require.NotNil(t, task.OpportunityValue)
	assert.InDelta(t, 350, *task.OpportunityValue, 0.0001)
	assert.Equal(t, "Valor estimado: €350", task.Description)

	other, _ := ds.FindClosingTask(untouched.ID)
	require.NotNil(t, other)
	assert.InDelta(t, 300, *other.OpportunityValue, 0.0001)

	u, _ := ds.FindOpportunity(untouched.ID)
	assert.InDelta(t, 300, u.Value, 0.0001, "opportunities without the product keep their value")

	for _, opp := range ds.Opportunities {
		for _, p := range opp.Products {
			assert.NotEqual(t, monitor.ID, p.ProductID)
		}
	}
}

func TestDeleteSalespersonReassignsToAdmin(t *testing.T) {
	env := setupTestService(t)
	sp := env.addSalesperson(t, "Sergio Paz")

	for _, name := range []string{"Eva", "Luis", "Marta"} {
		_, err := env.svc.AddLead(env.ctx, sp, models.Lead{Name: name})
		require.NoError(t, err)
	}
	opp, err := env.svc.AddOpportunity(env.ctx, sp, models.Opportunity{Value: 10}, "Hospital X")
	require.NoError(t, err)
	_, err = env.svc.AddInteraction(env.ctx, sp, models.Interaction{OpportunityID: opp.ID, Type: models.InteractionCall})
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteSalesperson(env.ctx, env.admin, sp.ID))

	ds := env.dataset(t)
	require.Len(t, ds.Leads, 3)
	for _, l := range ds.Leads {
		assert.Equal(t, models.AdminID, l.SalespersonID)
	}
	assert.Equal(t, models.AdminID, ds.Opportunities[0].SalespersonID)
	assert.Equal(t, models.AdminID, ds.Tasks[0].SalespersonID)
	assert.Equal(t, models.AdminID, ds.Interactions[0].SalespersonID)

	s, _ := ds.FindSalesperson(sp.ID)
	assert.Nil(t, s)
	u, _ := ds.FindUser(sp.ID)
	assert.Nil(t, u)
}

func TestUpdateSalespersonWithoutAccountNeedsPassword(t *testing.T) {
	env := setupTestService(t)
	sp, err := env.svc.AddSalesperson(env.ctx, env.admin, models.Salesperson{Name: "Sergio Paz"}, "temporal1")
	require.NoError(t, err)
	require.NoError(t, env.repo.Update(env.ctx, func(ds *models.Dataset) error {
		ds.Users = filter(ds.Users, func(u models.User) bool { return u.ID != sp.ID })
		return nil
	}))

	sp.Name = "Sergio Paz Gil"
	_, err = env.svc.UpdateSalesperson(env.ctx, env.admin, sp, "")
	assert.ErrorIs(t, err, ErrValidation)
	stored, _ := env.dataset(t).FindSalesperson(sp.ID)
	assert.Equal(t, "Sergio Paz", stored.Name)

	_, err = env.svc.UpdateSalesperson(env.ctx, env.admin, sp, "nueva1234")
	require.NoError(t, err)

	user, err := env.svc.Login(env.ctx, sp.ID, "nueva1234")
	require.NoError(t, err)
	assert.True(t, user.MustChangePassword)
	assert.Equal(t, "Sergio Paz Gil", user.Name)
}
