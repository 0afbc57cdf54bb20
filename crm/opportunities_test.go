// ABOUTME: Tests for opportunities, lead conversion and closing tasks
// ABOUTME: Includes the won-without-client flows and ownership checks
package crm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/medcrm/models"
)

func TestAddOpportunityCreatesClosingTask(t *testing.T) {
	env := setupTestService(t)
	prod := env.addProduct(t, "Monitor", 100)
	client := env.addClient(t, "Hospital X")

	opp, err := env.svc.AddOpportunity(env.ctx, env.admin, models.Opportunity{
		ClientID:  client.ID,
		Products:  []models.OpportunityProduct{{ProductID: prod.ID, ProductName: prod.Name, Quantity: 2, Price: 100}},
		Stage:     models.StageProposal,
		Value:     200,
		CloseDate: "2024-07-01",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "Hospital X", opp.ClientName)
	assert.Equal(t, models.AdminID, opp.SalespersonID)

	ds := env.dataset(t)
	require.Len(t, ds.Tasks, 1)
	task := ds.Tasks[0]
	assert.Equal(t, ClosingTaskID(opp.ID), task.ID)
	assert.Equal(t, "Cierre Oportunidad: Hospital X", task.Title)
	assert.Equal(t, "Valor estimado: €200", task.Description)
	assert.Equal(t, "2024-07-01", task.DueDate)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, client.ID, task.ClientID)
	require.NotNil(t, task.OpportunityValue)
	assert.InDelta(t, 200, *task.OpportunityValue, 0.0001)
}

func TestAddOpportunityWithoutClientNameFails(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.AddOpportunity(env.ctx, env.admin, models.Opportunity{ClientID: "cli-missing"}, "")
	assert.ErrorIs(t, err, ErrValidation)

	ds := env.dataset(t)
	assert.Empty(t, ds.Opportunities)
	assert.Empty(t, ds.Tasks)
}

func TestConvertLeadWonCreatesClient(t *testing.T) {
	env := setupTestService(t)
	sp := env.addSalesperson(t, "Ana Ruiz")
	prod := env.addProduct(t, "Ecógrafo", 1500)

	lead, err := env.svc.AddLead(env.ctx, sp, models.Lead{
		Name:    "Dra. Soto",
		Company: "Clinica Y",
		Email:   "soto@clinicay.es",
		Phone:   "+34 600 000 000",
		Source:  "Feria",
	})
	require.NoError(t, err)

	opp, err := env.svc.ConvertLead(env.ctx, sp, lead.ID, ConvertInput{
		Products:  []models.OpportunityProduct{{ProductID: prod.ID, ProductName: prod.Name, Quantity: 2, Price: 1500}},
		CloseDate: "2024-06-30",
		Stage:     models.StageWon,
	})
	require.NoError(t, err)
	assert.InDelta(t, 3000, opp.Value, 0.0001)
	assert.Equal(t, lead.ID, opp.OriginalLeadID)

	ds := env.dataset(t)
	require.Len(t, ds.Clients, 1)
	client := ds.Clients[0]
	assert.Equal(t, "Clinica Y", client.Name)
	assert.Equal(t, "Dra. Soto", client.ContactPerson)
	assert.Equal(t, "soto@clinicay.es", client.Email)
	assert.Equal(t, client.ID, opp.ClientID)

	stored, _ := ds.FindOpportunity(opp.ID)
	assert.Equal(t, client.ID, stored.ClientID)

	l, _ := ds.FindLead(lead.ID)
	assert.Equal(t, models.LeadStatusQualified, l.Status)

	task, _ := ds.FindClosingTask(opp.ID)
	require.NotNil(t, task)
	assert.Equal(t, client.ID, task.ClientID)
}

func TestConvertLeadNotWonLeavesClientsAlone(t *testing.T) {
	env := setupTestService(t)
	lead, err := env.svc.AddLead(env.ctx, env.admin, models.Lead{Name: "Eva", Company: "Centro Z"})
	require.NoError(t, err)

	opp, err := env.svc.ConvertLead(env.ctx, env.admin, lead.ID, ConvertInput{Stage: models.StageProspecting})
	require.NoError(t, err)
	assert.Equal(t, "Centro Z", opp.ClientName)
	assert.Empty(t, opp.ClientID)
	assert.Empty(t, env.dataset(t).Clients)
}

func TestUpdateOpportunityWonReusesClientByName(t *testing.T) {
	env := setupTestService(t)
	client := env.addClient(t, "Hospital X")

	opp, err := env.svc.AddOpportunity(env.ctx, env.admin, models.Opportunity{Value: 100, CloseDate: "2024-07-01"}, "hospital x")
	require.NoError(t, err)

	_, err = env.svc.SetTaskStatus(env.ctx, env.admin, ClosingTaskID(opp.ID), models.TaskStatusInProgress)
	require.NoError(t, err)

	opp.Stage = models.StageWon
	opp.Value = 12000
	updated, err := env.svc.UpdateOpportunity(env.ctx, env.admin, opp)
	require.NoError(t, err)
	assert.Equal(t, client.ID, updated.ClientID)
	assert.Equal(t, "Hospital X", updated.ClientName)

	ds := env.dataset(t)
	assert.Len(t, ds.Clients, 1, "no duplicate client")
	require.Len(t, ds.Tasks, 1)
	task := &ds.Tasks[0]
	assert.Equal(t, "Cierre Oportunidad: Hospital X", task.Title)
	assert.Equal(t, "Valor estimado: €12.000", task.Description)
	assert.Equal(t, models.TaskStatusInProgress, task.Status, "refresh keeps the task status")
	assert.Equal(t, client.ID, task.ClientID)
}

func TestUpdateOpportunityRecreatesMissingClosingTask(t *testing.T) {
	env := setupTestService(t)
	opp, err := env.svc.AddOpportunity(env.ctx, env.admin, models.Opportunity{Value: 10}, "Centro Z")
	require.NoError(t, err)
	require.NoError(t, env.repo.Update(env.ctx, func(ds *models.Dataset) error {
		ds.Tasks = nil
		return nil
	}))

	_, err = env.svc.UpdateOpportunity(env.ctx, env.admin, opp)
	require.NoError(t, err)

	task, _ := env.dataset(t).FindClosingTask(opp.ID)
	require.NotNil(t, task)
	assert.Equal(t, models.TaskStatusPending, task.Status)
}

func TestSalespersonCannotTouchOthersRecords(t *testing.T) {
	env := setupTestService(t)
	ana := env.addSalesperson(t, "Ana Ruiz")
	luis := env.addSalesperson(t, "Luis Gil")

	opp, err := env.svc.AddOpportunity(env.ctx, ana, models.Opportunity{Value: 10}, "Hospital X")
	require.NoError(t, err)
	lead, err := env.svc.AddLead(env.ctx, ana, models.Lead{Name: "Eva"})
	require.NoError(t, err)

	_, err = env.svc.UpdateOpportunity(env.ctx, luis, opp)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, env.svc.DeleteOpportunity(env.ctx, luis, opp.ID), ErrForbidden)
	assert.ErrorIs(t, env.svc.DeleteLead(env.ctx, luis, lead.ID), ErrForbidden)
	assert.ErrorIs(t, env.svc.DeleteTask(env.ctx, luis, ClosingTaskID(opp.ID)), ErrForbidden)

	_, err = env.svc.AddLead(env.ctx, luis, models.Lead{Name: "Robo", SalespersonID: ana.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	// admins may reassign
	lead.SalespersonID = luis.ID
	_, err = env.svc.UpdateLead(env.ctx, env.admin, lead)
	assert.NoError(t, err)
}

func TestTaskAssociatedName(t *testing.T) {
	env := setupTestService(t)
	client := env.addClient(t, "Hospital X")
	lead, err := env.svc.AddLead(env.ctx, env.admin, models.Lead{Name: "Eva"})
	require.NoError(t, err)

	withLead, err := env.svc.AddTask(env.ctx, env.admin, models.Task{Title: "Llamar", LeadID: lead.ID})
	require.NoError(t, err)
	assert.Equal(t, "Eva", withLead.AssociatedName)

	withBoth, err := env.svc.AddTask(env.ctx, env.admin, models.Task{Title: "Visitar", LeadID: lead.ID, ClientID: client.ID})
	require.NoError(t, err)
	assert.Equal(t, "Hospital X", withBoth.AssociatedName)

	withBoth.ClientID = ""
	updated, err := env.svc.UpdateTask(env.ctx, env.admin, withBoth)
	require.NoError(t, err)
	assert.Equal(t, "Eva", updated.AssociatedName)
}

func TestTicketRequiresKnownClient(t *testing.T) {
	env := setupTestService(t)

	_, err := env.svc.AddTicket(env.ctx, env.admin, models.SupportTicket{ClientID: "cli-missing", Issue: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	client := env.addClient(t, "Hospital X")
	ticket, err := env.svc.AddTicket(env.ctx, env.admin, models.SupportTicket{ClientID: client.ID, Issue: "Pantalla"})
	require.NoError(t, err)
	assert.Equal(t, "Hospital X", ticket.ClientName)
	assert.Equal(t, "2024-06-14", ticket.CreatedDate)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)
	assert.Equal(t, models.PriorityMedium, ticket.Priority)
}

func TestAddInteractionStampsLead(t *testing.T) {
	env := setupTestService(t)
	lead, err := env.svc.AddLead(env.ctx, env.admin, models.Lead{Name: "Eva"})
	require.NoError(t, err)

	interaction, err := env.svc.AddInteraction(env.ctx, env.admin, models.Interaction{LeadID: lead.ID, Type: models.InteractionMeeting, Notes: "Demo"})
	require.NoError(t, err)
	assert.Equal(t, testNow, interaction.Date)
	assert.Equal(t, models.AdminID, interaction.SalespersonID)

	l, _ := env.dataset(t).FindLead(lead.ID)
	assert.Equal(t, "2024-06-14", l.LastInteractionDate)

	_, err = env.svc.AddInteraction(env.ctx, env.admin, models.Interaction{LeadID: lead.ID, Type: "Fax"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetStatusHelpers(t *testing.T) {
	env := setupTestService(t)
	ana := env.addSalesperson(t, "Ana Ruiz")
	luis := env.addSalesperson(t, "Luis Gil")
	client := env.addClient(t, "Hospital X")

	lead, err := env.svc.AddLead(env.ctx, ana, models.Lead{Name: "Eva"})
	require.NoError(t, err)
	updated, err := env.svc.SetLeadStatus(env.ctx, ana, lead.ID, models.LeadStatusContacted)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)
	_, err = env.svc.SetLeadStatus(env.ctx, ana, lead.ID, "Dormido")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.svc.SetLeadStatus(env.ctx, luis, lead.ID, models.LeadStatusLost)
	assert.ErrorIs(t, err, ErrForbidden)

	opp, err := env.svc.AddOpportunity(env.ctx, ana, models.Opportunity{Value: 10}, "hospital x")
	require.NoError(t, err)
	won, err := env.svc.SetOpportunityStage(env.ctx, ana, opp.ID, models.StageWon)
	require.NoError(t, err)
	assert.Equal(t, client.ID, won.ClientID)

	task, err := env.svc.SetTaskStatus(env.ctx, ana, ClosingTaskID(opp.ID), models.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, task.Status)

	ticket, err := env.svc.AddTicket(env.ctx, ana, models.SupportTicket{ClientID: client.ID, Issue: "Falla"})
	require.NoError(t, err)
	ticket, err = env.svc.SetTicketStatus(env.ctx, luis, ticket.ID, models.TicketStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusClosed, ticket.Status)
}

func TestClosingTaskCannotBeEditedOrDeleted(t *testing.T) {
	env := setupTestService(t)
	opp, err := env.svc.AddOpportunity(env.ctx, env.admin, models.Opportunity{Value: 200}, "Hospital X")
	require.NoError(t, err)

	task, _ := env.dataset(t).FindClosingTask(opp.ID)
	require.NotNil(t, task)
	task.Title = "Otra cosa"
	_, err = env.svc.UpdateTask(env.ctx, env.admin, *task)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, env.svc.DeleteTask(env.ctx, env.admin, task.ID), ErrValidation)

	done, err := env.svc.SetTaskStatus(env.ctx, env.admin, task.ID, models.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, done.Status)
}

func TestManualTaskLinkedToOpportunityIsNotRewritten(t *testing.T) {
	env := setupTestService(t)
	opp, err := env.svc.AddOpportunity(env.ctx, env.admin, models.Opportunity{Value: 200}, "Hospital X")
	require.NoError(t, err)

	value := 999.0
	manual, err := env.svc.AddTask(env.ctx, env.admin, models.Task{
		Title:            "Llamar a compras",
		OpportunityID:    opp.ID,
		OpportunityValue: &value,
	})
	require.NoError(t, err)
	assert.False(t, manual.IsClosingTask())
	assert.Equal(t, "Hospital X", manual.AssociatedName)

	opp.Value = 500
	_, err = env.svc.UpdateOpportunity(env.ctx, env.admin, opp)
	require.NoError(t, err)

	ds := env.dataset(t)
	require.Len(t, ds.Tasks, 2)

	stored, _ := ds.FindTask(manual.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "Llamar a compras", stored.Title)
	assert.Empty(t, stored.Description)
	assert.Nil(t, stored.OpportunityValue)

	closing, _ := ds.FindClosingTask(opp.ID)
	require.NotNil(t, closing)
	assert.Equal(t, ClosingTaskID(opp.ID), closing.ID)
	assert.Equal(t, "Valor estimado: €500", closing.Description)
	assert.InDelta(t, 500, *closing.OpportunityValue, 0.0001)

	stored.Title = "Llamar a compras otra vez"
	_, err = env.svc.UpdateTask(env.ctx, env.admin, *stored)
	require.NoError(t, err)
	require.NoError(t, env.svc.DeleteTask(env.ctx, env.admin, manual.ID))
}

func TestAdminConvertKeepsLeadOwner(t *testing.T) {
	env := setupTestService(t)
	ana := env.addSalesperson(t, "Ana Ruiz")
	lead, err := env.svc.AddLead(env.ctx, ana, models.Lead{Name: "Eva", Company: "Centro Z"})
	require.NoError(t, err)

	opp, err := env.svc.ConvertLead(env.ctx, env.admin, lead.ID, ConvertInput{Stage: models.StageProspecting})
	require.NoError(t, err)
	assert.Equal(t, ana.ID, opp.SalespersonID)

	task, _ := env.dataset(t).FindClosingTask(opp.ID)
	require.NotNil(t, task)
	assert.Equal(t, ana.ID, task.SalespersonID)

	view, err := env.svc.View(env.ctx, ana)
	require.NoError(t, err)
	require.Len(t, view.Opportunities, 1)
	assert.Equal(t, opp.ID, view.Opportunities[0].ID)
}
