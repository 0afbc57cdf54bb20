// ABOUTME: Tests for dashboard statistics and global search
// ABOUTME: Uses hand-built views so date ranges are easy to reason about
package crm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/medcrm/models"
)

func statsView() *models.View {
	v := &models.View{
		Clients:     []models.Client{{ID: "cli-1"}, {ID: "cli-2"}, {ID: "cli-3"}},
		Products:    []models.Product{{ID: "prod-1"}, {ID: "prod-2"}},
		Salespeople: []models.Salesperson{{ID: "sales-1", Name: "Ana Ruiz"}, {ID: "sales-2", Name: "Luis Gil"}},
		Leads: []models.Lead{
			{ID: "lead-1", SalespersonID: "sales-1", Source: "Feria", Status: models.LeadStatusNew, LastInteractionDate: "2024-06-10"},
			{ID: "lead-2", SalespersonID: "sales-1", Source: "Web", Status: models.LeadStatusLost, LastInteractionDate: "2024-06-12"},
			{ID: "lead-3", SalespersonID: "sales-2", Source: "Feria", Status: models.LeadStatusContacted, LastInteractionDate: "2024-05-02"},
			{ID: "lead-4", SalespersonID: "sales-2", Source: "Web", Status: models.LeadStatusNew},
		},
		Opportunities: []models.Opportunity{
			{ID: "opp-1", ClientID: "cli-1", SalespersonID: "sales-1", Stage: models.StageWon, Value: 1000, CloseDate: "2024-06-11"},
			{ID: "opp-2", ClientID: "cli-1", SalespersonID: "sales-1", Stage: models.StageWon, Value: 500, CloseDate: "2024-06-13"},
			{ID: "opp-3", ClientID: "cli-2", SalespersonID: "sales-2", Stage: models.StageWon, Value: 800, CloseDate: "2024-04-01"},
			{ID: "opp-4", SalespersonID: "sales-2", Stage: models.StageProposal, Value: 300, CloseDate: "2024-06-20"},
		},
		Interactions: []models.Interaction{
			{ID: "int-1", SalespersonID: "sales-1", Date: time.Date(2024, 6, 13, 8, 0, 0, 0, time.UTC)},
			{ID: "int-2", SalespersonID: "sales-2", Date: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
		},
	}
	v.Normalize()
	return v
}

func TestRangeStart(t *testing.T) {
	start, err := RangeStart(RangeAll, testNow)
	require.NoError(t, err)
	assert.Nil(t, start)

	start, err = RangeStart(Range7d, testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC), *start)

	start, err = RangeStart(Range30d, testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), *start)

	start, err = RangeStart(RangeMonth, testNow)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *start)

	_, err = RangeStart("year", testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestComputeStatsAllTime(t *testing.T) {
	stats := ComputeStats(statsView(), nil)

	assert.Equal(t, 3, stats.TotalClients)
	assert.Equal(t, 2, stats.ActiveClients)
	assert.Equal(t, 3, stats.ActiveLeads)
	assert.Equal(t, 2, stats.SalespeopleCount)
	assert.Equal(t, 2, stats.ProductsCount)

	assert.Equal(t, []SalespersonCount{{"sales-1", "Ana", 2}, {"sales-2", "Luis", 2}}, stats.LeadsBySalesperson)
	assert.Equal(t, []SalespersonCount{{"sales-1", "Ana", 1}, {"sales-2", "Luis", 1}}, stats.InteractionsBySalesperson)
	assert.Equal(t, []SalespersonCount{{"sales-1", "Ana", 2}, {"sales-2", "Luis", 2}}, stats.OpportunitiesBySalesperson)
	assert.Equal(t, []SalespersonCount{{"sales-1", "Ana", 1}, {"sales-2", "Luis", 1}}, stats.SecuredClientsBySalesperson)
	assert.Equal(t, []SourceCount{{"Feria", 2}, {"Web", 2}}, stats.LeadsBySource)

	require.Len(t, stats.Pipeline, len(models.Stages))
	won := stats.Pipeline[3]
	assert.Equal(t, models.StageWon, won.Stage)
	assert.Equal(t, 3, won.Count)
	assert.InDelta(t, 2300, won.Value, 0.0001)
}

func TestComputeStatsLastWeek(t *testing.T) {
	start, err := RangeStart(Range7d, testNow)
	require.NoError(t, err)

	stats := ComputeStats(statsView(), start)

	// lead-4 has no interaction date and lead-3 is too old
	assert.Equal(t, []SalespersonCount{{"sales-1", "Ana", 2}, {"sales-2", "Luis", 0}}, stats.LeadsBySalesperson)
	assert.Equal(t, 1, stats.ActiveLeads)
	assert.Equal(t, []SalespersonCount{{"sales-1", "Ana", 1}, {"sales-2", "Luis", 0}}, stats.InteractionsBySalesperson)

	// salespeople with nothing in range are dropped from these lists
	assert.Equal(t, []SalespersonCount{{"sales-1", "Ana", 2}, {"sales-2", "Luis", 1}}, stats.OpportunitiesBySalesperson)
	assert.Equal(t, []SalespersonCount{{"sales-1", "Ana", 1}}, stats.SecuredClientsBySalesperson)

	assert.Equal(t, 3, stats.TotalClients, "KPI cards ignore the range")
}

func TestServiceStatsUsesActorView(t *testing.T) {
	env := setupTestService(t)
	sp := env.addSalesperson(t, "Ana Ruiz")

	_, err := env.svc.AddLead(env.ctx, sp, models.Lead{Name: "Eva", Source: "Web"})
	require.NoError(t, err)
	_, err = env.svc.AddLead(env.ctx, env.admin, models.Lead{Name: "Otro", Source: "Web"})
	require.NoError(t, err)

	stats, err := env.svc.Stats(env.ctx, sp, "")
	require.NoError(t, err)
	assert.Equal(t, RangeAll, stats.Range)
	assert.Equal(t, 1, stats.ActiveLeads)

	all, err := env.svc.Stats(env.ctx, env.admin, RangeMonth)
	require.NoError(t, err)
	assert.NotNil(t, all.Since)

	_, err = env.svc.Stats(env.ctx, env.admin, "forever")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSearchView(t *testing.T) {
	view := &models.View{
		Clients: []models.Client{{ID: "cli-1", Name: "Hospital Central", ContactPerson: "Dr. Pérez"}},
		Leads:   []models.Lead{{ID: "lead-1", Name: "Eva", Company: "Centro Médico"}},
		Opportunities: []models.Opportunity{
			{ID: "opp-1", ClientName: "Hospital Central", Stage: models.StageProposal},
		},
		Tasks: []models.Task{
			{ID: "task-1", Title: "Visitar central"},
			{ID: "task-opp-opp-1", Title: "Cierre Oportunidad: Hospital Central", OpportunityID: "opp-1"},
		},
	}

	assert.Nil(t, SearchView(view, "c"), "single characters do not search")

	results := SearchView(view, "CENTRAL")
	var kinds []string
	for _, r := range results {
		kinds = append(kinds, r.Kind+":"+r.ID)
	}
	assert.Equal(t, []string{"client:cli-1", "opportunity:opp-1", "task:task-1"}, kinds)

	results = SearchView(view, "centro")
	require.Len(t, results, 1)
	assert.Equal(t, SearchResult{Kind: KindLead, ID: "lead-1", Title: "Eva", Subtitle: "Centro Médico"}, results[0])
}

func TestServiceSearchRespectsOwnership(t *testing.T) {
	env := setupTestService(t)
	sp := env.addSalesperson(t, "Ana Ruiz")

	_, err := env.svc.AddLead(env.ctx, env.admin, models.Lead{Name: "Eva Secreta"})
	require.NoError(t, err)

	results, err := env.svc.Search(env.ctx, sp, "secreta")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = env.svc.Search(env.ctx, env.admin, "secreta")
	require.NoError(t, err)
	assert.Len(t, results, 1)
}
