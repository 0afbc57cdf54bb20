// ABOUTME: Tests for CRM data models
// ABOUTME: Validates line totals, enum checks, dataset normalization and JSON shape
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	products := []OpportunityProduct{
		{ProductID: "prod-1", ProductName: "Monitor", Quantity: 2, Price: 100},
		{ProductID: "prod-2", ProductName: "Camilla", Quantity: 1, Price: 350.5},
	}

	assert.InDelta(t, 550.5, LineTotal(products), 0.0001)
	assert.Zero(t, LineTotal(nil))
}

func TestStageValidation(t *testing.T) {
	assert.True(t, IsValidStage(StageWon))
	assert.True(t, IsValidStage("Prospección"))
	assert.False(t, IsValidStage("closed_won"))
	assert.False(t, IsValidStage(""))
}

func TestEnumValidation(t *testing.T) {
	assert.True(t, IsValidLeadStatus(LeadStatusQualified))
	assert.False(t, IsValidLeadStatus("Qualified"))
	assert.True(t, IsValidTaskStatus(TaskStatusInProgress))
	assert.True(t, IsValidTicketStatus(TicketStatusClosed))
	assert.True(t, IsValidPriority(PriorityHigh))
	assert.True(t, IsValidInteractionType(InteractionMeeting))
	assert.False(t, IsValidInteractionType("fax"))
}

func TestNormalizeEncodesEmptyArrays(t *testing.T) {
	ds := &Dataset{
		Opportunities: []Opportunity{{ID: "opp-1", ClientName: "Hospital X"}},
	}
	ds.Normalize()

	data, err := json.Marshal(ds)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `[]`, string(raw["clients"]))
	assert.JSONEq(t, `[]`, string(raw["users"]))
	assert.NotNil(t, ds.Opportunities[0].Products)
}

func TestCollectionsCoverEveryKey(t *testing.T) {
	keys := StoreKeys()
	assert.Len(t, keys, 10)
	for _, k := range keys {
		assert.Contains(t, k, StoreKeyPrefix)
	}
}

func TestUserPublicDropsCredentials(t *testing.T) {
	u := User{ID: "sales-1", Role: RoleSalesperson, PasswordHash: "hash", LegacyPassword: "plain"}
	pub := u.Public()

	assert.Empty(t, pub.PasswordHash)
	assert.Empty(t, pub.LegacyPassword)
	assert.Equal(t, "hash", u.PasswordHash)
}

func TestUserProfileRoundTrip(t *testing.T) {
	sp := Salesperson{ID: "sales-1", Name: "Ana Ruiz", Email: "ana@example.com", Title: "Comercial"}
	u := User{ID: sp.ID, Role: RoleSalesperson}
	u.ApplyProfile(sp)

	assert.Equal(t, sp, u.Profile())
	assert.False(t, u.IsAdmin())
}

func TestFindClosingTask(t *testing.T) {
	value := 0.0
	ds := &Dataset{Tasks: []Task{
		{ID: "task-1"},
		{ID: "task-2", OpportunityID: "opp-9", Title: "Llamar a compras"},
		{ID: "task-opp-opp-9", OpportunityID: "opp-9", OpportunityValue: &value},
	}}

	assert.False(t, ds.Tasks[1].IsClosingTask(), "a linked manual task is not a closing task")

	task, idx := ds.FindClosingTask("opp-9")
	require.NotNil(t, task)
	assert.Equal(t, 2, idx)
	assert.True(t, task.IsClosingTask())

	missing, idx := ds.FindClosingTask("opp-1")
	assert.Nil(t, missing)
	assert.Equal(t, -1, idx)
}

func TestViewSubset(t *testing.T) {
	v := &View{
		Clients: []Client{{ID: "cli-1", Name: "Hospital X"}},
		Leads:   []Lead{{ID: "lead-1", Name: "Eva"}},
	}

	for _, name := range ViewCollections {
		_, ok := v.Collection(name)
		assert.True(t, ok, name)
	}
	_, ok := v.Collection("users")
	assert.False(t, ok)

	sub, ok := v.Subset("clients")
	require.True(t, ok)
	assert.Len(t, sub.Clients, 1)
	assert.NotNil(t, sub.Leads)
	assert.Empty(t, sub.Leads)

	_, ok = v.Subset("bogus")
	assert.False(t, ok)
}
