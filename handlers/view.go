// ABOUTME: Read-only MCP tools over the current user's view
// ABOUTME: Implements whoami, get_view, search_crm and dashboard_stats
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

type WhoAmIInput struct{}

type UserOutput struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password,omitempty"`
}

func (h *Handlers) WhoAmI(ctx context.Context, request *mcp.CallToolRequest, input WhoAmIInput) (*mcp.CallToolResult, UserOutput, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, UserOutput{}, err
	}
	return nil, UserOutput{
		ID:                 me.ID,
		Name:               me.Name,
		Email:              me.Email,
		Role:               me.Role,
		MustChangePassword: me.MustChangePassword,
	}, nil
}

type GetViewInput struct {
	Collection string `json:"collection,omitempty" jsonschema:"Only return one collection: clients, leads, products, opportunities, tasks, supportTickets, salespeople, interactions or whatsappTemplates"`
}

type GetViewOutput struct {
	View *models.View `json:"view"`
}

func (h *Handlers) GetView(ctx context.Context, request *mcp.CallToolRequest, input GetViewInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	view, err := h.svc.View(ctx, me)
	if err != nil {
		return nil, nil, err
	}
	if input.Collection == "" {
		return nil, GetViewOutput{View: view}, nil
	}

	out, ok := view.Subset(input.Collection)
	if !ok {
		return nil, nil, fmt.Errorf("unknown collection: %s", input.Collection)
	}
	return nil, GetViewOutput{View: out}, nil
}

type SearchInput struct {
	Query string `json:"query" jsonschema:"Search term (at least 2 characters)"`
}

type SearchOutput struct {
	Results []crm.SearchResult `json:"results"`
	Count   int                `json:"count"`
}

func (h *Handlers) SearchCRM(ctx context.Context, request *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	results, err := h.svc.Search(ctx, me, input.Query)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	if results == nil {
		results = []crm.SearchResult{}
	}
	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

type StatsInput struct {
	Range string `json:"range,omitempty" jsonschema:"all (default), 7d, 30d or month"`
}

func (h *Handlers) DashboardStats(ctx context.Context, request *mcp.CallToolRequest, input StatsInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	stats, err := h.svc.Stats(ctx, me, input.Range)
	if err != nil {
		return nil, nil, err
	}
	return nil, stats, nil
}
