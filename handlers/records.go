// ABOUTME: MCP tools for clients, leads and opportunities
// ABOUTME: Covers creation, status moves, conversion and cascading deletes
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

type AddClientInput struct {
	Name          string `json:"name" jsonschema:"Client name (required)"`
	ContactPerson string `json:"contact_person,omitempty" jsonschema:"Main contact at the client"`
	Email         string `json:"email,omitempty" jsonschema:"Contact email"`
	Phone         string `json:"phone,omitempty" jsonschema:"Contact phone"`
	Address       string `json:"address,omitempty" jsonschema:"Postal address"`
}

func (h *Handlers) AddClient(ctx context.Context, request *mcp.CallToolRequest, input AddClientInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	client, err := h.svc.AddClient(ctx, me, models.Client{
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         input.Phone,
		Address:       input.Address,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add client: %w", err)
	}
	return nil, client, nil
}

type UpdateClientInput struct {
	ID            string `json:"id" jsonschema:"Client ID (required)"`
	Name          string `json:"name,omitempty" jsonschema:"New client name"`
	ContactPerson string `json:"contact_person,omitempty" jsonschema:"Main contact at the client"`
	Email         string `json:"email,omitempty" jsonschema:"Contact email"`
	Phone         string `json:"phone,omitempty" jsonschema:"Contact phone"`
	Address       string `json:"address,omitempty" jsonschema:"Postal address"`
}

func (h *Handlers) UpdateClient(ctx context.Context, request *mcp.CallToolRequest, input UpdateClientInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	view, err := h.svc.View(ctx, me)
	if err != nil {
		return nil, nil, err
	}
	var client *models.Client
	for i := range view.Clients {
		if view.Clients[i].ID == input.ID {
			c := view.Clients[i]
			client = &c
		}
	}
	if client == nil {
		return nil, nil, fmt.Errorf("client not found: %s", input.ID)
	}

	if input.Name != "" {
		client.Name = input.Name
	}
	if input.ContactPerson != "" {
		client.ContactPerson = input.ContactPerson
	}
	if input.Email != "" {
		client.Email = input.Email
	}
	if input.Phone != "" {
		client.Phone = input.Phone
	}
	if input.Address != "" {
		client.Address = input.Address
	}

	updated, err := h.svc.UpdateClient(ctx, me, *client)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update client: %w", err)
	}
	return nil, updated, nil
}

type DeleteInput struct {
	ID string `json:"id" jsonschema:"ID of the record to delete (required)"`
}

func (h *Handlers) DeleteClient(ctx context.Context, request *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	if err := h.svc.DeleteClient(ctx, me, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete client: %w", err)
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

type AddLeadInput struct {
	Name          string `json:"name" jsonschema:"Lead name (required)"`
	Company       string `json:"company,omitempty" jsonschema:"Company the lead works for"`
	Email         string `json:"email,omitempty" jsonschema:"Email address"`
	Phone         string `json:"phone,omitempty" jsonschema:"Phone number, used for WhatsApp"`
	Source        string `json:"source,omitempty" jsonschema:"Where the lead came from"`
	Status        string `json:"status,omitempty" jsonschema:"Nuevo (default), Contactado, Calificado or Perdido"`
	SalespersonID string `json:"salesperson_id,omitempty" jsonschema:"Owner (admins only; defaults to the current user)"`
}

func (h *Handlers) AddLead(ctx context.Context, request *mcp.CallToolRequest, input AddLeadInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	lead, err := h.svc.AddLead(ctx, me, models.Lead{
		Name:          input.Name,
		Company:       input.Company,
		Email:         input.Email,
		Phone:         input.Phone,
		Source:        input.Source,
		Status:        input.Status,
		SalespersonID: input.SalespersonID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add lead: %w", err)
	}
	return nil, lead, nil
}

type StatusInput struct {
	ID     string `json:"id" jsonschema:"Record ID (required)"`
	Status string `json:"status" jsonschema:"New status (required)"`
}

func (h *Handlers) UpdateLeadStatus(ctx context.Context, request *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	lead, err := h.svc.SetLeadStatus(ctx, me, input.ID, input.Status)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return nil, lead, nil
}

func (h *Handlers) DeleteLead(ctx context.Context, request *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	if err := h.svc.DeleteLead(ctx, me, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete lead: %w", err)
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}

type LineItemInput struct {
	ProductID string   `json:"product_id" jsonschema:"Catalog product ID"`
	Quantity  int      `json:"quantity" jsonschema:"Units (positive)"`
	Price     *float64 `json:"price,omitempty" jsonschema:"Unit price; defaults to the catalog price"`
}

// lineItems snapshots catalog names and prices into opportunity lines.
func lineItems(view *models.View, items []LineItemInput) ([]models.OpportunityProduct, error) {
	out := make([]models.OpportunityProduct, 0, len(items))
	for _, item := range items {
		line, err := crm.CatalogLine(view.Products, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

type ConvertLeadInput struct {
	LeadID    string          `json:"lead_id" jsonschema:"Lead to convert (required)"`
	Products  []LineItemInput `json:"products,omitempty" jsonschema:"Line items; the value is their total"`
	CloseDate string          `json:"close_date,omitempty" jsonschema:"Expected close date (YYYY-MM-DD)"`
	Stage     string          `json:"stage,omitempty" jsonschema:"Prospección (default), Propuesta, Negociación, Ganada or Perdida"`
}

func (h *Handlers) ConvertLead(ctx context.Context, request *mcp.CallToolRequest, input ConvertLeadInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	view, err := h.svc.View(ctx, me)
	if err != nil {
		return nil, nil, err
	}
	products, err := lineItems(view, input.Products)
	if err != nil {
		return nil, nil, err
	}
	opp, err := h.svc.ConvertLead(ctx, me, input.LeadID, crm.ConvertInput{
		Products:  products,
		CloseDate: input.CloseDate,
		Stage:     input.Stage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to convert lead: %w", err)
	}
	return nil, opp, nil
}

type CreateOpportunityInput struct {
	ClientID   string          `json:"client_id,omitempty" jsonschema:"Existing client ID"`
	ClientName string          `json:"client_name,omitempty" jsonschema:"Client name when there is no client record yet"`
	Products   []LineItemInput `json:"products,omitempty" jsonschema:"Line items"`
	Value      *float64        `json:"value,omitempty" jsonschema:"Negotiated value; defaults to the line-item total"`
	Stage      string          `json:"stage,omitempty" jsonschema:"Prospección (default), Propuesta, Negociación, Ganada or Perdida"`
	CloseDate  string          `json:"close_date,omitempty" jsonschema:"Expected close date (YYYY-MM-DD)"`
}

func (h *Handlers) CreateOpportunity(ctx context.Context, request *mcp.CallToolRequest, input CreateOpportunityInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	view, err := h.svc.View(ctx, me)
	if err != nil {
		return nil, nil, err
	}
	products, err := lineItems(view, input.Products)
	if err != nil {
		return nil, nil, err
	}
	value := models.LineTotal(products)
	if input.Value != nil {
		value = *input.Value
	}

	opp, err := h.svc.AddOpportunity(ctx, me, models.Opportunity{
		ClientID:  input.ClientID,
		Products:  products,
		Value:     value,
		Stage:     input.Stage,
		CloseDate: input.CloseDate,
	}, input.ClientName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create opportunity: %w", err)
	}
	return nil, opp, nil
}

type StageInput struct {
	ID    string `json:"id" jsonschema:"Opportunity ID (required)"`
	Stage string `json:"stage" jsonschema:"Prospección, Propuesta, Negociación, Ganada or Perdida"`
}

func (h *Handlers) UpdateOpportunityStage(ctx context.Context, request *mcp.CallToolRequest, input StageInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	opp, err := h.svc.SetOpportunityStage(ctx, me, input.ID, input.Stage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update opportunity: %w", err)
	}
	return nil, opp, nil
}

func (h *Handlers) DeleteOpportunity(ctx context.Context, request *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, DeleteOutput{}, err
	}
	if err := h.svc.DeleteOpportunity(ctx, me, input.ID); err != nil {
		return nil, DeleteOutput{}, fmt.Errorf("failed to delete opportunity: %w", err)
	}
	return nil, DeleteOutput{ID: input.ID, Deleted: true}, nil
}
