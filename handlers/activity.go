// ABOUTME: MCP tools for tasks, support tickets, interactions and WhatsApp outreach
// ABOUTME: Day-to-day follow-up actions a salesperson takes on their records
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/medcrm/models"
)

type AddTaskInput struct {
	Title       string `json:"title" jsonschema:"Task title (required)"`
	Description string `json:"description,omitempty" jsonschema:"Details"`
	DueDate     string `json:"due_date,omitempty" jsonschema:"Due date (YYYY-MM-DD)"`
	ClientID    string `json:"client_id,omitempty" jsonschema:"Related client"`
	LeadID      string `json:"lead_id,omitempty" jsonschema:"Related lead"`
}

func (h *Handlers) AddTask(ctx context.Context, request *mcp.CallToolRequest, input AddTaskInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	task, err := h.svc.AddTask(ctx, me, models.Task{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		ClientID:    input.ClientID,
		LeadID:      input.LeadID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add task: %w", err)
	}
	return nil, task, nil
}

func (h *Handlers) UpdateTaskStatus(ctx context.Context, request *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	task, err := h.svc.SetTaskStatus(ctx, me, input.ID, input.Status)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update task: %w", err)
	}
	return nil, task, nil
}

type AddTicketInput struct {
	ClientID string `json:"client_id" jsonschema:"Client with the problem (required)"`
	Issue    string `json:"issue" jsonschema:"What is wrong (required)"`
	Priority string `json:"priority,omitempty" jsonschema:"Baja, Media (default) or Alta"`
}

func (h *Handlers) AddTicket(ctx context.Context, request *mcp.CallToolRequest, input AddTicketInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	ticket, err := h.svc.AddTicket(ctx, me, models.SupportTicket{
		ClientID: input.ClientID,
		Issue:    input.Issue,
		Priority: input.Priority,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add ticket: %w", err)
	}
	return nil, ticket, nil
}

func (h *Handlers) UpdateTicketStatus(ctx context.Context, request *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	ticket, err := h.svc.SetTicketStatus(ctx, me, input.ID, input.Status)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	return nil, ticket, nil
}

type LogInteractionInput struct {
	LeadID        string `json:"lead_id,omitempty" jsonschema:"Lead the interaction was with"`
	OpportunityID string `json:"opportunity_id,omitempty" jsonschema:"Opportunity the interaction was about"`
	Type          string `json:"type" jsonschema:"Llamada, Email, Mensaje or Reunión"`
	Notes         string `json:"notes,omitempty" jsonschema:"What happened"`
}

func (h *Handlers) LogInteraction(ctx context.Context, request *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, any, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, nil, err
	}
	interaction, err := h.svc.AddInteraction(ctx, me, models.Interaction{
		LeadID:        input.LeadID,
		OpportunityID: input.OpportunityID,
		Type:          input.Type,
		Notes:         input.Notes,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to log interaction: %w", err)
	}
	return nil, interaction, nil
}

type TemplateInput struct {
	TemplateID string `json:"template_id,omitempty" jsonschema:"Template to use; the default greeting when empty"`
	LeadID     string `json:"lead_id" jsonschema:"Lead to address (required)"`
	ProductID  string `json:"product_id" jsonschema:"Product to offer (required)"`
}

type RenderTemplateOutput struct {
	Message string `json:"message"`
}

func (h *Handlers) RenderTemplate(ctx context.Context, request *mcp.CallToolRequest, input TemplateInput) (*mcp.CallToolResult, RenderTemplateOutput, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, RenderTemplateOutput{}, err
	}
	msg, err := h.svc.RenderTemplate(ctx, me, input.TemplateID, input.LeadID, input.ProductID)
	if err != nil {
		return nil, RenderTemplateOutput{}, fmt.Errorf("failed to render template: %w", err)
	}
	return nil, RenderTemplateOutput{Message: msg}, nil
}

type SendTemplateOutput struct {
	Message       string `json:"message"`
	URL           string `json:"url"`
	InteractionID string `json:"interaction_id"`
}

func (h *Handlers) SendTemplate(ctx context.Context, request *mcp.CallToolRequest, input TemplateInput) (*mcp.CallToolResult, SendTemplateOutput, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, SendTemplateOutput{}, err
	}
	out, err := h.svc.SendTemplate(ctx, me, input.TemplateID, input.LeadID, input.ProductID)
	if err != nil {
		return nil, SendTemplateOutput{}, fmt.Errorf("failed to send template: %w", err)
	}
	return nil, SendTemplateOutput{
		Message:       out.Message,
		URL:           out.URL,
		InteractionID: out.Interaction.ID,
	}, nil
}
