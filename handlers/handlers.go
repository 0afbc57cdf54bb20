// ABOUTME: Shared plumbing for the CRM MCP tool handlers
// ABOUTME: Resolves the acting user and registers every tool on a server
package handlers

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

// ActorFunc returns the user a tool call acts as. The CLI resolves the
// stored session on every call so a logout takes effect immediately.
type ActorFunc func(ctx context.Context) (*models.User, error)

type Handlers struct {
	svc   *crm.Service
	actor ActorFunc
}

func New(svc *crm.Service, actor ActorFunc) *Handlers {
	return &Handlers{svc: svc, actor: actor}
}

func (h *Handlers) me(ctx context.Context) (*models.User, error) {
	u, err := h.actor(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, crm.ErrUnauthenticated
	}
	return u, nil
}

// Tools that return CRM records declare an untyped output. The records
// carry time.Time fields that output schema inference cannot describe.

// DeleteOutput is returned by every delete tool.
type DeleteOutput struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// NewServer builds an MCP server exposing the CRM tools, resources and
// prompts.
func NewServer(h *Handlers, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "medcrm",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "whoami",
		Description: "Show the user the CRM tools act as",
	}, h.WhoAmI)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_view",
		Description: "Get the records visible to the current user, optionally limited to one collection",
	}, h.GetView)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_crm",
		Description: "Search clients, leads, opportunities and manual tasks (at least 2 characters)",
	}, h.SearchCRM)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dashboard_stats",
		Description: "Dashboard statistics for a range: all, 7d, 30d or month",
	}, h.DashboardStats)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_client",
		Description: "Add a new client (hospital, clinic or practice)",
	}, h.AddClient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_client",
		Description: "Update a client; its name is copied onto related opportunities and tickets",
	}, h.UpdateClient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_client",
		Description: "Delete a client and every opportunity, lead, task, ticket and interaction tied to it",
	}, h.DeleteClient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_lead",
		Description: "Add a new lead owned by the current user unless another salesperson is given",
	}, h.AddLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_lead_status",
		Description: "Change a lead's status: Nuevo, Contactado, Calificado or Perdido",
	}, h.UpdateLeadStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_lead",
		Description: "Delete a lead and its interactions",
	}, h.DeleteLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert_lead",
		Description: "Convert a lead into an opportunity with product line items",
	}, h.ConvertLead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_opportunity",
		Description: "Create an opportunity for a client; a closing task is created with it",
	}, h.CreateOpportunity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_opportunity_stage",
		Description: "Move an opportunity through the pipeline; winning it links or creates the client",
	}, h.UpdateOpportunityStage)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_opportunity",
		Description: "Delete an opportunity with its closing task and interactions",
	}, h.DeleteOpportunity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_task",
		Description: "Add a manual task, optionally linked to a client or lead",
	}, h.AddTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_task_status",
		Description: "Change a task's status: Pendiente, En Progreso or Completada",
	}, h.UpdateTaskStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_ticket",
		Description: "Open a support ticket for a client",
	}, h.AddTicket)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_ticket_status",
		Description: "Change a support ticket's status: Abierto, En Proceso or Cerrado",
	}, h.UpdateTicketStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_interaction",
		Description: "Log a call, email, message or meeting on a lead or opportunity",
	}, h.LogInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "render_template",
		Description: "Render a WhatsApp template (or the default message) for a lead and product",
	}, h.RenderTemplate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "send_template",
		Description: "Render a WhatsApp message, log it as an interaction and return the wa.me link",
	}, h.SendTemplate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz DOT graph of the pipeline, optionally for one client",
	}, h.GenerateGraph)

	registerResources(server, h)
	registerPrompts(server, h)

	return server
}
