// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Builds lead outreach, follow-up and pipeline review prompts from the current view
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

func registerPrompts(server *mcp.Server, h *Handlers) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "lead-outreach",
		Description: "Draft a WhatsApp or email approach for a lead using its interaction history",
		Arguments: []*mcp.PromptArgument{
			{Name: "lead_id", Description: "Lead to approach", Required: true},
		},
	}, h.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-suggestions",
		Description: "Suggest which leads need attention based on time since last interaction",
		Arguments: []*mcp.PromptArgument{
			{Name: "days", Description: "Leads untouched for at least this many days (default 7)"},
		},
	}, h.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "pipeline-review",
		Description: "Review open opportunities and pending tasks for the current user",
	}, h.GetPrompt)
}

// GetPrompt generates the prompt message based on the template
func (h *Handlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, err
	}
	view, err := h.svc.View(ctx, me)
	if err != nil {
		return nil, err
	}

	args := request.Params.Arguments
	switch request.Params.Name {
	case "lead-outreach":
		return leadOutreachPrompt(view, args)
	case "follow-up-suggestions":
		return followUpPrompt(view, args, time.Now())
	case "pipeline-review":
		return pipelineReviewPrompt(view)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func leadOutreachPrompt(view *models.View, args map[string]string) (*mcp.GetPromptResult, error) {
	leadID, ok := args["lead_id"]
	if !ok || leadID == "" {
		return nil, fmt.Errorf("lead_id is required")
	}

	var lead *models.Lead
	for i := range view.Leads {
		if view.Leads[i].ID == leadID {
			lead = &view.Leads[i]
			break
		}
	}
	if lead == nil {
		return nil, fmt.Errorf("failed to fetch lead: %w", crm.ErrNotFound)
	}

	var promptText strings.Builder
	promptText.WriteString("Draft a short, friendly first message in Spanish for this medical equipment lead:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", lead.Name))
	promptText.WriteString(fmt.Sprintf("Company: %s\n", lead.Company))
	promptText.WriteString(fmt.Sprintf("Status: %s\n", lead.Status))
	if lead.Source != "" {
		promptText.WriteString(fmt.Sprintf("Source: %s\n", lead.Source))
	}
	if lead.LastInteractionDate != "" {
		promptText.WriteString(fmt.Sprintf("Last interaction: %s\n", lead.LastInteractionDate))
	}

	history := 0
	for _, in := range view.Interactions {
		if in.LeadID != lead.ID {
			continue
		}
		if history == 0 {
			promptText.WriteString("\nHistory:\n")
		}
		history++
		promptText.WriteString(fmt.Sprintf("- %s %s: %s\n", in.Date.Format("2006-01-02"), in.Type, in.Notes))
	}

	if len(view.Products) > 0 {
		promptText.WriteString("\nCatalog:\n")
		for _, p := range view.Products {
			promptText.WriteString(fmt.Sprintf("- %s (€%s)\n", p.Name, crm.FormatEuro(p.Price)))
		}
	}
	promptText.WriteString("\nPick the product that best fits the company and keep the message under 60 words.")

	return userPrompt(fmt.Sprintf("Outreach for %s", lead.Name), promptText.String()), nil
}

func followUpPrompt(view *models.View, args map[string]string, now time.Time) (*mcp.GetPromptResult, error) {
	days := 7
	if raw := args["days"]; raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid days: %q", raw)
		}
		days = n
	}
	cutoff := now.AddDate(0, 0, -days).Format("2006-01-02")

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("These leads have had no interaction in the last %d days:\n\n", days))
	count := 0
	for _, lead := range view.Leads {
		if lead.Status == models.LeadStatusLost {
			continue
		}
		last := lead.LastInteractionDate
		if last != "" && last > cutoff {
			continue
		}
		count++
		if last == "" {
			last = "never"
		}
		promptText.WriteString(fmt.Sprintf("- %s (%s), status %s, last contact %s\n", lead.Name, lead.Company, lead.Status, last))
	}
	if count == 0 {
		promptText.WriteString("(none)\n")
	}
	promptText.WriteString("\nRank them by urgency and suggest one concrete next step for each.")

	return userPrompt("Follow-up suggestions", promptText.String()), nil
}

func pipelineReviewPrompt(view *models.View) (*mcp.GetPromptResult, error) {
	var promptText strings.Builder
	promptText.WriteString("Review this sales pipeline and point out risks and next actions:\n\n")

	var open float64
	promptText.WriteString("Opportunities:\n")
	for _, opp := range view.Opportunities {
		promptText.WriteString(fmt.Sprintf("- %s: €%s, %s, closes %s\n", opp.ClientName, crm.FormatEuro(opp.Value), opp.Stage, opp.CloseDate))
		if opp.Stage != models.StageWon && opp.Stage != models.StageLost {
			open += opp.Value
		}
	}
	promptText.WriteString(fmt.Sprintf("\nOpen pipeline value: €%s\n", crm.FormatEuro(open)))

	promptText.WriteString("\nPending tasks:\n")
	for _, task := range view.Tasks {
		if task.Status == models.TaskStatusCompleted {
			continue
		}
		promptText.WriteString(fmt.Sprintf("- %s (due %s, %s)\n", task.Title, task.DueDate, task.Status))
	}

	return userPrompt("Pipeline review", promptText.String()), nil
}
