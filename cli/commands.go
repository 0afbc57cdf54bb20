// ABOUTME: Dispatch table for 'medcrm crm <command>' subcommands
// ABOUTME: Maps command names to their handlers and prints grouped help
package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
)

// Command is the signature every subcommand implements.
type Command func(ctx context.Context, app *App, args []string) error

var crmCommands = map[string]Command{
	"add-client":    AddClientCommand,
	"list-clients":  ListClientsCommand,
	"update-client": UpdateClientCommand,
	"delete-client": DeleteClientCommand,

	"add-lead":        AddLeadCommand,
	"list-leads":      ListLeadsCommand,
	"update-lead":     UpdateLeadCommand,
	"set-lead-status": SetLeadStatusCommand,
	"delete-lead":     DeleteLeadCommand,
	"convert-lead":    ConvertLeadCommand,

	"add-opportunity":    AddOpportunityCommand,
	"list-opportunities": ListOpportunitiesCommand,
	"update-opportunity": UpdateOpportunityCommand,
	"set-stage":          SetStageCommand,
	"delete-opportunity": DeleteOpportunityCommand,

	"add-task":        AddTaskCommand,
	"list-tasks":      ListTasksCommand,
	"set-task-status": SetTaskStatusCommand,
	"delete-task":     DeleteTaskCommand,

	"add-ticket":        AddTicketCommand,
	"list-tickets":      ListTicketsCommand,
	"set-ticket-status": SetTicketStatusCommand,
	"delete-ticket":     DeleteTicketCommand,

	"log-interaction":    LogInteractionCommand,
	"list-interactions":  ListInteractionsCommand,
	"delete-interaction": DeleteInteractionCommand,

	"add-product":    AddProductCommand,
	"list-products":  ListProductsCommand,
	"update-product": UpdateProductCommand,
	"delete-product": DeleteProductCommand,

	"add-salesperson":    AddSalespersonCommand,
	"list-salespeople":   ListSalespeopleCommand,
	"update-salesperson": UpdateSalespersonCommand,
	"delete-salesperson": DeleteSalespersonCommand,

	"add-template":    AddTemplateCommand,
	"list-templates":  ListTemplatesCommand,
	"update-template": UpdateTemplateCommand,
	"delete-template": DeleteTemplateCommand,
	"whatsapp":        WhatsAppCommand,
}

// CRMCommand runs one 'crm' subcommand.
func CRMCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("crm requires a subcommand")
	}
	cmd, ok := crmCommands[args[0]]
	if !ok {
		return fmt.Errorf("unknown crm command: %s", args[0])
	}
	return cmd(ctx, app, args[1:])
}

// PrintCRMCommands lists the crm subcommand names.
func PrintCRMCommands(w io.Writer) {
	names := make([]string, 0, len(crmCommands))
	for name := range crmCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  medcrm crm %s\n", name)
	}
}
