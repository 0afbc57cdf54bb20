// ABOUTME: Task, support ticket and interaction CLI commands
// ABOUTME: Day-to-day follow-up work on leads, clients and opportunities
package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/medcrm/models"
)

// AddTaskCommand adds a manual task
func AddTaskCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("add-task")
	title := fs.String("title", "", "Task title (required)")
	description := fs.String("description", "", "Details")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	clientID := fs.String("client", "", "Related client ID")
	leadID := fs.String("lead", "", "Related lead ID")
	owner := fs.String("salesperson", "", "Owner (admins only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" {
		return fmt.Errorf("--title is required")
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	task, err := app.Service.AddTask(ctx, me, models.Task{
		Title:         *title,
		Description:   *description,
		DueDate:       *due,
		ClientID:      *clientID,
		LeadID:        *leadID,
		SalespersonID: *owner,
	})
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Task created: %s (ID: %s)\n", task.Title, task.ID)
	if task.AssociatedName != "" {
		fmt.Fprintf(app.Out, "  For: %s\n", task.AssociatedName)
	}
	return nil
}

// ListTasksCommand lists tasks, pending ones by default
func ListTasksCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("list-tasks")
	all := fs.Bool("all", false, "Include completed tasks")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	view, err := app.Service.View(ctx, me)
	if err != nil {
		return err
	}

	var tasks []models.Task
	for _, t := range view.Tasks {
		if *all || t.Status != models.TaskStatusCompleted {
			tasks = append(tasks, t)
		}
	}
	if len(tasks) == 0 {
		fmt.Fprintln(app.Out, "No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tFOR\tDUE\tSTATUS\tID")
	fmt.Fprintln(w, "-----\t---\t---\t------\t--")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.Title, dash(t.AssociatedName), dash(t.DueDate), t.Status, t.ID)
	}
	_ = w.Flush()

	fmt.Fprintf(app.Out, "\nTotal: %d task(s)\n", len(tasks))
	return nil
}

// SetTaskStatusCommand changes a task's status: <id> <status>
func SetTaskStatusCommand(ctx context.Context, app *App, args []string) error {
	id, status, err := idAndValue(args, "task", "status")
	if err != nil {
		return err
	}
	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	task, err := app.Service.SetTaskStatus(ctx, me, id, status)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Task %s is now %s\n", task.Title, task.Status)
	return nil
}

func DeleteTaskCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("delete-task")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "task")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteTask(ctx, me, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Task deleted: %s\n", id)
	return nil
}

// AddTicketCommand opens a support ticket
func AddTicketCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("add-ticket")
	clientID := fs.String("client", "", "Client ID (required)")
	issue := fs.String("issue", "", "What is wrong (required)")
	priority := fs.String("priority", models.PriorityMedium, "Baja, Media or Alta")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *clientID == "" || *issue == "" {
		return fmt.Errorf("--client and --issue are required")
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	ticket, err := app.Service.AddTicket(ctx, me, models.SupportTicket{
		ClientID: *clientID,
		Issue:    *issue,
		Priority: *priority,
	})
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Ticket opened for %s (ID: %s)\n", ticket.ClientName, ticket.ID)
	return nil
}

func ListTicketsCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("list-tickets")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	view, err := app.Service.View(ctx, me)
	if err != nil {
		return err
	}

	if len(view.SupportTickets) == 0 {
		fmt.Fprintln(app.Out, "No tickets found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLIENT\tISSUE\tPRIORITY\tSTATUS\tOPENED\tID")
	fmt.Fprintln(w, "------\t-----\t--------\t------\t------\t--")
	for _, t := range view.SupportTickets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", t.ClientName, t.Issue, t.Priority, t.Status, t.CreatedDate, t.ID)
	}
	_ = w.Flush()

	fmt.Fprintf(app.Out, "\nTotal: %d ticket(s)\n", len(view.SupportTickets))
	return nil
}

func SetTicketStatusCommand(ctx context.Context, app *App, args []string) error {
	id, status, err := idAndValue(args, "ticket", "status")
	if err != nil {
		return err
	}
	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	ticket, err := app.Service.SetTicketStatus(ctx, me, id, status)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Ticket %s is now %s\n", ticket.ID, ticket.Status)
	return nil
}

func DeleteTicketCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("delete-ticket")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "ticket")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteTicket(ctx, me, id); err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Ticket deleted: %s\n", id)
	return nil
}

// LogInteractionCommand records a call, email, message or meeting
func LogInteractionCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("log-interaction")
	leadID := fs.String("lead", "", "Lead ID")
	oppID := fs.String("opportunity", "", "Opportunity ID")
	kind := fs.String("type", models.InteractionCall, "Llamada, Email, Mensaje or Reunión")
	notes := fs.String("notes", "", "What happened")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	interaction, err := app.Service.AddInteraction(ctx, me, models.Interaction{
		LeadID:        *leadID,
		OpportunityID: *oppID,
		Type:          *kind,
		Notes:         *notes,
	})
	if err != nil {
		return fmt.Errorf("failed to log interaction: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ %s logged (ID: %s)\n", interaction.Type, interaction.ID)
	return nil
}

// ListInteractionsCommand lists interactions, optionally for one lead or
// opportunity
func ListInteractionsCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("list-interactions")
	leadID := fs.String("lead", "", "Only this lead")
	oppID := fs.String("opportunity", "", "Only this opportunity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	view, err := app.Service.View(ctx, me)
	if err != nil {
		return err
	}

	var items []models.Interaction
	for _, in := range view.Interactions {
		if *leadID != "" && in.LeadID != *leadID {
			continue
		}
		if *oppID != "" && in.OpportunityID != *oppID {
			continue
		}
		items = append(items, in)
	}
	if len(items) == 0 {
		fmt.Fprintln(app.Out, "No interactions found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tNOTES\tID")
	fmt.Fprintln(w, "----\t----\t-----\t--")
	for _, in := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", in.Date.Format("2006-01-02 15:04"), in.Type, dash(in.Notes), in.ID)
	}
	_ = w.Flush()
	return nil
}

func DeleteInteractionCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("delete-interaction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "interaction")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteInteraction(ctx, me, id); err != nil {
		return fmt.Errorf("failed to delete interaction: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Interaction deleted: %s\n", id)
	return nil
}

// idAndValue parses "<id> <value...>" positional arguments.
func idAndValue(args []string, kind, field string) (string, string, error) {
	if len(args) < 2 {
		return "", "", fmt.Errorf("usage: <%s-id> <%s>", kind, field)
	}
	return args[0], strings.Join(args[1:], " "), nil
}
