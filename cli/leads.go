// ABOUTME: Lead CLI commands
// ABOUTME: Add, list, update, delete and convert leads into opportunities
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

// lineFlags collects repeated --product PRODUCT_ID:QTY[:PRICE] values.
type lineFlags []string

func (l *lineFlags) String() string {
	return strings.Join(*l, ",")
}

func (l *lineFlags) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func (l lineFlags) resolve(catalog []models.Product) ([]models.OpportunityProduct, error) {
	out := make([]models.OpportunityProduct, 0, len(l))
	for _, raw := range l {
		parts := strings.Split(raw, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid --product %q, want PRODUCT_ID:QTY[:PRICE]", raw)
		}
		qty, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", raw, err)
		}
		var price *float64
		if len(parts) == 3 {
			p, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid price in %q: %w", raw, err)
			}
			price = &p
		}
		line, err := crm.CatalogLine(catalog, parts[0], qty, price)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

// AddLeadCommand adds a new lead
func AddLeadCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("add-lead")
	name := fs.String("name", "", "Lead name (required)")
	company := fs.String("company", "", "Company")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	source := fs.String("source", "", "Where the lead came from")
	status := fs.String("status", models.LeadStatusNew, "Status: Nuevo, Contactado, Calificado or Perdido")
	owner := fs.String("salesperson", "", "Owner (admins only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	lead, err := app.Service.AddLead(ctx, me, models.Lead{
		Name:          *name,
		Company:       *company,
		Email:         *email,
		Phone:         *phone,
		Source:        *source,
		Status:        *status,
		SalespersonID: *owner,
	})
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Lead created: %s (ID: %s)\n", lead.Name, lead.ID)
	if lead.Company != "" {
		fmt.Fprintf(app.Out, "  Company: %s\n", lead.Company)
	}
	return nil
}

// ListLeadsCommand lists the leads visible to the current user
func ListLeadsCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("list-leads")
	status := fs.String("status", "", "Filter by status")
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

	var leads []models.Lead
	for _, l := range view.Leads {
		if *status == "" || strings.EqualFold(l.Status, *status) {
			leads = append(leads, l)
		}
	}
	if len(leads) == 0 {
		fmt.Fprintln(app.Out, "No leads found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCOMPANY\tSTATUS\tSOURCE\tLAST CONTACT\tID")
	fmt.Fprintln(w, "----\t-------\t------\t------\t------------\t--")
	for _, l := range leads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.Name, dash(l.Company), l.Status, dash(l.Source), dash(l.LastInteractionDate), l.ID)
	}
	_ = w.Flush()

	fmt.Fprintf(app.Out, "\nTotal: %d lead(s)\n", len(leads))
	return nil
}

// UpdateLeadCommand patches the given fields of a lead
func UpdateLeadCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("update-lead")
	name := fs.String("name", "", "Lead name")
	company := fs.String("company", "", "Company")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	source := fs.String("source", "", "Where the lead came from")
	status := fs.String("status", "", "Status: Nuevo, Contactado, Calificado or Perdido")
	owner := fs.String("salesperson", "", "Owner (admins only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "lead")
	if err != nil {
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
	lead, ok := find(view.Leads, id, func(l models.Lead) string { return l.ID })
	if !ok {
		return notFoundErr("lead", id)
	}

	if isSet(fs, "name") {
		lead.Name = *name
	}
	if isSet(fs, "company") {
		lead.Company = *company
	}
	if isSet(fs, "email") {
		lead.Email = *email
	}
	if isSet(fs, "phone") {
		lead.Phone = *phone
	}
	if isSet(fs, "source") {
		lead.Source = *source
	}
	if isSet(fs, "status") {
		lead.Status = *status
	}
	if isSet(fs, "salesperson") {
		lead.SalespersonID = *owner
	}

	updated, err := app.Service.UpdateLead(ctx, me, lead)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Lead updated: %s (%s)\n", updated.Name, updated.Status)
	return nil
}

func DeleteLeadCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("delete-lead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "lead")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteLead(ctx, me, id); err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Lead deleted: %s\n", id)
	return nil
}

// ConvertLeadCommand turns a lead into an opportunity
func ConvertLeadCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("convert-lead")
	var lines lineFlags
	fs.Var(&lines, "product", "Line item PRODUCT_ID:QTY[:PRICE] (repeatable)")
	closeDate := fs.String("close-date", "", "Expected close date (YYYY-MM-DD)")
	stage := fs.String("stage", models.StageProspecting, "Pipeline stage")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "lead")
	if err != nil {
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
	products, err := lines.resolve(view.Products)
	if err != nil {
		return err
	}

	opp, err := app.Service.ConvertLead(ctx, me, id, crm.ConvertInput{
		Products:  products,
		CloseDate: *closeDate,
		Stage:     *stage,
	})
	if err != nil {
		return fmt.Errorf("failed to convert lead: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Opportunity created: %s (ID: %s)\n", opp.ClientName, opp.ID)
	fmt.Fprintf(app.Out, "  Value: €%s\n", crm.FormatEuro(opp.Value))
	fmt.Fprintf(app.Out, "  Stage: %s\n", opp.Stage)
	if opp.ClientID != "" {
		fmt.Fprintf(app.Out, "  Client: %s\n", opp.ClientID)
	}
	return nil
}

// SetLeadStatusCommand changes a lead's status: <id> <status>
func SetLeadStatusCommand(ctx context.Context, app *App, args []string) error {
	id, status, err := idAndValue(args, "lead", "status")
	if err != nil {
		return err
	}
	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	lead, err := app.Service.SetLeadStatus(ctx, me, id, status)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Lead %s is now %s\n", lead.Name, lead.Status)
	return nil
}
