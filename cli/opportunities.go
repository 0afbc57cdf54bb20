// ABOUTME: Opportunity CLI commands
// ABOUTME: Manage the sales pipeline; each opportunity keeps a closing task in sync
package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

// AddOpportunityCommand creates an opportunity
func AddOpportunityCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("add-opportunity")
	clientID := fs.String("client", "", "Existing client ID")
	clientName := fs.String("client-name", "", "Client name when there is no client record yet")
	var lines lineFlags
	fs.Var(&lines, "product", "Line item PRODUCT_ID:QTY[:PRICE] (repeatable)")
	value := fs.Float64("value", 0, "Negotiated value in euros (default: line-item total)")
	stage := fs.String("stage", models.StageProspecting, "Pipeline stage")
	closeDate := fs.String("close-date", "", "Expected close date (YYYY-MM-DD)")
	owner := fs.String("salesperson", "", "Owner (admins only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *clientID == "" && *clientName == "" {
		return fmt.Errorf("--client or --client-name is required")
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
	total := models.LineTotal(products)
	if isSet(fs, "value") {
		total = *value
	}

	opp, err := app.Service.AddOpportunity(ctx, me, models.Opportunity{
		ClientID:      *clientID,
		Products:      products,
		Value:         total,
		Stage:         *stage,
		CloseDate:     *closeDate,
		SalespersonID: *owner,
	}, *clientName)
	if err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}

	fmt.Fprintf(app.Out, "✓ Opportunity created: %s (ID: %s)\n", opp.ClientName, opp.ID)
	fmt.Fprintf(app.Out, "  Value: €%s\n", crm.FormatEuro(opp.Value))
	fmt.Fprintf(app.Out, "  Stage: %s\n", opp.Stage)
	return nil
}

// ListOpportunitiesCommand lists the pipeline
func ListOpportunitiesCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("list-opportunities")
	stage := fs.String("stage", "", "Filter by stage")
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

	var opps []models.Opportunity
	var total float64
	for _, o := range view.Opportunities {
		if *stage == "" || strings.EqualFold(o.Stage, *stage) {
			opps = append(opps, o)
			total += o.Value
		}
	}
	if len(opps) == 0 {
		fmt.Fprintln(app.Out, "No opportunities found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLIENT\tSTAGE\tVALUE\tCLOSE DATE\tID")
	fmt.Fprintln(w, "------\t-----\t-----\t----------\t--")
	for _, o := range opps {
		fmt.Fprintf(w, "%s\t%s\t€%s\t%s\t%s\n", o.ClientName, o.Stage, crm.FormatEuro(o.Value), dash(o.CloseDate), o.ID)
	}
	_ = w.Flush()

	fmt.Fprintf(app.Out, "\nTotal: %d opportunity(ies), €%s\n", len(opps), crm.FormatEuro(total))
	return nil
}

// UpdateOpportunityCommand patches an opportunity. Winning it links or
// creates the client.
func UpdateOpportunityCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("update-opportunity")
	stage := fs.String("stage", "", "Pipeline stage")
	value := fs.Float64("value", 0, "Negotiated value in euros")
	closeDate := fs.String("close-date", "", "Expected close date (YYYY-MM-DD)")
	var lines lineFlags
	fs.Var(&lines, "product", "Replace line items with PRODUCT_ID:QTY[:PRICE] (repeatable)")
	owner := fs.String("salesperson", "", "Owner (admins only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "opportunity")
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
	opp, ok := find(view.Opportunities, id, func(o models.Opportunity) string { return o.ID })
	if !ok {
		return notFoundErr("opportunity", id)
	}
	opp.Products = slices.Clone(opp.Products)

	if isSet(fs, "product") {
		if opp.Products, err = lines.resolve(view.Products); err != nil {
			return err
		}
		opp.Value = models.LineTotal(opp.Products)
	}
	if isSet(fs, "value") {
		opp.Value = *value
	}
	if isSet(fs, "stage") {
		opp.Stage = *stage
	}
	if isSet(fs, "close-date") {
		opp.CloseDate = *closeDate
	}
	if isSet(fs, "salesperson") {
		opp.SalespersonID = *owner
	}

	updated, err := app.Service.UpdateOpportunity(ctx, me, opp)
	if err != nil {
		return fmt.Errorf("failed to update opportunity: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Opportunity updated: %s (%s, €%s)\n", updated.ClientName, updated.Stage, crm.FormatEuro(updated.Value))
	return nil
}

func DeleteOpportunityCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("delete-opportunity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := argID(fs, "opportunity")
	if err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if err := app.Service.DeleteOpportunity(ctx, me, id); err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Opportunity deleted: %s\n", id)
	return nil
}

// SetStageCommand moves an opportunity to another stage: <id> <stage>
func SetStageCommand(ctx context.Context, app *App, args []string) error {
	id, stage, err := idAndValue(args, "opportunity", "stage")
	if err != nil {
		return err
	}
	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	opp, err := app.Service.SetOpportunityStage(ctx, me, id, stage)
	if err != nil {
		return fmt.Errorf("failed to update opportunity: %w", err)
	}
	fmt.Fprintf(app.Out, "✓ Opportunity %s is now %s\n", opp.ClientName, opp.Stage)
	if opp.Stage == models.StageWon && opp.ClientID != "" {
		fmt.Fprintf(app.Out, "  Client: %s\n", opp.ClientID)
	}
	return nil
}
