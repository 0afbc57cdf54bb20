// ABOUTME: Search, dashboard and visualization CLI commands
// ABOUTME: Renders the text dashboard and GraphViz pipeline graphs for the current user
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/viz"
)

// SearchCommand searches the records visible to the current user
func SearchCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("search")
	if err := fs.Parse(args); err != nil {
		return err
	}
	term := strings.Join(fs.Args(), " ")
	if len([]rune(strings.TrimSpace(term))) < crm.MinSearchLength {
		return fmt.Errorf("search term must be at least %d characters", crm.MinSearchLength)
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	results, err := app.Service.Search(ctx, me, term)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Fprintf(app.Out, "No results for %q\n", term)
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tTITLE\tDETAIL\tID")
	fmt.Fprintln(w, "----\t-----\t------\t--")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Kind, r.Title, dash(r.Subtitle), r.ID)
	}
	_ = w.Flush()

	fmt.Fprintf(app.Out, "\nTotal: %d result(s)\n", len(results))
	return nil
}

// DashboardCommand prints the dashboard for a range
func DashboardCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("dashboard")
	rng := fs.String("range", crm.RangeAll, "all, 7d, 30d or month")
	if err := fs.Parse(args); err != nil {
		return err
	}

	me, err := app.CurrentUser(ctx)
	if err != nil {
		return err
	}
	stats, err := app.Service.Stats(ctx, me, *rng)
	if err != nil {
		return err
	}
	fmt.Fprint(app.Out, viz.RenderDashboard(stats))
	return nil
}

// VizGraphCommand generates the pipeline graph, optionally for one client.
func VizGraphCommand(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("viz graph")
	output := fs.String("output", "", "Output file (default: stdout)")
	clientID := fs.String("client", "", "Only this client's opportunities")
	svg := fs.Bool("svg", false, "Render SVG instead of DOT")
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
	generator := viz.NewGraphGenerator(view)

	var data []byte
	switch {
	case *svg:
		if *clientID != "" {
			return fmt.Errorf("--svg renders the whole pipeline; drop --client")
		}
		data, err = generator.GenerateSVG(ctx)
	case *clientID != "":
		var dot string
		dot, err = generator.GenerateClientGraph(ctx, *clientID)
		data = []byte(dot)
	default:
		var dot string
		dot, err = generator.GeneratePipelineGraph(ctx)
		data = []byte(dot)
	}
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, data, 0644)
	}
	_, err = app.Out.Write(data)
	return err
}
