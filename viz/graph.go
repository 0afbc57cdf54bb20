// ABOUTME: Graphviz rendering of the sales pipeline
// ABOUTME: Draws salespeople, opportunities and clients from a role-scoped view
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/medcrm/crm"
	"github.com/harperreed/medcrm/models"
)

var stageColors = map[string]string{
	models.StageProspecting: "lightgrey",
	models.StageProposal:    "lightyellow",
	models.StageNegotiation: "orange",
	models.StageWon:         "lightgreen",
	models.StageLost:        "salmon",
}

type GraphGenerator struct {
	view *models.View
}

func NewGraphGenerator(view *models.View) *GraphGenerator {
	return &GraphGenerator{view: view}
}

// GeneratePipelineGraph renders the whole pipeline as DOT source.
func (g *GraphGenerator) GeneratePipelineGraph(ctx context.Context) (string, error) {
	return g.render(ctx, "", graphviz.XDOT)
}

// GenerateClientGraph renders only the opportunities of one client.
func (g *GraphGenerator) GenerateClientGraph(ctx context.Context, clientID string) (string, error) {
	client, _ := findClient(g.view, clientID)
	if client == nil {
		return "", fmt.Errorf("client %s: %w", clientID, crm.ErrNotFound)
	}
	return g.render(ctx, clientID, graphviz.XDOT)
}

// GenerateSVG renders the pipeline as SVG for the web API.
func (g *GraphGenerator) GenerateSVG(ctx context.Context) ([]byte, error) {
	out, err := g.render(ctx, "", graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func findClient(view *models.View, id string) (*models.Client, int) {
	for i := range view.Clients {
		if view.Clients[i].ID == id {
			return &view.Clients[i], i
		}
	}
	return nil, -1
}

func (g *GraphGenerator) render(ctx context.Context, clientID string, format graphviz.Format) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel("Pipeline")
	graph.SetRankDir(cgraph.LRRank)

	clientNodes := make(map[string]*cgraph.Node)
	clientNode := func(id, name string) (*cgraph.Node, error) {
		key := id
		if key == "" {
			key = "name:" + name
		}
		if node, ok := clientNodes[key]; ok {
			return node, nil
		}
		node, err := graph.CreateNodeByName("client_" + key)
		if err != nil {
			return nil, fmt.Errorf("failed to create client node: %w", err)
		}
		node.SetLabel(name)
		node.SetShape("box")
		node.SetStyle("filled")
		node.SetFillColor("lightblue")
		clientNodes[key] = node
		return node, nil
	}

	spNodes := make(map[string]*cgraph.Node)
	for _, sp := range g.view.Salespeople {
		node, err := graph.CreateNodeByName("sp_" + sp.ID)
		if err != nil {
			return "", fmt.Errorf("failed to create salesperson node: %w", err)
		}
		node.SetLabel(sp.Name)
		node.SetShape("ellipse")
		spNodes[sp.ID] = node
	}

	for _, opp := range g.view.Opportunities {
		if clientID != "" && opp.ClientID != clientID {
			continue
		}
		node, err := graph.CreateNodeByName("opp_" + opp.ID)
		if err != nil {
			return "", fmt.Errorf("failed to create opportunity node: %w", err)
		}
		node.SetLabel(fmt.Sprintf("€%s\n(%s)", crm.FormatEuro(opp.Value), opp.Stage))
		node.SetShape("diamond")
		node.SetStyle("filled")
		if color, ok := stageColors[opp.Stage]; ok {
			node.SetFillColor(color)
		}

		cn, err := clientNode(opp.ClientID, opp.ClientName)
		if err != nil {
			return "", err
		}
		if _, err := graph.CreateEdgeByName("deal_"+opp.ID, cn, node); err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}

		if spNode, ok := spNodes[opp.SalespersonID]; ok {
			edge, err := graph.CreateEdgeByName("owns_"+opp.ID, spNode, node)
			if err != nil {
				return "", fmt.Errorf("failed to create edge: %w", err)
			}
			edge.SetStyle("dashed")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, format, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
