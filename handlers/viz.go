// ABOUTME: GraphViz visualization MCP handler
// ABOUTME: Provides the generate_graph tool over the current user's pipeline
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/medcrm/viz"
)

type GenerateGraphInput struct {
	ClientID string `json:"client_id,omitempty" jsonschema:"Limit the graph to one client's opportunities"`
}

type GenerateGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *Handlers) GenerateGraph(ctx context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	me, err := h.me(ctx)
	if err != nil {
		return nil, GenerateGraphOutput{}, err
	}
	view, err := h.svc.View(ctx, me)
	if err != nil {
		return nil, GenerateGraphOutput{}, err
	}

	generator := viz.NewGraphGenerator(view)
	var dot string
	if input.ClientID != "" {
		dot, err = generator.GenerateClientGraph(ctx, input.ClientID)
	} else {
		dot, err = generator.GeneratePipelineGraph(ctx)
	}
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, GenerateGraphOutput{
		DOTSource: dot,
		NodeCount: strings.Count(dot, "[label="),
		EdgeCount: strings.Count(dot, "->"),
	}, nil
}
