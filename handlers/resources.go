// ABOUTME: MCP resources exposing the current user's view as JSON
// ABOUTME: One crm://view/<collection> URI per collection plus the dashboard
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/medcrm/models"
)

const resourcePrefix = "crm://view/"

func registerResources(server *mcp.Server, h *Handlers) {
	for _, name := range models.ViewCollections {
		server.AddResource(&mcp.Resource{
			URI:      resourcePrefix + name,
			Name:     name,
			MIMEType: "application/json",
		}, h.ReadResource)
	}
	server.AddResource(&mcp.Resource{
		URI:         "crm://dashboard",
		Name:        "dashboard",
		Description: "All-time dashboard statistics",
		MIMEType:    "application/json",
	}, h.ReadResource)
}

// ReadResource handles resource read requests
func (h *Handlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	me, err := h.me(ctx)
	if err != nil {
		return nil, err
	}

	var payload any
	if uri == "crm://dashboard" {
		payload, err = h.svc.Stats(ctx, me, "")
		if err != nil {
			return nil, err
		}
	} else {
		if !strings.HasPrefix(uri, resourcePrefix) {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		view, err := h.svc.View(ctx, me)
		if err != nil {
			return nil, err
		}
		var ok bool
		payload, ok = view.Collection(strings.TrimPrefix(uri, resourcePrefix))
		if !ok {
			return nil, mcp.ResourceNotFoundError(uri)
		}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
