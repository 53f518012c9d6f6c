package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/Strob0t/VoyageMind/internal/domain/persona"
)

const personasURI = "voyagemind://personas"

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			personasURI,
			"Personas",
			mcplib.WithResourceDescription("The specialist personas consulted for every plan, and the aggregator that merges them"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handlePersonasResource,
	)
}

type personaInfo struct {
	Role       persona.Role `json:"role"`
	Name       string       `json:"name"`
	Specialist bool         `json:"specialist"`
}

func (s *Server) handlePersonasResource(_ context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	all := persona.All()
	out := make([]personaInfo, 0, len(all))
	for _, p := range all {
		out = append(out, personaInfo{Role: p.Role, Name: p.Name, Specialist: p.IsSpecialist()})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
