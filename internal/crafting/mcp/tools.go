package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rsned/crafting-data/pkg/crafting"
)

// ToolDefinition describes an MCP tool.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema is a simplified JSON Schema representation.
type JSONSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties,omitempty"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a schema property.
type Property struct {
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
}

// toolFunc runs a tool with its raw arguments.
type toolFunc func(ctx context.Context, args json.RawMessage) (any, error)

// tool pairs a definition with the function that runs it.
type tool struct {
	def  ToolDefinition
	call toolFunc
}

// catalogTools lists the tools in the order tools/list reports them.
func (s *Server) catalogTools() []tool {
	return []tool{
		{def: catalogLookupTool(), call: s.lookupEntry},
		{def: catalogSearchTool(), call: s.searchEntries},
		{def: catalogStatsTool(), call: s.catalogStats},
	}
}

// ToolDefinitions returns the definitions of every tool s serves.
func (s *Server) ToolDefinitions() []ToolDefinition {
	defs := make([]ToolDefinition, len(s.tools))
	for i, t := range s.tools {
		defs[i] = t.def
	}
	return defs
}

func catalogLookupTool() ToolDefinition {
	minID := 0.0

	return ToolDefinition{
		Name:        "catalog_lookup",
		Description: "Look up a catalog entry by unified id, or by local id and category. Returns its recipes in priority order and the entries whose recipes consume it.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"id": {
					Type:        "integer",
					Description: "Unified id (cargo ids are offset by 4294967295)",
					Minimum:     &minID,
				},
				"local_id": {
					Type:        "integer",
					Description: "Id within the item or cargo table (alternative to id)",
					Minimum:     &minID,
				},
				"category": {
					Type:        "string",
					Description: "Table the local_id belongs to",
					Enum:        []string{string(crafting.CategoryItem), string(crafting.CategoryCargo)},
					Default:     string(crafting.CategoryItem),
				},
			},
		},
	}
}

func catalogSearchTool() ToolDefinition {
	minLimit := 1.0
	maxLimit := 100.0

	return ToolDefinition{
		Name:        "catalog_search",
		Description: "Search catalog entries by name. Substring matches come first, then close misspellings ranked by edit distance.",
		InputSchema: JSONSchema{
			Type: "object",
			Properties: map[string]Property{
				"query": {
					Type:        "string",
					Description: "Name or part of a name",
				},
				"limit": {
					Type:        "integer",
					Description: "Max results",
					Default:     10,
					Minimum:     &minLimit,
					Maximum:     &maxLimit,
				},
			},
			Required: []string{"query"},
		},
	}
}

func catalogStatsTool() ToolDefinition {
	return ToolDefinition{
		Name:        "catalog_stats",
		Description: "Report entry and recipe counts and when the stored catalog was built.",
		InputSchema: JSONSchema{Type: "object"},
	}
}

type lookupArgs struct {
	ID       *crafting.UnifiedID `json:"id"`
	LocalID  *uint64             `json:"local_id"`
	Category crafting.Category   `json:"category"`
}

func (a lookupArgs) request() (crafting.EntryLookupRequest, error) {
	switch {
	case a.ID != nil:
		return crafting.EntryLookupRequest{ID: *a.ID}, nil
	case a.LocalID != nil:
		category := a.Category
		if category == "" {
			category = crafting.CategoryItem
		}
		id, err := crafting.ToUnified(*a.LocalID, category)
		if err != nil {
			return crafting.EntryLookupRequest{}, err
		}
		return crafting.EntryLookupRequest{ID: id}, nil
	default:
		return crafting.EntryLookupRequest{}, errors.New("one of id or local_id is required")
	}
}

func (s *Server) lookupEntry(ctx context.Context, args json.RawMessage) (any, error) {
	var a lookupArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	req, err := a.request()
	if err != nil {
		return nil, err
	}
	return s.engine.Lookup(ctx, req)
}

func (s *Server) searchEntries(ctx context.Context, args json.RawMessage) (any, error) {
	var req crafting.EntrySearchRequest
	if err := unmarshalArgs(args, &req); err != nil {
		return nil, err
	}
	return s.engine.Search(ctx, req)
}

func (s *Server) catalogStats(ctx context.Context, _ json.RawMessage) (any, error) {
	return s.engine.Stats(ctx)
}

// unmarshalArgs treats missing arguments as an empty object.
func unmarshalArgs(args json.RawMessage, v any) error {
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
