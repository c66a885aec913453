package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for policylens resources.
	uriScheme = "policylens://"

	documentURI = uriScheme + "document"
	historyURI  = uriScheme + "history"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentURI,
		Name:        "document",
		Description: "Extracted text of the loaded policy document",
		MIMEType:    "text/plain",
	}, s.handleDocumentResource)

	if s.ports.History == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         historyURI,
		Name:        "history",
		Description: "Recently answered questions",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: historyURI + "/{entryId}",
		Name:        "history-entry",
		Description: "One answered question from the journal",
		MIMEType:    "application/json",
	}, s.handleHistoryEntryResource)
}

// handleDocumentResource returns the document text.
func (s *Server) handleDocumentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	doc := s.ports.Session.Document()
	return textResult(req.Params.URI, "text/plain", doc.Content), nil
}

// handleHistoryResource returns the most recent journal entries.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entries, err := s.ports.History.Recent(ctx, defaultHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	out := make([]HistoryEntryOutput, len(entries))
	for i := range entries {
		out[i] = toHistoryEntry(&entries[i])
	}
	return jsonResult(req.Params.URI, out)
}

// handleHistoryEntryResource returns one journal entry.
func (s *Server) handleHistoryEntryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractEntryID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entry, err := s.ports.History.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting history entry: %w", err)
	}
	return jsonResult(req.Params.URI, toHistoryEntry(entry))
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return textResult(uri, "application/json", string(data)), nil
}

func textResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}

// extractEntryID extracts the entry ID from policylens://history/{entryId}.
func extractEntryID(uri string) string {
	const prefix = historyURI + "/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
