package mcp

import (
	"github.com/custodia-labs/policylens/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Session answers questions about the loaded document.
	Session driving.Session

	// History reads the answer journal. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSession
	}
	return nil
}
