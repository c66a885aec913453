// Package tui provides an interactive terminal chat over one policy document.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/policylens/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Session answers questions about the loaded document.
	Session driving.Session

	// History reads the answer journal. Optional; the history view is
	// hidden without it.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Session == nil {
		return ErrMissingSession
	}
	return nil
}
