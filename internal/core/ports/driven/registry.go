package driven

import (
	"context"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers and dispatches
// based on MIME type.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}

// Extractor reads a policy file from disk into a Document.
// All failures wrap domain.ErrExtraction.
type Extractor interface {
	Extract(ctx context.Context, path string) (*domain.Document, error)
}
