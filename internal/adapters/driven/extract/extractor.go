// Package extract reads policy files from disk and normalises them to text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/logger"
	"github.com/custodia-labs/policylens/internal/normalisers"
	"github.com/custodia-labs/policylens/internal/normalisers/docx"
	"github.com/custodia-labs/policylens/internal/normalisers/markdown"
	"github.com/custodia-labs/policylens/internal/normalisers/pdf"
	"github.com/custodia-labs/policylens/internal/normalisers/plaintext"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// MaxFileSize bounds how much of a policy file is read into memory.
const MaxFileSize = 64 << 20

// mimeTypes maps lower-case file extensions to MIME types.
var mimeTypes = map[string]string{
	".pdf":      pdf.MIMEType,
	".docx":     docx.MIMEType,
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
}

// Extractor reads a file and dispatches it through a normaliser registry.
type Extractor struct {
	registry driven.NormaliserRegistry
}

// New creates an extractor over registry.
func New(registry driven.NormaliserRegistry) *Extractor {
	return &Extractor{registry: registry}
}

// NewDefault creates an extractor with the PDF, DOCX, Markdown and plain
// text normalisers registered.
func NewDefault() *Extractor {
	return New(normalisers.NewRegistry(
		pdf.New(),
		docx.New(),
		markdown.New(),
		plaintext.New(),
	))
}

// MIMEType returns the MIME type for path's extension, or "" if unknown.
func MIMEType(path string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions lists the file extensions the default extractor reads.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".md", ".markdown", ".txt", ".text"}
}

// Extract reads path and returns its text. path may also be a file:// URI.
// Every failure wraps domain.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.Document, error) {
	path = ResolvePath(path)
	mimeType := MIMEType(path)
	if mimeType == "" {
		return nil, fmt.Errorf("%s: unsupported file type %q: %w", path, filepath.Ext(path),
			errors.Join(domain.ErrExtraction, domain.ErrUnsupportedType))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, errors.Join(domain.ErrExtraction, err))
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s: is a directory: %w", path, domain.ErrExtraction)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s: file too large (%d bytes): %w", path, info.Size(), domain.ErrExtraction)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, errors.Join(domain.ErrExtraction, err))
	}

	done := logger.Timed("extract " + filepath.Base(path))
	result, err := e.registry.Normalise(ctx, &domain.RawDocument{
		URI:      path,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{"size": info.Size()},
	})
	done()
	if err != nil {
		if errors.Is(err, domain.ErrExtraction) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", path, errors.Join(domain.ErrExtraction, err))
	}

	doc := result.Document
	logger.Debug("extracted %d bytes of text from %s (%s)", len(doc.Content), path, mimeType)
	return &doc, nil
}
