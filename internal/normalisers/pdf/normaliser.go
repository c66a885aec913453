// Package pdf extracts text from PDF policy documents using a pure Go reader.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/logger"
	"github.com/custodia-labs/policylens/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the only type this normaliser handles.
const MIMEType = "application/pdf"

// maxTitleLen bounds the first-line title heuristic.
const maxTitleLen = 200

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page, in page order.
// Pages that cannot be decoded are skipped; a file that cannot be opened
// as a PDF at all is reported as domain.ErrExtraction.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content, pages, err := extractText(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("pdf %s: %v: %w", raw.URI, err, domain.ErrExtraction)
	}

	doc := normalisers.NewDocument(raw, extractTitle(content, raw.URI), content, "pdf")
	doc.Metadata["page_count"] = pages

	return &driven.NormaliseResult{Document: doc}, nil
}

// extractText reads all pages. The reader panics on some malformed
// cross-reference tables, so panics are turned into errors.
func extractText(data []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("corrupt pdf: %v", r)
		}
	}()

	if len(data) == 0 {
		return "", 0, fmt.Errorf("empty file")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}

	pages = reader.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			logger.Debug("pdf: skipping page %d: %v", i, err)
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(pageText)
	}

	return b.String(), pages, nil
}

// extractTitle uses the first short non-empty line, falling back to the file name.
func extractTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len(line) <= maxTitleLen {
			return line
		}
	}
	return normalisers.TitleFromURI(uri)
}
