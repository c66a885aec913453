// Package docx extracts paragraph text from Word (.docx) policy documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the OOXML word processing document type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	documentPart = "word/document.xml"
	corePart     = "docProps/core.xml"
)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
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

// Normalise joins the document's paragraphs with newlines. Table cell
// paragraphs are included in reading order.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	archive, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("docx %s: not a zip archive: %w", raw.URI, domain.ErrExtraction)
	}

	body, err := readPart(archive, documentPart)
	if err != nil {
		return nil, fmt.Errorf("docx %s: %v: %w", raw.URI, err, domain.ErrExtraction)
	}
	if body == nil {
		return nil, fmt.Errorf("docx %s: missing %s: %w", raw.URI, documentPart, domain.ErrExtraction)
	}

	content, err := paragraphText(body)
	if err != nil {
		return nil, fmt.Errorf("docx %s: %v: %w", raw.URI, err, domain.ErrExtraction)
	}

	doc := normalisers.NewDocument(raw, coreTitle(archive), content, "docx")
	return &driven.NormaliseResult{Document: doc}, nil
}

// readPart returns the bytes of the named archive entry, or nil if absent.
func readPart(archive *zip.Reader, name string) ([]byte, error) {
	for _, file := range archive.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

// paragraphText streams the document XML, emitting the text of each w:p
// element on its own line. Streaming picks up paragraphs nested in tables
// that a struct-shaped unmarshal would miss.
func paragraphText(data []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var (
		out       strings.Builder
		para      strings.Builder
		inText    bool
		paraCount int
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if paraCount > 0 {
					out.WriteByte('\n')
				}
				out.WriteString(para.String())
				paraCount++
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	return strings.TrimSpace(out.String()), nil
}

// coreXML is the subset of docProps/core.xml we read.
type coreXML struct {
	Title string `xml:"title"`
}

// coreTitle returns the document title property, or "" if unset.
func coreTitle(archive *zip.Reader) string {
	data, err := readPart(archive, corePart)
	if err != nil || data == nil {
		return ""
	}
	var core coreXML
	if err := xml.Unmarshal(data, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
