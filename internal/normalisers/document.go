package normalisers

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/policylens/internal/core/domain"
)

// NewDocument builds the normalised document for raw with the given text.
// Metadata is copied from raw and stamped with the MIME type and format.
func NewDocument(raw *domain.RawDocument, title, content, format string) domain.Document {
	metadata := make(map[string]any, len(raw.Metadata)+2)
	for k, v := range raw.Metadata {
		metadata[k] = v
	}
	metadata["mime_type"] = raw.MIMEType
	metadata["format"] = format

	if title == "" {
		title = TitleFromURI(raw.URI)
	}

	return domain.Document{
		ID:       uuid.New().String(),
		URI:      raw.URI,
		Title:    title,
		Content:  content,
		Metadata: metadata,
	}
}

// TitleFromURI derives a readable title from a file name:
// "/docs/health_policy-2024.pdf" becomes "health policy 2024".
func TitleFromURI(uri string) string {
	name := filepath.Base(uri)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
