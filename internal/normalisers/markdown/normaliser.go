// Package markdown strips Markdown formatting from policy documents.
package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
	"github.com/custodia-labs/policylens/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Formatting patterns, applied in order. Numbered list markers are kept
// because policies cite clauses by number.
var (
	fencedCode    = regexp.MustCompile("(?s)```.*?```")
	images        = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links         = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	headings      = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasis      = regexp.MustCompile(`(\*\*|__|\*)([^*_\n]+)(\*\*|__|\*)`)
	blockquotes   = regexp.MustCompile(`(?m)^>\s?`)
	rules         = regexp.MustCompile(`(?m)^\s*([-*_])(\s*([-*_])){2,}\s*$`)
	bullets       = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
	firstHeading  = regexp.MustCompile(`(?m)^#\s+(.+)$`)
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority, above the plain text fallback.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise converts markdown to plain text. The title is the first
// level-one heading, falling back to the file name.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	source := string(raw.Content)
	title := ""
	if m := firstHeading.FindStringSubmatch(source); m != nil {
		title = strings.TrimSpace(m[1])
	}

	doc := normalisers.NewDocument(raw, title, Strip(source), "markdown")
	return &driven.NormaliseResult{Document: doc}, nil
}

// Strip removes common markdown syntax, keeping the readable text.
func Strip(content string) string {
	content = fencedCode.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "$2")
	content = blockquotes.ReplaceAllString(content, "")
	content = rules.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "$1")
	content = extraNewlines.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
