// Package normalisers turns raw policy file bytes into document text.
//
// Each format lives in its own sub-package (pdf, docx, markdown, plaintext)
// and implements driven.Normaliser. The Registry in this package selects a
// normaliser by MIME type, preferring the highest priority when several
// claim the same type. Helpers shared by the formats (NewDocument,
// TitleFromURI) live here too.
package normalisers
