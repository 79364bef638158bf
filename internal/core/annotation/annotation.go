// Package annotation defines the reviewer feedback domain types and the
// compact tuple codec used for URL transport.
package annotation

import (
	"fmt"
	"time"
)

// Kind categorizes a piece of reviewer feedback.
type Kind string

// Supported annotation kinds.
const (
	KindDeletion      Kind = "deletion"
	KindInsertion     Kind = "insertion"
	KindReplacement   Kind = "replacement"
	KindComment       Kind = "comment"
	KindGlobalComment Kind = "global_comment"
)

// IsValid checks if the kind is a supported annotation kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindDeletion, KindInsertion, KindReplacement, KindComment, KindGlobalComment:
		return true
	default:
		return false
	}
}

// Side identifies which half of a diff a code annotation targets.
type Side string

// Diff sides. Empty for plan reviews.
const (
	SideOld Side = "old" // removed lines ("-")
	SideNew Side = "new" // added lines ("+")
)

// Annotation is a single piece of reviewer feedback.
//
// ID and CreatedAt are assigned at creation time; CreatedAt exists only to
// give the collection a stable display order. FilePath, LineStart, LineEnd
// and Side are populated for code-review sessions only.
type Annotation struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	OriginalText string    `json:"originalText"`
	Text         string    `json:"text,omitempty"`
	Author       string    `json:"author,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`

	FilePath  string `json:"filePath,omitempty"`
	LineStart int    `json:"lineStart,omitempty"`
	LineEnd   int    `json:"lineEnd,omitempty"`
	Side      Side   `json:"side,omitempty"`
}

// Validate checks the annotation's structural invariants.
func (a Annotation) Validate() error {
	if !a.Kind.IsValid() {
		return fmt.Errorf("unknown annotation kind %q", a.Kind)
	}
	if a.Kind != KindDeletion && a.Text == "" {
		return fmt.Errorf("annotation kind %q requires text", a.Kind)
	}
	if a.Kind == KindGlobalComment && a.OriginalText != "" {
		return fmt.Errorf("global comments cannot quote source text")
	}
	if a.LineEnd != 0 && a.LineEnd < a.LineStart {
		return fmt.Errorf("line range %d-%d is inverted", a.LineStart, a.LineEnd)
	}
	return nil
}
