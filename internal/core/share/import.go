package share

import (
	"strings"
	"time"

	"github.com/colonyops/waggle/internal/core/annotation"
)

// ImportResult describes the outcome of a merge-import.
type ImportResult struct {
	// Added is the number of annotations appended to the local collection.
	Added int
	// Title is the first markdown heading of the incoming document, used
	// by the client to describe where the feedback came from.
	Title string
	// Reason explains a zero-count result. Empty when Added > 0.
	Reason string
}

// mergeKey identifies an annotation for dedup purposes. Two annotations
// quoting the same text with the same kind and feedback are the same
// feedback, regardless of ID, author or timestamps.
type mergeKey struct {
	original string
	kind     annotation.Kind
	text     string
}

func keyOf(a annotation.Annotation) mergeKey {
	return mergeKey{original: a.OriginalText, kind: a.Kind, text: a.Text}
}

// Import merges the incoming payload's annotations into the local
// collection, appending only those with no existing local annotation of
// identical (originalText, kind, text), in incoming order.
//
// All tuples are decoded before anything is appended, so a malformed tuple
// rejects the whole import and leaves the collection untouched. A payload
// with nothing new to add is a success with a descriptive reason, not an
// error.
func Import(p Payload, coll *annotation.Collection) (ImportResult, error) {
	base := time.Now()
	incoming := make([]annotation.Annotation, 0, len(p.Annotations))
	for i, raw := range p.Annotations {
		a, err := annotation.DecodeTuple(raw, i, base)
		if err != nil {
			return ImportResult{}, err
		}
		incoming = append(incoming, a)
	}

	res := ImportResult{Title: DocumentTitle(p.Document)}

	if len(incoming) == 0 {
		res.Reason = "no annotations in payload"
		return res, nil
	}

	// A single Merge call keeps the duplicate check and the appends under
	// one collection lock: two teammates importing the same link at the
	// same time must not both get past the check.
	res.Added = coll.Merge(incoming, func(a annotation.Annotation) any { return keyOf(a) })

	if res.Added == 0 {
		res.Reason = "all annotations already present"
	}
	return res, nil
}

// DocumentTitle extracts a human title from the first markdown heading line
// of a document. Returns empty when the document has no heading.
func DocumentTitle(document string) string {
	for line := range strings.Lines(document) {
		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "#"); ok {
			return strings.TrimSpace(strings.TrimLeft(rest, "#"))
		}
	}
	return ""
}
