package annotation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Wire tags are single-character kind discriminators. Keeping them to one
// byte matters: tuples ride inside a URL fragment.
var (
	tagForKind = map[Kind]string{
		KindDeletion:      "d",
		KindInsertion:     "i",
		KindReplacement:   "r",
		KindComment:       "c",
		KindGlobalComment: "g",
	}
	kindForTag = map[string]Kind{}
)

func init() {
	for k, t := range tagForKind {
		kindForTag[t] = k
	}
}

// MalformedAnnotationError reports a tuple that could not be decoded.
// An unrecognized tag rejects the whole payload rather than being dropped
// silently, so a foreign or future format never loses feedback unnoticed.
type MalformedAnnotationError struct {
	Index  int
	Tag    string
	Reason string
}

func (e *MalformedAnnotationError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("annotation %d: unknown tag %q", e.Index, e.Tag)
	}
	return fmt.Sprintf("annotation %d: %s", e.Index, e.Reason)
}

// EncodeTuple shrinks an annotation to its minimal positional wire tuple:
//
//	deletion                        -> [tag, originalText, author|null]
//	insertion|replacement|comment   -> [tag, originalText, text, author|null]
//	global_comment                  -> [tag, text, author|null]
//
// Position metadata (file, lines, side) is deliberately not transmitted;
// the importing client re-anchors annotations by quoted text.
func EncodeTuple(a Annotation) (json.RawMessage, error) {
	tag, ok := tagForKind[a.Kind]
	if !ok {
		return nil, fmt.Errorf("encode annotation: unknown kind %q", a.Kind)
	}

	var author *string
	if a.Author != "" {
		author = &a.Author
	}

	var tuple []any
	switch a.Kind {
	case KindDeletion:
		tuple = []any{tag, a.OriginalText, author}
	case KindGlobalComment:
		tuple = []any{tag, a.Text, author}
	default:
		tuple = []any{tag, a.OriginalText, a.Text, author}
	}

	raw, err := json.Marshal(tuple)
	if err != nil {
		return nil, fmt.Errorf("encode annotation: %w", err)
	}
	return raw, nil
}

// DecodeTuple reconstructs an annotation from its wire tuple.
//
// The annotation receives a fresh ID and a CreatedAt derived from its decode
// index (base + index milliseconds) so relative ordering among decoded
// annotations is deterministic even though original timestamps are not
// transmitted.
func DecodeTuple(raw json.RawMessage, index int, base time.Time) (Annotation, error) {
	var elems []*string
	if err := json.Unmarshal(raw, &elems); err != nil {
		return Annotation{}, &MalformedAnnotationError{Index: index, Reason: "not a string tuple"}
	}
	if len(elems) == 0 || elems[0] == nil {
		return Annotation{}, &MalformedAnnotationError{Index: index, Reason: "missing tag"}
	}

	tag := *elems[0]
	kind, ok := kindForTag[tag]
	if !ok {
		return Annotation{}, &MalformedAnnotationError{Index: index, Tag: tag}
	}

	want := 4
	if kind == KindDeletion || kind == KindGlobalComment {
		want = 3
	}
	if len(elems) != want {
		return Annotation{}, &MalformedAnnotationError{
			Index:  index,
			Reason: fmt.Sprintf("tag %q expects %d elements, got %d", tag, want, len(elems)),
		}
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	a := Annotation{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: base.Add(time.Duration(index) * time.Millisecond),
		Author:    deref(elems[len(elems)-1]),
	}

	switch kind {
	case KindDeletion:
		if elems[1] == nil {
			return Annotation{}, &MalformedAnnotationError{Index: index, Reason: "deletion requires quoted text"}
		}
		a.OriginalText = *elems[1]
	case KindGlobalComment:
		if elems[1] == nil {
			return Annotation{}, &MalformedAnnotationError{Index: index, Reason: "global comment requires text"}
		}
		a.Text = *elems[1]
	default:
		if elems[1] == nil || elems[2] == nil {
			return Annotation{}, &MalformedAnnotationError{Index: index, Reason: string(kind) + " requires quoted text and text"}
		}
		a.OriginalText = *elems[1]
		a.Text = *elems[2]
	}

	return a, nil
}
