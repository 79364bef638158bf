package annotation

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeTuple(t *testing.T) {
	tests := []struct {
		name string
		in   Annotation
		want string
	}{
		{
			name: "deletion with author",
			in:   Annotation{Kind: KindDeletion, OriginalText: "old line", Author: "fox-42"},
			want: `["d","old line","fox-42"]`,
		},
		{
			name: "deletion without author",
			in:   Annotation{Kind: KindDeletion, OriginalText: "old line"},
			want: `["d","old line",null]`,
		},
		{
			name: "replacement",
			in:   Annotation{Kind: KindReplacement, OriginalText: "foo", Text: "bar", Author: "ann"},
			want: `["r","foo","bar","ann"]`,
		},
		{
			name: "comment",
			in:   Annotation{Kind: KindComment, OriginalText: "step 1", Text: "make this async"},
			want: `["c","step 1","make this async",null]`,
		},
		{
			name: "insertion",
			in:   Annotation{Kind: KindInsertion, OriginalText: "anchor", Text: "new text"},
			want: `["i","anchor","new text",null]`,
		},
		{
			name: "global comment drops originalText",
			in:   Annotation{Kind: KindGlobalComment, Text: "overall: looks good"},
			want: `["g","overall: looks good",null]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := EncodeTuple(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

func TestEncodeTuple_UnknownKind(t *testing.T) {
	_, err := EncodeTuple(Annotation{Kind: Kind("bogus")})
	require.Error(t, err)
}

func TestDecodeTuple_RoundTrip(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	anns := []Annotation{
		{Kind: KindComment, OriginalText: "step 1", Text: "make this async", Author: "fox-42"},
		{Kind: KindDeletion, OriginalText: "drop me"},
		{Kind: KindGlobalComment, Text: "ship it"},
		{Kind: KindReplacement, OriginalText: "x", Text: "y", Author: "ann"},
	}

	for i, in := range anns {
		raw, err := EncodeTuple(in)
		require.NoError(t, err)

		got, err := DecodeTuple(raw, i, base)
		require.NoError(t, err)

		assert.NotEmpty(t, got.ID)
		assert.Equal(t, in.Kind, got.Kind)
		assert.Equal(t, in.OriginalText, got.OriginalText)
		assert.Equal(t, in.Text, got.Text)
		assert.Equal(t, in.Author, got.Author)
		assert.Equal(t, base.Add(time.Duration(i)*time.Millisecond), got.CreatedAt)
	}
}

func TestDecodeTuple_OrderingIsDeterministic(t *testing.T) {
	base := time.Now()

	first, err := DecodeTuple(json.RawMessage(`["g","a",null]`), 0, base)
	require.NoError(t, err)
	second, err := DecodeTuple(json.RawMessage(`["g","b",null]`), 1, base)
	require.NoError(t, err)

	assert.True(t, first.CreatedAt.Before(second.CreatedAt))
}

func TestDecodeTuple_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantTag string
	}{
		{name: "unknown tag", raw: `["z","text",null]`, wantTag: "z"},
		{name: "not an array", raw: `{"tag":"c"}`},
		{name: "empty array", raw: `[]`},
		{name: "null tag", raw: `[null,"a",null]`},
		{name: "wrong arity for comment", raw: `["c","only-original",null]`},
		{name: "wrong arity for deletion", raw: `["d","a","b","c"]`},
		{name: "null required field", raw: `["r",null,null,null]`},
		{name: "non-string element", raw: `["c","a",42,null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTuple(json.RawMessage(tt.raw), 3, time.Now())
			require.Error(t, err)

			var malformed *MalformedAnnotationError
			require.True(t, errors.As(err, &malformed), "expected MalformedAnnotationError, got %T", err)
			assert.Equal(t, 3, malformed.Index)
			if tt.wantTag != "" {
				assert.Equal(t, tt.wantTag, malformed.Tag)
			}
		})
	}
}

func TestAnnotationValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Annotation
		wantErr bool
	}{
		{name: "valid comment", in: Annotation{Kind: KindComment, OriginalText: "a", Text: "b"}},
		{name: "deletion needs no text", in: Annotation{Kind: KindDeletion, OriginalText: "a"}},
		{name: "comment requires text", in: Annotation{Kind: KindComment, OriginalText: "a"}, wantErr: true},
		{name: "unknown kind", in: Annotation{Kind: "nope", Text: "x"}, wantErr: true},
		{name: "global comment with quote", in: Annotation{Kind: KindGlobalComment, Text: "x", OriginalText: "q"}, wantErr: true},
		{name: "inverted line range", in: Annotation{Kind: KindComment, Text: "x", LineStart: 10, LineEnd: 5}, wantErr: true},
		{name: "valid line range", in: Annotation{Kind: KindComment, Text: "x", LineStart: 5, LineEnd: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
