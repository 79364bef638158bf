package share

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/waggle/internal/core/annotation"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	p := Payload{
		Document: "# Plan\n\nstep 1: do the thing\nstep 2: verify\n",
		Annotations: []json.RawMessage{
			json.RawMessage(`["c","step 1","make this async","fox-42"]`),
			json.RawMessage(`["d","step 2",null]`),
			json.RawMessage(`["g","overall fine",null]`),
		},
		Attachments: []string{"abc123.png", "def456.jpg"},
	}

	token, err := Encode(p)
	require.NoError(t, err)

	// URL-fragment safe: no padding or reserved characters.
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")
	assert.NotContains(t, token, "=")

	got, err := Decode(token)
	require.NoError(t, err)

	assert.Equal(t, p.Document, got.Document)
	require.Len(t, got.Annotations, len(p.Annotations))
	for i := range p.Annotations {
		assert.JSONEq(t, string(p.Annotations[i]), string(got.Annotations[i]))
	}
	assert.Equal(t, p.Attachments, got.Attachments)
}

func TestEncode_CollectionScenario(t *testing.T) {
	coll := annotation.NewCollection()
	coll.Add(annotation.Annotation{
		ID:           "x",
		Kind:         annotation.KindComment,
		OriginalText: "step 1",
		Text:         "make this async",
		Author:       "fox-42",
	})

	p, err := FromCollection("# Plan\n", coll, nil)
	require.NoError(t, err)

	token, err := Encode(p)
	require.NoError(t, err)

	got, err := Decode(token)
	require.NoError(t, err)

	target := annotation.NewCollection()
	res, err := Import(got, target)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Added)
	assert.Equal(t, "Plan", res.Title)

	decoded := target.List()
	require.Len(t, decoded, 1)
	assert.Equal(t, annotation.KindComment, decoded[0].Kind)
	assert.Equal(t, "step 1", decoded[0].OriginalText)
	assert.Equal(t, "make this async", decoded[0].Text)
	assert.Equal(t, "fox-42", decoded[0].Author)
}

func TestDecode_Errors(t *testing.T) {
	// A structurally valid token whose inner JSON is not a payload object.
	var junk bytes.Buffer
	junk.WriteByte(0x01)
	zw := zlib.NewWriter(&junk)
	_, _ = zw.Write([]byte(`[1,2,3]`))
	_ = zw.Close()

	// Valid version byte followed by bytes that are not a zlib stream.
	notZlib := base64.RawURLEncoding.EncodeToString([]byte{0x01, 0xde, 0xad, 0xbe, 0xef})

	// Future format version.
	futureVersion := base64.RawURLEncoding.EncodeToString([]byte{0x7f, 0x00})

	tests := []struct {
		name      string
		token     string
		wantStage string
	}{
		{name: "invalid base64", token: "!!not-base64!!", wantStage: StageBase64},
		{name: "empty token", token: "", wantStage: StageVersion},
		{name: "unknown version", token: futureVersion, wantStage: StageVersion},
		{name: "corrupt stream", token: notZlib, wantStage: StageInflate},
		{name: "wrong payload shape", token: base64.RawURLEncoding.EncodeToString(junk.Bytes()), wantStage: StagePayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			require.Error(t, err)

			var dec *DecodeError
			require.True(t, errors.As(err, &dec), "expected DecodeError, got %T", err)
			assert.Equal(t, tt.wantStage, dec.Stage)
		})
	}
}

func TestDecode_TruncatedToken(t *testing.T) {
	p := Payload{Document: strings.Repeat("lorem ipsum ", 200)}
	token, err := Encode(p)
	require.NoError(t, err)

	_, err = Decode(token[:len(token)/2])

	var dec *DecodeError
	require.True(t, errors.As(err, &dec))
	assert.Equal(t, StageInflate, dec.Stage)
}

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "h1 first line", doc: "# My Plan\nbody", want: "My Plan"},
		{name: "heading after prose", doc: "intro text\n\n## Section Two\n", want: "Section Two"},
		{name: "deep heading", doc: "### Deep\n", want: "Deep"},
		{name: "no heading", doc: "just text\nmore text", want: ""},
		{name: "empty document", doc: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DocumentTitle(tt.doc))
		})
	}
}
