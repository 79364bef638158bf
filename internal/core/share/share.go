// Package share serializes a whole review session into a URL-safe token so
// a session can be handed to another reviewer without any server in between.
package share

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/colonyops/waggle/internal/core/annotation"
)

// formatVersion is the first byte of every token, ahead of the compressed
// body, so the payload shape can evolve without breaking old links.
const formatVersion = 0x01

// Payload is the serializable unit shared via URL: the document under
// review, the annotation tuples in creation order, and any attachment
// references collected during the session.
type Payload struct {
	Document    string            `json:"document"`
	Annotations []json.RawMessage `json:"annotations"`
	Attachments []string          `json:"attachments,omitempty"`
}

// Decode stages, reported in DecodeError.
const (
	StageBase64  = "base64"
	StageVersion = "version"
	StageInflate = "inflate"
	StagePayload = "payload"
)

// DecodeError reports a share token that could not be decoded, and at which
// stage of the transform it failed. Distinguishable from other errors via
// errors.As so the import UI can show a human-readable reason.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode share token (%s): %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode serializes the payload, compresses it, prefixes the format version
// byte and encodes the result as unpadded URL-safe base64, suitable for a
// URL fragment.
func Encode(p Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteByte(formatVersion)
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return "", fmt.Errorf("compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress payload: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode is the inverse of Encode. Every failure class returns a
// *DecodeError naming the stage that rejected the token.
func Decode(token string) (Payload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Payload{}, &DecodeError{Stage: StageBase64, Err: err}
	}
	if len(raw) == 0 {
		return Payload{}, &DecodeError{Stage: StageVersion, Err: fmt.Errorf("empty token")}
	}
	if raw[0] != formatVersion {
		return Payload{}, &DecodeError{Stage: StageVersion, Err: fmt.Errorf("unsupported format version %d", raw[0])}
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw[1:]))
	if err != nil {
		return Payload{}, &DecodeError{Stage: StageInflate, Err: err}
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		return Payload{}, &DecodeError{Stage: StageInflate, Err: err}
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, &DecodeError{Stage: StagePayload, Err: err}
	}
	return p, nil
}

// FromCollection builds a payload from the document text and the current
// annotation collection. Tuple order matches the collection's creation
// order, which Decode reproduces exactly.
func FromCollection(document string, coll *annotation.Collection, attachments []string) (Payload, error) {
	items := coll.List()
	tuples := make([]json.RawMessage, 0, len(items))
	for _, a := range items {
		raw, err := annotation.EncodeTuple(a)
		if err != nil {
			return Payload{}, err
		}
		tuples = append(tuples, raw)
	}
	return Payload{
		Document:    document,
		Annotations: tuples,
		Attachments: attachments,
	}, nil
}
