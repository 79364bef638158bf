// Package assets stores uploaded review attachments (screenshots, pasted
// images) for the lifetime of a session and serves them back by an opaque
// reference.
package assets

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Open for unknown references.
var ErrNotFound = errors.New("asset not found")

// Store persists uploaded files and streams them back.
type Store interface {
	// Save stores the contents of r and returns an opaque reference.
	// The original filename is only consulted for its extension.
	Save(filename string, r io.Reader) (string, error)
	// Open returns a reader and content type for a stored reference.
	// Returns ErrNotFound for references Save never produced.
	Open(ref string) (io.ReadCloser, string, error)
}

// References are a uuid plus a sanitized extension, so they can never name
// a path outside the store directory.
var refPattern = regexp.MustCompile(`^[a-f0-9-]{36}(\.[a-z0-9]{1,10})?$`)

// DirStore keeps assets as files in a single directory.
type DirStore struct {
	dir string
}

// NewDirStore returns a store rooted at dir. An empty dir selects a fresh
// temporary directory; the session is short-lived, so cleanup is left to
// the OS.
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "waggle-assets-*")
		if err != nil {
			return nil, fmt.Errorf("create asset dir: %w", err)
		}
		return &DirStore{dir: tmp}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *DirStore) Dir() string { return s.dir }

// Save stores the reader contents under a fresh reference.
func (s *DirStore) Save(filename string, r io.Reader) (string, error) {
	ref := uuid.NewString() + sanitizeExt(filepath.Ext(filename))

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("create asset: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}
	return ref, nil
}

// Open streams a stored asset and reports its content type.
func (s *DirStore) Open(ref string) (io.ReadCloser, string, error) {
	if !refPattern.MatchString(ref) {
		return nil, "", ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("open asset: %w", err)
	}

	ctype := mime.TypeByExtension(filepath.Ext(ref))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	return f, ctype, nil
}

// sanitizeExt keeps only lowercase alphanumeric extensions, capped at 10
// characters, so a hostile filename cannot smuggle path syntax into a ref.
func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" || len(ext) > 10 {
		return ""
	}
	for _, c := range ext {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return "." + ext
}
