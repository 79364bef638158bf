// Package docs discovers reviewable plan documents on disk.
package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Document is a reviewable file.
type Document struct {
	Path    string // absolute path
	RelPath string // relative to the discovery root
	ModTime time.Time
}

// Discover returns documents under root matching the include glob patterns,
// sorted newest first. A missing root is not an error; it just has no
// documents.
func Discover(root string, include []string) ([]Document, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve docs root: %w", err)
	}
	if _, err := os.Stat(absRoot); os.IsNotExist(err) {
		return nil, nil
	}

	seen := make(map[string]struct{})
	var found []Document

	for _, pattern := range include {
		matches, err := doublestar.FilepathGlob(filepath.Join(absRoot, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}

		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}

			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}

			rel, err := filepath.Rel(absRoot, match)
			if err != nil {
				rel = match
			}

			seen[match] = struct{}{}
			found = append(found, Document{
				Path:    match,
				RelPath: rel,
				ModTime: info.ModTime(),
			})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].ModTime.Equal(found[j].ModTime) {
			return found[i].RelPath < found[j].RelPath
		}
		return found[i].ModTime.After(found[j].ModTime)
	})

	return found, nil
}

// Latest returns the most recently modified document, or nil when empty.
func Latest(documents []Document) *Document {
	if len(documents) == 0 {
		return nil
	}
	return &documents[0]
}
