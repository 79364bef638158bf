// Package diffview holds the currently active diff comparison for a code
// review session and coordinates switching between comparisons.
package diffview

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Type identifies a git-style comparison.
type Type string

// Supported diff types.
const (
	TypeUncommitted Type = "uncommitted" // working tree + staged vs HEAD
	TypeStaged      Type = "staged"
	TypeUnstaged    Type = "unstaged"
	TypeLastCommit  Type = "last-commit"
	TypeBranch      Type = "branch" // merge base of the default branch vs HEAD
)

// All lists the supported diff types in display order.
func All() []Type {
	return []Type{TypeUncommitted, TypeStaged, TypeUnstaged, TypeLastCommit, TypeBranch}
}

// ParseType validates a client-supplied diff type string.
func ParseType(s string) (Type, error) {
	t := Type(s)
	switch t {
	case TypeUncommitted, TypeStaged, TypeUnstaged, TypeLastCommit, TypeBranch:
		return t, nil
	default:
		return "", fmt.Errorf("unknown diff type %q (expected one of: %s)", s, joinTypes())
	}
}

func joinTypes() string {
	all := All()
	strs := make([]string, len(all))
	for i, t := range all {
		strs[i] = string(t)
	}
	return strings.Join(strs, ", ")
}

// View is one diff comparison as shown to the reviewer.
type View struct {
	Type     Type   `json:"diffType"`
	RawPatch string `json:"rawPatch"`
	Label    string `json:"label"`
}

// Producer computes a view for a diff type. Implemented by the git
// collaborator; faked in tests.
type Producer interface {
	Produce(ctx context.Context, t Type, baseBranch string) (View, error)
}

// Manager holds the single current view for a session and serializes
// switches. Reads never contend with each other; a failed switch leaves the
// current view untouched.
type Manager struct {
	mu         sync.RWMutex
	producer   Producer
	baseBranch string
	current    View
}

// NewManager returns a manager showing the given initial view.
func NewManager(p Producer, baseBranch string, initial View) *Manager {
	return &Manager{producer: p, baseBranch: baseBranch, current: initial}
}

// Current returns the active view. Side-effect free.
func (m *Manager) Current() View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// BaseBranch returns the comparison branch used for branch diffs.
func (m *Manager) BaseBranch() string {
	return m.baseBranch
}

// Switch replaces the current view with a freshly produced one for t.
//
// Switching to the already-current type is a no-op that returns the
// unchanged view without invoking the producer. On producer failure the
// previous view stays visible and the error is returned to the caller.
func (m *Manager) Switch(ctx context.Context, t Type) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t == m.current.Type {
		return m.current, nil
	}

	v, err := m.producer.Produce(ctx, t, m.baseBranch)
	if err != nil {
		return View{}, fmt.Errorf("switch diff to %s: %w", t, err)
	}

	m.current = v
	return v, nil
}
