package git

import (
	"context"
	"fmt"

	"github.com/colonyops/waggle/internal/core/diffview"
)

// Diff returns the unified diff for the given comparison type.
// baseBranch is required for the branch type and ignored otherwise.
func (e *Executor) Diff(ctx context.Context, dir string, t diffview.Type, baseBranch string) (string, error) {
	var args []string

	switch t {
	case diffview.TypeUncommitted:
		// Working directory + staged vs HEAD
		args = []string{"diff", "HEAD"}

	case diffview.TypeStaged:
		args = []string{"diff", "--staged"}

	case diffview.TypeUnstaged:
		args = []string{"diff"}

	case diffview.TypeLastCommit:
		args = []string{"diff", "HEAD~1", "HEAD"}

	case diffview.TypeBranch:
		if baseBranch == "" {
			return "", fmt.Errorf("base branch required for branch diff")
		}
		// Three-dot notation compares against the merge base
		args = []string{"diff", baseBranch + "...HEAD"}

	default:
		return "", fmt.Errorf("unknown diff type: %s", t)
	}

	out, err := e.exec.RunDir(ctx, dir, e.gitPath, args...)
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}
	return string(out), nil
}

// DiffProducer adapts an Executor to the diffview.Producer seam for a
// single repository directory.
type DiffProducer struct {
	exec *Executor
	dir  string
}

// NewDiffProducer returns a producer rooted at the given repo directory.
func NewDiffProducer(e *Executor, dir string) *DiffProducer {
	return &DiffProducer{exec: e, dir: dir}
}

// Produce runs git synchronously and returns the resulting view.
func (p *DiffProducer) Produce(ctx context.Context, t diffview.Type, baseBranch string) (diffview.View, error) {
	patch, err := p.exec.Diff(ctx, p.dir, t, baseBranch)
	if err != nil {
		return diffview.View{}, err
	}
	return diffview.View{
		Type:     t,
		RawPatch: patch,
		Label:    DescribeDiff(t, baseBranch),
	}, nil
}

// DescribeDiff returns a short human-readable label for a diff type.
func DescribeDiff(t diffview.Type, baseBranch string) string {
	switch t {
	case diffview.TypeUncommitted:
		return "uncommitted changes"
	case diffview.TypeStaged:
		return "staged changes"
	case diffview.TypeUnstaged:
		return "unstaged changes"
	case diffview.TypeLastCommit:
		return "last commit"
	case diffview.TypeBranch:
		return fmt.Sprintf("changes vs %s", baseBranch)
	default:
		return "unknown"
	}
}
