package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/waggle/internal/core/diffview"
	"github.com/colonyops/waggle/internal/core/git"
	"github.com/colonyops/waggle/internal/server"
	"github.com/colonyops/waggle/pkg/executil"
)

type DiffCmd struct {
	flags    *Flags
	diffType string
	base     string
}

// NewDiffCmd creates a new diff command.
func NewDiffCmd(flags *Flags) *DiffCmd {
	return &DiffCmd{flags: flags}
}

// Register adds the diff command to the application.
func (cmd *DiffCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "diff",
		Usage: "Open the repository diff for human review in the browser",
		Description: `Diff starts a local review session for the working repository's changes
and blocks until the reviewer approves or requests changes.

The reviewer can switch between diff types (uncommitted, staged, unstaged,
last-commit, branch) from the browser without restarting the session.

Examples:
  waggle diff                     # Review uncommitted changes
  waggle diff --type staged       # Review staged changes only
  waggle diff --type branch       # Review the branch against its base`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "initial diff type (uncommitted, staged, unstaged, last-commit, branch)",
				Value:       string(diffview.TypeUncommitted),
				Destination: &cmd.diffType,
			},
			&cli.StringFlag{
				Name:        "base",
				Usage:       "base branch for branch diffs (defaults to config, then origin/HEAD)",
				Destination: &cmd.base,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DiffCmd) run(ctx context.Context, c *cli.Command) error {
	// Diff sessions shell out to git constantly; surface a bad git_path
	// before starting anything.
	if err := cmd.flags.Config.ValidateDeep(); err != nil {
		return err
	}

	t, err := diffview.ParseType(cmd.diffType)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	exec := &executil.RealExecutor{}
	gitExec := git.NewExecutor(cmd.flags.Config.GitPath, exec)

	if !gitExec.IsRepo(ctx, cwd) {
		return fmt.Errorf("%s is not a git repository", cwd)
	}

	base, err := cmd.resolveBase(ctx, gitExec, cwd, t)
	if err != nil {
		return err
	}

	// Produce the initial view up front so a broken repo state fails the
	// command instead of the first browser request.
	producer := git.NewDiffProducer(gitExec, cwd)
	initial, err := producer.Produce(ctx, t, base)
	if err != nil {
		return err
	}

	opts := server.Options{
		Origin:      server.OriginDiff,
		Diffs:       diffview.NewManager(producer, base, initial),
		RepoContext: repoContext(ctx, gitExec, cwd),
	}

	return runSession(ctx, cmd.flags, opts, "Diff review: "+git.DescribeDiff(t, base))
}

// resolveBase picks the comparison branch: flag, then config, then the
// repository's origin/HEAD. Detection failure only matters for branch
// diffs; the other types never reference the base.
func (cmd *DiffCmd) resolveBase(ctx context.Context, gitExec *git.Executor, cwd string, t diffview.Type) (string, error) {
	if cmd.base != "" {
		return cmd.base, nil
	}
	if cfg := cmd.flags.Config.BaseBranch; cfg != "" {
		return cfg, nil
	}

	base, err := gitExec.DefaultBranch(ctx, cwd)
	if err != nil {
		if t == diffview.TypeBranch {
			return "", fmt.Errorf("detect base branch (pass --base): %w", err)
		}
		return "", nil
	}
	return base, nil
}

// repoContext collects repo name and branch for the session header. Best
// effort: a repo without a remote still gets a branch.
func repoContext(ctx context.Context, gitExec *git.Executor, cwd string) *server.RepoContext {
	rc := &server.RepoContext{}

	if branch, err := gitExec.Branch(ctx, cwd); err == nil {
		rc.Branch = branch
	}
	if remote, err := gitExec.RemoteURL(ctx, cwd); err == nil {
		rc.Repo = git.ExtractRepoName(remote)
	}

	if rc.Branch == "" && rc.Repo == "" {
		return nil
	}
	return rc
}
