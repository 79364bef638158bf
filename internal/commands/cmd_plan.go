package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/waggle/internal/core/docs"
	"github.com/colonyops/waggle/internal/server"
)

type PlanCmd struct {
	flags   *Flags
	latest  bool
	docsDir string
}

// NewPlanCmd creates a new plan command.
func NewPlanCmd(flags *Flags) *PlanCmd {
	return &PlanCmd{flags: flags}
}

// Register adds the plan command to the application.
func (cmd *PlanCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "plan",
		Usage:     "Open a plan document for human review in the browser",
		ArgsUsage: "[file]",
		Description: `Plan starts a local review session for a plan document and blocks until
the reviewer approves or requests changes.

With no file argument, documents are discovered under the configured docs
directory and a picker is shown (or the most recent one is used with
--latest). Feedback is printed on exit; a denied review exits non-zero.

Examples:
  waggle plan plans/refactor.md   # Review a specific document
  waggle plan --latest            # Review the most recently modified one
  waggle plan                     # Pick from discovered documents`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "latest",
				Usage:       "review the most recently modified document",
				Destination: &cmd.latest,
			},
			&cli.StringFlag{
				Name:        "docs-dir",
				Usage:       "directory to discover documents in (overrides config)",
				Destination: &cmd.docsDir,
			},
		},
		Action:        cmd.run,
		ShellComplete: DocumentCompleter(cmd.flags),
	})

	return app
}

func (cmd *PlanCmd) run(ctx context.Context, c *cli.Command) error {
	path, err := cmd.resolveDocument(c)
	if err != nil {
		return err
	}
	if path == "" {
		// Picker aborted; not an error.
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plan document: %w", err)
	}

	opts := server.Options{
		Document: string(content),
		Origin:   server.OriginPlan,
	}

	return runSession(ctx, cmd.flags, opts, "Plan review: "+path)
}

// resolveDocument picks the plan file: explicit argument, then --latest,
// then an interactive picker over discovered documents. Returns "" when
// the user aborts the picker.
func (cmd *PlanCmd) resolveDocument(c *cli.Command) (string, error) {
	if arg := c.Args().First(); arg != "" {
		if _, err := os.Stat(arg); err != nil {
			return "", fmt.Errorf("plan document %q: %w", arg, err)
		}
		return arg, nil
	}

	root := cmd.docsDir
	if root == "" {
		root = cmd.flags.Config.Docs.Dir
	}

	documents, err := docs.Discover(root, cmd.flags.Config.Docs.Include)
	if err != nil {
		return "", fmt.Errorf("discover documents: %w", err)
	}
	if len(documents) == 0 {
		return "", fmt.Errorf("no documents found under %s; pass a file argument", root)
	}

	if cmd.latest {
		return docs.Latest(documents).Path, nil
	}

	if !stdoutIsTTY() {
		return "", fmt.Errorf("multiple documents found under %s; pass a file argument or --latest", root)
	}

	options := make([]huh.Option[string], 0, len(documents))
	for _, d := range documents {
		options = append(options, huh.NewOption(d.RelPath, d.Path))
	}

	var selected string
	err = huh.NewSelect[string]().
		Title("Select a document to review").
		Options(options...).
		Value(&selected).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", fmt.Errorf("document picker: %w", err)
	}

	return selected, nil
}
