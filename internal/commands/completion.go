package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/waggle/internal/core/docs"
)

// DocumentCompleter returns a ShellCompleteFunc that suggests discovered
// document paths as positional completions for the plan command.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func DocumentCompleter(flags *Flags) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		// Delegate to default flag completion when typing a flag
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if flags.Config == nil {
			return
		}

		documents, err := docs.Discover(flags.Config.Docs.Dir, flags.Config.Docs.Include)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, d := range documents {
			_, _ = fmt.Fprintln(w, d.RelPath)
		}
	}
}
