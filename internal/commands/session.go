package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/waggle/internal/core/assets"
	"github.com/colonyops/waggle/internal/core/browser"
	"github.com/colonyops/waggle/internal/core/decision"
	"github.com/colonyops/waggle/internal/server"
	"github.com/colonyops/waggle/pkg/executil"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(0, 2)

	urlStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Underline(true)
	approvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	deniedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// stdoutIsTTY reports whether we're talking to a human terminal rather
// than a pipe back into the calling agent.
func stdoutIsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// runSession starts the session server, hands the URL to the reviewer, and
// blocks until the human decides or the process is interrupted. A denied
// verdict surfaces as a non-zero exit so the calling agent can branch on it.
func runSession(ctx context.Context, flags *Flags, opts server.Options, label string) error {
	cfg := flags.Config

	store, err := assets.NewDirStore(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("prepare upload dir: %w", err)
	}

	dec := decision.New()
	opts.Decision = dec
	opts.Assets = store
	opts.Host = cfg.Host
	opts.Port = cfg.ListenPort()
	opts.RemoteMode = cfg.Remote
	opts.SharingEnabled = cfg.Sharing.IsEnabled()
	opts.Logger = log.Logger

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(opts)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Stop()

	url := srv.URL()
	printBanner(label, url)

	if cfg.Remote {
		log.Debug().Msg("remote mode, skipping browser launch")
	} else if stdoutIsTTY() {
		if err := browser.Open(ctx, &executil.RealExecutor{}, url); err != nil {
			log.Warn().Err(err).Msg("failed to open browser, open the URL manually")
		}
	}

	d, err := dec.Wait(ctx)
	if err != nil {
		return fmt.Errorf("session interrupted before a decision was made: %w", err)
	}

	printVerdict(d)

	if !d.Approved {
		return cli.Exit("changes requested", 1)
	}
	return nil
}

func printBanner(label, url string) {
	body := fmt.Sprintf("%s\n\nReview at %s", label, urlStyle.Render(url))
	fmt.Println(bannerStyle.Render(body))
}

func printVerdict(d decision.Decision) {
	fmt.Println()
	if d.Approved {
		fmt.Println(approvedStyle.Render("✓ Approved"))
	} else {
		fmt.Println(deniedStyle.Render("✗ Changes requested"))
	}

	if d.Feedback == "" {
		return
	}

	fmt.Println()
	fmt.Println(renderFeedback(d.Feedback))
}

// renderFeedback pretty-prints markdown feedback on a terminal and passes
// it through untouched when output is piped back to an agent.
func renderFeedback(feedback string) string {
	if !stdoutIsTTY() {
		return feedback
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return feedback
	}

	out, err := r.Render(feedback)
	if err != nil {
		return feedback
	}
	return strings.TrimRight(out, "\n")
}
