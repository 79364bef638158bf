// Package browser opens URLs in the user's default browser.
package browser

import (
	"context"
	"fmt"
	"runtime"

	"github.com/colonyops/waggle/pkg/executil"
)

// Open launches the platform's default browser at url. Best-effort: the
// review URL is always printed too, so failure here is never fatal.
func Open(ctx context.Context, exec executil.Executor, url string) error {
	var (
		cmd  string
		args []string
	)

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	if _, err := exec.Run(ctx, cmd, args...); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}
