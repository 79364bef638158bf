// Package server implements the short-lived local HTTP server that hosts a
// single review session: it serves session state to the browser client,
// accepts annotations and uploads, and forwards the human's verdict to the
// blocking launcher through the decision channel.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/waggle/internal/core/annotation"
	"github.com/colonyops/waggle/internal/core/assets"
	"github.com/colonyops/waggle/internal/core/decision"
	"github.com/colonyops/waggle/internal/core/diffview"
	"github.com/colonyops/waggle/internal/server/ui"
)

// Bind retry policy for port contention: a fixed number of attempts with a
// fixed delay, not backoff. A previous session releasing the port is the
// common case; anything slower deserves the error.
const (
	bindAttempts   = 5
	bindRetryDelay = 500 * time.Millisecond
)

// Origin identifies what kind of content is under review.
type Origin string

// Session origins.
const (
	OriginPlan Origin = "plan"
	OriginDiff Origin = "diff"
)

// RepoContext describes the repository a diff session was launched from.
type RepoContext struct {
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
}

// PortExhaustedError is returned when the configured port stayed occupied
// through every bind attempt. Fatal to session start.
type PortExhaustedError struct {
	Port     int
	Attempts int
}

func (e *PortExhaustedError) Error() string {
	return fmt.Sprintf("port %d is still in use after %d attempts; pass --port to use a different one", e.Port, e.Attempts)
}

// Options configures a session server.
type Options struct {
	// Document is the plan text in plan mode. Unused in diff mode, where
	// the current diff view supplies the session document.
	Document string
	Origin   Origin

	Host string
	Port int
	// RemoteMode is recorded for logging only; the launcher handles the
	// behavioral differences (port default, browser suppression).
	RemoteMode     bool
	SharingEnabled bool
	RepoContext    *RepoContext

	Decision    *decision.Channel
	Diffs       *diffview.Manager // nil in plan mode
	Annotations *annotation.Collection
	Assets      assets.Store

	Logger zerolog.Logger
}

// Server hosts one review session.
type Server struct {
	opts   Options
	log    zerolog.Logger
	client fs.FS

	srv *http.Server
	url string

	stopOnce sync.Once

	attachMu    sync.Mutex
	attachments []string
}

// New creates a session server. Start must be called before the server
// accepts requests.
func New(opts Options) *Server {
	if opts.Annotations == nil {
		opts.Annotations = annotation.NewCollection()
	}
	return &Server{
		opts:   opts,
		log:    opts.Logger.With().Str("component", "server").Logger(),
		client: ui.Dist(),
	}
}

// Start binds the listener and begins serving in the background. The
// session URL is available from URL afterwards.
//
// A port held by another process is retried bindAttempts times with a fixed
// delay; exhausting the retries yields a *PortExhaustedError. Any other
// bind failure propagates immediately.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))

	var (
		ln  net.Listener
		err error
	)
	for attempt := 1; ; attempt++ {
		ln, err = net.Listen("tcp", addr)
		if err == nil {
			break
		}
		if !isAddrInUse(err) {
			return fmt.Errorf("bind %s: %w", addr, err)
		}
		if attempt >= bindAttempts {
			return &PortExhaustedError{Port: s.opts.Port, Attempts: attempt}
		}

		s.log.Warn().
			Int("port", s.opts.Port).
			Int("attempt", attempt).
			Msg("port in use, retrying")

		select {
		case <-time.After(bindRetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.url = "http://" + ln.Addr().String()
	s.srv = &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("session server stopped unexpectedly")
		}
	}()

	s.log.Info().
		Str("url", s.url).
		Str("origin", string(s.opts.Origin)).
		Bool("remote", s.opts.RemoteMode).
		Msg("session server listening")

	return nil
}

// URL returns the session URL. Empty before Start succeeds.
func (s *Server) URL() string { return s.url }

// Stop tears the server down. Idempotent, safe to call whether or not a
// decision was ever produced, and does not wait for in-flight requests to
// be acknowledged by clients.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.srv == nil {
			return
		}
		if err := s.srv.Close(); err != nil {
			s.log.Debug().Err(err).Msg("close session server")
		}
	})
}

// recordAttachment remembers an uploaded asset ref so share payloads can
// carry the attachment list.
func (s *Server) recordAttachment(ref string) {
	s.attachMu.Lock()
	defer s.attachMu.Unlock()
	s.attachments = append(s.attachments, ref)
}

// attachmentRefs returns a copy of the refs uploaded so far, in order.
func (s *Server) attachmentRefs() []string {
	s.attachMu.Lock()
	defer s.attachMu.Unlock()
	out := make([]string, len(s.attachments))
	copy(out, s.attachments)
	return out
}

// document returns the text a share payload or session fetch should carry:
// the plan in plan mode, the active patch in diff mode.
func (s *Server) document() string {
	if s.opts.Origin == OriginDiff && s.opts.Diffs != nil {
		return s.opts.Diffs.Current().RawPatch
	}
	return s.opts.Document
}
