package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// routes builds the HTTP surface. Every /session route is JSON; everything
// else falls through to the embedded client bundle so client-side routing
// works.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.log))
	// The dev client runs on its own port during client development.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Post("/diff/switch", s.handleDiffSwitch)
		r.Post("/decision", s.handleDecision)
		r.Get("/annotations", s.handleAnnotationsGet)
		r.Put("/annotations", s.handleAnnotationsPut)
		r.Delete("/annotations/{id}", s.handleAnnotationDelete)
		r.Post("/annotations/author", s.handleAnnotationsRename)
		r.Get("/share", s.handleShare)
		r.Post("/share/import", s.handleShareImport)
		r.Post("/upload", s.handleUpload)
		r.Get("/asset", s.handleAsset)
	})

	r.NotFound(s.serveClient)

	return r
}

// serveClient serves files from the embedded bundle, defaulting to the
// index so unknown paths resolve to the client-side router.
func (s *Server) serveClient(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")

	if name != "" && name != "index.html" {
		if info, err := fs.Stat(s.client, name); err == nil && !info.IsDir() {
			http.ServeFileFS(w, r, s.client, name)
			return
		}
	}

	data, err := fs.ReadFile(s.client, "index.html")
	if err != nil {
		http.Error(w, "client bundle missing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

// requestLogger logs each request at debug level with timing and status.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		})
	}
}
