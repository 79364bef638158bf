package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/colonyops/waggle/internal/core/annotation"
	"github.com/colonyops/waggle/internal/core/assets"
	"github.com/colonyops/waggle/internal/core/decision"
	"github.com/colonyops/waggle/internal/core/diffview"
	"github.com/colonyops/waggle/internal/core/share"
)

const maxUploadBytes = 32 << 20

type sessionResponse struct {
	Document       string         `json:"document"`
	Origin         Origin         `json:"origin"`
	DiffInfo       *diffview.View `json:"diffInfo,omitempty"`
	SharingEnabled bool           `json:"sharingEnabled"`
	RepoContext    *RepoContext   `json:"repoContext,omitempty"`
}

// handleSession returns the current session state, including the active
// diff view when in diff mode.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	resp := sessionResponse{
		Document:       s.document(),
		Origin:         s.opts.Origin,
		SharingEnabled: s.opts.SharingEnabled,
		RepoContext:    s.opts.RepoContext,
	}
	if s.opts.Origin == OriginDiff && s.opts.Diffs != nil {
		v := s.opts.Diffs.Current()
		resp.DiffInfo = &v
	}
	respondJSON(w, http.StatusOK, resp)
}

type diffSwitchRequest struct {
	DiffType string `json:"diffType"`
}

// handleDiffSwitch switches the active diff view. A bad type is the
// client's fault (400); a failing diff tool is not (500). Either way the
// previously visible view is preserved.
func (s *Server) handleDiffSwitch(w http.ResponseWriter, r *http.Request) {
	if s.opts.Diffs == nil {
		respondError(w, http.StatusBadRequest, "not a diff review session")
		return
	}

	var req diffSwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := diffview.ParseType(req.DiffType)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := s.opts.Diffs.Switch(r.Context(), t)
	if err != nil {
		s.log.Error().Err(err).Str("diff_type", req.DiffType).Msg("diff switch failed")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, v)
}

type decisionRequest struct {
	Approved *bool             `json:"approved"`
	Feedback string            `json:"feedback"`
	Extra    map[string]string `json:"extra"`
}

// handleDecision resolves the session verdict. Duplicate submissions are
// indistinguishable from the winning one as far as the client is concerned:
// both get {ok:true}.
func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Approved == nil {
		respondError(w, http.StatusBadRequest, "approved must be a boolean")
		return
	}

	won := s.opts.Decision.Resolve(decision.Decision{
		Approved: *req.Approved,
		Feedback: req.Feedback,
		Extra:    req.Extra,
	})
	if !won {
		s.log.Debug().Msg("duplicate decision ignored")
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type annotationsRequest struct {
	Annotations []json.RawMessage `json:"annotations"`
}

// handleAnnotationsPut replaces the server-held annotation collection with
// the client's current set. The tuples arrive in the client's creation
// order and are kept that way.
func (s *Server) handleAnnotationsPut(w http.ResponseWriter, r *http.Request) {
	var req annotationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	base := time.Now()
	items := make([]annotation.Annotation, 0, len(req.Annotations))
	for i, raw := range req.Annotations {
		a, err := annotation.DecodeTuple(raw, i, base)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		items = append(items, a)
	}

	s.opts.Annotations.ReplaceAll(items)
	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "count": len(items)})
}

// handleAnnotationsGet returns the held collection as wire tuples, e.g.
// after an import changed it.
func (s *Server) handleAnnotationsGet(w http.ResponseWriter, r *http.Request) {
	items := s.opts.Annotations.List()
	tuples := make([]json.RawMessage, 0, len(items))
	for _, a := range items {
		raw, err := annotation.EncodeTuple(a)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		tuples = append(tuples, raw)
	}
	respondJSON(w, http.StatusOK, annotationsRequest{Annotations: tuples})
}

// handleAnnotationDelete removes a single annotation by ID.
func (s *Server) handleAnnotationDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.opts.Annotations.Remove(id) {
		respondError(w, http.StatusNotFound, "unknown annotation id")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type renameRequest struct {
	Author string `json:"author"`
}

// handleAnnotationsRename rewrites the author on every held annotation,
// for when the reviewer changes their display identity mid-session.
func (s *Server) handleAnnotationsRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Author == "" {
		respondError(w, http.StatusBadRequest, "author is required")
		return
	}

	s.opts.Annotations.Rename(req.Author)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleShare encodes the whole session into a URL token another reviewer
// can open without any server.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	if !s.opts.SharingEnabled {
		respondError(w, http.StatusForbidden, "sharing is disabled for this session")
		return
	}

	payload, err := share.FromCollection(s.document(), s.opts.Annotations, s.attachmentRefs())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := share.Encode(payload)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"url":   s.url + "/#share=" + token,
	})
}

type importRequest struct {
	Token string `json:"token"`
}

type importResponse struct {
	Added  int    `json:"added"`
	Title  string `json:"title"`
	Reason string `json:"reason,omitempty"`
}

// handleShareImport merge-imports another reviewer's session token into the
// held collection, skipping annotations already present.
func (s *Server) handleShareImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respondError(w, http.StatusBadRequest, "token is required")
		return
	}

	payload, err := share.Decode(req.Token)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := share.Import(payload, s.opts.Annotations)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Info().Int("added", res.Added).Str("title", res.Title).Msg("imported shared session")
	respondJSON(w, http.StatusOK, importResponse{Added: res.Added, Title: res.Title, Reason: res.Reason})
}

// handleUpload stores an attachment and returns its opaque reference.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	ref, err := s.opts.Assets.Save(header.Filename, file)
	if err != nil {
		s.log.Error().Err(err).Str("filename", header.Filename).Msg("upload failed")
		respondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}

	s.recordAttachment(ref)
	respondJSON(w, http.StatusOK, map[string]string{"ref": ref})
}

// handleAsset streams a previously uploaded attachment.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		respondError(w, http.StatusBadRequest, "ref is required")
		return
	}

	rc, ctype, err := s.opts.Assets.Open(ref)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			respondError(w, http.StatusNotFound, "unknown asset reference")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to read asset")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", ctype)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Debug().Err(err).Str("ref", ref).Msg("asset stream interrupted")
	}
}
