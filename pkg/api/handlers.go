package api

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/linkscope/pkg/buildinfo"
	"github.com/matzehuels/linkscope/pkg/encode"
	"github.com/matzehuels/linkscope/pkg/errors"
	"github.com/matzehuels/linkscope/pkg/graph"
	"github.com/matzehuels/linkscope/pkg/highlight"
	"github.com/matzehuels/linkscope/pkg/httputil"
	"github.com/matzehuels/linkscope/pkg/pipeline"
	"github.com/matzehuels/linkscope/pkg/render/nodelink"
	"github.com/matzehuels/linkscope/pkg/session"
	"github.com/matzehuels/linkscope/pkg/storage"
)

// =============================================================================
// Responses
// =============================================================================

type sessionResponse struct {
	ID         string            `json:"id"`
	GraphID    string            `json:"graph_id"`
	Generation uint64            `json:"generation"`
	Uploading  bool              `json:"uploading"`
	Config     encode.Config     `json:"config"`
	Legend     encode.Legend     `json:"legend"`
	Snapshot   encode.Snapshot   `json:"snapshot"`
	Effect     *highlight.Effect `json:"effect,omitempty"`
}

func newSessionResponse(s *session.Session, v *session.View, f encode.Frame) sessionResponse {
	enc := f.Encoder()
	return sessionResponse{
		ID:         s.ID(),
		GraphID:    v.Document.ID,
		Generation: v.Generation,
		Uploading:  s.Uploading(),
		Config:     enc.Config(),
		Legend:     enc.Legend(),
		Snapshot:   f.Snapshot(),
	}
}

type createSessionRequest struct {
	GraphID string         `json:"graph_id"`
	Config  *encode.Config `json:"config,omitempty"`
}

// =============================================================================
// Graphs
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.String(),
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	name, data, err := readUpload(w, r, s.maxUpload)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	res, err := s.runner.Ingest(r.Context(), name, data)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	body, err := graph.MarshalGraph(res.Graph)
	if err != nil {
		httputil.Error(w, errors.Wrap(errors.ErrCodeInternal, err, "encode graph"))
		return
	}
	w.Header().Set("X-Graph-ID", res.GraphID())
	w.Header().Set("X-Graph-Hash", res.Hash)
	httputil.Bytes(w, http.StatusOK, "application/json", body)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	doc, err := s.runner.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, doc)
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if req.GraphID == "" {
		httputil.Error(w, errors.New(errors.ErrCodeInvalidInput, "graph_id is required"))
		return
	}
	sess, err := s.sessions.Create(r.Context(), req.GraphID, req.Config)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	v := sess.View()
	httputil.JSON(w, http.StatusCreated, newSessionResponse(sess, v, v.Frame))
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	v := sess.View()
	f, err := zoomed(v.Frame, r)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, newSessionResponse(sess, v, f))
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var ev highlight.Event
	if err := httputil.DecodeJSON(r, &ev); err != nil {
		httputil.Error(w, err)
		return
	}
	v, eff, err := sess.Apply(r.Context(), ev)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	resp := newSessionResponse(sess, v, v.Frame)
	resp.Effect = &eff
	httputil.JSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	// Fields missing from the body keep their current values.
	cfg := sess.Config()
	if err := httputil.DecodeJSON(r, &cfg); err != nil {
		httputil.Error(w, err)
		return
	}
	v, err := sess.Reconfigure(cfg)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, newSessionResponse(sess, v, v.Frame))
}

func (s *Server) handleSessionUpload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name, data, err := readUpload(w, r, s.maxUpload)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	v, eff, err := sess.Replace(r.Context(), func(ctx context.Context) (*storage.Document, error) {
		res, err := s.runner.Ingest(ctx, name, data)
		if err != nil {
			return nil, err
		}
		if res.Document == nil {
			return storage.NewDocument(res.Graph, name, res.Format, res.Hash), nil
		}
		return res.Document, nil
	})
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		httputil.Error(w, err)
		return
	}
	s.logger.Info("session graph replaced", "session", sess.ID(), "graph", v.Document.ID, "generation", v.Generation)
	resp := newSessionResponse(sess, v, v.Frame)
	resp.Effect = &eff
	httputil.JSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	opts, err := s.renderOptions(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	v := sess.View()
	f, err := zoomed(v.Frame, r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	data, hit, err := s.runner.RenderWithCacheInfo(r.Context(), f, v.Document.Hash, opts)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	w.Header().Set("X-Cache", cacheStatus(hit))
	w.Header().Set("X-Generation", strconv.FormatUint(v.Generation, 10))
	httputil.Bytes(w, http.StatusOK, pipeline.ContentTypes[opts.Format], data)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Query parameters
// =============================================================================

func (s *Server) renderOptions(r *http.Request) (pipeline.RenderOptions, error) {
	q := r.URL.Query()
	opts := pipeline.RenderOptions{
		Format:   chi.URLParam(r, "format"),
		Engine:   s.engine,
		Detailed: s.detailed,
	}
	if e := q.Get("engine"); e != "" {
		opts.Engine = nodelink.Engine(e)
	}
	for name, dst := range map[string]*bool{"detailed": &opts.Detailed, "refresh": &opts.Refresh} {
		if raw := q.Get(name); raw != "" {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, raw)
			}
			*dst = b
		}
	}
	if raw := q.Get("scale"); raw != "" {
		scale, err := strconv.ParseFloat(raw, 64)
		if err != nil || scale <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "scale must be a positive number, got %q", raw)
		}
		opts.Scale = scale
	}
	return opts, nil
}

func zoomed(f encode.Frame, r *http.Request) (encode.Frame, error) {
	raw := r.URL.Query().Get("zoom")
	if raw == "" {
		return f, nil
	}
	z, err := strconv.ParseFloat(raw, 64)
	if err != nil || z <= 0 || math.IsNaN(z) || math.IsInf(z, 0) {
		return f, errors.New(errors.ErrCodeInvalidInput, "zoom must be a positive number, got %q", raw)
	}
	return f.WithZoom(z), nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
