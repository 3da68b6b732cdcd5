// Package server exposes the editor over HTTP.
//
// One server owns one editor: pointer events arrive as POST requests and are
// serialized onto the engine, mirroring the single event loop a graphical
// host would provide. Charts can be swapped in and out of the configured
// store without restarting.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kmathys/orgcanvas/pkg/apperr"
	"github.com/kmathys/orgcanvas/pkg/cache"
	"github.com/kmathys/orgcanvas/pkg/chart"
	"github.com/kmathys/orgcanvas/pkg/editor"
	"github.com/kmathys/orgcanvas/pkg/geom"
	"github.com/kmathys/orgcanvas/pkg/render"
	"github.com/kmathys/orgcanvas/pkg/store"
)

// Server wires an editor and a chart store into an HTTP API.
type Server struct {
	logger   *log.Logger
	store    store.Store
	renderer *render.Renderer

	// mu serializes access to the editor, which expects a single event loop.
	mu sync.Mutex
	ed *editor.Editor
}

// New creates a server around an editor and a store. The store may be nil,
// in which case the /charts endpoints report an error. Rendered SVGs are
// cached in process, keyed by chart content.
func New(ed *editor.Editor, st store.Store, logger *log.Logger) *Server {
	return &Server{
		ed:       ed,
		store:    st,
		logger:   logger,
		renderer: render.NewRenderer(cache.NewMemoryCache(), time.Hour),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Get("/chart", s.handleGetChart)
	r.Put("/chart", s.handlePutChart)
	r.Get("/chart.svg", s.handleRenderSVG)
	r.Post("/layout", s.handleLayout)
	r.Get("/nodes", s.handleNodes)

	r.Post("/drag/start", s.handleDrag((*editor.Editor).DragStart))
	r.Post("/drag/move", s.handleDrag((*editor.Editor).DragMove))
	r.Post("/drag/end", s.handleDrag((*editor.Editor).DragEnd))

	r.Post("/view/pan", s.handlePan)
	r.Post("/view/zoom", s.handleZoom)
	r.Post("/view/resize", s.handleResize)

	r.Get("/charts", s.handleListCharts)
	r.Get("/charts/{name}", s.handleLoadChart)
	r.Post("/charts/{name}", s.handleSaveChart)
	r.Delete("/charts/{name}", s.handleDeleteChart)

	return r
}

// =============================================================================
// Request / Response Types
// =============================================================================

// pointerEvent is the body of all /drag endpoints: a node and a screen
// position.
type pointerEvent struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// dragState reports the gesture state after an event was applied.
type dragState struct {
	Dragging     string `json:"dragging,omitempty"`
	Target       string `json:"target,omitempty"`
	OverRootBand bool   `json:"over_root_band"`
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type zoomRequest struct {
	Factor float64 `json:"factor"`
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetChart(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	doc := s.ed.Chart()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePutChart(w http.ResponseWriter, r *http.Request) {
	var doc chart.Chart
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.writeError(w, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode chart"))
		return
	}

	s.mu.Lock()
	err := s.ed.Load(doc)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleLayout(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.ed.ApplyLayout()
	doc := s.ed.Chart()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleNodes(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	nodes := s.ed.ScreenNodes()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc := s.ed.Chart()
	s.mu.Unlock()

	dot := render.ToDOT(doc, render.Options{})
	svg, err := s.renderer.SVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, apperr.Wrap(apperr.ErrCodeInternal, err, "render chart"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// handleDrag adapts one editor pointer method into a handler.
func (s *Server) handleDrag(apply func(*editor.Editor, string, geom.Point)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ev pointerEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			s.writeError(w, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode pointer event"))
			return
		}

		s.mu.Lock()
		apply(s.ed, ev.ID, geom.Point{X: ev.X, Y: ev.Y})
		state := dragState{OverRootBand: s.ed.OverRootBand()}
		if id, ok := s.ed.Dragging(); ok {
			state.Dragging = id
		}
		if id, ok := s.ed.Target(); ok {
			state.Target = id
		}
		s.mu.Unlock()

		s.writeJSON(w, http.StatusOK, state)
	}
}

func (s *Server) handlePan(w http.ResponseWriter, r *http.Request) {
	var req panRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode pan"))
		return
	}
	s.mu.Lock()
	s.ed.Pan(req.DX, req.DY)
	view := s.ed.Canvas().Viewport()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req zoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode zoom"))
		return
	}
	s.mu.Lock()
	s.ed.Zoom(req.Factor)
	view := s.ed.Canvas().Viewport()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode resize"))
		return
	}
	s.mu.Lock()
	s.ed.Resize(req.Width, req.Height)
	view := s.ed.Canvas().Viewport()
	s.mu.Unlock()
	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, apperr.New(apperr.ErrCodeUnsupported, "no store configured"))
		return
	}
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleLoadChart(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, apperr.New(apperr.ErrCodeUnsupported, "no store configured"))
		return
	}
	name := chi.URLParam(r, "name")

	doc, err := s.store.Load(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	err = s.ed.Load(doc)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSaveChart(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, apperr.New(apperr.ErrCodeUnsupported, "no store configured"))
		return
	}
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	s.ed.SetName(name)
	doc := s.ed.Chart()
	s.mu.Unlock()

	if err := s.store.Save(r.Context(), name, doc); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, apperr.New(apperr.ErrCodeUnsupported, "no store configured"))
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Response Helpers
// =============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// writeError maps an error to a status code via its apperr code.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apperr.GetCode(err)
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		if code == "" {
			code = apperr.ErrCodeChartNotFound
		}
	case code == apperr.ErrCodeInvalidInput,
		code == apperr.ErrCodeInvalidEdge,
		code == apperr.ErrCodeInvalidChart,
		code == apperr.ErrCodeInvalidConfig,
		code == apperr.ErrCodeCycle:
		status = http.StatusBadRequest
	case code == apperr.ErrCodeNodeNotFound, code == apperr.ErrCodeChartNotFound:
		status = http.StatusNotFound
	case code == apperr.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	}
	if code == "" {
		code = apperr.ErrCodeInternal
	}

	s.logger.Warn("request failed", "status", status, "err", err)
	s.writeJSON(w, status, errorResponse{Code: string(code), Message: apperr.UserMessage(err)})
}
