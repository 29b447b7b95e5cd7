// Package api serves the engine state over HTTP and streams engine events
// over a websocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/logging"
	"github.com/1broseidon/strata/internal/treeviz"
	"github.com/1broseidon/strata/internal/window"
	"github.com/1broseidon/strata/internal/workspace"
)

type Server struct {
	server *http.Server
	engine *engine.Engine
	logger *slog.Logger
}

// WindowItem is a window plus the workspace holding it.
type WindowItem struct {
	engine.WindowInfo
	Workspace int `json:"workspace"`
}

type StatusItem struct {
	Current     int    `json:"current"`
	Workspaces  int    `json:"workspaces"`
	WindowCount int    `json:"window_count"`
	OutputCount int    `json:"output_count"`
	Focus       string `json:"focus"`
}

type moveRequest struct {
	Workspace *int `json:"workspace"`
}

func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	s.logger.Debug("api response", "status", status, "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	e := json.NewEncoder(w)
	e.Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.jsonResponse(w, r, status, map[string]interface{}{"error": err.Error()})
}

// NewServer builds the router for eng. Call Run to start listening.
func NewServer(eng *engine.Engine, listenAddr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{engine: eng, logger: logger}

	router := mux.NewRouter()
	s.server = &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	router.HandleFunc("/status", s.handleStatus).Methods("GET")
	router.HandleFunc("/workspaces/", s.handleWorkspaces).Methods("GET")
	router.HandleFunc("/workspaces/{id:[0-9]+}", s.handleWorkspace).Methods("GET")
	router.HandleFunc("/workspaces/{id:[0-9]+}/activate", s.handleActivate).Methods("POST")
	router.HandleFunc("/workspaces/{id:[0-9]+}/tree.dot", s.handleTreeDOT).Methods("GET")
	router.HandleFunc("/workspaces/{id:[0-9]+}/tree.svg", s.handleTreeSVG).Methods("GET")
	router.HandleFunc("/windows/", s.handleWindows).Methods("GET")
	router.HandleFunc("/windows/{id:[0-9]+}/move", s.handleMove).Methods("POST")
	router.HandleFunc("/windows/{id:[0-9]+}", s.handleDelete).Methods("DELETE")
	router.HandleFunc("/events", s.handleEvents).Methods("GET")
	router.PathPrefix("/").Handler(http.NotFoundHandler())

	return s
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", "http://"+s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func pathInt(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, false
	}
	return id, true
}

func (s *Server) workspaceFromPath(w http.ResponseWriter, r *http.Request) (engine.WorkspaceInfo, bool) {
	id, ok := pathInt(r)
	if !ok {
		s.jsonResponse(w, r, http.StatusNotFound, nil)
		return engine.WorkspaceInfo{}, false
	}
	ws, ok := s.engine.Snapshot().Workspace(id)
	if !ok {
		s.errorResponse(w, r, http.StatusNotFound, workspace.ErrInvalidWorkspace)
		return engine.WorkspaceInfo{}, false
	}
	return ws, true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	s.jsonResponse(w, r, http.StatusOK, map[string]interface{}{
		"item": StatusItem{
			Current:     snap.Current,
			Workspaces:  len(snap.Workspaces),
			WindowCount: snap.WindowCount(),
			OutputCount: len(snap.Outputs),
			Focus:       snap.Focus,
		},
	})
}

func (s *Server) handleWorkspaces(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, r, http.StatusOK, map[string]interface{}{
		"items": s.engine.Snapshot().Workspaces,
	})
}

func (s *Server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspaceFromPath(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]interface{}{"item": ws})
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r)
	if !ok {
		s.jsonResponse(w, r, http.StatusNotFound, nil)
		return
	}
	if err := s.engine.Activate(id); err != nil {
		s.errorResponse(w, r, http.StatusNotFound, err)
		return
	}
	ws, _ := s.engine.Snapshot().Workspace(id)
	s.jsonResponse(w, r, http.StatusOK, map[string]interface{}{"item": ws})
}

func (s *Server) handleWindows(w http.ResponseWriter, r *http.Request) {
	items := []WindowItem{}
	for _, ws := range s.engine.Snapshot().Workspaces {
		for _, win := range ws.Windows {
			items = append(items, WindowItem{WindowInfo: win, Workspace: ws.Index})
		}
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r)
	if !ok {
		s.jsonResponse(w, r, http.StatusNotFound, nil)
		return
	}
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Workspace == nil {
		s.errorResponse(w, r, http.StatusUnprocessableEntity, errors.New(`body must be {"workspace": <index>}`))
		return
	}

	err := s.engine.MoveWindow(window.ID(id), *req.Workspace)
	switch {
	case errors.Is(err, workspace.ErrUnknownWindow):
		s.errorResponse(w, r, http.StatusNotFound, err)
		return
	case err != nil:
		s.errorResponse(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]interface{}{
		"item": map[string]int{"window": id, "workspace": *req.Workspace},
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(r)
	if !ok {
		s.jsonResponse(w, r, http.StatusNotFound, nil)
		return
	}
	if err := s.engine.Unmap(window.ID(id)); err != nil {
		s.errorResponse(w, r, http.StatusNotFound, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, nil)
}

func (s *Server) treeDOT(ws engine.WorkspaceInfo) string {
	snap := s.engine.Snapshot()
	return treeviz.ToDOT(ws, treeviz.Options{
		Focused:    snap.Focused,
		FocusColor: s.engine.Config().Decorations.Border.ActiveColor,
		Detailed:   true,
	})
}

func (s *Server) handleTreeDOT(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspaceFromPath(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(s.treeDOT(ws)))
}

func (s *Server) handleTreeSVG(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspaceFromPath(w, r)
	if !ok {
		return
	}
	svg, err := treeviz.RenderSVG(r.Context(), s.treeDOT(ws))
	if err != nil {
		s.errorResponse(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}
