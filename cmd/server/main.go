package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/draftboard/draftboard/backend-go/internal/config"
	"github.com/draftboard/draftboard/backend-go/internal/diagram"
	"github.com/draftboard/draftboard/backend-go/internal/editor"
	mw "github.com/draftboard/draftboard/backend-go/internal/middleware"
	"github.com/draftboard/draftboard/backend-go/internal/project"
	"github.com/draftboard/draftboard/backend-go/internal/render"
	"github.com/draftboard/draftboard/backend-go/internal/session"
	"github.com/draftboard/draftboard/backend-go/internal/typeid"
	"github.com/draftboard/draftboard/backend-go/internal/view"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	store, err := project.NewFileStore(cfg.DataDir)
	if err != nil {
		slog.Error("open project store", "error", err)
		os.Exit(1)
	}

	renderer, err := render.New(cfg.CanvasWidth, cfg.CanvasHeight)
	if err != nil {
		slog.Error("init renderer", "error", err)
		os.Exit(1)
	}

	origins := strings.Split(cfg.AllowedOrigins, ",")
	srv := &server{cfg: cfg, store: store, renderer: renderer, origins: origins}

	r := mux.NewRouter()
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(origins))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/projects", srv.listProjects).Methods("GET")
	api.HandleFunc("/projects", srv.createProject).Methods("POST", "OPTIONS")
	api.HandleFunc("/projects/{projectId}", srv.getProject).Methods("GET")
	api.HandleFunc("/projects/{projectId}", srv.saveProject).Methods("PUT", "OPTIONS")
	api.HandleFunc("/projects/{projectId}", srv.deleteProject).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/projects/{projectId}/export.png", srv.exportPNG).Methods("GET")

	r.HandleFunc("/ws/session", srv.handleSession)
	r.HandleFunc("/ws/session/{projectId}", srv.handleSession)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

type server struct {
	cfg      *config.Config
	store    *project.FileStore
	renderer *render.Renderer
	origins  []string
}

func (s *server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.List(r.Context())
	if err != nil {
		slog.Error("list projects", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if projects == nil {
		projects = []project.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *server) createProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	p, err := s.store.Create(r.Context(), req.Name)
	if err != nil {
		slog.Error("create project", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *server) getProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProject(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) saveProject(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	var req struct {
		Name    string          `json:"name"`
		Diagram json.RawMessage `json:"diagram"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Name != "" {
		p.Name = req.Name
	}
	if len(req.Diagram) > 0 {
		d, err := diagram.Parse(req.Diagram)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.Diagram = d
	}

	if err := s.store.Save(r.Context(), p); err != nil {
		slog.Error("save project", "error", err, "project", p.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["projectId"]
	if err := s.store.Delete(r.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, project.ErrNotFound) || errors.Is(err, project.ErrInvalidID) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) exportPNG(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProject(w, r)
	if !ok {
		return
	}

	data, err := s.renderer.Snapshot(p.Diagram)
	if err != nil {
		slog.Error("render snapshot", "error", err, "project", p.ID)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, p.ID))
	w.Write(data)
}

func (s *server) loadProject(w http.ResponseWriter, r *http.Request) (*project.Project, bool) {
	id := mux.Vars(r)["projectId"]
	p, err := s.store.Get(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, project.ErrNotFound) || errors.Is(err, project.ErrInvalidID) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return nil, false
	}
	return p, true
}

// handleSession upgrades the connection and runs one editor session on it.
// With a project id in the path the session starts from that project's
// diagram; edits are not written back automatically, the client saves via the
// REST API.
func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	ed := editor.New(view.New(float64(s.cfg.CanvasWidth), float64(s.cfg.CanvasHeight)), typeid.Generator{}, nil)
	ed.ConfigureHistory(s.cfg.HistoryLimit)
	ed.MirrorClipboard(s.cfg.ClipboardMirror)

	if id := mux.Vars(r)["projectId"]; id != "" {
		p, err := s.store.Get(r.Context(), id)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, project.ErrNotFound) || errors.Is(err, project.ErrInvalidID) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}
		ed.Attach(p.Diagram)
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	sess := session.New("sess-"+uuid.New().String()[:8], conn, ed)
	slog.Info("session started", "session", sess.ID)

	ctx := r.Context()
	go sess.WritePump(ctx)
	sess.ReadPump(ctx)
	slog.Info("session closed", "session", sess.ID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
