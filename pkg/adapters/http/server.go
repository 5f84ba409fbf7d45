// Package http exposes a machine over a small JSON API. The adapter is
// stateless like the machine itself: callers send the current state with
// every request and keep the one that comes back.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/detentlabs/detent/internal/presentation/graph"
	"github.com/detentlabs/detent/pkg/fsm"
)

// Engine defines the machine surface the adapter serves. *detent.Machine
// instantiated over string states and events satisfies it.
type Engine interface {
	FireWithResult(state, event string, ctx map[string]any) fsm.Result[string]
	CanFire(state, event string, ctx map[string]any) bool
	Info() fsm.Info[string, string]
	Validate() fsm.ValidationResult
}

// Server holds the handlers for one machine.
type Server struct {
	Engine  Engine
	Version string
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, version string) http.Handler {
	server := &Server{Engine: engine, Version: version}

	r := chi.NewRouter()
	r.Post("/fire", server.Fire)
	r.Post("/can-fire", server.CanFire)
	r.Get("/info", server.GetInfo)
	r.Get("/validate", server.GetValidation)
	r.Get("/graph", server.GetGraph)
	r.Get("/healthz", server.GetHealth)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FireRequest is the body of POST /fire and POST /can-fire.
type FireRequest struct {
	State   string         `json:"state"`
	Event   string         `json:"event"`
	Context map[string]any `json:"context,omitempty"`
}

// Fire handles the POST /fire request.
func (s *Server) Fire(w http.ResponseWriter, r *http.Request) {
	var body FireRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("Fire: Invalid request body", "error", err)
		return
	}
	if body.State == "" || body.Event == "" {
		http.Error(w, "state and event are required", http.StatusBadRequest)
		return
	}

	res := s.Engine.FireWithResult(body.State, body.Event, body.Context)

	writeJSON(w, res)
}

// CanFire handles the POST /can-fire request.
func (s *Server) CanFire(w http.ResponseWriter, r *http.Request) {
	var body FireRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn("CanFire: Invalid request body", "error", err)
		return
	}
	if body.State == "" || body.Event == "" {
		http.Error(w, "state and event are required", http.StatusBadRequest)
		return
	}

	ok := s.Engine.CanFire(body.State, body.Event, body.Context)

	writeJSON(w, map[string]bool{"can_fire": ok})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.Info())
}

// GetValidation handles the GET /validate request.
func (s *Server) GetValidation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Engine.Validate())
}

// GetGraph handles the GET /graph request. The format query parameter
// selects mermaid (default) or plantuml output.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	info := s.Engine.Info()

	var out string
	switch format := r.URL.Query().Get("format"); format {
	case "", "mermaid":
		out = graph.Mermaid(info, nil)
	case "plantuml":
		out = graph.PlantUML(info)
	default:
		http.Error(w, "Unknown format: "+format, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(out))
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "version": s.Version})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}
