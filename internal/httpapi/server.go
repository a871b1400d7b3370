package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"servicepulse/internal/httpapi/middleware"
	"servicepulse/internal/repo"
	"servicepulse/internal/scheduler"
)

// Server exposes the monitor's thin operational surface: health, the manual
// cycle trigger, and the latest-status read the dashboards poll as a
// fallback when pub/sub is unavailable.
type Server struct {
	Logger       *zap.Logger
	Orchestrator *scheduler.Orchestrator
	Statuses     repo.StatusStore
	TriggerRPM   int
	TriggerBurst int
}

func NewServer(l *zap.Logger, orch *scheduler.Orchestrator, statuses repo.StatusStore, triggerRPM, triggerBurst int) *Server {
	return &Server{
		Logger:       l,
		Orchestrator: orch,
		Statuses:     statuses,
		TriggerRPM:   triggerRPM,
		TriggerBurst: triggerBurst,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/status", s.handleLatestStatuses)
	r.Get("/api/cycle", s.handleCycleState)
	r.With(middleware.RateLimit(s.TriggerRPM, s.TriggerBurst)).
		Post("/api/cycle/run", s.handleTriggerCycle)

	return r
}

// handleTriggerCycle runs one cycle synchronously. A trigger while a cycle
// is in flight is rejected with 409, not queued.
func (s *Server) handleTriggerCycle(w http.ResponseWriter, r *http.Request) {
	sum, err := s.Orchestrator.RunCycle(r.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrCycleRunning) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		s.Logger.Error("manual_cycle_failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleCycleState(w http.ResponseWriter, r *http.Request) {
	state := "idle"
	if s.Orchestrator.Running() {
		state = "running"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state": state,
		"last":  s.Orchestrator.LastSummary(),
	})
}

func (s *Server) handleLatestStatuses(w http.ResponseWriter, r *http.Request) {
	rows, err := s.Statuses.LatestStatuses(r.Context())
	if err != nil {
		s.Logger.Warn("latest_statuses_failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "status read failed"})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
