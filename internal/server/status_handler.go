package server

import (
	"net/http"
	"time"

	"github.com/pyfence-ai/pyfence/internal/guard"
)

type guardStatusPayload struct {
	Enabled bool   `json:"enabled"`
	Model   string `json:"model,omitempty"`
	Error   string `json:"error,omitempty"`
}

type activationStatusPayload struct {
	Enqueued uint64 `json:"enqueued"`
	Dropped  uint64 `json:"dropped"`
}

type statusResponse struct {
	Status        string                   `json:"status"`
	UptimeSeconds float64                  `json:"uptime_seconds"`
	Threshold     float64                  `json:"threshold"`
	Guard         guardStatusPayload       `json:"guard"`
	Activation    *activationStatusPayload `json:"activation,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "invalid_request_error")
		return
	}
	if !s.authorize(w, r) {
		return
	}

	gs := s.guardStatus()
	resp := statusResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
		Threshold:     s.cfg.Detector.Threshold,
		Guard: guardStatusPayload{
			Enabled: gs.Enabled,
			Model:   gs.Model,
			Error:   gs.Err,
		},
	}
	if s.emitter != nil {
		m := s.emitter.MetricsSnapshot()
		resp.Activation = &activationStatusPayload{
			Enqueued: m.Enqueued(),
			Dropped:  m.Dropped(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) guardStatus() guard.Status {
	if s.guard == nil {
		return guard.Status{}
	}
	return s.guard.Status()
}
