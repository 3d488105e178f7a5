// Package server exposes the detector over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pyfence-ai/pyfence/internal/activation"
	"github.com/pyfence-ai/pyfence/internal/auth"
	"github.com/pyfence-ai/pyfence/internal/config"
	"github.com/pyfence-ai/pyfence/internal/detector"
	"github.com/pyfence-ai/pyfence/internal/guard"
)

// Server wraps the HTTP components: mux, detector, guard and audit emitter.
type Server struct {
	mux     *http.ServeMux
	cfg     *config.Config
	auth    *auth.Auth
	det     *detector.Detector
	guard   guard.Engine
	emitter *activation.Emitter
	started time.Time
}

// New creates a server with all routes registered.
func New(cfg *config.Config, authz *auth.Auth, det *detector.Detector, g guard.Engine, em *activation.Emitter) *Server {
	mux := http.NewServeMux()
	s := &Server{
		mux:     mux,
		cfg:     cfg,
		auth:    authz,
		det:     det,
		guard:   g,
		emitter: em,
		started: time.Now(),
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/detect/text", s.handleDetectText)
	mux.HandleFunc("/v1/detect/json", s.handleDetectJSON)
	mux.HandleFunc("/v1/status", s.handleStatus)

	return s
}

// Start runs the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	log.Printf("pyfence listening on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

// authorize checks the request's API key when auth is enabled.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	if !s.auth.Enabled() {
		return true
	}
	key := r.Header.Get("X-API-Key")
	if key == "" {
		key, _ = parseBearerToken(r.Header.Get("Authorization"))
	}
	if !s.auth.Allow(key) {
		writeError(w, http.StatusUnauthorized, "Invalid or missing API key", "authentication_error")
		return false
	}
	return true
}

// parseBearerToken extracts the token from an Authorization: Bearer header.
func parseBearerToken(h string) (string, bool) {
	if h == "" {
		return "", false
	}
	parts := strings.Fields(h)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// writeError writes a JSON error envelope.
func writeError(w http.ResponseWriter, status int, message, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{Message: message, Type: typ},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}
