package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/pyfence-ai/pyfence/internal/activation"
	"github.com/pyfence-ai/pyfence/internal/detector"
)

type detectTextRequest struct {
	Text     string `json:"text"`
	StartTag string `json:"start_tag,omitempty"`
	EndTag   string `json:"end_tag,omitempty"`
}

type detectJSONRequest struct {
	Document string `json:"document"`
	StartTag string `json:"start_tag,omitempty"`
	EndTag   string `json:"end_tag,omitempty"`
	Parallel *bool  `json:"parallel,omitempty"`
}

type hitPayload struct {
	RuleID   string `json:"rule_id"`
	Category string `json:"category"`
	Source   string `json:"source"`
	Evidence string `json:"evidence,omitempty"`
}

type detectResponse struct {
	Output     string       `json:"output"`
	Confidence float64      `json:"confidence"`
	Wrapped    bool         `json:"wrapped"`
	Changed    bool         `json:"changed"`
	Reverted   bool         `json:"reverted"`
	Dangerous  bool         `json:"dangerous"`
	Decision   string       `json:"decision"`
	Hits       []hitPayload `json:"hits,omitempty"`
}

func (s *Server) handleDetectText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "invalid_request_error")
		return
	}
	if !s.authorize(w, r) {
		return
	}

	var reqBody detectTextRequest
	if !s.decodeBody(w, r, &reqBody) {
		return
	}

	started := time.Now()
	res, err := s.det.DetectText(r.Context(), reqBody.Text, reqBody.StartTag, reqBody.EndTag)
	if err != nil {
		s.writeDetectError(w, err)
		return
	}
	s.emitAudit(r.Context(), activation.ModeText, res, len(reqBody.Text), started)
	writeJSON(w, http.StatusOK, buildDetectResponse(res))
}

func (s *Server) handleDetectJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "invalid_request_error")
		return
	}
	if !s.authorize(w, r) {
		return
	}

	var reqBody detectJSONRequest
	if !s.decodeBody(w, r, &reqBody) {
		return
	}

	parallel := s.cfg.Detector.Parallel
	if reqBody.Parallel != nil {
		parallel = *reqBody.Parallel
	}

	started := time.Now()
	res, err := s.det.DetectJSON(r.Context(), reqBody.Document, reqBody.StartTag, reqBody.EndTag, parallel)
	if err != nil {
		s.writeDetectError(w, err)
		return
	}
	s.emitAudit(r.Context(), activation.ModeJSON, res, len(reqBody.Document), started)
	writeJSON(w, http.StatusOK, buildDetectResponse(res))
}

// decodeBody reads a size-limited JSON request body. A body over the limit
// comes back as 413, anything else undecodable as 400.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	limit := s.cfg.Server.MaxRequestBodyBytes
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "invalid_request_error")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body", "invalid_request_error")
		return false
	}
	return true
}

func (s *Server) writeDetectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, detector.ErrInputTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "input exceeds maximum allowed size", "invalid_request_error")
	case errors.Is(err, detector.ErrMalformedJSON):
		writeError(w, http.StatusBadRequest, "document is not valid JSON", "invalid_request_error")
	default:
		writeError(w, http.StatusInternalServerError, "detection failed", "internal_error")
	}
}

func (s *Server) emitAudit(ctx context.Context, mode string, res *detector.Result, inputBytes int, started time.Time) {
	if s.emitter == nil {
		return
	}
	ev := activation.BuildEvent(activation.BuildParams{
		Result:       res,
		Mode:         mode,
		InputBytes:   inputBytes,
		LatencyMs:    float64(time.Since(started).Microseconds()) / 1000.0,
		GuardStatus:  s.guardStatus(),
		IncludeGuard: s.guard != nil,
	})
	s.emitter.Emit(ctx, ev)
}

func buildDetectResponse(res *detector.Result) detectResponse {
	out := detectResponse{
		Output:     res.Output,
		Confidence: res.Confidence,
		Wrapped:    res.Wrapped,
		Changed:    res.Changed,
		Reverted:   res.Reverted,
		Dangerous:  res.Dangerous,
		Decision:   res.Decision(),
	}
	for _, h := range res.Hits {
		out.Hits = append(out.Hits, hitPayload{
			RuleID:   h.RuleID,
			Category: h.Category,
			Source:   h.Source,
			Evidence: h.Evidence,
		})
	}
	return out
}
