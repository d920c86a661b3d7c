package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/poiesic/trialmatch/core"
	"github.com/poiesic/trialmatch/ingestion"
	"github.com/poiesic/trialmatch/matching"
	"github.com/poiesic/trialmatch/storage"
	"github.com/poiesic/trialmatch/trials"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // header already committed
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, errorBody{Error: errorDetail{Message: message, Status: status}})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrPatientNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNoTrialsAvailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrInvalidMatchMode),
		errors.Is(err, matching.ErrInvalidNumTrials),
		errors.Is(err, trials.ErrInvalidTrialCount),
		errors.Is(err, ingestion.ErrInvalidBundle):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// handleError writes err with its mapped status, logging server-side failures.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		"path", r.URL.Path,
		"status", status,
		"err", err)
	writeError(w, err.Error(), status)
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
