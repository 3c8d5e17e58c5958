package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/challenge-tracker/internal/tracker"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes {"error": message} with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps tracker errors to HTTP status codes. Anything
// unrecognised is a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tracker.ErrNotRegistered), errors.Is(err, tracker.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tracker.ErrTaskNotActive):
		return http.StatusForbidden
	case errors.Is(err, tracker.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, tracker.ErrValidation),
		errors.Is(err, tracker.ErrPrecondition),
		errors.Is(err, tracker.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeTrackerError writes err using statusFor. Server faults are logged and
// answered with a generic message.
func (s *Server) writeTrackerError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", r.Context().Value(ctxKeyRequestID),
		)
		writeError(w, status, "internal server error")
		return
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Basic realm="challenge"`)
	}
	writeError(w, status, err.Error())
}
