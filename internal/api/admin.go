package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/challenge-tracker/internal/audit"
	"github.com/nerrad567/challenge-tracker/internal/task"
	"github.com/nerrad567/challenge-tracker/internal/tracker"
)

// messageResponse is the body of admin replies that carry only a message.
type messageResponse struct {
	Message string `json:"message"`
}

// handleSetTask switches the active task from {"task": n}.
// n must be an integral JSON number; strings and fractions are rejected.
func (s *Server) handleSetTask(w http.ResponseWriter, r *http.Request) {
	fields, ok := readBody(w, r)
	if !ok {
		return
	}

	num, isNumber := fields["task"].(json.Number)
	n, err := num.Int64()
	if !isNumber || err != nil || n < int64(task.First) || n > int64(task.Last) {
		s.writeTrackerError(w, r, fmt.Errorf("%w: task must be %d-%d", tracker.ErrInvalidInput, task.First, task.Last))
		return
	}

	id := task.ID(n)
	if err := s.tracker.SetActiveTask(id); err != nil {
		s.writeTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"currentTask": id})
}

// handleReset clears all progress.
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.tracker.Reset()
	writeJSON(w, http.StatusOK, messageResponse{Message: "All progress reset"})
}

// handleRemovePlayer deletes one participant.
func (s *Server) handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Remove(chi.URLParam(r, "id")); err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Player removed"})
}

// handleListAudit returns a page of the audit trail, newest first.
//
// Query parameters: kind, participant, task, limit, offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusNotFound, "audit trail is disabled")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Kind:          q.Get("kind"),
		ParticipantID: q.Get("participant"),
	}

	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"task", &filter.Task},
		{"limit", &filter.Limit},
		{"offset", &filter.Offset},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, p.name+" must be a non-negative integer")
			return
		}
		*p.dst = v
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit entries", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list audit entries")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
