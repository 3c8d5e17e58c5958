package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/challenge-tracker/internal/tracker"
)

// registerResponse is returned by POST /api/register.
type registerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

// readFields decodes a JSON object body.
//
// Task rules report missing or mistyped fields themselves, after the
// identity and active-task checks, so an empty or malformed body decodes to
// an empty map instead of failing here. Only an oversized body is an error.
// Numbers decode as json.Number.
func readFields(r *http.Request) (map[string]any, error) {
	fields := map[string]any{}
	if r.Body == nil {
		return fields, nil
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return map[string]any{}, nil
	}
	if fields == nil {
		// body was JSON null
		fields = map[string]any{}
	}
	return fields, nil
}

// stringField returns fields[key] when it is a JSON string, else "".
func stringField(fields map[string]any, key string) string {
	v, _ := fields[key].(string) //nolint:errcheck // non-strings are treated as missing
	return v
}

// readBody wraps readFields and answers 413 on an oversized body.
// It reports false when a response has been written.
func readBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	fields, err := readFields(r)
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	return fields, true
}

// playerID extracts the {id} URL parameter.
func playerID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// writeResult writes a task outcome.
func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, res tracker.Result, err error) {
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleRegister creates a participant from {"name": "..."}.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	fields, ok := readBody(w, r)
	if !ok {
		return
	}

	view, err := s.tracker.Register(stringField(fields, "name"))
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{
		ID:      view.ID,
		Name:    view.Name,
		Message: fmt.Sprintf("Welcome %s! Your player ID is: %s", view.Name, view.ID),
	})
}

// handleTask1 is the plain GET.
func (s *Server) handleTask1(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.HelloWorld(playerID(r))
	s.writeResult(w, r, res, err)
}

// handleTask2 is the Basic Auth GET.
func (s *Server) handleTask2(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.Authenticated(playerID(r), r.Header.Get("Authorization"))
	s.writeResult(w, r, res, err)
}

// handleTask3 is the authenticated POST with {"message": "..."}.
func (s *Server) handleTask3(w http.ResponseWriter, r *http.Request) {
	fields, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := s.tracker.SaySomething(playerID(r), r.Header.Get("Authorization"), stringField(fields, "message"))
	s.writeResult(w, r, res, err)
}

// handleTask4 counts one speed-round POST. The body is ignored.
func (s *Server) handleTask4(w http.ResponseWriter, r *http.Request) {
	res, err := s.tracker.SpeedRound(playerID(r))
	s.writeResult(w, r, res, err)
}

// handleTask5Key issues a fresh secret key.
func (s *Server) handleTask5Key(w http.ResponseWriter, r *http.Request) {
	grant, err := s.tracker.IssueKey(playerID(r))
	if err != nil {
		s.writeTrackerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

// handleTask5 checks {"key": "..."} against the issued key.
func (s *Server) handleTask5(w http.ResponseWriter, r *http.Request) {
	fields, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := s.tracker.VerifyKey(playerID(r), stringField(fields, "key"))
	s.writeResult(w, r, res, err)
}

// handleTask6 accepts {"image": "..."}.
func (s *Server) handleTask6(w http.ResponseWriter, r *http.Request) {
	fields, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := s.tracker.SubmitImage(playerID(r), stringField(fields, "image"))
	s.writeResult(w, r, res, err)
}
