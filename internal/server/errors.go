package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/abhisek/dataready/internal/interview"
)

var (
	// errBadRequest marks malformed request bodies.
	errBadRequest = errors.New("bad request")
	// errSpeechUnavailable marks audio requests on a server without a
	// speech backend.
	errSpeechUnavailable = errors.New("speech backend unavailable")
)

// HTTPStatus maps domain errors onto status codes.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, interview.ErrUnknownSession):
		return http.StatusNotFound
	case errors.Is(err, interview.ErrInvalidTransition),
		errors.Is(err, interview.ErrNoActiveQuestion),
		errors.Is(err, interview.ErrInterviewNotComplete):
		return http.StatusConflict
	case errors.Is(err, interview.ErrInvalidSetup), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errSpeechUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errorKind names the error class in response bodies.
func errorKind(err error) string {
	switch {
	case errors.Is(err, interview.ErrUnknownSession):
		return "unknown_session"
	case errors.Is(err, interview.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, interview.ErrNoActiveQuestion):
		return "no_active_question"
	case errors.Is(err, interview.ErrInterviewNotComplete):
		return "interview_not_complete"
	case errors.Is(err, interview.ErrInvalidSetup):
		return "invalid_setup"
	case errors.Is(err, errBadRequest):
		return "bad_request"
	case errors.Is(err, errSpeechUnavailable):
		return "speech_unavailable"
	default:
		return "internal"
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", zap.Error(err))
		msg = http.StatusText(status)
	} else {
		s.log.Debug(r.Context(), "request rejected", zap.Error(err), zap.Int("status", status))
	}
	writeJSON(w, status, errorBody{Error: msg, Kind: errorKind(err)})
}
