package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/orchestrator"
	"github.com/abhisek/dataready/internal/store"
)

// decode reads a JSON body into v. An empty body leaves v untouched when
// optional is set.
func decode(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionView struct {
	SessionID  string          `json:"session_id"`
	State      interview.State `json:"state"`
	Difficulty int             `json:"difficulty"`
	Skills     []string        `json:"skills"`
	Setup      interview.Setup `json:"setup"`
	CreatedAt  time.Time       `json:"created_at"`
}

func viewOf(sess *interview.Session) sessionView {
	return sessionView{
		SessionID:  sess.ID,
		State:      sess.State,
		Difficulty: sess.Difficulty,
		Skills:     sess.SkillIDs,
		Setup:      sess.Setup,
		CreatedAt:  sess.CreatedAt,
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var setup interview.Setup
	if err := decode(w, r, &setup, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.interviews.CreateSession(r.Context(), setup)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	opts := store.ListOpts{State: interview.State(r.URL.Query().Get("state"))}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, fmt.Errorf("%w: invalid limit %q", errBadRequest, v))
			return
		}
		opts.Limit = n
	}
	list, err := s.interviews.ListSessions(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.SessionSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.interviews.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	a, err := s.interviews.StartInterview(r.Context(), chi.URLParam(r, "id"))
	s.writeAction(w, r, a, err)
}

type respondRequest struct {
	Transcript  string `json:"transcript"`
	AudioBase64 string `json:"audio_base64"`
	AudioFormat string `json:"audio_format"`
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decode(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := orchestrator.Response{Transcript: req.Transcript, AudioFormat: req.AudioFormat}
	if req.AudioBase64 != "" {
		audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: audio_base64: %v", errBadRequest, err))
			return
		}
		resp.Audio = audio
	}
	if resp.Transcript == "" && len(resp.Audio) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: transcript or audio_base64 is required", errBadRequest))
		return
	}

	a, err := s.interviews.SubmitResponse(r.Context(), chi.URLParam(r, "id"), resp)
	s.writeAction(w, r, a, err)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	sess, err := s.interviews.PauseInterview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sess.ID, "state": sess.State})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	a, err := s.interviews.ResumeInterview(r.Context(), chi.URLParam(r, "id"))
	s.writeAction(w, r, a, err)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	sess, err := s.interviews.CancelInterview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sess.ID, "state": sess.State})
}

type endRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	if err := decode(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.interviews.EndInterview(r.Context(), chi.URLParam(r, "id"), req.Reason)
	s.writeAction(w, r, a, err)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.interviews.GenerateReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	rep, err := s.interviews.GenerateReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep.Summarize())
}

type questionDetail struct {
	Number             int                 `json:"number"`
	QuestionID         string              `json:"question_id"`
	QuestionText       string              `json:"question_text"`
	IsFollowup         bool                `json:"is_followup"`
	ResponseTranscript string              `json:"response_transcript"`
	AskedAt            time.Time           `json:"asked_at"`
	Scores             *interview.Scores   `json:"scores,omitempty"`
	Feedback           *interview.Feedback `json:"feedback,omitempty"`
}

type questionDetails struct {
	SessionID      string           `json:"session_id"`
	TotalQuestions int              `json:"total_questions"`
	Questions      []questionDetail `json:"questions"`
}

// handleQuestionDetails lists every delivered question with its scores.
// Unlike the report it does not require a finished interview.
func (s *Server) handleQuestionDetails(w http.ResponseWriter, r *http.Request) {
	sess, err := s.interviews.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := questionDetails{SessionID: sess.ID, Questions: make([]questionDetail, 0, len(sess.Questions))}
	for i, q := range sess.Questions {
		d := questionDetail{
			Number:             i + 1,
			QuestionID:         q.QuestionID,
			QuestionText:       q.QuestionText,
			IsFollowup:         q.IsFollowup,
			ResponseTranscript: q.ResponseTranscript,
			AskedAt:            q.AskedAt,
		}
		if ev := q.Evaluation; ev != nil {
			d.Scores = &ev.Scores
			d.Feedback = &ev.Feedback
		}
		out.Questions = append(out.Questions, d)
	}
	out.TotalQuestions = len(out.Questions)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeAction(w http.ResponseWriter, r *http.Request, a *orchestrator.Action, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type roleView struct {
	ID              catalog.Role `json:"id"`
	DisplayName     string       `json:"display_name"`
	ExperienceRange string       `json:"experience_range"`
	BaseDifficulty  int          `json:"base_difficulty"`
	FocusAreas      []string     `json:"focus_areas"`
}

func (s *Server) handleRoles(w http.ResponseWriter, _ *http.Request) {
	var out []roleView
	for _, role := range catalog.AllRoles() {
		info := role.Info()
		out = append(out, roleView{
			ID:              role,
			DisplayName:     info.DisplayName,
			ExperienceRange: info.ExperienceRange,
			BaseDifficulty:  info.BaseDifficulty,
			FocusAreas:      info.FocusAreas,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type skillView struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Category    catalog.SkillCategory `json:"category"`
	Description string                `json:"description"`
	Roles       []catalog.Role        `json:"applicable_roles"`
}

func skillViews(skills []catalog.Skill) []skillView {
	out := make([]skillView, 0, len(skills))
	for _, sk := range skills {
		out = append(out, skillView{
			ID: sk.ID, Name: sk.Name, Category: sk.Category,
			Description: sk.Description, Roles: sk.Roles,
		})
	}
	return out
}

// handleSkills lists the catalog, or one role's skills with ?role=.
func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	skills := catalog.AllSkills()
	if v := r.URL.Query().Get("role"); v != "" {
		role, err := catalog.ParseRole(v)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		skills = catalog.SkillsForRole(role)
	}
	writeJSON(w, http.StatusOK, skillViews(skills))
}

func (s *Server) handleSkillsByRole(w http.ResponseWriter, r *http.Request) {
	role, err := catalog.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, skillViews(catalog.SkillsForRole(role)))
}

// handleSkillsByCategory groups the catalog by category. Categories with
// no skills are omitted.
func (s *Server) handleSkillsByCategory(w http.ResponseWriter, _ *http.Request) {
	out := make(map[catalog.SkillCategory][]skillView)
	for _, sk := range skillViews(catalog.AllSkills()) {
		out[sk.Category] = append(out[sk.Category], sk)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClouds(w http.ResponseWriter, _ *http.Request) {
	type cloudView struct {
		ID          catalog.CloudPreference `json:"id"`
		DisplayName string                  `json:"display_name"`
	}
	var out []cloudView
	for _, c := range catalog.AllClouds() {
		out = append(out, cloudView{ID: c, DisplayName: c.DisplayName()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleModes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, interview.AllModes())
}
