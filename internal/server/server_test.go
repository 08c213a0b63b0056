package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/dataready/internal/catalog"
	"github.com/abhisek/dataready/internal/interview"
	"github.com/abhisek/dataready/internal/logging"
	"github.com/abhisek/dataready/internal/metrics"
	"github.com/abhisek/dataready/internal/orchestrator"
	"github.com/abhisek/dataready/internal/questiongen"
	"github.com/abhisek/dataready/internal/report"
	"github.com/abhisek/dataready/internal/speech"
	"github.com/abhisek/dataready/internal/store"
)

type fixture struct {
	srv  *httptest.Server
	orch *orchestrator.Orchestrator
	log  *logging.TestLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, Options{})
}

// newFixtureWith serves the API with opts; the logger and gatherer are
// always the fixture's own.
func newFixtureWith(t *testing.T, opts Options) *fixture {
	t.Helper()
	log := logging.NewTestLogger()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	orch := orchestrator.New(store.NewMemory(), orchestrator.Options{
		FallbackQuestions: questiongen.NewFallback(11),
		Fallbacks:         m,
		Logger:            log.Logger,
	})
	orch.OnStateChange(m.StateChanged)

	opts.Logger = log.Logger
	opts.Gatherer = reg
	srv := httptest.NewServer(New(orch, opts))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, orch: orch, log: log}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

const setupJSON = `{"years_of_experience":4,"target_role":"mid_data_engineer","cloud_preference":"aws","mode":"structured","max_questions":5}`

func TestInterviewLifecycle(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/interviews", setupJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[sessionView](t, resp)
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, interview.StateSetup, created.State)
	assert.Equal(t, 5, created.Difficulty)
	assert.NotEmpty(t, created.Skills)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	base := "/api/interviews/" + created.SessionID

	resp = f.do(t, http.MethodPost, base+"/start", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	action := decodeBody[orchestrator.Action](t, resp)
	assert.Equal(t, orchestrator.ActionQuestion, action.Action)
	assert.Equal(t, 1, action.QuestionNumber)

	resp = f.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decodeBody[orchestrator.Status](t, resp)
	assert.Equal(t, interview.StateListening, st.State)
	assert.Equal(t, 1, st.QuestionsAsked)

	for i := 0; i < 5; i++ {
		body := fmt.Sprintf(`{"transcript":"First, I designed a batch pipeline with Spark and Airflow, answer %d."}`, i)
		resp = f.do(t, http.MethodPost, base+"/respond", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		action = decodeBody[orchestrator.Action](t, resp)
	}
	assert.Equal(t, orchestrator.ActionComplete, action.Action)

	resp = f.do(t, http.MethodGet, base+"/report", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decodeBody[report.Report](t, resp)
	assert.Equal(t, created.SessionID, rep.SessionID)
	assert.Len(t, rep.QuestionFeedback, 5)

	resp = f.do(t, http.MethodGet, "/api/interviews?limit=10", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[[]store.SessionSummary](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, interview.StateFinished, list[0].State)

	f.log.AssertLogged(t, zapcore.InfoLevel, "request completed")
}

func TestErrorMapping(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name, method, path, body string
		status                   int
		kind                     string
	}{
		{"unknown session", http.MethodPost, "/api/interviews/missing/start", "", http.StatusNotFound, "unknown_session"},
		{"invalid setup", http.MethodPost, "/api/interviews", `{"years_of_experience":40,"target_role":"mid_data_engineer"}`, http.StatusBadRequest, "invalid_setup"},
		{"malformed json", http.MethodPost, "/api/interviews", `{`, http.StatusBadRequest, "bad_request"},
		{"bad limit", http.MethodGet, "/api/interviews?limit=x", "", http.StatusBadRequest, "bad_request"},
		{"bad role", http.MethodGet, "/api/metadata/skills?role=cto", "", http.StatusBadRequest, "bad_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decodeBody[errorBody](t, resp)
			assert.Equal(t, tt.kind, body.Kind)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestConflicts(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodPost, "/api/interviews", setupJSON)
	created := decodeBody[sessionView](t, resp)
	base := "/api/interviews/" + created.SessionID

	resp = f.do(t, http.MethodPost, base+"/respond", `{"transcript":"too early"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "no_active_question", decodeBody[errorBody](t, resp).Kind)

	resp = f.do(t, http.MethodGet, base+"/report", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "interview_not_complete", decodeBody[errorBody](t, resp).Kind)

	resp = f.do(t, http.MethodPost, base+"/pause", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_transition", decodeBody[errorBody](t, resp).Kind)

	f.do(t, http.MethodPost, base+"/start", "")
	resp = f.do(t, http.MethodPost, base+"/respond", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = f.do(t, http.MethodPost, base+"/respond", `{"audio_base64":"%%%"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPauseResumeEnd(t *testing.T) {
	f := newFixture(t)
	created := decodeBody[sessionView](t, f.do(t, http.MethodPost, "/api/interviews", setupJSON))
	base := "/api/interviews/" + created.SessionID
	f.do(t, http.MethodPost, base+"/start", "")

	resp := f.do(t, http.MethodPost, base+"/pause", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "paused", decodeBody[map[string]any](t, resp)["state"])

	resp = f.do(t, http.MethodPost, base+"/resume", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, orchestrator.ActionResumed, decodeBody[orchestrator.Action](t, resp).Action)

	resp = f.do(t, http.MethodPost, base+"/end", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	a := decodeBody[orchestrator.Action](t, resp)
	assert.Equal(t, orchestrator.ActionEnded, a.Action)
	assert.Equal(t, "user_ended", a.Reason)
}

func TestAudioResponseWithoutTranscriber(t *testing.T) {
	f := newFixture(t)
	created := decodeBody[sessionView](t, f.do(t, http.MethodPost, "/api/interviews", setupJSON))
	base := "/api/interviews/" + created.SessionID
	f.do(t, http.MethodPost, base+"/start", "")

	body := fmt.Sprintf(`{"audio_base64":%q,"audio_format":"wav"}`, base64.StdEncoding.EncodeToString([]byte("RIFF....")))
	resp := f.do(t, http.MethodPost, base+"/respond", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	sess, err := f.orch.GetSession(context.Background(), created.SessionID)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.TranscriptionUnavailable, sess.Questions[0].ResponseTranscript)
}

func TestMetadata(t *testing.T) {
	f := newFixture(t)

	roles := decodeBody[[]roleView](t, f.do(t, http.MethodGet, "/api/metadata/roles", ""))
	require.Len(t, roles, 5)
	assert.Equal(t, "Junior Data Engineer", roles[0].DisplayName)

	all := decodeBody[[]skillView](t, f.do(t, http.MethodGet, "/api/metadata/skills", ""))
	assert.Len(t, all, 41)
	junior := decodeBody[[]skillView](t, f.do(t, http.MethodGet, "/api/metadata/skills?role=junior_data_engineer", ""))
	assert.Len(t, junior, 9)

	clouds := decodeBody[[]map[string]string](t, f.do(t, http.MethodGet, "/api/metadata/clouds", ""))
	assert.Len(t, clouds, 5)
	modes := decodeBody[[]string](t, f.do(t, http.MethodGet, "/api/metadata/modes", ""))
	assert.Equal(t, []string{"structured", "structured_followup", "stress"}, modes)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)
	resp := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	created := decodeBody[sessionView](t, f.do(t, http.MethodPost, "/api/interviews", setupJSON))
	f.do(t, http.MethodPost, "/api/interviews/"+created.SessionID+"/start", "")

	resp = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `dataready_state_transitions_total{from="setup",to="ready"} 1`)
}

func TestRequestIDPropagation(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, "req-abc")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-abc", resp.Header.Get(RequestIDHeader))

	f.log.AssertField(t, "request completed", "request.id", "req-abc")
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&interview.UnknownSessionError{SessionID: "x"}, http.StatusNotFound},
		{&interview.InvalidTransitionError{}, http.StatusConflict},
		{&interview.NoActiveQuestionError{}, http.StatusConflict},
		{&interview.InterviewNotCompleteError{}, http.StatusConflict},
		{&interview.SetupError{Field: "f"}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", &interview.UnknownSessionError{}), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type panicking struct{ Interviews }

func (panicking) Status(context.Context, string) (*orchestrator.Status, error) {
	panic("handler bug")
}

func TestRecoverer(t *testing.T) {
	srv := httptest.NewServer(New(panicking{}, Options{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/interviews/x")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

// finishedInterview runs a structured interview to completion and returns
// its session id and API base path.
func (f *fixture) finishedInterview(t *testing.T) (string, string) {
	t.Helper()
	created := decodeBody[sessionView](t, f.do(t, http.MethodPost, "/api/interviews", setupJSON))
	base := "/api/interviews/" + created.SessionID
	f.do(t, http.MethodPost, base+"/start", "")
	for i := 0; i < 5; i++ {
		f.do(t, http.MethodPost, base+"/respond", `{"transcript":"I partitioned the Kafka topic by customer id and used idempotent writes."}`)
	}
	return created.SessionID, base
}

func TestReportSummary(t *testing.T) {
	f := newFixture(t)
	id, base := f.finishedInterview(t)

	resp := f.do(t, http.MethodGet, base+"/report/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sum := decodeBody[report.Summary](t, resp)
	assert.Equal(t, id, sum.SessionID)
	assert.NotEmpty(t, sum.Verdict)
	assert.NotEmpty(t, sum.TopStrength)
	assert.NotEmpty(t, sum.TopImprovementArea)

	full := decodeBody[report.Report](t, f.do(t, http.MethodGet, base+"/report", ""))
	assert.Equal(t, full.OverallScore, sum.OverallScore)
	assert.Equal(t, full.Verdict, sum.Verdict)
}

func TestReportSummary_NotComplete(t *testing.T) {
	f := newFixture(t)
	created := decodeBody[sessionView](t, f.do(t, http.MethodPost, "/api/interviews", setupJSON))

	resp := f.do(t, http.MethodGet, "/api/interviews/"+created.SessionID+"/report/summary", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "interview_not_complete", decodeBody[errorBody](t, resp).Kind)
}

func TestQuestionDetails(t *testing.T) {
	f := newFixture(t)
	created := decodeBody[sessionView](t, f.do(t, http.MethodPost, "/api/interviews", setupJSON))
	base := "/api/interviews/" + created.SessionID
	f.do(t, http.MethodPost, base+"/start", "")
	f.do(t, http.MethodPost, base+"/respond", `{"transcript":"I would use a star schema with slowly changing dimensions."}`)

	resp := f.do(t, http.MethodGet, base+"/report/questions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[questionDetails](t, resp)
	assert.Equal(t, created.SessionID, got.SessionID)
	require.Equal(t, 2, got.TotalQuestions)
	require.Len(t, got.Questions, 2)

	first, second := got.Questions[0], got.Questions[1]
	assert.Equal(t, 1, first.Number)
	assert.NotEmpty(t, first.QuestionText)
	assert.Contains(t, first.ResponseTranscript, "star schema")
	require.NotNil(t, first.Scores)
	assert.Greater(t, first.Scores.TechnicalCorrectness, 0.0)
	assert.Equal(t, 2, second.Number)
	assert.Nil(t, second.Scores, "unanswered question has no scores")

	resp = f.do(t, http.MethodGet, "/api/interviews/missing/report/questions", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSkillsByRoleAndCategory(t *testing.T) {
	f := newFixture(t)

	junior := decodeBody[[]skillView](t, f.do(t, http.MethodGet, "/api/metadata/skills/by-role/junior_data_engineer", ""))
	assert.Len(t, junior, 9)
	for _, sk := range junior {
		assert.Contains(t, sk.Roles, catalog.RoleJunior, sk.ID)
	}

	resp := f.do(t, http.MethodGet, "/api/metadata/skills/by-role/cto", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	grouped := decodeBody[map[catalog.SkillCategory][]skillView](t, f.do(t, http.MethodGet, "/api/metadata/skills/by-category", ""))
	total := 0
	for cat, skills := range grouped {
		assert.NotEmpty(t, skills, cat)
		for _, sk := range skills {
			assert.Equal(t, cat, sk.Category, sk.ID)
		}
		total += len(skills)
	}
	assert.Equal(t, 41, total)
}

type fakeSpeech struct {
	text     string
	audio    *speech.Audio
	err      error
	format   string
	language string
	voice    string
	got      []byte
}

func (s *fakeSpeech) Transcribe(_ context.Context, audio []byte, format, language string) (string, error) {
	s.got, s.format, s.language = audio, format, language
	return s.text, s.err
}

func (s *fakeSpeech) Synthesize(_ context.Context, _, voice string) (*speech.Audio, error) {
	s.voice = voice
	return s.audio, s.err
}

func TestAudioUnavailable(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/audio/tts", "/api/audio/stt"} {
		resp := f.do(t, http.MethodPost, path, `{"text":"hello"}`)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
		assert.Equal(t, "speech_unavailable", decodeBody[errorBody](t, resp).Kind, path)
	}
}

func TestTTS(t *testing.T) {
	sp := &fakeSpeech{audio: &speech.Audio{Data: []byte("ID3audio"), Format: "mp3", DurationSeconds: 1.5}}
	f := newFixtureWith(t, Options{Synthesizer: sp, Voice: "alloy"})

	resp := f.do(t, http.MethodPost, "/api/audio/tts", `{"text":"Tell me about CDC."}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[ttsResponse](t, resp)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("ID3audio")), got.AudioBase64)
	assert.Equal(t, "mp3", got.Format)
	assert.Equal(t, 1.5, got.DurationSeconds)
	assert.Equal(t, "alloy", sp.voice)

	f.do(t, http.MethodPost, "/api/audio/tts", `{"text":"again","voice":"nova"}`)
	assert.Equal(t, "nova", sp.voice)

	resp = f.do(t, http.MethodPost, "/api/audio/tts", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	sp.err = errors.New("quota exceeded")
	resp = f.do(t, http.MethodPost, "/api/audio/tts", `{"text":"hello"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	f.log.AssertLogged(t, zapcore.ErrorLevel, "request failed")
}

func TestSTT_Base64(t *testing.T) {
	sp := &fakeSpeech{text: "I would shard by tenant."}
	f := newFixtureWith(t, Options{Transcriber: sp})

	body := fmt.Sprintf(`{"audio_base64":%q,"format":"webm"}`, base64.StdEncoding.EncodeToString([]byte("webm-bytes")))
	resp := f.do(t, http.MethodPost, "/api/audio/stt?language=de", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "I would shard by tenant.", decodeBody[sttResponse](t, resp).Transcript)
	assert.Equal(t, []byte("webm-bytes"), sp.got)
	assert.Equal(t, "webm", sp.format)
	assert.Equal(t, "de", sp.language)

	f.do(t, http.MethodPost, "/api/audio/stt", body)
	assert.Equal(t, "en", sp.language, "default language")

	resp = f.do(t, http.MethodPost, "/api/audio/stt", `{"audio_base64":"%%%"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/api/audio/stt", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSTT_Multipart(t *testing.T) {
	sp := &fakeSpeech{text: "uploaded answer"}
	f := newFixtureWith(t, Options{Transcriber: sp, Language: "fr"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "answer.MP3")
	require.NoError(t, err)
	_, err = part.Write([]byte("mp3-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/audio/stt", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "uploaded answer", decodeBody[sttResponse](t, resp).Transcript)
	assert.Equal(t, []byte("mp3-bytes"), sp.got)
	assert.Equal(t, "mp3", sp.format)
	assert.Equal(t, "fr", sp.language)
}
