package speech

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultOpenAIConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = server.URL + "/v1"
	o, err := NewOpenAI(cfg)
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	return o
}

func TestOpenAI_Transcribe(t *testing.T) {
	var gotModel, gotLanguage, gotFile string
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		if _, fh, err := r.FormFile("file"); err == nil {
			gotFile = fh.Filename
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"text": "  I would partition by event date.  "})
	})

	text, err := o.Transcribe(context.Background(), []byte("RIFF...."), "webm", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "I would partition by event date." {
		t.Errorf("text = %q", text)
	}
	if gotModel != openai.Whisper1 || gotLanguage != "en" || gotFile != "audio.webm" {
		t.Errorf("model=%q language=%q file=%q", gotModel, gotLanguage, gotFile)
	}
}

func TestOpenAI_TranscribeEmpty(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := o.Transcribe(context.Background(), nil, "wav", "en"); err == nil {
		t.Fatal("expected error for empty audio")
	}
}

func TestOpenAI_Synthesize(t *testing.T) {
	var body struct {
		Model  string `json:"model"`
		Input  string `json:"input"`
		Voice  string `json:"voice"`
		Format string `json:"response_format"`
	}
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3fake"))
	})

	audio, err := o.Synthesize(context.Background(), "How would you design a CDC pipeline?", "male")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio.Data) != "ID3fake" || audio.Format != "mp3" {
		t.Errorf("audio = %+v", audio)
	}
	if body.Voice != string(openai.VoiceOnyx) || body.Model != "tts-1" || body.Format != "mp3" {
		t.Errorf("request = %+v", body)
	}
	// 7 words at 150 wpm
	if want := 7.0 / 150 * 60; audio.DurationSeconds != want {
		t.Errorf("duration = %v, want %v", audio.DurationSeconds, want)
	}
}

func TestOpenAI_SynthesizeError(t *testing.T) {
	o := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	})
	if _, err := o.Synthesize(context.Background(), "hello", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewOpenAI_RequiresKey(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{}); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNoop(t *testing.T) {
	if _, err := (Noop{}).Transcribe(context.Background(), []byte("x"), "wav", "en"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Transcribe err = %v", err)
	}
	if _, err := (Noop{}).Synthesize(context.Background(), "x", ""); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Synthesize err = %v", err)
	}
}

func TestAudioJSON(t *testing.T) {
	b, err := json.Marshal(Audio{Data: []byte("hi"), Format: "mp3", DurationSeconds: 1.5})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"audio_data":"aGk=","format":"mp3","duration_seconds":1.5}` {
		t.Errorf("json = %s", b)
	}
}
