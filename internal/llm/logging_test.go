package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/abhisek/dataready/internal/logging"
	"github.com/abhisek/dataready/internal/store"
)

type recorder struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recorder) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsEvent(t *testing.T) {
	rec := &recorder{}
	mock := NewMockProvider(MockText("What is a slowly changing dimension?"))
	p := WithLogging(mock, "mock", rec, nil)

	ctx := WithPurpose(logging.WithSessionID(context.Background(), "sess-1"), PurposeQuestion)
	if _, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "go"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	ev := rec.events[0]
	if ev.Purpose != string(PurposeQuestion) || ev.SessionID != "sess-1" || !ev.Success {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.Provider != "mock" || ev.Model != "mock" {
		t.Fatalf("unexpected provider/model %q/%q", ev.Provider, ev.Model)
	}
	if ev.RequestBody == "" || ev.ResponseBody == "" {
		t.Fatal("expected request and response bodies")
	}
}

func TestLoggingProvider_FailureIsLoggedAndRecorded(t *testing.T) {
	rec := &recorder{err: errors.New("disk full")}
	tl := logging.NewTestLogger()
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, "mock", rec, tl.Logger)

	_, err := p.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(rec.events) != 1 || rec.events[0].Success || rec.events[0].ErrorMessage == "" {
		t.Fatalf("unexpected events %+v", rec.events)
	}
	tl.AssertLogged(t, zapcore.WarnLevel, "llm request failed")
	tl.AssertLogged(t, zapcore.WarnLevel, "failed to record llm request event")
}

func TestWithTimeout(t *testing.T) {
	mock := NewMockProvider(MockText("ok"))
	p := WithTimeout(mock, time.Second)
	_, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("mock ignores context, got %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("unexpected model %q", p.ModelID())
	}
}

func TestNewProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	_, err := NewProvider(context.Background(), DefaultConfig(), nil, nil)
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", err)
	}

	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("unexpected model %q", p.ModelID())
	}

	cfg = DefaultConfig()
	cfg.Provider = ProviderOpenRouter
	cfg.OpenRouter.APIKey = "sk-or-test"
	p, err = NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "anthropic/claude-sonnet-4.5" {
		t.Fatalf("unexpected model %q", p.ModelID())
	}

	cfg.Provider = ProviderAnthropic
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected missing key error")
	}
}
