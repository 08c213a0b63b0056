// Package speech converts candidate audio to text and question text to
// audio.
package speech

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable is returned when no speech backend is configured.
var ErrUnavailable = errors.New("speech: backend unavailable")

// Transcriber turns recorded answer audio into text.
type Transcriber interface {
	// Transcribe converts audio in the given container format ("wav",
	// "webm", "mp3") into text. language is an ISO-639-1 code.
	Transcribe(ctx context.Context, audio []byte, format, language string) (string, error)
}

// Synthesizer turns question text into spoken audio.
type Synthesizer interface {
	// Synthesize renders text; an empty voice uses the backend default.
	Synthesize(ctx context.Context, text, voice string) (*Audio, error)
}

// Audio is synthesized speech. Data marshals to base64 in JSON.
type Audio struct {
	Data            []byte  `json:"audio_data,omitempty"`
	Format          string  `json:"format"`
	DurationSeconds float64 `json:"duration_seconds"`
	// URL is set by backends that host the audio instead of returning it.
	URL string `json:"url,omitempty"`
}

// EstimateDuration approximates speaking time at 150 words per minute.
func EstimateDuration(text string) float64 {
	return float64(len(strings.Fields(text))) / 150 * 60
}

// Noop fails every call so callers take their degraded path.
type Noop struct{}

// Transcribe implements Transcriber.
func (Noop) Transcribe(context.Context, []byte, string, string) (string, error) {
	return "", ErrUnavailable
}

// Synthesize implements Synthesizer.
func (Noop) Synthesize(context.Context, string, string) (*Audio, error) {
	return nil, ErrUnavailable
}
