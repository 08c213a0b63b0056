package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures the OpenAI audio backend.
type OpenAIConfig struct {
	APIKey   string `koanf:"api_key"`
	BaseURL  string `koanf:"base_url"`
	STTModel string `koanf:"stt_model"`
	TTSModel string `koanf:"tts_model"`
	Voice    string `koanf:"voice"`
	Language string `koanf:"language"`
}

// DefaultOpenAIConfig returns whisper-1 and tts-1 with the alloy voice.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		STTModel: openai.Whisper1,
		TTSModel: string(openai.TTSModel1),
		Voice:    string(openai.VoiceAlloy),
		Language: "en",
	}
}

// voiceAliases maps the descriptive voice names used by clients onto
// OpenAI voices.
var voiceAliases = map[string]openai.SpeechVoice{
	"male":         openai.VoiceOnyx,
	"female":       openai.VoiceNova,
	"professional": openai.VoiceAlloy,
	"default":      openai.VoiceAlloy,
}

// OpenAI implements Transcriber and Synthesizer with the OpenAI audio API.
type OpenAI struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAI creates an OpenAI speech backend.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("speech: openai API key is required")
	}
	def := DefaultOpenAIConfig()
	if cfg.STTModel == "" {
		cfg.STTModel = def.STTModel
	}
	if cfg.TTSModel == "" {
		cfg.TTSModel = def.TTSModel
	}
	if cfg.Voice == "" {
		cfg.Voice = def.Voice
	}
	if cfg.Language == "" {
		cfg.Language = def.Language
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(config), cfg: cfg}, nil
}

// Transcribe implements Transcriber.
func (o *OpenAI) Transcribe(ctx context.Context, audio []byte, format, language string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("speech: empty audio")
	}
	if format == "" {
		format = "wav"
	}
	if language == "" {
		language = o.cfg.Language
	}

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.STTModel,
		FilePath: "audio." + format,
		Reader:   bytes.NewReader(audio),
		Language: language,
	})
	if err != nil {
		return "", fmt.Errorf("speech: transcribe: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// Synthesize implements Synthesizer. The audio is returned as mp3.
func (o *OpenAI) Synthesize(ctx context.Context, text, voice string) (*Audio, error) {
	resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.cfg.TTSModel),
		Input:          text,
		Voice:          o.resolveVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech: synthesize: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("speech: read audio: %w", err)
	}
	return &Audio{
		Data:            data,
		Format:          "mp3",
		DurationSeconds: EstimateDuration(text),
	}, nil
}

func (o *OpenAI) resolveVoice(voice string) openai.SpeechVoice {
	if voice == "" {
		voice = o.cfg.Voice
	}
	if v, ok := voiceAliases[strings.ToLower(voice)]; ok {
		return v
	}
	return openai.SpeechVoice(voice)
}
