package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

type ttsRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type ttsResponse struct {
	AudioBase64     string  `json:"audio_base64,omitempty"`
	URL             string  `json:"url,omitempty"`
	Format          string  `json:"format"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	if s.synthesizer == nil {
		s.writeError(w, r, fmt.Errorf("%w: no synthesizer configured", errSpeechUnavailable))
		return
	}
	var req ttsRequest
	if err := decode(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, r, fmt.Errorf("%w: text is required", errBadRequest))
		return
	}
	voice := req.Voice
	if voice == "" {
		voice = s.voice
	}

	audio, err := s.synthesizer.Synthesize(r.Context(), req.Text, voice)
	if err == nil && audio == nil {
		err = errors.New("no audio returned")
	}
	if err != nil {
		s.writeError(w, r, fmt.Errorf("synthesize: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, ttsResponse{
		AudioBase64:     base64.StdEncoding.EncodeToString(audio.Data),
		URL:             audio.URL,
		Format:          audio.Format,
		DurationSeconds: audio.DurationSeconds,
	})
}

type sttRequest struct {
	AudioBase64 string `json:"audio_base64"`
	Format      string `json:"format"`
	Language    string `json:"language"`
}

type sttResponse struct {
	Transcript string `json:"transcript"`
}

// handleSTT transcribes a multipart "audio" upload or a JSON body carrying
// base64 audio. The language query parameter overrides the default.
func (s *Server) handleSTT(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		s.writeError(w, r, fmt.Errorf("%w: no transcriber configured", errSpeechUnavailable))
		return
	}

	var (
		req   sttRequest
		audio []byte
		err   error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		audio, req.Format, err = readUpload(w, r)
	} else if err = decode(w, r, &req, false); err == nil {
		audio, err = base64.StdEncoding.DecodeString(req.AudioBase64)
		if err != nil {
			err = fmt.Errorf("%w: audio_base64: %v", errBadRequest, err)
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(audio) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: audio is required", errBadRequest))
		return
	}
	if req.Format == "" {
		req.Format = "wav"
	}
	lang := r.URL.Query().Get("language")
	if lang == "" {
		lang = req.Language
	}
	if lang == "" {
		lang = s.language
	}

	text, err := s.transcriber.Transcribe(r.Context(), audio, req.Format, lang)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("transcribe: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, sttResponse{Transcript: text})
}

// readUpload returns the "audio" form file and the format named by the
// "format" field or, failing that, the file extension.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	f, hdr, err := r.FormFile("audio")
	if err != nil {
		return nil, "", fmt.Errorf("%w: audio upload: %v", errBadRequest, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read upload: %v", errBadRequest, err)
	}
	format := r.FormValue("format")
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(hdr.Filename)), ".")
	}
	return data, format, nil
}
