// Package openaistt implements the speech-to-text capability on OpenAI's
// Whisper API.
package openaistt

import (
	"context"
	"fmt"
	"io"

	"github.com/courtscribe/courtscribe/pkg/stt"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type Config struct {
	APIKey   string
	Model    string
	Language string
}

type WhisperTranscriber struct {
	client   openai.Client
	model    openai.AudioModel
	language string
}

func New(cfg Config) *WhisperTranscriber {
	model := openai.AudioModel(cfg.Model)
	if cfg.Model == "" {
		model = openai.AudioModelWhisper1
	}
	return &WhisperTranscriber{
		client:   openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:    model,
		language: cfg.Language,
	}
}

// Transcribe implements stt.Transcriber.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, "audio/wav"),
		Model: w.model,
	}
	if w.language != "" {
		params.Language = openai.String(w.language)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("whisper request failed: %w", err)
	}
	return resp.Text, nil
}

var _ stt.Transcriber = (*WhisperTranscriber)(nil)
