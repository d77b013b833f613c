// Package pyannote talks to a pyannote-style speaker-diarization HTTP
// service: multipart WAV in, ordered speaker turns out.
package pyannote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/courtscribe/courtscribe/pkg/diarize"
)

type diarizationResponse struct {
	Turns []diarize.Turn `json:"turns"`
}

type PyannoteClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *Logger.Logger
}

func New(baseURL string, timeout time.Duration, logger *Logger.Logger) *PyannoteClient {
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &PyannoteClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Diarize implements diarize.Diarizer.
func (p *PyannoteClient) Diarize(ctx context.Context, audio io.Reader, filename string) ([]diarize.Turn, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/diarize", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		p.logger.Errorf("diarization service error (status %d): %s", resp.StatusCode, string(raw))
		return nil, fmt.Errorf("diarization service returned status %d", resp.StatusCode)
	}

	var out diarizationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode diarization response: %w", err)
	}

	p.logger.Debugf("diarization service returned %d turns for %s", len(out.Turns), filename)
	return out.Turns, nil
}

var _ diarize.Diarizer = (*PyannoteClient)(nil)
