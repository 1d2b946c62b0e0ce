// Package whisper implements ports.SpeechToText against a whisper.cpp
// server's HTTP /inference endpoint. whisper.cpp transcribes in a single
// batch call — there is no incremental/streaming mode — so this adapter
// simply posts the whole captured utterance and waits for the transcript,
// the same batch-only constraint MrWong99-glyphoxa/pkg/provider/stt/whisper
// documents for its own whisper.cpp binding.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/oduggan21/reading-assistant/internal/ports"
)

// Adapter posts captured audio to a whisper.cpp server's /inference
// endpoint.
type Adapter struct {
	baseURL string
	client  *http.Client
}

var _ ports.SpeechToText = (*Adapter)(nil)

// New builds an Adapter pointed at a running whisper.cpp server.
func New(baseURL string, timeout time.Duration) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type inferenceResponse struct {
	Text string `json:"text"`
}

// Transcribe posts audio (expected 16kHz mono WAV, the format whisper.cpp's
// server expects) as a multipart file field and returns the trimmed
// transcript text.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "utterance.wav")
	if err != nil {
		return "", ports.NewUnexpected("whisper.Transcribe", fmt.Errorf("create form file: %w", err))
	}
	if _, err := part.Write(audio); err != nil {
		return "", ports.NewUnexpected("whisper.Transcribe", fmt.Errorf("write audio: %w", err))
	}
	if err := writer.Close(); err != nil {
		return "", ports.NewUnexpected("whisper.Transcribe", fmt.Errorf("close multipart writer: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/inference", &body)
	if err != nil {
		return "", ports.NewUnexpected("whisper.Transcribe", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return "", ports.NewUnexpected("whisper.Transcribe", fmt.Errorf("call whisper server: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ports.NewUnexpected("whisper.Transcribe", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", ports.NewUnexpected("whisper.Transcribe", fmt.Errorf("whisper server returned %d: %s", resp.StatusCode, respBody))
	}

	var result inferenceResponse
	if err := sonic.Unmarshal(respBody, &result); err != nil {
		return "", ports.NewUnexpected("whisper.Transcribe", fmt.Errorf("decode response: %w", err))
	}

	return strings.TrimSpace(result.Text), nil
}
