// Package tts implements ports.TextToSpeech against an HTTP text-to-speech
// server that accepts a JSON body and returns raw audio bytes.
package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/oduggan21/reading-assistant/internal/ports"
)

// Adapter posts text to synthesize to a configured TTS server and returns
// the resulting audio payload unexamined.
type Adapter struct {
	baseURL string
	client  *http.Client
}

var _ ports.TextToSpeech = (*Adapter)(nil)

// New builds an Adapter pointed at a running TTS server.
func New(baseURL string, timeout time.Duration) *Adapter {
	return &Adapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

// Synthesize posts text and returns the raw response body as the audio
// payload.
func (a *Adapter) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := sonic.Marshal(synthesizeRequest{Text: text})
	if err != nil {
		return nil, ports.NewUnexpected("tts.Synthesize", fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, ports.NewUnexpected("tts.Synthesize", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, ports.NewUnexpected("tts.Synthesize", fmt.Errorf("call tts server: %w", err))
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ports.NewUnexpected("tts.Synthesize", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ports.NewUnexpected("tts.Synthesize", fmt.Errorf("tts server returned %d: %s", resp.StatusCode, audio))
	}

	return audio, nil
}
