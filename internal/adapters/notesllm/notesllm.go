// Package notesllm implements ports.NoteGeneration against the OpenAI chat
// completions API: it summarizes a completed question/answer exchange into
// a short study note, or signals ports.SkipNote for exchanges not worth
// recording (the resume-reading/empty-transcript paths never reach this
// adapter, but a low-information answer can still earn a skip from the
// model itself).
package notesllm

import (
	"context"
	"fmt"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/oduggan21/reading-assistant/internal/domain"
	"github.com/oduggan21/reading-assistant/internal/llmretry"
	"github.com/oduggan21/reading-assistant/internal/ports"
)

const systemPrompt = `Summarize the following question-and-answer exchange from a reading session ` +
	`into one short note capturing what the listener wanted to know. If the exchange carries no ` +
	`information worth recording (e.g. the question was nonsensical or the answer was an apology), ` +
	`reply with exactly "SKIP_NOTE" and nothing else.`

// Config configures the OpenAI-backed note-generation adapter.
type Config struct {
	APIKey       string
	Model        string
	MaxRetries   int
	RetryBackoff time.Duration
}

// Adapter implements ports.NoteGeneration.
type Adapter struct {
	client       oai.Client
	model        string
	maxRetries   int
	retryBackoff time.Duration
}

var _ ports.NoteGeneration = (*Adapter)(nil)

// New builds an Adapter from its Config.
func New(cfg Config) *Adapter {
	return &Adapter{
		client:       oai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:        cfg.Model,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
	}
}

// Summarize returns a short note text, or ports.SkipNote.
func (a *Adapter) Summarize(ctx context.Context, pair domain.QAPair) (string, error) {
	var content string

	err := llmretry.Do(ctx, a.maxRetries, a.retryBackoff, func() error {
		params := oai.ChatCompletionNewParams{
			Model: shared.ChatModel(a.model),
			Messages: []oai.ChatCompletionMessageParamUnion{
				oai.SystemMessage(systemPrompt),
				oai.UserMessage(fmt.Sprintf("Question: %s\nAnswer: %s", pair.QuestionText, pair.AnswerText)),
			},
			Temperature: param.NewOpt(0.2),
		}

		resp, err := a.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("notesllm: no choices in response")
		}
		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", ports.NewUnexpected("notesllm.Summarize", err)
	}

	if strings.EqualFold(content, ports.SkipNote) {
		return ports.SkipNote, nil
	}
	return content, nil
}
