// Package qaopenai implements ports.QuestionAnswering against the OpenAI
// chat completions API.
package qaopenai

import (
	"context"
	"fmt"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/oduggan21/reading-assistant/internal/llmretry"
	"github.com/oduggan21/reading-assistant/internal/ports"
)

const systemPrompt = `You are a reading companion answering a listener's question about the ` +
	`document excerpt they have just heard. Answer concisely using only the supplied context. ` +
	`On the final line, output exactly "RELATEDNESS: RELATED" if the question relates to the ` +
	`document context, or "RELATEDNESS: UNRELATED" if it does not.`

// Config configures the OpenAI-backed QA adapter.
type Config struct {
	APIKey       string
	Model        string
	MaxRetries   int
	RetryBackoff time.Duration
}

// Adapter implements ports.QuestionAnswering.
type Adapter struct {
	client       oai.Client
	model        string
	maxRetries   int
	retryBackoff time.Duration
}

var _ ports.QuestionAnswering = (*Adapter)(nil)

// New builds an Adapter from its Config.
func New(cfg Config) *Adapter {
	return &Adapter{
		client:       oai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:        cfg.Model,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
	}
}

// Answer calls the chat completions endpoint with the question and context
// window, retrying transient failures via llmretry.Do.
func (a *Adapter) Answer(ctx context.Context, question, qaContext string) (string, error) {
	var content string

	err := llmretry.Do(ctx, a.maxRetries, a.retryBackoff, func() error {
		params := oai.ChatCompletionNewParams{
			Model: shared.ChatModel(a.model),
			Messages: []oai.ChatCompletionMessageParamUnion{
				oai.SystemMessage(systemPrompt),
				oai.UserMessage(fmt.Sprintf("Context:\n%s\n\nQuestion: %s", qaContext, question)),
			},
			Temperature: param.NewOpt(0.3),
		}

		resp, err := a.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("qaopenai: no choices in response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", ports.NewUnexpected("qaopenai.Answer", err)
	}
	return content, nil
}
