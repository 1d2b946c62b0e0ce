// Package titlellm implements ports.TitleGeneration against the OpenAI chat
// completions API, adapted from the teacher's internal/title_generation
// retry/backoff HTTP client (internal/llmretry carries the retry discipline
// forward) onto the openai-go client used by this repo's other LLM
// adapters.
package titlellm

import (
	"context"
	"fmt"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"

	"github.com/oduggan21/reading-assistant/internal/llmretry"
	"github.com/oduggan21/reading-assistant/internal/ports"
)

const systemPrompt = `Produce a short, descriptive title (five words or fewer, no quotation marks) ` +
	`for the document excerpt that follows.`

const maxExcerptRunes = 2000

// Config configures the OpenAI-backed title-generation adapter.
type Config struct {
	APIKey       string
	Model        string
	MaxRetries   int
	RetryBackoff time.Duration
}

// Adapter implements ports.TitleGeneration.
type Adapter struct {
	client       oai.Client
	model        string
	maxRetries   int
	retryBackoff time.Duration
}

var _ ports.TitleGeneration = (*Adapter)(nil)

// New builds an Adapter from its Config.
func New(cfg Config) *Adapter {
	return &Adapter{
		client:       oai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:        cfg.Model,
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
	}
}

// GenerateTitle summarizes documentText's opening excerpt into a short
// title.
func (a *Adapter) GenerateTitle(ctx context.Context, documentText string) (string, error) {
	excerpt := documentText
	if runes := []rune(excerpt); len(runes) > maxExcerptRunes {
		excerpt = string(runes[:maxExcerptRunes])
	}

	var content string
	err := llmretry.Do(ctx, a.maxRetries, a.retryBackoff, func() error {
		params := oai.ChatCompletionNewParams{
			Model: shared.ChatModel(a.model),
			Messages: []oai.ChatCompletionMessageParamUnion{
				oai.SystemMessage(systemPrompt),
				oai.UserMessage(excerpt),
			},
			Temperature: param.NewOpt(0.5),
		}

		resp, err := a.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("titlellm: no choices in response")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", ports.NewUnexpected("titlellm.GenerateTitle", err)
	}

	title := strings.TrimSpace(content)
	title = strings.Trim(title, `"'`)
	return title, nil
}
