package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"

	"github.com/gramlens/gramlens/internal/store"
)

// AnthropicProvider implements the Provider interface using Anthropic's
// Claude API.
type AnthropicProvider struct {
	client   *anthropic.Client
	provider string
	model    string
	cacheDir string // every exchange is cached here for debugging
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, model, cacheDir string) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicProvider{
		client:   &client,
		provider: "anthropic",
		model:    model,
		cacheDir: cacheDir,
	}
}

// ScoreComments sends one batch of comments to Claude for sentiment scoring.
func (c *AnthropicProvider) ScoreComments(ctx context.Context, account string, batch []Request) ([]Score, error) {
	prompt := buildPrompt(account, batch)

	// Use prefilling to ensure Claude continues with valid JSON (starting after the "[")
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			anthropic.NewAssistantMessage(anthropic.NewTextBlock("[")),
		},
	})
	if err != nil {
		c.cacheExchange(prompt, "", err)
		return nil, fmt.Errorf("failed to call Claude API: %w", err)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}
	c.cacheExchange(prompt, responseText, nil)

	if responseText == "" {
		return nil, fmt.Errorf("Claude returned empty response")
	}

	// Prepend "[" since we used prefilling - the response continues from after the "["
	fullJSON := "[" + responseText
	return ParseScores([]byte(ExtractJSON(fullJSON)))
}

func (c *AnthropicProvider) cacheExchange(prompt, response string, callErr error) {
	exchange := store.Exchange{
		Timestamp: time.Now(),
		Provider:  c.provider,
		Model:     c.model,
		Prompt:    prompt,
		Response:  response,
	}
	if callErr != nil {
		exchange.Error = callErr.Error()
	}

	if path, err := store.SaveExchange(c.cacheDir, exchange); err != nil {
		logrus.Warnf("failed to cache LLM exchange: %v", err)
	} else {
		logrus.Debugf("cached LLM exchange to %s", path)
	}
}
