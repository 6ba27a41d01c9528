package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	antoption "github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicMaxTokens bounds completion length; digests are a few thousand tokens.
const anthropicMaxTokens = 8192

// AnthropicClient implements Client for Anthropic messages
type AnthropicClient struct {
	client anthropic.Client
	config *Config
}

// NewAnthropicClient creates a new Anthropic client
func NewAnthropicClient(config *Config, apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, &APICallError{Provider: ProviderAnthropic, Message: "API key is required"}
	}
	if config == nil {
		config = DefaultAnthropicConfig()
	}
	return &AnthropicClient{
		client: anthropic.NewClient(antoption.WithAPIKey(apiKey)),
		config: config,
	}, nil
}

// Chat sends system messages as system blocks and the rest as turns.
func (c *AnthropicClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	modelName := c.config.GetModel(req.Tier)
	if modelName == "" {
		return nil, &APICallError{Provider: ProviderAnthropic, Message: "no model configured for tier " + string(req.Tier)}
	}

	system, turns := splitMessages(req.Messages)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(modelName),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(req.Temperature),
	}
	for _, s := range system {
		params.System = append(params.System, anthropic.TextBlockParam{Text: s})
	}
	for _, m := range turns {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, &APICallError{Provider: ProviderAnthropic, Message: "message creation failed", Cause: err}
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, &EmptyResponseError{Provider: ProviderAnthropic, Reason: "no text blocks in response"}
	}

	return &ChatResponse{
		Text: strings.TrimSpace(sb.String()),
		Usage: Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
		},
	}, nil
}

// GetModel returns the model name for a tier
func (c *AnthropicClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op for the Anthropic client
func (c *AnthropicClient) Close() error {
	return nil
}
