package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &APICallError{Provider: ProviderGemini, Message: "API key is required"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &APICallError{Provider: ProviderGemini, Message: "failed to create client", Cause: err}
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// Chat sends the conversation as a single generation call.
// System messages become the model's system instruction.
func (c *GeminiClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	modelName := c.config.GetModel(req.Tier)
	if modelName == "" {
		return nil, &APICallError{Provider: ProviderGemini, Message: "no model configured for tier " + string(req.Tier)}
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(float32(req.Temperature))

	system, turns := splitMessages(req.Messages)
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))},
		}
	}

	parts := make([]genai.Part, 0, len(turns))
	for _, m := range turns {
		parts = append(parts, genai.Text(m.Content))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, &APICallError{Provider: ProviderGemini, Message: "failed to generate content", Cause: err}
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, err
	}

	out := &ChatResponse{Text: strings.TrimSpace(text)}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int64(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &EmptyResponseError{Provider: ProviderGemini, Reason: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &EmptyResponseError{Provider: ProviderGemini, Reason: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", &EmptyResponseError{Provider: ProviderGemini, Reason: "no text parts in response"}
	}

	return strings.Join(parts, ""), nil
}
