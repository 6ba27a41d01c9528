package llm

import (
	"context"
	"encoding/base64"
	"io"
	"strings"

	"github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"
)

// OpenAIClient implements Client for OpenAI chat completions.
// It also serves image generation and speech-to-text for the pipeline.
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, &APICallError{Provider: ProviderOpenAI, Message: "API key is required"}
	}
	if config == nil {
		config = DefaultOpenAIConfig()
	}
	return &OpenAIClient{
		client: openai.NewClient(oaioption.WithAPIKey(apiKey)),
		config: config,
	}, nil
}

// Chat sends the messages verbatim as a chat completion.
func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	modelName := c.config.GetModel(req.Tier)
	if modelName == "" {
		return nil, &APICallError{Provider: ProviderOpenAI, Message: "no model configured for tier " + string(req.Tier)}
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(modelName),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return nil, &APICallError{Provider: ProviderOpenAI, Message: "chat completion failed", Cause: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &EmptyResponseError{Provider: ProviderOpenAI, Reason: "no choices in response"}
	}

	return &ChatResponse{
		Text: strings.TrimSpace(resp.Choices[0].Message.Content),
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// GenerateImage renders prompt with an image model and returns the decoded bytes.
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt, model, size string) ([]byte, error) {
	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(model),
		Size:   openai.ImageGenerateParamsSize(size),
		N:      openai.Int(1),
	})
	if err != nil {
		return nil, &APICallError{Provider: ProviderOpenAI, Message: "image generation failed", Cause: err}
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, &EmptyResponseError{Provider: ProviderOpenAI, Reason: "no image data in response"}
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, &APICallError{Provider: ProviderOpenAI, Message: "failed to decode image", Cause: err}
	}
	return data, nil
}

// Transcribe sends one audio file to the speech-to-text endpoint.
// audio should be an *os.File so the upload carries its file name.
func (c *OpenAIClient) Transcribe(ctx context.Context, audio io.Reader, model string) (string, error) {
	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  audio,
		Model: openai.AudioModel(model),
	})
	if err != nil {
		return "", &APICallError{Provider: ProviderOpenAI, Message: "transcription failed", Cause: err}
	}
	return resp.Text, nil
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the HTTP client holds no resources.
func (c *OpenAIClient) Close() error {
	return nil
}
