package llm

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat conversation.
type Message struct {
	Role    Role
	Content string
}

// System builds a system message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ChatRequest is a provider-neutral chat completion request.
type ChatRequest struct {
	Messages    []Message
	Temperature float64
	Tier        ModelTier
}

// ChatResponse carries the model text and the tokens it cost.
type ChatResponse struct {
	Text  string
	Usage Usage
}

// Usage counts prompt and completion tokens.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

// Add returns the element-wise sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
	}
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int64 {
	return u.PromptTokens + u.CompletionTokens
}

const (
	costPer1KPrompt     = 0.005
	costPer1KCompletion = 0.015
)

// EstimateCost returns a rough USD cost using a blended per-token price.
func EstimateCost(u Usage) float64 {
	return float64(u.Total()) / 1000 * ((costPer1KPrompt + costPer1KCompletion) / 2)
}
