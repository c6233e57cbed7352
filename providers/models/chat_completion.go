package models

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged conversational turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the provider-neutral request shape.
type ChatCompletionRequest struct {
	Model       string
	Temperature float32
	Messages    []Message
}

type Choice struct {
	Index   int
	Message Message
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// ChatCompletionResponse holds the candidates in the order the service returned them.
type ChatCompletionResponse struct {
	Choices []Choice
	Usage   Usage
}

// AIError is the error body returned by OpenAI-compatible APIs.
type AIError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}
