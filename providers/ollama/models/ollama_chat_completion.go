package models

import "github.com/morler/commitgpt/providers/models"

type OllamaChatCompletionRequest struct {
	Model    string           `json:"model"`
	Messages []models.Message `json:"messages"`
	Stream   bool             `json:"stream"`
	Options  *Options         `json:"options,omitempty"`
}

type Options struct {
	Temperature float32 `json:"temperature"`
}

type OllamaChatCompletionResponse struct {
	Model           string         `json:"model"`
	Message         models.Message `json:"message"`
	Done            bool           `json:"done"`
	PromptEvalCount int            `json:"prompt_eval_count"`
	EvalCount       int            `json:"eval_count"`
}
