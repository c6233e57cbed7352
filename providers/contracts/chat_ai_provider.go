package contracts

import (
	"context"

	"github.com/morler/commitgpt/providers/models"
)

type IChatAIProvider interface {
	ChatCompletion(ctx context.Context, request models.ChatCompletionRequest) (*models.ChatCompletionResponse, error)
	Name() string
}
