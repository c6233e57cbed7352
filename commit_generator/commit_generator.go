package commit_generator

import (
	"context"
	"strings"

	"github.com/morler/commitgpt/app_errors"
	"github.com/morler/commitgpt/providers/contracts"
	"github.com/morler/commitgpt/providers/models"
	"github.com/rs/zerolog"
)

// Temperature is the sampling temperature used for every request.
const Temperature float32 = 0.3

// CommitMessageRequest represents the request for generating a commit message
type CommitMessageRequest struct {
	Diff     string
	Files    []string
	Language Language
	Style    Style
	RepoName string
	Model    string
}

// CommitMessageGenerator generates commit messages using AI
type CommitMessageGenerator struct {
	aiProvider contracts.IChatAIProvider
	logger     zerolog.Logger
}

// NewCommitMessageGenerator creates a new commit message generator
func NewCommitMessageGenerator(aiProvider contracts.IChatAIProvider, logger zerolog.Logger) *CommitMessageGenerator {
	return &CommitMessageGenerator{aiProvider: aiProvider, logger: logger}
}

// GenerateCommitMessage issues exactly one completion request and returns the
// first candidate's trimmed text.
func (g *CommitMessageGenerator) GenerateCommitMessage(ctx context.Context, request CommitMessageRequest) (string, error) {
	if g.aiProvider == nil {
		return "", &app_errors.ConfigError{Msg: "no authenticated chat provider configured"}
	}

	prompt := BuildPrompt(request)

	g.logger.Debug().
		Str("provider", g.aiProvider.Name()).
		Str("model", request.Model).
		Int("system_chars", len(prompt.System)).
		Int("user_chars", len(prompt.User)).
		Msg("requesting commit message")

	response, err := g.aiProvider.ChatCompletion(ctx, models.ChatCompletionRequest{
		Model:       request.Model,
		Temperature: Temperature,
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: prompt.System},
			{Role: models.RoleUser, Content: prompt.User},
		},
	})
	if err != nil {
		return "", &app_errors.GenerationError{Msg: "failed to generate commit message", Err: err}
	}

	if response == nil || len(response.Choices) == 0 {
		return "", &app_errors.GenerationError{Msg: "could not generate a commit message: the model returned no candidates"}
	}

	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return "", &app_errors.GenerationError{Msg: "could not generate a commit message: the model returned empty text"}
	}

	return text, nil
}
