package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/morler/commitgpt/app_errors"
	"github.com/morler/commitgpt/providers/models"
	"github.com/morler/commitgpt/token_management"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIChatProvider_MissingKeyIsConfigError(t *testing.T) {
	provider, err := NewOpenAIChatProvider(&OpenAIConfig{ApiKey: "  "})
	require.Error(t, err)
	assert.Nil(t, provider)

	var configErr *app_errors.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestChatCompletion_SendsRequestAndMapsResponse(t *testing.T) {
	var received openAIChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Fix typo  "}}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 8}
		}`))
	}))
	defer server.Close()

	tokens := token_management.NewTokenManagerWithWriter(io.Discard)
	provider, err := NewOpenAIChatProvider(&OpenAIConfig{BaseURL: server.URL + "/v1/", ApiKey: "sk-test", TokenManagement: tokens})
	require.NoError(t, err)

	response, err := provider.ChatCompletion(context.Background(), models.ChatCompletionRequest{
		Model:       "gpt-4.1-mini",
		Temperature: 0.3,
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: "system"},
			{Role: models.RoleUser, Content: "user"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", received.Model)
	assert.InDelta(t, 0.3, received.Temperature, 0.0001)
	require.Len(t, received.Messages, 2)
	assert.Equal(t, models.RoleSystem, received.Messages[0].Role)
	assert.Equal(t, models.RoleUser, received.Messages[1].Role)

	require.Len(t, response.Choices, 1)
	assert.Equal(t, "  Fix typo  ", response.Choices[0].Message.Content)
	assert.Equal(t, models.Usage{InputTokens: 120, OutputTokens: 8}, response.Usage)

	total, input, output := tokens.GetCurrentTokenUsage()
	assert.Equal(t, 128, total)
	assert.Equal(t, 120, input)
	assert.Equal(t, 8, output)
}

func TestChatCompletion_ErrorStatus(t *testing.T) {
	t.Run("api error body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`))
		}))
		defer server.Close()

		provider, err := NewOpenAIChatProvider(&OpenAIConfig{BaseURL: server.URL, ApiKey: "sk-bad"})
		require.NoError(t, err)

		_, err = provider.ChatCompletion(context.Background(), models.ChatCompletionRequest{Model: "gpt-4.1-mini"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
		assert.Contains(t, err.Error(), "Incorrect API key provided")
	})

	t.Run("plain body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream unavailable"))
		}))
		defer server.Close()

		provider, err := NewOpenAIChatProvider(&OpenAIConfig{BaseURL: server.URL, ApiKey: "sk-test"})
		require.NoError(t, err)

		_, err = provider.ChatCompletion(context.Background(), models.ChatCompletionRequest{Model: "gpt-4.1-mini"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "upstream unavailable")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "åäö", truncate("åäöxyz", 3))
	assert.Equal(t, "short", truncate("short", 10))
}
