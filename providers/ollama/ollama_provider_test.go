package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/morler/commitgpt/providers/models"
	ollama_models "github.com/morler/commitgpt/providers/ollama/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatCompletion_NonStreamingRequest(t *testing.T) {
	var received ollama_models.OllamaChatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_, _ = w.Write([]byte(`{"model": "llama3", "message": {"role": "assistant", "content": "Update README"}, "done": true, "prompt_eval_count": 40, "eval_count": 4}`))
	}))
	defer server.Close()

	provider := NewOllamaChatProvider(&OllamaConfig{BaseURL: server.URL + "/api"})
	response, err := provider.ChatCompletion(context.Background(), models.ChatCompletionRequest{
		Model:       "llama3",
		Temperature: 0.3,
		Messages:    []models.Message{{Role: models.RoleSystem, Content: "s"}, {Role: models.RoleUser, Content: "u"}},
	})
	require.NoError(t, err)

	assert.False(t, received.Stream)
	require.NotNil(t, received.Options)
	assert.InDelta(t, 0.3, received.Options.Temperature, 0.0001)
	assert.Len(t, received.Messages, 2)

	require.Len(t, response.Choices, 1)
	assert.Equal(t, "Update README", response.Choices[0].Message.Content)
	assert.Equal(t, models.Usage{InputTokens: 40, OutputTokens: 4}, response.Usage)
}

func TestChatCompletion_EmptyMessageHasNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": {"role": "assistant", "content": ""}, "done": true}`))
	}))
	defer server.Close()

	provider := NewOllamaChatProvider(&OllamaConfig{BaseURL: server.URL})
	response, err := provider.ChatCompletion(context.Background(), models.ChatCompletionRequest{Model: "llama3"})
	require.NoError(t, err)
	assert.Empty(t, response.Choices)
}

func TestChatCompletion_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'llama9' not found"}`))
	}))
	defer server.Close()

	provider := NewOllamaChatProvider(&OllamaConfig{BaseURL: server.URL})
	_, err := provider.ChatCompletion(context.Background(), models.ChatCompletionRequest{Model: "llama9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model 'llama9' not found")
}
