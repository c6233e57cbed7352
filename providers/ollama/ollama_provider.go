package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/morler/commitgpt/providers/contracts"
	"github.com/morler/commitgpt/providers/models"
	ollama_models "github.com/morler/commitgpt/providers/ollama/models"
	contracts2 "github.com/morler/commitgpt/token_management/contracts"
)

// OllamaConfig implements the Provider interface for a local Ollama server.
type OllamaConfig struct {
	BaseURL         string
	Timeout         time.Duration
	TokenManagement contracts2.ITokenManagement
	httpClient      *http.Client
}

const (
	defaultBaseURL = "http://localhost:11434/api"
	providerName   = "ollama"
)

// NewOllamaChatProvider initializes a new Ollama provider. No credential is required.
func NewOllamaChatProvider(config *OllamaConfig) contracts.IChatAIProvider {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OllamaConfig{
		BaseURL:         baseURL,
		Timeout:         config.Timeout,
		TokenManagement: config.TokenManagement,
		httpClient:      &http.Client{Timeout: config.Timeout},
	}
}

func (ollamaProvider *OllamaConfig) Name() string {
	return providerName
}

func (ollamaProvider *OllamaConfig) ChatCompletion(ctx context.Context, request models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	reqBody := ollama_models.OllamaChatCompletionRequest{
		Model:    request.Model,
		Messages: request.Messages,
		Stream:   false,
		Options:  &ollama_models.Options{Temperature: request.Temperature},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/chat", ollamaProvider.BaseURL), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := ollamaProvider.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("request canceled: %w", err)
		}
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiError struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &apiError); err != nil || apiError.Error == "" {
			return nil, fmt.Errorf("API request failed with status code '%d'", resp.StatusCode)
		}
		return nil, fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, apiError.Error)
	}

	var response ollama_models.OllamaChatCompletionResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %w", err)
	}

	result := &models.ChatCompletionResponse{
		Usage: models.Usage{InputTokens: response.PromptEvalCount, OutputTokens: response.EvalCount},
	}
	// Ollama answers with a single message; an empty one is reported as no candidates.
	if response.Message.Content != "" {
		result.Choices = []models.Choice{{Index: 0, Message: response.Message}}
	}

	if response.PromptEvalCount > 0 && ollamaProvider.TokenManagement != nil {
		ollamaProvider.TokenManagement.UsedTokens(response.PromptEvalCount, response.EvalCount)
	}

	return result, nil
}
