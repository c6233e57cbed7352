package openai

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

	"github.com/morler/commitgpt/app_errors"
	"github.com/morler/commitgpt/providers/contracts"
	"github.com/morler/commitgpt/providers/models"
	contracts2 "github.com/morler/commitgpt/token_management/contracts"
)

// OpenAIConfig implements the Provider interface for OpenAI-compatible chat completion APIs.
type OpenAIConfig struct {
	BaseURL         string
	ApiKey          string
	Timeout         time.Duration
	TokenManagement contracts2.ITokenManagement
	httpClient      *http.Client
}

const (
	defaultBaseURL = "https://api.openai.com/v1"
	providerName   = "openai"
)

type openAIChatCompletionRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	Temperature float32          `json:"temperature"`
}

type openAIChatCompletionResponse struct {
	Choices []struct {
		Index   int            `json:"index"`
		Message models.Message `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// NewOpenAIChatProvider initializes a new OpenAI provider. It fails before any
// request is made when no API key is available.
func NewOpenAIChatProvider(config *OpenAIConfig) (contracts.IChatAIProvider, error) {
	if strings.TrimSpace(config.ApiKey) == "" {
		return nil, &app_errors.ConfigError{
			Msg: "no OpenAI API key found: set ai_provider_config.api_key in commitgpt-config.yaml, pass --api_key, or export OPENAI_API_KEY",
		}
	}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &OpenAIConfig{
		BaseURL:         baseURL,
		ApiKey:          config.ApiKey,
		Timeout:         config.Timeout,
		TokenManagement: config.TokenManagement,
		httpClient:      &http.Client{Timeout: config.Timeout},
	}, nil
}

func (openAIProvider *OpenAIConfig) Name() string {
	return providerName
}

func (openAIProvider *OpenAIConfig) ChatCompletion(ctx context.Context, request models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	reqBody := openAIChatCompletionRequest{
		Model:       request.Model,
		Messages:    request.Messages,
		Temperature: request.Temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/chat/completions", openAIProvider.BaseURL), bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+openAIProvider.ApiKey)

	resp, err := openAIProvider.httpClient.Do(req)
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
		var apiError models.AIError
		if err := json.Unmarshal(body, &apiError); err != nil || apiError.Error.Message == "" {
			return nil, fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, truncate(string(body), 400))
		}
		return nil, fmt.Errorf("API request failed with status code '%d' - %s", resp.StatusCode, apiError.Error.Message)
	}

	var parsed openAIChatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %w", err)
	}

	result := &models.ChatCompletionResponse{}
	for _, choice := range parsed.Choices {
		result.Choices = append(result.Choices, models.Choice{Index: choice.Index, Message: choice.Message})
	}

	if parsed.Usage != nil {
		result.Usage = models.Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
		}
		if openAIProvider.TokenManagement != nil {
			openAIProvider.TokenManagement.UsedTokens(result.Usage.InputTokens, result.Usage.OutputTokens)
		}
	}

	return result, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
