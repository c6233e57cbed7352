package providers

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/morler/commitgpt/app_errors"
	"github.com/morler/commitgpt/providers/contracts"
	"github.com/morler/commitgpt/providers/ollama"
	"github.com/morler/commitgpt/providers/openai"
	contracts2 "github.com/morler/commitgpt/token_management/contracts"
)

// APIKeyEnv is consulted when no api key is set in the config file or flags.
const APIKeyEnv = "OPENAI_API_KEY"

// AIProviderConfig holds the settings for the chat completion provider.
type AIProviderConfig struct {
	Provider string        `mapstructure:"provider"`
	BaseURL  string        `mapstructure:"base_url"`
	Model    string        `mapstructure:"model"`
	ApiKey   string        `mapstructure:"api_key"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ResolveApiKey returns the explicit key when set, otherwise the OPENAI_API_KEY environment value.
func (c *AIProviderConfig) ResolveApiKey() string {
	if key := strings.TrimSpace(c.ApiKey); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(APIKeyEnv))
}

// NewChatProvider builds the configured provider.
func NewChatProvider(config *AIProviderConfig, tokenManagement contracts2.ITokenManagement) (contracts.IChatAIProvider, error) {
	switch strings.ToLower(config.Provider) {
	case "", "openai":
		return openai.NewOpenAIChatProvider(&openai.OpenAIConfig{
			BaseURL:         config.BaseURL,
			ApiKey:          config.ResolveApiKey(),
			Timeout:         config.Timeout,
			TokenManagement: tokenManagement,
		})
	case "ollama":
		return ollama.NewOllamaChatProvider(&ollama.OllamaConfig{
			BaseURL:         config.BaseURL,
			Timeout:         config.Timeout,
			TokenManagement: tokenManagement,
		}), nil
	default:
		return nil, &app_errors.ConfigError{Msg: fmt.Sprintf("provider '%s' is not supported (use 'openai' or 'ollama')", config.Provider)}
	}
}
