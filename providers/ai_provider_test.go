package providers

import (
	"errors"
	"testing"

	"github.com/morler/commitgpt/app_errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveApiKey_Precedence(t *testing.T) {
	t.Setenv(APIKeyEnv, "sk-env")

	explicit := &AIProviderConfig{ApiKey: "sk-file"}
	assert.Equal(t, "sk-file", explicit.ResolveApiKey())

	fallback := &AIProviderConfig{}
	assert.Equal(t, "sk-env", fallback.ResolveApiKey())
}

func TestNewChatProvider(t *testing.T) {
	t.Setenv(APIKeyEnv, "")

	_, err := NewChatProvider(&AIProviderConfig{Provider: "openai"}, nil)
	var configErr *app_errors.ConfigError
	require.True(t, errors.As(err, &configErr))

	provider, err := NewChatProvider(&AIProviderConfig{Provider: "OpenAI", ApiKey: "sk-test"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", provider.Name())

	provider, err = NewChatProvider(&AIProviderConfig{Provider: "ollama"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ollama", provider.Name())

	_, err = NewChatProvider(&AIProviderConfig{Provider: "anthropic"}, nil)
	require.True(t, errors.As(err, &configErr))
	assert.Contains(t, err.Error(), "anthropic")
}
