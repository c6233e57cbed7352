package token_management

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/morler/commitgpt/constants/lipgloss"
	"github.com/morler/commitgpt/embed_data"
	"github.com/morler/commitgpt/token_management/contracts"
)

type tokenManager struct {
	mu              sync.Mutex
	out             io.Writer
	usedToken       int
	usedInputToken  int
	usedOutputToken int
}

type details struct {
	MaxTokens                  int     `json:"max_tokens"`
	MaxInputTokens             int     `json:"max_input_tokens"`
	MaxOutputTokens            int     `json:"max_output_tokens"`
	InputCostPerMillionTokens  float64 `json:"input_cost_per_million_tokens,omitempty"`
	OutputCostPerMillionTokens float64 `json:"output_cost_per_million_tokens,omitempty"`
	Mode                       string  `json:"mode"`
}

type Models struct {
	ModelDetails map[string]details `json:"models"`
}

var (
	modelsOnce   sync.Once
	parsedModels Models
	parseErr     error
)

// NewTokenManager creates a token manager that prints to stdout.
func NewTokenManager() contracts.ITokenManagement {
	return NewTokenManagerWithWriter(os.Stdout)
}

func NewTokenManagerWithWriter(out io.Writer) contracts.ITokenManagement {
	return &tokenManager{out: out}
}

// UsedTokens accumulates the token count for the invocation.
func (tm *tokenManager) UsedTokens(inputToken int, outputToken int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.usedInputToken += inputToken
	tm.usedOutputToken += outputToken
	tm.usedToken += inputToken + outputToken
}

func (tm *tokenManager) DisplayTokens(chatProviderName string, chatModel string) {
	total, input, output := tm.GetCurrentTokenUsage()
	cost := tm.CalculateCost(chatProviderName, chatModel, input, output)

	tokenInfo := fmt.Sprintf("Token Used: %d (in %d / out %d) - Cost: %.6f $ - Chat Model: %s", total, input, output, cost, chatModel)

	fmt.Fprintln(tm.out, lipgloss.BoxStyle.Render(tokenInfo))
}

func (tm *tokenManager) GetCurrentTokenUsage() (total int, input int, output int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.usedToken, tm.usedInputToken, tm.usedOutputToken
}

func (tm *tokenManager) ClearToken() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.usedToken = 0
	tm.usedInputToken = 0
	tm.usedOutputToken = 0
}

// CalculateCost returns 0 for models missing from the embedded price table, such as local Ollama models.
func (tm *tokenManager) CalculateCost(providerName string, modelName string, inputToken int, outputToken int) float64 {
	modelDetails, err := getModelDetails(providerName, modelName)
	if err != nil {
		return 0
	}
	inputCost := float64(inputToken) * modelDetails.InputCostPerMillionTokens / 1000000.0
	outputCost := float64(outputToken) * modelDetails.OutputCostPerMillionTokens / 1000000.0

	return inputCost + outputCost
}

func getModelDetails(providerName string, modelName string) (details, error) {
	providerName = strings.ToLower(providerName)
	modelName = strings.ToLower(modelName)

	modelsOnce.Do(func() {
		parsedModels = Models{ModelDetails: make(map[string]details)}
		parseErr = json.Unmarshal(embed_data.ModelDetails, &parsedModels)
	})
	if parseErr != nil {
		return details{}, fmt.Errorf("error unmarshaling model details: %w", parseErr)
	}

	model, exists := parsedModels.ModelDetails[modelName]
	if !exists {
		return details{}, fmt.Errorf("model details price with name '%s' not found for provider '%s'", modelName, providerName)
	}

	return model, nil
}
