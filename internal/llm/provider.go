package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/infofact/internal/model"
	"github.com/ppiankov/infofact/internal/util"
)

// ErrMissingAPIKey is returned when a hosted provider is constructed without credentials
var ErrMissingAPIKey = errors.New("API key is required")

// Provider defines the interface for chat-completion providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one system+user exchange and returns the model's text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Ping makes the cheapest call that proves the credentials work
	Ping(ctx context.Context) error
}

// CompletionRequest is a single role-tagged exchange
type CompletionRequest struct {
	// System is the fixed instruction for the task
	System string

	// User carries the article (and prior step output) for this call
	User string

	// Model overrides the provider default
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature overrides the provider default when > 0
	Temperature float32

	// SchemaName and Schema request structured JSON output.
	// Schema is a pointer to the Go value the response will be decoded into.
	SchemaName string
	Schema     any
}

// Structured reports whether the caller asked for JSON output
func (r CompletionRequest) Structured() bool {
	return r.Schema != nil
}

// CompletionResponse contains the model output
type CompletionResponse struct {
	// Content is the raw text of the first choice
	Content string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, test servers)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for response generation
	Temperature float32

	// StructuredOutput allows JSON schema requests to reach the provider
	StructuredOutput bool

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:         "openai",
		Model:            "gpt-4o-mini",
		Timeout:          60,
		MaxTokens:        1500,
		Temperature:      0.2,
		StructuredOutput: true,
	}
}

// jsonOnlyInstruction is appended to the system prompt for providers without
// native schema support
const jsonOnlyInstruction = "\n\nRespond with a single JSON object only. Do not wrap it in code fences or add commentary."

// resolve fills request defaults from provider config
func (c Config) resolve(req CompletionRequest, fallbackModel string) (model string, maxTokens int, temperature float32) {
	model = req.Model
	if model == "" {
		model = c.Model
	}
	if model == "" {
		model = fallbackModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1500
	}

	temperature = req.Temperature
	if temperature == 0 {
		temperature = c.Temperature
	}

	return model, maxTokens, temperature
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:         strings.ToLower(modelConfig.Provider),
		Model:            modelConfig.Model,
		APIKey:           modelConfig.APIKey,
		BaseURL:          modelConfig.BaseURL,
		Timeout:          modelConfig.Timeout,
		MaxTokens:        modelConfig.MaxTokens,
		Temperature:      modelConfig.Temperature,
		StructuredOutput: modelConfig.StructuredOutput,
		HTTPProxy:        modelConfig.HTTPProxy,
		HTTPSProxy:       modelConfig.HTTPSProxy,
		NoProxy:          modelConfig.NoProxy,
	}
}

func (c Config) proxy() util.ProxyConfig {
	return util.ProxyConfig{HTTPProxy: c.HTTPProxy, HTTPSProxy: c.HTTPSProxy, NoProxy: c.NoProxy}
}

func missingKey(provider string) error {
	return fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
}
