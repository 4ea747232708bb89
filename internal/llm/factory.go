package llm

import (
	"fmt"
	"strings"
)

// constructors maps provider names, aliases included, to their constructor
var constructors = map[string]func(Config) (Provider, error){
	"openai":    func(c Config) (Provider, error) { return NewOpenAIProvider(c) },
	"anthropic": func(c Config) (Provider, error) { return NewAnthropicProvider(c) },
	"claude":    func(c Config) (Provider, error) { return NewAnthropicProvider(c) },
	"ollama":    func(c Config) (Provider, error) { return NewOllamaProvider(c) },
}

// NewProvider builds the provider named by config.Provider. Empty means openai.
func NewProvider(config Config) (Provider, error) {
	name := strings.ToLower(config.Provider)
	if name == "" {
		name = "openai"
	}
	build, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider %q (supported: openai, anthropic, ollama)", config.Provider)
	}
	return build(config)
}

// APIKeyEnv names the environment variable holding a provider's key.
// Ollama needs none and gets "".
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	case "ollama":
		return ""
	}
	return "OPENAI_API_KEY"
}
