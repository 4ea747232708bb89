package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/infofact/internal/util"
)

const ollamaBaseURL = "http://localhost:11434"

// errNoOllamaModel is returned when neither the request nor config names a model
var errNoOllamaModel = errors.New("ollama model must be specified (e.g. llama3.1:8b, mistral)")

// OllamaProvider runs completions on a local Ollama daemon
type OllamaProvider struct {
	api    *endpoint
	config Config
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Format  string        `json:"format,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
}

// NewOllamaProvider creates a provider for a local daemon. No key is needed.
func NewOllamaProvider(config Config) (*OllamaProvider, error) {
	base := config.BaseURL
	if base == "" {
		base = ollamaBaseURL
	}

	return &OllamaProvider{
		api: &endpoint{
			base: strings.TrimSuffix(base, "/"),
			// local models answer slowly
			client: util.NewHTTPClient(timeoutOr(config.Timeout, 120*time.Second), config.proxy()),
			detail: func(body []byte) string {
				var e struct {
					Error string `json:"error"`
				}
				_ = json.Unmarshal(body, &e)
				return e.Error
			},
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Ping lists local models to confirm the daemon answers
func (p *OllamaProvider) Ping(ctx context.Context) error {
	if err := p.api.call(ctx, http.MethodGet, "/api/tags", nil, nil); err != nil {
		return fmt.Errorf("ollama at %s: %w", p.api.base, err)
	}
	return nil
}

// Complete runs one non-streaming generation
func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model, maxTokens, temperature := p.config.resolve(req, "")
	if model == "" {
		return nil, errNoOllamaModel
	}

	in := ollamaRequest{
		Model:   model,
		Prompt:  req.User,
		System:  req.System,
		Options: ollamaOptions{Temperature: temperature, NumPredict: maxTokens},
	}
	if req.Structured() && p.config.StructuredOutput {
		in.System += jsonOnlyInstruction
		in.Format = "json"
	}

	var resp ollamaResponse
	if err := p.api.call(ctx, http.MethodPost, "/api/generate", in, &resp); err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}

	content := strings.TrimSpace(resp.Response)
	used := resp.PromptEvalCount + resp.EvalCount
	if used == 0 {
		// about four characters per token
		used = (len(in.System) + len(in.Prompt) + len(content)) / 4
	}

	return &CompletionResponse{Content: content, Model: resp.Model, TokensUsed: used}, nil
}
