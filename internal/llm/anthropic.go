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

const (
	anthropicBaseURL      = "https://api.anthropic.com"
	anthropicVersion      = "2023-06-01"
	anthropicDefaultModel = "claude-3-5-sonnet-20241022"
)

// AnthropicProvider talks to the Anthropic Messages API
type AnthropicProvider struct {
	api    *endpoint
	config Config
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature float32            `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// text joins the text blocks of a reply
func (r *anthropicResponse) text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if block.Type == "" || block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

// anthropicDetail reads {"error": {"type": ..., "message": ...}}
func anthropicDetail(body []byte) string {
	var e struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil || e.Error.Message == "" {
		return ""
	}
	return e.Error.Type + ": " + e.Error.Message
}

// NewAnthropicProvider creates a provider for Claude models
func NewAnthropicProvider(config Config) (*AnthropicProvider, error) {
	if config.APIKey == "" {
		return nil, missingKey("anthropic")
	}

	base := config.BaseURL
	if base == "" {
		base = anthropicBaseURL
	}

	header := http.Header{}
	header.Set("x-api-key", config.APIKey)
	header.Set("anthropic-version", anthropicVersion)

	return &AnthropicProvider{
		api: &endpoint{
			base:   strings.TrimSuffix(base, "/"),
			client: util.NewHTTPClient(timeoutOr(config.Timeout, 60*time.Second), config.proxy()),
			header: header,
			detail: anthropicDetail,
		},
		config: config,
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Ping spends a one-token message to confirm the key is accepted
func (p *AnthropicProvider) Ping(ctx context.Context) error {
	model, _, _ := p.config.resolve(CompletionRequest{}, anthropicDefaultModel)
	req := anthropicRequest{
		Model:     model,
		MaxTokens: 1,
		Messages:  []anthropicMessage{{Role: "user", Content: "ping"}},
	}
	return p.api.call(ctx, http.MethodPost, "/v1/messages", req, nil)
}

// Complete runs one exchange against the Messages API
func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	model, maxTokens, temperature := p.config.resolve(req, anthropicDefaultModel)

	system := req.System
	if req.Structured() && p.config.StructuredOutput {
		system += jsonOnlyInstruction
	}

	var resp anthropicResponse
	err := p.api.call(ctx, http.MethodPost, "/v1/messages", anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      system,
		Messages:    []anthropicMessage{{Role: "user", Content: req.User}},
		Temperature: temperature,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	content := resp.text()
	if content == "" {
		return nil, errors.New("anthropic: reply has no text content")
	}

	return &CompletionResponse{
		Content:    content,
		Model:      resp.Model,
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}
