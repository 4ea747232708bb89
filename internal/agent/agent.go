// Package agent implements the article analysis agents and their registry.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/infofact/internal/authority"
	"github.com/ppiankov/infofact/internal/extract"
	"github.com/ppiankov/infofact/internal/llm"
	"github.com/ppiankov/infofact/internal/model"
	"github.com/ppiankov/infofact/internal/score"
)

var (
	// ErrNoProvider is returned when an agent needing a model has none
	ErrNoProvider = errors.New("no LLM provider configured")

	// ErrNoSearcher is returned when the factual agent has no fact-check client
	ErrNoSearcher = errors.New("no fact-check client configured")
)

// Agent analyzes one article. Process never fails: errors from external
// calls are recorded in the report and rendered into its summary.
type Agent interface {
	Name() string
	Description() string
	Process(ctx context.Context, article string) *model.Report
}

// Searcher looks up published fact-checks for a claim
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.Evidence, error)
}

// Deps are the shared collaborators handed to every agent constructor
type Deps struct {
	LLM       llm.Provider
	FactCheck Searcher
	Scorer    *score.Scorer
	Authority *authority.Classifier

	// Models maps agent name to a model override
	Models map[string]string

	// Structured asks providers for JSON output matching the step's schema
	Structured bool

	// VerifyOverview adds a free-form accuracy overview to the factual report
	VerifyOverview bool
}

// base carries what every agent needs to talk to the model
type base struct {
	name        string
	description string
	model       string
	llm         llm.Provider
	structured  bool
}

func newBase(name, description string, deps Deps) (base, error) {
	if deps.LLM == nil {
		return base{}, fmt.Errorf("%s: %w", name, ErrNoProvider)
	}
	return base{
		name:        name,
		description: description,
		model:       deps.Models[name],
		llm:         deps.LLM,
		structured:  deps.Structured,
	}, nil
}

func (b *base) Name() string        { return b.name }
func (b *base) Description() string { return b.description }

func (b *base) newReport() *model.Report {
	return &model.Report{
		Agent:     b.name,
		Model:     b.model,
		StartedAt: time.Now().UTC(),
	}
}

// complete runs one system+user exchange. When structured output is on and
// out is non-nil, the schema of out is sent along and the reply is decoded
// into it; decoded reports whether that worked. The raw text is always
// returned so callers can fall back to line parsing.
func (b *base) complete(ctx context.Context, report *model.Report, system, user, schemaName string, out any) (text string, decoded bool, err error) {
	req := llm.CompletionRequest{
		System: system,
		User:   user,
		Model:  b.model,
	}
	if b.structured && out != nil {
		req.SchemaName = schemaName
		req.Schema = out
	}

	resp, err := b.llm.Complete(ctx, req)
	if err != nil {
		return "", false, err
	}
	if resp.Model != "" {
		report.Model = resp.Model
	}

	if req.Structured() {
		decoded = extract.DecodeJSON(resp.Content, out) == nil
	}
	return resp.Content, decoded, nil
}

func finish(report *model.Report) *model.Report {
	report.Duration = time.Since(report.StartedAt)
	return report
}
