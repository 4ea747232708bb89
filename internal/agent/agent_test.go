package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/infofact/internal/factcheck"
	"github.com/ppiankov/infofact/internal/llm"
	"github.com/ppiankov/infofact/internal/model"
	"github.com/ppiankov/infofact/internal/score"
)

// mockProvider replays scripted replies in call order
type mockProvider struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	requests []llm.CompletionRequest
}

func (m *mockProvider) Name() string                   { return "mock" }
func (m *mockProvider) Ping(ctx context.Context) error { return nil }

func (m *mockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.requests)
	m.requests = append(m.requests, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.replies) {
		return nil, errors.New("unexpected call")
	}
	return &llm.CompletionResponse{Content: m.replies[i], Model: "mock-model"}, nil
}

type mockSearcher struct {
	results map[string][]model.Evidence
	errs    map[string]error
	queries []string
}

func (m *mockSearcher) Search(ctx context.Context, query string) ([]model.Evidence, error) {
	m.queries = append(m.queries, query)
	if err := m.errs[query]; err != nil {
		return nil, err
	}
	return m.results[query], nil
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	want := []string{FactualName, MetadataName, SentimentName}
	names := r.Names()
	if len(names) != len(want) {
		t.Fatalf("Expected %d agents, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("agent %d = %s, want %s", i, names[i], want[i])
		}
	}

	info := r.Info()
	for _, i := range info {
		if i.Description == "" {
			t.Errorf("%s has no description", i.Name)
		}
	}

	if _, ok := r.Lookup("metadata_agent"); !ok {
		t.Error("Expected metadata_agent to be registered")
	}
	if _, ok := r.Lookup("linguistic_agent"); ok {
		t.Error("Unexpected agent found")
	}
}

func TestNewRegistry_Rejects(t *testing.T) {
	newFn := func(Deps) (Agent, error) { return nil, nil }

	if _, err := NewRegistry(Definition{Name: "a", New: newFn}, Definition{Name: "a", New: newFn}); err == nil {
		t.Error("Expected duplicate name error")
	}
	if _, err := NewRegistry(Definition{Name: "", New: newFn}); err == nil {
		t.Error("Expected empty name error")
	}
	if _, err := NewRegistry(Definition{Name: "a"}); err == nil {
		t.Error("Expected missing constructor error")
	}
}

func TestRegistryBuild_MissingDependencies(t *testing.T) {
	r := Default()

	_, err := r.Build(Deps{})
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("Expected ErrNoProvider, got %v", err)
	}

	_, err = r.Build(Deps{LLM: &mockProvider{}})
	if !errors.Is(err, ErrNoSearcher) {
		t.Errorf("Expected ErrNoSearcher, got %v", err)
	}

	agents, err := r.Build(Deps{LLM: &mockProvider{}, FactCheck: &mockSearcher{}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(agents) != 3 || agents[0].Name() != FactualName {
		t.Errorf("Unexpected agents: %v", agents)
	}
}

func TestComplete_ModelOverride(t *testing.T) {
	p := &mockProvider{replies: []string{"Overall Tone: Neutral"}}
	a, _ := NewSentiment(Deps{LLM: p, Models: map[string]string{SentimentName: "gpt-4o"}})

	report := a.Process(context.Background(), "text")
	if p.requests[0].Model != "gpt-4o" {
		t.Errorf("Expected per-agent model override, got %q", p.requests[0].Model)
	}
	if report.Model != "mock-model" {
		t.Errorf("Expected report model from response, got %q", report.Model)
	}
}

func TestFactual_LineMode(t *testing.T) {
	p := &mockProvider{replies: []string{
		"Here are the claims:\nThe Eiffel Tower is located in Tampere, Finland.\nIt was constructed in 1889.\nIt attracts over 7 million visitors annually.\n",
		"The Eiffel Tower is located in Tampere, Finland: False\nIt was constructed in 1889: True\nIt attracts over 7 million visitors annually: False\n",
	}}
	s := &mockSearcher{results: map[string][]model.Evidence{
		"The Eiffel Tower is located in Tampere, Finland": {{
			Publisher: "PolitiFact", Rating: "Pants on Fire", Title: "Tower has not moved", URL: "https://www.politifact.com/x",
		}},
	}}

	a, err := NewFactual(Deps{LLM: p, FactCheck: s, Scorer: score.NewScorer(model.ScoringConfig{})})
	if err != nil {
		t.Fatalf("NewFactual failed: %v", err)
	}

	report := a.Process(context.Background(), "The Eiffel Tower ...")

	if len(report.Claims) != 3 {
		t.Fatalf("Expected 3 claims, got %d: %+v", len(report.Claims), report.Claims)
	}
	if len(report.Evaluations) != 3 {
		t.Fatalf("Expected 3 evaluations, got %d", len(report.Evaluations))
	}

	// Searched only the two False claims
	if len(s.queries) != 2 {
		t.Errorf("Expected 2 searches, got %v", s.queries)
	}

	// 100 - 2*10 - 1*5
	if report.Score == nil || report.Score.Index != 75 {
		t.Fatalf("Expected score 75, got %+v", report.Score)
	}

	for _, want := range []string{
		"Extracted 3 claims:",
		"It was constructed in 1889: True",
		"Evidence for: The Eiffel Tower is located in Tampere, Finland",
		`PolitiFact rated it "Pants on Fire": Tower has not moved (https://www.politifact.com/x)`,
		"No evidence found for: It attracts over 7 million visitors annually",
		"Trustworthiness score: 75/100",
	} {
		if !strings.Contains(report.Summary, want) {
			t.Errorf("Summary missing %q:\n%s", want, report.Summary)
		}
	}

	if p.requests[0].Schema != nil {
		t.Error("Structured output should be off unless requested")
	}
	if !strings.Contains(p.requests[0].System, "one claim per line") {
		t.Error("Expected line format instructions in plain-text mode")
	}
	if report.Failed() {
		t.Errorf("Unexpected errors: %v", report.Errors)
	}
}

func TestFactual_StructuredMode(t *testing.T) {
	p := &mockProvider{replies: []string{
		"```json\n{\"claims\": [\"The sky is green\", \"Water is wet\"]}\n```",
		`{"evaluations": [{"claim": "The sky is green", "verdict": "False", "explanation": "It is blue"}, {"claim": "Water is wet", "verdict": "True", "explanation": ""}]}`,
	}}
	s := &mockSearcher{}

	a, _ := NewFactual(Deps{LLM: p, FactCheck: s, Structured: true})
	report := a.Process(context.Background(), "article")

	if p.requests[0].Schema == nil || p.requests[0].SchemaName != "claims" {
		t.Errorf("Expected claims schema on first request, got %+v", p.requests[0])
	}
	if strings.Contains(p.requests[0].System, "one claim per line") {
		t.Error("Line format instructions should be omitted in structured mode")
	}

	if len(report.Evaluations) != 2 {
		t.Fatalf("Expected 2 evaluations, got %+v", report.Evaluations)
	}
	if report.Evaluations[0].Verdict != model.VerdictFalse || report.Evaluations[0].Explanation != "It is blue" {
		t.Errorf("Unexpected evaluation: %+v", report.Evaluations[0])
	}
	if report.Score.Index != 90 {
		t.Errorf("Expected 90, got %d", report.Score.Index)
	}
	if !strings.Contains(report.Summary, "No evidence found for: The sky is green") {
		t.Errorf("Unexpected summary:\n%s", report.Summary)
	}
}

func TestFactual_StructuredFallsBackToLines(t *testing.T) {
	p := &mockProvider{replies: []string{
		"The sky is green",
		"The sky is green: False",
	}}
	a, _ := NewFactual(Deps{LLM: p, FactCheck: &mockSearcher{}, Structured: true})
	report := a.Process(context.Background(), "article")

	if len(report.Claims) != 1 || report.Claims[0].Text != "The sky is green" {
		t.Errorf("Expected line fallback for claims, got %+v", report.Claims)
	}
	if len(report.Evaluations) != 1 || report.Evaluations[0].Verdict != model.VerdictFalse {
		t.Errorf("Expected line fallback for evaluations, got %+v", report.Evaluations)
	}
	if len(p.requests) != 2 {
		t.Errorf("Expected no retries, got %d requests", len(p.requests))
	}
}

func TestFactual_ExtractionFailure(t *testing.T) {
	p := &mockProvider{errs: []error{errors.New("connection refused")}}
	a, _ := NewFactual(Deps{LLM: p, FactCheck: &mockSearcher{}})

	report := a.Process(context.Background(), "article")

	if !report.Failed() {
		t.Fatal("Expected failure to be recorded")
	}
	if !strings.Contains(report.Summary, "Error during claim extraction: connection refused") {
		t.Errorf("Expected inline error, got %q", report.Summary)
	}
	if report.Score != nil {
		t.Error("No score without evaluations")
	}
}

func TestFactual_SearchFailureIsInline(t *testing.T) {
	p := &mockProvider{replies: []string{"A\nB", "A: False\nB: False"}}
	s := &mockSearcher{
		errs:    map[string]error{"A": errors.New("status 503")},
		results: map[string][]model.Evidence{"B": {{Publisher: "AFP", Rating: "False"}}},
	}
	a, _ := NewFactual(Deps{LLM: p, FactCheck: s})
	report := a.Process(context.Background(), "article")

	if len(report.Errors) != 1 || !strings.Contains(report.Errors[0], `evidence search for "A"`) {
		t.Errorf("Unexpected errors: %v", report.Errors)
	}
	// A: -10, B: -10 -5
	if report.Score.Index != 75 {
		t.Errorf("Expected 75, got %d", report.Score.Index)
	}
}

func TestFactual_NoClaims(t *testing.T) {
	p := &mockProvider{replies: []string{"\n\n"}}
	a, _ := NewFactual(Deps{LLM: p, FactCheck: &mockSearcher{}})
	report := a.Process(context.Background(), "")

	if len(p.requests) != 1 {
		t.Errorf("Expected evaluation to be skipped, got %d requests", len(p.requests))
	}
	if report.Score == nil || report.Score.Index != 100 {
		t.Errorf("Expected score 100, got %+v", report.Score)
	}
	if !strings.Contains(report.Summary, "No factual claims found.") {
		t.Errorf("Unexpected summary: %q", report.Summary)
	}
}

func TestFactual_VerifyOverview(t *testing.T) {
	p := &mockProvider{replies: []string{"A", "A: True", "The article places the tower in the wrong country."}}
	a, _ := NewFactual(Deps{LLM: p, FactCheck: &mockSearcher{}, VerifyOverview: true})
	report := a.Process(context.Background(), "article")

	if len(p.requests) != 3 {
		t.Fatalf("Expected 3 requests, got %d", len(p.requests))
	}
	if p.requests[2].Schema != nil {
		t.Error("Overview is free-form")
	}
	if !strings.Contains(report.Summary, "Accuracy overview:\nThe article places the tower in the wrong country.") {
		t.Errorf("Unexpected summary:\n%s", report.Summary)
	}
}

func TestFactual_SearchErrorHidesAPIKey(t *testing.T) {
	fc, err := factcheck.NewClient(model.FactCheckConfig{
		APIKey:  "SUPERSECRET123",
		BaseURL: "http://127.0.0.1:1",
		Timeout: 2,
	}, nil, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	p := &mockProvider{replies: []string{"The sky is green", "The sky is green: False"}}
	a, _ := NewFactual(Deps{LLM: p, FactCheck: fc})
	report := a.Process(context.Background(), "The sky is green.")

	if len(report.Errors) != 1 {
		t.Fatalf("Expected the failed search to be recorded, got %v", report.Errors)
	}
	if strings.Contains(report.Summary, "SUPERSECRET123") {
		t.Errorf("API key leaked into summary:\n%s", report.Summary)
	}
	for _, e := range report.Errors {
		if strings.Contains(e, "SUPERSECRET123") {
			t.Errorf("API key leaked into error %q", e)
		}
	}
}
