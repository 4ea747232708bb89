package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/infofact/internal/model"
)

const metadataArticle = "According to The New York Times (https://www.nytimes.com), " +
	"John Kerry emphasized the need for action. Data from https://someblog.example.net/post " +
	"was cited, and John Kerry repeated it."

func TestMetadata_LineMode(t *testing.T) {
	p := &mockProvider{replies: []string{`URLs:
- https://www.nytimes.com: Reliability: High. Bias: Neutral. Trustworthiness: Established newspaper.
- https://someblog.example.net/post: Reliability: Low. Bias: Strongly Biased. Trustworthiness: Unknown author.

Persons:
- John Kerry: Reliability: Medium. Bias: Slightly Biased. Trustworthiness: Public official.`}}

	a, _ := NewMetadata(Deps{LLM: p})
	report := a.Process(context.Background(), metadataArticle)

	prompt := p.requests[0].User
	if strings.Count(prompt, "John Kerry") != 1 {
		t.Errorf("Expected deduplicated persons in prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "https://www.nytimes.com\n") {
		t.Errorf("Expected URL without trailing punctuation in prompt:\n%s", prompt)
	}

	if !strings.HasPrefix(report.Summary, "### Metadata Analysis\n\n") {
		t.Errorf("Missing heading: %q", report.Summary)
	}
	for _, want := range []string{
		"✅ - https://www.nytimes.com: Reliability: High.",
		"❌ - https://someblog.example.net/post: Reliability: Low.",
		"⚠️ - John Kerry: Reliability: Medium.",
		"Source authority:\n- https://www.nytimes.com: secondary\n- https://someblog.example.net/post: tertiary",
	} {
		if !strings.Contains(report.Summary, want) {
			t.Errorf("Summary missing %q:\n%s", want, report.Summary)
		}
	}

	if len(report.Credibility) != 3 {
		t.Fatalf("Expected 3 credibility entries, got %+v", report.Credibility)
	}
	if report.Credibility[2].Kind != model.EntityPerson {
		t.Errorf("Expected person kind, got %+v", report.Credibility[2])
	}

	// Persons heuristic also matches "The New", "New York" etc.
	var urls int
	for _, e := range report.Entities {
		if e.Kind == model.EntityURL {
			urls++
		}
	}
	if urls != 2 {
		t.Errorf("Expected 2 URL entities, got %d", urls)
	}
}

func TestMetadata_StructuredMode(t *testing.T) {
	p := &mockProvider{replies: []string{`{"entities": [
		{"entity": "https://www.nytimes.com", "kind": "url", "reliability": "High", "bias": "Neutral", "trustworthiness": "Established newspaper."},
		{"entity": "John Kerry", "kind": "person", "reliability": "Medium", "bias": "Slightly Biased", "trustworthiness": "Public official"}
	]}`}}

	a, _ := NewMetadata(Deps{LLM: p, Structured: true})
	report := a.Process(context.Background(), metadataArticle)

	if p.requests[0].SchemaName != "credibility" {
		t.Errorf("Expected credibility schema, got %q", p.requests[0].SchemaName)
	}
	want := "### Metadata Analysis\n\nURLs:\n✅ - https://www.nytimes.com: Reliability: High. Bias: Neutral. Trustworthiness: Established newspaper.\n\nPersons:\n⚠️ - John Kerry: Reliability: Medium. Bias: Slightly Biased. Trustworthiness: Public official."
	if !strings.HasPrefix(report.Summary, want) {
		t.Errorf("Unexpected summary:\n%s\nwant prefix:\n%s", report.Summary, want)
	}
}

func TestMetadata_NoEntities(t *testing.T) {
	p := &mockProvider{}
	a, _ := NewMetadata(Deps{LLM: p})
	report := a.Process(context.Background(), "the president said nothing of note.")

	if len(p.requests) != 0 {
		t.Error("Expected no model call without entities")
	}
	if report.Summary != "### Metadata Analysis\n\nNo URLs or persons found in the article." {
		t.Errorf("Unexpected summary: %q", report.Summary)
	}
}

func TestMetadata_Failure(t *testing.T) {
	p := &mockProvider{errs: []error{errors.New("timeout")}}
	a, _ := NewMetadata(Deps{LLM: p})
	report := a.Process(context.Background(), "See https://www.reuters.com/x")

	if !strings.Contains(report.Summary, "Error during credibility analysis: timeout") {
		t.Errorf("Expected inline error, got %q", report.Summary)
	}
	if !strings.Contains(report.Summary, "- https://www.reuters.com/x: secondary") {
		t.Errorf("Expected local authority section despite failure, got %q", report.Summary)
	}
}
