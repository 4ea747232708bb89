// Package render writes analyses to disk and prints terminal summaries.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/infofact/internal/extract"
	"github.com/ppiankov/infofact/internal/model"
)

// Renderer writes analysis outputs
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer. The footer is appended to Markdown output.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the analysis as indented JSON
func (r *Renderer) RenderJSON(a *model.Analysis, path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the analysis text preceded by a score table
func (r *Renderer) RenderMarkdown(a *model.Analysis, path string) error {
	return writeFile(path, []byte(r.Markdown(a)))
}

// Markdown returns the Markdown document RenderMarkdown writes
func (r *Renderer) Markdown(a *model.Analysis) string {
	var b strings.Builder
	b.WriteString("# Article Credibility Analysis\n\n")

	b.WriteString("| Agent | Status | Score |\n")
	b.WriteString("|---|---|---|\n")
	for _, rep := range a.Reports {
		status := "ok"
		if rep.Failed() {
			status = fmt.Sprintf("%d error(s)", len(rep.Errors))
		}
		scoreCell := "-"
		if rep.Score != nil {
			scoreCell = fmt.Sprintf("%d/100 (%s)", rep.Score.Index, rep.Score.Confidence)
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", rep.Agent, status, scoreCell)
	}
	if len(a.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped unknown agents: %s\n", strings.Join(a.Skipped, ", "))
	}
	b.WriteString("\n")
	b.WriteString(a.Text())

	if r.includeFooter {
		b.WriteString("\n---\n\n")
		b.WriteString("_Generated by infofact. Verdicts come from a language model and published fact-checks; treat them as leads, not conclusions._\n")
	}
	return b.String()
}

// RenderSummary prints one line per report, plus one per rated source
func (r *Renderer) RenderSummary(w io.Writer, a *model.Analysis) {
	for _, rep := range a.Reports {
		switch {
		case rep.Failed():
			fmt.Fprintf(w, "✗ %s: %s\n", rep.Agent, rep.Errors[0])
		case rep.Score != nil:
			fmt.Fprintf(w, "✓ %s (score: %d/100, confidence: %s)\n", rep.Agent, rep.Score.Index, rep.Score.Confidence)
		default:
			fmt.Fprintf(w, "✓ %s\n", rep.Agent)
		}
		for _, c := range rep.Credibility {
			fmt.Fprintf(w, "    %s %s (%s)\n", extract.ReliabilityIcon(c.Reliability), c.Entity, c.Reliability)
		}
	}
	for _, name := range a.Skipped {
		fmt.Fprintf(w, "- %s: unknown agent, skipped\n", name)
	}
}

// Slug turns a source (URL or path) into a safe file name stem
func Slug(source string) string {
	s := strings.TrimSpace(source)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, filepath.Ext(s))

	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_'
		if ok {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash && b.Len() > 0 {
			b.WriteByte('-')
			lastDash = true
		}
	}

	out := strings.Trim(b.String(), "-.")
	if len(out) > 100 {
		out = strings.TrimRight(out[:100], "-.")
	}
	if out == "" {
		out = "article"
	}
	return out
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
