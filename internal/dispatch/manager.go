// Package dispatch routes an article to a selection of agents and collects
// their reports.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/ppiankov/infofact/internal/agent"
	"github.com/ppiankov/infofact/internal/model"
	"github.com/ppiankov/infofact/internal/worker"
)

// ErrNoAgents is returned when a request selects no agents
var ErrNoAgents = errors.New("no agents selected")

// Observer is called once per finished agent run
type Observer func(report *model.Report)

// Manager owns the constructed agents
type Manager struct {
	agents       map[string]agent.Agent
	info         []model.AgentInfo
	systemPrompt string
	parallel     bool
	workers      int
	logger       *log.Logger
	observer     Observer
}

// Option configures a Manager
type Option func(*Manager)

// WithParallel runs selected agents concurrently on up to workers goroutines
func WithParallel(workers int) Option {
	return func(m *Manager) {
		m.parallel = true
		m.workers = workers
	}
}

// WithLogger sets the dispatch logger
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithObserver registers a per-run callback
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// New constructs every registered agent. Any constructor failure (for
// example missing credentials) fails the whole manager.
func New(registry *agent.Registry, deps agent.Deps, opts ...Option) (*Manager, error) {
	agents, err := registry.Build(deps)
	if err != nil {
		return nil, err
	}
	return NewManager(agents, opts...), nil
}

// NewManager wraps already constructed agents, keeping their order
func NewManager(agents []agent.Agent, opts ...Option) *Manager {
	m := &Manager{
		agents:  make(map[string]agent.Agent, len(agents)),
		workers: 1,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, a := range agents {
		if _, dup := m.agents[a.Name()]; dup {
			continue
		}
		m.agents[a.Name()] = a
		m.info = append(m.info, model.AgentInfo{Name: a.Name(), Description: a.Description()})
	}
	for _, opt := range opts {
		opt(m)
	}
	m.systemPrompt = buildSystemPrompt(m.info)
	return m
}

// List returns the available agents in registration order
func (m *Manager) List() []model.AgentInfo {
	out := make([]model.AgentInfo, len(m.info))
	copy(out, m.info)
	return out
}

// ListText renders List for plain-text clients
func (m *Manager) ListText() string {
	lines := make([]string, 0, len(m.info)+1)
	lines = append(lines, "Available agents:")
	for _, a := range m.info {
		lines = append(lines, fmt.Sprintf("%s - %s", a.Name, a.Description))
	}
	return strings.Join(lines, "\n")
}

// SystemPrompt describes the available agents to an orchestrating model
func (m *Manager) SystemPrompt() string {
	return m.systemPrompt
}

func buildSystemPrompt(info []model.AgentInfo) string {
	var b strings.Builder
	b.WriteString("You are an assistant that analyzes news articles for trustworthiness.\n")
	b.WriteString("The following agents evaluate an article from different angles:\n")
	for i, a := range info {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, a.Name, a.Description)
	}
	b.WriteString("\nYour task is to:\n")
	b.WriteString("1. Provide the article to the selected agents.\n")
	b.WriteString("2. Collect the findings each agent reports.\n")
	b.WriteString("3. Combine those findings into a trustworthiness assessment with a detailed explanation.\n")
	b.WriteString("\nCover factual consistency, source and author credibility, and bias in tone.")
	return b.String()
}

// ParseSelection splits a comma-separated agent list. Blank entries and
// repeats are dropped; order is kept.
func ParseSelection(raw string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Run sends article to the named agents and returns their reports in
// selection order. Unknown names are listed in Skipped. ErrNoAgents is the
// only error: agent failures are part of the reports.
func (m *Manager) Run(ctx context.Context, article string, names []string) (*model.Analysis, error) {
	var selected []agent.Agent
	analysis := &model.Analysis{Article: article}
	requested := 0

	seen := make(map[string]bool)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		requested++

		a, ok := m.agents[n]
		if !ok {
			analysis.Skipped = append(analysis.Skipped, n)
			continue
		}
		selected = append(selected, a)
	}

	if requested == 0 {
		return nil, ErrNoAgents
	}
	if len(analysis.Skipped) > 0 {
		m.logger.Printf("skipping unknown agents: %s", strings.Join(analysis.Skipped, ", "))
	}

	if m.parallel && len(selected) > 1 {
		analysis.Reports = worker.Map(ctx, m.workers, len(selected), func(ctx context.Context, i int) *model.Report {
			return m.runAgent(ctx, selected[i], article)
		})
	} else {
		analysis.Reports = make([]*model.Report, 0, len(selected))
		for _, a := range selected {
			analysis.Reports = append(analysis.Reports, m.runAgent(ctx, a, article))
		}
	}

	// A task dropped by a cancelled pool leaves a nil slot
	for i, r := range analysis.Reports {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = errors.New("not run")
			}
			r = &model.Report{Agent: selected[i].Name(), StartedAt: time.Now().UTC()}
			r.Summary = r.Fail("agent execution", err)
			analysis.Reports[i] = r
		}
	}

	return analysis, nil
}

// runAgent isolates one agent run; a panic becomes a failed report
func (m *Manager) runAgent(ctx context.Context, a agent.Agent, article string) (report *model.Report) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			report = &model.Report{Agent: a.Name(), StartedAt: start.UTC(), Duration: time.Since(start)}
			report.Summary = report.Fail("agent execution", fmt.Errorf("panic: %v", r))
		}
		m.logger.Printf("agent=%s duration=%s errors=%d", report.Agent, time.Since(start).Round(time.Millisecond), len(report.Errors))
		if m.observer != nil {
			m.observer(report)
		}
	}()

	report = a.Process(ctx, article)
	if report == nil {
		report = &model.Report{Agent: a.Name(), StartedAt: start.UTC(), Duration: time.Since(start)}
	}
	if report.Agent == "" {
		report.Agent = a.Name()
	}
	return report
}
