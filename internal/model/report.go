package model

import (
	"fmt"
	"strings"
	"time"
)

// Report is the single result contract shared by every agent.
// Summary is always populated and is what gets displayed; the remaining
// fields are structured detail, filled in by the agents that produce them.
type Report struct {
	Agent   string `json:"agent"`
	Summary string `json:"summary"`
	Model   string `json:"model,omitempty"`

	Score       *Score        `json:"score,omitempty"`
	Claims      []Claim       `json:"claims,omitempty"`
	Evaluations []Evaluation  `json:"evaluations,omitempty"`
	Evidence    []Evidence    `json:"evidence,omitempty"`
	Entities    []Entity      `json:"entities,omitempty"`
	Credibility []Credibility `json:"credibility,omitempty"`
	Sentiment   *Sentiment    `json:"sentiment,omitempty"`

	Log    []string `json:"log,omitempty"`    // Step-by-step progress lines
	Errors []string `json:"errors,omitempty"` // Failures caught during external calls

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Logf appends a formatted progress line
func (r *Report) Logf(format string, args ...interface{}) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// Fail records an external-call failure and mirrors it into the log so it
// shows up inline in the summary.
func (r *Report) Fail(step string, err error) string {
	msg := fmt.Sprintf("Error during %s: %v", step, err)
	r.Errors = append(r.Errors, msg)
	r.Log = append(r.Log, msg)
	return msg
}

// Failed reports whether any external call failed
func (r *Report) Failed() bool {
	return len(r.Errors) > 0
}

// Score represents the trustworthiness score and its breakdown
type Score struct {
	Index      int      `json:"index"`      // 0-100
	Confidence string   `json:"confidence"` // "low", "medium", "high"
	Signals    []Signal `json:"signals"`
}

// Signal represents a diagnostic signal with transparent scoring data
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalFalseClaims  SignalType = "false_claims" // Claims evaluated False
	SignalCorroborated SignalType = "corroborated" // False claims with published fact-checks
	SignalUnverified   SignalType = "unverified"   // Claims without a usable verdict
	SignalNoClaims     SignalType = "no_claims"    // Nothing to evaluate
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// AgentInfo describes a registered agent
type AgentInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Analysis is the combined result of dispatching one article to a set of agents
type Analysis struct {
	SessionID string    `json:"session_id,omitempty"`
	Article   string    `json:"article"`
	Reports   []*Report `json:"reports"`
	Skipped   []string  `json:"skipped,omitempty"` // Requested names that are not registered
}

// Text renders the analysis as the display block returned to clients
func (a *Analysis) Text() string {
	parts := make([]string, 0, len(a.Reports)+1)
	parts = append(parts, fmt.Sprintf("### Article\n\n%s\n", a.Article))
	for _, r := range a.Reports {
		parts = append(parts, fmt.Sprintf("### %s\n\n%s\n", r.Agent, r.Summary))
	}
	return strings.Join(parts, "\n")
}

// Exchange is one request/response pair kept in a session's history
type Exchange struct {
	Request  string    `json:"request"`
	Response string    `json:"response"`
	At       time.Time `json:"at"`
}
