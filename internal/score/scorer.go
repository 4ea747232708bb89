package score

import (
	"fmt"

	"github.com/ppiankov/infofact/internal/model"
)

const (
	DefaultFalsePenalty    = 10
	DefaultEvidencePenalty = 5
)

// Scorer turns claim verdicts and fact-check evidence into a
// trustworthiness index
type Scorer struct {
	FalsePenalty    int // Per claim evaluated False
	EvidencePenalty int // Extra, per False claim with at least one published review
}

// NewScorer creates a scorer; non-positive penalties fall back to defaults
func NewScorer(cfg model.ScoringConfig) *Scorer {
	s := &Scorer{
		FalsePenalty:    cfg.FalsePenalty,
		EvidencePenalty: cfg.EvidencePenalty,
	}
	if s.FalsePenalty <= 0 {
		s.FalsePenalty = DefaultFalsePenalty
	}
	if s.EvidencePenalty <= 0 {
		s.EvidencePenalty = DefaultEvidencePenalty
	}
	return s
}

// Calculate scores evaluations against the evidence found per claim text.
//
//	index = max(0, 100 - FalsePenalty*false - EvidencePenalty*false_with_evidence)
//
// True and Unknown verdicts do not move the index. The result does not
// depend on evaluation order.
func (s *Scorer) Calculate(evaluations []model.Evaluation, evidence map[string][]model.Evidence) model.Score {
	if len(evaluations) == 0 {
		return model.Score{
			Index:      100,
			Confidence: "low",
			Signals: []model.Signal{{
				Type:        model.SignalNoClaims,
				Severity:    model.SeverityWarning,
				Description: "No evaluated claims",
				Data:        map[string]interface{}{"claims": 0},
			}},
		}
	}

	falseCount, corroborated, unknown := 0, 0, 0
	for _, ev := range evaluations {
		switch ev.Verdict {
		case model.VerdictFalse:
			falseCount++
			if hasEvidence(evidence[ev.Claim]) {
				corroborated++
			}
		case model.VerdictUnknown:
			unknown++
		}
	}

	index := 100 - s.FalsePenalty*falseCount - s.EvidencePenalty*corroborated
	if index < 0 {
		index = 0
	}

	signals := []model.Signal{
		s.falseClaimsSignal(falseCount, len(evaluations)),
		s.corroboratedSignal(corroborated, falseCount),
	}
	if unknown > 0 {
		signals = append(signals, model.Signal{
			Type:        model.SignalUnverified,
			Severity:    model.SeverityWarning,
			Description: fmt.Sprintf("%d of %d claims without a usable verdict", unknown, len(evaluations)),
			Data: map[string]interface{}{
				"unverified": unknown,
				"claims":     len(evaluations),
			},
		})
	}

	return model.Score{
		Index:      index,
		Confidence: determineConfidence(len(evaluations) - unknown),
		Signals:    signals,
	}
}

func (s *Scorer) falseClaimsSignal(falseCount, total int) model.Signal {
	ratio := float64(falseCount) / float64(total)

	severity := model.SeverityInfo
	if ratio >= 0.5 {
		severity = model.SeverityCritical
	} else if falseCount > 0 {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalFalseClaims,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d claims evaluated False", falseCount, total),
		Data: map[string]interface{}{
			"false":   falseCount,
			"claims":  total,
			"ratio":   ratio,
			"penalty": s.FalsePenalty * falseCount,
			"formula": fmt.Sprintf("%d * false_claims", s.FalsePenalty),
		},
	}
}

func (s *Scorer) corroboratedSignal(corroborated, falseCount int) model.Signal {
	severity := model.SeverityInfo
	if corroborated > 0 {
		severity = model.SeverityCritical
	}

	return model.Signal{
		Type:        model.SignalCorroborated,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d false claims have published fact-checks", corroborated, falseCount),
		Data: map[string]interface{}{
			"corroborated": corroborated,
			"false":        falseCount,
			"penalty":      s.EvidencePenalty * corroborated,
			"formula":      fmt.Sprintf("%d * false_claims_with_evidence", s.EvidencePenalty),
		},
	}
}

func hasEvidence(records []model.Evidence) bool {
	for _, e := range records {
		if !e.IsEmpty() {
			return true
		}
	}
	return false
}

// determineConfidence grades how much the index can be trusted by the
// number of claims that received a True or False verdict
func determineConfidence(evaluated int) string {
	switch {
	case evaluated >= 6:
		return "high"
	case evaluated >= 3:
		return "medium"
	default:
		return "low"
	}
}
