package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/infofact/internal/extract"
	"github.com/ppiankov/infofact/internal/model"
	"github.com/ppiankov/infofact/internal/score"
)

const (
	FactualName        = "factual_consistency_agent"
	factualDescription = "Verifies the factual accuracy of the article by cross-referencing its claims with external sources."
)

// Factual extracts claims, judges them, looks up published fact-checks for
// the false ones and scores the article
type Factual struct {
	base
	search         Searcher
	scorer         *score.Scorer
	verifyOverview bool
}

// NewFactual requires both a model and a fact-check client
func NewFactual(deps Deps) (Agent, error) {
	b, err := newBase(FactualName, factualDescription, deps)
	if err != nil {
		return nil, err
	}
	if deps.FactCheck == nil {
		return nil, fmt.Errorf("%s: %w", FactualName, ErrNoSearcher)
	}

	scorer := deps.Scorer
	if scorer == nil {
		scorer = score.NewScorer(model.ScoringConfig{})
	}

	return &Factual{
		base:           b,
		search:         deps.FactCheck,
		scorer:         scorer,
		verifyOverview: deps.VerifyOverview,
	}, nil
}

// Process runs the claim pipeline. The summary is the accumulated log.
func (a *Factual) Process(ctx context.Context, article string) *model.Report {
	report := a.newReport()
	defer func() { report.Summary = strings.Join(report.Log, "\n") }()
	defer finish(report)

	claims, err := a.extractClaims(ctx, report, article)
	if err != nil {
		report.Fail("claim extraction", err)
		return report
	}
	report.Claims = claims

	if len(claims) == 0 {
		report.Logf("No factual claims found.")
	} else {
		report.Logf("Extracted %d claims:", len(claims))
		for _, c := range claims {
			report.Logf("- %s", c.Text)
		}
	}

	var evals []model.Evaluation
	if len(claims) > 0 {
		evals, err = a.evaluateClaims(ctx, report, article, claims)
		if err != nil {
			report.Fail("claim evaluation", err)
			return report
		}
		report.Evaluations = evals

		report.Logf("")
		report.Logf("Evaluation:")
		for _, ev := range evals {
			report.Logf("%s: %s", ev.Claim, ev.Verdict)
		}
	}

	evidence := a.searchEvidence(ctx, report, evals)

	sc := a.scorer.Calculate(evals, evidence)
	report.Score = &sc
	report.Logf("")
	report.Logf("Trustworthiness score: %d/100 (confidence: %s)", sc.Index, sc.Confidence)

	if a.verifyOverview {
		overview, _, err := a.complete(ctx, report, verifySystem, verifyPrompt(article), "", nil)
		if err != nil {
			report.Fail("accuracy overview", err)
		} else {
			report.Logf("")
			report.Logf("Accuracy overview:")
			report.Logf("%s", strings.TrimSpace(overview))
		}
	}

	return report
}

func (a *Factual) extractClaims(ctx context.Context, report *model.Report, article string) ([]model.Claim, error) {
	var out claimList
	text, decoded, err := a.complete(ctx, report,
		system(extractClaimsSystem, extractClaimsLineFormat, a.structured),
		extractClaimsPrompt(article), "claims", &out)
	if err != nil {
		return nil, err
	}

	if !decoded {
		return extract.ClaimLines(text), nil
	}

	claims := make([]model.Claim, 0, len(out.Claims))
	for _, c := range out.Claims {
		if c = strings.TrimSpace(c); c != "" {
			claims = append(claims, model.Claim{Text: c})
		}
	}
	return claims, nil
}

func (a *Factual) evaluateClaims(ctx context.Context, report *model.Report, article string, claims []model.Claim) ([]model.Evaluation, error) {
	texts := make([]string, len(claims))
	for i, c := range claims {
		texts[i] = c.Text
	}

	var out evaluationList
	text, decoded, err := a.complete(ctx, report,
		system(evaluateClaimsSystem, evaluateClaimsLineFormat, a.structured),
		evaluateClaimsPrompt(article, texts), "evaluations", &out)
	if err != nil {
		return nil, err
	}

	if !decoded {
		return extract.EvaluationLines(text), nil
	}

	evals := make([]model.Evaluation, 0, len(out.Evaluations))
	for _, item := range out.Evaluations {
		claim := strings.TrimSpace(item.Claim)
		if claim == "" {
			continue
		}
		evals = append(evals, model.Evaluation{
			Claim:       claim,
			Verdict:     model.ParseVerdict(item.Verdict),
			Explanation: strings.TrimSpace(item.Explanation),
		})
	}
	return evals, nil
}

// searchEvidence queries the fact-check service once per False claim.
// A failed search is recorded and counts as no evidence.
func (a *Factual) searchEvidence(ctx context.Context, report *model.Report, evals []model.Evaluation) map[string][]model.Evidence {
	byClaim := make(map[string][]model.Evidence)

	for _, ev := range evals {
		if ev.Verdict != model.VerdictFalse {
			continue
		}
		if _, done := byClaim[ev.Claim]; done {
			continue
		}

		found, err := a.search.Search(ctx, ev.Claim)
		if err != nil {
			report.Fail(fmt.Sprintf("evidence search for %q", ev.Claim), err)
			continue
		}
		byClaim[ev.Claim] = found
		report.Evidence = append(report.Evidence, found...)

		report.Logf("")
		if len(found) == 0 {
			report.Logf("No evidence found for: %s", ev.Claim)
			continue
		}
		report.Logf("Evidence for: %s", ev.Claim)
		for _, e := range found {
			report.Logf("- %s", formatEvidence(e))
		}
	}

	return byClaim
}

func formatEvidence(e model.Evidence) string {
	var b strings.Builder
	b.WriteString(e.Publisher)
	if e.Rating != "" {
		fmt.Fprintf(&b, " rated it %q", e.Rating)
	}
	if e.Title != "" {
		fmt.Fprintf(&b, ": %s", e.Title)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " (%s)", e.URL)
	}
	return strings.TrimSpace(b.String())
}
