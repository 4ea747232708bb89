package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/infofact/internal/extract"
	"github.com/ppiankov/infofact/internal/model"
)

const (
	SentimentName        = "sentiment_analysis_agent"
	sentimentDescription = "Analyzes the sentiment of the article, identifying whether the tone is positive, negative, or neutral."
)

// Sentiment produces the four-field tone report
type Sentiment struct {
	base
}

func NewSentiment(deps Deps) (Agent, error) {
	b, err := newBase(SentimentName, sentimentDescription, deps)
	if err != nil {
		return nil, err
	}
	return &Sentiment{base: b}, nil
}

func (a *Sentiment) Process(ctx context.Context, article string) *model.Report {
	report := a.newReport()
	defer finish(report)

	var out sentimentReport
	text, decoded, err := a.complete(ctx, report,
		system(sentimentSystem, sentimentLineFormat, a.structured),
		sentimentPrompt(article), "sentiment", &out)
	if err != nil {
		report.Summary = report.Fail("sentiment analysis", err)
		return report
	}

	var s model.Sentiment
	if decoded {
		s = fromSentimentReport(out)
	} else {
		s = extract.SentimentFields(text)
	}
	report.Sentiment = &s
	report.Summary = renderSentiment(s)
	return report
}

func fromSentimentReport(r sentimentReport) model.Sentiment {
	s := model.Sentiment{
		OverallTone:   strings.TrimSpace(r.OverallTone),
		BiasScore:     r.BiasScore,
		KeyHighlights: strings.Join(r.KeyHighlights, "; "),
		Impact:        strings.TrimSpace(r.Impact),
	}
	if s.BiasScore < 0 || s.BiasScore > 100 {
		s.BiasScore = -1
	}
	if s.OverallTone == "" {
		s.OverallTone = "Unknown"
	}
	if s.KeyHighlights == "" {
		s.KeyHighlights = "Unknown"
	}
	if s.Impact == "" {
		s.Impact = "Unknown"
	}
	return s
}

func renderSentiment(s model.Sentiment) string {
	score := "Unknown"
	if s.BiasScore >= 0 {
		score = fmt.Sprintf("%d/100", s.BiasScore)
	}
	return fmt.Sprintf("Overall Tone: %s\nSentiment Bias Score: %s\nKey Highlights: %s\nImpact: %s",
		s.OverallTone, score, s.KeyHighlights, s.Impact)
}
