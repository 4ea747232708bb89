package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/infofact/internal/authority"
	"github.com/ppiankov/infofact/internal/extract"
	"github.com/ppiankov/infofact/internal/model"
)

const (
	MetadataName        = "metadata_agent"
	metadataDescription = "Analyzes the credibility of URLs and persons mentioned within the article."
)

const metadataHeading = "### Metadata Analysis"

// Metadata rates the sources and people an article cites
type Metadata struct {
	base
	authority *authority.Classifier
}

func NewMetadata(deps Deps) (Agent, error) {
	b, err := newBase(MetadataName, metadataDescription, deps)
	if err != nil {
		return nil, err
	}

	classifier := deps.Authority
	if classifier == nil {
		classifier = authority.NewClassifier(model.DefaultConfig().Authority)
	}

	return &Metadata{base: b, authority: classifier}, nil
}

func (a *Metadata) Process(ctx context.Context, article string) *model.Report {
	report := a.newReport()
	defer finish(report)

	urls := extract.Unique(extract.URLs(article))
	persons := extract.Unique(extract.Persons(article))
	report.Entities = a.authority.Entities(urls, persons)
	report.Logf("Found %d URLs and %d persons", len(urls), len(persons))

	if len(urls) == 0 && len(persons) == 0 {
		report.Summary = metadataHeading + "\n\nNo URLs or persons found in the article."
		return report
	}

	var out credibilityList
	text, decoded, err := a.complete(ctx, report,
		system(credibilitySystem, credibilityLineFormat, a.structured),
		credibilityPrompt(urls, persons), "credibility", &out)
	if err != nil {
		msg := report.Fail("credibility analysis", err)
		report.Summary = metadataHeading + "\n\n" + msg + "\n\n" + a.authoritySection(report.Entities)
		return report
	}

	if decoded {
		report.Credibility = fromCredibilityItems(out.Entities)
		text = renderCredibility(report.Credibility)
	} else {
		report.Credibility = extract.CredibilityLines(text)
	}

	report.Summary = metadataHeading + "\n\n" + extract.Annotate(strings.TrimSpace(text))
	if section := a.authoritySection(report.Entities); section != "" {
		report.Summary += "\n\n" + section
	}
	return report
}

// authoritySection lists the locally computed tier of every URL
func (a *Metadata) authoritySection(entities []model.Entity) string {
	var lines []string
	for _, e := range entities {
		if e.Kind == model.EntityURL {
			lines = append(lines, fmt.Sprintf("- %s: %s", e.Value, e.Authority))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "Source authority:\n" + strings.Join(lines, "\n")
}

func fromCredibilityItems(items []credibilityItem) []model.Credibility {
	out := make([]model.Credibility, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Entity) == "" {
			continue
		}
		kind := model.EntityPerson
		if strings.EqualFold(it.Kind, string(model.EntityURL)) || strings.HasPrefix(it.Entity, "http") {
			kind = model.EntityURL
		}
		out = append(out, model.Credibility{
			Entity:          strings.TrimSpace(it.Entity),
			Kind:            kind,
			Reliability:     strings.TrimSpace(it.Reliability),
			Bias:            strings.TrimSpace(it.Bias),
			Trustworthiness: strings.TrimSuffix(strings.TrimSpace(it.Trustworthiness), "."),
		})
	}
	return out
}

// renderCredibility writes assessments in the same line layout the model
// is asked for in plain-text mode, so both paths annotate identically
func renderCredibility(creds []model.Credibility) string {
	var b strings.Builder
	for _, section := range []struct {
		title string
		kind  model.EntityKind
	}{{"URLs:", model.EntityURL}, {"Persons:", model.EntityPerson}} {
		var lines []string
		for _, c := range creds {
			if c.Kind == section.kind {
				lines = append(lines, fmt.Sprintf("- %s: Reliability: %s. Bias: %s. Trustworthiness: %s.",
					c.Entity, c.Reliability, c.Bias, c.Trustworthiness))
			}
		}
		if len(lines) == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(section.title)
		b.WriteString("\n")
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}
