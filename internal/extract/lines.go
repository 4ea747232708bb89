package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/infofact/internal/model"
)

// listMarker matches bullets and numbering at the start of a line
var listMarker = regexp.MustCompile(`^\s*(?:[-*•]+|\d+[.)])\s*`)

// cleanLine trims whitespace, list markers and markdown emphasis
func cleanLine(line string) string {
	line = strings.TrimSpace(line)
	line = listMarker.ReplaceAllString(line, "")
	line = strings.ReplaceAll(line, "**", "")
	return strings.TrimSpace(line)
}

// preamble matches model commentary that introduces a list rather than
// stating a claim
var preamble = regexp.MustCompile(`(?i)^(?:here (?:are|is)\b|below (?:are|is)\b|the following (?:are|is|claims|statements|factual)\b|(?:sure|certainly|okay)[,.!])`)

// ClaimLines splits one-claim-per-line model output into claims.
// Blank lines, headers ending in a colon and preambles such as
// "Here are the claims." are noise.
func ClaimLines(text string) []model.Claim {
	var claims []model.Claim
	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if line == "" || strings.HasSuffix(line, ":") || preamble.MatchString(line) {
			continue
		}
		claims = append(claims, model.Claim{Text: line})
	}
	return claims
}

// EvaluationLines parses "<claim>: True|False" lines.
//
// The separator is the right-most ": " whose remainder starts with a
// verdict, so claim text containing ": " and trailing explanations
// ("False. Reason: ...") both parse. Lines without a recognizable verdict
// are ignored.
func EvaluationLines(text string) []model.Evaluation {
	var evals []model.Evaluation
	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}
		if ev, ok := parseEvaluationLine(line); ok {
			evals = append(evals, ev)
		}
	}
	return evals
}

func parseEvaluationLine(line string) (model.Evaluation, bool) {
	for idx := strings.LastIndex(line, ": "); idx >= 0; idx = strings.LastIndex(line[:idx], ": ") {
		rest := strings.TrimSpace(line[idx+2:])
		verdict := model.ParseVerdict(rest)
		if verdict == model.VerdictUnknown {
			continue
		}

		claim := strings.Trim(strings.TrimSpace(line[:idx]), `"`)
		if claim == "" {
			return model.Evaluation{}, false
		}

		return model.Evaluation{
			Claim:       claim,
			Verdict:     verdict,
			Explanation: explanationAfterVerdict(rest),
		}, true
	}
	return model.Evaluation{}, false
}

// explanationAfterVerdict drops the verdict word and joining punctuation
func explanationAfterVerdict(rest string) string {
	fields := strings.SplitN(rest, " ", 2)
	if len(fields) < 2 {
		return ""
	}
	return strings.TrimLeft(strings.TrimSpace(fields[1]), "-–—.,:; ")
}

// sentiment field labels, lower-cased
var sentimentLabels = map[string]string{
	"overall tone":          "tone",
	"tone":                  "tone",
	"sentiment bias score":  "score",
	"bias score":            "score",
	"sentiment score":       "score",
	"key highlights":        "highlights",
	"highlights":            "highlights",
	"impact":                "impact",
	"impact on perceptions": "impact",
}

var firstNumber = regexp.MustCompile(`\d+`)

// SentimentFields parses the four-field sentiment report by label.
// Field order does not matter; a label with an empty value collects the
// following unlabeled lines. Missing fields are "Unknown" and a missing or
// out-of-range score is -1.
func SentimentFields(text string) model.Sentiment {
	fields := map[string][]string{}
	current := ""

	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		if line == "" {
			continue
		}

		if label, value, ok := strings.Cut(line, ":"); ok {
			if key, known := sentimentLabels[normalizeLabel(label)]; known {
				current = key
				if v := strings.TrimSpace(value); v != "" {
					fields[key] = append(fields[key], v)
				}
				continue
			}
		}

		if current != "" {
			fields[current] = append(fields[current], line)
		}
	}

	result := model.Sentiment{
		OverallTone:   joinOrUnknown(fields["tone"]),
		BiasScore:     -1,
		KeyHighlights: joinOrUnknown(fields["highlights"]),
		Impact:        joinOrUnknown(fields["impact"]),
	}

	if len(fields["score"]) > 0 {
		if m := firstNumber.FindString(fields["score"][0]); m != "" {
			if n, err := strconv.Atoi(m); err == nil && n >= 0 && n <= 100 {
				result.BiasScore = n
			}
		}
	}

	return result
}

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// normalizeLabel lower-cases a field label and drops parenthesized hints
// such as "(0-100)"
func normalizeLabel(label string) string {
	label = parenthetical.ReplaceAllString(label, "")
	return strings.ToLower(strings.TrimSpace(label))
}

func joinOrUnknown(parts []string) string {
	if len(parts) == 0 {
		return "Unknown"
	}
	return strings.Join(parts, "; ")
}

var (
	reliabilityField = regexp.MustCompile(`(?i)reliability:\s*([^.]+)`)
	biasField        = regexp.MustCompile(`(?i)bias:\s*([^.]+)`)
	trustField       = regexp.MustCompile(`(?i)trustworthiness:\s*(.+)$`)
)

// CredibilityLines parses entity assessments of the form
//
//   - <entity>: Reliability: High. Bias: Neutral. Trustworthiness: ...
//
// "URLs:" and "Persons:" headers set the entity kind for following lines.
func CredibilityLines(text string) []model.Credibility {
	var out []model.Credibility
	kind := model.EntityKind("")

	for _, raw := range strings.Split(text, "\n") {
		line := cleanLine(raw)
		switch strings.ToLower(line) {
		case "urls:", "url:":
			kind = model.EntityURL
			continue
		case "persons:", "people:":
			kind = model.EntityPerson
			continue
		}

		idx := strings.Index(strings.ToLower(line), "reliability:")
		if idx <= 0 {
			continue
		}

		entity := strings.Trim(strings.TrimSpace(line[:idx]), ":-– ")
		if entity == "" {
			continue
		}

		c := model.Credibility{Entity: entity, Kind: kind}
		rest := line[idx:]
		if m := reliabilityField.FindStringSubmatch(rest); m != nil {
			c.Reliability = strings.TrimSpace(m[1])
		}
		if m := biasField.FindStringSubmatch(rest); m != nil {
			c.Bias = strings.TrimSpace(m[1])
		}
		if m := trustField.FindStringSubmatch(rest); m != nil {
			c.Trustworthiness = strings.TrimSuffix(strings.TrimSpace(m[1]), ".")
		}
		out = append(out, c)
	}

	return out
}
