package model

import (
	"regexp"
	"strings"
)

// Claim represents a factual assertion extracted from an article
type Claim struct {
	Text string `json:"text"` // The claim text as returned by the extraction step
}

// Verdict is the label assigned to a claim by the evaluation step
type Verdict string

const (
	VerdictTrue    Verdict = "True"
	VerdictFalse   Verdict = "False"
	VerdictUnknown Verdict = "Unknown"
)

// verdictWord matches a leading true/false as a whole word
var verdictWord = regexp.MustCompile(`^(true|false)\b`)

// ParseVerdict normalizes a model-produced label. Anything that does not
// start with the word true or false maps to VerdictUnknown, so "Trueblood"
// and "falsetto" are not verdicts.
func ParseVerdict(s string) Verdict {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "*_`\"'")
	switch verdictWord.FindString(s) {
	case "true":
		return VerdictTrue
	case "false":
		return VerdictFalse
	default:
		return VerdictUnknown
	}
}

// Evaluation is the verdict for a single claim
type Evaluation struct {
	Claim       string  `json:"claim"`
	Verdict     Verdict `json:"verdict"`
	Explanation string  `json:"explanation,omitempty"`
}
