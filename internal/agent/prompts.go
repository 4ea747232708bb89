package agent

import (
	"fmt"
	"strings"
)

const extractClaimsSystem = `You extract factual claims from news articles for a fact-checking service.
Copy claims as they are stated, even when they are wrong. Do not correct, infer or merge them.
Each claim must be understandable on its own, so resolve pronouns and add the subject where needed.`

const extractClaimsLineFormat = `

Output one claim per line as plain text. No bullets, numbering, headings or commentary.`

const evaluateClaimsSystem = `You are a careful fact-checker. Judge each claim against well-established public knowledge.
A claim is True only if it is accurate as stated; otherwise it is False.`

const evaluateClaimsLineFormat = `

Output exactly one line per claim in the form:
<claim>: True
or
<claim>: False
Use the claim text unchanged and add nothing else.`

const verifySystem = "You are an expert fact-checker who explains which statements in an article are incorrect or unsupported."

const credibilitySystem = `You assess the credibility of sources and people cited in news articles.
For every entity give its reliability (High, Medium or Low), its bias (Neutral, Slightly Biased or Strongly Biased) and a one-sentence note on trustworthiness.`

const credibilityLineFormat = `

Use exactly this layout:

URLs:
- <url>: Reliability: <High/Medium/Low>. Bias: <Neutral/Slightly Biased/Strongly Biased>. Trustworthiness: <note>.

Persons:
- <name>: Reliability: <High/Medium/Low>. Bias: <Neutral/Slightly Biased/Strongly Biased>. Trustworthiness: <note>.`

const sentimentSystem = "You analyze the tone and framing of news articles."

const sentimentLineFormat = `

Answer with these four labeled fields, each on its own line:
Overall Tone: <Positive/Negative/Neutral/Mixed>
Sentiment Bias Score: <0-100, where 0 is balanced and 100 is extremely one-sided>
Key Highlights: <the phrases that drive the tone, separated by semicolons>
Impact: <likely effect on the reader>`

func extractClaimsPrompt(article string) string {
	return "Extract every factual claim from this article:\n\n" + article
}

func evaluateClaimsPrompt(article string, claims []string) string {
	var b strings.Builder
	b.WriteString("Article for context:\n\n")
	b.WriteString(article)
	b.WriteString("\n\nEvaluate each of these claims:\n")
	for _, c := range claims {
		b.WriteString(c)
		b.WriteString("\n")
	}
	return b.String()
}

func verifyPrompt(article string) string {
	return fmt.Sprintf("Review this article for factual accuracy and explain any claims that are incorrect or unsupported:\n\n%s", article)
}

func credibilityPrompt(urls, persons []string) string {
	return fmt.Sprintf("Assess these entities mentioned in an article.\n\nURLs:\n%s\n\nPersons:\n%s",
		listOrNone(urls), listOrNone(persons))
}

func sentimentPrompt(article string) string {
	return "Analyze the sentiment of this article:\n\n" + article
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, "\n")
}

// system picks the line-format variant when the reply will not be JSON
func system(instruction, lineFormat string, structured bool) string {
	if structured {
		return instruction
	}
	return instruction + lineFormat
}
