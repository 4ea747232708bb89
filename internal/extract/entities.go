package extract

import (
	"regexp"
	"strings"
)

var (
	// urlPattern matches http(s) URLs up to the next whitespace
	urlPattern = regexp.MustCompile(`https?://[^\s]+`)

	// personPattern is a naive two-capitalized-words heuristic. It matches
	// any capitalized bigram ("New York", "World Bank") and misses
	// single-word or lower-case names.
	personPattern = regexp.MustCompile(`\b[A-Z][a-z]+ [A-Z][a-z]+\b`)
)

// URLs extracts http(s) URLs in order of appearance.
// Trailing sentence punctuation is dropped, as is a closing parenthesis
// that has no opening partner inside the URL.
func URLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		m = trimURL(m)
		if m != "" {
			urls = append(urls, m)
		}
	}
	return urls
}

func trimURL(u string) string {
	for {
		trimmed := strings.TrimRight(u, ".,;:!?\"'")
		if strings.HasSuffix(trimmed, ")") && strings.Count(trimmed, "(") < strings.Count(trimmed, ")") {
			trimmed = strings.TrimSuffix(trimmed, ")")
		}
		if trimmed == u {
			return u
		}
		u = trimmed
	}
}

// Persons extracts candidate person names
func Persons(text string) []string {
	return personPattern.FindAllString(text, -1)
}

// Unique returns values in first-seen order without duplicates
func Unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	var unique []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	return unique
}
