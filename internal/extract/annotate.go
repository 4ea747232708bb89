package extract

import "strings"

// Annotate prefixes credibility lines with a status icon.
// Only the first matching marker on a line counts.
func Annotate(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if icon := iconFor(line); icon != "" {
			lines[i] = icon + " " + line
		}
	}
	return strings.Join(lines, "\n")
}

func iconFor(line string) string {
	switch {
	case strings.Contains(line, "Reliability: High"):
		return "✅"
	case strings.Contains(line, "Reliability: Medium"):
		return "⚠️"
	case strings.Contains(line, "Reliability: Low"):
		return "❌"
	case strings.Contains(line, "Bias: Neutral"):
		return "✅"
	case strings.Contains(line, "Bias: Slightly"):
		return "⚠️"
	case strings.Contains(line, "Bias: Strongly"), strings.Contains(line, "Bias: Biased"):
		return "❌"
	case strings.Contains(line, "Trustworthiness:"):
		return "🔍"
	default:
		return ""
	}
}

// ReliabilityIcon maps a reliability level to its icon
func ReliabilityIcon(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "high":
		return "✅"
	case "medium":
		return "⚠️"
	case "low":
		return "❌"
	default:
		return "🔍"
	}
}
