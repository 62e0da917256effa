package ingest

import (
	"html"
	"regexp"
	"strings"

	"autoqa/internal/ports"
)

var (
	bulletPrefixPattern  = regexp.MustCompile(`^\d+\.\s*`)
	whitespaceRunPattern = regexp.MustCompile(`\s+`)
)

// NormalizeText converts a free-text field (preconditions, steps, expected
// results, comments) into ordered step records. Lines are 1-indexed in the
// order they appear; blank lines are dropped so order stays contiguous. A
// leading "N. " bullet is stripped, whitespace runs collapse to single spaces
// and the result is HTML-escaped once. Total over all inputs: empty or absent
// text yields an empty sequence.
func NormalizeText(text string) []ports.Step {
	steps := []ports.Step{}
	if strings.TrimSpace(text) == "" {
		return steps
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line = bulletPrefixPattern.ReplaceAllString(line, "")
		line = whitespaceRunPattern.ReplaceAllString(line, " ")
		line = html.EscapeString(strings.TrimSpace(line))

		steps = append(steps, ports.Step{
			Order:       len(steps) + 1,
			Description: line,
		})
	}
	return steps
}
