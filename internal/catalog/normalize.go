package catalog

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Fold returns the comparison form of s: trimmed, NFC-normalized and
// Unicode case-folded. Two names are equal case-insensitively when their
// folded forms are equal.
func Fold(s string) string {
	// cases.Caser is stateful; never share one across goroutines.
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// EqualFold reports whether a and b are equal under Fold.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// ContainsFold reports whether substr occurs in s under Fold.
// An empty substr is contained in every string.
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// Normalize collapses internal whitespace to single spaces and trims.
// Used for heading text, which may span irregular spacing.
func Normalize(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// CountChars returns the character count as runes (not bytes).
func CountChars(text string) int {
	return utf8.RuneCountInString(text)
}

// EstimateTokens estimates token count using a word-based heuristic
// (1.3 tokens per word).
func EstimateTokens(text string) int {
	words := strings.Fields(strings.TrimSpace(text))
	return int(math.Ceil(float64(len(words)) * 1.3))
}
