package loader

import (
	"regexp"
	"strings"
)

// headingPattern matches an ATX heading (h1-h6) with up to 3 spaces of indentation.
// Groups: hash symbols, heading text (may be empty).
var headingPattern = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?[ \t]*$`)

// closingSequence matches an optional closing run of '#' preceded by whitespace.
var closingSequence = regexp.MustCompile(`[ \t]+#+$`)

// fencePattern matches fenced code block delimiters (``` or ~~~) at the start of a line,
// allowing 0-3 spaces of indentation. Groups: fence characters, info string.
var fencePattern = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})(.*)$")

// boldLeadPattern matches a bold-lead item, optionally inside a list item:
// "**Title**", "**Title**: text", "- **Title** - text", "* **Title:** text".
// Groups: title, remainder of the line.
var boldLeadPattern = regexp.MustCompile(`^ {0,3}(?:[-*+][ \t]+)?\*\*([^*]+?)\*\*(.*)$`)

// heading is a parsed ATX heading line.
type heading struct {
	level int
	text  string
}

// parseHeading returns the heading on line, if any.
func parseHeading(line string) (heading, bool) {
	m := headingPattern.FindStringSubmatch(line)
	if m == nil {
		return heading{}, false
	}
	text := m[2]
	// "## #" and "## ##" are empty headings with a closing sequence
	if strings.Trim(text, "#") == "" {
		text = ""
	}
	text = closingSequence.ReplaceAllString(text, "")
	return heading{level: len(m[1]), text: strings.TrimSpace(text)}, true
}

// fence describes an opening code fence.
type fence struct {
	char byte
	size int
	info string
}

// parseFenceOpen returns the fence opened on line, if any.
// Backtick fences may not carry backticks in their info string.
func parseFenceOpen(line string) (fence, bool) {
	m := fencePattern.FindStringSubmatch(line)
	if m == nil {
		return fence{}, false
	}
	info := strings.TrimSpace(m[2])
	if m[1][0] == '`' && strings.Contains(info, "`") {
		return fence{}, false
	}
	return fence{char: m[1][0], size: len(m[1]), info: info}, true
}

// closes reports whether line is a valid closing fence for f: same character,
// at least as long, and nothing but whitespace after it.
func (f fence) closes(line string) bool {
	m := fencePattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	return m[1][0] == f.char && len(m[1]) >= f.size && strings.TrimSpace(m[2]) == ""
}

// boldLead is a parsed bold-lead entry marker.
type boldLead struct {
	title string
	rest  string
}

// parseBoldLead returns the bold-lead marker on line, if any.
func parseBoldLead(line string) (boldLead, bool) {
	m := boldLeadPattern.FindStringSubmatch(line)
	if m == nil {
		return boldLead{}, false
	}

	// "**Title:**" carries its separator inside the emphasis
	title := strings.TrimSpace(m[1])
	title = strings.TrimSpace(strings.TrimSuffix(title, ":"))
	if title == "" {
		return boldLead{}, false
	}

	return boldLead{title: title, rest: trimSeparator(m[2])}, true
}

// separators are accepted between a bold-lead title and its text.
var separators = []string{":", "- ", "– ", "— "}

func trimSeparator(s string) string {
	s = strings.TrimSpace(s)
	for _, sep := range separators {
		if rest, ok := strings.CutPrefix(s, sep); ok {
			return strings.TrimSpace(rest)
		}
	}
	// A bare trailing dash ("**Title** -") leaves no text
	if s == "-" || s == "–" || s == "—" {
		return ""
	}
	return s
}

// LineKind is how the loader reads a line outside a code fence.
type LineKind int

const (
	TextLine LineKind = iota
	HeadingLine
	EmptyHeadingLine
	FenceLine
	BoldLeadLine
)

// Classify reports how line is read outside a code fence. For headings it
// also returns the level.
func Classify(line string) (LineKind, int) {
	if h, ok := parseHeading(line); ok {
		if h.text == "" {
			return EmptyHeadingLine, h.level
		}
		return HeadingLine, h.level
	}
	if _, ok := parseFenceOpen(line); ok {
		return FenceLine, 0
	}
	if _, ok := parseBoldLead(line); ok {
		return BoldLeadLine, 0
	}
	return TextLine, 0
}

// isBlank reports whether line contains only whitespace.
func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// trimBlankLines drops leading and trailing blank lines, keeping interior
// lines untouched.
func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && isBlank(lines[start]) {
		start++
	}
	for end > start && isBlank(lines[end-1]) {
		end--
	}
	return lines[start:end]
}

// joinBlocks joins non-empty text blocks with a single blank line.
func joinBlocks(blocks ...string) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b != "" {
			parts = append(parts, b)
		}
	}
	return strings.Join(parts, "\n\n")
}
