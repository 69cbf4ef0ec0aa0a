// Package render serialises catalogs back to Markdown, HTML and JSONL.
package render

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/loader"
)

// frontMatter is catalog.Meta as written to YAML. The description is
// written as the intro paragraph instead when that reads back unchanged.
type frontMatter struct {
	Title       string   `yaml:"title,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Version     string   `yaml:"version,omitempty"`
	Tags        []string `yaml:"tags,omitempty,flow"`
}

// closingRun matches a trailing '#' run that a heading parser would strip.
var closingRun = regexp.MustCompile(`(^|[ \t])#+$`)

// Markdown returns c in the heading convention the loader reads.
func Markdown(c *catalog.Catalog) string {
	var b strings.Builder
	_ = WriteMarkdown(&b, c)
	return b.String()
}

// WriteMarkdown writes c to w. Loading the output of a loaded catalog
// yields the same entries in the same order.
func WriteMarkdown(w io.Writer, c *catalog.Catalog) error {
	return writeMarkdown(w, c, true)
}

func writeMarkdown(w io.Writer, c *catalog.Catalog, withFrontMatter bool) error {
	bw := bufio.NewWriter(w)
	meta := c.Meta()

	blocks := 0
	block := func(s string) {
		if blocks > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString(s)
		if !strings.HasSuffix(s, "\n") {
			bw.WriteString("\n")
		}
		blocks++
	}

	fm := frontMatter{Title: meta.Title, Version: meta.Version, Tags: meta.Tags}
	intro := meta.Description
	if withFrontMatter && intro != "" && !introSafe(intro) {
		fm.Description, intro = intro, ""
	}

	if withFrontMatter && (fm.Title != "" || fm.Description != "" || fm.Version != "" || len(fm.Tags) > 0) {
		out, err := yaml.Marshal(fm)
		if err != nil {
			return fmt.Errorf("encode front matter: %w", err)
		}
		bw.WriteString("---\n")
		bw.Write(out)
		bw.WriteString("---\n")
	}

	if c.Title() != "" {
		block(heading(1, c.Title()))
	}
	if intro != "" {
		block(intro)
	}

	for _, cat := range c.Categories() {
		block(heading(2, cat.Name))
		if cat.Intro != "" {
			block(cat.Intro)
		}

		var entries []catalog.Entry
		for e := range c.All() {
			if catalog.EqualFold(e.Category, cat.Name) {
				entries = append(entries, e)
			}
		}

		bold := boldLeadPrefix(entries)
		for i, e := range entries {
			switch {
			case i >= bold:
				block(heading(3, e.Title))
				if e.Body != "" {
					block(e.Body)
				}
			case needsBoldLead(e):
				block(boldLeadMarker(e.Title) + ": " + e.Body)
			default:
				block(boldLeadMarker(e.Title))
				if e.Body != "" {
					block(e.Body)
				}
			}
			if e.Code != nil {
				block(codeBlock(*e.Code, e.Lang))
			}
		}
	}

	return bw.Flush()
}

// EntryMarkdown returns a single entry as a level-3 section.
func EntryMarkdown(e catalog.Entry) string {
	parts := []string{heading(3, e.Title)}
	if e.Body != "" {
		parts = append(parts, e.Body)
	}
	if e.Code != nil {
		parts = append(parts, codeBlock(*e.Code, e.Lang))
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// needsBoldLead reports whether the first body line of e would be read as
// structure under a level-3 heading. Text on a bold-lead marker line is
// never parsed, so such entries are written in bold-lead form.
func needsBoldLead(e catalog.Entry) bool {
	if e.Body == "" {
		return false
	}
	first, _, _ := strings.Cut(e.Body, "\n")
	switch kind, level := loader.Classify(first); kind {
	case loader.HeadingLine:
		return level <= 3
	case loader.EmptyHeadingLine, loader.FenceLine:
		return true
	}
	return false
}

// boldLeadPrefix returns how many leading entries of a category are written
// in bold-lead form. Bold leads only mark entries until the first level-3
// heading of a category, so the form covers a prefix ending at the last
// entry that needs it. It returns 0 when an entry in that prefix cannot be
// expressed as a bold lead.
func boldLeadPrefix(entries []catalog.Entry) int {
	n := 0
	for i, e := range entries {
		if needsBoldLead(e) {
			n = i + 1
		}
	}
	for _, e := range entries[:n] {
		if !boldLeadSafe(e) {
			return 0
		}
	}
	return n
}

// boldLeadSafe reports whether e survives being written as a bold lead: the
// title fits inside the emphasis and no body line below the marker would
// start another entry.
func boldLeadSafe(e catalog.Entry) bool {
	if e.Title == "" || strings.Contains(e.Title, "*") {
		return false
	}
	lines := strings.Split(e.Body, "\n")
	if needsBoldLead(e) {
		lines = lines[1:]
	}
	for _, line := range lines {
		if kind, _ := loader.Classify(line); kind == loader.BoldLeadLine {
			return false
		}
	}
	return true
}

// boldLeadMarker writes title as "**title**". A title ending in ':' keeps
// its colon through the separator the loader strips.
func boldLeadMarker(title string) string {
	if strings.HasSuffix(title, ":") {
		return "**" + title + ":**"
	}
	return "**" + title + "**"
}

// introSafe reports whether text, written as the document intro, loads back
// as the same description.
func introSafe(text string) bool {
	if strings.Contains(text, "\r") {
		return false
	}
	lines := strings.Split(text, "\n")
	if strings.TrimSpace(lines[0]) == "" || strings.TrimSpace(lines[len(lines)-1]) == "" {
		return false
	}
	if strings.TrimRight(lines[0], " \t") == "---" {
		return false
	}
	for _, line := range lines {
		if kind, _ := loader.Classify(line); kind != loader.TextLine {
			return false
		}
	}
	return true
}

func heading(level int, text string) string {
	h := strings.Repeat("#", level) + " " + text
	if closingRun.MatchString(text) {
		h += " #"
	}
	return h
}

// codeBlock fences code with a fence longer than any run of the fence
// character inside it. Backticks in the info string force a tilde fence.
func codeBlock(code, lang string) string {
	char := "`"
	if strings.Contains(lang, "`") {
		char = "~"
	}
	size := max(3, longestRun(code, char[0])+1)
	fence := strings.Repeat(char, size)

	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(lang)
	b.WriteString("\n")
	if code != "" {
		b.WriteString(code)
		b.WriteString("\n")
	}
	b.WriteString(fence)
	return b.String()
}

func longestRun(s string, ch byte) int {
	longest, run := 0, 0
	for i := 0; i < len(s); i++ {
		if s[i] == ch {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}
