// Package loader parses a Markdown reference document into a catalog.
//
// Heading convention: an optional YAML front matter block, an optional
// level-1 document title, level-2 headings for categories, and level-3
// headings or bold-lead items ("**Title**: text") for entries. Fenced code
// blocks are opaque; the last one in an entry becomes its code sample.
package loader

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
)

// Load parses text into a catalog. It fails with a STRUCTURAL_ERROR when
// the text violates the heading convention and with EMPTY_INPUT when it
// contains no entries.
func Load(text string) (*catalog.Catalog, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewEmptyInput("document is empty")
	}

	lines := strings.Split(text, "\n")
	p := &parser{seen: make(map[string]int)}

	start, err := p.frontMatter(lines)
	if err != nil {
		return nil, err
	}

	var open *fence
	openLine := 0
	for i := start; i < len(lines); i++ {
		line := lines[i]
		lineNo := i + 1

		if open != nil {
			p.appendLine(line)
			if open.closes(line) {
				p.closeFence()
				open = nil
			}
			continue
		}

		if f, ok := parseFenceOpen(line); ok {
			open, openLine = &f, lineNo
			p.openFence(line, f)
			continue
		}

		if h, ok := parseHeading(line); ok {
			if err := p.heading(h, line, lineNo); err != nil {
				return nil, err
			}
			continue
		}

		// Bold leads are entry markers only while no level-3 entry is open
		if b, ok := parseBoldLead(line); ok && (p.cur == nil || !p.cur.heading) {
			if err := p.startEntry(catalog.Normalize(b.title), false, lineNo); err != nil {
				return nil, err
			}
			if b.rest != "" {
				p.appendLine(b.rest)
			}
			continue
		}

		p.appendLine(line)
	}

	if open != nil {
		return nil, errors.NewStructural(openLine, "unterminated code fence")
	}

	p.flushEntry()
	p.flushCategory()

	if len(p.entries) == 0 {
		return nil, errors.NewEmptyInput("document has no entries")
	}

	meta := p.meta
	title := meta.Title
	if title == "" {
		title = p.title
	}
	if meta.Description == "" {
		meta.Description = strings.Join(trimBlankLines(p.intro), "\n")
	}

	return catalog.New(title, meta, p.categories, p.entries, text), nil
}

// codeFence records a fenced block inside a pending entry, as indexes into
// the entry's lines.
type codeFence struct {
	open  int
	close int
	info  string
}

// pendingEntry accumulates the lines of the entry being parsed.
type pendingEntry struct {
	title    string
	category string
	heading  bool // opened by a level-3 heading rather than a bold lead
	lines    []string
	fences   []codeFence
}

type parser struct {
	meta       catalog.Meta
	title      string
	titleSeen  bool
	intro      []string
	categories []catalog.Category
	catIntro   []string
	inCategory bool
	cur        *pendingEntry
	entries    []catalog.Entry
	seen       map[string]int // folded identity -> marker line
	seenCats   map[string]int
}

// frontMatter decodes a leading YAML block delimited by "---" lines and
// returns the index of the first line after it.
func (p *parser) frontMatter(lines []string) (int, error) {
	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != "---" {
		return 0, nil
	}
	for i := 1; i < len(lines); i++ {
		delim := strings.TrimRight(lines[i], " \t")
		if delim != "---" && delim != "..." {
			continue
		}
		if err := yaml.Unmarshal([]byte(strings.Join(lines[1:i], "\n")), &p.meta); err != nil {
			return 0, errors.NewStructural(1, fmt.Sprintf("invalid front matter: %v", err))
		}
		p.meta.Title = catalog.Normalize(p.meta.Title)
		return i + 1, nil
	}
	return 0, errors.NewStructural(1, "unterminated front matter")
}

func (p *parser) heading(h heading, raw string, line int) error {
	if h.text == "" {
		return errors.NewStructural(line, fmt.Sprintf("empty level-%d heading", h.level))
	}
	text := catalog.Normalize(h.text)

	switch h.level {
	case 1:
		if p.inCategory {
			return errors.NewStructural(line, fmt.Sprintf("level-1 heading %q after the first category", text))
		}
		if p.titleSeen {
			return errors.NewStructural(line, fmt.Sprintf("second level-1 heading %q", text))
		}
		p.title, p.titleSeen = text, true
		return nil

	case 2:
		return p.startCategory(text, line)

	case 3:
		return p.startEntry(text, true, line)

	default:
		if p.cur != nil {
			p.appendLine(raw)
			return nil
		}
		if !p.inCategory {
			return errors.NewStructural(line, fmt.Sprintf("level-%d heading %q before any category heading", h.level, text))
		}
		return errors.NewStructural(line, fmt.Sprintf("level-%d heading %q outside an entry", h.level, text))
	}
}

func (p *parser) startCategory(name string, line int) error {
	if p.seenCats == nil {
		p.seenCats = make(map[string]int)
	}
	key := catalog.Fold(name)
	if prev, ok := p.seenCats[key]; ok {
		return errors.NewStructural(line, fmt.Sprintf("duplicate category %q (first at line %d)", name, prev))
	}
	p.seenCats[key] = line

	p.flushEntry()
	p.flushCategory()

	p.categories = append(p.categories, catalog.Category{Name: name})
	p.inCategory = true
	return nil
}

func (p *parser) startEntry(title string, heading bool, line int) error {
	if !p.inCategory {
		return errors.NewStructural(line, fmt.Sprintf("entry %q before any category heading", title))
	}

	category := p.categories[len(p.categories)-1].Name
	key := catalog.Fold(category) + "\x00" + catalog.Fold(title)
	if prev, ok := p.seen[key]; ok {
		return errors.NewStructural(line, fmt.Sprintf("duplicate entry %q in category %q (first at line %d)", title, category, prev))
	}
	p.seen[key] = line

	p.flushEntry()
	p.flushCategory()

	p.cur = &pendingEntry{title: title, category: category, heading: heading}
	return nil
}

// appendLine routes a body line to the open entry, the category intro, or
// the document intro.
func (p *parser) appendLine(line string) {
	switch {
	case p.cur != nil:
		p.cur.lines = append(p.cur.lines, line)
	case p.inCategory:
		p.catIntro = append(p.catIntro, line)
	default:
		p.intro = append(p.intro, line)
	}
}

func (p *parser) openFence(line string, f fence) {
	if p.cur != nil {
		p.cur.fences = append(p.cur.fences, codeFence{open: len(p.cur.lines), close: -1, info: f.info})
	}
	p.appendLine(line)
}

func (p *parser) closeFence() {
	if p.cur == nil || len(p.cur.fences) == 0 {
		return
	}
	p.cur.fences[len(p.cur.fences)-1].close = len(p.cur.lines) - 1
}

// flushCategory stores the intro text collected for the current category.
func (p *parser) flushCategory() {
	if len(p.catIntro) == 0 || len(p.categories) == 0 {
		p.catIntro = nil
		return
	}
	p.categories[len(p.categories)-1].Intro = strings.Join(trimBlankLines(p.catIntro), "\n")
	p.catIntro = nil
}

// flushEntry converts the pending entry into a catalog entry. The last
// fenced block becomes the code sample; the remaining text is the body.
func (p *parser) flushEntry() {
	cur := p.cur
	if cur == nil {
		return
	}
	p.cur = nil

	e := catalog.Entry{Title: cur.title, Category: cur.category}

	if n := len(cur.fences); n > 0 {
		f := cur.fences[n-1]
		code := strings.Join(cur.lines[f.open+1:f.close], "\n")
		e.Code = &code
		e.Lang = f.info
		e.Body = joinBlocks(
			strings.Join(trimBlankLines(cur.lines[:f.open]), "\n"),
			strings.Join(trimBlankLines(cur.lines[f.close+1:]), "\n"),
		)
	} else {
		e.Body = strings.Join(trimBlankLines(cur.lines), "\n")
	}

	p.entries = append(p.entries, e)
}
