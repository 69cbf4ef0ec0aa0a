// Package catalog holds the immutable reference catalog built by the loader.
package catalog

import (
	"crypto/rand"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/oklog/ulid/v2"
)

// Entry is one documented unit of reference content.
// Identity is the (Category, Title) pair, compared case-insensitively.
type Entry struct {
	// Title is the entry heading text
	Title string `json:"title"`

	// Category is the name of the enclosing level-2 section
	Category string `json:"category"`

	// Body is the entry text without its code sample
	Body string `json:"body"`

	// Code is the contents of the entry's last fenced code block (nil when absent)
	Code *string `json:"code,omitempty"`

	// Lang is the fence info string of the code sample (e.g. "jsx")
	Lang string `json:"lang,omitempty"`
}

// Key returns the display identifier "Category/Title".
func (e Entry) Key() string {
	return e.Category + "/" + e.Title
}

// HasCode reports whether the entry carries a code sample.
func (e Entry) HasCode() bool {
	return e.Code != nil
}

// clone returns e with its own copy of the code sample.
func (e Entry) clone() Entry {
	if e.Code != nil {
		code := *e.Code
		e.Code = &code
	}
	return e
}

// cloneEntries deep-copies entries.
func cloneEntries(entries []Entry) []Entry {
	if entries == nil {
		return nil
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e.clone()
	}
	return out
}

// Category is a level-2 section of the source document.
type Category struct {
	Name  string `json:"name"`
	Intro string `json:"intro,omitempty"`
	Count int    `json:"count"`
}

// Meta is the optional YAML front matter of a document.
type Meta struct {
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Version     string   `yaml:"version,omitempty" json:"version,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// Catalog is an ordered, read-only collection of entries for one loaded
// document. It is safe for concurrent readers.
type Catalog struct {
	id         string
	title      string
	meta       Meta
	checksum   string
	entries    []Entry
	categories []Category
}

// New builds a catalog from entries in source order. categories lists every
// category heading in order (including empty ones); counts are recomputed.
// source is the raw document text, used for the checksum.
func New(title string, meta Meta, categories []Category, entries []Entry, source string) *Catalog {
	counts := make(map[string]int, len(categories))
	for _, e := range entries {
		counts[Fold(e.Category)]++
	}

	cats := make([]Category, len(categories))
	for i, c := range categories {
		c.Count = counts[Fold(c.Name)]
		cats[i] = c
	}

	meta.Tags = slices.Clone(meta.Tags)

	return &Catalog{
		id:         newID(),
		title:      title,
		meta:       meta,
		checksum:   Checksum(source),
		entries:    cloneEntries(entries),
		categories: cats,
	}
}

// ID returns the ULID assigned when the catalog was loaded.
func (c *Catalog) ID() string { return c.id }

// Title returns the document title.
func (c *Catalog) Title() string { return c.title }

// Meta returns a copy of the document front matter.
func (c *Catalog) Meta() Meta {
	m := c.meta
	m.Tags = slices.Clone(m.Tags)
	return m
}

// Checksum returns the xxhash64 of the source document as 16 hex digits.
func (c *Catalog) Checksum() string { return c.checksum }

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.entries) }

// All iterates entries in source order. Each call starts from the beginning.
// Yielded entries are copies; writing through Code leaves c unchanged.
func (c *Catalog) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range c.entries {
			if !yield(e.clone()) {
				return
			}
		}
	}
}

// Entries returns a copy of all entries in source order.
func (c *Catalog) Entries() []Entry {
	return cloneEntries(c.entries)
}

// Categories returns a copy of the categories in source order.
func (c *Catalog) Categories() []Category {
	return slices.Clone(c.categories)
}

// Checksum computes the xxhash64 of text as 16 lowercase hex digits.
func Checksum(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

func newID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Subset returns a catalog holding only the entries of category, keeping
// the ID, title, meta and checksum of c. ok is false when c has no such
// category.
func (c *Catalog) Subset(category string) (sub *Catalog, ok bool) {
	want := Fold(category)
	for _, cat := range c.categories {
		if Fold(cat.Name) != want {
			continue
		}
		var entries []Entry
		for _, e := range c.entries {
			if Fold(e.Category) == want {
				entries = append(entries, e.clone())
			}
		}
		return &Catalog{
			id:         c.id,
			title:      c.title,
			meta:       c.Meta(),
			checksum:   c.checksum,
			entries:    entries,
			categories: []Category{cat},
		}, true
	}
	return nil, false
}
