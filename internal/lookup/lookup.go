// Package lookup answers category and title queries against a catalog.
//
// Results are lazy iterators: nothing is scanned until the caller ranges
// over the sequence, and every range starts again from the first entry.
package lookup

import (
	"iter"

	"github.com/hpungsan/refcat/internal/catalog"
)

// ByCategory yields the entries whose category equals name, ignoring case
// and surrounding whitespace, in source order.
func ByCategory(c *catalog.Catalog, name string) iter.Seq[catalog.Entry] {
	return func(yield func(catalog.Entry) bool) {
		want := catalog.Fold(name)
		for e := range c.All() {
			if catalog.Fold(e.Category) != want {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Search yields the entries whose title contains query, ignoring case, in
// source order. An empty or whitespace-only query matches every entry.
func Search(c *catalog.Catalog, query string) iter.Seq[catalog.Entry] {
	return func(yield func(catalog.Entry) bool) {
		for e := range c.All() {
			if !catalog.ContainsFold(e.Title, query) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Filter yields the entries of seq that belong to category. An empty
// category leaves seq unchanged.
func Filter(seq iter.Seq[catalog.Entry], category string) iter.Seq[catalog.Entry] {
	if catalog.Fold(category) == "" {
		return seq
	}
	return func(yield func(catalog.Entry) bool) {
		want := catalog.Fold(category)
		for e := range seq {
			if catalog.Fold(e.Category) != want {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Get returns the entry identified by category and title.
func Get(c *catalog.Catalog, category, title string) (catalog.Entry, bool) {
	wantTitle := catalog.Fold(title)
	for e := range ByCategory(c, category) {
		if catalog.Fold(e.Title) == wantTitle {
			return e, true
		}
	}
	return catalog.Entry{}, false
}

// Categories returns the categories of c in source order with entry counts.
func Categories(c *catalog.Catalog) []catalog.Category {
	return c.Categories()
}

// Page collects at most limit entries of seq after skipping offset, and
// reports how many entries seq yields in total. A limit <= 0 collects
// everything after offset.
func Page(seq iter.Seq[catalog.Entry], offset, limit int) ([]catalog.Entry, int) {
	if offset < 0 {
		offset = 0
	}
	page := []catalog.Entry{}
	total := 0
	for e := range seq {
		if total >= offset && (limit <= 0 || len(page) < limit) {
			page = append(page, e)
		}
		total++
	}
	return page, total
}
