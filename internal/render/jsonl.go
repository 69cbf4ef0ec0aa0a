package render

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hpungsan/refcat/internal/catalog"
)

// SchemaVersion is the JSONL export format version.
const SchemaVersion = "1.0"

// ExportHeader is the first line of a JSONL export.
type ExportHeader struct {
	RefcatExport  bool   `json:"_refcat_export"`
	SchemaVersion string `json:"schema_version"`
	CatalogID     string `json:"catalog_id"`
	Title         string `json:"title,omitempty"`
	Checksum      string `json:"checksum"`
	Entries       int    `json:"entries"`
	ExportedAt    int64  `json:"exported_at"`
}

// ExportRecord is one entry line of a JSONL export.
type ExportRecord struct {
	Seq      int     `json:"seq"`
	Category string  `json:"category"`
	Title    string  `json:"title"`
	Body     string  `json:"body"`
	Code     *string `json:"code"`
	Lang     string  `json:"lang,omitempty"`
}

// WriteJSONL writes a header line followed by one line per entry.
func WriteJSONL(w io.Writer, c *catalog.Catalog) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	header := ExportHeader{
		RefcatExport:  true,
		SchemaVersion: SchemaVersion,
		CatalogID:     c.ID(),
		Title:         c.Title(),
		Checksum:      c.Checksum(),
		Entries:       c.Len(),
		ExportedAt:    time.Now().Unix(),
	}
	if err := enc.Encode(header); err != nil {
		return fmt.Errorf("encode export header: %w", err)
	}

	seq := 0
	for e := range c.All() {
		rec := ExportRecord{
			Seq:      seq,
			Category: e.Category,
			Title:    e.Title,
			Body:     e.Body,
			Code:     e.Code,
			Lang:     e.Lang,
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode entry %s: %w", e.Key(), err)
		}
		seq++
	}

	return bw.Flush()
}
