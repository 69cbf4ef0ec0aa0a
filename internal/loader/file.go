package loader

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
)

// Options control how LoadFile and LoadReader read a document.
type Options struct {
	// MaxBytes rejects larger documents with DOCUMENT_TOO_LARGE (0 = no limit)
	MaxBytes int64

	// HTML forces the HTML loader regardless of file extension
	HTML bool

	// Selector is the CSS selector for the HTML content root
	Selector string

	// Logger receives load timing; nil discards it
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// IsHTMLPath reports whether path names an HTML file.
func IsHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// LoadFile reads and loads the document at path.
func LoadFile(path string, opts Options) (*catalog.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("document not found: %s", path))
		}
		return nil, errors.NewInternal(fmt.Errorf("open document: %w", err))
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		if info.IsDir() {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("document is a directory: %s", path))
		}
		if opts.MaxBytes > 0 && info.Size() > opts.MaxBytes {
			return nil, errors.NewDocumentTooLarge(opts.MaxBytes, info.Size())
		}
	}

	opts.HTML = opts.HTML || IsHTMLPath(path)

	start := time.Now()
	cat, err := LoadReader(f, opts)
	if err != nil {
		opts.logger().Warn("catalog load failed", "path", path, "error", err)
		return nil, err
	}

	opts.logger().Info("catalog loaded",
		"path", path,
		"id", cat.ID(),
		"entries", cat.Len(),
		"categories", len(cat.Categories()),
		"duration", time.Since(start),
	)
	return cat, nil
}

// LoadReader reads a whole document from r, enforcing opts.MaxBytes.
func LoadReader(r io.Reader, opts Options) (*catalog.Catalog, error) {
	if opts.MaxBytes > 0 {
		r = io.LimitReader(r, opts.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("read document: %w", err))
	}
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, errors.NewDocumentTooLarge(opts.MaxBytes, int64(len(data)))
	}

	if opts.HTML {
		return LoadHTML(bytes.NewReader(data), opts.Selector)
	}
	return Load(string(data))
}
