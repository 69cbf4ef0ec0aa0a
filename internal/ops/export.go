package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hpungsan/refcat/internal/catalog"
	"github.com/hpungsan/refcat/internal/errors"
	"github.com/hpungsan/refcat/internal/render"
)

// Export formats
const (
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatJSONL    = "jsonl"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path     string // optional; written atomically when set
	Format   string // md (default), html or jsonl; inferred from Path when empty
	Category string // optional filter
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path,omitempty"`
	Format     string `json:"format"`
	Count      int    `json:"count"`
	Bytes      int64  `json:"bytes"`
	Checksum   string `json:"checksum"`
	ExportedAt int64  `json:"exported_at"`
}

// Export serialises c (or one of its categories). With a Path the output
// goes to a temp file that is renamed into place on success; otherwise it
// is written to w.
func Export(ctx context.Context, c *catalog.Catalog, input ExportInput, w io.Writer) (*ExportOutput, error) {
	format, err := resolveFormat(input)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Category) != "" {
		sub, ok := c.Subset(input.Category)
		if !ok {
			return nil, errors.NewNotFound("category " + catalog.Normalize(input.Category))
		}
		c = sub
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("export")
	}

	out := &ExportOutput{
		Format:     format,
		Count:      c.Len(),
		Checksum:   c.Checksum(),
		ExportedAt: time.Now().Unix(),
	}

	if input.Path == "" {
		if w == nil {
			return nil, errors.NewInvalidRequest("path is required")
		}
		n, err := writeFormat(w, c, format)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out.Bytes = n
		return out, nil
	}

	n, err := writeFileAtomic(input.Path, func(f io.Writer) (int64, error) {
		return writeFormat(f, c, format)
	})
	if err != nil {
		return nil, err
	}
	out.Path = input.Path
	out.Bytes = n
	return out, nil
}

func resolveFormat(input ExportInput) (string, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" && input.Path != "" {
		format = FormatForPath(input.Path)
	}
	if format == "" {
		format = FormatMarkdown
	}
	if _, ok := formatExtensions[format]; !ok {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown export format %q (want md, html or jsonl)", format))
	}
	if input.Path != "" {
		if err := ValidateExportPath(input.Path, format); err != nil {
			return "", err
		}
	}
	return format, nil
}

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

func writeFormat(w io.Writer, c *catalog.Catalog, format string) (int64, error) {
	cw := &countingWriter{w: w}
	var err error
	switch format {
	case FormatHTML:
		var body string
		body, err = render.CatalogHTML(c)
		if err == nil {
			_, err = io.WriteString(cw, body)
		}
	case FormatJSONL:
		err = render.WriteJSONL(cw, c)
	default:
		err = render.WriteMarkdown(cw, c)
	}
	return cw.n, err
}

// writeFileAtomic writes to a temp file next to path and renames it into
// place, so an existing file is preserved when anything fails.
func writeFileAtomic(path string, write func(io.Writer) (int64, error)) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC|os.O_EXCL, 0600)
	if err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	n, err := write(file)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	if err := file.Sync(); err != nil {
		return 0, errors.NewInternal(err)
	}

	// Close before rename (required on Windows)
	if err := file.Close(); err != nil {
		return 0, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink swapped in since validation
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return 0, errors.NewInvalidRequest("path must not be a symlink")
	}

	// On Windows os.Rename fails if the destination exists; fail rather than
	// delete the existing file first.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return 0, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows (choose a new path or delete the existing file)")
			}
		}
		return 0, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return n, nil
}
