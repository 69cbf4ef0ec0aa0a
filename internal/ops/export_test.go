package ops

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/refcat/internal/errors"
	"github.com/hpungsan/refcat/internal/loader"
)

func TestExport_ToWriter(t *testing.T) {
	c := loadTestCatalog(t)

	var buf bytes.Buffer
	out, err := Export(context.Background(), c, ExportInput{}, &buf)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Format != FormatMarkdown {
		t.Errorf("Format = %q, want md", out.Format)
	}
	if out.Count != 6 {
		t.Errorf("Count = %d, want 6", out.Count)
	}
	if out.Bytes != int64(buf.Len()) {
		t.Errorf("Bytes = %d, buffer has %d", out.Bytes, buf.Len())
	}

	// The export loads back into the same entries
	reloaded, err := loader.Load(buf.String())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Len() != c.Len() {
		t.Errorf("reloaded %d entries, want %d", reloaded.Len(), c.Len())
	}
}

func TestExport_Formats(t *testing.T) {
	c := loadTestCatalog(t)

	tests := []struct {
		format string
		want   string
	}{
		{FormatHTML, `<h2 id="routing">Routing</h2>`},
		{FormatJSONL, `"_refcat_export":true`},
		{"MD", "## Routing\n"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if _, err := Export(context.Background(), c, ExportInput{Format: tt.format}, &buf); err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestExport_Category(t *testing.T) {
	c := loadTestCatalog(t)

	var buf bytes.Buffer
	out, err := Export(context.Background(), c, ExportInput{Format: FormatJSONL, Category: "data fetching"}, &buf)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Count != 2 {
		t.Errorf("Count = %d, want 2", out.Count)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Errorf("lines = %d, want header + 2", lines)
	}

	_, err = Export(context.Background(), c, ExportInput{Category: "Middleware"}, &buf)
	assertCode(t, err, errors.ErrNotFound)
}

func TestExport_ToFile(t *testing.T) {
	c := loadTestCatalog(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "next.jsonl")

	out, err := Export(context.Background(), c, ExportInput{Path: path}, nil)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.Format != FormatJSONL {
		t.Errorf("Format = %q, want jsonl (inferred from extension)", out.Format)
	}
	if out.Path != path {
		t.Errorf("Path = %q, want %q", out.Path, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if int64(len(data)) != out.Bytes {
		t.Errorf("file has %d bytes, output says %d", len(data), out.Bytes)
	}

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d files, want 1", len(entries))
	}

	// Overwrite in place
	if _, err := Export(context.Background(), c, ExportInput{Path: path, Category: "Images"}, nil); err != nil {
		t.Fatalf("second Export failed: %v", err)
	}
	data2, _ := os.ReadFile(path)
	if len(data2) >= len(data) {
		t.Errorf("overwrite did not replace file (%d >= %d bytes)", len(data2), len(data))
	}
}

func TestExport_Validation(t *testing.T) {
	c := loadTestCatalog(t)
	dir := t.TempDir()

	tests := []struct {
		name  string
		input ExportInput
	}{
		{"unknown format", ExportInput{Format: "pdf"}},
		{"extension mismatch", ExportInput{Path: filepath.Join(dir, "out.md"), Format: FormatJSONL}},
		{"traversal", ExportInput{Path: dir + "/../out.md"}},
		{"directory", ExportInput{Path: dir + ".md"}},
	}

	// A directory with an export extension
	if err := os.Mkdir(dir+".md", 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	t.Cleanup(func() { os.Remove(dir + ".md") })

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Export(context.Background(), c, tt.input, &bytes.Buffer{})
			assertCode(t, err, errors.ErrInvalidRequest)
		})
	}

	_, err := Export(context.Background(), c, ExportInput{}, nil)
	assertCode(t, err, errors.ErrInvalidRequest)
}

func TestExport_RejectsSymlink(t *testing.T) {
	c := loadTestCatalog(t)
	dir := t.TempDir()

	target := filepath.Join(dir, "target.md")
	if err := os.WriteFile(target, []byte("keep"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	link := filepath.Join(dir, "link.md")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := Export(context.Background(), c, ExportInput{Path: link}, nil)
	assertCode(t, err, errors.ErrInvalidRequest)

	data, _ := os.ReadFile(target)
	if string(data) != "keep" {
		t.Errorf("symlink target modified: %q", data)
	}
}

func TestExport_Cancelled(t *testing.T) {
	c := loadTestCatalog(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Export(ctx, c, ExportInput{}, &bytes.Buffer{})
	assertCode(t, err, errors.ErrCancelled)
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]string{
		"a.md":       FormatMarkdown,
		"a.MARKDOWN": FormatMarkdown,
		"a.htm":      FormatHTML,
		"a.jsonl":    FormatJSONL,
		"a.txt":      "",
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
