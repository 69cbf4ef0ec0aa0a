package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// Document is the default reference document loaded when --doc is not given.
	// A relative path in a repo config resolves against the repo root.
	Document string `json:"document,omitempty"`

	// HTMLSelector picks the content root of HTML documents before conversion.
	// Comma-separated CSS selectors; the first match wins.
	HTMLSelector string `json:"html_selector,omitempty"`

	// MaxDocumentBytes is the largest document the loader accepts.
	MaxDocumentBytes int64 `json:"max_document_bytes"`

	// WebBind is the interface the web UI listens on.
	WebBind string `json:"web_bind,omitempty"`

	// WebPort is the port the web UI listens on.
	WebPort int `json:"web_port,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// All tools are enabled by default. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// All tools belonging to disabled types are excluded from registration.
	// Known types: "catalog". Unknown type names are logged as warnings.
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultHTMLSelector is used when no html_selector is configured.
const DefaultHTMLSelector = "main, article, body"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HTMLSelector:     DefaultHTMLSelector,
		MaxDocumentBytes: 4 << 20,
		WebBind:          "127.0.0.1",
		WebPort:          8787,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.refcat.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads configuration from both global (~/.refcat) and repo (.refcat) directories.
// Repo config is found by walking upward from startDir to find the nearest .refcat/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repoConfigPath := FindRepoConfig(startDir)
	repo, err := loadFileRaw(repoConfigPath)
	if err != nil {
		return nil, err
	}
	if repoConfigPath != "" && repo.Document != "" && !filepath.IsAbs(repo.Document) {
		// .refcat/config.json -> repo root
		root := filepath.Dir(filepath.Dir(repoConfigPath))
		repo.Document = filepath.Join(root, repo.Document)
	}

	// Apply defaults, then global, then repo
	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .refcat/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".refcat", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.Document = firstNonEmpty(overlay.Document, base.Document)
	result.HTMLSelector = firstNonEmpty(overlay.HTMLSelector, base.HTMLSelector)
	result.WebBind = firstNonEmpty(overlay.WebBind, base.WebBind)

	result.MaxDocumentBytes = overlay.MaxDocumentBytes
	if result.MaxDocumentBytes == 0 {
		result.MaxDocumentBytes = base.MaxDocumentBytes
	}

	result.WebPort = overlay.WebPort
	if result.WebPort == 0 {
		result.WebPort = base.WebPort
	}

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return strings.TrimSpace(b)
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
