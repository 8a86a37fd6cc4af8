package app

import (
	"errors"
	"strings"
	"time"
)

// Flag defaults shared with the CLI so the file-config overlay can tell an
// untouched flag from an explicit choice.
const (
	DefaultTimeout = 25 * time.Second
	DefaultBudget  = 90 * time.Second
)

// Config holds runtime configuration for one retrieval run.
type Config struct {
	// What to retrieve.
	Source     string
	DocumentID string
	HintURL    string

	// Where results go. Empty OutputPath prints to stdout.
	OutputPath string
	PDFPath    string

	// Fetch behavior.
	Timeout      time.Duration
	Budget       time.Duration
	Insecure     bool
	HeadPrecheck bool

	// Extraction.
	SuccessThreshold int
	Markdown         bool

	// Cache (optional, caller-owned).
	CacheDir    string
	CacheMaxAge time.Duration
	CacheClear  bool
	BypassCache bool

	Verbose bool
}

// ValidateConfig performs minimal schema validation before any network
// activity. Detailed source/document validation happens in retrieve.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Source) == "" {
		return errors.New("config: source is required")
	}
	if strings.TrimSpace(cfg.DocumentID) == "" {
		return errors.New("config: document id is required")
	}
	if cfg.Timeout < 0 || cfg.SuccessThreshold < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
