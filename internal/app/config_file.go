package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file configuration schema. Nested sections map
// naturally to the flags.
type FileConfig struct {
	Output string `yaml:"output" json:"output"`
	PDF    string `yaml:"pdf" json:"pdf"`

	Fetch struct {
		Timeout      time.Duration `yaml:"timeout" json:"timeout"`
		Budget       time.Duration `yaml:"budget" json:"budget"`
		Insecure     bool          `yaml:"insecure" json:"insecure"`
		HeadPrecheck bool          `yaml:"headPrecheck" json:"headPrecheck"`
	} `yaml:"fetch" json:"fetch"`

	Extract struct {
		Threshold int   `yaml:"threshold" json:"threshold"`
		Markdown  *bool `yaml:"markdown" json:"markdown"`
	} `yaml:"extract" json:"extract"`

	Cache struct {
		Dir    string        `yaml:"dir" json:"dir"`
		MaxAge time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear  bool          `yaml:"clear" json:"clear"`
	} `yaml:"cache" json:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON.
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays file values into cfg for fields still at their
// zero/default value, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.OutputPath == "" && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if cfg.PDFPath == "" && fc.PDF != "" {
		cfg.PDFPath = fc.PDF
	}
	if (cfg.Timeout == 0 || cfg.Timeout == DefaultTimeout) && fc.Fetch.Timeout > 0 {
		cfg.Timeout = fc.Fetch.Timeout
	}
	if (cfg.Budget == 0 || cfg.Budget == DefaultBudget) && fc.Fetch.Budget > 0 {
		cfg.Budget = fc.Fetch.Budget
	}
	if !cfg.Insecure && fc.Fetch.Insecure {
		cfg.Insecure = true
	}
	if !cfg.HeadPrecheck && fc.Fetch.HeadPrecheck {
		cfg.HeadPrecheck = true
	}
	if cfg.SuccessThreshold == 0 && fc.Extract.Threshold > 0 {
		cfg.SuccessThreshold = fc.Extract.Threshold
	}
	if fc.Extract.Markdown != nil {
		cfg.Markdown = *fc.Extract.Markdown
	}
	if cfg.CacheDir == "" && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
