package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested
// sections map naturally onto flags and env.
type FileConfig struct {
	Seed struct {
		Title    string `yaml:"title" json:"title"`
		City     string `yaml:"city" json:"city"`
		Audience string `yaml:"audience" json:"audience"`
	} `yaml:"seed" json:"seed"`

	Output    string `yaml:"output" json:"output"`
	OutputPDF string `yaml:"outputPDF" json:"outputPDF"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Searx struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
		UA  string `yaml:"ua" json:"ua"`
	} `yaml:"searx" json:"searx"`

	Search struct {
		File        string        `yaml:"file" json:"file"`
		Timeout     time.Duration `yaml:"timeout" json:"timeout"`
		RecencyDays int           `yaml:"recencyDays" json:"recencyDays"`
	} `yaml:"search" json:"search"`

	Titles string `yaml:"titles" json:"titles"`

	Max struct {
		PerQuery int `yaml:"perQuery" json:"perQuery"`
		Pool     int `yaml:"pool" json:"pool"`
	} `yaml:"max" json:"max"`

	Min struct {
		UsableResults int `yaml:"usableResults" json:"usableResults"`
	} `yaml:"min" json:"min"`

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
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for fields still
// at their zero value, so explicit flags keep precedence over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.SeedTitle == "" && fc.Seed.Title != "" {
		cfg.SeedTitle = fc.Seed.Title
	}
	if cfg.CityFocus == "" && fc.Seed.City != "" {
		cfg.CityFocus = fc.Seed.City
	}
	if cfg.Audience == "" && fc.Seed.Audience != "" {
		cfg.Audience = fc.Seed.Audience
	}
	if cfg.OutputPath == "" && fc.Output != "" {
		cfg.OutputPath = fc.Output
	}
	if cfg.OutputPDFPath == "" && fc.OutputPDF != "" {
		cfg.OutputPDFPath = fc.OutputPDF
	}
	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.SearxURL == "" && fc.Searx.URL != "" {
		cfg.SearxURL = fc.Searx.URL
	}
	if cfg.SearxKey == "" && fc.Searx.Key != "" {
		cfg.SearxKey = fc.Searx.Key
	}
	if cfg.SearxUA == "" && fc.Searx.UA != "" {
		cfg.SearxUA = fc.Searx.UA
	}
	if cfg.FileSearchPath == "" && fc.Search.File != "" {
		cfg.FileSearchPath = fc.Search.File
	}
	if cfg.SearchTimeout == 0 && fc.Search.Timeout > 0 {
		cfg.SearchTimeout = fc.Search.Timeout
	}
	if cfg.RecencyDays == 0 && fc.Search.RecencyDays > 0 {
		cfg.RecencyDays = fc.Search.RecencyDays
	}
	if cfg.TitlesPath == "" && fc.Titles != "" {
		cfg.TitlesPath = fc.Titles
	}
	if cfg.PerQueryCap == 0 && fc.Max.PerQuery > 0 {
		cfg.PerQueryCap = fc.Max.PerQuery
	}
	if cfg.PoolCap == 0 && fc.Max.Pool > 0 {
		cfg.PoolCap = fc.Max.Pool
	}
	if cfg.MinUsableResults == 0 && fc.Min.UsableResults > 0 {
		cfg.MinUsableResults = fc.Min.UsableResults
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
