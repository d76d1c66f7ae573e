package app

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/wanderkh/topicgen/internal/seed"
)

// Config holds runtime configuration for one topicgen invocation.
type Config struct {
	// Run inputs
	SeedTitle string
	CityFocus string
	Audience  string

	// Output
	OutputPath    string
	OutputPDFPath string

	// Search
	SearxURL       string
	SearxKey       string
	SearxUA        string
	FileSearchPath string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Duplicate guard
	TitlesPath string

	// Limits
	PerQueryCap      int
	PoolCap          int
	MinUsableResults int
	SearchTimeout    time.Duration
	RecencyDays      int

	Verbose bool
}

// ApplyEnvConfig overlays environment values onto cfg for fields still
// empty. Runs after flag parsing and any dotenv load, before the config
// file overlay, so precedence stays flags, then env, then file.
func ApplyEnvConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	fromEnv := func(dst *string, key string) {
		if *dst == "" {
			if v := strings.TrimSpace(os.Getenv(key)); v != "" {
				*dst = v
			}
		}
	}
	fromEnv(&cfg.SearxURL, "SEARX_URL")
	fromEnv(&cfg.SearxKey, "SEARX_KEY")
	fromEnv(&cfg.FileSearchPath, "SEARCH_FILE")
	fromEnv(&cfg.LLMBaseURL, "LLM_BASE_URL")
	fromEnv(&cfg.LLMModel, "LLM_MODEL")
	fromEnv(&cfg.LLMAPIKey, "LLM_API_KEY")
	fromEnv(&cfg.TitlesPath, "TITLES_FILE")
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.SeedTitle) == "" {
		return errors.New("config: seed title is required")
	}
	if strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	if strings.TrimSpace(cfg.SearxURL) == "" && strings.TrimSpace(cfg.FileSearchPath) == "" {
		return errors.New("config: a search provider is required (searx.url or search.file)")
	}
	switch seed.Audience(cfg.Audience) {
	case seed.AudienceTravellers, seed.AudienceTeachers, seed.AudienceBoth, "":
	default:
		return errors.New("config: audience must be travellers, teachers or both")
	}
	if cfg.PerQueryCap < 0 || cfg.PoolCap < 0 || cfg.MinUsableResults < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
