package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/wanderkh/topicgen/internal/domains"
	"github.com/wanderkh/topicgen/internal/executor"
	"github.com/wanderkh/topicgen/internal/llm"
	"github.com/wanderkh/topicgen/internal/pipeline"
	"github.com/wanderkh/topicgen/internal/queries"
	"github.com/wanderkh/topicgen/internal/report"
	"github.com/wanderkh/topicgen/internal/search"
	"github.com/wanderkh/topicgen/internal/seed"
	"github.com/wanderkh/topicgen/internal/titledup"
	"github.com/wanderkh/topicgen/internal/titles"
	"github.com/wanderkh/topicgen/internal/topics"
)

// App wires configuration into a runnable pipeline pass.
type App struct {
	cfg  Config
	pipe *pipeline.Pipeline
}

// New builds the app: the LLM client, the search provider and the pipeline.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		transportCfg.BaseURL = cfg.LLMBaseURL
	}
	transportCfg.HTTPClient = newHTTPClient()
	client := &llm.OpenAIProvider{Inner: openai.NewClientWithConfig(transportCfg)}

	var provider search.Provider
	if cfg.FileSearchPath != "" {
		provider = &search.FileProvider{Path: cfg.FileSearchPath}
	} else {
		provider = &search.SearxNG{
			BaseURL:    cfg.SearxURL,
			APIKey:     cfg.SearxKey,
			UserAgent:  cfg.SearxUA,
			HTTPClient: newHTTPClient(),
		}
	}
	log.Debug().Str("provider", provider.Name()).Str("model", cfg.LLMModel).Msg("app configured")

	pipe := &pipeline.Pipeline{
		Queries: &queries.Generator{Client: client, Model: cfg.LLMModel},
		Topics:  &topics.Generator{Client: client, Model: cfg.LLMModel},
		Executor: &executor.Executor{
			Provider:    provider,
			Policy:      domains.Default(),
			PerQueryCap: cfg.PerQueryCap,
			PoolCap:     cfg.PoolCap,
			Timeout:     cfg.SearchTimeout,
			RecencyDays: cfg.RecencyDays,
		},
		MinUsableResults: cfg.MinUsableResults,
	}
	return &App{cfg: cfg, pipe: pipe}, nil
}

// Run executes one pipeline pass, screens the returned titles against the
// existing corpus when one is configured, and writes the run report. The
// pipeline's typed error is returned after the report is written so the
// caller can apply its exit-code policy with diagnostics already on disk.
func (a *App) Run(ctx context.Context) error {
	req := seed.Request{
		Title:     a.cfg.SeedTitle,
		CityFocus: a.cfg.CityFocus,
		Audience:  seed.Audience(a.cfg.Audience),
	}
	if req.CityFocus == "" {
		req.CityFocus = seed.CityWide
	}
	if req.Audience == "" {
		req.Audience = seed.AudienceBoth
	}

	list, runLog, runErr := a.pipe.Run(ctx, req)

	if runErr == nil && a.cfg.TitlesPath != "" {
		list = a.screenDuplicates(ctx, list)
		runLog.TopicCount = len(list)
	}

	md := report.RenderMarkdown(list, runLog, runErr, time.Now())
	if a.cfg.OutputPath != "" {
		if err := os.WriteFile(a.cfg.OutputPath, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info().Str("out", a.cfg.OutputPath).Msg("wrote run report")
	} else {
		fmt.Print(md)
	}
	if a.cfg.OutputPDFPath != "" {
		if err := report.WritePDF(md, a.cfg.OutputPDFPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("out", a.cfg.OutputPDFPath).Msg("wrote pdf report")
	}
	return runErr
}

// screenDuplicates drops topics whose titles near-duplicate the existing
// corpus. A titles source that cannot be read downgrades to a warning; the
// guard is advisory, not part of the pipeline contract.
func (a *App) screenDuplicates(ctx context.Context, list []topics.NewsTopic) []topics.NewsTopic {
	src := &titles.FileSource{Path: a.cfg.TitlesPath}
	existing, err := src.ExistingTitles(ctx)
	if err != nil {
		log.Warn().Err(err).Str("path", a.cfg.TitlesPath).Msg("existing titles unavailable; skipping duplicate screen")
		return list
	}
	kept := list[:0]
	for _, t := range list {
		rep := titledup.CheckTitleSimilarity(t.Title, existing)
		if rep.IsDuplicate {
			log.Info().Str("title", t.Title).Str("reason", rep.Reason).Msg("dropping duplicate topic")
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// newHTTPClient returns a client tuned for repeated calls to the same hosts.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
			MaxIdleConns:        32,
			MaxIdleConnsPerHost: 16,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
