package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wanderkh/topicgen/internal/app"
	"github.com/wanderkh/topicgen/internal/pipeline"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		seedTitle  string
		cityFocus  string
		audience   string
		outputPath string
		outputPDF  string
		configPath string
		envFile    string

		searxURL       string
		searxKey       string
		searxUA        string
		fileSearchPath string

		llmBaseURL string
		llmModel   string
		llmKey     string

		titlesPath string

		perQuery      int
		poolCap       int
		minUsable     int
		searchTimeout time.Duration
		recencyDays   int

		verbose bool
	)

	flag.StringVar(&seedTitle, "seed", "", "Seed title to expand into topic candidates")
	flag.StringVar(&cityFocus, "city", "", "City focus (default: country wide)")
	flag.StringVar(&audience, "audience", "", "Audience focus: travellers, teachers or both (default both)")
	flag.StringVar(&outputPath, "output", "", "Path to write the Markdown run report (default: stdout)")
	flag.StringVar(&outputPDF, "output.pdf", "", "Optional path to also write a PDF run report")
	flag.StringVar(&configPath, "config", "", "Optional YAML/JSON config file")
	flag.StringVar(&envFile, "env", ".env", "Optional dotenv file to load before reading env vars")
	flag.StringVar(&searxURL, "searx.url", "", "SearxNG base URL (or SEARX_URL)")
	flag.StringVar(&searxKey, "searx.key", "", "SearxNG API key (or SEARX_KEY)")
	flag.StringVar(&searxUA, "searx.ua", "topicgen/1.0 (+https://wanderkh.com)", "Custom User-Agent for search requests")
	flag.StringVar(&fileSearchPath, "search.file", "", "Path to JSON file for offline file-based search provider (or SEARCH_FILE)")
	flag.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL (or LLM_BASE_URL)")
	flag.StringVar(&llmModel, "llm.model", "", "Model name (or LLM_MODEL)")
	flag.StringVar(&llmKey, "llm.key", "", "API key for OpenAI-compatible server (or LLM_API_KEY)")
	flag.StringVar(&titlesPath, "titles", "", "JSON file with existing titles for the duplicate screen (or TITLES_FILE)")
	flag.IntVar(&perQuery, "max.perQuery", 0, "Raw results requested per query (0 uses the default)")
	flag.IntVar(&poolCap, "max.pool", 0, "Final candidate pool size (0 uses the default)")
	flag.IntVar(&minUsable, "min.usableResults", 0, "Usable-result threshold before fallback fires (0 uses the default)")
	flag.DurationVar(&searchTimeout, "search.timeout", 0, "Per-query search timeout (0 uses the default)")
	flag.IntVar(&recencyDays, "search.recencyDays", 0, "Search freshness window in days (0 uses the default)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if err := app.LoadEnvFiles(envFile); err != nil {
		log.Error().Err(err).Msg("load env file")
		os.Exit(1)
	}

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		SeedTitle:        seedTitle,
		CityFocus:        cityFocus,
		Audience:         audience,
		OutputPath:       outputPath,
		OutputPDFPath:    outputPDF,
		SearxURL:         searxURL,
		SearxKey:         searxKey,
		SearxUA:          searxUA,
		FileSearchPath:   fileSearchPath,
		LLMBaseURL:       llmBaseURL,
		LLMModel:         llmModel,
		LLMAPIKey:        llmKey,
		TitlesPath:       titlesPath,
		PerQueryCap:      perQuery,
		PoolCap:          poolCap,
		MinUsableResults: minUsable,
		SearchTimeout:    searchTimeout,
		RecencyDays:      recencyDays,
		Verbose:          verbose,
	}
	// Env (including the dotenv file loaded above) fills what flags left
	// empty; the config file comes last.
	app.ApplyEnvConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("load config file")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("configuration invalid")
		os.Exit(1)
	}

	ctx := context.Background()
	if err := a.Run(ctx); err != nil {
		// Terminal pipeline conditions exit non-zero but still wrote the
		// diagnostic report.
		if errors.Is(err, pipeline.ErrNoQueries) || errors.Is(err, pipeline.ErrNoUsableSources) {
			log.Error().Err(err).Msg("pipeline terminated")
			os.Exit(2)
		}
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
