// Package pipeline sequences the grounded topic generation run: query
// generation, primary search, conditional fallback expansion, and topic
// generation, accumulating a structured run log throughout. Every run owns
// its log, counters and result pool exclusively; runs may execute
// concurrently with no coordination.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wanderkh/topicgen/internal/executor"
	"github.com/wanderkh/topicgen/internal/fallback"
	"github.com/wanderkh/topicgen/internal/queries"
	"github.com/wanderkh/topicgen/internal/seed"
	"github.com/wanderkh/topicgen/internal/topics"
)

// ErrNoQueries terminates a run when the query stage produced nothing.
var ErrNoQueries = errors.New("failed to generate queries")

// ErrNoUsableSources terminates a run when search (including fallback)
// produced zero usable results.
var ErrNoUsableSources = errors.New("no usable sources")

// RunLog is the run-scoped diagnostic summary returned with every outcome,
// success or error. Frozen at return time.
type RunLog struct {
	SeedTitle string        `json:"seedTitle"`
	CityFocus string        `json:"cityFocus"`
	Audience  seed.Audience `json:"audience"`

	PrimaryQueries  []string `json:"queries"`
	FallbackQueries []string `json:"fallbackQueries,omitempty"`

	QueryStats        []executor.QueryStats    `json:"queryStats"`
	Rejections        executor.RejectionCounts `json:"rejections"`
	UsableResultCount int                      `json:"usableResultCount"`
	FallbackUsed      bool                     `json:"fallbackUsed"`
	TokenUsage        int                      `json:"tokenUsage"`
	TopicCount        int                      `json:"topicCount"`
}

// Pipeline wires the stages together. MinUsableResults is the threshold
// below which fallback expansion fires; running below it after fallback is
// tolerated deliberately, since blocking content production on search volume
// costs more than a thin source pool.
type Pipeline struct {
	Queries  *queries.Generator
	Topics   *topics.Generator
	Executor *executor.Executor

	MinUsableResults int
	Now              func() time.Time
}

const defaultMinUsable = 5

func (p *Pipeline) minUsable() int {
	if p.MinUsableResults > 0 {
		return p.MinUsableResults
	}
	return defaultMinUsable
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run executes one full pipeline pass. It returns topics with the populated
// log, or a typed terminal error with the same log; ordinary upstream
// failures (search timeouts, malformed generator output) never surface as
// errors here.
func (p *Pipeline) Run(ctx context.Context, req seed.Request) ([]topics.NewsTopic, RunLog, error) {
	year := p.now().Year()
	runLog := RunLog{
		SeedTitle: req.Title,
		CityFocus: req.CityFocus,
		Audience:  req.Audience,
	}

	qres, err := p.Queries.Generate(ctx, req, year)
	runLog.TokenUsage += qres.TokenUsage
	if err != nil || len(qres.Queries) == 0 {
		log.Error().Err(err).Str("seed", req.Title).Msg("query stage produced nothing")
		return nil, runLog, ErrNoQueries
	}
	runLog.PrimaryQueries = qres.Queries

	seen := make(map[string]struct{})
	batch := p.Executor.Execute(ctx, qres.Queries, req, seen, 1)
	pool := batch.Results
	runLog.QueryStats = batch.QueryStats
	runLog.Rejections = batch.Rejections

	if len(pool) < p.minUsable() {
		fbQueries := fallback.BuildQueries(req, qres.Queries)
		runLog.FallbackUsed = true
		runLog.FallbackQueries = fbQueries
		log.Info().Int("usable", len(pool)).Int("min", p.minUsable()).Strs("fallbackQueries", fbQueries).Msg("primary search starved; expanding with fallback queries")

		fbBatch := p.Executor.Execute(ctx, fbQueries, req, seen, batch.KeptTotal()+1)
		pool = append(pool, fbBatch.Results...)
		executor.SortAndTruncate(&pool, p.Executor.Cap())
		runLog.QueryStats = append(runLog.QueryStats, fbBatch.QueryStats...)
		runLog.Rejections.Add(fbBatch.Rejections)
	}
	runLog.UsableResultCount = len(pool)

	if len(pool) == 0 {
		log.Error().Str("seed", req.Title).Msg("no usable sources after fallback")
		return nil, runLog, ErrNoUsableSources
	}
	if len(pool) < p.minUsable() {
		// Proceed anyway: degraded grounding beats no article. Expected
		// behavior for thin news days, not a failure.
		log.Warn().Int("usable", len(pool)).Int("min", p.minUsable()).Msg("proceeding below the usable-result threshold")
	}

	tres, err := p.Topics.Generate(ctx, req, year, pool)
	runLog.TokenUsage += tres.TokenUsage
	if err != nil {
		log.Error().Err(err).Msg("topic stage failed")
		return nil, runLog, err
	}
	runLog.TopicCount = len(tres.Topics)

	log.Info().
		Int("topics", runLog.TopicCount).
		Int("usable", runLog.UsableResultCount).
		Bool("fallback", runLog.FallbackUsed).
		Int("tokens", runLog.TokenUsage).
		Msg("pipeline run complete")
	return tres.Topics, runLog, nil
}
