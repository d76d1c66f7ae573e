// Package executor runs search queries against a provider and turns raw hits
// into a scored, deduplicated candidate pool with per-query diagnostics.
package executor

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wanderkh/topicgen/internal/domains"
	"github.com/wanderkh/topicgen/internal/score"
	"github.com/wanderkh/topicgen/internal/search"
	"github.com/wanderkh/topicgen/internal/seed"
	"github.com/wanderkh/topicgen/internal/urlutil"
)

// SearchResult is one normalized, scored candidate source. URL is canonical.
// Instances live for a single pipeline run and are not mutated after scoring.
type SearchResult struct {
	ID          int
	Query       string
	Title       string
	Snippet     string
	URL         string
	PublishedAt string
	SourceName  string
	Score       int
}

// QueryStats captures per-query execution diagnostics. Immutable after
// creation.
type QueryStats struct {
	Query           string
	RawCount        int
	NormalizedCount int
	KeptCount       int
	TopDomains      []string
}

// RejectionCounts tallies why raw items were dropped during normalization.
// Counters only ever increase; fallback batches merge additively.
type RejectionCounts struct {
	MissingURL    int
	MissingTitle  int
	BlockedDomain int
	DuplicateURL  int
	OwnDomain     int
}

// Add folds another batch's counts into c.
func (c *RejectionCounts) Add(o RejectionCounts) {
	c.MissingURL += o.MissingURL
	c.MissingTitle += o.MissingTitle
	c.BlockedDomain += o.BlockedDomain
	c.DuplicateURL += o.DuplicateURL
	c.OwnDomain += o.OwnDomain
}

// Total returns the sum of all counters.
func (c RejectionCounts) Total() int {
	return c.MissingURL + c.MissingTitle + c.BlockedDomain + c.DuplicateURL + c.OwnDomain
}

// Batch is the outcome of executing a set of queries.
type Batch struct {
	Results    []SearchResult
	QueryStats []QueryStats
	Rejections RejectionCounts
}

// Executor issues one provider call per query, gates and scores the raw
// items, and returns the pool sorted by descending score and truncated to
// PoolCap. It holds no per-run state: dedup identity lives in the
// caller-owned seen set so fallback passes never reintroduce a canonical URL.
type Executor struct {
	Provider search.Provider
	Policy   domains.Policy

	PerQueryCap int           // raw results requested per query
	PoolCap     int           // final candidate pool size
	Timeout     time.Duration // per provider call
	RecencyDays int
}

const (
	defaultPerQueryCap = 10
	defaultPoolCap     = 12
	defaultTimeout     = 8 * time.Second
	defaultRecencyDays = 365
	maxTopDomains      = 5
)

func (e *Executor) perQueryCap() int {
	if e.PerQueryCap > 0 {
		return e.PerQueryCap
	}
	return defaultPerQueryCap
}

// Cap exposes the effective pool cap so callers can re-truncate after
// merging a fallback batch.
func (e *Executor) Cap() int { return e.poolCap() }

func (e *Executor) poolCap() int {
	if e.PoolCap > 0 {
		return e.PoolCap
	}
	return defaultPoolCap
}

func (e *Executor) timeout() time.Duration {
	if e.Timeout > 0 {
		return e.Timeout
	}
	return defaultTimeout
}

func (e *Executor) recencyDays() int {
	if e.RecencyDays > 0 {
		return e.RecencyDays
	}
	return defaultRecencyDays
}

// Execute runs every query and returns the merged candidate pool. A provider
// timeout or error counts as zero results for that query; no error escapes
// this stage. seen maps canonical URLs already in the caller's pool; items
// admitted here are added to it. startID seeds the run-local sequential ids.
func (e *Executor) Execute(ctx context.Context, queries []string, req seed.Request, seen map[string]struct{}, startID int) Batch {
	var batch Batch
	nextID := startID
	for _, q := range queries {
		qctx, cancel := context.WithTimeout(ctx, e.timeout())
		raw, err := e.Provider.Search(qctx, q, e.perQueryCap(), e.recencyDays())
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("query", q).Msg("search call failed; recording zero results")
			batch.QueryStats = append(batch.QueryStats, QueryStats{Query: q})
			continue
		}
		if len(raw) > e.perQueryCap() {
			raw = raw[:e.perQueryCap()]
		}
		stats := QueryStats{Query: q, RawCount: len(raw)}
		for _, item := range raw {
			r, ok := e.admit(item, q, &batch.Rejections, &stats, seen)
			if !ok {
				continue
			}
			r.ID = nextID
			nextID++
			r.Score = score.Score(score.Input{
				Title:   r.Title,
				Snippet: r.Snippet,
				Host:    urlutil.Host(r.URL),
			}, req, e.Policy)
			batch.Results = append(batch.Results, r)
			stats.KeptCount++
		}
		log.Debug().Str("query", q).Int("raw", stats.RawCount).Int("kept", stats.KeptCount).Msg("query executed")
		batch.QueryStats = append(batch.QueryStats, stats)
	}
	SortAndTruncate(&batch.Results, e.poolCap())
	return batch
}

// KeptTotal returns how many items passed every gate across the batch,
// before the final pool truncation. Run-local ids continue from here when a
// fallback batch follows.
func (b Batch) KeptTotal() int {
	total := 0
	for _, s := range b.QueryStats {
		total += s.KeptCount
	}
	return total
}

// admit runs one raw item through the ordered rejection gates. Each failed
// gate bumps exactly one counter and skips the item.
func (e *Executor) admit(item search.Result, query string, rej *RejectionCounts, stats *QueryStats, seen map[string]struct{}) (SearchResult, bool) {
	if strings.TrimSpace(item.URL) == "" {
		rej.MissingURL++
		return SearchResult{}, false
	}
	if strings.TrimSpace(item.Title) == "" {
		rej.MissingTitle++
		return SearchResult{}, false
	}
	stats.NormalizedCount++

	canon := urlutil.Canonicalize(item.URL)
	if _, dup := seen[canon]; dup {
		rej.DuplicateURL++
		return SearchResult{}, false
	}
	host := urlutil.Host(canon)
	if e.Policy.IsBlockedHost(host) {
		rej.BlockedDomain++
		return SearchResult{}, false
	}
	if e.Policy.IsOwnHost(host) {
		rej.OwnDomain++
		return SearchResult{}, false
	}

	seen[canon] = struct{}{}
	if host != "" && len(stats.TopDomains) < maxTopDomains && !containsString(stats.TopDomains, host) {
		stats.TopDomains = append(stats.TopDomains, host)
	}
	return SearchResult{
		Query:       query,
		Title:       strings.TrimSpace(item.Title),
		Snippet:     stripHTML(item.Snippet),
		URL:         canon,
		PublishedAt: strings.TrimSpace(item.PublishedDate),
		SourceName:  strings.TrimSpace(item.DisplayLink),
	}, true
}

// SortAndTruncate orders the pool by descending score and caps it. The sort
// is stable, so ties keep their discovery order regardless of which query
// produced them.
func SortAndTruncate(results *[]SearchResult, cap int) {
	sort.SliceStable(*results, func(i, j int) bool {
		return (*results)[i].Score > (*results)[j].Score
	})
	if cap > 0 && len(*results) > cap {
		*results = (*results)[:cap]
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
