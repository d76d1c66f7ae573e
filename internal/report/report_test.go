package report

import (
	"strings"
	"testing"
	"time"

	"github.com/wanderkh/topicgen/internal/executor"
	"github.com/wanderkh/topicgen/internal/pipeline"
	"github.com/wanderkh/topicgen/internal/seed"
	"github.com/wanderkh/topicgen/internal/topics"
)

var reportTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func sampleLog() pipeline.RunLog {
	return pipeline.RunLog{
		SeedTitle:       "Cambodia visa update",
		CityFocus:       seed.CityWide,
		Audience:        seed.AudienceBoth,
		PrimaryQueries:  []string{"Cambodia visa update news", "Cambodia entry requirements"},
		FallbackQueries: []string{"Cambodia travel news"},
		QueryStats: []executor.QueryStats{
			{Query: "Cambodia visa update news", RawCount: 8, NormalizedCount: 7, KeptCount: 5, TopDomains: []string{"gov.kh", "apnews.com"}},
			{Query: "Cambodia entry requirements", RawCount: 3, NormalizedCount: 3, KeptCount: 2},
			{Query: "Cambodia travel news", RawCount: 2, NormalizedCount: 2, KeptCount: 1},
		},
		Rejections:        executor.RejectionCounts{MissingURL: 1, DuplicateURL: 2},
		UsableResultCount: 8,
		FallbackUsed:      true,
		TokenUsage:        740,
		TopicCount:        1,
	}
}

func sampleTopics() []topics.NewsTopic {
	return []topics.NewsTopic{{
		ID:            "topic-1",
		Title:         "Cambodia visa update explained",
		Angle:         "what the new rules mean in practice",
		WhyItMatters:  "entry rules change travel plans",
		AudienceFit:   []string{"travellers"},
		SourceURLs:    []string{"https://gov.kh/press/1", "https://apnews.com/a"},
		SourceCount:   2,
		FromSeedTitle: true,
	}}
}

func TestRenderMarkdown_IncludesTopicsAndDiagnostics(t *testing.T) {
	out := RenderMarkdown(sampleTopics(), sampleLog(), nil, reportTime)

	for _, want := range []string{
		"# Topic candidates: Cambodia visa update",
		"2026-03-02",
		"## 1. Cambodia visa update explained",
		"Mirrors the seed title.",
		"- <https://gov.kh/press/1>",
		"- <https://apnews.com/a>",
		"## Run diagnostics",
		"- Usable results: 8",
		"- Fallback used: true",
		"- Token usage: 740",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdown_EveryQueryInStatsTable(t *testing.T) {
	runLog := sampleLog()
	out := RenderMarkdown(sampleTopics(), runLog, nil, reportTime)
	for _, qs := range runLog.QueryStats {
		if !strings.Contains(out, "| "+qs.Query+" |") {
			t.Fatalf("stats table missing query %q", qs.Query)
		}
	}
	if !strings.Contains(out, "gov.kh, apnews.com") {
		t.Fatalf("top domains missing from the stats table:\n%s", out)
	}
	if !strings.Contains(out, "Fallback queries:") {
		t.Fatalf("fallback section missing")
	}
	if !strings.Contains(out, "missing URL 1") || !strings.Contains(out, "duplicate URL 2") {
		t.Fatalf("rejection counters missing:\n%s", out)
	}
}

func TestRenderMarkdown_FailedRunStillReports(t *testing.T) {
	runLog := sampleLog()
	runLog.UsableResultCount = 0
	runLog.TopicCount = 0
	out := RenderMarkdown(nil, runLog, pipeline.ErrNoUsableSources, reportTime)
	if !strings.Contains(out, "**Run failed:** no usable sources") {
		t.Fatalf("error banner missing:\n%s", out)
	}
	if !strings.Contains(out, "## Run diagnostics") {
		t.Fatalf("diagnostics must render even on failure")
	}
	if strings.Contains(out, "## 1.") {
		t.Fatalf("no topic sections expected on a failed run")
	}
}

func TestRenderMarkdown_NoFallbackSectionWhenUnused(t *testing.T) {
	runLog := sampleLog()
	runLog.FallbackUsed = false
	runLog.FallbackQueries = nil
	out := RenderMarkdown(sampleTopics(), runLog, nil, reportTime)
	if strings.Contains(out, "Fallback queries:") {
		t.Fatalf("fallback section must be omitted when unused")
	}
	if !strings.Contains(out, "- Fallback used: false") {
		t.Fatalf("fallback flag must still be reported")
	}
}
