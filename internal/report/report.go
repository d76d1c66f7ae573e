// Package report renders a pipeline run as a Markdown document for editors,
// with optional PDF export.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/wanderkh/topicgen/internal/pipeline"
	"github.com/wanderkh/topicgen/internal/topics"
)

// RenderMarkdown produces the run report: the topic candidates followed by a
// diagnostics section mirroring the run log, so a failed or thin run can be
// diagnosed from the artifact alone.
func RenderMarkdown(list []topics.NewsTopic, runLog pipeline.RunLog, runErr error, now time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Topic candidates: %s\n\n", runLog.SeedTitle)
	fmt.Fprintf(&sb, "%s\n\n", now.Format("2006-01-02"))
	fmt.Fprintf(&sb, "Focus: %s. Audience: %s.\n\n", runLog.CityFocus, runLog.Audience)

	if runErr != nil {
		fmt.Fprintf(&sb, "**Run failed:** %s\n\n", runErr.Error())
	}

	for i, t := range list {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, t.Title)
		if t.FromSeedTitle {
			sb.WriteString("Mirrors the seed title.\n\n")
		}
		fmt.Fprintf(&sb, "Angle: %s\n\n", t.Angle)
		fmt.Fprintf(&sb, "Why it matters: %s\n\n", t.WhyItMatters)
		fmt.Fprintf(&sb, "Audience fit: %s. Intent: %s.\n\n", strings.Join(t.AudienceFit, ", "), t.Intent)
		if t.SuggestedKeywords.Target != "" {
			fmt.Fprintf(&sb, "Keywords: %s", t.SuggestedKeywords.Target)
			if len(t.SuggestedKeywords.Secondary) > 0 {
				fmt.Fprintf(&sb, " (%s)", strings.Join(t.SuggestedKeywords.Secondary, ", "))
			}
			sb.WriteString("\n\n")
		}
		if len(t.OutlineAngles) > 0 {
			sb.WriteString("Outline angles:\n")
			for _, a := range t.OutlineAngles {
				fmt.Fprintf(&sb, "- %s\n", a)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("Sources:\n")
		for _, u := range t.SourceURLs {
			fmt.Fprintf(&sb, "- <%s>\n", u)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Run diagnostics\n\n")
	fmt.Fprintf(&sb, "- Usable results: %d\n", runLog.UsableResultCount)
	fmt.Fprintf(&sb, "- Fallback used: %t\n", runLog.FallbackUsed)
	fmt.Fprintf(&sb, "- Token usage: %d\n", runLog.TokenUsage)
	fmt.Fprintf(&sb, "- Topics returned: %d\n\n", runLog.TopicCount)

	sb.WriteString("| Query | Raw | Normalized | Kept | Top domains |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, qs := range runLog.QueryStats {
		fmt.Fprintf(&sb, "| %s | %d | %d | %d | %s |\n",
			qs.Query, qs.RawCount, qs.NormalizedCount, qs.KeptCount, strings.Join(qs.TopDomains, ", "))
	}
	sb.WriteString("\n")

	r := runLog.Rejections
	fmt.Fprintf(&sb, "Rejections: missing URL %d, missing title %d, duplicate URL %d, blocked domain %d, own domain %d.\n",
		r.MissingURL, r.MissingTitle, r.DuplicateURL, r.BlockedDomain, r.OwnDomain)
	if len(runLog.FallbackQueries) > 0 {
		sb.WriteString("\nFallback queries:\n")
		for _, q := range runLog.FallbackQueries {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
	}
	return sb.String()
}
