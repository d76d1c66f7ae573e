package topics

import (
	"fmt"
	"strings"

	"github.com/wanderkh/topicgen/internal/seed"
	"github.com/wanderkh/topicgen/internal/style"
	"github.com/wanderkh/topicgen/internal/urlutil"
)

// CleanTopics is the lenient pass: it repairs what it can and drops what it
// cannot. Topics missing required text fields are discarded; audienceFit is
// clamped to the valid enumeration (defaulting to both values when empty or
// entirely invalid); forbidden punctuation is substituted out of free text;
// sourceUrls are filtered to the run's allowed canonical set, deduplicated
// and capped. It never rejects a whole list, so best-effort output survives
// a failed retry.
func CleanTopics(raw []NewsTopic, req seed.Request, allowed map[string]struct{}) []NewsTopic {
	out := make([]NewsTopic, 0, len(raw))
	for i, t := range raw {
		t.Title = style.StripForbiddenPunct(strings.TrimSpace(t.Title))
		t.Angle = style.StripForbiddenPunct(strings.TrimSpace(t.Angle))
		t.WhyItMatters = style.StripForbiddenPunct(strings.TrimSpace(t.WhyItMatters))
		t.Intent = style.StripForbiddenPunct(strings.TrimSpace(t.Intent))
		if t.Title == "" || t.Angle == "" || t.WhyItMatters == "" {
			continue
		}

		t.SourceURLs = filterSourceURLs(t.SourceURLs, allowed)
		if len(t.SourceURLs) == 0 {
			// A topic grounded in nothing we retrieved is unusable.
			continue
		}
		t.SourceCount = len(t.SourceURLs)

		t.AudienceFit = clampAudienceFit(t.AudienceFit)
		t.SuggestedKeywords.Target = style.StripForbiddenPunct(t.SuggestedKeywords.Target)
		t.SuggestedKeywords.Secondary = style.StripAll(t.SuggestedKeywords.Secondary)
		t.SearchQueries = capList(style.StripAll(t.SearchQueries), maxSearchRefs)
		t.OutlineAngles = capList(style.StripAll(t.OutlineAngles), maxOutline)

		if strings.TrimSpace(t.ID) == "" {
			t.ID = fmt.Sprintf("topic-%d", i+1)
		}
		out = append(out, t)
	}
	return out
}

// filterSourceURLs keeps only URLs whose canonical form is in the allowed
// set, deduplicated by canonical key and capped. Invalid citations are
// dropped, never corrected by assumption.
func filterSourceURLs(urls []string, allowed map[string]struct{}) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, maxSourceURLs)
	for _, u := range urls {
		canon := urlutil.Canonicalize(u)
		if _, ok := allowed[canon]; !ok {
			continue
		}
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		out = append(out, canon)
		if len(out) == maxSourceURLs {
			break
		}
	}
	return out
}

func clampAudienceFit(fits []string) []string {
	out := make([]string, 0, len(seed.ValidFits))
	for _, f := range fits {
		v := strings.ToLower(strings.TrimSpace(f))
		if !validFit(v) || containsString(out, v) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return append([]string{}, seed.ValidFits...)
	}
	return out
}

func validFit(v string) bool {
	return containsString(seed.ValidFits, v)
}

func capList(list []string, max int) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, strings.TrimSpace(s))
		if len(out) == max {
			break
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
