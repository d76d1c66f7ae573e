package topics

import (
	"fmt"
	"strings"

	"github.com/wanderkh/topicgen/internal/seed"
	"github.com/wanderkh/topicgen/internal/style"
	"github.com/wanderkh/topicgen/internal/urlutil"
)

// ValidateStrict is the pure inspection pass run after cleaning. It mutates
// nothing and returns the verbatim failure list the retry prompt embeds;
// an empty list means the topics satisfy every hard constraint.
func ValidateStrict(topics []NewsTopic, req seed.Request, year int, allowed map[string]struct{}) []string {
	var failures []string
	if len(topics) < minTopics || len(topics) > maxTopics {
		failures = append(failures, fmt.Sprintf("expected %d-%d topics, got %d", minTopics, maxTopics, len(topics)))
	}
	if len(topics) > 0 && !topics[0].FromSeedTitle {
		failures = append(failures, "the first topic must mirror the seed title and set fromSeedTitle true")
	}
	seedHasYear := req.MentionsYear(year)
	for i, t := range topics {
		label := fmt.Sprintf("topic %d (%s)", i+1, t.Title)
		if i > 0 && t.FromSeedTitle {
			failures = append(failures, label+": only the first topic may set fromSeedTitle")
		}
		if !req.MentionsCity(t.Title) {
			failures = append(failures, fmt.Sprintf("%s: title must mention %s or %s", label, req.CityTerm(), seed.CountryName))
		}
		if seedHasYear {
			for _, y := range seed.Years(t.Title) {
				if y != year {
					failures = append(failures, fmt.Sprintf("%s: title uses year %d; only %d is allowed", label, y, year))
				}
			}
		}
		for _, f := range t.AudienceFit {
			if !validFit(f) {
				failures = append(failures, fmt.Sprintf("%s: invalid audienceFit value %q", label, f))
			}
		}
		failures = append(failures, checkSources(label, t, allowed)...)
		failures = append(failures, checkPunct(label, t)...)
	}
	return failures
}

func checkSources(label string, t NewsTopic, allowed map[string]struct{}) []string {
	var failures []string
	if len(t.SourceURLs) < 1 || len(t.SourceURLs) > maxSourceURLs {
		failures = append(failures, fmt.Sprintf("%s: expected 1-%d sourceUrls, got %d", label, maxSourceURLs, len(t.SourceURLs)))
	}
	seen := map[string]struct{}{}
	for _, u := range t.SourceURLs {
		canon := urlutil.Canonicalize(u)
		if _, ok := allowed[canon]; !ok {
			failures = append(failures, fmt.Sprintf("%s: sourceUrl %s is not in the retrieved source set", label, u))
		}
		if _, dup := seen[canon]; dup {
			failures = append(failures, fmt.Sprintf("%s: duplicate sourceUrl %s", label, u))
		}
		seen[canon] = struct{}{}
	}
	return failures
}

func checkPunct(label string, t NewsTopic) []string {
	fields := []string{t.Title, t.Angle, t.WhyItMatters, t.Intent, t.SuggestedKeywords.Target}
	fields = append(fields, t.SuggestedKeywords.Secondary...)
	fields = append(fields, t.SearchQueries...)
	fields = append(fields, t.OutlineAngles...)
	for _, f := range fields {
		if style.HasForbiddenPunct(f) {
			return []string{fmt.Sprintf("%s: contains forbidden punctuation in %q", label, strings.TrimSpace(f))}
		}
	}
	return nil
}
