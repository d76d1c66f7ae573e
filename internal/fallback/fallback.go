// Package fallback derives broader backup queries from a seed title when the
// primary search pass starved. No model call is involved: the expansion is
// pure and deterministic so a scarce-data run stays reproducible.
package fallback

import (
	"regexp"
	"strings"

	"github.com/wanderkh/topicgen/internal/seed"
)

const (
	maxSeedWords = 4
	maxQueries   = 6
	minWordLen   = 4
)

var (
	yearTokenRe = regexp.MustCompile(`^(19|20)\d{2}$`)
	punctRe     = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
)

// BuildQueries combines significant seed-title words with the city focus and
// a small set of audience and authority templates. Candidates that
// case-insensitively duplicate an already-used query are filtered out; at
// most maxQueries are returned.
func BuildQueries(req seed.Request, used []string) []string {
	city := req.CityTerm()
	words := significantWords(req.Title)

	var candidates []string
	if len(words) > 0 {
		joined := strings.Join(words, " ")
		candidates = append(candidates,
			joined+" "+city+" news",
			city+" "+joined+" latest update",
		)
	}
	candidates = append(candidates, audienceQueries(req.Audience, city)...)
	candidates = append(candidates,
		city+" government official announcement",
		city+" embassy travel notice",
		city+" immigration department news",
	)

	seen := map[string]struct{}{}
	for _, q := range used {
		seen[strings.ToLower(strings.TrimSpace(q))] = struct{}{}
	}
	out := make([]string, 0, maxQueries)
	for _, c := range candidates {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) == maxQueries {
			break
		}
	}
	return out
}

func audienceQueries(a seed.Audience, city string) []string {
	switch a {
	case seed.AudienceTravellers:
		return []string{
			city + " travel advisory",
			city + " entry requirements for tourists",
		}
	case seed.AudienceTeachers:
		return []string{
			city + " teaching English requirements",
			city + " work permit for teachers",
		}
	default:
		return []string{
			city + " travel advisory",
			city + " entry requirements for tourists",
			city + " work permit for foreigners",
		}
	}
}

// significantWords extracts up to maxSeedWords meaningful words from the
// seed title: punctuation stripped, numeric years removed, short filler
// words excluded.
func significantWords(title string) []string {
	clean := punctRe.ReplaceAllString(strings.ToLower(title), " ")
	var out []string
	for _, w := range strings.Fields(clean) {
		if len(w) < minWordLen {
			continue
		}
		if yearTokenRe.MatchString(w) {
			continue
		}
		out = append(out, w)
		if len(out) == maxSeedWords {
			break
		}
	}
	return out
}
