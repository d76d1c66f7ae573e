// Package score assigns a quality score to one search result given a city
// focus. Scoring is an ordered list of (predicate, delta) rules summed into
// a total, so rules can be added and tested in isolation and the sum is
// reproducible.
package score

import (
	"regexp"
	"strings"

	"github.com/wanderkh/topicgen/internal/domains"
	"github.com/wanderkh/topicgen/internal/seed"
)

// Input carries the fields of a result that scoring inspects.
type Input struct {
	Title   string
	Snippet string
	Host    string
}

type rule struct {
	name  string
	delta int
	hit   func(in Input, req seed.Request, pol domains.Policy) bool
}

var rules = []rule{
	{"long snippet", 3, func(in Input, _ seed.Request, _ domains.Policy) bool {
		return len(strings.TrimSpace(in.Snippet)) >= 40
	}},
	{"short snippet", 1, func(in Input, _ seed.Request, _ domains.Policy) bool {
		n := len(strings.TrimSpace(in.Snippet))
		return n > 0 && n < 40
	}},
	{"trusted host", 2, func(in Input, _ seed.Request, pol domains.Policy) bool {
		return pol.IsHighTrust(in.Host)
	}},
	{"title mentions focus", 1, func(in Input, req seed.Request, _ domains.Policy) bool {
		return req.MentionsCity(in.Title)
	}},
	{"snippet mentions focus", 1, func(in Input, req seed.Request, _ domains.Policy) bool {
		return req.MentionsCity(in.Snippet)
	}},
	{"own domain", -2, func(in Input, _ seed.Request, pol domains.Policy) bool {
		return pol.IsOwnHost(in.Host)
	}},
	{"weak title", -1, func(in Input, _ seed.Request, _ domains.Policy) bool {
		return weakTitle(in.Title)
	}},
}

// Score computes the additive rule total for one result. Deterministic and
// pure: identical inputs always yield identical scores.
func Score(in Input, req seed.Request, pol domains.Policy) int {
	total := 0
	for _, r := range rules {
		if r.hit(in, req, pol) {
			total += r.delta
		}
	}
	return total
}

var hasLowerRe = regexp.MustCompile(`[a-z]`)

// weakTitle flags spam-shaped titles: too short to carry meaning, or
// all-caps/punctuation-heavy.
func weakTitle(title string) bool {
	t := strings.TrimSpace(title)
	if len(t) < 10 {
		return true
	}
	if strings.Count(t, "!") >= 2 || strings.Count(t, "?") >= 3 {
		return true
	}
	// all caps: letters present but none lowercase
	if !hasLowerRe.MatchString(t) && strings.IndexFunc(t, func(r rune) bool {
		return r >= 'A' && r <= 'Z'
	}) >= 0 {
		return true
	}
	return false
}
