// Package titledup guards against republishing a topic whose title is a
// near-duplicate of something already in the corpus. All checks are pure
// text math over normalized titles: exact match, word-set Jaccard overlap
// and bigram overlap, in that order.
package titledup

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

const (
	jaccardThreshold = 0.82
	bigramThreshold  = 0.75
	maxClosest       = 10
)

// Match pairs an existing title with its Jaccard similarity to the
// candidate.
type Match struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Report is the outcome of a similarity check. ClosestTitles carries the
// top matches by Jaccard score for optional anti-repetition prompting even
// when the candidate is not a duplicate.
type Report struct {
	IsDuplicate   bool    `json:"isDuplicate"`
	Reason        string  `json:"reason,omitempty"`
	ClosestTitles []Match `json:"closestTitles"`
}

var punctRe = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

var foldCaser = cases.Fold()

// normalize lowercases with unicode case folding, strips punctuation and
// collapses whitespace so cosmetic differences never defeat the exact-match
// check.
func normalize(s string) string {
	out := foldCaser.String(s)
	out = punctRe.ReplaceAllString(out, " ")
	return strings.Join(strings.Fields(out), " ")
}

// CheckTitleSimilarity compares a candidate title against the existing
// corpus. Checks run in order: exact normalized match, word-set Jaccard
// above threshold, bigram overlap (intersection over the smaller set) above
// threshold. The first hit disqualifies the candidate.
func CheckTitleSimilarity(candidate string, existingTitles []string) Report {
	normCand := normalize(candidate)
	rawCand := strings.TrimSpace(candidate)
	candWords := wordSet(normCand)
	candBigrams := bigramSet(normCand)

	report := Report{}
	matches := make([]Match, 0, len(existingTitles))
	for _, existing := range existingTitles {
		normExist := normalize(existing)
		if normExist == "" {
			// Punctuation-only titles have no words to overlap, but a
			// verbatim repeat is still an exact duplicate.
			if !report.IsDuplicate && rawCand != "" && rawCand == strings.TrimSpace(existing) {
				report.IsDuplicate = true
				report.Reason = fmt.Sprintf("exact match with %q", existing)
			}
			continue
		}
		j := jaccard(candWords, wordSet(normExist))
		matches = append(matches, Match{Title: existing, Score: j})

		if report.IsDuplicate {
			continue
		}
		switch {
		case normCand != "" && normCand == normExist:
			report.IsDuplicate = true
			report.Reason = fmt.Sprintf("exact match with %q", existing)
		case j > jaccardThreshold:
			report.IsDuplicate = true
			report.Reason = fmt.Sprintf("word overlap %.2f with %q", j, existing)
		case bigramOverlap(candBigrams, bigramSet(normExist)) > bigramThreshold:
			report.IsDuplicate = true
			report.Reason = fmt.Sprintf("phrase overlap with %q", existing)
		}
	}

	sort.SliceStable(matches, func(i, k int) bool { return matches[i].Score > matches[k].Score })
	if len(matches) > maxClosest {
		matches = matches[:maxClosest]
	}
	report.ClosestTitles = matches
	return report
}

func wordSet(normalized string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range strings.Fields(normalized) {
		out[w] = struct{}{}
	}
	return out
}

// bigramSet builds consecutive word pairs from a normalized title.
func bigramSet(normalized string) map[string]struct{} {
	words := strings.Fields(normalized)
	out := map[string]struct{}{}
	for i := 0; i+1 < len(words); i++ {
		out[words[i]+" "+words[i+1]] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// bigramOverlap is intersection size over the smaller set's size, so a short
// title fully contained in a longer one still registers.
func bigramOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	inter := 0
	for g := range small {
		if _, ok := large[g]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(small))
}
