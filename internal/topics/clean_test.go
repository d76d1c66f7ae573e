package topics

import (
	"strings"
	"testing"

	"github.com/wanderkh/topicgen/internal/seed"
)

var cleanReq = seed.Request{Title: "Cambodia Visa Changes 2025", CityFocus: seed.CityWide, Audience: seed.AudienceBoth}

func allowedSet(urls ...string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, u := range urls {
		out[u] = struct{}{}
	}
	return out
}

func TestCleanTopics_DropsMissingRequiredFields(t *testing.T) {
	allowed := allowedSet("https://gov.kh/press/1")
	raw := []NewsTopic{
		{Title: "Cambodia visa update", Angle: "policy", WhyItMatters: "entry rules changed", SourceURLs: []string{"https://gov.kh/press/1"}},
		{Title: "", Angle: "x", WhyItMatters: "y", SourceURLs: []string{"https://gov.kh/press/1"}},
		{Title: "Cambodia no angle", WhyItMatters: "y", SourceURLs: []string{"https://gov.kh/press/1"}},
	}
	out := CleanTopics(raw, cleanReq, allowed)
	if len(out) != 1 {
		t.Fatalf("expected only the complete topic to survive, got %d", len(out))
	}
}

func TestCleanTopics_FiltersAndCapsSourceURLs(t *testing.T) {
	allowed := allowedSet("https://gov.kh/press/1", "https://khmertimeskh.com/a", "https://apnews.com/b", "https://bbc.com/c")
	raw := []NewsTopic{{
		Title: "Cambodia visa update", Angle: "policy", WhyItMatters: "rules changed",
		SourceURLs: []string{
			"https://www.gov.kh/press/1/",          // canonicalizes into the allowed set
			"https://gov.kh/press/1?utm_source=nl", // duplicate after canonicalization
			"https://evil.example.com/fake",        // not retrieved this run
			"https://khmertimeskh.com/a",
			"https://apnews.com/b",
			"https://bbc.com/c", // over the cap
		},
	}}
	out := CleanTopics(raw, cleanReq, allowed)
	if len(out) != 1 {
		t.Fatalf("topic should survive, got %d", len(out))
	}
	got := out[0].SourceURLs
	if len(got) != 3 {
		t.Fatalf("sourceUrls deduplicated and capped at 3, got %v", got)
	}
	for _, u := range got {
		if _, ok := allowed[u]; !ok {
			t.Fatalf("cleaned sourceUrl %q not in allowed set", u)
		}
	}
	if out[0].SourceCount != 3 {
		t.Fatalf("sourceCount mirrors sourceUrls length, got %d", out[0].SourceCount)
	}
}

func TestCleanTopics_DropsTopicWithNoValidSources(t *testing.T) {
	allowed := allowedSet("https://gov.kh/press/1")
	raw := []NewsTopic{{
		Title: "Cambodia visa update", Angle: "policy", WhyItMatters: "rules changed",
		SourceURLs: []string{"https://unrelated.example.com/z"},
	}}
	if out := CleanTopics(raw, cleanReq, allowed); len(out) != 0 {
		t.Fatalf("a topic citing nothing we retrieved must be dropped, got %v", out)
	}
}

func TestCleanTopics_ClampsAudienceFit(t *testing.T) {
	allowed := allowedSet("https://gov.kh/press/1")
	raw := []NewsTopic{
		{Title: "Cambodia a", Angle: "x", WhyItMatters: "y", AudienceFit: []string{"Travellers", "aliens"}, SourceURLs: []string{"https://gov.kh/press/1"}},
		{Title: "Cambodia b", Angle: "x", WhyItMatters: "y", AudienceFit: []string{"nobody"}, SourceURLs: []string{"https://gov.kh/press/1"}},
	}
	out := CleanTopics(raw, cleanReq, allowed)
	if len(out) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(out))
	}
	if len(out[0].AudienceFit) != 1 || out[0].AudienceFit[0] != "travellers" {
		t.Fatalf("valid values are kept and lowercased, got %v", out[0].AudienceFit)
	}
	if len(out[1].AudienceFit) != 2 {
		t.Fatalf("entirely invalid fit defaults to both values, got %v", out[1].AudienceFit)
	}
}

func TestCleanTopics_SubstitutesForbiddenPunctuation(t *testing.T) {
	allowed := allowedSet("https://gov.kh/press/1")
	raw := []NewsTopic{{
		Title:        "Cambodia visas — what changed",
		Angle:        "policy — money",
		WhyItMatters: "fees rose — again",
		SourceURLs:   []string{"https://gov.kh/press/1"},
	}}
	out := CleanTopics(raw, cleanReq, allowed)
	if len(out) != 1 {
		t.Fatalf("expected topic to survive cleaning")
	}
	for _, s := range []string{out[0].Title, out[0].Angle, out[0].WhyItMatters} {
		if strings.ContainsAny(s, "—–―") {
			t.Fatalf("forbidden punctuation must be substituted, got %q", s)
		}
	}
	if out[0].Title != "Cambodia visas, what changed" {
		t.Fatalf("dash becomes a comma separator, got %q", out[0].Title)
	}
}

func TestCleanTopics_CapsAncillaryLists(t *testing.T) {
	allowed := allowedSet("https://gov.kh/press/1")
	many := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	raw := []NewsTopic{{
		Title: "Cambodia visa update", Angle: "x", WhyItMatters: "y",
		SearchQueries: many, OutlineAngles: many,
		SourceURLs: []string{"https://gov.kh/press/1"},
	}}
	out := CleanTopics(raw, cleanReq, allowed)
	if len(out[0].SearchQueries) != 6 || len(out[0].OutlineAngles) != 6 {
		t.Fatalf("searchQueries and outlineAngles cap at 6, got %d and %d",
			len(out[0].SearchQueries), len(out[0].OutlineAngles))
	}
}
