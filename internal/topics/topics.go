// Package topics implements the second generation stage: producing topic
// candidates grounded strictly in the URLs retrieved for this run. Raw
// generator output goes through a lenient cleaning pass that repairs what it
// can, then a strict pass that only reports; strict failures drive the
// single corrective retry.
package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wanderkh/topicgen/internal/executor"
	"github.com/wanderkh/topicgen/internal/llm"
	"github.com/wanderkh/topicgen/internal/seed"
)

const (
	minTopics     = 4
	maxTopics     = 8
	maxSourceURLs = 3
	maxSearchRefs = 6
	maxOutline    = 6
)

// Keywords suggests SEO terms for a topic.
type Keywords struct {
	Target    string   `json:"target"`
	Secondary []string `json:"secondary"`
}

// NewsTopic is one validated topic candidate. Constructed only by the
// cleaning pass and never mutated afterwards.
type NewsTopic struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Angle             string   `json:"angle"`
	WhyItMatters      string   `json:"whyItMatters"`
	AudienceFit       []string `json:"audienceFit"`
	SuggestedKeywords Keywords `json:"suggestedKeywords"`
	SearchQueries     []string `json:"searchQueries"`
	Intent            string   `json:"intent"`
	OutlineAngles     []string `json:"outlineAngles"`
	SourceURLs        []string `json:"sourceUrls"`
	SourceCount       int      `json:"sourceCount"`
	FromSeedTitle     bool     `json:"fromSeedTitle"`
}

// Result is the outcome of the topic stage.
type Result struct {
	Topics     []NewsTopic
	TokenUsage int
}

const systemMessage = "You are an editorial planner for a travel publication. Every fact must come from the numbered sources provided. Respond with strict JSON only, no narration. The JSON schema is {\"topics\": [...]}."

// Generator produces grounded topic candidates.
type Generator struct {
	Client llm.Client
	Model  string
}

// Generate asks the model for 4-8 topics citing only the supplied results,
// cleans the raw output, strict-validates it and retries exactly once with
// the verbatim failure list when violations remain. The best-effort cleaned
// list is returned even when the retry also fails; callers must tolerate
// output that misses soft constraints.
func (g *Generator) Generate(ctx context.Context, req seed.Request, year int, results []executor.SearchResult) (Result, error) {
	var res Result
	if g.Client == nil || strings.TrimSpace(g.Model) == "" {
		return res, fmt.Errorf("topic generator not configured")
	}

	allowed := AllowedURLSet(results)
	user := buildPrompt(req, year, results)

	var best []NewsTopic
	var bestRaw string
	var bestFailures []string

	for attempt := 0; attempt < 2; attempt++ {
		prompt := user
		if attempt == 1 {
			prompt = buildRetryPrompt(user, bestRaw, bestFailures)
		}
		text, tokens, err := llm.Complete(ctx, g.Client, g.Model, systemMessage, prompt)
		res.TokenUsage += tokens
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("topic generation call failed")
			if attempt == 0 {
				bestFailures = []string{"the answer was not received from the generator"}
			}
			continue
		}
		raw, perr := parseTopics(text)
		if perr != nil {
			log.Warn().Err(perr).Int("attempt", attempt).Msg("topic payload did not parse")
			if attempt == 0 {
				bestRaw = text
				bestFailures = []string{"the answer was not parseable JSON with a \"topics\" array"}
			}
			continue
		}
		cleaned := CleanTopics(raw, req, allowed)
		failures := ValidateStrict(cleaned, req, year, allowed)
		if len(failures) == 0 {
			res.Topics = cleaned
			return res, nil
		}
		log.Warn().Int("attempt", attempt).Strs("failures", failures).Msg("topics failed strict validation")
		if attempt == 0 {
			best = cleaned
			bestRaw = text
			bestFailures = failures
		} else if len(best) == 0 {
			best = cleaned
		}
	}

	res.Topics = best
	return res, nil
}

// AllowedURLSet builds the canonical allowed-URL set for a run from its
// result pool. Result URLs are canonical already.
func AllowedURLSet(results []executor.SearchResult) map[string]struct{} {
	out := make(map[string]struct{}, len(results))
	for _, r := range results {
		out[r.URL] = struct{}{}
	}
	return out
}

func parseTopics(text string) ([]NewsTopic, error) {
	var payload struct {
		Topics []NewsTopic `json:"topics"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(text)), &payload); err != nil {
		return nil, fmt.Errorf("parse topics json: %w", err)
	}
	return payload.Topics, nil
}

func buildPrompt(req seed.Request, year int, results []executor.SearchResult) string {
	var sb strings.Builder
	sb.WriteString("Propose news topic candidates for a travel-site article, grounded ONLY in the sources below.\n")
	fmt.Fprintf(&sb, "Seed title: %s\n", req.Title)
	fmt.Fprintf(&sb, "Coverage focus: %s\n", req.CityTerm())
	fmt.Fprintf(&sb, "Audience: %s\n", strings.Join(req.Audience.FitsFor(), " and "))

	sb.WriteString("\nSources (cite by url, use no others):\n")
	for _, r := range results {
		fmt.Fprintf(&sb, "[%d] %s\n    url: %s\n", r.ID, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "    snippet: %s\n", r.Snippet)
		}
		if r.PublishedAt != "" {
			fmt.Fprintf(&sb, "    published: %s\n", r.PublishedAt)
		}
		if r.SourceName != "" {
			fmt.Fprintf(&sb, "    source: %s\n", r.SourceName)
		}
	}

	sb.WriteString("\nRules:\n")
	fmt.Fprintf(&sb, "- Produce %d to %d topics.\n", minTopics, maxTopics)
	sb.WriteString("- The first topic must closely mirror the seed title and set \"fromSeedTitle\": true; the rest must diverge meaningfully and set it false.\n")
	fmt.Fprintf(&sb, "- Every topic title must mention %s or %s.\n", req.CityTerm(), seed.CountryName)
	if req.MentionsYear(year) {
		fmt.Fprintf(&sb, "- Topic titles may use the year %d but no other year.\n", year)
	}
	fmt.Fprintf(&sb, "- Each topic cites 1 to %d sourceUrls, drawn only from the urls listed above, no duplicates.\n", maxSourceURLs)
	fmt.Fprintf(&sb, "- audienceFit values are restricted to %q.\n", seed.ValidFits)
	sb.WriteString("- Never use an em dash or en dash character in any field.\n")
	sb.WriteString("\nReturn JSON only: {\"topics\": [{\"id\": \"...\", \"title\": \"...\", \"angle\": \"...\", \"whyItMatters\": \"...\", \"audienceFit\": [\"...\"], \"suggestedKeywords\": {\"target\": \"...\", \"secondary\": [\"...\"]}, \"searchQueries\": [\"...\"], \"intent\": \"...\", \"outlineAngles\": [\"...\"], \"sourceUrls\": [\"...\"], \"fromSeedTitle\": false}]}")
	return sb.String()
}

func buildRetryPrompt(original string, rejectedRaw string, failures []string) string {
	var sb strings.Builder
	sb.WriteString("Your previous answer violated these requirements:\n")
	for _, f := range failures {
		sb.WriteString("- ")
		sb.WriteString(f)
		sb.WriteString("\n")
	}
	sb.WriteString("\nRejected answer:\n")
	sb.WriteString(rejectedRaw)
	sb.WriteString("\n\nProduce a corrected topic list that satisfies every rule of the original request below.\n\n")
	sb.WriteString(original)
	return sb.String()
}
