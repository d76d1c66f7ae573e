// Package queries implements the first generation stage: turning a seed
// title into 4-6 validated web search queries via the text-generation
// service, with a single corrective retry when the output violates the
// prompt contract.
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/wanderkh/topicgen/internal/llm"
	"github.com/wanderkh/topicgen/internal/seed"
	"github.com/wanderkh/topicgen/internal/style"
)

const (
	minQueries      = 4
	maxQueries      = 6
	minCityMentions = 2
)

const systemMessage = "You are a news research assistant for a travel publication. Respond with strict JSON only, no narration. The JSON schema is {\"queries\": string[4..6]}."

// Result is the outcome of the query stage.
type Result struct {
	Queries    []string
	TokenUsage int
}

// Generator produces search queries from a seed request.
type Generator struct {
	Client llm.Client
	Model  string
}

// Generate asks the model for search queries and validates them against the
// constraints encoded in the prompt. On validation failure it issues exactly
// one corrective retry; if the retry also fails, the original list is
// returned as-is, truncated to the maximum. Token usage accumulates across
// both calls. A run that produces no parseable queries at all returns an
// empty list, which the orchestrator treats as terminal.
func (g *Generator) Generate(ctx context.Context, req seed.Request, year int) (Result, error) {
	var res Result
	if g.Client == nil || strings.TrimSpace(g.Model) == "" {
		return res, fmt.Errorf("query generator not configured")
	}

	user := buildPrompt(req, year)
	var original []string
	var originalRaw string

	for attempt := 0; attempt < 2; attempt++ {
		prompt := user
		if attempt == 1 {
			prompt = buildRetryPrompt(user, originalRaw, validateQueries(original, req, year))
		}
		text, tokens, err := llm.Complete(ctx, g.Client, g.Model, systemMessage, prompt)
		res.TokenUsage += tokens
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("query generation call failed")
			continue
		}
		qs, perr := parseQueries(text)
		if attempt == 0 {
			original = qs
			originalRaw = text
		}
		if perr != nil {
			log.Warn().Err(perr).Int("attempt", attempt).Msg("query payload did not parse")
			continue
		}
		failures := validateQueries(qs, req, year)
		if len(failures) == 0 {
			res.Queries = qs
			return res, nil
		}
		if attempt == 1 && len(qs) >= minQueries {
			// A retry that passes validation replaces the original; this one
			// did not, so fall through to the best-effort return below.
			log.Warn().Strs("failures", failures).Msg("retry still violates query constraints")
		} else {
			log.Warn().Strs("failures", failures).Msg("query list failed validation")
		}
	}

	// Best effort: hand back the first attempt's list truncated to the cap.
	if len(original) > maxQueries {
		original = original[:maxQueries]
	}
	res.Queries = original
	return res, nil
}

func parseQueries(text string) ([]string, error) {
	var payload struct {
		Queries []string `json:"queries"`
	}
	if err := json.Unmarshal([]byte(llm.ExtractJSON(text)), &payload); err != nil {
		return nil, fmt.Errorf("parse queries json: %w", err)
	}
	return sanitizeQueries(payload.Queries), nil
}

// sanitizeQueries trims entries, strips trailing sentence punctuation and
// drops case-insensitive duplicates while preserving order.
func sanitizeQueries(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, q := range in {
		s := strings.TrimSpace(q)
		s = strings.TrimSuffix(s, ".")
		s = strings.TrimSuffix(s, "?")
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// validateQueries re-checks the constraints the prompt encodes and returns a
// human-readable failure list, empty when the queries are acceptable.
func validateQueries(qs []string, req seed.Request, year int) []string {
	var failures []string
	if len(qs) < minQueries || len(qs) > maxQueries {
		failures = append(failures, fmt.Sprintf("expected %d-%d queries, got %d", minQueries, maxQueries, len(qs)))
	}
	cityMentions := 0
	yearMentions := 0
	for _, q := range qs {
		if req.MentionsCity(q) {
			cityMentions++
		}
		if strings.Contains(q, fmt.Sprintf("%d", year)) {
			yearMentions++
		}
		if style.HasForbiddenPunct(q) {
			failures = append(failures, fmt.Sprintf("query %q contains forbidden punctuation", q))
		}
	}
	if cityMentions < minCityMentions {
		failures = append(failures, fmt.Sprintf("at least %d queries must mention %s, found %d", minCityMentions, req.CityTerm(), cityMentions))
	}
	if req.MentionsYear(year) && yearMentions == 0 {
		failures = append(failures, fmt.Sprintf("the seed title mentions %d, so at least one query must include it", year))
	}
	return failures
}

func buildPrompt(req seed.Request, year int) string {
	var sb strings.Builder
	sb.WriteString("Generate web search queries to research fresh news angles for a travel-site article.\n")
	fmt.Fprintf(&sb, "Seed title: %s\n", req.Title)
	fmt.Fprintf(&sb, "Coverage focus: %s\n", req.CityTerm())
	fmt.Fprintf(&sb, "Audience: %s\n", audienceLine(req.Audience))
	sb.WriteString("\nRules:\n")
	fmt.Fprintf(&sb, "- Produce %d to %d queries.\n", minQueries, maxQueries)
	fmt.Fprintf(&sb, "- At least %d queries must mention %s or %s.\n", minCityMentions, req.CityTerm(), seed.CountryName)
	if req.MentionsYear(year) {
		fmt.Fprintf(&sb, "- The seed title mentions %d; at least one query must include that year.\n", year)
	}
	sb.WriteString("- Each query must target a distinct sub-angle of the seed topic.\n")
	sb.WriteString("- Never use an em dash or en dash character anywhere.\n")
	sb.WriteString("\nReturn JSON only: {\"queries\": [\"...\"]}")
	return sb.String()
}

func buildRetryPrompt(original string, rejectedRaw string, failures []string) string {
	var sb strings.Builder
	sb.WriteString("Your previous answer violated these requirements:\n")
	if len(failures) == 0 {
		sb.WriteString("- the answer was not parseable JSON with a \"queries\" array\n")
	}
	for _, f := range failures {
		sb.WriteString("- ")
		sb.WriteString(f)
		sb.WriteString("\n")
	}
	sb.WriteString("\nRejected answer:\n")
	sb.WriteString(rejectedRaw)
	sb.WriteString("\n\nProduce a corrected list that satisfies every rule of the original request below.\n\n")
	sb.WriteString(original)
	return sb.String()
}

func audienceLine(a seed.Audience) string {
	switch a {
	case seed.AudienceTravellers:
		return "travellers visiting Cambodia"
	case seed.AudienceTeachers:
		return "foreign teachers living in Cambodia"
	default:
		return "travellers visiting Cambodia and foreign teachers living there"
	}
}
