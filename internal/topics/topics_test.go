package topics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/wanderkh/topicgen/internal/executor"
	"github.com/wanderkh/topicgen/internal/seed"
)

type fakeClient struct {
	responses []string
	prompts   []string
}

func (f *fakeClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.prompts = append(f.prompts, req.Messages[len(req.Messages)-1].Content)
	i := len(f.prompts) - 1
	if i >= len(f.responses) {
		return openai.ChatCompletionResponse{}, errors.New("no scripted response")
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.responses[i]}}},
		Usage:   openai.Usage{TotalTokens: 250},
	}, nil
}

var genReq = seed.Request{Title: "Cambodia Visa Changes 2025", CityFocus: seed.CityWide, Audience: seed.AudienceBoth}

func pool() []executor.SearchResult {
	return []executor.SearchResult{
		{ID: 1, Query: "q", Title: "Visa press release", URL: "https://gov.kh/press/1", Snippet: "official wording", Score: 5},
		{ID: 2, Query: "q", Title: "News report", URL: "https://khmertimeskh.com/a", Score: 3},
		{ID: 3, Query: "q", Title: "Agency wire", URL: "https://apnews.com/b", Score: 2},
	}
}

func topicJSON(titles []string) string {
	items := make([]string, 0, len(titles))
	for i, title := range titles {
		items = append(items, fmt.Sprintf(`{"id": "t%d", "title": %q, "angle": "angle", "whyItMatters": "matters", "audienceFit": ["travellers"], "sourceUrls": ["https://gov.kh/press/1"], "fromSeedTitle": %t}`, i+1, title, i == 0))
	}
	return `{"topics": [` + strings.Join(items, ",") + `]}`
}

func validTitles() []string {
	return []string{
		"Cambodia visa changes 2025 explained",
		"Cambodia e-visa fee shifts in 2025",
		"Cambodia land border entry latest",
		"Cambodia airport immigration update",
	}
}

func TestGenerate_ValidFirstPass(t *testing.T) {
	fc := &fakeClient{responses: []string{topicJSON(validTitles())}}
	g := &Generator{Client: fc, Model: "test-model"}
	res, err := g.Generate(context.Background(), genReq, 2025, pool())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Topics) != 4 {
		t.Fatalf("expected 4 topics, got %d", len(res.Topics))
	}
	if !res.Topics[0].FromSeedTitle {
		t.Fatalf("first topic must mirror the seed")
	}
	if len(fc.prompts) != 1 {
		t.Fatalf("valid output must not retry, got %d calls", len(fc.prompts))
	}
	if res.TokenUsage != 250 {
		t.Fatalf("token usage from backend report, got %d", res.TokenUsage)
	}
}

func TestGenerate_PromptEnumeratesSources(t *testing.T) {
	fc := &fakeClient{responses: []string{topicJSON(validTitles())}}
	g := &Generator{Client: fc, Model: "test-model"}
	if _, err := g.Generate(context.Background(), genReq, 2025, pool()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prompt := fc.prompts[0]
	for _, u := range []string{"https://gov.kh/press/1", "https://khmertimeskh.com/a", "https://apnews.com/b"} {
		if !strings.Contains(prompt, u) {
			t.Fatalf("prompt must enumerate %s:\n%s", u, prompt)
		}
	}
	if !strings.Contains(prompt, "snippet: official wording") {
		t.Fatalf("snippets are included when present:\n%s", prompt)
	}
}

func TestGenerate_RetryOnStrictFailure(t *testing.T) {
	bad := topicJSON([]string{
		"Cambodia visa changes 2025 explained",
		"Cambodia e-visa fee shifts in 2025",
		"Cambodia land border entry latest",
	}) // only 3 topics
	fc := &fakeClient{responses: []string{bad, topicJSON(validTitles())}}
	g := &Generator{Client: fc, Model: "test-model"}
	res, err := g.Generate(context.Background(), genReq, 2025, pool())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.prompts) != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", len(fc.prompts))
	}
	if !strings.Contains(fc.prompts[1], "expected 4-8 topics, got 3") {
		t.Fatalf("retry prompt carries the verbatim failure list:\n%s", fc.prompts[1])
	}
	if len(res.Topics) != 4 {
		t.Fatalf("successful retry replaces the cleaned list, got %d topics", len(res.Topics))
	}
	if res.TokenUsage != 500 {
		t.Fatalf("token usage accumulates, got %d", res.TokenUsage)
	}
}

func TestGenerate_FailedRetryReturnsBestEffort(t *testing.T) {
	bad := topicJSON([]string{
		"Cambodia visa changes 2025 explained",
		"Cambodia e-visa fee shifts in 2025",
		"Cambodia land border entry latest",
	})
	fc := &fakeClient{responses: []string{bad, bad}}
	g := &Generator{Client: fc, Model: "test-model"}
	res, err := g.Generate(context.Background(), genReq, 2025, pool())
	if err != nil {
		t.Fatalf("best effort is not an error: %v", err)
	}
	if len(fc.prompts) != 2 {
		t.Fatalf("never a second retry, got %d calls", len(fc.prompts))
	}
	if len(res.Topics) != 3 {
		t.Fatalf("cleaned first-attempt list survives a failed retry, got %d", len(res.Topics))
	}
}

func TestGenerate_GroundingInvariant(t *testing.T) {
	fc := &fakeClient{responses: []string{topicJSON(validTitles())}}
	g := &Generator{Client: fc, Model: "test-model"}
	res, err := g.Generate(context.Background(), genReq, 2025, pool())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	allowed := AllowedURLSet(pool())
	for _, topic := range res.Topics {
		if len(topic.SourceURLs) < 1 || len(topic.SourceURLs) > 3 {
			t.Fatalf("topic %q has %d sourceUrls", topic.Title, len(topic.SourceURLs))
		}
		for _, u := range topic.SourceURLs {
			if _, ok := allowed[u]; !ok {
				t.Fatalf("topic %q cites %q outside the allowed set", topic.Title, u)
			}
		}
	}
	var buf struct{ Topics []NewsTopic }
	b, _ := json.Marshal(struct{ Topics []NewsTopic }{res.Topics})
	if err := json.Unmarshal(b, &buf); err != nil {
		t.Fatalf("topics must round-trip as JSON for the caller: %v", err)
	}
}
