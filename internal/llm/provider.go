package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the minimal interface the pipeline needs to call a chat model.
// It mirrors the CreateChatCompletion method so any OpenAI-compatible or
// local backend can be adapted; stages treat everything it returns as
// untrusted data to be parsed and validated.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider adapts *openai.Client to the Client interface.
type OpenAIProvider struct {
	Inner *openai.Client
}

func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return p.Inner.CreateChatCompletion(ctx, request)
}

// ErrEmptyCompletion indicates the backend returned no usable choice.
var ErrEmptyCompletion = errors.New("empty completion")

// Complete issues one chat completion and returns the assistant text plus
// the total token usage the backend reported. Low temperature keeps the
// JSON-contract stages close to deterministic.
func Complete(ctx context.Context, c Client, model, system, user string) (string, int, error) {
	resp, err := c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
		N:           1,
	})
	if err != nil {
		return "", 0, err
	}
	tokens := resp.Usage.TotalTokens
	if len(resp.Choices) == 0 {
		return "", tokens, ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", tokens, ErrEmptyCompletion
	}
	return text, tokens, nil
}
