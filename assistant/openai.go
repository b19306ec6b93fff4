package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a bookkeeping assistant for a freelancer. Answer in at most three sentences, " +
	"using only the figures provided. Amounts are in USD. If the data does not answer the question, say so."

// OpenAI answers through a chat completion grounded on a summary of the snapshot.
type OpenAI struct {
	client  *openai.Client
	apiKey  string
	model   string
	timeout time.Duration
}

// NewOpenAI builds the upstream responder. baseURL may point at any OpenAI compatible endpoint.
func NewOpenAI(apiKey, model, baseURL string, timeout time.Duration) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &OpenAI{
		client:  openai.NewClientWithConfig(cfg),
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
	}
}

func (o *OpenAI) Respond(ctx context.Context, req Request) (Reply, error) {
	if o.apiKey == "" {
		return Reply{}, fmt.Errorf("%w: no API key configured", ErrUpstream)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: "My numbers:\n" + summary(req.Snapshot) + "\n\nQuestion: " + req.Question,
			},
		},
		MaxTokens: 300,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return Reply{}, fmt.Errorf("%w: empty completion", ErrUpstream)
	}

	return Reply{
		Intent: Match(req.Question),
		Reply:  strings.TrimSpace(resp.Choices[0].Message.Content),
		Source: SourceOpenAI,
	}, nil
}
