package providers

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
)

// maxResponseTokens caps every provider call at the response size the spec
// requires.
const maxResponseTokens = 400

// OpenAIClient talks to the OpenAI chat completions API.
type OpenAIClient struct {
	client *goopenai.Client
}

// NewOpenAIClient builds a client against baseURL (empty uses OpenAI's
// default endpoint).
func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: goopenai.NewClientWithConfig(cfg)}
}

// Generate implements Client.
func (c *OpenAIClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxResponseTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
