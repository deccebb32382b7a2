package providers

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
)

// DefaultGroqBaseURL is Groq's OpenAI-compatible chat completions endpoint.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient reuses the OpenAI SDK against Groq's compatible endpoint.
type GroqClient struct {
	client *goopenai.Client
}

// NewGroqClient builds a Groq client. baseURL empty uses DefaultGroqBaseURL.
func NewGroqClient(apiKey, baseURL string) *GroqClient {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	} else {
		cfg.BaseURL = DefaultGroqBaseURL
	}
	return &GroqClient{client: goopenai.NewClientWithConfig(cfg)}
}

// Generate implements Client.
func (c *GroqClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: maxResponseTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("groq: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("groq: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
