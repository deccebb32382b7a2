package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveProviderInferredWinsOverDisagreeingOverride(t *testing.T) {
	assert.Equal(t, "openai", ResolveProvider("GROQ", "gpt-4o"))
}

func TestResolveProviderInfersGemini(t *testing.T) {
	assert.Equal(t, "gemini", ResolveProvider("", "gemini-1.5-pro"))
}

func TestResolveProviderInfersAnthropic(t *testing.T) {
	assert.Equal(t, "anthropic", ResolveProvider("", "claude-3-opus"))
}

func TestResolveProviderInfersGroqFromLlamaOrMixtral(t *testing.T) {
	assert.Equal(t, "groq", ResolveProvider("", "llama-3-70b"))
	assert.Equal(t, "groq", ResolveProvider("", "mixtral-8x7b"))
}

func TestResolveProviderOverrideUsedWhenModelUnrecognized(t *testing.T) {
	assert.Equal(t, "custom", ResolveProvider("  Custom  ", "unknown-model"))
}

func TestResolveProviderNullWhenNeitherResolves(t *testing.T) {
	assert.Equal(t, "", ResolveProvider("", "unknown-model"))
}

type fakeClient struct{ text string }

func (f *fakeClient) Generate(ctx context.Context, model, prompt string) (string, error) {
	return f.text, nil
}

func TestRegistryGetMissingIsUnroutable(t *testing.T) {
	reg := Registry{"groq": &fakeClient{text: "ok"}}
	_, ok := reg.Get("openai")
	assert.False(t, ok)
	c, ok := reg.Get("groq")
	assert.True(t, ok)
	assert.NotNil(t, c)
}
