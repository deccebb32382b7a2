// Package providers implements the provider-agnostic LLM dispatch layer: a
// registry of provider-id -> Client, and the rules for inferring a
// provider from a judge's model name.
package providers

import (
	"context"
	"strings"
)

// Client is satisfied by each concrete provider implementation. Generate
// sends a single user message containing prompt and returns the raw
// response text.
type Client interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Registry maps provider-id to its client. A provider is present only when
// its API key was configured at construction time.
type Registry map[string]Client

// Get looks up a provider by id, returning ok=false if it has no client
// (unroutable — the caller should treat this as a no-op, not a failure).
func (r Registry) Get(providerID string) (Client, bool) {
	c, ok := r[providerID]
	return c, ok
}

// ResolveProvider implements the spec's ordered inference rules: the model
// name, when recognized, always wins over an explicit override.
func ResolveProvider(providerOverride, model string) string {
	inferred := inferFromModel(model)

	override := strings.ToLower(strings.TrimSpace(providerOverride))

	switch {
	case inferred != "" && override != "" && inferred != override:
		return inferred
	case override != "":
		return override
	default:
		return inferred
	}
}

func inferFromModel(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.HasPrefix(m, "gemini"):
		return "gemini"
	case strings.HasPrefix(m, "gpt"), strings.HasPrefix(m, "o1"):
		return "openai"
	case strings.HasPrefix(m, "claude"):
		return "anthropic"
	case strings.HasPrefix(m, "llama"), strings.HasPrefix(m, "mixtral"):
		return "groq"
	default:
		return ""
	}
}
