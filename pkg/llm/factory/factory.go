package factory

import (
	"fmt"

	"qa-paper-be/pkg/llm"
	"qa-paper-be/pkg/llm/anthropic"
	"qa-paper-be/pkg/llm/gemini"
	"qa-paper-be/pkg/llm/openai"
)

const perplexityBaseURL = "https://api.perplexity.ai"

// NewProvider builds one backend by name. Perplexity speaks the
// OpenAI-compatible wire format, so it reuses the openai client with its own
// base URL.
func NewProvider(name, apiKey, model string) (llm.Provider, error) {
	switch name {
	case "openai":
		return openai.NewProvider("openai", apiKey, "", model), nil
	case "perplexity":
		return openai.NewProvider("perplexity", apiKey, perplexityBaseURL, model), nil
	case "anthropic":
		return anthropic.NewProvider(apiKey, model), nil
	case "gemini":
		return gemini.NewProvider(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", name)
	}
}

// ResolveOrder returns the deterministic try order for a job: the preferred
// provider first, then the remaining configured providers in their fixed
// fallback order. An unknown or empty preference degrades to the plain order.
func ResolveOrder(preferred string, configured []string) []string {
	out := make([]string, 0, len(configured))
	if preferred != "" {
		for _, name := range configured {
			if name == preferred {
				out = append(out, name)
				break
			}
		}
	}
	for _, name := range configured {
		if len(out) > 0 && name == out[0] {
			continue
		}
		out = append(out, name)
	}
	return out
}
