package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Display names for identifiers whose generated name would read badly.
var displayNames = map[string]string{
	"pplx_beta":              "Perplexity Labs",
	"pplx_alpha":             "Perplexity Research",
	"pplx_pro":               "Perplexity Pro (Auto)",
	"experimental":           "Sonar",
	"gpt51":                  "GPT-5.1",
	"gpt52":                  "GPT-5.2",
	"gpt51_thinking":         "GPT-5.1 Thinking",
	"claude45sonnet":         "Claude 4.5 Sonnet",
	"claude45sonnetthinking": "Claude 4.5 Sonnet Thinking",
	"claudeopus45":           "Claude Opus 4.5",
	"gemini30pro":            "Gemini 3.0 Pro Thinking",
	"grok41nonreasoning":     "Grok 4.1",
	"kimik2thinking":         "Kimi K2 Thinking",
}

// Order matters: first matching prefix wins.
var providerPrefixes = []struct {
	prefix   string
	provider string
}{
	{"pplx", "Perplexity"},
	{"gpt", "OpenAI"},
	{"claude", "Anthropic"},
	{"gemini", "Google"},
	{"grok", "xAI"},
	{"kimi", "Moonshot AI"},
	{"llama", "Meta"},
	{"mistral", "Mistral AI"},
	{"deepseek", "DeepSeek"},
}

// UnknownProvider is returned by InferProvider when nothing matches.
const UnknownProvider = "Unknown"

var titleCaser = cases.Title(language.Und)

// InferName returns a display name for id.
func InferName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, w := range words {
		words[i] = titleCaser.String(w)
	}
	if len(words) == 0 {
		return id
	}
	return strings.Join(words, " ")
}

// InferProvider guesses the organization behind id.
func InferProvider(id string) string {
	lower := strings.ToLower(id)
	if lower == "experimental" {
		return "Perplexity"
	}
	for _, p := range providerPrefixes {
		if strings.HasPrefix(lower, p.prefix) {
			return p.provider
		}
	}
	return UnknownProvider
}

// IsProIdentifier reports whether id names a pro-gated model.
func IsProIdentifier(id string) bool {
	lower := strings.ToLower(id)
	return strings.Contains(lower, "pro") || strings.Contains(lower, "alpha")
}

// SupportsReasoning reports whether id names a reasoning variant.
func SupportsReasoning(id string) bool {
	lower := strings.ToLower(id)
	return strings.Contains(lower, "thinking") || strings.Contains(lower, "reasoning")
}

// NewInferred builds a ModelInfo from a bare identifier.
func NewInferred(id string) ModelInfo {
	provider := InferProvider(id)
	return ModelInfo{
		Identifier:        id,
		Name:              InferName(id),
		Description:       provider + " model",
		Mode:              DefaultMode,
		Provider:          provider,
		IsPro:             IsProIdentifier(id),
		SupportsReasoning: SupportsReasoning(id),
	}
}
