package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferProvider(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"pplx_beta", "Perplexity"},
		{"experimental", "Perplexity"},
		{"EXPERIMENTAL", "Perplexity"},
		{"experimental_v2", UnknownProvider},
		{"gpt51", "OpenAI"},
		{"claudeopus45", "Anthropic"},
		{"gemini30pro", "Google"},
		{"grok41nonreasoning", "xAI"},
		{"kimik2thinking", "Moonshot AI"},
		{"llama3", "Meta"},
		{"mistral_large", "Mistral AI"},
		{"deepseek_r1", "DeepSeek"},
		{"sonar", UnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, InferProvider(tt.id))
		})
	}
}

func TestInferName(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"pplx_pro", "Perplexity Pro (Auto)"},
		{"experimental", "Sonar"},
		{"gpt51_thinking", "GPT-5.1 Thinking"},
		{"deepseek_r1", "Deepseek R1"},
		{"mistral_large_latest", "Mistral Large Latest"},
		{"sonar", "Sonar"},
		{"llama__3", "Llama 3"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, InferName(tt.id))
		})
	}
}

func TestNewInferred(t *testing.T) {
	m := NewInferred("claude45sonnetthinking")
	assert.Equal(t, "claude45sonnetthinking", m.Identifier)
	assert.Equal(t, "Claude 4.5 Sonnet Thinking", m.Name)
	assert.Equal(t, "Anthropic", m.Provider)
	assert.Equal(t, "Anthropic model", m.Description)
	assert.Equal(t, DefaultMode, m.Mode)
	assert.True(t, m.SupportsReasoning)
	assert.False(t, m.IsPro)

	m = NewInferred("pplx_alpha")
	assert.True(t, m.IsPro)
	assert.False(t, m.SupportsReasoning)

	m = NewInferred("grok41nonreasoning")
	assert.True(t, m.SupportsReasoning)
}

func TestToMap(t *testing.T) {
	m := NewInferred("gemini30pro")
	got := m.ToMap()

	require.Len(t, got, 7)
	for _, key := range []string{"identifier", "name", "description", "mode", "provider", "is_pro", "supports_reasoning"} {
		assert.Contains(t, got, key)
	}
	assert.Equal(t, "gemini30pro", got["identifier"])
	assert.Equal(t, true, got["is_pro"])
}

func TestFallback(t *testing.T) {
	list := Fallback()
	require.Len(t, list, 13)

	assert.Equal(t, "pplx_pro", list[0].Identifier)
	assert.Equal(t, "kimik2thinking", list[12].Identifier)

	seen := make(map[string]bool)
	for _, m := range list {
		assert.False(t, seen[m.Identifier], "duplicate %s", m.Identifier)
		seen[m.Identifier] = true
		assert.NotEmpty(t, m.Name)
		assert.Equal(t, DefaultMode, m.Mode)
		assert.True(t, IsValidIdentifier(m.Identifier), m.Identifier)
		assert.Equal(t, InferName(m.Identifier), m.Name)
	}

	// Callers get a copy.
	list[0].Name = "changed"
	assert.Equal(t, "Perplexity Pro (Auto)", Fallback()[0].Name)
}

func TestFind(t *testing.T) {
	list := Fallback()

	m, ok := Find(list, "gpt52")
	require.True(t, ok)
	assert.Equal(t, "GPT-5.2", m.Name)

	_, ok = Find(list, "missing")
	assert.False(t, ok)
}
