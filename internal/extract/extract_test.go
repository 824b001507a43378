package extract

import (
	"strings"
	"testing"

	"github.com/roelfdiedericks/pplxmodels/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextDataPage(payload string) []byte {
	return []byte(`<!DOCTYPE html><html><head><title>t</title></head><body>
<div id="__next"></div>
<script id="__NEXT_DATA__" type="application/json">` + payload + `</script>
</body></html>`)
}

func identifiers(list []models.ModelInfo) []string {
	ids := make([]string, len(list))
	for i, m := range list {
		ids[i] = m.Identifier
	}
	return ids
}

// chain builds a mapping nested total levels deep with a model definition at
// depth modelAt. The root mapping is depth 0.
func chain(total, modelAt int, id string) string {
	s := `{"leaf": true}`
	for d := total - 1; d >= 0; d-- {
		if d == modelAt {
			s = `{"identifier": "` + id + `", "next": ` + s + `}`
		} else {
			s = `{"next": ` + s + `}`
		}
	}
	return s
}

func TestNextDataExtractsEmbeddedModels(t *testing.T) {
	payload := `{
		"props": {
			"pageProps": {
				"models": [
					{"identifier": "gpt51", "name": "GPT 5.1 Custom", "description": "d", "mode": "search", "provider": "OpenAI", "isPro": true},
					{"modelId": "claude45sonnetthinking"},
					{"identifier": "api_internal_key", "name": "nope"},
					{"identifier": "copilot"}
				],
				"nested": {"identifier": "pplx_pro", "child": {"modelId": "grok41nonreasoning"}}
			}
		}
	}`

	got := NextData{}.Extract(nextDataPage(payload))
	require.Equal(t, []string{"gpt51", "claude45sonnetthinking", "pplx_pro", "grok41nonreasoning"}, identifiers(got))

	gpt := got[0]
	assert.Equal(t, "GPT 5.1 Custom", gpt.Name)
	assert.Equal(t, "d", gpt.Description)
	assert.Equal(t, "search", gpt.Mode)
	assert.Equal(t, "OpenAI", gpt.Provider)
	assert.True(t, gpt.IsPro)
	assert.False(t, gpt.SupportsReasoning)

	claude := got[1]
	assert.Equal(t, "Claude 4.5 Sonnet Thinking", claude.Name)
	assert.Equal(t, "", claude.Description)
	assert.Equal(t, models.DefaultMode, claude.Mode)
	assert.Equal(t, "unknown", claude.Provider)
	assert.False(t, claude.IsPro)
	assert.True(t, claude.SupportsReasoning)
}

func TestNextDataIdentifierFallsBackToModelID(t *testing.T) {
	payload := `{"a": {"identifier": "", "modelId": "gemini30pro"}}`

	got := NextData{}.Extract(nextDataPage(payload))
	assert.Equal(t, []string{"gemini30pro"}, identifiers(got))
}

func TestNextDataDepthBound(t *testing.T) {
	shallow := NextData{}.Extract(nextDataPage(chain(15, 9, "gpt52")))
	assert.Equal(t, []string{"gpt52"}, identifiers(shallow))

	atLimit := NextData{}.Extract(nextDataPage(chain(15, MaxWalkDepth, "gpt52")))
	assert.Equal(t, []string{"gpt52"}, identifiers(atLimit))

	// The parent at MaxWalkDepth is still searched, so its children count.
	belowLimit := NextData{}.Extract(nextDataPage(chain(15, MaxWalkDepth+1, "gpt52")))
	assert.Equal(t, []string{"gpt52"}, identifiers(belowLimit))

	deep := NextData{}.Extract(nextDataPage(chain(15, 12, "gpt52")))
	assert.Empty(t, deep)
}

func TestNextDataMissingOrBroken(t *testing.T) {
	assert.Empty(t, NextData{}.Extract([]byte(`<html><body><p>no data</p></body></html>`)))
	assert.Empty(t, NextData{}.Extract(nextDataPage(`{"identifier": "gpt51",`)))
	assert.Empty(t, NextData{}.Extract(nil))
}

func TestPatternsScan(t *testing.T) {
	body := []byte(`<script>
		var a = {"model": "claude45sonnet"};
		var b = {"identifier" : "gpt51"};
		self.modelId = 'grok41nonreasoning';
		var c = {"IDENTIFIER": "GPT52"};
		var d = {"identifier": "api_internal_key"};
		var e = {"model": "claude45sonnet"};
		var f = {modelId: "kimik2thinking"};
	</script>`)

	got := Patterns{}.Extract(body)
	require.Equal(t, []string{"gpt51", "GPT52", "claude45sonnet", "grok41nonreasoning", "kimik2thinking"}, identifiers(got))

	assert.Equal(t, models.NewInferred("grok41nonreasoning"), got[3])
	assert.Equal(t, "OpenAI model", got[0].Description)
}

func TestRunMergePrefersEmbeddedData(t *testing.T) {
	payload := `{"props": {"model": {"identifier": "gpt51", "name": "Embedded GPT", "isPro": false}}}`
	body := nextDataPage(payload)
	body = append(body, []byte(`<script>x = {"model": "claude45sonnetthinking", "identifier": "gpt51"}</script>`)...)

	got := Run(body, PageStrategies()...)
	require.Equal(t, []string{"gpt51", "claude45sonnetthinking"}, identifiers(got))
	assert.Equal(t, "Embedded GPT", got[0].Name)
	assert.False(t, got[0].IsPro)
	assert.Equal(t, "unknown", got[0].Provider)

	claude := got[1]
	assert.Equal(t, "Anthropic", claude.Provider)
	assert.True(t, claude.SupportsReasoning)
	assert.False(t, claude.IsPro)
}

func TestRunIsDeterministic(t *testing.T) {
	payload := `{"a": {"identifier": "pplx_pro"}, "b": [{"modelId": "gpt51"}, {"identifier": "gemini30pro"}]}`
	body := append(nextDataPage(payload), []byte(`"model":"deepseek_r1" "model":"llama3" modelId:"mistral_large"`)...)

	first := Run(body, PageStrategies()...)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Run(body, PageStrategies()...))
	}
}

func TestRunNothingFound(t *testing.T) {
	got := Run([]byte(`<html><body>hello</body></html>`), PageStrategies()...)
	assert.Empty(t, got)
}

func TestMerge(t *testing.T) {
	a := []models.ModelInfo{{Identifier: "gpt51", Name: "A"}, {Identifier: "gpt51", Name: "dup"}}
	b := []models.ModelInfo{{Identifier: "gpt52"}, {Identifier: "gpt51", Name: "B"}}

	got := Merge(a, b)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "gpt52", got[1].Identifier)

	assert.Empty(t, Merge())
}

func TestSettingsExtract(t *testing.T) {
	body := []byte(`{
		"user": {"id": 1},
		"models": ["gpt51", "user_thing", "claude45sonnetthinking", 42],
		"availableModels": [
			{"identifier": "pplx_alpha", "name": "Research", "provider": "Perplexity Inc", "isPro": true},
			{"identifier": "kimik2thinking"},
			{"name": "missing identifier"},
			{"identifier": "gpt51", "name": "duplicate"}
		],
		"supportedModels": null
	}`)

	got := Settings{}.Extract(body)
	require.Equal(t, []string{"gpt51", "claude45sonnetthinking", "pplx_alpha", "kimik2thinking"}, identifiers(got))

	assert.Equal(t, models.NewInferred("gpt51"), got[0])

	alpha := got[2]
	assert.Equal(t, "Research", alpha.Name)
	assert.Equal(t, "Perplexity Inc", alpha.Provider)
	assert.True(t, alpha.IsPro)
	assert.Equal(t, models.DefaultMode, alpha.Mode)

	kimi := got[3]
	assert.Equal(t, "Kimi K2 Thinking", kimi.Name)
	assert.Equal(t, "Moonshot AI", kimi.Provider)
	assert.Equal(t, "", kimi.Description)
	assert.False(t, kimi.IsPro)
	assert.True(t, kimi.SupportsReasoning)
}

func TestSettingsIgnoresUnusableBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"array root", `["gpt51"]`},
		{"html", `<html><body>{"models": ["gpt51"]}</body></html>`},
		{"broken json", `{"models": ["gpt51"`},
		{"no list keys", `{"user": {"models": ["gpt51"]}}`},
		{"list key not an array", `{"models": "gpt51"}`},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Settings{}.Extract([]byte(tt.body)))
		})
	}
}

func TestListQuery(t *testing.T) {
	q := listQuery(SettingsListKeys)
	assert.True(t, strings.Contains(q, ".models, .availableModels, .supportedModels"))
}

func TestIsJSON(t *testing.T) {
	jsonBody := []byte(`{"models": ["gpt51"]}`)
	htmlBody := []byte(`<!DOCTYPE html><html><body>login</body></html>`)

	tests := []struct {
		name        string
		contentType string
		body        []byte
		want        bool
	}{
		{"declared json", "application/json; charset=utf-8", jsonBody, true},
		{"declared vendor json", "application/vnd.api+json", jsonBody, true},
		{"declared html refuses json body", "text/html; charset=utf-8", jsonBody, false},
		{"missing type sniffs json", "", jsonBody, true},
		{"generic type sniffs json", "text/plain; charset=utf-8", jsonBody, true},
		{"generic type sniffs html", "text/plain", htmlBody, false},
		{"octet stream sniffs json", "application/octet-stream", jsonBody, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsJSON(tt.contentType, tt.body))
		})
	}
}

func TestSettingsHonoursDeclaredType(t *testing.T) {
	body := []byte(`{"models": ["gpt51"]}`)

	assert.Empty(t, Settings{ContentType: "text/html"}.Extract(body))
	assert.Equal(t, []string{"gpt51"}, identifiers(Settings{ContentType: "application/json"}.Extract(body)))
}

func TestSettingsValidatesIdentifiers(t *testing.T) {
	body := []byte(`{"models": [
		"o3_mini",
		{"identifier": "o3_mini", "name": "o3 mini"},
		{"identifier": "session_model"},
		{"identifier": "gpt51", "name": "kept"}
	]}`)

	got := Settings{}.Extract(body)
	require.Equal(t, []string{"gpt51"}, identifiers(got))
	assert.Equal(t, "kept", got[0].Name)
}
