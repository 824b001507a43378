package extract

import (
	"encoding/json"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/itchyny/gojq"
	. "github.com/roelfdiedericks/pplxmodels/internal/logging"
	"github.com/roelfdiedericks/pplxmodels/internal/models"
)

// SettingsListKeys are the fields that may carry a model list.
var SettingsListKeys = []string{"models", "availableModels", "supportedModels"}

var settingsQuery = mustCompile(listQuery(SettingsListKeys))

// listQuery emits every array found under keys of an object root.
func listQuery(keys []string) string {
	paths := make([]string, len(keys))
	for i, k := range keys {
		paths[i] = "." + k
	}
	return `if type == "object" then (` + strings.Join(paths, ", ") + `) | arrays else empty end`
}

func mustCompile(query string) *gojq.Code {
	parsed, err := gojq.Parse(query)
	if err != nil {
		panic(err)
	}
	code, err := gojq.Compile(parsed)
	if err != nil {
		panic(err)
	}
	return code
}

// Settings reads model lists from the JSON returned by auxiliary endpoints.
// Bare strings are classified like free-text matches; objects carrying an
// identifier keep their own fields.
type Settings struct {
	// ContentType is the response's declared type; empty means unknown.
	ContentType string
}

func (Settings) Name() string { return "settings" }

func (s Settings) Extract(body []byte) []models.ModelInfo {
	if !IsJSON(s.ContentType, body) {
		L_debug("extract: settings body is not JSON", "declared", s.ContentType, "detected", mimetype.Detect(body).String())
		return nil
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		L_debug("extract: settings JSON parse failed", "error", err)
		return nil
	}

	var out []models.ModelInfo
	iter := settingsQuery.Run(data)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			L_debug("extract: settings query failed", "error", err)
			break
		}
		list, _ := v.([]any)
		for _, entry := range list {
			if m, ok := modelFromEntry(entry); ok {
				out = append(out, m)
			}
		}
	}
	return Merge(out)
}

// IsJSON decides whether a response body should be read as JSON. A declared
// JSON type is trusted and any other specific type is refused; a missing or
// generic type falls back to sniffing the body.
func IsJSON(contentType string, body []byte) bool {
	switch {
	case contentType == "" || mimetype.EqualsAny(contentType, genericTypes...):
		return sniffJSON(body)
	case mimetype.EqualsAny(contentType, "application/json", "text/json"):
		return true
	default:
		base, _, _ := strings.Cut(contentType, ";")
		return strings.HasSuffix(strings.TrimSpace(strings.ToLower(base)), "+json")
	}
}

// Types servers send when they don't know better.
var genericTypes = []string{"text/plain", "application/octet-stream"}

func sniffJSON(body []byte) bool {
	for mt := mimetype.Detect(body); mt != nil; mt = mt.Parent() {
		if mt.Is("application/json") {
			return true
		}
	}
	return false
}

func modelFromEntry(entry any) (models.ModelInfo, bool) {
	switch e := entry.(type) {
	case string:
		if !models.IsValidIdentifier(e) {
			return models.ModelInfo{}, false
		}
		return models.NewInferred(e), true

	case map[string]any:
		id, _ := e["identifier"].(string)
		if !models.IsValidIdentifier(id) {
			return models.ModelInfo{}, false
		}
		m := models.ModelInfo{
			Identifier:        id,
			Name:              models.InferName(id),
			Mode:              models.DefaultMode,
			Provider:          models.InferProvider(id),
			SupportsReasoning: models.SupportsReasoning(id),
		}
		if s, ok := e["name"].(string); ok && s != "" {
			m.Name = s
		}
		if s, ok := e["description"].(string); ok {
			m.Description = s
		}
		if s, ok := e["mode"].(string); ok && s != "" {
			m.Mode = s
		}
		if s, ok := e["provider"].(string); ok && s != "" {
			m.Provider = s
		}
		if b, ok := e["isPro"].(bool); ok {
			m.IsPro = b
		}
		if b, ok := e["supportsReasoning"].(bool); ok {
			m.SupportsReasoning = b
		}
		return m, true
	}
	return models.ModelInfo{}, false
}
