// Package models holds the ModelInfo record and the heuristics used to
// classify scraped model identifiers.
package models

// DefaultMode is the mode assigned when none is known.
const DefaultMode = "copilot"

// ModelInfo describes one model variant offered by the service.
type ModelInfo struct {
	Identifier        string `json:"identifier" yaml:"identifier"`
	Name              string `json:"name" yaml:"name"`
	Description       string `json:"description" yaml:"description"`
	Mode              string `json:"mode" yaml:"mode"`
	Provider          string `json:"provider" yaml:"provider"`
	IsPro             bool   `json:"is_pro" yaml:"is_pro"`
	SupportsReasoning bool   `json:"supports_reasoning" yaml:"supports_reasoning"`
}

// ToMap returns the model as a plain map with all seven fields present.
func (m ModelInfo) ToMap() map[string]any {
	return map[string]any{
		"identifier":         m.Identifier,
		"name":               m.Name,
		"description":        m.Description,
		"mode":               m.Mode,
		"provider":           m.Provider,
		"is_pro":             m.IsPro,
		"supports_reasoning": m.SupportsReasoning,
	}
}

// Source names the stage that produced a model list.
type Source string

const (
	SourceNone     Source = ""
	SourcePage     Source = "page"
	SourceSettings Source = "settings"
	SourceFallback Source = "fallback"
)

// Find returns the first model in list with the given identifier.
func Find(list []ModelInfo, id string) (ModelInfo, bool) {
	for _, m := range list {
		if m.Identifier == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}
