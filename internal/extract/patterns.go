package extract

import (
	"regexp"

	. "github.com/roelfdiedericks/pplxmodels/internal/logging"
	"github.com/roelfdiedericks/pplxmodels/internal/models"
)

// Free-text patterns for identifiers that appear in inline scripts.
var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"identifier"\s*:\s*"([a-z0-9_]+)"`),
	regexp.MustCompile(`(?i)"model"\s*:\s*"([a-z0-9_]+)"`),
	regexp.MustCompile(`(?i)modelId["']?\s*[:=]\s*["']([a-z0-9_]+)["']`),
}

// Patterns scans the raw text for identifier-looking string literals and
// infers metadata for each, since no sibling fields are available.
type Patterns struct{}

func (Patterns) Name() string { return "patterns" }

func (Patterns) Extract(body []byte) []models.ModelInfo {
	var out []models.ModelInfo
	seen := make(map[string]bool)

	for _, re := range identifierPatterns {
		for _, match := range re.FindAllSubmatch(body, -1) {
			id := string(match[1])
			if seen[id] {
				continue
			}
			seen[id] = true
			if models.IsValidIdentifier(id) {
				out = append(out, models.NewInferred(id))
			}
		}
	}

	L_debug("extract: pattern scan done", "candidates", len(seen), "models", len(out))
	return out
}
