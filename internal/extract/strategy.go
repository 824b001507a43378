// Package extract turns raw page and endpoint bodies into model lists.
//
// Each source of candidates is a Strategy so the heuristics can be swapped
// as the upstream front-end changes.
package extract

import (
	"github.com/roelfdiedericks/pplxmodels/internal/models"
)

// Strategy extracts models from a response body. Implementations never
// fail: unparseable input yields no models.
type Strategy interface {
	Name() string
	Extract(body []byte) []models.ModelInfo
}

// PageStrategies are applied, in order, to the service's root page.
func PageStrategies() []Strategy {
	return []Strategy{NextData{}, Patterns{}}
}

// Run applies every strategy to body and merges the results.
func Run(body []byte, strategies ...Strategy) []models.ModelInfo {
	lists := make([][]models.ModelInfo, 0, len(strategies))
	for _, s := range strategies {
		lists = append(lists, s.Extract(body))
	}
	return Merge(lists...)
}

// Merge concatenates lists, keeping the first model seen for each identifier.
func Merge(lists ...[]models.ModelInfo) []models.ModelInfo {
	var out []models.ModelInfo
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, m := range list {
			if seen[m.Identifier] {
				continue
			}
			seen[m.Identifier] = true
			out = append(out, m)
		}
	}
	return out
}
