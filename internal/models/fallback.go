package models

import (
	_ "embed"
	"encoding/json"
	"sync"

	. "github.com/roelfdiedericks/pplxmodels/internal/logging"
)

// Known models as of the last catalog update. Edit fallback.json when the
// service changes its lineup.
//
//go:embed fallback.json
var embeddedFallback []byte

var (
	fallback     []ModelInfo
	fallbackOnce sync.Once
)

func loadFallback() {
	if err := json.Unmarshal(embeddedFallback, &fallback); err != nil {
		// Only reachable if fallback.json is edited into invalid JSON.
		L_error("models: failed to parse embedded fallback.json", "error", err)
		fallback = nil
		return
	}
	L_trace("models: fallback catalog loaded", "count", len(fallback))
}

// Fallback returns a fresh copy of the static catalog, in fixed order.
func Fallback() []ModelInfo {
	fallbackOnce.Do(loadFallback)
	out := make([]ModelInfo, len(fallback))
	copy(out, fallback)
	return out
}
