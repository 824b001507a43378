package models

import "regexp"

// MinIdentifierLength is the shortest identifier accepted.
const MinIdentifierLength = 3

// Checked before the allow list; any match rejects.
var denyPatterns = compileAll(
	`^api_`,
	`^user_`,
	`^session`,
	`^token`,
	`^auth`,
	`^config`,
)

// Known provider/product naming conventions. At least one must match.
var allowPatterns = compileAll(
	`^pplx_`,
	`^gpt\d`,
	`^claude`,
	`^gemini`,
	`^grok`,
	`^sonar`,
	`^experimental`,
	`^kimi`,
	`^llama`,
	`^mistral`,
	`^deepseek`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// IsValidIdentifier reports whether id looks like a model identifier.
func IsValidIdentifier(id string) bool {
	if len(id) < MinIdentifierLength {
		return false
	}
	if matchesAny(denyPatterns, id) {
		return false
	}
	return matchesAny(allowPatterns, id)
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
