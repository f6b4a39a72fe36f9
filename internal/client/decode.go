package client

import (
	"encoding/json"
	"strings"
)

// decodeTolerant parses provider output into out. Providers are asked for
// raw JSON but routinely wrap it in markdown fences or surrounding prose,
// so the fallback order is: strict parse, fence-stripped parse, outermost
// brace slice. Anything past that is a ProviderError.
func decodeTolerant(provider, raw string, out interface{}) error {
	if err := json.Unmarshal([]byte(raw), out); err == nil {
		return nil
	}

	stripped := stripFences(raw)
	if err := json.Unmarshal([]byte(stripped), out); err == nil {
		return nil
	}

	if sliced, ok := braceSlice(stripped); ok {
		if err := json.Unmarshal([]byte(sliced), out); err == nil {
			return nil
		}
	}

	return &ProviderError{
		Provider: provider,
		Message:  "response is not valid JSON: " + truncate(raw, 200),
	}
}

// stripFences removes markdown code-fence wrappers like ```json ... ```.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// braceSlice returns the substring between the first '{' and the last '}'.
func braceSlice(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
