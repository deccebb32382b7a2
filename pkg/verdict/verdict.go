// Package verdict normalizes raw LLM text into a {verdict, reasoning} pair.
package verdict

import (
	"encoding/json"
	"strings"
)

const maxReasoningLen = 1000

type jsonVerdict struct {
	Verdict   string `json:"verdict"`
	Reasoning string `json:"reasoning"`
}

var validVerdicts = map[string]bool{
	"pass": true, "fail": true, "inconclusive": true,
}

// Parse attempts a JSON-first parse of raw provider text expecting
// {verdict, reasoning?}. On parse or validation failure it falls back to a
// lexical heuristic over the lowercased raw text.
func Parse(raw string) (verdict, reasoning string) {
	trimmed := strings.TrimSpace(raw)

	var v jsonVerdict
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil && validVerdicts[strings.ToLower(v.Verdict)] {
		return strings.ToLower(v.Verdict), truncate(strings.TrimSpace(v.Reasoning))
	}

	return lexicalFallback(trimmed), truncate(trimmed)
}

func lexicalFallback(raw string) string {
	lower := strings.ToLower(raw)
	hasPass := strings.Contains(lower, "pass")
	hasFail := strings.Contains(lower, "fail")
	switch {
	case hasPass && !hasFail:
		return "pass"
	case hasFail && !hasPass:
		return "fail"
	default:
		return "inconclusive"
	}
}

func truncate(s string) string {
	if len(s) <= maxReasoningLen {
		return s
	}
	return s[:maxReasoningLen]
}
