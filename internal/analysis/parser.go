package analysis

import "strings"

// Parse errors surfaced inside result entries, never escalated.
const (
	errNoJSON  = "No JSON in output"
	errBadJSON = "JSON parse error"
)

// ParseClauseOutput extracts the analysis object from free-form model output.
// Models frequently wrap the requested JSON in commentary, so the parser takes
// the span from the earliest '{' to the last '}'. The match is greedy and does
// not track brace balance; models rarely nest unrelated braces here, and a bad
// span simply degrades to a parse-error entry. Failures are recorded on the
// result, with the raw output kept for diagnosis.
func ParseClauseOutput(raw, originalClause string) ClauseAnalysis {
	span, ok := jsonSpan(raw)
	if !ok {
		return ClauseAnalysis{ClauseText: originalClause, Error: errNoJSON, Raw: raw}
	}
	var res ClauseAnalysis
	if err := res.UnmarshalJSON([]byte(span)); err != nil {
		return ClauseAnalysis{ClauseText: originalClause, Error: errBadJSON, Raw: raw}
	}
	if !res.hasClauseText {
		res.ClauseText = originalClause
	}
	return res
}

// jsonSpan returns the substring from the first '{' through the last '}'.
func jsonSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(s, "}")
	if end < start {
		return "", false
	}
	return s[start : end+1], true
}
