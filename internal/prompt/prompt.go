package prompt

import "strings"

const clauseTemplate = `You are an expert legal analyst (India context unless otherwise specified).
Given the following clause from a contract, produce a JSON object with these fields:
- clause_text
- issues (list)
- risk_level (low/medium/high with justification)
- recommended_action
- tags (list)

Return only valid JSON.

Clause:
"""{{clause}}"""
`

const summaryTemplate = `You are a legal assistant. Summarize the following legal contract. ` +
	`Highlight: (1) Key parties, (2) Obligations, (3) Risks, (4) Governing law/jurisdiction.

{{text}}`

// ClausePrompt renders the per-clause analysis instruction around a clause.
func ClausePrompt(clause string) string {
	return strings.ReplaceAll(clauseTemplate, "{{clause}}", clause)
}

// SummaryPrompt renders the whole-document summary instruction.
func SummaryPrompt(text string) string {
	return strings.ReplaceAll(summaryTemplate, "{{text}}", text)
}
