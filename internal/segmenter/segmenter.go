package segmenter

import (
	"regexp"
	"strings"
)

// Options controls how contract text is segmented.
type Options struct {
	MaxClauseChars int
	MinClauseChars int
}

// Clause is one analyzable unit of contract text, in document order.
type Clause struct {
	Index int
	Text  string
}

// markerPattern matches numbered or lettered enumeration markers at the start
// of a line: "1. ", "A) ", "1) ". The marker itself is discarded on split.
var markerPattern = regexp.MustCompile(`\n\s*(?:\d+\.\s+|[A-Z]\)\s+|\d+\)\s+)`)

// Segment splits raw contract text into ordered clauses.
//
// Enumeration markers are the primary boundary; without at least two marker
// candidates the text falls back to blank-line paragraphs. Candidates longer
// than MaxClauseChars are re-split into sentences and greedily packed back up
// to the bound. Clauses at or below MinClauseChars (trimmed) are dropped.
func Segment(text string, opts Options) []Clause {
	if opts.MaxClauseChars <= 0 {
		opts.MaxClauseChars = 1500
	}
	if opts.MinClauseChars <= 0 {
		opts.MinClauseChars = 20
	}

	text = normalizeNewlines(text)

	candidates := markerPattern.Split(text, -1)
	if len(candidates) < 2 {
		candidates = candidates[:0]
		for _, p := range strings.Split(text, "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				candidates = append(candidates, p)
			}
		}
	}

	var clauses []Clause
	for _, c := range candidates {
		if len(c) > opts.MaxClauseChars {
			for _, part := range packSentences(c, opts.MaxClauseChars) {
				clauses = appendClause(clauses, part, opts.MinClauseChars)
			}
			continue
		}
		clauses = appendClause(clauses, c, opts.MinClauseChars)
	}
	return clauses
}

func appendClause(clauses []Clause, text string, min int) []Clause {
	text = strings.TrimSpace(text)
	if len(text) <= min {
		return clauses
	}
	return append(clauses, Clause{Index: len(clauses), Text: text})
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// packSentences splits an oversize candidate into sentences and greedily packs
// them into clauses below max. A single sentence longer than max is emitted
// whole; no further splitting is attempted.
func packSentences(text string, max int) []string {
	var packed []string
	cur := ""
	for _, s := range splitSentences(text) {
		if len(cur)+len(s) < max {
			cur += " " + s
			continue
		}
		if trimmed := strings.TrimSpace(cur); trimmed != "" {
			packed = append(packed, trimmed)
		}
		cur = s
	}
	if trimmed := strings.TrimSpace(cur); trimmed != "" {
		packed = append(packed, trimmed)
	}
	return packed
}

// splitSentences cuts after sentence-terminal punctuation followed by
// whitespace. The punctuation stays with the sentence; the whitespace run is
// consumed.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	i := 0
	for i < len(text) {
		c := text[i]
		if (c == '.' || c == '?' || c == '!') && i+1 < len(text) && isSpace(text[i+1]) {
			sentences = append(sentences, text[start:i+1])
			i++
			for i < len(text) && isSpace(text[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
