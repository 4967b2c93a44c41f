package analysis

import "encoding/json"

// ClauseAnalysis is the structured analysis of one clause, in clause order.
// Either the analysis fields or Error/Raw are populated, never both
// meaningfully. ClauseText is always set; it is backfilled from the source
// clause when the model omits it.
type ClauseAnalysis struct {
	ClauseText        string   `json:"clause_text"`
	Issues            []string `json:"issues,omitempty"`
	RiskLevel         string   `json:"risk_level,omitempty"`
	RecommendedAction string   `json:"recommended_action,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Error             string   `json:"error,omitempty"`
	Raw               string   `json:"raw,omitempty"`

	// Extra holds model fields outside the requested schema. They pass
	// through unmodified; the schema is not enforced.
	Extra map[string]json.RawMessage `json:"-"`

	hasClauseText bool
}

// Report is the output of one pipeline run: a document summary plus one
// result per analyzed clause, in document order.
type Report struct {
	Summary string           `json:"summary"`
	Results []ClauseAnalysis `json:"results"`
}

// RiskLabel returns the model-assigned risk level, or a placeholder for error
// entries that carry none.
func (c ClauseAnalysis) RiskLabel() string {
	if c.RiskLevel == "" {
		return "N/A"
	}
	return c.RiskLevel
}

var knownFields = map[string]bool{
	"clause_text":        true,
	"issues":             true,
	"risk_level":         true,
	"recommended_action": true,
	"tags":               true,
	"error":              true,
	"raw":                true,
}

// UnmarshalJSON decodes leniently: any valid JSON object is accepted, known
// fields are pulled out best-effort, and everything else lands in Extra. A
// known field of the wrong type is kept in Extra instead of failing the whole
// object.
func (c *ClauseAnalysis) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	_, c.hasClauseText = fields["clause_text"]

	take := func(key string, dst any) bool {
		raw, ok := fields[key]
		if !ok {
			return false
		}
		return json.Unmarshal(raw, dst) == nil
	}
	taken := map[string]bool{
		"clause_text":        take("clause_text", &c.ClauseText),
		"issues":             take("issues", &c.Issues),
		"risk_level":         take("risk_level", &c.RiskLevel),
		"recommended_action": take("recommended_action", &c.RecommendedAction),
		"tags":               take("tags", &c.Tags),
		"error":              take("error", &c.Error),
		"raw":                take("raw", &c.Raw),
	}

	for key, raw := range fields {
		if knownFields[key] && taken[key] {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]json.RawMessage)
		}
		c.Extra[key] = raw
	}
	return nil
}

// MarshalJSON re-emits the known fields plus any Extra passthrough.
func (c ClauseAnalysis) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.Extra)+7)
	for key, raw := range c.Extra {
		out[key] = raw
	}

	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = raw
		return nil
	}
	if err := put("clause_text", c.ClauseText); err != nil {
		return nil, err
	}
	optional := []struct {
		key string
		v   any
		set bool
	}{
		{"issues", c.Issues, c.Issues != nil},
		{"risk_level", c.RiskLevel, c.RiskLevel != ""},
		{"recommended_action", c.RecommendedAction, c.RecommendedAction != ""},
		{"tags", c.Tags, c.Tags != nil},
		{"error", c.Error, c.Error != ""},
		{"raw", c.Raw, c.Raw != ""},
	}
	for _, f := range optional {
		if !f.set {
			continue
		}
		if err := put(f.key, f.v); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}
