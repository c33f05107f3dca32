package scorer

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/research"
)

var (
	leadingFence  = regexp.MustCompile(`(?is)^.*?` + "```" + `(?:json)?\s*`)
	trailingFence = regexp.MustCompile(`(?is)\s*` + "```" + `.*$`)
)

// legacyLabels is the labeled-field vocabulary of the old text scoring
// format, kept as a fallback for models that ignore the JSON instruction.
var legacyLabels = []string{
	"TOTAL_SCORE",
	"ICP_FIT",
	"DISQUALIFICATION_REASON",
	"SCORE_SUMMARY",
	"SCORE_A_DIFFERENTIATION", "SCORE_A_JUSTIFICATION",
	"SCORE_B_OUTCOMES", "SCORE_B_JUSTIFICATION",
	"SCORE_C_CUSTOMER_CENTRIC", "SCORE_C_JUSTIFICATION",
	"SCORE_D_PRODUCT_CHANGE", "SCORE_D_JUSTIFICATION",
	"SCORE_E_AUDIENCE_CHANGE", "SCORE_E_JUSTIFICATION",
	"SCORE_F_MULTI_PRODUCT", "SCORE_F_JUSTIFICATION",
}

// Parse recovers a scoring result from raw model output. The ladder:
// strip code fences, slice to the outermost braces, unmarshal; on failure
// fall back to the legacy labeled-field format; if that also yields nothing
// the result is tagged unparseable. Parse never fails — the raw text is
// preserved in all cases for auditing.
func Parse(raw string) model.ParsedScore {
	if sr, ok := parseStructured(raw); ok {
		return model.ParsedScore{Kind: model.ParseStructured, Structured: sr, Raw: raw}
	}

	fields := make(map[string]string)
	found := false
	for _, label := range legacyLabels {
		v := research.ExtractField(raw, label)
		fields[label] = v
		if v != "" {
			found = true
		}
	}
	if !found {
		return model.ParsedScore{Kind: model.ParseUnparseable, Raw: raw}
	}
	return model.ParsedScore{Kind: model.ParseLegacy, LegacyFields: fields, Raw: raw}
}

func parseStructured(raw string) (*model.ScoringResult, bool) {
	jsonStr := leadingFence.ReplaceAllString(raw, "")
	jsonStr = trailingFence.ReplaceAllString(jsonStr, "")
	if !strings.HasPrefix(strings.TrimSpace(jsonStr), "{") {
		first := strings.Index(jsonStr, "{")
		last := strings.LastIndex(jsonStr, "}")
		if first != -1 && last != -1 && last > first {
			jsonStr = jsonStr[first : last+1]
		}
	}
	jsonStr = strings.TrimSpace(jsonStr)
	if !strings.HasPrefix(jsonStr, "{") {
		return nil, false
	}
	var sr model.ScoringResult
	if err := json.Unmarshal([]byte(jsonStr), &sr); err != nil {
		return nil, false
	}
	return &sr, true
}
