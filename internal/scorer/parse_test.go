package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/icp-screener/internal/model"
)

const structuredScoring = `{
  "total_score": 16,
  "icp_fit": "Strong",
  "disqualification_reason": "None",
  "summary": "Large narrative gap.",
  "factor_a": {
    "score": 3,
    "differentiators": ["EHR-native", "Clinic-specific workflows"],
    "homepage_sections": [
      {"name": "Hero", "finding": "Generic scheduling pitch", "status": "miss"},
      {"name": "Customers", "finding": "Logo bar", "status": "miss"}
    ],
    "verdict": "Homepage could belong to any competitor."
  },
  "factor_b": {"score": 1, "decision_maker": "VP of Operations", "strategic_outcomes": ["Cut no-show revenue loss 75%"], "tactical_outcomes": ["Automate reminders"], "homepage_sections": [{"name": "Hero", "finding": "Quantified outcome", "outcome_type": "strategic"}], "verdict": "Strong outcome messaging."},
  "factor_c": {"score": 3, "sections": [{"name": "Hero", "orientation": "product-centric", "evidence": "Our platform does X"}], "verdict": "Product is the subject."},
  "factor_d": {"score": 3, "changes": [{"date": "Mid 2025", "name": "RemindCo acquisition", "before": "Scheduling only", "after": "Scheduling plus engagement"}], "verdict": "Story needs rewriting."},
  "factor_e": {"score": 3, "before": {"buyer": "Office manager", "department": "Front desk", "market": "SMB clinics"}, "today": {"buyer": "VP of Operations", "department": "Operations", "market": "Mid-market health systems"}, "verdict": "Audience moved upmarket."},
  "factor_f": {"score": 3, "products": [{"name": "Scheduler", "tag": "product"}, {"name": "Engage", "tag": "module"}], "description": "Two loosely joined products.", "verdict": "Fragmented narrative."}
}`

func TestParse_CleanJSON(t *testing.T) {
	parsed := Parse(structuredScoring)
	require.Equal(t, model.ParseStructured, parsed.Kind)
	require.NotNil(t, parsed.Structured)
	assert.Equal(t, 16, parsed.Structured.TotalScore)
	assert.Equal(t, 3, parsed.Structured.FactorA.Score)
	assert.Equal(t, "VP of Operations", parsed.Structured.FactorB.DecisionMaker)
	assert.Equal(t, structuredScoring, parsed.Raw)
}

func TestParse_FencedWithProsePrefix(t *testing.T) {
	raw := "Here is the scoring you asked for:\n```json\n" + structuredScoring + "\n```\nLet me know if you need anything else."
	parsed := Parse(raw)
	require.Equal(t, model.ParseStructured, parsed.Kind)
	assert.Equal(t, 16, parsed.Structured.TotalScore)
	assert.Equal(t, raw, parsed.Raw)
}

func TestParse_BareFence(t *testing.T) {
	raw := "```\n" + structuredScoring + "\n```"
	parsed := Parse(raw)
	require.Equal(t, model.ParseStructured, parsed.Kind)
	assert.Equal(t, "Large narrative gap.", parsed.Structured.Summary)
}

func TestParse_BraceSliceWithoutFences(t *testing.T) {
	raw := "The result follows.\n" + structuredScoring + "\nDone."
	parsed := Parse(raw)
	require.Equal(t, model.ParseStructured, parsed.Kind)
	assert.Equal(t, 16, parsed.Structured.TotalScore)
}

func TestParse_LegacyFallback(t *testing.T) {
	raw := `TOTAL_SCORE: 15
ICP_FIT: Strong
DISQUALIFICATION_REASON: None
SCORE_A_DIFFERENTIATION: 3
SCORE_A_JUSTIFICATION: Generic homepage.
SCORE_B_OUTCOMES: 2
SCORE_B_JUSTIFICATION: Tactical outcomes only.
SCORE_C_CUSTOMER_CENTRIC: 3
SCORE_C_JUSTIFICATION: Product is the subject.
SCORE_D_PRODUCT_CHANGE: 3
SCORE_D_JUSTIFICATION: Recent acquisition.
SCORE_E_AUDIENCE_CHANGE: 2
SCORE_E_JUSTIFICATION: Moving upmarket.
SCORE_F_MULTI_PRODUCT: 2
SCORE_F_JUSTIFICATION: Two products.
SCORE_SUMMARY: Meaningful gap.`

	parsed := Parse(raw)
	require.Equal(t, model.ParseLegacy, parsed.Kind)
	assert.Equal(t, "15", parsed.LegacyFields["TOTAL_SCORE"])
	assert.Equal(t, "3", parsed.LegacyFields["SCORE_A_DIFFERENTIATION"])
	assert.Equal(t, "Tactical outcomes only.", parsed.LegacyFields["SCORE_B_JUSTIFICATION"])
	assert.Equal(t, "Meaningful gap.", parsed.LegacyFields["SCORE_SUMMARY"])
	assert.Equal(t, raw, parsed.Raw)
}

func TestParse_Unparseable(t *testing.T) {
	parsed := Parse("I could not evaluate this company.")
	assert.Equal(t, model.ParseUnparseable, parsed.Kind)
	assert.Nil(t, parsed.Structured)
	assert.Equal(t, "I could not evaluate this company.", parsed.Raw)
}

func TestParse_MalformedJSONFallsToLegacy(t *testing.T) {
	raw := "{ broken json\nTOTAL_SCORE: 11\nICP_FIT: Moderate"
	parsed := Parse(raw)
	require.Equal(t, model.ParseLegacy, parsed.Kind)
	assert.Equal(t, "11", parsed.LegacyFields["TOTAL_SCORE"])
}
