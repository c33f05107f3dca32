package scorer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/icp-screener/internal/model"
)

func TestRenderCalibration_Empty(t *testing.T) {
	assert.Empty(t, RenderCalibration(nil))
}

func TestRenderCalibration(t *testing.T) {
	examples := []model.TrainingExample{
		{Domain: "acme.io", CompanyName: "Acme", Factor: "A", Score: 3, Justification: "Homepage is generic.", ResearchSnapshot: "PRODUCT_SUMMARY: Scheduling."},
		{Domain: "acme.io", CompanyName: "Acme", Factor: "D", Score: 2, Justification: "One acquisition.", ResearchSnapshot: "PRODUCT_SUMMARY: Scheduling."},
		{Domain: "beta.co", CompanyName: "Beta", Factor: "B", Score: 1, Justification: "Strong outcomes in hero.", ResearchSnapshot: "PRODUCT_SUMMARY: Analytics."},
	}
	out := RenderCalibration(examples)

	assert.Contains(t, out, "=== CALIBRATION EXAMPLES ===")
	assert.Contains(t, out, "--- Acme (acme.io) ---")
	assert.Contains(t, out, "Research (abbreviated):\nPRODUCT_SUMMARY: Scheduling.")
	assert.Contains(t, out, "SCORE_A_DIFFERENTIATION: 3\nSCORE_A_JUSTIFICATION: Homepage is generic.")
	assert.Contains(t, out, "SCORE_D_PRODUCT_CHANGE: 2\nSCORE_D_JUSTIFICATION: One acquisition.")
	assert.Contains(t, out, "--- Beta (beta.co) ---")
	assert.Contains(t, out, "SCORE_B_OUTCOMES: 1")
	assert.Contains(t, out, "=== END CALIBRATION EXAMPLES ===\n\nNow score the following company using the same standards:\n")

	// Companies render in first-seen order.
	assert.Less(t, strings.Index(out, "--- Acme"), strings.Index(out, "--- Beta"))
}

func TestRenderCalibration_TruncatesSnapshot(t *testing.T) {
	long := strings.Repeat("x", 2000)
	out := RenderCalibration([]model.TrainingExample{
		{Domain: "acme.io", CompanyName: "Acme", Factor: "A", Score: 2, ResearchSnapshot: long},
	})
	assert.Contains(t, out, strings.Repeat("x", 1500)+"\n")
	assert.NotContains(t, out, strings.Repeat("x", 1501))
}
