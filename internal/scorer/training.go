package scorer

import (
	"fmt"
	"strings"

	"github.com/sells-group/icp-screener/internal/model"
)

// factorNames maps factor letters to their rubric labels for calibration
// rendering.
var factorNames = map[string]string{
	"A": "DIFFERENTIATION",
	"B": "OUTCOMES",
	"C": "CUSTOMER_CENTRIC",
	"D": "PRODUCT_CHANGE",
	"E": "AUDIENCE_CHANGE",
	"F": "MULTI_PRODUCT",
}

const snapshotLimit = 1500

// RenderCalibration formats human-corrected scoring examples for injection
// into the scoring prompt. Examples are grouped by company in first-seen
// order, with an abbreviated research snapshot and the corrected score plus
// justification per factor. Returns "" when there are no examples.
func RenderCalibration(examples []model.TrainingExample) string {
	if len(examples) == 0 {
		return ""
	}

	type group struct {
		name     string
		snapshot string
		factors  []model.TrainingExample
	}
	var order []string
	byDomain := make(map[string]*group)
	for _, ex := range examples {
		g, ok := byDomain[ex.Domain]
		if !ok {
			g = &group{name: ex.CompanyName, snapshot: ex.ResearchSnapshot}
			byDomain[ex.Domain] = g
			order = append(order, ex.Domain)
		}
		g.factors = append(g.factors, ex)
	}

	var sb strings.Builder
	sb.WriteString("\n\n=== CALIBRATION EXAMPLES ===\nBelow are manually reviewed and corrected scoring examples for individual factors. Use these to calibrate your scoring. Match the reasoning style and score levels shown here.\n\n")
	for _, domain := range order {
		g := byDomain[domain]
		snapshot := g.snapshot
		if len(snapshot) > snapshotLimit {
			snapshot = snapshot[:snapshotLimit]
		}
		fmt.Fprintf(&sb, "--- %s (%s) ---\n", g.name, domain)
		fmt.Fprintf(&sb, "Research (abbreviated):\n%s\n\n", snapshot)
		sb.WriteString("CORRECT SCORES:\n")
		for _, ex := range g.factors {
			fmt.Fprintf(&sb, "SCORE_%s_%s: %d\nSCORE_%s_JUSTIFICATION: %s\n", ex.Factor, factorNames[ex.Factor], ex.Score, ex.Factor, ex.Justification)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("=== END CALIBRATION EXAMPLES ===\n\nNow score the following company using the same standards:\n")
	return sb.String()
}
