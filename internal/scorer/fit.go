package scorer

import (
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/icp-screener/internal/model"
)

// Thresholds maps a total score onto a fit band. Scores at or above Strong
// are Strong, at or above Moderate are Moderate, everything else is Weak.
type Thresholds struct {
	Strong   int `yaml:"strong"`
	Moderate int `yaml:"moderate"`
}

// DefaultThresholds returns the standard 14/10 bands for the 6-18 scale.
func DefaultThresholds() Thresholds {
	return Thresholds{Strong: 14, Moderate: 10}
}

// LoadThresholds reads fit thresholds from a YAML file. An empty path keeps
// the defaults; a partially specified file keeps defaults for the rest.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, eris.Wrapf(err, "scorer: read thresholds file %s", path)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, eris.Wrapf(err, "scorer: parse thresholds file %s", path)
	}
	return t, nil
}

// FitLabel maps a total score to its band.
func (t Thresholds) FitLabel(total int) string {
	switch {
	case total >= t.Strong:
		return model.FitStrong
	case total >= t.Moderate:
		return model.FitModerate
	default:
		return model.FitWeak
	}
}

// Disqualified reports whether the model flagged the company out of the ICP.
// Either an explicit "Disqualified" fit or any reason other than an empty or
// "None"/"none" value counts.
func Disqualified(modelFit, reason string) bool {
	if modelFit == model.FitDisqualified {
		return true
	}
	return reason != "" && reason != "None" && reason != "none"
}

// Outcome is the resolved scoring result a run row stores: the deterministic
// fit band plus the flat column set.
type Outcome struct {
	TotalScore             int
	Fit                    string
	Summary                string
	DisqualificationReason string
	Columns                model.ScoreColumns
}

// Resolve turns a parsed scoring response into a storable outcome. The fit
// band is always recomputed from the total score; the model's own icp_fit is
// honored only as a disqualification flag. Legacy responses keep their
// numeric scores and summary but carry no per-section detail; unparseable
// responses resolve to a zero score.
func Resolve(parsed model.ParsedScore, t Thresholds) Outcome {
	switch parsed.Kind {
	case model.ParseStructured:
		sr := parsed.Structured
		fit := t.FitLabel(sr.TotalScore)
		if Disqualified(sr.ICPFit, sr.DisqualificationReason) {
			fit = model.FitDisqualified
		}
		reason := sr.DisqualificationReason
		if reason == "" {
			reason = "None"
		}
		return Outcome{
			TotalScore:             sr.TotalScore,
			Fit:                    fit,
			Summary:                sr.Summary,
			DisqualificationReason: reason,
			Columns:                Flatten(*sr),
		}

	case model.ParseLegacy:
		f := parsed.LegacyFields
		total := atoiOrZero(f["TOTAL_SCORE"])
		fit := t.FitLabel(total)
		if Disqualified(f["ICP_FIT"], f["DISQUALIFICATION_REASON"]) {
			fit = model.FitDisqualified
		}
		return Outcome{
			TotalScore:             total,
			Fit:                    fit,
			Summary:                f["SCORE_SUMMARY"],
			DisqualificationReason: f["DISQUALIFICATION_REASON"],
			Columns: model.ScoreColumns{
				ScoreA: atoiOrZero(f["SCORE_A_DIFFERENTIATION"]),
				ScoreB: atoiOrZero(f["SCORE_B_OUTCOMES"]),
				ScoreC: atoiOrZero(f["SCORE_C_CUSTOMER_CENTRIC"]),
				ScoreD: atoiOrZero(f["SCORE_D_PRODUCT_CHANGE"]),
				ScoreE: atoiOrZero(f["SCORE_E_AUDIENCE_CHANGE"]),
				ScoreF: atoiOrZero(f["SCORE_F_MULTI_PRODUCT"]),
			},
		}

	default:
		return Outcome{Fit: t.FitLabel(0), DisqualificationReason: "None"}
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
