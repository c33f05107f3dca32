package model

// ICP fit bands derived from total score (or a disqualification flag).
const (
	FitStrong       = "Strong"
	FitModerate     = "Moderate"
	FitWeak         = "Weak"
	FitDisqualified = "Disqualified"
)

// HomepageSection is one of the first 4 significant homepage content blocks,
// as evaluated by factors A and B (shared names across A/B/C).
type HomepageSection struct {
	Name    string `json:"name"`
	Finding string `json:"finding"`
	// Status is set for factor A ("hit"/"miss"), OutcomeType for factor B
	// ("strategic"/"tactical"/"none").
	Status      string `json:"status,omitempty"`
	OutcomeType string `json:"outcome_type,omitempty"`
}

// OrientedSection is factor C's view of a homepage section.
type OrientedSection struct {
	Name        string `json:"name"`
	Orientation string `json:"orientation"` // product-centric|customer-centric|mixed|excluded
	Evidence    string `json:"evidence"`
}

// ProductChange is one factor D narrative-relevant change.
type ProductChange struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Audience describes who a company sells to, for factor E's before/today pair.
type Audience struct {
	Buyer      string `json:"buyer"`
	Department string `json:"department"`
	Market     string `json:"market"`
}

// Product is one factor F product/module entry.
type Product struct {
	Name string `json:"name"`
	Tag  string `json:"tag"` // module|product|suite
}

// FactorA scores differentiation clarity on the homepage.
type FactorA struct {
	Score            int               `json:"score"`
	Differentiators  []string          `json:"differentiators"`
	HomepageSections []HomepageSection `json:"homepage_sections"`
	Verdict          string            `json:"verdict"`
}

// FactorB scores outcome prominence (strategic vs tactical).
type FactorB struct {
	Score             int               `json:"score"`
	DecisionMaker     string            `json:"decision_maker"`
	StrategicOutcomes []string          `json:"strategic_outcomes"`
	TacticalOutcomes  []string          `json:"tactical_outcomes"`
	HomepageSections  []HomepageSection `json:"homepage_sections"`
	Verdict           string            `json:"verdict"`
}

// FactorC scores customer-centricity of company-authored copy.
type FactorC struct {
	Score    int               `json:"score"`
	Sections []OrientedSection `json:"sections"`
	Verdict  string            `json:"verdict"`
}

// FactorD scores product change over the last ~12 months.
type FactorD struct {
	Score   int             `json:"score"`
	Changes []ProductChange `json:"changes"`
	Verdict string          `json:"verdict"`
}

// FactorE scores audience change.
type FactorE struct {
	Score   int      `json:"score"`
	Before  Audience `json:"before"`
	Today   Audience `json:"today"`
	Verdict string   `json:"verdict"`
}

// FactorF scores multi-product narrative cohesion.
type FactorF struct {
	Score       int       `json:"score"`
	Products    []Product `json:"products"`
	Description string    `json:"description"`
	Verdict     string    `json:"verdict"`
}

// ScoringResult is the nested object the scoring model returns. It is never
// stored in this shape; Flatten decomposes it into ScoreColumns and Rehydrate
// reconstructs it for display.
type ScoringResult struct {
	TotalScore             int     `json:"total_score"`
	ICPFit                 string  `json:"icp_fit"`
	DisqualificationReason string  `json:"disqualification_reason"`
	Summary                string  `json:"summary"`
	FactorA                FactorA `json:"factor_a"`
	FactorB                FactorB `json:"factor_b"`
	FactorC                FactorC `json:"factor_c"`
	FactorD                FactorD `json:"factor_d"`
	FactorE                FactorE `json:"factor_e"`
	FactorF                FactorF `json:"factor_f"`
}

// ParseKind tags how a scoring response was recovered from model output.
type ParseKind int

const (
	// ParseStructured means the JSON object parsed cleanly.
	ParseStructured ParseKind = iota
	// ParseLegacy means JSON failed and the labeled-field fallback was used.
	ParseLegacy
	// ParseUnparseable means neither strategy recovered anything.
	ParseUnparseable
)

func (k ParseKind) String() string {
	switch k {
	case ParseStructured:
		return "structured"
	case ParseLegacy:
		return "legacy"
	case ParseUnparseable:
		return "unparseable"
	}
	return "unknown"
}

// ParsedScore is the tagged result of scoring-output parsing. Branch on Kind
// instead of probing object shape.
type ParsedScore struct {
	Kind       ParseKind
	Structured *ScoringResult
	// LegacyFields holds SCORE_*_* label → value pairs when Kind is ParseLegacy.
	LegacyFields map[string]string
	// Raw is the verbatim model output, kept for auditing in all cases.
	Raw string
}
