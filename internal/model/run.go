package model

import "time"

// RunStatus represents the lifecycle of a research run.
type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusScoring  RunStatus = "scoring" // research persisted, score not yet
	RunStatusComplete RunStatus = "complete"
	RunStatusError    RunStatus = "error"
)

// ResearchFields holds the named fields extracted from the synthesis output.
// Field order mirrors the synthesis template sections.
type ResearchFields struct {
	ProductSummary         string `json:"product_summary"`
	TargetCustomer         string `json:"target_customer"`
	TargetDecisionMaker    string `json:"target_decision_maker"`
	Top3Outcomes           string `json:"top3_outcomes"`
	Top3Differentiators    string `json:"top3_differentiators"`
	MajorAnnouncements     string `json:"major_announcements"`
	Competitors            string `json:"competitors"`
	Customers              string `json:"customers"`
	Funding                string `json:"funding"`
	TeamSize               string `json:"team_size"`
	HomepageSections       string `json:"homepage_sections"`
	HomepageNav            string `json:"homepage_nav"`
	ProductPages           string `json:"product_pages"`
	NewDirectionPage       string `json:"new_direction_page"`
	LinkedInDescription    string `json:"linkedin_description"`
	CEOFounderName         string `json:"ceo_founder_name"`
	CEORecentContent       string `json:"ceo_recent_content"`
	CEONarrativeTheme      string `json:"ceo_narrative_theme"`
	NewMarketingLeader     string `json:"new_marketing_leader"`
	ProductMarketingPeople string `json:"product_marketing_people"`
}

// ResearchRun is one execution of the pipeline for a company. A company may
// have many historical runs; the latest complete one is the display view.
type ResearchRun struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Status    RunStatus `json:"status"`
	Error     string    `json:"error,omitempty"`

	ResearchRaw string         `json:"research_raw,omitempty"`
	Research    ResearchFields `json:"research"`

	ScoringRaw             string `json:"scoring_raw,omitempty"`
	TotalScore             int    `json:"total_score"`
	ICPFit                 string `json:"icp_fit,omitempty"`
	ScoreSummary           string `json:"score_summary,omitempty"`
	DisqualificationReason string `json:"disqualification_reason,omitempty"`

	Score ScoreColumns `json:"score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoreColumns is the flat, column-sharded representation of a ScoringResult.
// The relational schema stores this shape; Rehydrate rebuilds the nested one.
// Homepage section names are shared across factors A/B/C and stored once.
type ScoreColumns struct {
	HomepageSection1Name string `json:"homepage_section_1_name"`
	HomepageSection2Name string `json:"homepage_section_2_name"`
	HomepageSection3Name string `json:"homepage_section_3_name"`
	HomepageSection4Name string `json:"homepage_section_4_name"`

	ScoreA           int    `json:"score_a"`
	ADifferentiators string `json:"a_differentiators"`
	ASection1Finding string `json:"a_section_1_finding"`
	ASection1Status  string `json:"a_section_1_status"`
	ASection2Finding string `json:"a_section_2_finding"`
	ASection2Status  string `json:"a_section_2_status"`
	ASection3Finding string `json:"a_section_3_finding"`
	ASection3Status  string `json:"a_section_3_status"`
	ASection4Finding string `json:"a_section_4_finding"`
	ASection4Status  string `json:"a_section_4_status"`
	AVerdict         string `json:"a_verdict"`

	ScoreB             int    `json:"score_b"`
	BDecisionMaker     string `json:"b_decision_maker"`
	BStrategicOutcomes string `json:"b_strategic_outcomes"`
	BTacticalOutcomes  string `json:"b_tactical_outcomes"`
	BSection1Finding   string `json:"b_section_1_finding"`
	BSection1Type      string `json:"b_section_1_type"`
	BSection2Finding   string `json:"b_section_2_finding"`
	BSection2Type      string `json:"b_section_2_type"`
	BSection3Finding   string `json:"b_section_3_finding"`
	BSection3Type      string `json:"b_section_3_type"`
	BSection4Finding   string `json:"b_section_4_finding"`
	BSection4Type      string `json:"b_section_4_type"`
	BVerdict           string `json:"b_verdict"`

	ScoreC               int    `json:"score_c"`
	CSection1Orientation string `json:"c_section_1_orientation"`
	CSection1Evidence    string `json:"c_section_1_evidence"`
	CSection2Orientation string `json:"c_section_2_orientation"`
	CSection2Evidence    string `json:"c_section_2_evidence"`
	CSection3Orientation string `json:"c_section_3_orientation"`
	CSection3Evidence    string `json:"c_section_3_evidence"`
	CSection4Orientation string `json:"c_section_4_orientation"`
	CSection4Evidence    string `json:"c_section_4_evidence"`
	CVerdict             string `json:"c_verdict"`

	ScoreD   int    `json:"score_d"`
	DChanges string `json:"d_changes"`
	DVerdict string `json:"d_verdict"`

	ScoreE          int    `json:"score_e"`
	EAudienceBefore string `json:"e_audience_before"`
	EAudienceToday  string `json:"e_audience_today"`
	EVerdict        string `json:"e_verdict"`

	ScoreF       int    `json:"score_f"`
	FProducts    string `json:"f_products"`
	FDescription string `json:"f_description"`
	FVerdict     string `json:"f_verdict"`
}
