package store

import (
	"fmt"
	"strings"

	"github.com/sells-group/icp-screener/internal/model"
)

// The research_runs table shards a run across ~80 flat columns so every
// extracted field and factor score is filterable in plain SQL. Both drivers
// share these ordered lists; the arg and scan helpers below must stay in
// lockstep with them.

var researchColumns = []string{
	"research_raw",
	"product_summary",
	"target_customer",
	"target_decision_maker",
	"top3_outcomes",
	"top3_differentiators",
	"major_announcements",
	"competitors",
	"customers",
	"funding",
	"team_size",
	"homepage_sections",
	"homepage_nav",
	"product_pages",
	"new_direction_page",
	"linkedin_description",
	"ceo_founder_name",
	"ceo_recent_content",
	"ceo_narrative_theme",
	"new_marketing_leader",
	"product_marketing_people",
}

var scoringColumns = []string{
	"scoring_raw",
	"total_score",
	"icp_fit",
	"score_summary",
	"disqualification_reason",
	"homepage_section_1_name",
	"homepage_section_2_name",
	"homepage_section_3_name",
	"homepage_section_4_name",
	"score_a",
	"a_differentiators",
	"a_section_1_finding",
	"a_section_1_status",
	"a_section_2_finding",
	"a_section_2_status",
	"a_section_3_finding",
	"a_section_3_status",
	"a_section_4_finding",
	"a_section_4_status",
	"a_verdict",
	"score_b",
	"b_decision_maker",
	"b_strategic_outcomes",
	"b_tactical_outcomes",
	"b_section_1_finding",
	"b_section_1_type",
	"b_section_2_finding",
	"b_section_2_type",
	"b_section_3_finding",
	"b_section_3_type",
	"b_section_4_finding",
	"b_section_4_type",
	"b_verdict",
	"score_c",
	"c_section_1_orientation",
	"c_section_1_evidence",
	"c_section_2_orientation",
	"c_section_2_evidence",
	"c_section_3_orientation",
	"c_section_3_evidence",
	"c_section_4_orientation",
	"c_section_4_evidence",
	"c_verdict",
	"score_d",
	"d_changes",
	"d_verdict",
	"score_e",
	"e_audience_before",
	"e_audience_today",
	"e_verdict",
	"score_f",
	"f_products",
	"f_description",
	"f_verdict",
}

// runSelectColumns is the full column list scanned by scanRunDest, in order.
var runSelectColumns = "id, company_id, status, error, " +
	strings.Join(researchColumns, ", ") + ", " +
	strings.Join(scoringColumns, ", ") + ", created_at, updated_at"

func researchArgs(u ResearchUpdate) []any {
	f := u.Fields
	return []any{
		u.ResearchRaw,
		f.ProductSummary,
		f.TargetCustomer,
		f.TargetDecisionMaker,
		f.Top3Outcomes,
		f.Top3Differentiators,
		f.MajorAnnouncements,
		f.Competitors,
		f.Customers,
		f.Funding,
		f.TeamSize,
		f.HomepageSections,
		f.HomepageNav,
		f.ProductPages,
		f.NewDirectionPage,
		f.LinkedInDescription,
		f.CEOFounderName,
		f.CEORecentContent,
		f.CEONarrativeTheme,
		f.NewMarketingLeader,
		f.ProductMarketingPeople,
	}
}

func scoreArgs(u ScoreUpdate) []any {
	c := u.Columns
	return []any{
		u.ScoringRaw,
		u.TotalScore,
		u.ICPFit,
		u.ScoreSummary,
		u.DisqualificationReason,
		c.HomepageSection1Name,
		c.HomepageSection2Name,
		c.HomepageSection3Name,
		c.HomepageSection4Name,
		c.ScoreA,
		c.ADifferentiators,
		c.ASection1Finding,
		c.ASection1Status,
		c.ASection2Finding,
		c.ASection2Status,
		c.ASection3Finding,
		c.ASection3Status,
		c.ASection4Finding,
		c.ASection4Status,
		c.AVerdict,
		c.ScoreB,
		c.BDecisionMaker,
		c.BStrategicOutcomes,
		c.BTacticalOutcomes,
		c.BSection1Finding,
		c.BSection1Type,
		c.BSection2Finding,
		c.BSection2Type,
		c.BSection3Finding,
		c.BSection3Type,
		c.BSection4Finding,
		c.BSection4Type,
		c.BVerdict,
		c.ScoreC,
		c.CSection1Orientation,
		c.CSection1Evidence,
		c.CSection2Orientation,
		c.CSection2Evidence,
		c.CSection3Orientation,
		c.CSection3Evidence,
		c.CSection4Orientation,
		c.CSection4Evidence,
		c.CVerdict,
		c.ScoreD,
		c.DChanges,
		c.DVerdict,
		c.ScoreE,
		c.EAudienceBefore,
		c.EAudienceToday,
		c.EVerdict,
		c.ScoreF,
		c.FProducts,
		c.FDescription,
		c.FVerdict,
	}
}

// scanRunDest returns scan targets matching runSelectColumns.
func scanRunDest(r *model.ResearchRun) []any {
	f := &r.Research
	c := &r.Score
	return []any{
		&r.ID, &r.CompanyID, &r.Status, &r.Error,
		&r.ResearchRaw,
		&f.ProductSummary,
		&f.TargetCustomer,
		&f.TargetDecisionMaker,
		&f.Top3Outcomes,
		&f.Top3Differentiators,
		&f.MajorAnnouncements,
		&f.Competitors,
		&f.Customers,
		&f.Funding,
		&f.TeamSize,
		&f.HomepageSections,
		&f.HomepageNav,
		&f.ProductPages,
		&f.NewDirectionPage,
		&f.LinkedInDescription,
		&f.CEOFounderName,
		&f.CEORecentContent,
		&f.CEONarrativeTheme,
		&f.NewMarketingLeader,
		&f.ProductMarketingPeople,
		&r.ScoringRaw,
		&r.TotalScore,
		&r.ICPFit,
		&r.ScoreSummary,
		&r.DisqualificationReason,
		&c.HomepageSection1Name,
		&c.HomepageSection2Name,
		&c.HomepageSection3Name,
		&c.HomepageSection4Name,
		&c.ScoreA,
		&c.ADifferentiators,
		&c.ASection1Finding,
		&c.ASection1Status,
		&c.ASection2Finding,
		&c.ASection2Status,
		&c.ASection3Finding,
		&c.ASection3Status,
		&c.ASection4Finding,
		&c.ASection4Status,
		&c.AVerdict,
		&c.ScoreB,
		&c.BDecisionMaker,
		&c.BStrategicOutcomes,
		&c.BTacticalOutcomes,
		&c.BSection1Finding,
		&c.BSection1Type,
		&c.BSection2Finding,
		&c.BSection2Type,
		&c.BSection3Finding,
		&c.BSection3Type,
		&c.BSection4Finding,
		&c.BSection4Type,
		&c.BVerdict,
		&c.ScoreC,
		&c.CSection1Orientation,
		&c.CSection1Evidence,
		&c.CSection2Orientation,
		&c.CSection2Evidence,
		&c.CSection3Orientation,
		&c.CSection3Evidence,
		&c.CSection4Orientation,
		&c.CSection4Evidence,
		&c.CVerdict,
		&c.ScoreD,
		&c.DChanges,
		&c.DVerdict,
		&c.ScoreE,
		&c.EAudienceBefore,
		&c.EAudienceToday,
		&c.EVerdict,
		&c.ScoreF,
		&c.FProducts,
		&c.FDescription,
		&c.FVerdict,
		&r.CreatedAt, &r.UpdatedAt,
	}
}

// assignSet builds "col1 = $n, col2 = $n+1, ..." for postgres-style
// placeholders, starting at first.
func assignSet(cols []string, first int) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = fmt.Sprintf("%s = $%d", col, first+i)
	}
	return strings.Join(parts, ", ")
}

// assignSetQ builds "col1 = ?, col2 = ?, ..." for sqlite placeholders.
func assignSetQ(cols []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = col + " = ?"
	}
	return strings.Join(parts, ", ")
}

// intRunColumns are the run columns holding factor scores rather than text.
var intRunColumns = map[string]bool{
	"total_score": true,
	"score_a":     true,
	"score_b":     true,
	"score_c":     true,
	"score_d":     true,
	"score_e":     true,
	"score_f":     true,
}

// runColumnDDL renders the flat run columns for the migration, TEXT columns
// defaulting to ” and score columns to 0 so scans never see NULL.
func runColumnDDL() string {
	var b strings.Builder
	for _, col := range researchColumns {
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL DEFAULT '',\n", col)
	}
	for _, col := range scoringColumns {
		if intRunColumns[col] {
			fmt.Fprintf(&b, "\t%s INTEGER NOT NULL DEFAULT 0,\n", col)
			continue
		}
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL DEFAULT '',\n", col)
	}
	return strings.TrimSuffix(b.String(), ",\n")
}
