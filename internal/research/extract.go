package research

import (
	"regexp"
	"strings"

	"github.com/sells-group/icp-screener/internal/model"
)

// ExtractField pulls the value of a labeled field out of a synthesis report.
// A field runs from "LABEL:" to the next ALL_CAPS label on its own line, or
// to the end of the text. Matching is case-insensitive; a missing label
// yields "".
func ExtractField(text, label string) string {
	pattern := regexp.MustCompile(`(?is)` + regexp.QuoteMeta(label) + `:\s*(.*?)(?:\n[A-Z_]+:|\z)`)
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractResearchFields decomposes a synthesis report into its named fields.
func ExtractResearchFields(text string) model.ResearchFields {
	return model.ResearchFields{
		ProductSummary:         ExtractField(text, "PRODUCT_SUMMARY"),
		TargetCustomer:         ExtractField(text, "TARGET_CUSTOMER"),
		TargetDecisionMaker:    ExtractField(text, "TARGET_DECISION_MAKER"),
		Top3Outcomes:           ExtractField(text, "TOP_3_OUTCOMES"),
		Top3Differentiators:    ExtractField(text, "TOP_3_DIFFERENTIATORS"),
		MajorAnnouncements:     ExtractField(text, "MAJOR_ANNOUNCEMENTS"),
		Competitors:            ExtractField(text, "COMPETITORS"),
		Customers:              ExtractField(text, "COMPANY_CUSTOMERS"),
		Funding:                ExtractField(text, "COMPANY_FUNDING"),
		TeamSize:               ExtractField(text, "COMPANY_TEAM_SIZE"),
		HomepageSections:       ExtractField(text, "HOMEPAGE_SECTIONS"),
		HomepageNav:            ExtractField(text, "HOMEPAGE_NAVIGATION"),
		ProductPages:           ExtractField(text, "PRODUCT_PAGES"),
		NewDirectionPage:       ExtractField(text, "NEW_DIRECTION_PAGE"),
		LinkedInDescription:    ExtractField(text, "LINKEDIN_COMPANY_DESCRIPTION"),
		CEOFounderName:         ExtractField(text, "CEO_FOUNDER_NAME"),
		CEORecentContent:       ExtractField(text, "CEO_RECENT_CONTENT"),
		CEONarrativeTheme:      ExtractField(text, "CEO_NARRATIVE_THEME"),
		NewMarketingLeader:     ExtractField(text, "NEW_MARKETING_LEADER"),
		ProductMarketingPeople: ExtractField(text, "PRODUCT_MARKETING_PEOPLE"),
	}
}
