package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractField(t *testing.T) {
	report := `PRODUCT_SUMMARY: A scheduling platform for clinics.
It reduces no-shows.

TARGET_CUSTOMER: Mid-market healthcare providers in the US.
COMPANY_TEAM_SIZE: ~120 employees
CEO_NARRATIVE_THEME: AI-first scheduling is the future.`

	tests := []struct {
		name  string
		label string
		want  string
	}{
		{
			name:  "multiline value stops at next label",
			label: "PRODUCT_SUMMARY",
			want:  "A scheduling platform for clinics.\nIt reduces no-shows.",
		},
		{
			name:  "single line value",
			label: "TARGET_CUSTOMER",
			want:  "Mid-market healthcare providers in the US.",
		},
		{
			name:  "last field runs to end of text",
			label: "CEO_NARRATIVE_THEME",
			want:  "AI-first scheduling is the future.",
		},
		{
			name:  "case insensitive label",
			label: "company_team_size",
			want:  "~120 employees",
		},
		{
			name:  "missing label",
			label: "COMPETITORS",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractField(report, tt.label))
		})
	}
}

func TestExtractField_InlineCapsDoNotTerminate(t *testing.T) {
	// ALL_CAPS tokens mid-line are part of the value; only a label at the
	// start of a line ends it.
	report := "TOP_3_OUTCOMES: Reduce ROI leakage by 40% via SSO integration.\nCOMPETITORS: Calendly"
	assert.Equal(t, "Reduce ROI leakage by 40% via SSO integration.", ExtractField(report, "TOP_3_OUTCOMES"))
}

func TestExtractResearchFields(t *testing.T) {
	report := `PRODUCT_SUMMARY: Appointment scheduling for clinics.
TARGET_CUSTOMER: Mid-market healthcare.
TARGET_DECISION_MAKER: VP of Operations.
TOP_3_OUTCOMES: Reduce no-shows by 75%.
TOP_3_DIFFERENTIATORS: EHR-native integration.
MAJOR_ANNOUNCEMENTS: Acquired RemindCo (2025-03).
COMPETITORS: Calendly - lacks EHR integration.
COMPANY_CUSTOMERS: Mayo Clinic, Oak Street Health.
COMPANY_FUNDING: Series B, $40M, 2024, Insight Partners.
COMPANY_TEAM_SIZE: ~120
HOMEPAGE_SECTIONS: SECTION 1 (Hero): Never miss an appointment.
HOMEPAGE_NAVIGATION: Product, Pricing, About.
PRODUCT_PAGES: Single product - no separate product pages.
NEW_DIRECTION_PAGE: N/A.
LINKEDIN_COMPANY_DESCRIPTION: We build scheduling software.
CEO_FOUNDER_NAME: Jordan Reyes, CEO.
CEO_RECENT_CONTENT: None found.
CEO_NARRATIVE_THEME: Scheduling as the clinic front door.
NEW_MARKETING_LEADER: None found.
PRODUCT_MARKETING_PEOPLE: None found.`

	fields := ExtractResearchFields(report)
	assert.Equal(t, "Appointment scheduling for clinics.", fields.ProductSummary)
	assert.Equal(t, "VP of Operations.", fields.TargetDecisionMaker)
	assert.Equal(t, "Acquired RemindCo (2025-03).", fields.MajorAnnouncements)
	assert.Equal(t, "SECTION 1 (Hero): Never miss an appointment.", fields.HomepageSections)
	assert.Equal(t, "Jordan Reyes, CEO.", fields.CEOFounderName)
	assert.Equal(t, "None found.", fields.ProductMarketingPeople)
}
