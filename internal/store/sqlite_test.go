package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/icp-screener/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "screener.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_UpsertCompanyIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.UpsertCompany(ctx, "acme.io", "Acme", "https://acme.io")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, model.CompanyStatusPending, c.Status)

	// Simulate a completed screen plus a manual review.
	require.NoError(t, s.MarkCompanyScreened(ctx, c.ID))
	require.NoError(t, s.SetManualScore(ctx, c.ID, "Strong"))

	// Re-importing the same domain refreshes name and website but must not
	// reset status or manual fields.
	again, err := s.UpsertCompany(ctx, "acme.io", "Acme Health", "https://www.acme.io")
	require.NoError(t, err)
	assert.Equal(t, c.ID, again.ID)
	assert.Equal(t, "Acme Health", again.Name)
	assert.Equal(t, "https://www.acme.io", again.Website)
	assert.Equal(t, model.CompanyStatusComplete, again.Status)
	assert.Equal(t, "Strong", again.ManualScore)
	assert.NotNil(t, again.LastScreened)
}

func TestSQLite_RunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.UpsertCompany(ctx, "acme.io", "Acme", "https://acme.io")
	require.NoError(t, err)

	run, err := s.CreateRun(ctx, c.ID)
	require.NoError(t, err)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, model.RunStatusPending, got.Status)

	// Phase one: research persisted, run moves to scoring.
	err = s.SaveResearch(ctx, run.ID, ResearchUpdate{
		ResearchRaw: "PRODUCT_SUMMARY: Scheduling for clinics",
		Fields: model.ResearchFields{
			ProductSummary:   "Scheduling for clinics",
			TargetCustomer:   "Clinic operations leads",
			CEOFounderName:   "Dana Reyes",
			HomepageSections: "Hero; Customers; Product; CTA",
		},
	})
	require.NoError(t, err)

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusScoring, got.Status)
	assert.Equal(t, "PRODUCT_SUMMARY: Scheduling for clinics", got.ResearchRaw)
	assert.Equal(t, "Scheduling for clinics", got.Research.ProductSummary)
	assert.Equal(t, "Dana Reyes", got.Research.CEOFounderName)

	// Phase two: score persisted, run completes.
	err = s.SaveScore(ctx, run.ID, ScoreUpdate{
		ScoringRaw:             `{"total_score": 14}`,
		TotalScore:             14,
		ICPFit:                 "Strong",
		ScoreSummary:           "Clear gap between homepage and product reality.",
		DisqualificationReason: "None",
		Columns: model.ScoreColumns{
			HomepageSection1Name: "Hero",
			ScoreA:               3,
			AVerdict:             "Generic messaging, real differentiators buried",
			ScoreB:               2,
			BStrategicOutcomes:   "Reduce no-shows; Grow clinic revenue",
			ScoreD:               2,
			DChanges:             "Rebrand (Q1 2025): AcmeSched → Acme Health",
			ScoreF:               1,
		},
	})
	require.NoError(t, err)

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, 14, got.TotalScore)
	assert.Equal(t, "Strong", got.ICPFit)
	assert.Equal(t, "None", got.DisqualificationReason)
	assert.Equal(t, "Hero", got.Score.HomepageSection1Name)
	assert.Equal(t, 3, got.Score.ScoreA)
	assert.Equal(t, "Reduce no-shows; Grow clinic revenue", got.Score.BStrategicOutcomes)
	assert.Equal(t, "Rebrand (Q1 2025): AcmeSched → Acme Health", got.Score.DChanges)
	// Research fields survive the scoring update.
	assert.Equal(t, "Scheduling for clinics", got.Research.ProductSummary)
}

func TestSQLite_SetRunError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.UpsertCompany(ctx, "acme.io", "Acme", "https://acme.io")
	require.NoError(t, err)
	run, err := s.CreateRun(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, s.SetRunError(ctx, run.ID, "anthropic: overloaded"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusError, got.Status)
	assert.Equal(t, "anthropic: overloaded", got.Error)

	err = s.SetRunError(ctx, "missing", "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found: missing")
}

func TestSQLite_LatestRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.UpsertCompany(ctx, "acme.io", "Acme", "https://acme.io")
	require.NoError(t, err)

	first, err := s.CreateRun(ctx, c.ID)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := s.CreateRun(ctx, c.ID)
	require.NoError(t, err)

	latest, err := s.LatestRun(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
	assert.NotEqual(t, first.ID, latest.ID)

	none, err := s.LatestRun(ctx, "no-such-company")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSQLite_ListCompaniesByStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.UpsertCompany(ctx, "a.io", "A", "https://a.io")
	require.NoError(t, err)
	b, err := s.UpsertCompany(ctx, "b.io", "B", "https://b.io")
	require.NoError(t, err)
	done, err := s.UpsertCompany(ctx, "c.io", "C", "https://c.io")
	require.NoError(t, err)

	require.NoError(t, s.SetCompanyError(ctx, b.ID, "exa: unexpected status 500"))
	require.NoError(t, s.MarkCompanyScreened(ctx, done.ID))

	// Pending and errored companies are the screenable backlog.
	backlog, err := s.ListCompanies(ctx, CompanyFilter{
		Statuses: []model.CompanyStatus{model.CompanyStatusPending, model.CompanyStatusError},
	})
	require.NoError(t, err)
	require.Len(t, backlog, 2)
	ids := []string{backlog[0].ID, backlog[1].ID}
	assert.Contains(t, ids, a.ID)
	assert.Contains(t, ids, b.ID)

	domains, err := s.ListCompanyDomains(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.io", "b.io", "c.io"}, domains)
}

func TestSQLite_TrainingExampleUpsertReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ex := model.TrainingExample{
		Domain:        "acme.io",
		Factor:        "B",
		CompanyName:   "Acme",
		Score:         1,
		Justification: "Feature-led homepage",
	}
	require.NoError(t, s.UpsertTrainingExample(ctx, ex))

	ex.Score = 2
	ex.Justification = "Partially outcome-led after rebrand"
	require.NoError(t, s.UpsertTrainingExample(ctx, ex))

	other := ex
	other.Factor = "D"
	require.NoError(t, s.UpsertTrainingExample(ctx, other))

	examples, err := s.ListTrainingExamples(ctx)
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, 2, examples[0].Score)
	assert.Equal(t, "Partially outcome-led after rebrand", examples[0].Justification)

	require.NoError(t, s.DeleteTrainingExample(ctx, examples[0].ID))
	examples, err = s.ListTrainingExamples(ctx)
	require.NoError(t, err)
	assert.Len(t, examples, 1)
}

func TestSQLite_ContactUpsertKeepsEnrichedEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.UpsertCompany(ctx, "acme.io", "Acme", "https://acme.io")
	require.NoError(t, err)

	enrichedAt := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	contact := model.Contact{
		CompanyID:      c.ID,
		Name:           "Sam Ortiz",
		Title:          "VP Marketing",
		LinkedIn:       "https://linkedin.com/in/samortiz",
		BusinessEmail:  "sam@acme.io",
		EmailVerified:  true,
		CompanyDomain:  "acme.io",
		LastEnrichedAt: &enrichedAt,
	}
	saved, err := s.UpsertContact(ctx, contact)
	require.NoError(t, err)
	assert.Equal(t, "sam@acme.io", saved.BusinessEmail)

	// A later discovery pass without an email must not blank it out.
	rediscovered := model.Contact{
		CompanyID:     c.ID,
		Name:          "Sam Ortiz",
		Title:         "SVP Marketing",
		LinkedIn:      "https://linkedin.com/in/samortiz",
		CompanyDomain: "acme.io",
	}
	updated, err := s.UpsertContact(ctx, rediscovered)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "SVP Marketing", updated.Title)
	assert.Equal(t, "sam@acme.io", updated.BusinessEmail)
	assert.True(t, updated.EmailVerified)
	require.NotNil(t, updated.LastEnrichedAt)
}

func TestSQLite_BulkUpsertContacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.UpsertCompany(ctx, "acme.io", "Acme", "https://acme.io")
	require.NoError(t, err)

	n, err := s.BulkUpsertContacts(ctx, []model.Contact{
		{CompanyID: c.ID, Name: "Sam Ortiz", LinkedIn: "https://linkedin.com/in/samortiz", CompanyDomain: "acme.io"},
		{CompanyID: c.ID, Name: "Lee Park", LinkedIn: "https://linkedin.com/in/leepark", CompanyDomain: "acme.io"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// Re-running the same batch upserts in place.
	n, err = s.BulkUpsertContacts(ctx, []model.Contact{
		{CompanyID: c.ID, Name: "Sam Ortiz", Title: "VP Marketing", LinkedIn: "https://linkedin.com/in/samortiz", CompanyDomain: "acme.io"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	contacts, err := s.ListContacts(ctx, ContactFilter{CompanyID: c.ID})
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestSQLite_CampaignFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.UpsertCompany(ctx, "acme.io", "Acme", "https://acme.io")
	require.NoError(t, err)
	ct1, err := s.UpsertContact(ctx, model.Contact{CompanyID: c.ID, Name: "Sam", LinkedIn: "https://linkedin.com/in/sam", CompanyDomain: "acme.io"})
	require.NoError(t, err)
	ct2, err := s.UpsertContact(ctx, model.Contact{CompanyID: c.ID, Name: "Lee", LinkedIn: "https://linkedin.com/in/lee", CompanyDomain: "acme.io"})
	require.NoError(t, err)

	camp, err := s.CreateCampaign(ctx, "Q3 outbound")
	require.NoError(t, err)

	require.NoError(t, s.AddContactsToCampaign(ctx, camp.ID, []string{ct1.ID, ct2.ID}))
	// Adding again is a no-op, not an error.
	require.NoError(t, s.AddContactsToCampaign(ctx, camp.ID, []string{ct1.ID}))

	members, err := s.ListCampaignContacts(ctx, camp.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
	for _, m := range members {
		assert.NotNil(t, m.LastCampaignAdded)
	}

	step2, err := s.SaveCampaignMessage(ctx, model.CampaignMessage{CampaignID: camp.ID, StepNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, "email", step2.Channel)
	step1, err := s.SaveCampaignMessage(ctx, model.CampaignMessage{CampaignID: camp.ID, StepNumber: 1})
	require.NoError(t, err)

	step1.Subject = "Quick question about your rebrand"
	step1.Body = "Hi there"
	_, err = s.SaveCampaignMessage(ctx, *step1)
	require.NoError(t, err)

	msgs, err := s.ListCampaignMessages(ctx, camp.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, 1, msgs[0].StepNumber)
	assert.Equal(t, "Quick question about your rebrand", msgs[0].Subject)
	assert.Equal(t, 2, msgs[1].StepNumber)

	campaigns, err := s.ListCampaigns(ctx)
	require.NoError(t, err)
	assert.Len(t, campaigns, 1)
}

func TestSQLite_SavedFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f, err := s.SaveFilter(ctx, "healthtech 50-200", "indb", `[{"column":"region","type":"in","value":["United States"]}]`)
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)

	// Saving the same name replaces the preset in place.
	f2, err := s.SaveFilter(ctx, "healthtech 50-200", "linkedin", `[]`)
	require.NoError(t, err)
	assert.Equal(t, f.ID, f2.ID)
	assert.Equal(t, "linkedin", f2.Mode)
	assert.Equal(t, `[]`, f2.Filters)

	filters, err := s.ListSavedFilters(ctx)
	require.NoError(t, err)
	require.Len(t, filters, 1)

	require.NoError(t, s.DeleteSavedFilter(ctx, f.ID))
	filters, err = s.ListSavedFilters(ctx)
	require.NoError(t, err)
	assert.Empty(t, filters)
}

func TestSQLite_DeleteCompanyCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.UpsertCompany(ctx, "acme.io", "Acme", "https://acme.io")
	require.NoError(t, err)
	run, err := s.CreateRun(ctx, c.ID)
	require.NoError(t, err)
	_, err = s.UpsertContact(ctx, model.Contact{CompanyID: c.ID, Name: "Sam", LinkedIn: "https://linkedin.com/in/sam", CompanyDomain: "acme.io"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCompany(ctx, c.ID))

	gone, err := s.GetCompanyByDomain(ctx, "acme.io")
	require.NoError(t, err)
	assert.Nil(t, gone)

	r, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Nil(t, r)

	contacts, err := s.ListContacts(ctx, ContactFilter{Domain: "acme.io"})
	require.NoError(t, err)
	assert.Empty(t, contacts)
}
