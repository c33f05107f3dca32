package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "screener.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestParseCSV_HeaderVariants(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"standard", "Company Name,Website\nAcme,https://acme.io\n"},
		{"lowercase underscore", "company_name,url\nAcme,https://acme.io\n"},
		{"homepage column", "Name,Homepage\nAcme,https://acme.io\n"},
		{"domain column", "company,Domain\nAcme,acme.io\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseCSV(strings.NewReader(tt.csv))
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Acme", rows[0].Name)
			assert.Equal(t, "acme.io", rows[0].Domain)
			assert.Equal(t, "https://acme.io", rows[0].Website)
		})
	}
}

func TestParseCSV_MissingWebsiteColumn(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Company,Industry\nAcme,SaaS\n"))
	assert.Error(t, err)
}

func TestParseCSV_QuotedFieldsAndBlanks(t *testing.T) {
	data := "Company,Website,Manual Score\n" +
		"\"Acme, Inc.\",https://acme.io,Strong\n" +
		"\n" +
		"NoSite,,\n" +
		"Globex,globex.com,\n"
	rows, err := ParseCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme, Inc.", rows[0].Name)
	assert.Equal(t, "Strong", rows[0].ManualScore)
	assert.Equal(t, "globex.com", rows[1].Domain)
	assert.Equal(t, "https://globex.com", rows[1].Website)
}

func TestParseCSV_DerivesNameFromDomain(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("Website\nhttps://www.vitalize.care/about\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "vitalize.care", rows[0].Domain)
	assert.Equal(t, "Vitalize", rows[0].Name)
}

func TestNameFromDomain(t *testing.T) {
	assert.Equal(t, "Acme", NameFromDomain("acme.io"))
	assert.Equal(t, "Acme-Health", NameFromDomain("acme-health.io"))
}

func TestImport_SkipsScreenedCompanies(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	screened, err := st.UpsertCompany(ctx, "acme.io", "Acme", "https://acme.io")
	require.NoError(t, err)
	require.NoError(t, st.MarkCompanyScreened(ctx, screened.ID))

	im := New(st)
	data := "Company,Website,Manual Score\n" +
		"Acme Renamed,https://acme.io,Weak\n" +
		"Globex,https://globex.com,Strong\n"
	result, err := im.Import(ctx, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 2, result.Total)

	// The screened row kept its name and status.
	got, err := st.GetCompanyByDomain(ctx, "acme.io")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, model.CompanyStatusComplete, got.Status)
	assert.Empty(t, got.ManualScore)

	added, err := st.GetCompanyByDomain(ctx, "globex.com")
	require.NoError(t, err)
	require.NotNil(t, added)
	assert.Equal(t, model.CompanyStatusPending, added.Status)
	assert.Equal(t, "Strong", added.ManualScore)
}

func TestImport_Reimport(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	im := New(st)
	data := "Company,Website\nAcme,https://acme.io\n"

	first, err := im.Import(ctx, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Imported)

	// Pending rows re-import harmlessly.
	second, err := im.Import(ctx, strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Imported)
	assert.Zero(t, second.Skipped)

	companies, err := st.ListCompanies(ctx, store.CompanyFilter{})
	require.NoError(t, err)
	assert.Len(t, companies, 1)
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	company, err := st.UpsertCompany(ctx, "acme.io", "Acme", "https://acme.io")
	require.NoError(t, err)
	run, err := st.CreateRun(ctx, company.ID)
	require.NoError(t, err)
	require.NoError(t, st.SaveResearch(ctx, run.ID, store.ResearchUpdate{ResearchRaw: "r"}))
	require.NoError(t, st.SaveScore(ctx, run.ID, store.ScoreUpdate{
		TotalScore:             14,
		ICPFit:                 model.FitStrong,
		ScoreSummary:           "Strong fit.",
		DisqualificationReason: "None",
		Columns: model.ScoreColumns{
			ScoreA: 3, AVerdict: "Clear differentiation",
			ScoreB: 2, ScoreC: 3, ScoreD: 2, ScoreE: 2, ScoreF: 2,
		},
	}))
	require.NoError(t, st.MarkCompanyScreened(ctx, company.ID))

	// A second company with no run exports zeros.
	_, err = st.UpsertCompany(ctx, "globex.com", "Globex", "https://globex.com")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(ctx, st, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Company Name,Website,Total Score,ICP Fit"))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	byName := map[string][]string{}
	for _, r := range records[1:] {
		byName[r[0]] = r
	}
	acme := byName["Acme"]
	require.NotNil(t, acme)
	assert.Equal(t, "14", acme[2])
	assert.Equal(t, "Strong", acme[3])
	assert.Equal(t, "3", acme[4])
	assert.Equal(t, "Clear differentiation", acme[5])
	assert.Equal(t, "complete", acme[19])

	globex := byName["Globex"]
	require.NotNil(t, globex)
	assert.Equal(t, "0", globex[2])
	assert.Equal(t, "pending", globex[19])
}
