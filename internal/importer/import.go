// Package importer moves companies in and out of the store as CSV: bulk
// queue loading from prospect lists and screening-result export.
package importer

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/store"
)

// Row is one parsed company row from an import file.
type Row struct {
	Name        string
	Website     string
	Domain      string
	ManualScore string
}

// Result summarizes an import.
type Result struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Total    int `json:"total"`
}

// Importer loads company CSVs into the screening queue.
type Importer struct {
	store store.Store
}

// New creates an Importer.
func New(st store.Store) *Importer {
	return &Importer{store: st}
}

// Import parses the CSV and upserts each company as a pending queue entry.
// Already-screened companies are skipped entirely, so re-importing the same
// file never disturbs finished work. A manual score column, when present,
// is applied to newly imported rows.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return Result{}, err
	}

	result := Result{Total: len(rows)}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, eris.Wrap(err, "importer: cancelled")
		}

		existing, err := im.store.GetCompanyByDomain(ctx, row.Domain)
		if err != nil {
			return result, eris.Wrapf(err, "importer: check %s", row.Domain)
		}
		if existing != nil && existing.Status == model.CompanyStatusComplete {
			result.Skipped++
			continue
		}

		company, err := im.store.UpsertCompany(ctx, row.Domain, row.Name, row.Website)
		if err != nil {
			return result, eris.Wrapf(err, "importer: upsert %s", row.Domain)
		}
		if row.ManualScore != "" {
			if err := im.store.SetManualScore(ctx, company.ID, row.ManualScore); err != nil {
				return result, eris.Wrapf(err, "importer: manual score %s", row.Domain)
			}
		}
		result.Imported++
	}

	zap.L().Info("import complete",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
		zap.Int("total", result.Total),
	)
	return result, nil
}

// ParseCSV reads company rows from a prospect CSV. The header row is
// matched loosely: any column containing "website", "url", "homepage", or
// "domain" supplies the website, and a missing company-name column falls
// back to deriving a name from the domain.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "importer: read header")
	}

	nameIdx, websiteIdx, scoreIdx := headerIndexes(header)
	if websiteIdx == -1 {
		return nil, eris.New("importer: csv must have a website/url column")
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "importer: read row")
		}

		website := field(record, websiteIdx)
		if website == "" {
			continue
		}
		domain := model.NormalizeDomain(website)
		if domain == "" {
			continue
		}

		name := field(record, nameIdx)
		if name == "" {
			name = NameFromDomain(domain)
		}

		rows = append(rows, Row{
			Name:        name,
			Website:     model.CanonicalURL(website),
			Domain:      domain,
			ManualScore: field(record, scoreIdx),
		})
	}
	return rows, nil
}

func headerIndexes(header []string) (nameIdx, websiteIdx, scoreIdx int) {
	nameIdx, websiteIdx, scoreIdx = -1, -1, -1
	for i, h := range header {
		col := strings.ToLower(strings.TrimSpace(h))
		switch {
		case nameIdx == -1 && (col == "company" || col == "company name" || col == "company_name" || col == "name"):
			nameIdx = i
		case websiteIdx == -1 && (strings.Contains(col, "website") || strings.Contains(col, "url") ||
			strings.Contains(col, "homepage") || strings.Contains(col, "domain")):
			websiteIdx = i
		case scoreIdx == -1 && (col == "manual score" || col == "manual_score" || col == "my score" || col == "my_score"):
			scoreIdx = i
		}
	}
	return nameIdx, websiteIdx, scoreIdx
}

// NameFromDomain derives a display name from the first label of a domain:
// "acme-health.io" becomes "Acme-Health".
func NameFromDomain(domain string) string {
	label, _, _ := strings.Cut(domain, ".")
	if label == "" {
		return domain
	}
	return cases.Title(language.English).String(label)
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
