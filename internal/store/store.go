// Package store persists companies, research runs, training examples, and
// outreach records. Two implementations exist: PostgresStore for shared
// deployments and SQLiteStore for single-operator local use.
package store

import (
	"context"

	"github.com/sells-group/icp-screener/internal/model"
)

// CompanyFilter specifies criteria for listing companies.
type CompanyFilter struct {
	Statuses []model.CompanyStatus `json:"statuses,omitempty"`
	Domain   string                `json:"domain,omitempty"`
	Limit    int                   `json:"limit,omitempty"`
	Offset   int                   `json:"offset,omitempty"`
}

// RunFilter specifies criteria for listing research runs.
type RunFilter struct {
	CompanyID string          `json:"company_id,omitempty"`
	Status    model.RunStatus `json:"status,omitempty"`
	Limit     int             `json:"limit,omitempty"`
}

// ContactFilter specifies criteria for listing contacts.
type ContactFilter struct {
	CompanyID string `json:"company_id,omitempty"`
	Domain    string `json:"domain,omitempty"`
	HasEmail  bool   `json:"has_email,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// ResearchUpdate carries the output of the research phase. Persisting it
// moves the run to status "scoring", so a crash between phases leaves a
// resumable record of what was gathered.
type ResearchUpdate struct {
	ResearchRaw string
	Fields      model.ResearchFields
}

// ScoreUpdate carries the output of the scoring phase. Persisting it moves
// the run to status "complete".
type ScoreUpdate struct {
	ScoringRaw             string
	TotalScore             int
	ICPFit                 string
	ScoreSummary           string
	DisqualificationReason string
	Columns                model.ScoreColumns
}

// CompanyWithRun pairs a company with its most recent research run, if any.
type CompanyWithRun struct {
	Company model.Company      `json:"company"`
	Run     *model.ResearchRun `json:"run,omitempty"`
}

// Store defines the persistence interface for the screening pipeline.
type Store interface {
	// Companies. UpsertCompany inserts by domain or refreshes name and
	// website on an existing row; it never touches status, step, or
	// manually-set fields, so re-importing a screened company is a no-op.
	UpsertCompany(ctx context.Context, domain, name, website string) (*model.Company, error)
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	GetCompanyByDomain(ctx context.Context, domain string) (*model.Company, error)
	ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error)
	ListCompanyDomains(ctx context.Context) ([]string, error)
	UpdateCompanyProgress(ctx context.Context, id string, status model.CompanyStatus, step string) error
	SetCompanyError(ctx context.Context, id, message string) error
	MarkCompanyScreened(ctx context.Context, id string) error
	SetManualScore(ctx context.Context, id, score string) error
	SetAccountStatus(ctx context.Context, id, accountStatus string) error
	DeleteCompany(ctx context.Context, id string) error

	// Runs. A run is written in two phases: research first, score second.
	CreateRun(ctx context.Context, companyID string) (*model.ResearchRun, error)
	SaveResearch(ctx context.Context, runID string, update ResearchUpdate) error
	SaveScore(ctx context.Context, runID string, update ScoreUpdate) error
	SetRunError(ctx context.Context, runID, message string) error
	GetRun(ctx context.Context, runID string) (*model.ResearchRun, error)
	LatestRun(ctx context.Context, companyID string) (*model.ResearchRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ResearchRun, error)

	// Training examples, keyed by (domain, factor).
	UpsertTrainingExample(ctx context.Context, ex model.TrainingExample) error
	ListTrainingExamples(ctx context.Context) ([]model.TrainingExample, error)
	DeleteTrainingExample(ctx context.Context, id string) error

	// Contacts, keyed by LinkedIn URL.
	UpsertContact(ctx context.Context, c model.Contact) (*model.Contact, error)
	BulkUpsertContacts(ctx context.Context, contacts []model.Contact) (int64, error)
	ListContacts(ctx context.Context, filter ContactFilter) ([]model.Contact, error)

	// Campaigns
	CreateCampaign(ctx context.Context, name string) (*model.Campaign, error)
	ListCampaigns(ctx context.Context) ([]model.Campaign, error)
	AddContactsToCampaign(ctx context.Context, campaignID string, contactIDs []string) error
	ListCampaignContacts(ctx context.Context, campaignID string) ([]model.Contact, error)
	SaveCampaignMessage(ctx context.Context, msg model.CampaignMessage) (*model.CampaignMessage, error)
	ListCampaignMessages(ctx context.Context, campaignID string) ([]model.CampaignMessage, error)

	// Saved discovery filter presets, keyed by name.
	SaveFilter(ctx context.Context, name, mode, filters string) (*model.SavedFilter, error)
	ListSavedFilters(ctx context.Context) ([]model.SavedFilter, error)
	DeleteSavedFilter(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// CompaniesWithLatestRun joins each listed company to its most recent run.
// It is a display helper, not a hot path.
func CompaniesWithLatestRun(ctx context.Context, s Store, filter CompanyFilter) ([]CompanyWithRun, error) {
	companies, err := s.ListCompanies(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]CompanyWithRun, 0, len(companies))
	for _, c := range companies {
		run, err := s.LatestRun(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, CompanyWithRun{Company: c, Run: run})
	}
	return out, nil
}
