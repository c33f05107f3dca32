package discovery

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/store"
	"github.com/sells-group/icp-screener/pkg/crustdata"
)

// ErrNoAccounts is returned when a contact search has no account scope.
var ErrNoAccounts = eris.New("discovery: select at least one account to search contacts for")

// ContactPage is one page of person search results.
type ContactPage struct {
	Contacts   []model.Contact `json:"contacts"`
	NextCursor string          `json:"next_cursor,omitempty"`
	Total      int             `json:"total"`
}

// EnrichOutcome summarizes a bulk email enrichment.
type EnrichOutcome struct {
	Enriched int `json:"enriched"`
	Queued   int `json:"queued"`
	NoEmail  int `json:"no_email"`
	Failed   int `json:"failed"`
}

// ContactFinder searches the person database and enriches business emails.
type ContactFinder struct {
	crust crustdata.Client
	store store.Store
}

// NewContactFinder creates a ContactFinder.
func NewContactFinder(c crustdata.Client, st store.Store) *ContactFinder {
	return &ContactFinder{crust: c, store: st}
}

// Search runs a person database search scoped to the query's accounts.
func (f *ContactFinder) Search(ctx context.Context, q PeopleQuery, limit int, cursor string) (*ContactPage, error) {
	filters := BuildPeopleFilters(q)
	if filters == nil {
		return nil, ErrNoAccounts
	}

	resp, err := f.crust.PeopleSearch(ctx, crustdata.PeopleSearchRequest{
		Filters: filters,
		Limit:   limit,
		Cursor:  cursor,
	})
	if err != nil {
		return nil, eris.Wrap(err, "discovery: people search")
	}

	contacts := make([]model.Contact, 0, len(resp.Profiles))
	for _, p := range resp.Profiles {
		contacts = append(contacts, ContactFromProfile(p))
	}

	zap.L().Info("contact search",
		zap.Strings("domains", q.Domains),
		zap.Int("results", len(contacts)),
		zap.Int("total", resp.TotalCount),
	)
	return &ContactPage{Contacts: contacts, NextCursor: resp.NextCursor, Total: resp.TotalCount}, nil
}

// ContactFromProfile maps a person row to a contact using the first current
// employer for title, seniority, and company fields.
func ContactFromProfile(p crustdata.PersonProfile) model.Contact {
	var job crustdata.Employer
	if len(p.CurrentEmployers) > 0 {
		job = p.CurrentEmployers[0]
	}
	return model.Contact{
		Name:              p.Name,
		Headline:          p.Headline,
		Title:             job.Title,
		CompanyDomain:     cleanDomain(job.CompanyWebsiteDomain),
		Seniority:         job.SeniorityLevel,
		FunctionCategory:  job.FunctionCategory,
		LinkedIn:          p.LinkedInProfileURL,
		Region:            p.Region,
		YearsExperience:   p.YearsOfExperienceRaw,
		EmailVerified:     job.BusinessEmailVerified,
		RecentJobChange:   p.RecentlyChangedJobs,
		CrustdataPersonID: p.PersonID,
	}
}

// AddAndEnrich stores the selected contacts, then enriches business emails
// for those that still lack one. Contacts without a LinkedIn URL or whose
// company is not in the store are skipped; the provider client paces the
// enrichment calls.
func (f *ContactFinder) AddAndEnrich(ctx context.Context, contacts []model.Contact) (int64, EnrichOutcome, error) {
	var outcome EnrichOutcome

	keep := make([]model.Contact, 0, len(contacts))
	linkedins := make(map[string]struct{}, len(contacts))
	for _, c := range contacts {
		if c.LinkedIn == "" || c.CompanyDomain == "" {
			continue
		}
		company, err := f.store.GetCompanyByDomain(ctx, c.CompanyDomain)
		if err != nil {
			return 0, outcome, eris.Wrapf(err, "discovery: resolve company %s", c.CompanyDomain)
		}
		if company == nil {
			continue
		}
		c.CompanyID = company.ID
		keep = append(keep, c)
		linkedins[c.LinkedIn] = struct{}{}
	}
	if len(keep) == 0 {
		return 0, outcome, nil
	}

	added, err := f.store.BulkUpsertContacts(ctx, keep)
	if err != nil {
		return 0, outcome, eris.Wrap(err, "discovery: store contacts")
	}
	zap.L().Info("contacts stored", zap.Int64("rows", added))

	// Re-read through the store so previously enriched rows are skipped.
	for _, c := range keep {
		stored, err := f.store.ListContacts(ctx, store.ContactFilter{Domain: c.CompanyDomain})
		if err != nil {
			return added, outcome, eris.Wrapf(err, "discovery: list contacts %s", c.CompanyDomain)
		}
		for _, sc := range stored {
			if _, ok := linkedins[sc.LinkedIn]; !ok || sc.BusinessEmail != "" {
				continue
			}
			delete(linkedins, sc.LinkedIn)
			email, err := f.EnrichContact(ctx, sc)
			switch {
			case eris.Is(err, crustdata.ErrProfileQueued):
				outcome.Queued++
			case err != nil:
				outcome.Failed++
				zap.L().Warn("enrichment failed",
					zap.String("contact", sc.Name), zap.Error(err))
			case email == "":
				outcome.NoEmail++
			default:
				outcome.Enriched++
			}
		}
	}

	zap.L().Info("enrichment complete",
		zap.Int("enriched", outcome.Enriched),
		zap.Int("queued", outcome.Queued),
		zap.Int("no_email", outcome.NoEmail),
		zap.Int("failed", outcome.Failed),
	)
	return added, outcome, nil
}

// EnrichContact fetches the contact's business email (2 credits for the
// email-only field set; realtime fallback when the profile is not in the
// provider database yet) and persists it. An empty email with a nil error
// means the provider had no address for this person.
func (f *ContactFinder) EnrichContact(ctx context.Context, c model.Contact) (string, error) {
	if c.LinkedIn == "" {
		return "", eris.Errorf("discovery: contact %s has no linkedin url", c.Name)
	}

	profile, err := f.crust.PersonEnrich(ctx, crustdata.PersonEnrichRequest{
		LinkedInProfileURL: c.LinkedIn,
		Fields:             "business_email",
		EnrichRealtime:     true,
	})
	if err != nil {
		return "", err
	}

	email := profile.BestEmail()
	if email == "" {
		zap.L().Info("no email found", zap.String("contact", c.Name))
		return "", nil
	}

	now := time.Now().UTC()
	c.BusinessEmail = email
	c.LastEnrichedAt = &now
	if _, err := f.store.UpsertContact(ctx, c); err != nil {
		return "", eris.Wrapf(err, "discovery: save enriched contact %s", c.Name)
	}
	zap.L().Info("email enriched", zap.String("contact", c.Name))
	return email, nil
}
