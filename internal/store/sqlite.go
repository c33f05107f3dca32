package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/icp-screener/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: sqlDB}, nil
}

var sqliteMigration = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS companies (
	id               TEXT PRIMARY KEY,
	domain           TEXT NOT NULL UNIQUE,
	name             TEXT NOT NULL DEFAULT '',
	website          TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'pending',
	step             TEXT NOT NULL DEFAULT '',
	last_error       TEXT NOT NULL DEFAULT '',
	manual_score     TEXT NOT NULL DEFAULT '',
	account_status   TEXT NOT NULL DEFAULT '',
	last_screened_at DATETIME,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS research_runs (
	id         TEXT PRIMARY KEY,
	company_id TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	status     TEXT NOT NULL DEFAULT 'pending',
	error      TEXT NOT NULL DEFAULT '',
%s,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS training_examples (
	id                TEXT PRIMARY KEY,
	domain            TEXT NOT NULL,
	factor            TEXT NOT NULL,
	company_name      TEXT NOT NULL DEFAULT '',
	research_snapshot TEXT NOT NULL DEFAULT '',
	score             INTEGER NOT NULL DEFAULT 0,
	justification     TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (domain, factor)
);

CREATE TABLE IF NOT EXISTS contacts (
	id                     TEXT PRIMARY KEY,
	company_id             TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	name                   TEXT NOT NULL DEFAULT '',
	title                  TEXT NOT NULL DEFAULT '',
	linkedin               TEXT NOT NULL UNIQUE,
	business_email         TEXT NOT NULL DEFAULT '',
	email_verified         BOOLEAN NOT NULL DEFAULT 0,
	seniority              TEXT NOT NULL DEFAULT '',
	function_category      TEXT NOT NULL DEFAULT '',
	region                 TEXT NOT NULL DEFAULT '',
	headline               TEXT NOT NULL DEFAULT '',
	years_experience       REAL NOT NULL DEFAULT 0,
	recent_job_change      BOOLEAN NOT NULL DEFAULT 0,
	company_domain         TEXT NOT NULL DEFAULT '',
	crustdata_person_id    TEXT NOT NULL DEFAULT '',
	last_enriched_at       DATETIME,
	last_campaign_added_at DATETIME,
	created_at             DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS campaigns (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS campaign_contacts (
	campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
	contact_id  TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	added_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (campaign_id, contact_id)
);

CREATE TABLE IF NOT EXISTS campaign_messages (
	id          TEXT PRIMARY KEY,
	campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
	channel     TEXT NOT NULL DEFAULT 'email',
	step_number INTEGER NOT NULL DEFAULT 1,
	subject     TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS saved_filters (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	mode       TEXT NOT NULL DEFAULT 'indb',
	filters    TEXT NOT NULL DEFAULT '[]',
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_companies_status ON companies(status);
CREATE INDEX IF NOT EXISTS idx_runs_company_created ON research_runs(company_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_status ON research_runs(status);
CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts(company_id);
CREATE INDEX IF NOT EXISTS idx_contacts_company_domain ON contacts(company_domain);
CREATE INDEX IF NOT EXISTS idx_campaign_messages_campaign ON campaign_messages(campaign_id);
`, runColumnDDL())

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Companies

func (s *SQLiteStore) UpsertCompany(ctx context.Context, domain, name, website string) (*model.Company, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO companies (id, domain, name, website, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'pending', ?, ?)
		 ON CONFLICT (domain) DO UPDATE SET name = excluded.name, website = excluded.website, updated_at = excluded.updated_at`,
		id, domain, name, website, now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert company %s", domain)
	}
	return s.GetCompanyByDomain(ctx, domain)
}

func (s *SQLiteStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+companySelectColumns+` FROM companies WHERE id = ?`, id,
	)
	c, err := scanCompanySQLite(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %s", id)
	}
	return c, nil
}

func (s *SQLiteStore) GetCompanyByDomain(ctx context.Context, domain string) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+companySelectColumns+` FROM companies WHERE domain = ?`, domain,
	)
	c, err := scanCompanySQLite(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company by domain %s", domain)
	}
	return c, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error) {
	query := `SELECT ` + companySelectColumns + ` FROM companies WHERE 1=1`
	var args []any

	if len(filter.Statuses) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Statuses)), ", ")
		query += ` AND status IN (` + placeholders + `)`
		for _, st := range filter.Statuses {
			args = append(args, string(st))
		}
	}
	if filter.Domain != "" {
		query += ` AND domain = ?`
		args = append(args, filter.Domain)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		c, err := scanCompanySQLite(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		companies = append(companies, *c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

func (s *SQLiteStore) ListCompanyDomains(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT domain FROM companies ORDER BY domain`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list company domains")
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan domain")
		}
		domains = append(domains, d)
	}
	return domains, eris.Wrap(rows.Err(), "sqlite: list company domains iterate")
}

func (s *SQLiteStore) UpdateCompanyProgress(ctx context.Context, id string, status model.CompanyStatus, step string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET status = ?, step = ?, updated_at = ? WHERE id = ?`,
		string(status), step, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update company progress %s", id)
	}
	return checkRowsAffected(res, "company", id)
}

func (s *SQLiteStore) SetCompanyError(ctx context.Context, id, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET status = 'error', last_error = ?, step = '', updated_at = ? WHERE id = ?`,
		message, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set company error %s", id)
	}
	return checkRowsAffected(res, "company", id)
}

func (s *SQLiteStore) MarkCompanyScreened(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET status = 'complete', step = '', last_error = '', last_screened_at = ?, updated_at = ? WHERE id = ?`,
		now, now, id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: mark company screened %s", id)
	}
	return checkRowsAffected(res, "company", id)
}

func (s *SQLiteStore) SetManualScore(ctx context.Context, id, score string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET manual_score = ?, updated_at = ? WHERE id = ?`,
		score, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set manual score %s", id)
	}
	return checkRowsAffected(res, "company", id)
}

func (s *SQLiteStore) SetAccountStatus(ctx context.Context, id, accountStatus string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE companies SET account_status = ?, updated_at = ? WHERE id = ?`,
		accountStatus, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set account status %s", id)
	}
	return checkRowsAffected(res, "company", id)
}

func (s *SQLiteStore) DeleteCompany(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	return eris.Wrapf(err, "sqlite: delete company %s", id)
}

// Runs

func (s *SQLiteStore) CreateRun(ctx context.Context, companyID string) (*model.ResearchRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO research_runs (id, company_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, companyID, string(model.RunStatusPending), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert run for company %s", companyID)
	}

	return &model.ResearchRun{
		ID:        id,
		CompanyID: companyID,
		Status:    model.RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) SaveResearch(ctx context.Context, runID string, update ResearchUpdate) error {
	query := fmt.Sprintf(
		`UPDATE research_runs SET status = 'scoring', %s, updated_at = ? WHERE id = ?`,
		assignSetQ(researchColumns),
	)
	args := append(researchArgs(update), time.Now().UTC(), runID)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save research %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) SaveScore(ctx context.Context, runID string, update ScoreUpdate) error {
	query := fmt.Sprintf(
		`UPDATE research_runs SET status = 'complete', %s, updated_at = ? WHERE id = ?`,
		assignSetQ(scoringColumns),
	)
	args := append(scoreArgs(update), time.Now().UTC(), runID)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save score %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) SetRunError(ctx context.Context, runID, message string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE research_runs SET status = 'error', error = ?, updated_at = ? WHERE id = ?`,
		message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set run error %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.ResearchRun, error) {
	var r model.ResearchRun
	err := s.db.QueryRowContext(ctx,
		`SELECT `+runSelectColumns+` FROM research_runs WHERE id = ?`, runID,
	).Scan(scanRunDest(&r)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return &r, nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context, companyID string) (*model.ResearchRun, error) {
	var r model.ResearchRun
	err := s.db.QueryRowContext(ctx,
		`SELECT `+runSelectColumns+` FROM research_runs WHERE company_id = ? ORDER BY created_at DESC LIMIT 1`,
		companyID,
	).Scan(scanRunDest(&r)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest run for company %s", companyID)
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ResearchRun, error) {
	query := `SELECT ` + runSelectColumns + ` FROM research_runs WHERE 1=1`
	var args []any

	if filter.CompanyID != "" {
		query += ` AND company_id = ?`
		args = append(args, filter.CompanyID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ResearchRun
	for rows.Next() {
		var r model.ResearchRun
		if err := rows.Scan(scanRunDest(&r)...); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// Training examples

func (s *SQLiteStore) UpsertTrainingExample(ctx context.Context, ex model.TrainingExample) error {
	id := ex.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_examples (id, domain, factor, company_name, research_snapshot, score, justification, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (domain, factor) DO UPDATE SET
		   company_name = excluded.company_name, research_snapshot = excluded.research_snapshot,
		   score = excluded.score, justification = excluded.justification`,
		id, ex.Domain, ex.Factor, ex.CompanyName, ex.ResearchSnapshot, ex.Score, ex.Justification, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: upsert training example %s/%s", ex.Domain, ex.Factor)
}

func (s *SQLiteStore) ListTrainingExamples(ctx context.Context) ([]model.TrainingExample, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, factor, company_name, research_snapshot, score, justification, created_at
		 FROM training_examples ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list training examples")
	}
	defer rows.Close()

	var examples []model.TrainingExample
	for rows.Next() {
		var ex model.TrainingExample
		if err := rows.Scan(&ex.ID, &ex.Domain, &ex.Factor, &ex.CompanyName, &ex.ResearchSnapshot, &ex.Score, &ex.Justification, &ex.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan training example")
		}
		examples = append(examples, ex)
	}
	return examples, eris.Wrap(rows.Err(), "sqlite: list training examples iterate")
}

func (s *SQLiteStore) DeleteTrainingExample(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM training_examples WHERE id = ?`, id)
	return eris.Wrapf(err, "sqlite: delete training example %s", id)
}

// Contacts

const sqliteContactUpsert = `INSERT INTO contacts (id, company_id, name, title, linkedin, business_email, email_verified, seniority,
	   function_category, region, headline, years_experience, recent_job_change, company_domain,
	   crustdata_person_id, last_enriched_at, created_at)
	 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	 ON CONFLICT (linkedin) DO UPDATE SET
	   company_id = excluded.company_id, name = excluded.name, title = excluded.title,
	   business_email = CASE WHEN excluded.business_email = '' THEN contacts.business_email ELSE excluded.business_email END,
	   email_verified = contacts.email_verified OR excluded.email_verified,
	   seniority = excluded.seniority, function_category = excluded.function_category,
	   region = excluded.region, headline = excluded.headline,
	   years_experience = excluded.years_experience, recent_job_change = excluded.recent_job_change,
	   company_domain = excluded.company_domain, crustdata_person_id = excluded.crustdata_person_id,
	   last_enriched_at = COALESCE(excluded.last_enriched_at, contacts.last_enriched_at)`

func (s *SQLiteStore) UpsertContact(ctx context.Context, c model.Contact) (*model.Contact, error) {
	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, sqliteContactUpsert,
		id, c.CompanyID, c.Name, c.Title, c.LinkedIn, c.BusinessEmail, c.EmailVerified, c.Seniority,
		c.FunctionCategory, c.Region, c.Headline, c.YearsExperience, c.RecentJobChange, c.CompanyDomain,
		c.CrustdataPersonID, c.LastEnrichedAt, time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert contact %s", c.LinkedIn)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+contactSelectColumns+` FROM contacts WHERE linkedin = ?`, c.LinkedIn,
	)
	out, err := scanContactSQLite(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: reload contact %s", c.LinkedIn)
	}
	return out, nil
}

func (s *SQLiteStore) BulkUpsertContacts(ctx context.Context, contacts []model.Contact) (int64, error) {
	if len(contacts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin bulk upsert")
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	var n int64
	for _, c := range contacts {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx, sqliteContactUpsert,
			id, c.CompanyID, c.Name, c.Title, c.LinkedIn, c.BusinessEmail, c.EmailVerified, c.Seniority,
			c.FunctionCategory, c.Region, c.Headline, c.YearsExperience, c.RecentJobChange, c.CompanyDomain,
			c.CrustdataPersonID, c.LastEnrichedAt, now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: bulk upsert contact %s", c.LinkedIn)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit bulk upsert")
	}
	return n, nil
}

func (s *SQLiteStore) ListContacts(ctx context.Context, filter ContactFilter) ([]model.Contact, error) {
	query := `SELECT ` + contactSelectColumns + ` FROM contacts WHERE 1=1`
	var args []any

	if filter.CompanyID != "" {
		query += ` AND company_id = ?`
		args = append(args, filter.CompanyID)
	}
	if filter.Domain != "" {
		query += ` AND company_domain = ?`
		args = append(args, filter.Domain)
	}
	if filter.HasEmail {
		query += ` AND business_email != ''`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContactSQLite(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: list contacts iterate")
}

// Campaigns

func (s *SQLiteStore) CreateCampaign(ctx context.Context, name string) (*model.Campaign, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO campaigns (id, name, created_at) VALUES (?, ?, ?)`,
		id, name, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert campaign %s", name)
	}
	return &model.Campaign{ID: id, Name: name, CreatedAt: now}, nil
}

func (s *SQLiteStore) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list campaigns")
	}
	defer rows.Close()

	var campaigns []model.Campaign
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan campaign")
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, eris.Wrap(rows.Err(), "sqlite: list campaigns iterate")
}

func (s *SQLiteStore) AddContactsToCampaign(ctx context.Context, campaignID string, contactIDs []string) error {
	if len(contactIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, contactID := range contactIDs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO campaign_contacts (campaign_id, contact_id, added_at) VALUES (?, ?, ?)
			 ON CONFLICT (campaign_id, contact_id) DO NOTHING`,
			campaignID, contactID, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: add contact %s to campaign %s", contactID, campaignID)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(contactIDs)), ", ")
	args := []any{now}
	for _, id := range contactIDs {
		args = append(args, id)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET last_campaign_added_at = ? WHERE id IN (`+placeholders+`)`,
		args...,
	)
	return eris.Wrap(err, "sqlite: stamp campaign contacts")
}

func (s *SQLiteStore) ListCampaignContacts(ctx context.Context, campaignID string) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactSelectColumns+` FROM contacts
		 JOIN campaign_contacts ON campaign_contacts.contact_id = contacts.id
		 WHERE campaign_contacts.campaign_id = ?
		 ORDER BY campaign_contacts.added_at`,
		campaignID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list campaign contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		c, err := scanContactSQLite(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan campaign contact")
		}
		contacts = append(contacts, *c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: list campaign contacts iterate")
}

func (s *SQLiteStore) SaveCampaignMessage(ctx context.Context, msg model.CampaignMessage) (*model.CampaignMessage, error) {
	if msg.Channel == "" {
		msg.Channel = "email"
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO campaign_messages (id, campaign_id, channel, step_number, subject, body) VALUES (?, ?, ?, ?, ?, ?)`,
			msg.ID, msg.CampaignID, msg.Channel, msg.StepNumber, msg.Subject, msg.Body,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert campaign message for %s", msg.CampaignID)
		}
		return &msg, nil
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE campaign_messages SET channel = ?, step_number = ?, subject = ?, body = ? WHERE id = ?`,
		msg.Channel, msg.StepNumber, msg.Subject, msg.Body, msg.ID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update campaign message %s", msg.ID)
	}
	if err := checkRowsAffected(res, "campaign_message", msg.ID); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *SQLiteStore) ListCampaignMessages(ctx context.Context, campaignID string) ([]model.CampaignMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, campaign_id, channel, step_number, subject, body FROM campaign_messages
		 WHERE campaign_id = ? ORDER BY channel, step_number`,
		campaignID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list campaign messages")
	}
	defer rows.Close()

	var msgs []model.CampaignMessage
	for rows.Next() {
		var m model.CampaignMessage
		if err := rows.Scan(&m.ID, &m.CampaignID, &m.Channel, &m.StepNumber, &m.Subject, &m.Body); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan campaign message")
		}
		msgs = append(msgs, m)
	}
	return msgs, eris.Wrap(rows.Err(), "sqlite: list campaign messages iterate")
}

// Saved filters

func (s *SQLiteStore) SaveFilter(ctx context.Context, name, mode, filters string) (*model.SavedFilter, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_filters (id, name, mode, filters, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET mode = excluded.mode, filters = excluded.filters, updated_at = excluded.updated_at`,
		id, name, mode, filters, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: save filter %s", name)
	}

	var f model.SavedFilter
	err = s.db.QueryRowContext(ctx,
		`SELECT id, name, mode, filters, updated_at FROM saved_filters WHERE name = ?`, name,
	).Scan(&f.ID, &f.Name, &f.Mode, &f.Filters, &f.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: reload filter %s", name)
	}
	return &f, nil
}

func (s *SQLiteStore) ListSavedFilters(ctx context.Context) ([]model.SavedFilter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, mode, filters, updated_at FROM saved_filters ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list saved filters")
	}
	defer rows.Close()

	var out []model.SavedFilter
	for rows.Next() {
		var f model.SavedFilter
		if err := rows.Scan(&f.ID, &f.Name, &f.Mode, &f.Filters, &f.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan saved filter")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list saved filters iterate")
}

func (s *SQLiteStore) DeleteSavedFilter(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saved_filters WHERE id = ?`, id)
	return eris.Wrapf(err, "sqlite: delete saved filter %s", id)
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

// database/sql cannot scan NULL into a *time.Time field, so the nullable
// timestamps go through sql.NullTime here.
func scanCompanySQLite(row scannable) (*model.Company, error) {
	var c model.Company
	var screened sql.NullTime
	err := row.Scan(&c.ID, &c.Domain, &c.Name, &c.Website, &c.Status, &c.Step, &c.LastError,
		&c.ManualScore, &c.AccountStatus, &screened, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if screened.Valid {
		t := screened.Time
		c.LastScreened = &t
	}
	return &c, nil
}

func scanContactSQLite(row scannable) (*model.Contact, error) {
	var c model.Contact
	var enriched, campaignAdded sql.NullTime
	err := row.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Title, &c.LinkedIn, &c.BusinessEmail, &c.EmailVerified,
		&c.Seniority, &c.FunctionCategory, &c.Region, &c.Headline, &c.YearsExperience,
		&c.RecentJobChange, &c.CompanyDomain, &c.CrustdataPersonID, &enriched, &campaignAdded, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if enriched.Valid {
		t := enriched.Time
		c.LastEnrichedAt = &t
	}
	if campaignAdded.Valid {
		t := campaignAdded.Time
		c.LastCampaignAdded = &t
	}
	return &c, nil
}
