package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/icp-screener/internal/db"
	"github.com/sells-group/icp-screener/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const companySelectColumns = `id, domain, name, website, status, step, last_error, manual_score, account_status, last_screened_at, created_at, updated_at`

const contactSelectColumns = `id, company_id, name, title, linkedin, business_email, email_verified, seniority, function_category, region, headline, years_experience, recent_job_change, company_domain, crustdata_person_id, last_enriched_at, last_campaign_added_at, created_at`

// The two phase-persist statements assign every flat run column, so they are
// assembled from the shared column lists rather than written out by hand.
var (
	saveResearchSQL = fmt.Sprintf(
		`UPDATE research_runs SET status = 'scoring', %s, updated_at = $%d WHERE id = $%d`,
		assignSet(researchColumns, 1), len(researchColumns)+1, len(researchColumns)+2,
	)
	saveScoreSQL = fmt.Sprintf(
		`UPDATE research_runs SET status = 'complete', %s, updated_at = $%d WHERE id = $%d`,
		assignSet(scoringColumns, 1), len(scoringColumns)+1, len(scoringColumns)+2,
	)
)

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"update_company_progress": `UPDATE companies SET status = $1, step = $2, updated_at = $3 WHERE id = $4`,
	"get_company_by_domain":   `SELECT ` + companySelectColumns + ` FROM companies WHERE domain = $1`,
	"insert_run":              `INSERT INTO research_runs (id, company_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"save_research":           saveResearchSQL,
	"save_score":              saveScoreSQL,
	"latest_run":              `SELECT ` + runSelectColumns + ` FROM research_runs WHERE company_id = $1 ORDER BY created_at DESC LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access (e.g., bulk contact loads).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

var postgresMigration = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS companies (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	domain           TEXT NOT NULL UNIQUE,
	name             TEXT NOT NULL DEFAULT '',
	website          TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'pending',
	step             TEXT NOT NULL DEFAULT '',
	last_error       TEXT NOT NULL DEFAULT '',
	manual_score     TEXT NOT NULL DEFAULT '',
	account_status   TEXT NOT NULL DEFAULT '',
	last_screened_at TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS research_runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	status     TEXT NOT NULL DEFAULT 'pending',
	error      TEXT NOT NULL DEFAULT '',
%s,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS training_examples (
	id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	domain            TEXT NOT NULL,
	factor            TEXT NOT NULL,
	company_name      TEXT NOT NULL DEFAULT '',
	research_snapshot TEXT NOT NULL DEFAULT '',
	score             INTEGER NOT NULL DEFAULT 0,
	justification     TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (domain, factor)
);

CREATE TABLE IF NOT EXISTS contacts (
	id                     TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company_id             TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
	name                   TEXT NOT NULL DEFAULT '',
	title                  TEXT NOT NULL DEFAULT '',
	linkedin               TEXT NOT NULL UNIQUE,
	business_email         TEXT NOT NULL DEFAULT '',
	email_verified         BOOLEAN NOT NULL DEFAULT false,
	seniority              TEXT NOT NULL DEFAULT '',
	function_category      TEXT NOT NULL DEFAULT '',
	region                 TEXT NOT NULL DEFAULT '',
	headline               TEXT NOT NULL DEFAULT '',
	years_experience       DOUBLE PRECISION NOT NULL DEFAULT 0,
	recent_job_change      BOOLEAN NOT NULL DEFAULT false,
	company_domain         TEXT NOT NULL DEFAULT '',
	crustdata_person_id    TEXT NOT NULL DEFAULT '',
	last_enriched_at       TIMESTAMPTZ,
	last_campaign_added_at TIMESTAMPTZ,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS campaigns (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS campaign_contacts (
	campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
	contact_id  TEXT NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
	added_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (campaign_id, contact_id)
);

CREATE TABLE IF NOT EXISTS campaign_messages (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
	channel     TEXT NOT NULL DEFAULT 'email',
	step_number INTEGER NOT NULL DEFAULT 1,
	subject     TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS saved_filters (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL UNIQUE,
	mode       TEXT NOT NULL DEFAULT 'indb',
	filters    TEXT NOT NULL DEFAULT '[]',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_companies_status ON companies(status);
CREATE INDEX IF NOT EXISTS idx_runs_company_created ON research_runs(company_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_status ON research_runs(status);
CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts(company_id);
CREATE INDEX IF NOT EXISTS idx_contacts_company_domain ON contacts(company_domain);
CREATE INDEX IF NOT EXISTS idx_campaign_messages_campaign ON campaign_messages(campaign_id);
`, runColumnDDL())

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// Companies

func (s *PostgresStore) UpsertCompany(ctx context.Context, domain, name, website string) (*model.Company, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	var c model.Company
	err := s.pool.QueryRow(ctx,
		`INSERT INTO companies (id, domain, name, website, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 'pending', $5, $5)
		 ON CONFLICT (domain) DO UPDATE SET name = EXCLUDED.name, website = EXCLUDED.website, updated_at = EXCLUDED.updated_at
		 RETURNING `+companySelectColumns,
		id, domain, name, website, now,
	).Scan(scanCompanyDest(&c)...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert company %s", domain)
	}
	return &c, nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	var c model.Company
	err := s.pool.QueryRow(ctx,
		`SELECT `+companySelectColumns+` FROM companies WHERE id = $1`, id,
	).Scan(scanCompanyDest(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get company %s", id)
	}
	return &c, nil
}

func (s *PostgresStore) GetCompanyByDomain(ctx context.Context, domain string) (*model.Company, error) {
	var c model.Company
	err := s.pool.QueryRow(ctx,
		`SELECT `+companySelectColumns+` FROM companies WHERE domain = $1`, domain,
	).Scan(scanCompanyDest(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get company by domain %s", domain)
	}
	return &c, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context, filter CompanyFilter) ([]model.Company, error) {
	query := `SELECT ` + companySelectColumns + ` FROM companies WHERE true`
	args := []any{}
	argIdx := 1

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			statuses[i] = string(st)
		}
		query += fmt.Sprintf(` AND status = ANY($%d)`, argIdx)
		args = append(args, statuses)
		argIdx++
	}
	if filter.Domain != "" {
		query += fmt.Sprintf(` AND domain = $%d`, argIdx)
		args = append(args, filter.Domain)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(scanCompanyDest(&c)...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

func (s *PostgresStore) ListCompanyDomains(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT domain FROM companies ORDER BY domain`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list company domains")
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, eris.Wrap(err, "postgres: scan domain")
		}
		domains = append(domains, d)
	}
	return domains, eris.Wrap(rows.Err(), "postgres: list company domains iterate")
}

func (s *PostgresStore) UpdateCompanyProgress(ctx context.Context, id string, status model.CompanyStatus, step string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET status = $1, step = $2, updated_at = $3 WHERE id = $4`,
		string(status), step, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update company progress %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SetCompanyError(ctx context.Context, id, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET status = 'error', last_error = $1, step = '', updated_at = $2 WHERE id = $3`,
		message, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set company error %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) MarkCompanyScreened(ctx context.Context, id string) error {
	now := time.Now().UTC()
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET status = 'complete', step = '', last_error = '', last_screened_at = $1, updated_at = $1 WHERE id = $2`,
		now, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: mark company screened %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SetManualScore(ctx context.Context, id, score string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET manual_score = $1, updated_at = $2 WHERE id = $3`,
		score, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set manual score %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) SetAccountStatus(ctx context.Context, id, accountStatus string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET account_status = $1, updated_at = $2 WHERE id = $3`,
		accountStatus, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set account status %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("company not found: %s", id)
	}
	return nil
}

func (s *PostgresStore) DeleteCompany(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM companies WHERE id = $1`, id)
	return eris.Wrapf(err, "postgres: delete company %s", id)
}

// Runs

func (s *PostgresStore) CreateRun(ctx context.Context, companyID string) (*model.ResearchRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO research_runs (id, company_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, companyID, string(model.RunStatusPending), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert run for company %s", companyID)
	}

	return &model.ResearchRun{
		ID:        id,
		CompanyID: companyID,
		Status:    model.RunStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) SaveResearch(ctx context.Context, runID string, update ResearchUpdate) error {
	args := append(researchArgs(update), time.Now().UTC(), runID)
	tag, err := s.pool.Exec(ctx, saveResearchSQL, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: save research %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) SaveScore(ctx context.Context, runID string, update ScoreUpdate) error {
	args := append(scoreArgs(update), time.Now().UTC(), runID)
	tag, err := s.pool.Exec(ctx, saveScoreSQL, args...)
	if err != nil {
		return eris.Wrapf(err, "postgres: save score %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) SetRunError(ctx context.Context, runID, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE research_runs SET status = 'error', error = $1, updated_at = $2 WHERE id = $3`,
		message, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set run error %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.ResearchRun, error) {
	var r model.ResearchRun
	err := s.pool.QueryRow(ctx,
		`SELECT `+runSelectColumns+` FROM research_runs WHERE id = $1`, runID,
	).Scan(scanRunDest(&r)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return &r, nil
}

func (s *PostgresStore) LatestRun(ctx context.Context, companyID string) (*model.ResearchRun, error) {
	var r model.ResearchRun
	err := s.pool.QueryRow(ctx,
		`SELECT `+runSelectColumns+` FROM research_runs WHERE company_id = $1 ORDER BY created_at DESC LIMIT 1`,
		companyID,
	).Scan(scanRunDest(&r)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: latest run for company %s", companyID)
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ResearchRun, error) {
	query := `SELECT ` + runSelectColumns + ` FROM research_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.CompanyID != "" {
		query += fmt.Sprintf(` AND company_id = $%d`, argIdx)
		args = append(args, filter.CompanyID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ResearchRun
	for rows.Next() {
		var r model.ResearchRun
		if err := rows.Scan(scanRunDest(&r)...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// Training examples

func (s *PostgresStore) UpsertTrainingExample(ctx context.Context, ex model.TrainingExample) error {
	id := ex.ID
	if id == "" {
		id = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO training_examples (id, domain, factor, company_name, research_snapshot, score, justification, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (domain, factor) DO UPDATE SET
		   company_name = EXCLUDED.company_name, research_snapshot = EXCLUDED.research_snapshot,
		   score = EXCLUDED.score, justification = EXCLUDED.justification`,
		id, ex.Domain, ex.Factor, ex.CompanyName, ex.ResearchSnapshot, ex.Score, ex.Justification, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert training example %s/%s", ex.Domain, ex.Factor)
}

func (s *PostgresStore) ListTrainingExamples(ctx context.Context) ([]model.TrainingExample, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, domain, factor, company_name, research_snapshot, score, justification, created_at
		 FROM training_examples ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list training examples")
	}
	defer rows.Close()

	var examples []model.TrainingExample
	for rows.Next() {
		var ex model.TrainingExample
		if err := rows.Scan(&ex.ID, &ex.Domain, &ex.Factor, &ex.CompanyName, &ex.ResearchSnapshot, &ex.Score, &ex.Justification, &ex.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan training example")
		}
		examples = append(examples, ex)
	}
	return examples, eris.Wrap(rows.Err(), "postgres: list training examples iterate")
}

func (s *PostgresStore) DeleteTrainingExample(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM training_examples WHERE id = $1`, id)
	return eris.Wrapf(err, "postgres: delete training example %s", id)
}

// Contacts

func (s *PostgresStore) UpsertContact(ctx context.Context, c model.Contact) (*model.Contact, error) {
	id := c.ID
	if id == "" {
		id = uuid.New().String()
	}

	// An empty incoming email never clobbers one found by a prior
	// enrichment pass.
	var out model.Contact
	err := s.pool.QueryRow(ctx,
		`INSERT INTO contacts (id, company_id, name, title, linkedin, business_email, email_verified, seniority,
		   function_category, region, headline, years_experience, recent_job_change, company_domain,
		   crustdata_person_id, last_enriched_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 ON CONFLICT (linkedin) DO UPDATE SET
		   company_id = EXCLUDED.company_id, name = EXCLUDED.name, title = EXCLUDED.title,
		   business_email = COALESCE(NULLIF(EXCLUDED.business_email, ''), contacts.business_email),
		   email_verified = contacts.email_verified OR EXCLUDED.email_verified,
		   seniority = EXCLUDED.seniority, function_category = EXCLUDED.function_category,
		   region = EXCLUDED.region, headline = EXCLUDED.headline,
		   years_experience = EXCLUDED.years_experience, recent_job_change = EXCLUDED.recent_job_change,
		   company_domain = EXCLUDED.company_domain, crustdata_person_id = EXCLUDED.crustdata_person_id,
		   last_enriched_at = COALESCE(EXCLUDED.last_enriched_at, contacts.last_enriched_at)
		 RETURNING `+contactSelectColumns,
		id, c.CompanyID, c.Name, c.Title, c.LinkedIn, c.BusinessEmail, c.EmailVerified, c.Seniority,
		c.FunctionCategory, c.Region, c.Headline, c.YearsExperience, c.RecentJobChange, c.CompanyDomain,
		c.CrustdataPersonID, c.LastEnrichedAt, time.Now().UTC(),
	).Scan(scanContactDest(&out)...)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert contact %s", c.LinkedIn)
	}
	return &out, nil
}

// contactBulkColumns are the columns loaded by BulkUpsertContacts. Emails are
// deliberately absent: discovery rows never carry them, and bulk loads must
// not blank out enriched values.
var contactBulkColumns = []string{
	"id", "company_id", "name", "title", "linkedin", "seniority", "function_category",
	"region", "headline", "years_experience", "recent_job_change", "company_domain",
	"crustdata_person_id", "created_at",
}

func (s *PostgresStore) BulkUpsertContacts(ctx context.Context, contacts []model.Contact) (int64, error) {
	if len(contacts) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(contacts))
	for _, c := range contacts {
		id := c.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{
			id, c.CompanyID, c.Name, c.Title, c.LinkedIn, c.Seniority, c.FunctionCategory,
			c.Region, c.Headline, c.YearsExperience, c.RecentJobChange, c.CompanyDomain,
			c.CrustdataPersonID, now,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "contacts",
		Columns:      contactBulkColumns,
		ConflictKeys: []string{"linkedin"},
		UpdateCols: []string{
			"company_id", "name", "title", "seniority", "function_category", "region",
			"headline", "years_experience", "recent_job_change", "company_domain", "crustdata_person_id",
		},
	}, rows)
	return n, eris.Wrap(err, "postgres: bulk upsert contacts")
}

func (s *PostgresStore) ListContacts(ctx context.Context, filter ContactFilter) ([]model.Contact, error) {
	query := `SELECT ` + contactSelectColumns + ` FROM contacts WHERE true`
	args := []any{}
	argIdx := 1

	if filter.CompanyID != "" {
		query += fmt.Sprintf(` AND company_id = $%d`, argIdx)
		args = append(args, filter.CompanyID)
		argIdx++
	}
	if filter.Domain != "" {
		query += fmt.Sprintf(` AND company_domain = $%d`, argIdx)
		args = append(args, filter.Domain)
		argIdx++
	}
	if filter.HasEmail {
		query += ` AND business_email != ''`
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(scanContactDest(&c)...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: list contacts iterate")
}

// Campaigns

func (s *PostgresStore) CreateCampaign(ctx context.Context, name string) (*model.Campaign, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO campaigns (id, name, created_at) VALUES ($1, $2, $3)`,
		id, name, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert campaign %s", name)
	}
	return &model.Campaign{ID: id, Name: name, CreatedAt: now}, nil
}

func (s *PostgresStore) ListCampaigns(ctx context.Context) ([]model.Campaign, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list campaigns")
	}
	defer rows.Close()

	var campaigns []model.Campaign
	for rows.Next() {
		var c model.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan campaign")
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, eris.Wrap(rows.Err(), "postgres: list campaigns iterate")
}

func (s *PostgresStore) AddContactsToCampaign(ctx context.Context, campaignID string, contactIDs []string) error {
	if len(contactIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, contactID := range contactIDs {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO campaign_contacts (campaign_id, contact_id, added_at) VALUES ($1, $2, $3)
			 ON CONFLICT (campaign_id, contact_id) DO NOTHING`,
			campaignID, contactID, now,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: add contact %s to campaign %s", contactID, campaignID)
		}
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE contacts SET last_campaign_added_at = $1 WHERE id = ANY($2)`,
		now, contactIDs,
	)
	return eris.Wrap(err, "postgres: stamp campaign contacts")
}

func (s *PostgresStore) ListCampaignContacts(ctx context.Context, campaignID string) ([]model.Contact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+contactSelectColumns+` FROM contacts
		 JOIN campaign_contacts ON campaign_contacts.contact_id = contacts.id
		 WHERE campaign_contacts.campaign_id = $1
		 ORDER BY campaign_contacts.added_at`,
		campaignID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list campaign contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var c model.Contact
		if err := rows.Scan(scanContactDest(&c)...); err != nil {
			return nil, eris.Wrap(err, "postgres: scan campaign contact")
		}
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: list campaign contacts iterate")
}

func (s *PostgresStore) SaveCampaignMessage(ctx context.Context, msg model.CampaignMessage) (*model.CampaignMessage, error) {
	if msg.Channel == "" {
		msg.Channel = "email"
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
		_, err := s.pool.Exec(ctx,
			`INSERT INTO campaign_messages (id, campaign_id, channel, step_number, subject, body) VALUES ($1, $2, $3, $4, $5, $6)`,
			msg.ID, msg.CampaignID, msg.Channel, msg.StepNumber, msg.Subject, msg.Body,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: insert campaign message for %s", msg.CampaignID)
		}
		return &msg, nil
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE campaign_messages SET channel = $1, step_number = $2, subject = $3, body = $4 WHERE id = $5`,
		msg.Channel, msg.StepNumber, msg.Subject, msg.Body, msg.ID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update campaign message %s", msg.ID)
	}
	if tag.RowsAffected() == 0 {
		return nil, eris.Errorf("campaign_message not found: %s", msg.ID)
	}
	return &msg, nil
}

func (s *PostgresStore) ListCampaignMessages(ctx context.Context, campaignID string) ([]model.CampaignMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, campaign_id, channel, step_number, subject, body FROM campaign_messages
		 WHERE campaign_id = $1 ORDER BY channel, step_number`,
		campaignID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list campaign messages")
	}
	defer rows.Close()

	var msgs []model.CampaignMessage
	for rows.Next() {
		var m model.CampaignMessage
		if err := rows.Scan(&m.ID, &m.CampaignID, &m.Channel, &m.StepNumber, &m.Subject, &m.Body); err != nil {
			return nil, eris.Wrap(err, "postgres: scan campaign message")
		}
		msgs = append(msgs, m)
	}
	return msgs, eris.Wrap(rows.Err(), "postgres: list campaign messages iterate")
}

// Saved filters

func (s *PostgresStore) SaveFilter(ctx context.Context, name, mode, filters string) (*model.SavedFilter, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	var f model.SavedFilter
	err := s.pool.QueryRow(ctx,
		`INSERT INTO saved_filters (id, name, mode, filters, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (name) DO UPDATE SET mode = EXCLUDED.mode, filters = EXCLUDED.filters, updated_at = EXCLUDED.updated_at
		 RETURNING id, name, mode, filters, updated_at`,
		id, name, mode, filters, now,
	).Scan(&f.ID, &f.Name, &f.Mode, &f.Filters, &f.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: save filter %s", name)
	}
	return &f, nil
}

func (s *PostgresStore) ListSavedFilters(ctx context.Context) ([]model.SavedFilter, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, mode, filters, updated_at FROM saved_filters ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list saved filters")
	}
	defer rows.Close()

	var out []model.SavedFilter
	for rows.Next() {
		var f model.SavedFilter
		if err := rows.Scan(&f.ID, &f.Name, &f.Mode, &f.Filters, &f.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan saved filter")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list saved filters iterate")
}

func (s *PostgresStore) DeleteSavedFilter(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM saved_filters WHERE id = $1`, id)
	return eris.Wrapf(err, "postgres: delete saved filter %s", id)
}

// scanCompanyDest returns scan targets matching companySelectColumns.
func scanCompanyDest(c *model.Company) []any {
	return []any{
		&c.ID, &c.Domain, &c.Name, &c.Website, &c.Status, &c.Step, &c.LastError,
		&c.ManualScore, &c.AccountStatus, &c.LastScreened, &c.CreatedAt, &c.UpdatedAt,
	}
}

// scanContactDest returns scan targets matching contactSelectColumns.
func scanContactDest(c *model.Contact) []any {
	return []any{
		&c.ID, &c.CompanyID, &c.Name, &c.Title, &c.LinkedIn, &c.BusinessEmail, &c.EmailVerified,
		&c.Seniority, &c.FunctionCategory, &c.Region, &c.Headline, &c.YearsExperience,
		&c.RecentJobChange, &c.CompanyDomain, &c.CrustdataPersonID, &c.LastEnrichedAt,
		&c.LastCampaignAdded, &c.CreatedAt,
	}
}
