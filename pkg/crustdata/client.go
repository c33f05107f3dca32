// Package crustdata is a client for the Crustdata screener APIs: company
// database search, LinkedIn-sourced company screening, people search, filter
// autocomplete, and realtime person enrichment.
package crustdata

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/icp-screener/internal/resilience"
)

const defaultBaseURL = "https://api.crustdata.com"

// ErrProfileQueued is returned by PersonEnrich when the profile is not yet
// in Crustdata's database. The API queues it for enrichment; retrying later
// usually succeeds.
var ErrProfileQueued = eris.New("crustdata: profile not found, queued for enrichment")

// Client covers the Crustdata operations used by discovery and contacts.
type Client interface {
	CompanySearch(ctx context.Context, req CompanySearchRequest) (*CompanySearchResponse, error)
	Screen(ctx context.Context, req ScreenRequest) (*CompanySearchResponse, error)
	PeopleSearch(ctx context.Context, req PeopleSearchRequest) (*PeopleSearchResponse, error)
	Autocomplete(ctx context.Context, field, query string, limit int) ([]string, error)
	PeopleAutocomplete(ctx context.Context, field, query string, limit int) ([]string, error)
	FiltersAutocomplete(ctx context.Context, filterType, query string, limit int) ([]string, error)
	PersonEnrich(ctx context.Context, req PersonEnrichRequest) (*PersonProfile, error)
}

// Condition is one node of a filter tree. Leaf nodes set FilterType (company
// database) or Column (person database) plus Type and Value; group nodes set
// Op ("and"/"or") and Conditions.
type Condition struct {
	Op         string      `json:"op,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
	FilterType string      `json:"filter_type,omitempty"`
	Column     string      `json:"column,omitempty"`
	Type       string      `json:"type,omitempty"`
	Value      any         `json:"value,omitempty"`
}

// And wraps conditions in an op:and group. Single conditions are wrapped
// too; bare leaf nodes at the top level can cause API errors.
func And(conds ...Condition) *Condition {
	return &Condition{Op: "and", Conditions: conds}
}

// Or wraps conditions in an op:or group.
func Or(conds ...Condition) Condition {
	return Condition{Op: "or", Conditions: conds}
}

// Sort orders company search results.
type Sort struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// CompanySearchRequest is the body for POST /screener/companydb/search.
type CompanySearchRequest struct {
	Filters *Condition `json:"filters"`
	Sorts   []Sort     `json:"sorts,omitempty"`
	Limit   int        `json:"limit,omitempty"`
	Cursor  string     `json:"cursor,omitempty"`
}

// ScreenFilter is one filter for the LinkedIn company screen endpoint.
type ScreenFilter struct {
	FilterType string `json:"filter_type"`
	Type       string `json:"type,omitempty"`
	Value      any    `json:"value,omitempty"`
	SubFilter  string `json:"sub_filter,omitempty"`
}

// ScreenRequest is the body for POST /screener/screen (page-based).
type ScreenRequest struct {
	Filters []ScreenFilter `json:"filters"`
	Page    int            `json:"page,omitempty"`
	Limit   int            `json:"limit,omitempty"`
}

// Company is a company row from either search endpoint. The two endpoints
// use overlapping but not identical field names.
type Company struct {
	CompanyName          string          `json:"company_name,omitempty"`
	Name                 string          `json:"name,omitempty"`
	WebsiteDomain        string          `json:"website_domain,omitempty"`
	CompanyWebsiteDomain string          `json:"company_website_domain,omitempty"`
	Website              string          `json:"website,omitempty"`
	LinkedInIndustries   []string        `json:"linkedin_industries,omitempty"`
	Industry             string          `json:"industry,omitempty"`
	LinkedInIndustry     string          `json:"linkedin_industry,omitempty"`
	EmployeeMetrics      EmployeeMetrics `json:"employee_metrics,omitempty"`
	EmployeeCount        int             `json:"employee_count,omitempty"`
	CompanyHeadcount     int             `json:"company_headcount,omitempty"`
	LastFundingRoundType string          `json:"last_funding_round_type,omitempty"`
	TotalInvestmentUSD   float64         `json:"crunchbase_total_investment_usd,omitempty"`
	HQLocation           string          `json:"hq_location,omitempty"`
	Location             string          `json:"location,omitempty"`
	HQ                   string          `json:"hq,omitempty"`
}

// EmployeeMetrics carries headcount and growth figures.
type EmployeeMetrics struct {
	LatestCount      int     `json:"latest_count,omitempty"`
	Growth6mPercent  float64 `json:"growth_6m_percent,omitempty"`
	Growth12mPercent float64 `json:"growth_12m_percent,omitempty"`
}

// CompanySearchResponse is the response from both company endpoints. The
// companydb endpoint fills Companies; the screen endpoint may use Profiles.
type CompanySearchResponse struct {
	Companies         []Company `json:"companies,omitempty"`
	Profiles          []Company `json:"profiles,omitempty"`
	NextCursor        string    `json:"next_cursor,omitempty"`
	TotalCount        int       `json:"total_count,omitempty"`
	TotalDisplayCount int       `json:"total_display_count,omitempty"`
}

// Rows returns whichever result list the endpoint populated.
func (r *CompanySearchResponse) Rows() []Company {
	if len(r.Companies) > 0 {
		return r.Companies
	}
	return r.Profiles
}

// Total returns the best available total count.
func (r *CompanySearchResponse) Total() int {
	if r.TotalCount > 0 {
		return r.TotalCount
	}
	return r.TotalDisplayCount
}

// PeopleSearchRequest is the body for POST /screener/persondb/search.
type PeopleSearchRequest struct {
	Filters *Condition `json:"filters"`
	Limit   int        `json:"limit,omitempty"`
	Cursor  string     `json:"cursor,omitempty"`
}

// PeopleSearchResponse is the response from the person database search.
type PeopleSearchResponse struct {
	Profiles   []PersonProfile `json:"profiles"`
	NextCursor string          `json:"next_cursor,omitempty"`
	TotalCount int             `json:"total_count,omitempty"`
}

// PersonProfile is a person row from search or enrichment.
type PersonProfile struct {
	PersonID             string     `json:"person_id,omitempty"`
	Name                 string     `json:"name,omitempty"`
	Headline             string     `json:"headline,omitempty"`
	LinkedInProfileURL   string     `json:"linkedin_profile_url,omitempty"`
	Region               string     `json:"region,omitempty"`
	YearsOfExperienceRaw float64    `json:"years_of_experience_raw,omitempty"`
	RecentlyChangedJobs  bool       `json:"recently_changed_jobs,omitempty"`
	BusinessEmail        EmailList  `json:"business_email,omitempty"`
	CurrentEmployers     []Employer `json:"current_employers,omitempty"`
	PastEmployers        []Employer `json:"past_employers,omitempty"`
}

// Employer is one employment record on a person profile.
type Employer struct {
	Name                  string                     `json:"name,omitempty"`
	Title                 string                     `json:"title,omitempty"`
	CompanyWebsiteDomain  string                     `json:"company_website_domain,omitempty"`
	SeniorityLevel        string                     `json:"seniority_level,omitempty"`
	FunctionCategory      string                     `json:"function_category,omitempty"`
	BusinessEmailVerified bool                       `json:"business_email_verified,omitempty"`
	BusinessEmails        map[string]EmailEnrichment `json:"business_emails,omitempty"`
}

// EmailEnrichment describes one enriched business email address.
type EmailEnrichment struct {
	VerificationStatus string `json:"verification_status,omitempty"`
}

// EmailList tolerates the API returning either a string or an array.
type EmailList []string

// UnmarshalJSON accepts "a@b.com" or ["a@b.com", ...].
func (e *EmailList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*e = EmailList{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*e = EmailList(many)
	return nil
}

// BestEmail extracts the most useful business email from a profile: the
// top-level business_email first, then current-employer enriched emails,
// then past-employer ones.
func (p *PersonProfile) BestEmail() string {
	if len(p.BusinessEmail) > 0 {
		return p.BusinessEmail[0]
	}
	for _, emp := range p.CurrentEmployers {
		for email := range emp.BusinessEmails {
			return email
		}
	}
	for _, emp := range p.PastEmployers {
		for email := range emp.BusinessEmails {
			return email
		}
	}
	return ""
}

// PersonEnrichRequest parameterizes GET /screener/person/enrich.
type PersonEnrichRequest struct {
	LinkedInProfileURL string
	// Fields restricts which attributes are returned; "business_email"
	// costs 2 credits instead of a full profile.
	Fields string
	// EnrichRealtime fetches from the web when the profile is not in the
	// database (5 extra credits).
	EnrichRealtime bool
}

type autocompleteRequest struct {
	Field      string `json:"field,omitempty"`
	FilterType string `json:"filter_type,omitempty"`
	Query      string `json:"query"`
	Limit      int    `json:"limit"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithEnrichRate overrides the pacing of PersonEnrich calls.
func WithEnrichRate(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.enrichLimiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

type httpClient struct {
	apiKey        string
	baseURL       string
	http          *http.Client
	enrichLimiter *rate.Limiter
}

// NewClient creates a Crustdata API client. Enrichment calls are paced at
// 2 requests per second by default.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			// Complex filter trees can take the better part of a minute.
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		enrichLimiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) CompanySearch(ctx context.Context, req CompanySearchRequest) (*CompanySearchResponse, error) {
	if len(req.Sorts) == 0 {
		req.Sorts = []Sort{{Column: "employee_metrics.latest_count", Order: "desc"}}
	}
	if req.Limit == 0 {
		req.Limit = 25
	}

	var out CompanySearchResponse
	if err := c.post(ctx, "/screener/companydb/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Screen(ctx context.Context, req ScreenRequest) (*CompanySearchResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 25
	}

	var out CompanySearchResponse
	if err := c.post(ctx, "/screener/screen", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) PeopleSearch(ctx context.Context, req PeopleSearchRequest) (*PeopleSearchResponse, error) {
	if req.Limit == 0 {
		req.Limit = 50
	}

	var out PeopleSearchResponse
	if err := c.post(ctx, "/screener/persondb/search", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Autocomplete(ctx context.Context, field, query string, limit int) ([]string, error) {
	return c.autocomplete(ctx, "/screener/companydb/autocomplete", autocompleteRequest{Field: field, Query: query, Limit: limit})
}

func (c *httpClient) PeopleAutocomplete(ctx context.Context, field, query string, limit int) ([]string, error) {
	return c.autocomplete(ctx, "/screener/persondb/autocomplete", autocompleteRequest{Field: field, Query: query, Limit: limit})
}

func (c *httpClient) FiltersAutocomplete(ctx context.Context, filterType, query string, limit int) ([]string, error) {
	return c.autocomplete(ctx, "/screener/filters/autocomplete", autocompleteRequest{FilterType: filterType, Query: query, Limit: limit})
}

func (c *httpClient) autocomplete(ctx context.Context, path string, req autocompleteRequest) ([]string, error) {
	if req.Limit == 0 {
		req.Limit = 10
	}

	var raw json.RawMessage
	if err := c.post(ctx, path, req, &raw); err != nil {
		return nil, err
	}
	return normalizeSuggestions(raw), nil
}

// normalizeSuggestions flattens the autocomplete response variants: a plain
// string array, an array of {value} or {name} objects, or an object with a
// values/suggestions key.
func normalizeSuggestions(raw json.RawMessage) []string {
	var asStrings []string
	if err := json.Unmarshal(raw, &asStrings); err == nil {
		return asStrings
	}

	var asObjects []struct {
		Value string `json:"value"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(raw, &asObjects); err == nil {
		out := make([]string, 0, len(asObjects))
		for _, o := range asObjects {
			if o.Value != "" {
				out = append(out, o.Value)
			} else if o.Name != "" {
				out = append(out, o.Name)
			}
		}
		return out
	}

	var wrapped struct {
		Values      []string `json:"values"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		if len(wrapped.Values) > 0 {
			return wrapped.Values
		}
		return wrapped.Suggestions
	}

	return nil
}

func (c *httpClient) PersonEnrich(ctx context.Context, req PersonEnrichRequest) (*PersonProfile, error) {
	if req.LinkedInProfileURL == "" {
		return nil, eris.New("crustdata: person enrich requires a linkedin profile url")
	}

	if err := c.enrichLimiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "crustdata: enrich rate limit wait")
	}

	qp := url.Values{}
	qp.Set("linkedin_profile_url", req.LinkedInProfileURL)
	if req.Fields != "" {
		qp.Set("fields", req.Fields)
	}
	if req.EnrichRealtime {
		qp.Set("enrich_realtime", "true")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/screener/person/enrich?"+qp.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "crustdata: create request")
	}
	httpReq.Header.Set("Authorization", "Token "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "crustdata: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "crustdata: read response")
	}

	// 404 here means "not in DB yet, queued" (error code PE03), not a
	// permanent failure.
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProfileQueued
	}
	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("crustdata: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	// The enrich endpoint returns an array of profiles, or occasionally a
	// single object.
	var profiles []PersonProfile
	if err := json.Unmarshal(respBody, &profiles); err != nil {
		var single PersonProfile
		if err := json.Unmarshal(respBody, &single); err != nil {
			return nil, eris.Wrap(err, "crustdata: unmarshal enrich response")
		}
		profiles = []PersonProfile{single}
	}
	if len(profiles) == 0 {
		return nil, eris.New("crustdata: enrich returned no profile")
	}

	return &profiles[0], nil
}

func (c *httpClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "crustdata: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "crustdata: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return eris.Wrap(err, "crustdata: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "crustdata: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("crustdata: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "crustdata: unmarshal response")
	}

	return nil
}
