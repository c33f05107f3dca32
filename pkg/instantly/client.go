// Package instantly is a client for the Instantly v2 API, covering bulk
// lead import and campaign listing.
package instantly

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/icp-screener/internal/resilience"
)

const (
	defaultBaseURL = "https://api.instantly.ai/api/v2"

	// MaxLeadsPerRequest is the API's hard cap on a single add-leads call.
	MaxLeadsPerRequest = 1000
)

// Client covers the Instantly operations used by the campaign push flow.
type Client interface {
	AddLeads(ctx context.Context, campaignID string, leads []Lead) (*AddLeadsResponse, error)
	ListCampaigns(ctx context.Context) ([]Campaign, error)
}

// Lead is one lead to import. Variables become the campaign's custom
// merge variables (personalized subjects and bodies).
type Lead struct {
	Email       string            `json:"email"`
	FirstName   string            `json:"first_name,omitempty"`
	LastName    string            `json:"last_name,omitempty"`
	CompanyName string            `json:"company_name,omitempty"`
	Title       string            `json:"title,omitempty"`
	LinkedInURL string            `json:"linkedin_url,omitempty"`
	Website     string            `json:"website,omitempty"`
	Variables   map[string]string `json:"custom_variables,omitempty"`
}

type addLeadsRequest struct {
	CampaignID          string `json:"campaign_id"`
	Leads               []Lead `json:"leads"`
	SkipIfInWorkspace   bool   `json:"skip_if_in_workspace"`
	VerifyLeadsOnImport bool   `json:"verify_leads_on_import"`
}

// AddLeadsResponse reports how the import went.
type AddLeadsResponse struct {
	Status           string `json:"status,omitempty"`
	LeadsUploaded    int    `json:"leads_uploaded,omitempty"`
	InBlocklist      int    `json:"in_blocklist,omitempty"`
	SkippedCount     int    `json:"skipped_count,omitempty"`
	InvalidEmailsCnt int    `json:"invalid_email_count,omitempty"`
	DuplicateCount   int    `json:"duplicate_email_count,omitempty"`
}

// Campaign is one campaign from the listing endpoint.
type Campaign struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status int    `json:"status"`
}

type listCampaignsResponse struct {
	Items []Campaign `json:"items"`
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Instantly API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// AddLeads imports leads into a campaign. Leads already present anywhere in
// the workspace are skipped, and import-time verification is off so pushes
// complete synchronously.
func (c *httpClient) AddLeads(ctx context.Context, campaignID string, leads []Lead) (*AddLeadsResponse, error) {
	if campaignID == "" {
		return nil, eris.New("instantly: campaign id is required")
	}
	if len(leads) == 0 {
		return nil, eris.New("instantly: no leads provided")
	}
	if len(leads) > MaxLeadsPerRequest {
		return nil, eris.Errorf("instantly: maximum %d leads per request, got %d", MaxLeadsPerRequest, len(leads))
	}

	payload := addLeadsRequest{
		CampaignID:          campaignID,
		Leads:               leads,
		SkipIfInWorkspace:   true,
		VerifyLeadsOnImport: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "instantly: marshal request")
	}

	respBody, err := c.do(ctx, http.MethodPost, "/leads/add", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var result AddLeadsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "instantly: unmarshal response")
	}

	return &result, nil
}

// ListCampaigns returns active campaigns for the workspace.
func (c *httpClient) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	respBody, err := c.do(ctx, http.MethodGet, "/campaigns?limit=50&status=1", nil)
	if err != nil {
		return nil, err
	}

	var result listCampaignsResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "instantly: unmarshal response")
	}

	return result.Items, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, eris.Wrap(err, "instantly: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "instantly: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "instantly: read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := eris.Errorf("instantly: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	return respBody, nil
}
