// Package exa is a client for the Exa search API, covering the two
// endpoints the screener uses: POST /search and POST /contents.
package exa

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

const defaultBaseURL = "https://api.exa.ai"

// Client performs searches and content crawls against the Exa API.
type Client interface {
	Search(ctx context.Context, req SearchRequest) ([]Result, error)
	Contents(ctx context.Context, req ContentsRequest) ([]Result, error)
}

// SearchRequest is the request body for POST /search.
type SearchRequest struct {
	Query              string           `json:"query"`
	Type               string           `json:"type,omitempty"`
	Category           string           `json:"category,omitempty"`
	NumResults         int              `json:"numResults,omitempty"`
	StartPublishedDate string           `json:"startPublishedDate,omitempty"`
	EndPublishedDate   string           `json:"endPublishedDate,omitempty"`
	IncludeDomains     []string         `json:"includeDomains,omitempty"`
	ExcludeDomains     []string         `json:"excludeDomains,omitempty"`
	Contents           *ContentsOptions `json:"contents,omitempty"`
}

// ContentsRequest is the request body for POST /contents.
type ContentsRequest struct {
	IDs              []string     `json:"ids"`
	Text             *TextOptions `json:"text,omitempty"`
	Subpages         int          `json:"subpages,omitempty"`
	SubpageTarget    []string     `json:"subpageTarget,omitempty"`
	MaxAgeHours      int          `json:"maxAgeHours,omitempty"`
	LivecrawlTimeout int          `json:"livecrawlTimeout,omitempty"`
}

// ContentsOptions selects what content comes back with each search result.
type ContentsOptions struct {
	Text       *TextOptions       `json:"text,omitempty"`
	Highlights *HighlightsOptions `json:"highlights,omitempty"`
	Summary    *SummaryOptions    `json:"summary,omitempty"`
}

// TextOptions bounds full-text extraction.
type TextOptions struct {
	MaxCharacters int `json:"maxCharacters,omitempty"`
}

// HighlightsOptions configures query-directed highlight extraction.
type HighlightsOptions struct {
	Query         string `json:"query,omitempty"`
	MaxCharacters int    `json:"maxCharacters,omitempty"`
}

// SummaryOptions configures model-generated summaries.
type SummaryOptions struct {
	Query string `json:"query,omitempty"`
}

// Result is a single search or contents result. Contents crawls populate
// Subpages on the main result when subpage crawling was requested.
type Result struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	Text          string   `json:"text,omitempty"`
	Highlights    []string `json:"highlights,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Subpages      []Result `json:"subpages,omitempty"`
}

type apiResponse struct {
	Results []Result `json:"results"`
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

// NewClient creates an Exa API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
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

func (c *httpClient) Search(ctx context.Context, req SearchRequest) ([]Result, error) {
	if req.Type == "" {
		req.Type = "auto"
	}
	if req.NumResults == 0 {
		req.NumResults = 10
	}
	return c.post(ctx, "/search", req)
}

func (c *httpClient) Contents(ctx context.Context, req ContentsRequest) ([]Result, error) {
	if len(req.IDs) == 0 {
		return nil, eris.New("exa: contents requires at least one url")
	}
	return c.post(ctx, "/contents", req)
}

func (c *httpClient) post(ctx context.Context, path string, payload any) ([]Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "exa: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "exa: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "exa: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "exa: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("exa: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "exa: unmarshal response")
	}

	return result.Results, nil
}
