package research

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/icp-screener/internal/config"
	"github.com/sells-group/icp-screener/internal/resilience"
	"github.com/sells-group/icp-screener/pkg/exa"
)

type fakeExa struct {
	mu       sync.Mutex
	searches []exa.SearchRequest
	crawls   []exa.ContentsRequest
	searchFn func(exa.SearchRequest) ([]exa.Result, error)
	crawlFn  func(exa.ContentsRequest) ([]exa.Result, error)
}

func (f *fakeExa) Search(_ context.Context, req exa.SearchRequest) ([]exa.Result, error) {
	f.mu.Lock()
	f.searches = append(f.searches, req)
	f.mu.Unlock()
	if f.searchFn != nil {
		return f.searchFn(req)
	}
	return nil, nil
}

func (f *fakeExa) Contents(_ context.Context, req exa.ContentsRequest) ([]exa.Result, error) {
	f.mu.Lock()
	f.crawls = append(f.crawls, req)
	f.mu.Unlock()
	if f.crawlFn != nil {
		return f.crawlFn(req)
	}
	return nil, nil
}

func testResearchConfig() config.ResearchConfig {
	return config.ResearchConfig{
		MaxAgeHours:          24,
		LivecrawlTimeoutMs:   12000,
		NewsWindowDays:       730,
		LeadershipWindowDays: 180,
	}
}

func noRetry() resilience.Profile {
	return resilience.Profile{Service: "exa", MaxAttempts: 1, BaseDelay: time.Millisecond}
}

func findSearch(t *testing.T, searches []exa.SearchRequest, substr string) exa.SearchRequest {
	t.Helper()
	var matches []exa.SearchRequest
	for _, s := range searches {
		if strings.Contains(s.Query, substr) {
			matches = append(matches, s)
		}
	}
	if len(matches) == 1 {
		return matches[0]
	}
	t.Fatalf("expected exactly one search with query containing %q", substr)
	return exa.SearchRequest{}
}

func TestGather_IssuesAllQueries(t *testing.T) {
	client := &fakeExa{
		crawlFn: func(_ exa.ContentsRequest) ([]exa.Result, error) {
			return []exa.Result{{
				Title: "Acme",
				URL:   "https://acme.io",
				Text:  "Never miss an appointment.",
				Subpages: []exa.Result{
					{Title: "Pricing", URL: "https://acme.io/pricing", Text: "Plans from $99."},
				},
			}}, nil
		},
		searchFn: func(req exa.SearchRequest) ([]exa.Result, error) {
			return []exa.Result{{Title: "Hit for " + req.Query, URL: "https://example.com"}}, nil
		},
	}
	g := NewGatherer(client, testResearchConfig(), noRetry())

	ev, err := g.Gather(context.Background(), "Acme", "acme.io")
	require.NoError(t, err)

	require.Len(t, client.crawls, 1)
	require.Len(t, client.searches, 7)

	crawl := client.crawls[0]
	assert.Equal(t, []string{"https://acme.io"}, crawl.IDs)
	require.NotNil(t, crawl.Text)
	assert.Equal(t, 12000, crawl.Text.MaxCharacters)
	assert.Equal(t, 5, crawl.Subpages)
	assert.Equal(t, []string{"product", "platform", "solutions", "pricing", "about"}, crawl.SubpageTarget)
	assert.Equal(t, 24, crawl.MaxAgeHours)
	assert.Equal(t, 12000, crawl.LivecrawlTimeout)

	news := findSearch(t, client.searches, "product launch announcement")
	assert.Equal(t, "news", news.Category)
	assert.Equal(t, 10, news.NumResults)
	assert.Equal(t, time.Now().AddDate(0, 0, -730).Format("2006-01-02"), news.StartPublishedDate)
	require.NotNil(t, news.Contents)
	require.NotNil(t, news.Contents.Highlights)
	assert.Equal(t, "product launch acquisition partnership rebrand new feature pivot", news.Contents.Highlights.Query)
	assert.Equal(t, 3000, news.Contents.Highlights.MaxCharacters)

	competitors := findSearch(t, client.searches, "vs competitors comparison")
	assert.Equal(t, 8, competitors.NumResults)

	funding := findSearch(t, client.searches, "funding round series investors")
	assert.Equal(t, 5, funding.NumResults)
	assert.Equal(t, 2000, funding.Contents.Highlights.MaxCharacters)

	linkedin := findSearch(t, client.searches, "company LinkedIn about")
	assert.Equal(t, []string{"linkedin.com"}, linkedin.IncludeDomains)
	assert.Equal(t, 3, linkedin.NumResults)
	require.NotNil(t, linkedin.Contents.Text)
	assert.Equal(t, 3000, linkedin.Contents.Text.MaxCharacters)

	var tweets exa.SearchRequest
	for _, s := range client.searches {
		if s.Query == "Acme CEO founder" {
			tweets = s
		}
	}
	assert.Equal(t, "tweet", tweets.Category)
	assert.Equal(t, 10, tweets.NumResults)
	require.NotNil(t, tweets.Contents.Text)
	assert.Equal(t, 1500, tweets.Contents.Text.MaxCharacters)

	ceo := findSearch(t, client.searches, "vision strategy direction")
	assert.Equal(t, time.Now().AddDate(0, 0, -180).Format("2006-01-02"), ceo.StartPublishedDate)

	assert.Contains(t, ev.Document, "=== HOMEPAGE CONTENT (crawled from https://acme.io via Exa) ===")
	assert.Contains(t, ev.Document, "Never miss an appointment.")
	assert.Contains(t, ev.Document, "PAGE: Pricing\nURL: https://acme.io/pricing\nPlans from $99.")
	assert.Contains(t, ev.Document, "=== NEWS & ANNOUNCEMENTS (last 24 months) ===")
	assert.Contains(t, ev.Document, "=== END CEO CONTENT ===")
	assert.Equal(t, "Never miss an appointment.", ev.Homepage)

	// Fixed section order.
	newsIdx := strings.Index(ev.Document, "=== NEWS")
	compIdx := strings.Index(ev.Document, "=== COMPETITOR")
	ceoIdx := strings.Index(ev.Document, "=== CEO/FOUNDER BLOG")
	assert.Less(t, strings.Index(ev.Document, "=== HOMEPAGE"), newsIdx)
	assert.Less(t, newsIdx, compIdx)
	assert.Less(t, compIdx, ceoIdx)
}

func TestGather_DegradesOnProviderFailure(t *testing.T) {
	client := &fakeExa{
		crawlFn: func(_ exa.ContentsRequest) ([]exa.Result, error) {
			return nil, errors.New("crawl down")
		},
		searchFn: func(_ exa.SearchRequest) ([]exa.Result, error) {
			return nil, errors.New("search down")
		},
	}
	g := NewGatherer(client, testResearchConfig(), noRetry())

	ev, err := g.Gather(context.Background(), "Acme", "https://acme.io")
	require.NoError(t, err)
	assert.Contains(t, ev.Document, "NOT AVAILABLE — Exa could not crawl this page.")
	assert.Contains(t, ev.Document, "No subpages found.")
	assert.Contains(t, ev.Document, "No results found.")
	assert.Empty(t, ev.Homepage)
}

func TestGather_SubpagesFromSiblingResults(t *testing.T) {
	client := &fakeExa{
		crawlFn: func(_ exa.ContentsRequest) ([]exa.Result, error) {
			return []exa.Result{
				{Title: "Home", URL: "https://acme.io", Text: "Homepage copy."},
				{URL: "https://acme.io/product", Summary: "Product overview."},
			}, nil
		},
	}
	g := NewGatherer(client, testResearchConfig(), noRetry())

	ev, err := g.Gather(context.Background(), "Acme", "acme.io")
	require.NoError(t, err)
	// Untitled subpage falls back to its URL; empty text falls back to summary.
	assert.Contains(t, ev.Document, "PAGE: https://acme.io/product\nURL: https://acme.io/product\nProduct overview.")
}

func TestGather_ContextCancelled(t *testing.T) {
	client := &fakeExa{}
	g := NewGatherer(client, testResearchConfig(), noRetry())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Gather(ctx, "Acme", "acme.io")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatResults(t *testing.T) {
	tests := []struct {
		name    string
		results []exa.Result
		want    string
	}{
		{
			name:    "empty",
			results: nil,
			want:    "No results found.",
		},
		{
			name: "text preferred over highlights",
			results: []exa.Result{{
				Title:         "Acme raises $40M",
				URL:           "https://news.example.com/acme",
				PublishedDate: "2025-03-14T09:00:00.000Z",
				Text:          "Full article text.",
				Highlights:    []string{"ignored"},
			}},
			want: "[1] Acme raises $40M (2025-03-14)\nURL: https://news.example.com/acme\nFull article text.",
		},
		{
			name: "highlights joined when no text",
			results: []exa.Result{{
				Title:      "Acme vs Beta",
				URL:        "https://reviews.example.com",
				Highlights: []string{"first highlight", "second highlight"},
			}},
			want: "[1] Acme vs Beta\nURL: https://reviews.example.com\nfirst highlight\nsecond highlight",
		},
		{
			name: "summary fallback and untitled",
			results: []exa.Result{{
				URL:     "https://example.com",
				Summary: "A summary.",
			}},
			want: "[1] Untitled\nURL: https://example.com\nA summary.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatResults(tt.results))
		})
	}
}

func TestFormatResults_JoinsWithSeparator(t *testing.T) {
	out := FormatResults([]exa.Result{
		{Title: "One", URL: "https://a.example.com", Text: "a"},
		{Title: "Two", URL: "https://b.example.com", Text: "b"},
	})
	assert.Equal(t, "[1] One\nURL: https://a.example.com\na\n\n---\n\n[2] Two\nURL: https://b.example.com\nb", out)
}
