package exa

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/icp-screener/internal/resilience"
)

func TestSearch(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   string
		transient bool
		wantLen   int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"results": [
					{"title": "Acme raises Series B", "url": "https://news.example.com/acme", "publishedDate": "2025-06-01T00:00:00.000Z", "highlights": ["raised $40M"]},
					{"title": "Acme vs Widgets Inc", "url": "https://reviews.example.com/acme", "text": "comparison text"}
				]
			}`,
			wantLen: 2,
		},
		{
			name:      "rate_limit",
			status:    http.StatusTooManyRequests,
			body:      `{"error": "rate limit exceeded"}`,
			wantErr:   "unexpected status 429",
			transient: true,
		},
		{
			name:      "server_error",
			status:    http.StatusInternalServerError,
			body:      `{"error": "internal server error"}`,
			wantErr:   "unexpected status 500",
			transient: true,
		},
		{
			name:    "bad_request",
			status:  http.StatusBadRequest,
			body:    `{"error": "invalid query"}`,
			wantErr: "unexpected status 400",
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{invalid json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/search", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))

			results, err := client.Search(context.Background(), SearchRequest{
				Query: "Acme product launch announcement partnership",
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, tt.transient, resilience.IsTransient(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, results, tt.wantLen)
			assert.Equal(t, "Acme raises Series B", results[0].Title)
			assert.Equal(t, []string{"raised $40M"}, results[0].Highlights)
		})
	}
}

func TestSearch_DefaultsApplied(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), SearchRequest{Query: "acme"})
	require.NoError(t, err)

	assert.Equal(t, "auto", got["type"])
	assert.Equal(t, float64(10), got["numResults"])
}

func TestSearch_CategoryAndWindow(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), SearchRequest{
		Query:              "Acme product launch",
		Category:           "news",
		NumResults:         10,
		StartPublishedDate: "2023-09-02",
		Contents: &ContentsOptions{
			Highlights: &HighlightsOptions{
				Query:         "product launch acquisition partnership",
				MaxCharacters: 3000,
			},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "news", got["category"])
	assert.Equal(t, "2023-09-02", got["startPublishedDate"])
	contents := got["contents"].(map[string]any)
	highlights := contents["highlights"].(map[string]any)
	assert.Equal(t, "product launch acquisition partnership", highlights["query"])
	assert.Equal(t, float64(3000), highlights["maxCharacters"])
}

func TestContents(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contents", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		_, _ = w.Write([]byte(`{
			"results": [{
				"title": "Acme — the widget platform",
				"url": "https://acme.example.com",
				"text": "homepage text",
				"subpages": [
					{"title": "Pricing", "url": "https://acme.example.com/pricing", "text": "pricing text"}
				]
			}]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	results, err := client.Contents(context.Background(), ContentsRequest{
		IDs:              []string{"https://acme.example.com"},
		Text:             &TextOptions{MaxCharacters: 12000},
		Subpages:         5,
		SubpageTarget:    []string{"product", "platform", "solutions", "pricing", "about"},
		MaxAgeHours:      24,
		LivecrawlTimeout: 12000,
	})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "homepage text", results[0].Text)
	require.Len(t, results[0].Subpages, 1)
	assert.Equal(t, "Pricing", results[0].Subpages[0].Title)

	assert.Equal(t, []any{"https://acme.example.com"}, got["ids"])
	assert.Equal(t, float64(5), got["subpages"])
	assert.Equal(t, []any{"product", "platform", "solutions", "pricing", "about"}, got["subpageTarget"])
	assert.Equal(t, float64(24), got["maxAgeHours"])
	assert.Equal(t, float64(12000), got["livecrawlTimeout"])
	text := got["text"].(map[string]any)
	assert.Equal(t, float64(12000), text["maxCharacters"])
}

func TestContents_RequiresURL(t *testing.T) {
	client := NewClient("test-key")
	_, err := client.Contents(context.Background(), ContentsRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one url")
}
