// Package research implements the evidence-gathering and synthesis stages of
// the screening pipeline: fan out a fixed set of Exa queries for a company,
// compile the results into one evidence document, and have a small model
// organize that document into a structured research report.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/icp-screener/internal/config"
	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/resilience"
	"github.com/sells-group/icp-screener/pkg/exa"
)

// Evidence is the compiled raw-data document handed to synthesis, plus the
// homepage text on its own for logging and diagnostics.
type Evidence struct {
	Document string
	Homepage string
}

// Gatherer runs the per-company Exa research queries.
type Gatherer struct {
	exa   exa.Client
	cfg   config.ResearchConfig
	retry resilience.Profile
}

// NewGatherer creates a Gatherer. The retry profile applies per sub-query; a
// sub-query that still fails after retries degrades to its empty placeholder
// rather than failing the gather.
func NewGatherer(client exa.Client, cfg config.ResearchConfig, retry resilience.Profile) *Gatherer {
	return &Gatherer{exa: client, cfg: cfg, retry: retry}
}

// Gather runs the eight evidence queries concurrently and compiles the
// results into a single delimited document. It never returns an error from a
// provider: each failed sub-query contributes its placeholder text instead,
// so a partial outage degrades the evidence rather than killing the run.
func (g *Gatherer) Gather(ctx context.Context, companyName, website string) (Evidence, error) {
	fullURL := model.CanonicalURL(website)
	newsSince := time.Now().AddDate(0, 0, -g.cfg.NewsWindowDays).Format("2006-01-02")
	leadershipSince := time.Now().AddDate(0, 0, -g.cfg.LeadershipWindowDays).Format("2006-01-02")

	var (
		homepage    []exa.Result
		news        []exa.Result
		competitors []exa.Result
		caseStudies []exa.Result
		funding     []exa.Result
		linkedin    []exa.Result
		tweets      []exa.Result
		ceoContent  []exa.Result
	)

	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		homepage = g.contents(gctx, "homepage", exa.ContentsRequest{
			IDs:              []string{fullURL},
			Text:             &exa.TextOptions{MaxCharacters: 12000},
			Subpages:         5,
			SubpageTarget:    []string{"product", "platform", "solutions", "pricing", "about"},
			MaxAgeHours:      g.cfg.MaxAgeHours,
			LivecrawlTimeout: g.cfg.LivecrawlTimeoutMs,
		})
		return nil
	})
	grp.Go(func() error {
		news = g.search(gctx, "news", exa.SearchRequest{
			Query:              companyName + " product launch announcement partnership",
			Category:           "news",
			NumResults:         10,
			StartPublishedDate: newsSince,
			Contents: &exa.ContentsOptions{
				Highlights: &exa.HighlightsOptions{
					Query:         "product launch acquisition partnership rebrand new feature pivot",
					MaxCharacters: 3000,
				},
			},
		})
		return nil
	})
	grp.Go(func() error {
		competitors = g.search(gctx, "competitors", exa.SearchRequest{
			Query:      companyName + " vs competitors comparison review",
			NumResults: 8,
			Contents: &exa.ContentsOptions{
				Highlights: &exa.HighlightsOptions{
					Query:         "differentiator unique advantage capability comparison alternative",
					MaxCharacters: 3000,
				},
			},
		})
		return nil
	})
	grp.Go(func() error {
		caseStudies = g.search(gctx, "case_studies", exa.SearchRequest{
			Query:      companyName + " case study customer results",
			NumResults: 8,
			Contents: &exa.ContentsOptions{
				Highlights: &exa.HighlightsOptions{
					Query:         "results ROI reduced increased saved revenue cost metrics percentage",
					MaxCharacters: 3000,
				},
			},
		})
		return nil
	})
	grp.Go(func() error {
		funding = g.search(gctx, "funding", exa.SearchRequest{
			Query:      companyName + " funding round series investors team size",
			NumResults: 5,
			Contents: &exa.ContentsOptions{
				Highlights: &exa.HighlightsOptions{
					Query:         "raised funding series investors valuation team employees headcount",
					MaxCharacters: 2000,
				},
			},
		})
		return nil
	})
	grp.Go(func() error {
		linkedin = g.search(gctx, "linkedin", exa.SearchRequest{
			Query:          companyName + " company LinkedIn about",
			NumResults:     3,
			IncludeDomains: []string{"linkedin.com"},
			Contents: &exa.ContentsOptions{
				Text: &exa.TextOptions{MaxCharacters: 3000},
			},
		})
		return nil
	})
	grp.Go(func() error {
		tweets = g.search(gctx, "tweets", exa.SearchRequest{
			Query:      companyName + " CEO founder",
			Category:   "tweet",
			NumResults: 10,
			Contents: &exa.ContentsOptions{
				Text: &exa.TextOptions{MaxCharacters: 1500},
			},
		})
		return nil
	})
	grp.Go(func() error {
		ceoContent = g.search(gctx, "ceo_content", exa.SearchRequest{
			Query:              companyName + " CEO founder vision strategy direction",
			NumResults:         5,
			StartPublishedDate: leadershipSince,
			Contents: &exa.ContentsOptions{
				Highlights: &exa.HighlightsOptions{
					Query:         "company vision strategy direction product roadmap future",
					MaxCharacters: 3000,
				},
			},
		})
		return nil
	})

	if err := grp.Wait(); err != nil {
		return Evidence{}, err
	}
	if err := ctx.Err(); err != nil {
		return Evidence{}, err
	}

	zap.L().Info("evidence gathered",
		zap.String("company", companyName),
		zap.Int("homepage", len(homepage)),
		zap.Int("news", len(news)),
		zap.Int("competitors", len(competitors)),
		zap.Int("case_studies", len(caseStudies)),
		zap.Int("funding", len(funding)),
		zap.Int("linkedin", len(linkedin)),
		zap.Int("tweets", len(tweets)),
		zap.Int("ceo_content", len(ceoContent)),
	)

	var homepageText, subpagesText string
	if len(homepage) > 0 {
		main := homepage[0]
		homepageText = main.Text
		subpages := main.Subpages
		if len(subpages) == 0 {
			subpages = homepage[1:]
		}
		if len(subpages) > 0 {
			parts := make([]string, 0, len(subpages))
			for _, sp := range subpages {
				title := sp.Title
				if title == "" {
					title = sp.URL
				}
				body := sp.Text
				if body == "" {
					body = sp.Summary
				}
				parts = append(parts, fmt.Sprintf("PAGE: %s\nURL: %s\n%s", title, sp.URL, body))
			}
			subpagesText = strings.Join(parts, "\n\n---\n\n")
		}
	}
	if homepageText == "" {
		homepageText = "NOT AVAILABLE — Exa could not crawl this page."
	}
	if subpagesText == "" {
		subpagesText = "No subpages found."
	}

	doc := fmt.Sprintf(`=== HOMEPAGE CONTENT (crawled from %s via Exa) ===
%s
=== END HOMEPAGE CONTENT ===

=== PRODUCT / SUBPAGES (crawled from links on homepage) ===
%s
=== END PRODUCT / SUBPAGES ===

=== NEWS & ANNOUNCEMENTS (last 24 months) ===
%s
=== END NEWS ===

=== COMPETITOR COMPARISONS & REVIEWS ===
%s
=== END COMPETITORS ===

=== CASE STUDIES & CUSTOMER OUTCOMES ===
%s
=== END CASE STUDIES ===

=== FUNDING & COMPANY FACTS ===
%s
=== END FUNDING ===

=== LINKEDIN COMPANY INFO ===
%s
=== END LINKEDIN ===

=== CEO/FOUNDER TWEETS ===
%s
=== END TWEETS ===

=== CEO/FOUNDER BLOG, PODCAST & CONFERENCE CONTENT (last 6 months) ===
%s
=== END CEO CONTENT ===`,
		fullURL, homepageText, subpagesText,
		FormatResults(news), FormatResults(competitors), FormatResults(caseStudies),
		FormatResults(funding), FormatResults(linkedin), FormatResults(tweets),
		FormatResults(ceoContent))

	hp := ""
	if len(homepage) > 0 {
		hp = homepage[0].Text
	}
	return Evidence{Document: doc, Homepage: hp}, nil
}

func (g *Gatherer) search(ctx context.Context, kind string, req exa.SearchRequest) []exa.Result {
	results, err := resilience.DoVal(ctx, g.retry, func(ctx context.Context) ([]exa.Result, error) {
		return g.exa.Search(ctx, req)
	})
	if err != nil {
		zap.L().Warn("evidence query failed",
			zap.String("kind", kind),
			zap.String("query", req.Query),
			zap.Error(err),
		)
		return nil
	}
	return results
}

func (g *Gatherer) contents(ctx context.Context, kind string, req exa.ContentsRequest) []exa.Result {
	results, err := resilience.DoVal(ctx, g.retry, func(ctx context.Context) ([]exa.Result, error) {
		return g.exa.Contents(ctx, req)
	})
	if err != nil {
		zap.L().Warn("evidence crawl failed",
			zap.String("kind", kind),
			zap.Strings("urls", req.IDs),
			zap.Error(err),
		)
		return nil
	}
	return results
}

// FormatResults renders search results as numbered citation blocks: title,
// publish date, URL, then the best available content (full text, else
// highlights, else summary).
func FormatResults(results []exa.Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	blocks := make([]string, 0, len(results))
	for i, r := range results {
		content := r.Text
		if content == "" && len(r.Highlights) > 0 {
			content = strings.Join(r.Highlights, "\n")
		}
		if content == "" {
			content = r.Summary
		}
		date := ""
		if r.PublishedDate != "" {
			d := r.PublishedDate
			if len(d) > 10 {
				d = d[:10]
			}
			date = " (" + d + ")"
		}
		title := r.Title
		if title == "" {
			title = "Untitled"
		}
		blocks = append(blocks, fmt.Sprintf("[%d] %s%s\nURL: %s\n%s", i+1, title, date, r.URL, content))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}
