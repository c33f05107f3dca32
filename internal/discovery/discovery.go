package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/icp-screener/internal/store"
	"github.com/sells-group/icp-screener/pkg/crustdata"
)

// ErrNoFilters is returned when a search has nothing to filter on.
var ErrNoFilters = eris.New("discovery: add at least one filter")

// Prospect is one discovered company, not yet in the screening queue.
type Prospect struct {
	Name            string  `json:"name"`
	Domain          string  `json:"domain"`
	Website         string  `json:"website"`
	Industry        string  `json:"industry"`
	Employees       int     `json:"employees"`
	FundingRound    string  `json:"funding_round"`
	TotalFundingUSD float64 `json:"total_funding_usd"`
	Location        string  `json:"location"`
}

// FundingPreview renders the funding columns for display, e.g.
// "$12.5M total (Series B)".
func (p Prospect) FundingPreview() string {
	if p.TotalFundingUSD > 0 {
		return fmt.Sprintf("$%.1fM total (%s)", p.TotalFundingUSD/1e6, p.FundingRound)
	}
	return p.FundingRound
}

// TeamSizePreview renders the headcount for display, e.g. "~120 employees".
func (p Prospect) TeamSizePreview() string {
	if p.Employees > 0 {
		return fmt.Sprintf("~%d employees", p.Employees)
	}
	return ""
}

// Page is one page of discovery results. InDB searches page by cursor;
// LinkedIn searches page by number.
type Page struct {
	Prospects  []Prospect `json:"prospects"`
	NextCursor string     `json:"next_cursor,omitempty"`
	PageNumber int        `json:"page,omitempty"`
	Total      int        `json:"total"`
}

// Discoverer searches Crustdata for companies matching a filter set.
type Discoverer struct {
	crust crustdata.Client
	store store.Store
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(c crustdata.Client, st store.Store) *Discoverer {
	return &Discoverer{crust: c, store: st}
}

// SearchInDB runs a company database search. Companies already in the store
// are excluded twice: once server-side through a not_in condition, and again
// locally in case the provider ignores it.
func (d *Discoverer) SearchInDB(ctx context.Context, inputs []FilterInput, limit int, cursor string) (*Page, error) {
	known, err := d.store.ListCompanyDomains(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: list known domains")
	}

	filters := BuildCompanyFilters(inputs, known)
	if filters == nil {
		return nil, ErrNoFilters
	}

	resp, err := d.crust.CompanySearch(ctx, crustdata.CompanySearchRequest{
		Filters: filters,
		Limit:   limit,
		Cursor:  cursor,
	})
	if err != nil {
		return nil, eris.Wrap(err, "discovery: company search")
	}

	prospects := mapRows(resp.Rows(), false, known)
	zap.L().Info("discovery search",
		zap.String("mode", "indb"),
		zap.Int("new", len(prospects)),
		zap.Int("total", resp.Total()),
	)
	return &Page{Prospects: prospects, NextCursor: resp.NextCursor, Total: resp.Total()}, nil
}

// SearchLinkedIn runs the LinkedIn company screen, which pages by number
// instead of cursor and returns sparser rows.
func (d *Discoverer) SearchLinkedIn(ctx context.Context, filters []crustdata.ScreenFilter, page, limit int) (*Page, error) {
	if len(filters) == 0 {
		return nil, ErrNoFilters
	}

	known, err := d.store.ListCompanyDomains(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: list known domains")
	}

	resp, err := d.crust.Screen(ctx, crustdata.ScreenRequest{
		Filters: filters,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "discovery: linkedin screen")
	}

	prospects := mapRows(resp.Rows(), true, known)
	zap.L().Info("discovery search",
		zap.String("mode", "linkedin"),
		zap.Int("page", page),
		zap.Int("new", len(prospects)),
		zap.Int("total", resp.Total()),
	)
	return &Page{Prospects: prospects, PageNumber: page, Total: resp.Total()}, nil
}

// AddToQueue upserts prospects as pending companies and reports how many
// were actually new. Re-adding a known domain never resets its status.
func (d *Discoverer) AddToQueue(ctx context.Context, prospects []Prospect) (int, error) {
	added := 0
	for _, p := range prospects {
		if p.Domain == "" {
			continue
		}
		existing, err := d.store.GetCompanyByDomain(ctx, p.Domain)
		if err != nil {
			return added, eris.Wrapf(err, "discovery: check domain %s", p.Domain)
		}
		if existing != nil {
			continue
		}
		if _, err := d.store.UpsertCompany(ctx, p.Domain, p.Name, p.Website); err != nil {
			return added, eris.Wrapf(err, "discovery: queue %s", p.Domain)
		}
		added++
	}
	zap.L().Info("prospects queued", zap.Int("added", added), zap.Int("offered", len(prospects)))
	return added, nil
}

// mapRows converts provider rows to prospects, dropping rows without a
// usable domain and rows whose domain is already known. The two endpoints
// use overlapping field names; fromScreen switches the fallbacks.
func mapRows(rows []crustdata.Company, fromScreen bool, known []string) []Prospect {
	knownSet := make(map[string]struct{}, len(known))
	for _, d := range known {
		knownSet[d] = struct{}{}
	}

	out := make([]Prospect, 0, len(rows))
	for _, co := range rows {
		raw := firstNonEmpty(co.WebsiteDomain, co.CompanyWebsiteDomain)
		if raw == "" && fromScreen {
			raw = co.Website
		}
		domain := cleanDomain(raw)
		if domain == "" {
			continue
		}
		if _, ok := knownSet[domain]; ok {
			continue
		}

		website := "https://" + domain

		industry := strings.Join(co.LinkedInIndustries, ", ")
		if industry == "" {
			industry = firstNonEmpty(co.Industry, co.LinkedInIndustry)
		}

		employees := co.EmployeeMetrics.LatestCount
		if employees == 0 {
			if fromScreen && co.CompanyHeadcount > 0 {
				employees = co.CompanyHeadcount
			} else {
				employees = co.EmployeeCount
			}
		}

		location := firstNonEmpty(co.HQLocation, co.Location)
		if location == "" && fromScreen {
			location = co.HQ
		}

		out = append(out, Prospect{
			Name:            firstNonEmpty(co.CompanyName, co.Name),
			Domain:          domain,
			Website:         website,
			Industry:        industry,
			Employees:       employees,
			FundingRound:    co.LastFundingRoundType,
			TotalFundingUSD: co.TotalInvestmentUSD,
			Location:        location,
		})
	}
	return out
}

func cleanDomain(raw string) string {
	d := strings.TrimSpace(raw)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	return strings.TrimSuffix(d, "/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
