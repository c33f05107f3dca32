package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/icp-screener/internal/model"
	"github.com/sells-group/icp-screener/internal/store"
	"github.com/sells-group/icp-screener/pkg/instantly"
)

// ErrNoLeads is returned when a campaign has no contacts with email
// addresses to push.
var ErrNoLeads = eris.New("discovery: no contacts with email addresses in this campaign")

// Pusher exports campaign contacts to an Instantly campaign.
type Pusher struct {
	instantly instantly.Client
	store     store.Store
}

// NewPusher creates a Pusher.
func NewPusher(c instantly.Client, st store.Store) *Pusher {
	return &Pusher{instantly: c, store: st}
}

// PushResult summarizes a campaign push.
type PushResult struct {
	Leads     int `json:"leads"`
	Templates int `json:"templates"`
}

// Push sends every emailable contact of the local campaign to the Instantly
// campaign, in chunks of at most the API's per-call lead cap. The campaign's
// email messages become per-lead custom variables (email_N_subject/body,
// numbered by ascending step).
func (p *Pusher) Push(ctx context.Context, campaignID, instantlyCampaignID string) (*PushResult, error) {
	contacts, err := p.store.ListCampaignContacts(ctx, campaignID)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: list campaign contacts")
	}

	messages, err := p.store.ListCampaignMessages(ctx, campaignID)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: list campaign messages")
	}

	leads, templates, err := p.buildLeads(ctx, contacts, messages)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, ErrNoLeads
	}

	for start := 0; start < len(leads); start += instantly.MaxLeadsPerRequest {
		end := start + instantly.MaxLeadsPerRequest
		if end > len(leads) {
			end = len(leads)
		}
		if _, err := p.instantly.AddLeads(ctx, instantlyCampaignID, leads[start:end]); err != nil {
			return nil, eris.Wrapf(err, "discovery: push leads %d-%d", start, end)
		}
	}

	zap.L().Info("campaign pushed",
		zap.String("instantly_campaign", instantlyCampaignID),
		zap.Int("leads", len(leads)),
		zap.Int("templates", templates),
	)
	return &PushResult{Leads: len(leads), Templates: templates}, nil
}

// buildLeads converts emailable contacts to leads carrying the campaign's
// email templates as custom variables.
func (p *Pusher) buildLeads(ctx context.Context, contacts []model.Contact, messages []model.CampaignMessage) ([]instantly.Lead, int, error) {
	variables, templates := emailVariables(messages)

	companyNames := map[string]string{}
	leads := make([]instantly.Lead, 0, len(contacts))
	for _, c := range contacts {
		if c.BusinessEmail == "" {
			continue
		}

		name, ok := companyNames[c.CompanyID]
		if !ok && c.CompanyID != "" {
			company, err := p.store.GetCompany(ctx, c.CompanyID)
			if err != nil {
				return nil, 0, eris.Wrapf(err, "discovery: resolve company for %s", c.Name)
			}
			if company != nil {
				name = company.Name
			}
			companyNames[c.CompanyID] = name
		}

		first, last := splitName(c.Name)
		leads = append(leads, instantly.Lead{
			Email:       c.BusinessEmail,
			FirstName:   first,
			LastName:    last,
			CompanyName: name,
			Title:       c.Title,
			LinkedInURL: c.LinkedIn,
			Variables:   variables,
		})
	}
	return leads, templates, nil
}

// emailVariables renders email messages, ordered by step, into the
// email_N_subject / email_N_body variable pairs. N is the position in the
// ordered email sequence, not the raw step number.
func emailVariables(messages []model.CampaignMessage) (map[string]string, int) {
	emails := make([]model.CampaignMessage, 0, len(messages))
	for _, m := range messages {
		if m.Channel == "email" {
			emails = append(emails, m)
		}
	}
	sort.SliceStable(emails, func(i, j int) bool { return emails[i].StepNumber < emails[j].StepNumber })

	if len(emails) == 0 {
		return nil, 0
	}
	vars := make(map[string]string, len(emails)*2)
	for i, m := range emails {
		vars[fmt.Sprintf("email_%d_subject", i+1)] = m.Subject
		vars[fmt.Sprintf("email_%d_body", i+1)] = m.Body
	}
	return vars, len(emails)
}

func splitName(full string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(full))
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
