package model

import "time"

// Contact is a person at a target account, sourced from the person database.
// LinkedIn URL is the identity key for upserts.
type Contact struct {
	ID                string     `json:"id"`
	CompanyID         string     `json:"company_id"`
	Name              string     `json:"name"`
	Title             string     `json:"title"`
	LinkedIn          string     `json:"linkedin"`
	BusinessEmail     string     `json:"business_email,omitempty"`
	EmailVerified     bool       `json:"email_verified"`
	Seniority         string     `json:"seniority,omitempty"`
	FunctionCategory  string     `json:"function_category,omitempty"`
	Region            string     `json:"region,omitempty"`
	Headline          string     `json:"headline,omitempty"`
	YearsExperience   float64    `json:"years_experience,omitempty"`
	RecentJobChange   bool       `json:"recent_job_change"`
	CompanyDomain     string     `json:"company_domain"`
	CrustdataPersonID string     `json:"crustdata_person_id,omitempty"`
	LastEnrichedAt    *time.Time `json:"last_enriched_at,omitempty"`
	LastCampaignAdded *time.Time `json:"last_campaign_added_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Campaign groups contacts and message templates for an outreach sequence.
type Campaign struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CampaignMessage is one step in a campaign's outreach sequence.
type CampaignMessage struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	Channel    string `json:"channel"` // "email" or "linkedin"
	StepNumber int    `json:"step_number"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
}

// SavedFilter is a named discovery filter preset.
type SavedFilter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Mode      string    `json:"mode"`    // "indb" or "linkedin"
	Filters   string    `json:"filters"` // JSON-encoded filter list
	UpdatedAt time.Time `json:"updated_at"`
}
