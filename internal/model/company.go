// Package model defines the core screening entities: companies, research
// runs, scoring results, training examples, and the outreach records that
// hang off them.
package model

import (
	"net/url"
	"strings"
	"time"
)

// CompanyStatus represents where a company sits in the screening pipeline.
type CompanyStatus string

const (
	CompanyStatusPending    CompanyStatus = "pending"
	CompanyStatusProcessing CompanyStatus = "processing"
	CompanyStatusComplete   CompanyStatus = "complete"
	CompanyStatusError      CompanyStatus = "error"
)

// Company is a target account. Domain is the unique identity key.
type Company struct {
	ID            string        `json:"id"`
	Domain        string        `json:"domain"`
	Name          string        `json:"name"`
	Website       string        `json:"website"`
	Status        CompanyStatus `json:"status"`
	Step          string        `json:"step,omitempty"`
	LastError     string        `json:"last_error,omitempty"`
	ManualScore   string        `json:"manual_score,omitempty"`
	AccountStatus string        `json:"account_status,omitempty"`
	LastScreened  *time.Time    `json:"last_screened_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NormalizeDomain reduces a website string to its identity form: lowercase
// hostname with no scheme, no leading www., and no path.
// vitalize.care, www.vitalize.care, and https://vitalize.care/about all
// normalize to vitalize.care.
func NormalizeDomain(input string) string {
	raw := strings.TrimSpace(input)
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	if u, err := url.Parse(candidate); err == nil && u.Hostname() != "" {
		return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	}

	// Fallback for inputs url.Parse rejects.
	s := strings.ToLower(raw)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}

// CanonicalURL returns the https form of a website string.
func CanonicalURL(website string) string {
	w := strings.TrimSpace(website)
	if w == "" {
		return ""
	}
	if strings.HasPrefix(w, "http://") || strings.HasPrefix(w, "https://") {
		return w
	}
	return "https://" + w
}
