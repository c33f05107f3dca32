package model

import "time"

// TrainingExample is a human correction of one factor's score for one
// company, injected into future scoring prompts as a calibration example.
// At most one active example exists per (domain, factor) pair.
type TrainingExample struct {
	ID               string    `json:"id"`
	Domain           string    `json:"domain"`
	Factor           string    `json:"factor"` // "A".."F"
	CompanyName      string    `json:"company_name"`
	ResearchSnapshot string    `json:"research_snapshot"`
	Score            int       `json:"score"`
	Justification    string    `json:"justification"`
	CreatedAt        time.Time `json:"created_at"`
}
