package model

import (
	"strconv"
	"time"
)

type Status string

const (
	StatusPriority Status = "PRIORITAIRE"
	StatusPending  Status = "EN ATTENTE"
)

const DateLayout = "2006-01-02 15:04"

// ApplicationColumns is the fixed column order of every application store.
var ApplicationColumns = []string{"Date", "Name", "Email", "Phone", "Age", "Nationality", "City",
	"Position", "Level", "Budget", "Passport", "Video", "Score", "Status"}

// ScoredApplication is appended once to a store and never mutated.
type ScoredApplication struct {
	ID          string           `json:"id"`
	SubmittedAt time.Time        `json:"submitted_at"`
	Profile     ApplicantProfile `json:"profile"`
	BudgetLabel string           `json:"budget_label"`
	Score       int              `json:"score"`
	Status      Status           `json:"status"`
}

func (a *ScoredApplication) Priority() bool {
	return a.Status == StatusPriority
}

// Row renders the application in ApplicationColumns order.
func (a *ScoredApplication) Row() []string {
	p := a.Profile
	budget := a.BudgetLabel
	if budget == "" {
		budget = p.Budget.String()
	}
	return []string{
		a.SubmittedAt.Format(DateLayout),
		p.Name,
		p.Email,
		p.Phone,
		strconv.Itoa(p.Age),
		p.Nationality,
		p.City,
		p.Position.String(),
		p.Level.String(),
		budget,
		PassportLabel(p.Passport),
		p.Video,
		strconv.Itoa(a.Score),
		string(a.Status),
	}
}
