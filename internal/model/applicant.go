package model

import (
	"fmt"
	"strings"
)

type Position int

const (
	Forward Position = iota
	AttackingMidfielder
	DefensiveMidfielder
	CentreBack
	FullBack
	Goalkeeper
)

var (
	positionLabels = []string{"Attaquant (FW)", "Milieu Off. (CAM)", "Milieu Déf. (CDM)",
		"Défenseur Central (CB)", "Latéral (LB/RB)", "Gardien (GK)"}
	positionCodes = []string{"FW", "CAM", "CDM", "CB", "FB", "GK"}
)

func (p Position) String() string {
	return positionLabels[p]
}

func ParsePosition(s string) (Position, error) {
	i, err := parseEnum("position", s, positionLabels, positionCodes)
	return Position(i), err
}

// Level is the applicant's current competitive tier, best first.
type Level int

const (
	ProAcademy Level = iota
	AmateurClub
	NoClub
)

var (
	levelLabels = []string{"Académie Pro / D1-D2", "Club Amateur / Régional", "Quartier / Pas de club"}
	levelCodes  = []string{"pro", "amateur", "none"}
)

func (l Level) String() string {
	return levelLabels[l]
}

func ParseLevel(s string) (Level, error) {
	i, err := parseEnum("level", s, levelLabels, levelCodes)
	return Level(i), err
}

type Foot int

const (
	RightFoot Foot = iota
	LeftFoot
	BothFeet
)

var (
	footLabels = []string{"Droit", "Gauche", "Ambidextre"}
	footCodes  = []string{"right", "left", "both"}
)

func (f Foot) String() string {
	return footLabels[f]
}

func ParseFoot(s string) (Foot, error) {
	i, err := parseEnum("foot", s, footLabels, footCodes)
	return Foot(i), err
}

// Budget is an ordered funding bucket, lowest first.
type Budget int

const (
	BudgetUnder500 Budget = iota
	Budget500To1000
	Budget1000To2500
	BudgetOver2500
)

// DefaultBudgetLabels are the form labels of the first deployment. Scoring policies may carry
// their own label text for the same buckets.
var DefaultBudgetLabels = []string{"Moins de 500€", "500€ - 1000€", "1000€ - 2500€", "Plus de 2500€"}

var budgetCodes = []string{"lt500", "500-1000", "1000-2500", "gt2500"}

func (b Budget) String() string {
	return DefaultBudgetLabels[b]
}

// ParseBudget accepts a bucket code, a default label, or one of the extra labels.
func ParseBudget(s string, labels ...string) (Budget, error) {
	if len(labels) == len(budgetCodes) {
		if i, err := parseEnum("budget", s, labels, budgetCodes); err == nil {
			return Budget(i), nil
		}
	}
	i, err := parseEnum("budget", s, DefaultBudgetLabels, budgetCodes)
	return Budget(i), err
}

func ParsePassport(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oui", "yes", "true", "1":
		return true, nil
	case "non", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("unknown passport value %q", s)
}

func PassportLabel(ok bool) string {
	if ok {
		return "Oui"
	}
	return "Non"
}

func parseEnum(kind, s string, labels, codes []string) (int, error) {
	s = strings.TrimSpace(s)
	for i := range labels {
		if strings.EqualFold(s, labels[i]) || strings.EqualFold(s, codes[i]) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, s)
}

// ApplicantProfile is one form submission. It is never updated after creation.
type ApplicantProfile struct {
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required"`
	Phone       string   `json:"phone" validate:"required"`
	Age         int      `json:"age"`
	Nationality string   `json:"nationality"`
	City        string   `json:"city"`
	Position    Position `json:"position"`
	Level       Level    `json:"level"`
	Foot        Foot     `json:"foot"`
	Budget      Budget   `json:"budget"`
	Passport    bool     `json:"passport"`
	Video       string   `json:"video,omitempty"`
}
