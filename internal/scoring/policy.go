// Package scoring computes the applicant fitness score and priority tier.
package scoring

import (
	"fmt"
	"strings"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/model"
)

// AgeRange is inclusive on both ends.
type AgeRange struct {
	Min int
	Max int
}

func (r AgeRange) Contains(age int) bool {
	return age >= r.Min && age <= r.Max
}

// Policy holds every bucket bound of the additive score. The score depends only on age,
// budget, level and passport.
type Policy struct {
	Name string

	BudgetTopPoints    int
	BudgetSecondPoints int

	SweetSpot       AgeRange
	SweetSpotPoints int
	LowerRange      AgeRange
	LowerPoints     int
	OtherAgePoints  int

	ProPoints     int
	AmateurPoints int
	NoClubPoints  int

	PassportPoints int

	PriorityThreshold int
	BudgetLabels      []string
}

// VariantA is the first deployment: core target 15-19.
var VariantA = Policy{
	Name:               "A",
	BudgetTopPoints:    40,
	BudgetSecondPoints: 20,
	SweetSpot:          AgeRange{Min: 15, Max: 19},
	SweetSpotPoints:    20,
	LowerRange:         AgeRange{Min: 12, Max: 14},
	LowerPoints:        15,
	OtherAgePoints:     5,
	ProPoints:          30,
	AmateurPoints:      15,
	NoClubPoints:       5,
	PassportPoints:     10,
	PriorityThreshold:  70,
	BudgetLabels:       model.DefaultBudgetLabels,
}

// VariantB is the second deployment: core target 16-21, budget labels in plain text.
var VariantB = Policy{
	Name:               "B",
	BudgetTopPoints:    40,
	BudgetSecondPoints: 20,
	SweetSpot:          AgeRange{Min: 16, Max: 21},
	SweetSpotPoints:    20,
	LowerRange:         AgeRange{Min: 13, Max: 15},
	LowerPoints:        15,
	OtherAgePoints:     5,
	ProPoints:          30,
	AmateurPoints:      15,
	NoClubPoints:       5,
	PassportPoints:     10,
	PriorityThreshold:  70,
	BudgetLabels:       []string{"Moins de 500 EUR", "500 - 1000 EUR", "1000 - 2500 EUR", "Plus de 2500 EUR"},
}

// Score sums independent point buckets. Range is [10, 100] with the default points.
func (p *Policy) Score(age int, budget model.Budget, level model.Level, passport bool) int {
	score := 0

	switch budget {
	case model.BudgetOver2500:
		score += p.BudgetTopPoints
	case model.Budget1000To2500:
		score += p.BudgetSecondPoints
	}

	switch {
	case p.SweetSpot.Contains(age):
		score += p.SweetSpotPoints
	case p.LowerRange.Contains(age):
		score += p.LowerPoints
	default:
		score += p.OtherAgePoints
	}

	switch level {
	case model.ProAcademy:
		score += p.ProPoints
	case model.AmateurClub:
		score += p.AmateurPoints
	default:
		score += p.NoClubPoints
	}

	if passport {
		score += p.PassportPoints
	}

	return score
}

// Classify is inclusive at the threshold.
func (p *Policy) Classify(score int) model.Status {
	if score >= p.PriorityThreshold {
		return model.StatusPriority
	}
	return model.StatusPending
}

func (p *Policy) BudgetLabel(b model.Budget) string {
	if int(b) < len(p.BudgetLabels) {
		return p.BudgetLabels[b]
	}
	return b.String()
}

// FromConfig returns a copy of the named policy with the configured overrides applied.
func FromConfig(cfg *config.ScoringConfig) (*Policy, error) {
	var p Policy
	switch strings.ToUpper(strings.TrimSpace(cfg.Policy)) {
	case "", "A":
		p = VariantA
	case "B":
		p = VariantB
	default:
		return nil, fmt.Errorf("unknown scoring policy %q", cfg.Policy)
	}

	if cfg.PriorityThreshold > 0 {
		p.PriorityThreshold = cfg.PriorityThreshold
	}
	if len(cfg.SweetSpot) > 0 {
		r, err := ageRange("sweet_spot", cfg.SweetSpot)
		if err != nil {
			return nil, err
		}
		p.SweetSpot = r
	}
	if len(cfg.LowerRange) > 0 {
		r, err := ageRange("lower_range", cfg.LowerRange)
		if err != nil {
			return nil, err
		}
		p.LowerRange = r
	}
	if len(cfg.BudgetLabels) > 0 {
		if len(cfg.BudgetLabels) != len(model.DefaultBudgetLabels) {
			return nil, fmt.Errorf("budget_labels needs %d labels, got %d",
				len(model.DefaultBudgetLabels), len(cfg.BudgetLabels))
		}
		p.BudgetLabels = cfg.BudgetLabels
	}

	return &p, nil
}

func ageRange(name string, bounds []int) (AgeRange, error) {
	if len(bounds) != 2 || bounds[0] > bounds[1] {
		return AgeRange{}, fmt.Errorf("%s must be [min, max], got %v", name, bounds)
	}
	return AgeRange{Min: bounds[0], Max: bounds[1]}, nil
}
