package scoring

import (
	"testing"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_Extremes(t *testing.T) {
	p := VariantA
	assert.Equal(t, 100, p.Score(17, model.BudgetOver2500, model.ProAcademy, true))
	assert.Equal(t, 10, p.Score(30, model.BudgetUnder500, model.NoClub, false))
}

func TestScore_Buckets(t *testing.T) {
	p := VariantA
	tests := []struct {
		name     string
		age      int
		budget   model.Budget
		level    model.Level
		passport bool
		want     int
	}{
		{"second budget bucket", 30, model.Budget1000To2500, model.NoClub, false, 30},
		{"low budget bucket", 30, model.Budget500To1000, model.NoClub, false, 10},
		{"sweet spot lower edge", 15, model.BudgetUnder500, model.NoClub, false, 25},
		{"sweet spot upper edge", 19, model.BudgetUnder500, model.NoClub, false, 25},
		{"lower range", 12, model.BudgetUnder500, model.NoClub, false, 20},
		{"lower range upper edge", 14, model.BudgetUnder500, model.NoClub, false, 20},
		{"too young", 11, model.BudgetUnder500, model.NoClub, false, 10},
		{"too old", 20, model.BudgetUnder500, model.NoClub, false, 10},
		{"amateur", 30, model.BudgetUnder500, model.AmateurClub, false, 20},
		{"passport only", 30, model.BudgetUnder500, model.NoClub, true, 20},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.Score(tc.age, tc.budget, tc.level, tc.passport))
		})
	}
}

func TestScore_RangeAndPurity(t *testing.T) {
	for _, p := range []Policy{VariantA, VariantB} {
		for age := 10; age <= 35; age++ {
			for b := model.BudgetUnder500; b <= model.BudgetOver2500; b++ {
				for l := model.ProAcademy; l <= model.NoClub; l++ {
					for _, passport := range []bool{true, false} {
						s := p.Score(age, b, l, passport)
						assert.GreaterOrEqual(t, s, 10)
						assert.LessOrEqual(t, s, 100)
						assert.Equal(t, s, p.Score(age, b, l, passport))
					}
				}
			}
		}
	}
}

func TestScore_VariantBAgeBands(t *testing.T) {
	a, b := VariantA, VariantB
	assert.Equal(t, 10, a.Score(21, model.BudgetUnder500, model.NoClub, false))
	assert.Equal(t, 25, b.Score(21, model.BudgetUnder500, model.NoClub, false))
	assert.Equal(t, 20, b.Score(15, model.BudgetUnder500, model.NoClub, false))
	assert.Equal(t, 20, a.Score(12, model.BudgetUnder500, model.NoClub, false))
	assert.Equal(t, 10, b.Score(12, model.BudgetUnder500, model.NoClub, false))
}

func TestClassify_InclusiveThreshold(t *testing.T) {
	p := VariantA
	assert.Equal(t, model.StatusPriority, p.Classify(70))
	assert.Equal(t, model.StatusPriority, p.Classify(100))
	assert.Equal(t, model.StatusPending, p.Classify(69))

	// 20 (age) + 30 (pro) + 20 (second budget) = 70
	assert.Equal(t, model.StatusPriority,
		p.Classify(p.Score(16, model.Budget1000To2500, model.ProAcademy, false)))
}

func TestFromConfig(t *testing.T) {
	p, err := FromConfig(&config.ScoringConfig{Policy: "b"})
	require.NoError(t, err)
	assert.Equal(t, "B", p.Name)
	assert.Equal(t, AgeRange{16, 21}, p.SweetSpot)

	p, err = FromConfig(&config.ScoringConfig{
		Policy:            "A",
		PriorityThreshold: 80,
		SweetSpot:         []int{14, 18},
		BudgetLabels:      []string{"a", "b", "c", "d"},
	})
	require.NoError(t, err)
	assert.Equal(t, 80, p.PriorityThreshold)
	assert.Equal(t, AgeRange{14, 18}, p.SweetSpot)
	assert.Equal(t, "d", p.BudgetLabel(model.BudgetOver2500))
	assert.Equal(t, AgeRange{15, 19}, VariantA.SweetSpot, "named policy must stay untouched")

	_, err = FromConfig(&config.ScoringConfig{Policy: "C"})
	assert.Error(t, err)
	_, err = FromConfig(&config.ScoringConfig{SweetSpot: []int{20, 10}})
	assert.Error(t, err)
	_, err = FromConfig(&config.ScoringConfig{BudgetLabels: []string{"x"}})
	assert.Error(t, err)
}
