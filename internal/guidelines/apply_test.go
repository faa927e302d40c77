package guidelines

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"compsight/server/internal/comps"
	"compsight/server/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestApply_NoGuidelinesReturnsBase(t *testing.T) {
	store := newTestStore(t)
	base := comps.DefaultScoringConfig()
	assert.Equal(t, base, store.Apply(base))
}

func TestApply_TightensDistanceAndAge(t *testing.T) {
	store := newTestStore(t)
	ok, err := store.AddInstruction("Use comps within 1 mile, sold within 3 months")
	assert.NoError(t, err)
	assert.True(t, ok)

	cfg := store.Apply(comps.DefaultScoringConfig())
	assert.Equal(t, 1.0, cfg.MaxDistanceMiles)
	assert.Equal(t, 90, cfg.MaxAgeDays)
}

func TestApply_NormalPriorityNeverLoosens(t *testing.T) {
	store := newTestStore(t)
	d := 8.0
	assert.NoError(t, store.Add(Guideline{
		Description: "Allow wide search",
		Criteria:    Criteria{MaxDistanceMiles: &d},
		Priority:    PriorityNormal,
	}))

	cfg := store.Apply(comps.DefaultScoringConfig())
	assert.Equal(t, 5.0, cfg.MaxDistanceMiles)
}

func TestApply_RequiredPriorityOverrides(t *testing.T) {
	store := newTestStore(t)
	d := 8.0
	assert.NoError(t, store.Add(Guideline{
		Description: "Rural market needs a wide net",
		Criteria:    Criteria{MaxDistanceMiles: &d},
		Priority:    PriorityRequired,
	}))

	cfg := store.Apply(comps.DefaultScoringConfig())
	assert.Equal(t, 8.0, cfg.MaxDistanceMiles)
}

func TestApply_BoostsMentionedWeights(t *testing.T) {
	store := newTestStore(t)
	ok, err := store.AddInstruction("Bedrooms must match exactly")
	assert.NoError(t, err)
	assert.True(t, ok)

	base := comps.DefaultScoringConfig()
	cfg := store.Apply(base)

	assert.True(t, cfg.Weights.IsNormalized())
	// Bedrooms gains relative to every unmentioned factor.
	assert.Greater(t, cfg.Weights.Bedrooms/cfg.Weights.SquareFeet,
		base.Weights.Bedrooms/base.Weights.SquareFeet)
	// Base is untouched.
	assert.Equal(t, comps.DefaultWeights(), base.Weights)
}

func TestFilterCandidates_OnlyRequiredCriteriaFilter(t *testing.T) {
	store := newTestStore(t)
	subject := models.Property{Bedrooms: intPtr(3)}
	candidates := []models.Property{
		{MLSNumber: "A", Bedrooms: intPtr(3)},
		{MLSNumber: "B", Bedrooms: intPtr(4)},
		{MLSNumber: "C"},
	}

	// Preferred priority: nothing is excluded.
	assert.NoError(t, store.Add(Guideline{
		Description: "Prefer same bedrooms",
		Criteria:    Criteria{BedroomsExactMatch: true},
		Priority:    PriorityPreferred,
	}))
	assert.Len(t, store.FilterCandidates(&subject, candidates), 3)

	// Required priority: mismatches drop, unknown bedroom counts pass.
	assert.NoError(t, store.Add(Guideline{
		Description: "Bedrooms must match exactly",
		Criteria:    Criteria{BedroomsExactMatch: true},
		Priority:    PriorityRequired,
	}))
	filtered := store.FilterCandidates(&subject, candidates)
	assert.Len(t, filtered, 2)
	assert.Equal(t, "A", filtered[0].MLSNumber)
	assert.Equal(t, "C", filtered[1].MLSNumber)
}

func TestFilterCandidates_PriceTolerance(t *testing.T) {
	store := newTestStore(t)
	pct := 10.0
	assert.NoError(t, store.Add(Guideline{
		Description: "Price must be within 10%",
		Criteria:    Criteria{PriceTolerancePct: &pct},
		Priority:    PriorityRequired,
	}))

	subject := models.Property{ListPrice: floatPtr(400000)}
	candidates := []models.Property{
		{MLSNumber: "NEAR", SoldPrice: floatPtr(420000)},
		{MLSNumber: "FAR", SoldPrice: floatPtr(500000)},
		{MLSNumber: "UNPRICED"},
	}

	filtered := store.FilterCandidates(&subject, candidates)
	assert.Len(t, filtered, 2)
	assert.Equal(t, "NEAR", filtered[0].MLSNumber)
	assert.Equal(t, "UNPRICED", filtered[1].MLSNumber)
}
