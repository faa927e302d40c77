package comps

import "math"

// Weights holds the relative importance of each similarity factor.
// A valid weight set is non-negative and sums to 1.0.
type Weights struct {
	Distance     float64 `json:"distance"`
	SquareFeet   float64 `json:"square_feet"`
	Price        float64 `json:"price"`
	Bedrooms     float64 `json:"bedrooms"`
	Bathrooms    float64 `json:"bathrooms"`
	YearBuilt    float64 `json:"year_built"`
	PropertyType float64 `json:"property_type"`
}

// DefaultWeights returns the standard factor weighting.
func DefaultWeights() Weights {
	return Weights{
		Distance:     0.15,
		SquareFeet:   0.25,
		Price:        0.20,
		Bedrooms:     0.15,
		Bathrooms:    0.10,
		YearBuilt:    0.10,
		PropertyType: 0.05,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Distance + w.SquareFeet + w.Price + w.Bedrooms + w.Bathrooms +
		w.YearBuilt + w.PropertyType
}

// IsNormalized reports whether the weights are non-negative and sum to 1
// within floating-point tolerance.
func (w Weights) IsNormalized() bool {
	for _, v := range []float64{w.Distance, w.SquareFeet, w.Price, w.Bedrooms,
		w.Bathrooms, w.YearBuilt, w.PropertyType} {
		if v < 0 {
			return false
		}
	}
	return math.Abs(w.Sum()-1.0) < 1e-6
}

// Normalized returns a copy with negative weights zeroed and the remainder
// scaled to sum to 1. A degenerate all-zero set falls back to the defaults.
func (w Weights) Normalized() Weights {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}
	n := Weights{
		Distance:     clamp(w.Distance),
		SquareFeet:   clamp(w.SquareFeet),
		Price:        clamp(w.Price),
		Bedrooms:     clamp(w.Bedrooms),
		Bathrooms:    clamp(w.Bathrooms),
		YearBuilt:    clamp(w.YearBuilt),
		PropertyType: clamp(w.PropertyType),
	}
	total := n.Sum()
	if total <= 0 {
		return DefaultWeights()
	}
	n.Distance /= total
	n.SquareFeet /= total
	n.Price /= total
	n.Bedrooms /= total
	n.Bathrooms /= total
	n.YearBuilt /= total
	n.PropertyType /= total
	return n
}

// ScoringConfig is the complete, immutable parameter set for one comp run.
// Updates produce a new value; a config is never mutated while a run holds
// it, so concurrent runs with distinct configs are safe.
type ScoringConfig struct {
	Weights          Weights `json:"weights"`
	MaxDistanceMiles float64 `json:"max_distance_miles"`
	MinScore         float64 `json:"min_score"`
	MaxComps         int     `json:"max_comps"`
	MaxAgeDays       int     `json:"max_age_days"`
}

// DefaultScoringConfig returns the standard configuration.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Weights:          DefaultWeights(),
		MaxDistanceMiles: 5.0,
		MinScore:         0.7,
		MaxComps:         10,
		MaxAgeDays:       180,
	}
}

// WithWeights returns a copy of the config carrying the given weights,
// renormalized defensively.
func (c ScoringConfig) WithWeights(w Weights) ScoringConfig {
	c.Weights = w.Normalized()
	return c
}
