package comps

import (
	"fmt"
	"math"

	"compsight/server/internal/geo"
	"compsight/server/internal/models"
)

// Scorer computes a 0-1 similarity score between a subject property and one
// candidate, plus human-readable reasons for factors that matched strongly.
type Scorer interface {
	Score(subject, candidate *models.Property) (float64, []string)
}

// matchReasonThreshold is the sub-score above which a continuous factor
// (distance, size, price) contributes a match reason.
const matchReasonThreshold = 0.7

// RuleBasedScorer scores candidates with a fixed weighted average over seven
// factors. Missing subject data scores neutral rather than penalizing the
// candidate: subject records from thin sources frequently lack bedroom or
// bathroom counts, and rejecting every candidate in that case is useless.
type RuleBasedScorer struct {
	cfg ScoringConfig
}

// NewRuleBasedScorer creates a scorer for the given config. Weights are
// normalized defensively.
func NewRuleBasedScorer(cfg ScoringConfig) *RuleBasedScorer {
	cfg.Weights = cfg.Weights.Normalized()
	return &RuleBasedScorer{cfg: cfg}
}

// Score implements Scorer.
func (s *RuleBasedScorer) Score(subject, candidate *models.Property) (float64, []string) {
	var reasons []string
	w := s.cfg.Weights

	type weighted struct {
		weight float64
		score  float64
	}
	var factors []weighted

	// Distance: closer is better, neutral without coordinates on both sides.
	if d := geo.PropertyDistanceMiles(subject, candidate); d != nil {
		score := math.Max(0, 1.0-*d/s.cfg.MaxDistanceMiles)
		factors = append(factors, weighted{w.Distance, score})
		if score > matchReasonThreshold {
			reasons = append(reasons, fmt.Sprintf("Close proximity (%.2f miles)", *d))
		}
	} else {
		factors = append(factors, weighted{w.Distance, 0.5})
	}

	// Square footage: 10% difference scores 0.8.
	if subject.SquareFeet != nil && candidate.SquareFeet != nil && *subject.SquareFeet > 0 {
		pctDiff := math.Abs(float64(*subject.SquareFeet-*candidate.SquareFeet)) / float64(*subject.SquareFeet)
		score := math.Max(0, 1.0-pctDiff*2)
		factors = append(factors, weighted{w.SquareFeet, score})
		if score > matchReasonThreshold {
			reasons = append(reasons, fmt.Sprintf("Similar size (%d sqft)", *candidate.SquareFeet))
		}
	} else {
		factors = append(factors, weighted{w.SquareFeet, 0.5})
	}

	// Price: candidate's sold-or-list price against the subject's list price.
	if subject.ListPrice != nil && *subject.ListPrice > 0 {
		if compPrice := candidate.SalePrice(); compPrice != nil {
			pctDiff := math.Abs(*compPrice-*subject.ListPrice) / *subject.ListPrice
			score := math.Max(0, 1.0-pctDiff*2)
			factors = append(factors, weighted{w.Price, score})
			if score > matchReasonThreshold {
				reasons = append(reasons, fmt.Sprintf("Similar price ($%.0f)", *compPrice))
			}
		} else {
			factors = append(factors, weighted{w.Price, 0.5})
		}
	} else {
		factors = append(factors, weighted{w.Price, 0.5})
	}

	// Bedrooms.
	switch {
	case subject.Bedrooms != nil && candidate.Bedrooms != nil:
		diff := abs(*subject.Bedrooms - *candidate.Bedrooms)
		switch {
		case diff == 0:
			factors = append(factors, weighted{w.Bedrooms, 1.0})
			reasons = append(reasons, fmt.Sprintf("Same bedrooms (%d)", *candidate.Bedrooms))
		case diff == 1:
			factors = append(factors, weighted{w.Bedrooms, 0.7})
		default:
			factors = append(factors, weighted{w.Bedrooms, 0.3})
		}
	case candidate.Bedrooms != nil:
		// Only the subject is missing data.
		factors = append(factors, weighted{w.Bedrooms, 0.6})
	default:
		factors = append(factors, weighted{w.Bedrooms, 0.5})
	}

	// Bathrooms.
	switch {
	case subject.Bathrooms != nil && candidate.Bathrooms != nil:
		diff := math.Abs(*subject.Bathrooms - *candidate.Bathrooms)
		switch {
		case diff == 0:
			factors = append(factors, weighted{w.Bathrooms, 1.0})
		case diff <= 0.5:
			factors = append(factors, weighted{w.Bathrooms, 0.8})
		case diff <= 1.0:
			factors = append(factors, weighted{w.Bathrooms, 0.5})
		default:
			factors = append(factors, weighted{w.Bathrooms, 0.2})
		}
	case candidate.Bathrooms != nil:
		factors = append(factors, weighted{w.Bathrooms, 0.6})
	default:
		factors = append(factors, weighted{w.Bathrooms, 0.5})
	}

	// Year built.
	if subject.YearBuilt != nil && candidate.YearBuilt != nil {
		diff := abs(*subject.YearBuilt - *candidate.YearBuilt)
		var score float64
		switch {
		case diff <= 5:
			score = 1.0
		case diff <= 10:
			score = 0.7
		case diff <= 20:
			score = 0.4
		default:
			score = 0.2
		}
		factors = append(factors, weighted{w.YearBuilt, score})
	} else {
		factors = append(factors, weighted{w.YearBuilt, 0.5})
	}

	// Property type.
	if subject.PropertyType == candidate.PropertyType {
		factors = append(factors, weighted{w.PropertyType, 1.0})
		reasons = append(reasons, fmt.Sprintf("Same property type (%s)", candidate.PropertyType))
	} else {
		factors = append(factors, weighted{w.PropertyType, 0.0})
	}

	var totalScore, totalWeight float64
	for _, f := range factors {
		totalScore += f.score * f.weight
		totalWeight += f.weight
	}
	if totalWeight <= 0 {
		return 0, reasons
	}
	return totalScore / totalWeight, reasons
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Model predicts a similarity score from a feature vector. A trained model
// (e.g. one built from user feedback) can replace the rule-based scoring at
// configuration time.
type Model interface {
	Predict(features []float64) (float64, error)
}

// LearnedScorer delegates scoring to an external model, falling back to
// rule-based scoring when no model is available or prediction fails. Match
// reasons always come from the rule-based pass; models only override the
// numeric score.
type LearnedScorer struct {
	model    Model
	fallback *RuleBasedScorer
	cfg      ScoringConfig
}

// NewLearnedScorer wraps a model with a rule-based fallback. A nil model is
// allowed and behaves exactly like the rule-based scorer.
func NewLearnedScorer(model Model, cfg ScoringConfig) *LearnedScorer {
	return &LearnedScorer{
		model:    model,
		fallback: NewRuleBasedScorer(cfg),
		cfg:      cfg,
	}
}

// Score implements Scorer.
func (s *LearnedScorer) Score(subject, candidate *models.Property) (float64, []string) {
	ruleScore, reasons := s.fallback.Score(subject, candidate)
	if s.model == nil {
		return ruleScore, reasons
	}
	prediction, err := s.model.Predict(ExtractFeatures(s.cfg, subject, candidate))
	if err != nil {
		return ruleScore, reasons
	}
	return math.Max(0, math.Min(1, prediction)), reasons
}

// ExtractFeatures builds the seven-element normalized feature vector used by
// learned models: distance, sqft diff, price diff, bedroom diff, bathroom
// diff, year diff, type match. Unknown values map to 1.0 (maximally
// dissimilar) so models never see sentinel zeros.
func ExtractFeatures(cfg ScoringConfig, subject, candidate *models.Property) []float64 {
	features := make([]float64, 0, 7)

	if d := geo.PropertyDistanceMiles(subject, candidate); d != nil && cfg.MaxDistanceMiles > 0 {
		features = append(features, *d/cfg.MaxDistanceMiles)
	} else {
		features = append(features, 1.0)
	}

	if subject.SquareFeet != nil && candidate.SquareFeet != nil && *subject.SquareFeet > 0 {
		features = append(features, math.Abs(float64(*subject.SquareFeet-*candidate.SquareFeet))/float64(*subject.SquareFeet))
	} else {
		features = append(features, 1.0)
	}

	if subject.ListPrice != nil && *subject.ListPrice > 0 {
		if compPrice := candidate.SalePrice(); compPrice != nil {
			features = append(features, math.Abs(*compPrice-*subject.ListPrice)/(*subject.ListPrice))
		} else {
			features = append(features, 1.0)
		}
	} else {
		features = append(features, 1.0)
	}

	if subject.Bedrooms != nil && candidate.Bedrooms != nil {
		denom := float64(*subject.Bedrooms)
		if denom < 1 {
			denom = 1
		}
		features = append(features, float64(abs(*subject.Bedrooms-*candidate.Bedrooms))/denom)
	} else {
		features = append(features, 1.0)
	}

	if subject.Bathrooms != nil && candidate.Bathrooms != nil {
		denom := *subject.Bathrooms
		if denom < 0.5 {
			denom = 0.5
		}
		features = append(features, math.Abs(*subject.Bathrooms-*candidate.Bathrooms)/denom)
	} else {
		features = append(features, 1.0)
	}

	if subject.YearBuilt != nil && candidate.YearBuilt != nil {
		features = append(features, math.Min(float64(abs(*subject.YearBuilt-*candidate.YearBuilt))/100.0, 1.0))
	} else {
		features = append(features, 1.0)
	}

	if subject.PropertyType == candidate.PropertyType {
		features = append(features, 1.0)
	} else {
		features = append(features, 0.0)
	}

	return features
}
