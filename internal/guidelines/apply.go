package guidelines

import (
	"math"

	"compsight/server/internal/comps"
	"compsight/server/internal/geo"
	"compsight/server/internal/models"
)

// maxWeightBoost caps how far guideline emphasis can shift any single
// factor weight before renormalization.
const maxWeightBoost = 0.2

// Apply derives a new scoring config from the base by folding in every
// stored guideline: distance and recency limits tighten (or override at
// required priority), and factors that guidelines mention repeatedly get a
// proportional weight boost. The base config is never mutated; callers swap
// the returned value in for subsequent runs.
func (s *Store) Apply(base comps.ScoringConfig) comps.ScoringConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.guidelines) == 0 {
		return base
	}

	cfg := base

	for _, g := range s.guidelines {
		if g.Criteria.MaxDistanceMiles != nil {
			d := *g.Criteria.MaxDistanceMiles
			if g.Priority >= PriorityRequired || d < cfg.MaxDistanceMiles {
				cfg.MaxDistanceMiles = d
			}
		}
		if g.Criteria.MaxAgeMonths != nil {
			days := *g.Criteria.MaxAgeMonths * 30
			if g.Priority >= PriorityRequired || days < cfg.MaxAgeDays {
				cfg.MaxAgeDays = days
			}
		}
	}

	// Weight emphasis: each guideline votes for the factors its criteria
	// touch, weighted by priority. Lot size has no scoring weight; its
	// mentions still dilute the boost pool.
	mentions := map[string]float64{}
	for _, g := range s.guidelines {
		c := g.Criteria
		if c.MaxDistanceMiles != nil {
			mentions["distance"] += g.Priority
		}
		if c.LotSizeTolerancePct != nil {
			mentions["lot_size"] += g.Priority
		}
		if c.BedroomsExactMatch || c.BedroomsTolerance != nil {
			mentions["bedrooms"] += g.Priority
		}
		if c.BathroomsExactMatch || c.BathroomsTolerance != nil {
			mentions["bathrooms"] += g.Priority
		}
		if c.PriceTolerancePct != nil {
			mentions["price"] += g.Priority
		}
	}

	var total float64
	for _, v := range mentions {
		total += v
	}
	if total > 0 {
		w := cfg.Weights
		boost := func(current, mention float64) float64 {
			if mention <= 0 {
				return current
			}
			return math.Min(1.0, current+mention/total*maxWeightBoost)
		}
		w.Distance = boost(w.Distance, mentions["distance"])
		w.Bedrooms = boost(w.Bedrooms, mentions["bedrooms"])
		w.Bathrooms = boost(w.Bathrooms, mentions["bathrooms"])
		w.Price = boost(w.Price, mentions["price"])
		cfg = cfg.WithWeights(w)
		s.logger.Infof("Updated scoring weights based on %d guidelines", len(s.guidelines))
	}

	return cfg
}

// FilterCandidates drops candidates that violate a required-priority
// criterion. Lower-priority guidelines never exclude a candidate here; they
// only influence scoring. Missing data on either side passes: a hard filter
// on an unknown value would reject on no evidence.
func (s *Store) FilterCandidates(subject *models.Property, candidates []models.Property) []models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.guidelines) == 0 {
		return candidates
	}

	filtered := make([]models.Property, 0, len(candidates))
	for i := range candidates {
		if s.passes(subject, &candidates[i]) {
			filtered = append(filtered, candidates[i])
		}
	}
	return filtered
}

func (s *Store) passes(subject, candidate *models.Property) bool {
	for _, g := range s.guidelines {
		if g.Priority < PriorityRequired {
			continue
		}
		c := g.Criteria

		if c.MaxDistanceMiles != nil {
			if d := geo.PropertyDistanceMiles(subject, candidate); d != nil && *d > *c.MaxDistanceMiles {
				return false
			}
		}

		if c.LotSizeTolerancePct != nil && subject.LotSizeSqft != nil && candidate.LotSizeSqft != nil && *subject.LotSizeSqft > 0 {
			pct := math.Abs(*subject.LotSizeSqft-*candidate.LotSizeSqft) / *subject.LotSizeSqft * 100
			if pct > *c.LotSizeTolerancePct {
				return false
			}
		}

		if subject.Bedrooms != nil && candidate.Bedrooms != nil {
			diff := *subject.Bedrooms - *candidate.Bedrooms
			if diff < 0 {
				diff = -diff
			}
			if c.BedroomsExactMatch && diff != 0 {
				return false
			}
			if c.BedroomsTolerance != nil && diff > *c.BedroomsTolerance {
				return false
			}
		}

		if subject.Bathrooms != nil && candidate.Bathrooms != nil {
			diff := math.Abs(*subject.Bathrooms - *candidate.Bathrooms)
			if c.BathroomsExactMatch && diff != 0 {
				return false
			}
			if c.BathroomsTolerance != nil && diff > *c.BathroomsTolerance {
				return false
			}
		}

		if c.PriceTolerancePct != nil && subject.ListPrice != nil && *subject.ListPrice > 0 {
			if compPrice := candidate.SalePrice(); compPrice != nil {
				pct := math.Abs(*compPrice-*subject.ListPrice) / *subject.ListPrice * 100
				if pct > *c.PriceTolerancePct {
					return false
				}
			}
		}
	}
	return true
}
