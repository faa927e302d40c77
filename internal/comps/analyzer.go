package comps

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"compsight/server/internal/geo"
	"compsight/server/internal/models"
)

// relaxedThresholdFactor lowers the minimum score when the subject itself is
// missing bedrooms, bathrooms, or a list price: strict matching on absent
// data would reject every candidate.
const relaxedThresholdFactor = 0.8

// Analyzer finds, scores, adjusts, and aggregates comparable properties for
// a subject property. It performs no I/O and holds no mutable state, so one
// analyzer may serve concurrent valuation runs.
type Analyzer struct {
	cfg    ScoringConfig
	scorer Scorer
	logger *logrus.Logger
	now    func() time.Time
}

// NewAnalyzer creates an analyzer with a rule-based scorer. Weights that do
// not sum to 1 are renormalized with a logged warning rather than rejected.
func NewAnalyzer(cfg ScoringConfig, logger *logrus.Logger) *Analyzer {
	if logger == nil {
		logger = logrus.New()
	}
	if !cfg.Weights.IsNormalized() {
		logger.WithField("sum", cfg.Weights.Sum()).Warn("Scoring weights do not sum to 1, renormalizing")
		cfg.Weights = cfg.Weights.Normalized()
	}
	return &Analyzer{
		cfg:    cfg,
		scorer: NewRuleBasedScorer(cfg),
		logger: logger,
		now:    time.Now,
	}
}

// WithScorer returns a copy of the analyzer using the given scorer (e.g. a
// LearnedScorer backed by a trained model).
func (a *Analyzer) WithScorer(scorer Scorer) *Analyzer {
	clone := *a
	clone.scorer = scorer
	return &clone
}

// Config returns the analyzer's scoring configuration.
func (a *Analyzer) Config() ScoringConfig {
	return a.cfg
}

// FindComps selects up to maxComps comparable properties for the subject,
// applies dollar adjustments to each, and aggregates them into a valuation
// estimate. Missing data never fails a run: degenerate input produces a
// valid result with low or zero confidence. maxComps <= 0 uses the
// configured default.
func (a *Analyzer) FindComps(subject *models.Property, candidates []models.Property, maxComps int) models.CompResult {
	result := models.CompResult{
		SubjectProperty:      *subject,
		ComparableProperties: []models.CompProperty{},
	}
	if len(candidates) == 0 {
		return result
	}

	if maxComps <= 0 {
		maxComps = a.cfg.MaxComps
	}

	minScore := a.cfg.MinScore
	if subject.Bedrooms == nil || subject.Bathrooms == nil || subject.ListPrice == nil {
		minScore *= relaxedThresholdFactor
	}

	var comps []models.CompProperty
	for i := range candidates {
		candidate := &candidates[i]

		if candidate.MLSNumber == subject.MLSNumber {
			continue
		}

		distance := geo.PropertyDistanceMiles(subject, candidate)
		if distance != nil && *distance > a.cfg.MaxDistanceMiles {
			continue
		}

		score, reasons := a.scorer.Score(subject, candidate)
		if score < minScore {
			continue
		}

		comp := models.CompProperty{
			Property:        *candidate,
			SimilarityScore: score,
			DistanceMiles:   distance,
			MatchReasons:    reasons,
		}

		if subject.ListPrice != nil {
			if compPrice := candidate.SalePrice(); compPrice != nil {
				diff := *compPrice - *subject.ListPrice
				pct := diff / *subject.ListPrice * 100
				comp.PriceDifference = &diff
				comp.PriceDifferencePercent = &pct
			}
		}

		comps = append(comps, comp)
	}

	// Best matches first; ties keep candidate order.
	sort.SliceStable(comps, func(i, j int) bool {
		return comps[i].SimilarityScore > comps[j].SimilarityScore
	})
	if len(comps) > maxComps {
		comps = comps[:maxComps]
	}

	now := a.now()
	for i := range comps {
		adjustments := CalculateAdjustments(subject, &comps[i].Property, now)
		comps[i].Adjustments = adjustments
		comps[i].AdjustmentCount = len(adjustments)
		var total float64
		for _, adj := range adjustments {
			total += adj.Amount
		}
		comps[i].TotalAdjustmentAmount = total
		if price := comps[i].Property.SalePrice(); price != nil {
			adjusted := *price + total
			comps[i].AdjustedPrice = &adjusted
		}
	}

	if len(comps) == 0 {
		return result
	}
	result.ComparableProperties = comps

	a.aggregate(subject, comps, &result)
	return result
}

// aggregate fills in the weighted valuation statistics. Adjusted prices are
// preferred; raw sold-or-list prices are the fallback when no comp could be
// adjusted at all.
func (a *Analyzer) aggregate(subject *models.Property, comps []models.CompProperty, result *models.CompResult) {
	var adjusted []models.CompProperty
	for _, cp := range comps {
		if cp.AdjustedPrice != nil {
			adjusted = append(adjusted, cp)
		}
	}

	if len(adjusted) > 0 {
		// Per-comp weight rewards similarity and penalizes comps that
		// needed many or large adjustments.
		weights := make([]float64, len(adjusted))
		var totalWeight float64
		for i, cp := range adjusted {
			countWeight := 1.0 / (1.0 + float64(cp.AdjustmentCount)*0.1)
			sizeWeight := 1.0 / (1.0 + math.Abs(cp.TotalAdjustmentAmount)/(*cp.AdjustedPrice*0.01))
			weights[i] = cp.SimilarityScore * countWeight * sizeWeight
			totalWeight += weights[i]
		}
		if totalWeight > 0 {
			for i := range weights {
				weights[i] /= totalWeight
			}
		} else {
			for i := range weights {
				weights[i] = 1.0 / float64(len(weights))
			}
		}

		var avgPrice float64
		for i, cp := range adjusted {
			avgPrice += *cp.AdjustedPrice * weights[i]
		}
		result.AveragePrice = &avgPrice

		var avgPricePerSqft float64
		haveSqft := false
		for i, cp := range adjusted {
			if cp.Property.SquareFeet != nil && *cp.Property.SquareFeet > 0 {
				avgPricePerSqft += *cp.AdjustedPrice / float64(*cp.Property.SquareFeet) * weights[i]
				haveSqft = true
			}
		}
		if haveSqft {
			result.AveragePricePerSqft = &avgPricePerSqft
			if subject.SquareFeet != nil && *subject.SquareFeet > 0 {
				estimated := avgPricePerSqft * float64(*subject.SquareFeet)
				result.EstimatedValue = &estimated
			}
		}

		confidence := baseConfidence(comps)
		if len(adjusted) > 1 {
			prices := make([]float64, len(adjusted))
			for i, cp := range adjusted {
				prices[i] = *cp.AdjustedPrice
			}
			m := mean(prices)
			if m > 0 {
				cv := stdDev(prices) / m
				confidence *= math.Max(0.5, 1.0-cv)
			}
		}
		result.ConfidenceScore = confidence
		return
	}

	// No comp could be adjusted: fall back to raw prices.
	var rawPrices []float64
	var sqftPrices []float64
	for _, cp := range comps {
		price := cp.Property.SalePrice()
		if price == nil {
			continue
		}
		rawPrices = append(rawPrices, *price)
		if cp.Property.SquareFeet != nil && *cp.Property.SquareFeet > 0 {
			sqftPrices = append(sqftPrices, *price/float64(*cp.Property.SquareFeet))
		}
	}
	if len(rawPrices) == 0 {
		return
	}

	avgPrice := mean(rawPrices)
	result.AveragePrice = &avgPrice
	if len(sqftPrices) > 0 {
		avgPricePerSqft := mean(sqftPrices)
		result.AveragePricePerSqft = &avgPricePerSqft
		if subject.SquareFeet != nil && *subject.SquareFeet > 0 {
			estimated := avgPricePerSqft * float64(*subject.SquareFeet)
			result.EstimatedValue = &estimated
		}
	}
	result.ConfidenceScore = baseConfidence(comps)
}

// baseConfidence is comp count (saturating at 10) times mean similarity.
func baseConfidence(comps []models.CompProperty) float64 {
	scores := make([]float64, len(comps))
	for i, cp := range comps {
		scores[i] = cp.SimilarityScore
	}
	return math.Min(1.0, float64(len(comps))/10.0) * mean(scores)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
