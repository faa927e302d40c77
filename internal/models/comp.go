package models

import "time"

// Adjustment categories, per appraisal convention.
const (
	AdjustmentSquareFootage = "Square Footage"
	AdjustmentBedrooms      = "Bedrooms"
	AdjustmentBathrooms     = "Bathrooms"
	AdjustmentLotSize       = "Lot Size"
	AdjustmentAge           = "Age"
	AdjustmentTime          = "Time"
	AdjustmentConcessions   = "Concessions"
)

// Adjustment is a dollar amount applied to a comparable property's price to
// account for one specific difference from the subject. Positive amounts add
// to the comp's price (comp is worse than subject), negative amounts
// subtract (comp is better).
type Adjustment struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Reason      string  `json:"reason"`
}

// CompProperty is one candidate property scored and adjusted against a
// subject property.
type CompProperty struct {
	Property               Property     `json:"property"`
	SimilarityScore        float64      `json:"similarity_score"`
	DistanceMiles          *float64     `json:"distance_miles"`
	PriceDifference        *float64     `json:"price_difference"`
	PriceDifferencePercent *float64     `json:"price_difference_percent"`
	MatchReasons           []string     `json:"match_reasons"`
	Adjustments            []Adjustment `json:"adjustments"`
	AdjustedPrice          *float64     `json:"adjusted_price"`
	TotalAdjustmentAmount  float64      `json:"total_adjustment_amount"`
	AdjustmentCount        int          `json:"adjustment_count"`
}

// CompResult is the outcome of a comp analysis for one subject property.
// Comparable properties are ordered best similarity first.
type CompResult struct {
	SubjectProperty      Property       `json:"subject_property"`
	ComparableProperties []CompProperty `json:"comparable_properties"`
	AveragePrice         *float64       `json:"average_price"`
	AveragePricePerSqft  *float64       `json:"average_price_per_sqft"`
	EstimatedValue       *float64       `json:"estimated_value"`
	ConfidenceScore      float64        `json:"confidence_score"`
}

// ValuationRecord is a persisted comp run: enough input and output to
// repeat or audit the valuation later.
type ValuationRecord struct {
	ID             string     `json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	Subject        Property   `json:"subject"`
	Candidates     []Property `json:"candidates"`
	Result         CompResult `json:"result"`
	CompCount      int        `json:"comp_count"`
	EstimatedValue *float64   `json:"estimated_value"`
	Confidence     float64    `json:"confidence"`
}
