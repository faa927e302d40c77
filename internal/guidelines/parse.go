package guidelines

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	distanceRe = regexp.MustCompile(`within\s+(\d+(?:\.\d+)?)\s+miles?`)
	monthsRe   = regexp.MustCompile(`within\s+(\d+)\s+months?`)
	percentRe  = regexp.MustCompile(`within\s+(\d+)%`)
	withinRe   = regexp.MustCompile(`within\s+(\d+)`)
	byAmountRe = regexp.MustCompile(`by\s+(\d+(?:\.\d+)?)`)
)

// ParseInstruction extracts structured criteria from a natural-language
// instruction, e.g. "Comparables should be within 1 mile and sold within 6
// months" or "Bedrooms must match exactly, bathrooms can vary by 0.5".
// Keyword based; unrecognized text simply yields empty criteria.
func ParseInstruction(text string) (Criteria, float64) {
	var criteria Criteria
	priority := PriorityNormal
	lower := strings.ToLower(text)

	if strings.Contains(lower, "mile") {
		if m := distanceRe.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				criteria.MaxDistanceMiles = &v
			}
		}
	}

	if strings.Contains(lower, "month") {
		if m := monthsRe.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				criteria.MaxAgeMonths = &v
			}
		}
	}

	if strings.Contains(lower, "similar") && strings.Contains(lower, "lot") {
		if m := percentRe.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				criteria.LotSizeTolerancePct = &v
			}
		}
	}

	if strings.Contains(lower, "bedroom") {
		switch {
		case strings.Contains(lower, "match exactly") || strings.Contains(lower, "must match"):
			criteria.BedroomsExactMatch = true
		case strings.Contains(lower, "vary") || strings.Contains(lower, "within"):
			if m := withinRe.FindStringSubmatch(lower); m != nil {
				if v, err := strconv.Atoi(m[1]); err == nil {
					criteria.BedroomsTolerance = &v
				}
			}
		}
	}

	if strings.Contains(lower, "bathroom") {
		switch {
		case strings.Contains(lower, "match exactly"):
			criteria.BathroomsExactMatch = true
		case strings.Contains(lower, "vary"):
			if m := byAmountRe.FindStringSubmatch(lower); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					criteria.BathroomsTolerance = &v
				}
			}
		}
	}

	if strings.Contains(lower, "price") && strings.Contains(lower, "within") {
		if m := percentRe.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				criteria.PriceTolerancePct = &v
			}
		}
	}

	if strings.Contains(lower, "must") || strings.Contains(lower, "required") {
		priority = PriorityRequired
	} else if strings.Contains(lower, "prefer") || strings.Contains(lower, "should") {
		priority = PriorityPreferred
	}

	return criteria, priority
}
