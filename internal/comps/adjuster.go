package comps

import (
	"fmt"
	"math"
	"time"

	"compsight/server/internal/models"
)

// Adjustment rule constants, per appraisal convention. Rates are fractions
// of the comp's sold-or-list price.
const (
	minSqftDiff          = 50
	minLotDiffSqft       = 1000.0
	minBathDiff          = 0.5
	minAgeDiffYears      = 5
	minSaleAgeMonths     = 3.0
	fallbackPricePerSqft = 200.0
	bedroomRate          = 0.015
	bathroomRate         = 0.01
	lotRatePerSqft       = 0.00001
	depreciationRate     = 0.007 // per year of age difference
	appreciationRate     = 0.008 // per month since sale
)

// CalculateAdjustments computes the dollar adjustments that make one
// comparable property's price comparable to the subject. Sign convention:
// a positive amount means the comp is worse than the subject (older,
// smaller) and value is added back; negative means the comp is better and
// its price is reduced. Returns no adjustments when the comp has no known
// price. now anchors the time/market rule.
func CalculateAdjustments(subject, comp *models.Property, now time.Time) []models.Adjustment {
	var adjustments []models.Adjustment

	compPrice := comp.SalePrice()
	if compPrice == nil {
		return adjustments
	}

	// Price per sqft for size adjustments: prefer the subject's, fall back
	// to the comp's own, then to a flat market default.
	pricePerSqft := fallbackPricePerSqft
	if subject.ListPrice != nil && subject.SquareFeet != nil && *subject.SquareFeet > 0 {
		pricePerSqft = *subject.ListPrice / float64(*subject.SquareFeet)
	} else if comp.SquareFeet != nil && *comp.SquareFeet > 0 {
		pricePerSqft = *compPrice / float64(*comp.SquareFeet)
	}

	// 1. Square footage
	if subject.SquareFeet != nil && comp.SquareFeet != nil {
		sqftDiff := *comp.SquareFeet - *subject.SquareFeet
		if abs(sqftDiff) > minSqftDiff {
			amount := -float64(sqftDiff) * pricePerSqft
			if amount != 0 {
				direction := "smaller"
				if sqftDiff > 0 {
					direction = "larger"
				}
				adjustments = append(adjustments, models.Adjustment{
					Category:    models.AdjustmentSquareFootage,
					Description: fmt.Sprintf("Size difference: %+d sqft", sqftDiff),
					Amount:      amount,
					Reason:      fmt.Sprintf("Comp is %d sqft %s than subject", abs(sqftDiff), direction),
				})
			}
		}
	}

	// 2. Bedrooms
	if subject.Bedrooms != nil && comp.Bedrooms != nil {
		bedDiff := *comp.Bedrooms - *subject.Bedrooms
		if bedDiff != 0 {
			amount := -float64(bedDiff) * (*compPrice * bedroomRate)
			direction := "fewer"
			if bedDiff > 0 {
				direction = "more"
			}
			adjustments = append(adjustments, models.Adjustment{
				Category:    models.AdjustmentBedrooms,
				Description: fmt.Sprintf("Bedroom difference: %+d", bedDiff),
				Amount:      amount,
				Reason:      fmt.Sprintf("Comp has %d %s bedroom(s) than subject", abs(bedDiff), direction),
			})
		}
	}

	// 3. Bathrooms
	if subject.Bathrooms != nil && comp.Bathrooms != nil {
		bathDiff := *comp.Bathrooms - *subject.Bathrooms
		if math.Abs(bathDiff) >= minBathDiff {
			amount := -bathDiff * (*compPrice * bathroomRate)
			direction := "fewer"
			if bathDiff > 0 {
				direction = "more"
			}
			adjustments = append(adjustments, models.Adjustment{
				Category:    models.AdjustmentBathrooms,
				Description: fmt.Sprintf("Bathroom difference: %+.1f", bathDiff),
				Amount:      amount,
				Reason:      fmt.Sprintf("Comp has %.1f %s bathroom(s) than subject", math.Abs(bathDiff), direction),
			})
		}
	}

	// 4. Lot size
	if subject.LotSizeSqft != nil && comp.LotSizeSqft != nil {
		lotDiff := *comp.LotSizeSqft - *subject.LotSizeSqft
		if math.Abs(lotDiff) > minLotDiffSqft {
			amount := -lotDiff * (*compPrice * lotRatePerSqft)
			direction := "smaller"
			if lotDiff > 0 {
				direction = "larger"
			}
			adjustments = append(adjustments, models.Adjustment{
				Category:    models.AdjustmentLotSize,
				Description: fmt.Sprintf("Lot size difference: %+.0f sqft", lotDiff),
				Amount:      amount,
				Reason:      fmt.Sprintf("Comp lot is %.0f sqft %s than subject", math.Abs(lotDiff), direction),
			})
		}
	}

	// 5. Age: an older comp is worth less as-built, so value is added back;
	// a newer comp has its price reduced.
	if subject.YearBuilt != nil && comp.YearBuilt != nil {
		ageDiff := *comp.YearBuilt - *subject.YearBuilt
		if abs(ageDiff) > minAgeDiffYears {
			amount := *compPrice * depreciationRate * float64(abs(ageDiff))
			reason := fmt.Sprintf("Comp is %d years older than subject (depreciation adjustment)", ageDiff)
			if ageDiff < 0 {
				amount = -amount
				reason = fmt.Sprintf("Comp is %d years newer than subject (depreciation adjustment)", abs(ageDiff))
			}
			adjustments = append(adjustments, models.Adjustment{
				Category:    models.AdjustmentAge,
				Description: fmt.Sprintf("Age difference: %+d years", ageDiff),
				Amount:      amount,
				Reason:      reason,
			})
		}
	}

	// 6. Time/market. The amount is negative for sales older than three
	// months; this mirrors the long-standing production behavior, which
	// downstream estimates depend on, even though a market-appreciation
	// adjustment argues for the opposite sign.
	if comp.SoldDate != nil {
		monthsAgo := now.Sub(*comp.SoldDate).Hours() / 24.0 / 30.0
		if monthsAgo > minSaleAgeMonths {
			amount := -(*compPrice * appreciationRate * monthsAgo)
			adjustments = append(adjustments, models.Adjustment{
				Category:    models.AdjustmentTime,
				Description: fmt.Sprintf("Sale recency: %.1f months ago", monthsAgo),
				Amount:      amount,
				Reason:      fmt.Sprintf("Comp sold %.1f months ago; adjusting for market appreciation", monthsAgo),
			})
		}
	}

	// 7. Seller concessions: the recorded sale price understates true value
	// by the concession amount, so add it back.
	if comp.SellerConcessions != nil && *comp.SellerConcessions > 0 {
		adjustments = append(adjustments, models.Adjustment{
			Category:    models.AdjustmentConcessions,
			Description: fmt.Sprintf("Seller concessions: $%.0f", *comp.SellerConcessions),
			Amount:      *comp.SellerConcessions,
			Reason:      fmt.Sprintf("Seller paid $%.0f in concessions; adding back to sale price", *comp.SellerConcessions),
		})
	}

	return adjustments
}
