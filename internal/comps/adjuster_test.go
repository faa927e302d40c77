package comps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"compsight/server/internal/models"
)

func adjustmentByCategory(adjustments []models.Adjustment, category string) *models.Adjustment {
	for i := range adjustments {
		if adjustments[i].Category == category {
			return &adjustments[i]
		}
	}
	return nil
}

func TestCalculateAdjustments_SquareFootageSign(t *testing.T) {
	now := time.Now()
	// Comp 500 sqft larger at $150/sqft must subtract exactly $75,000.
	subject := models.Property{SquareFeet: intPtr(2500)}
	comp := models.Property{SquareFeet: intPtr(3000), SoldPrice: floatPtr(450000)}

	adjustments := CalculateAdjustments(&subject, &comp, now)
	adj := adjustmentByCategory(adjustments, models.AdjustmentSquareFootage)
	assert.NotNil(t, adj)
	assert.InDelta(t, -75000, adj.Amount, 1e-6)
}

func TestCalculateAdjustments_SquareFootageSmallDiffSkipped(t *testing.T) {
	subject := models.Property{SquareFeet: intPtr(2000), ListPrice: floatPtr(400000)}
	comp := models.Property{SquareFeet: intPtr(2040), SoldPrice: floatPtr(410000)}

	adjustments := CalculateAdjustments(&subject, &comp, time.Now())
	assert.Nil(t, adjustmentByCategory(adjustments, models.AdjustmentSquareFootage))
}

func TestCalculateAdjustments_PricePerSqftPreference(t *testing.T) {
	now := time.Now()

	// Subject list price and sqft known: use the subject's $200/sqft.
	subject := models.Property{SquareFeet: intPtr(2000), ListPrice: floatPtr(400000)}
	comp := models.Property{SquareFeet: intPtr(2100), SoldPrice: floatPtr(410000)}
	adj := adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentSquareFootage)
	assert.NotNil(t, adj)
	assert.InDelta(t, -20000, adj.Amount, 1e-6)

	// Subject has no list price: fall back to the comp's own rate.
	subject = models.Property{SquareFeet: intPtr(2000)}
	comp = models.Property{SquareFeet: intPtr(2100), SoldPrice: floatPtr(410000)}
	adj = adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentSquareFootage)
	assert.NotNil(t, adj)
	// Comp's own rate: 410000/2100.
	assert.InDelta(t, -100*410000.0/2100.0, adj.Amount, 1e-6)
}

func TestCalculateAdjustments_Bedrooms(t *testing.T) {
	subject := models.Property{Bedrooms: intPtr(3)}
	comp := models.Property{Bedrooms: intPtr(4), SoldPrice: floatPtr(400000)}

	adj := adjustmentByCategory(CalculateAdjustments(&subject, &comp, time.Now()), models.AdjustmentBedrooms)
	assert.NotNil(t, adj)
	// One extra bedroom at 1.5% of comp price.
	assert.InDelta(t, -6000, adj.Amount, 1e-6)
}

func TestCalculateAdjustments_Bathrooms(t *testing.T) {
	now := time.Now()
	subject := models.Property{Bathrooms: floatPtr(2)}

	// Below the half-bath threshold: no adjustment.
	comp := models.Property{Bathrooms: floatPtr(2.25), SoldPrice: floatPtr(400000)}
	assert.Nil(t, adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentBathrooms))

	// One fewer bathroom at 1% of comp price, value added back.
	comp = models.Property{Bathrooms: floatPtr(1), SoldPrice: floatPtr(400000)}
	adj := adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentBathrooms)
	assert.NotNil(t, adj)
	assert.InDelta(t, 4000, adj.Amount, 1e-6)
}

func TestCalculateAdjustments_LotSize(t *testing.T) {
	now := time.Now()
	subject := models.Property{LotSizeSqft: floatPtr(8000)}

	comp := models.Property{LotSizeSqft: floatPtr(8800), SoldPrice: floatPtr(400000)}
	assert.Nil(t, adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentLotSize))

	comp = models.Property{LotSizeSqft: floatPtr(10000), SoldPrice: floatPtr(400000)}
	adj := adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentLotSize)
	assert.NotNil(t, adj)
	// 2000 sqft larger at 0.001% of price per sqft.
	assert.InDelta(t, -2000*400000*0.00001, adj.Amount, 1e-6)
}

func TestCalculateAdjustments_Age(t *testing.T) {
	now := time.Now()
	subject := models.Property{YearBuilt: intPtr(2000)}

	// Within five years: skipped.
	comp := models.Property{YearBuilt: intPtr(2004), SoldPrice: floatPtr(400000)}
	assert.Nil(t, adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentAge))

	// Ten years apart in one direction.
	comp = models.Property{YearBuilt: intPtr(2010), SoldPrice: floatPtr(400000)}
	adj := adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentAge)
	assert.NotNil(t, adj)
	assert.InDelta(t, 400000*0.007*10, adj.Amount, 1e-6)

	// Ten years apart in the other direction flips the sign.
	comp = models.Property{YearBuilt: intPtr(1990), SoldPrice: floatPtr(400000)}
	adj = adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentAge)
	assert.NotNil(t, adj)
	assert.InDelta(t, -400000*0.007*10, adj.Amount, 1e-6)
}

func TestCalculateAdjustments_TimeSinceSale(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	subject := models.Property{}

	// Sold two months ago: no adjustment.
	comp := models.Property{SoldPrice: floatPtr(400000), SoldDate: timePtr(now.AddDate(0, 0, -60))}
	assert.Nil(t, adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentTime))

	// Sold 180 days (6.0 months) ago: negative amount, preserving the
	// engine's historical sign convention.
	comp = models.Property{SoldPrice: floatPtr(400000), SoldDate: timePtr(now.AddDate(0, 0, -180))}
	adj := adjustmentByCategory(CalculateAdjustments(&subject, &comp, now), models.AdjustmentTime)
	assert.NotNil(t, adj)
	assert.InDelta(t, -400000*0.008*6.0, adj.Amount, 1e-6)
}

func TestCalculateAdjustments_Concessions(t *testing.T) {
	subject := models.Property{}
	comp := models.Property{SoldPrice: floatPtr(400000), SellerConcessions: floatPtr(5000)}

	adj := adjustmentByCategory(CalculateAdjustments(&subject, &comp, time.Now()), models.AdjustmentConcessions)
	assert.NotNil(t, adj)
	assert.Equal(t, 5000.0, adj.Amount)
}

func TestCalculateAdjustments_NoCompPrice(t *testing.T) {
	subject := models.Property{SquareFeet: intPtr(2000), Bedrooms: intPtr(3)}
	comp := models.Property{SquareFeet: intPtr(3000), Bedrooms: intPtr(5)}

	adjustments := CalculateAdjustments(&subject, &comp, time.Now())
	assert.Empty(t, adjustments)
}

func TestCalculateAdjustments_Idempotent(t *testing.T) {
	now := time.Now()
	subject := models.Property{SquareFeet: intPtr(2000), ListPrice: floatPtr(400000), Bedrooms: intPtr(3)}
	comp := models.Property{SquareFeet: intPtr(2400), SoldPrice: floatPtr(450000), Bedrooms: intPtr(4),
		SoldDate: timePtr(now.AddDate(0, 0, -150))}

	first := CalculateAdjustments(&subject, &comp, now)
	second := CalculateAdjustments(&subject, &comp, now)
	assert.Equal(t, first, second)
}
