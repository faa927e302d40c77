package models

import "time"

// PropertyType classifies a listing.
type PropertyType string

const (
	PropertyTypeResidential PropertyType = "Residential"
	PropertyTypeCondo       PropertyType = "Condo/Co-op"
	PropertyTypeTownhouse   PropertyType = "Townhouse"
	PropertyTypeMultiFamily PropertyType = "Multi-Family"
	PropertyTypeCommercial  PropertyType = "Commercial"
	PropertyTypeLand        PropertyType = "Land"
)

// PropertyStatus is the listing status.
type PropertyStatus string

const (
	StatusActive    PropertyStatus = "Active"
	StatusPending   PropertyStatus = "Pending"
	StatusSold      PropertyStatus = "Sold"
	StatusOffMarket PropertyStatus = "Off Market"
	StatusWithdrawn PropertyStatus = "Withdrawn"
	StatusExpired   PropertyStatus = "Expired"
)

// Property represents a real estate listing from any data source.
// Optional fields are pointers: nil means the source did not supply the
// value, which is different from a legitimate zero (a land parcel really
// can have zero bedrooms).
type Property struct {
	MLSNumber    string         `json:"mls_number"`
	Address      string         `json:"address"`
	City         string         `json:"city"`
	State        string         `json:"state"`
	ZipCode      string         `json:"zip_code"`
	PropertyType PropertyType   `json:"property_type"`
	Status       PropertyStatus `json:"status"`

	// Physical details
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *float64 `json:"bathrooms"`
	TotalRooms  *int     `json:"total_rooms"`
	SquareFeet  *int     `json:"square_feet"`
	LotSizeSqft *float64 `json:"lot_size_sqft"`
	LotSizeAcre *float64 `json:"lot_size_acres"`
	YearBuilt   *int     `json:"year_built"`
	Stories     *int     `json:"stories"`

	// Parking
	ParkingSpaces *int   `json:"parking_spaces"`
	GarageType    string `json:"garage_type,omitempty"`

	// Condition and features
	Condition          string   `json:"condition,omitempty"`
	ArchitecturalStyle string   `json:"architectural_style,omitempty"`
	ExteriorFeatures   []string `json:"exterior_features,omitempty"`
	Amenities          []string `json:"amenities,omitempty"`
	RecentUpgrades     []string `json:"recent_upgrades,omitempty"`

	// Pricing
	ListPrice    *float64 `json:"list_price"`
	SoldPrice    *float64 `json:"sold_price"`
	PricePerSqft *float64 `json:"price_per_sqft"`

	// Dates
	ListDate     *time.Time `json:"list_date"`
	SoldDate     *time.Time `json:"sold_date"`
	DaysOnMarket *int       `json:"days_on_market"`

	// Transaction details
	SellerConcessions     *float64 `json:"seller_concessions"`
	SellerConcessionsDesc string   `json:"seller_concessions_description,omitempty"`
	FinancingType         string   `json:"financing_type,omitempty"`
	ArmsLengthTransaction *bool    `json:"arms_length_transaction"`

	// Location
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Source provenance (raw connector payload fields)
	SourceData map[string]interface{} `json:"source_data,omitempty"`
}

// SalePrice returns the sold price, falling back to the list price.
// Nil when neither is known.
func (p *Property) SalePrice() *float64 {
	if p.SoldPrice != nil {
		return p.SoldPrice
	}
	return p.ListPrice
}

// CalculatePricePerSqft derives price per square foot from the sold-or-list
// price. Nil when price or square footage is unknown.
func (p *Property) CalculatePricePerSqft() *float64 {
	price := p.SalePrice()
	if price == nil || p.SquareFeet == nil || *p.SquareFeet <= 0 {
		return nil
	}
	v := *price / float64(*p.SquareFeet)
	return &v
}

// HasCoordinates reports whether both latitude and longitude are known.
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
