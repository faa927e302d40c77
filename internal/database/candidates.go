package database

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"compsight/server/internal/models"
)

// CandidateRow is the gorm mapping for one ingested candidate property.
// Searchable columns are duplicated out of the JSON payload.
type CandidateRow struct {
	MLSNumber    string    `gorm:"column:mls_number;primaryKey"`
	City         string    `gorm:"column:city"`
	State        string    `gorm:"column:state"`
	ZipCode      string    `gorm:"column:zip_code"`
	PropertyType string    `gorm:"column:property_type"`
	Status       string    `gorm:"column:status"`
	ListPrice    *float64  `gorm:"column:list_price"`
	SoldPrice    *float64  `gorm:"column:sold_price"`
	Latitude     *float64  `gorm:"column:latitude"`
	Longitude    *float64  `gorm:"column:longitude"`
	Data         string    `gorm:"column:data"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (CandidateRow) TableName() string {
	return "candidate_properties"
}

// UpsertCandidates writes a batch of candidate properties inside the given
// gorm transaction, replacing rows that share an MLS number. Used by the
// ingest batch processor.
func UpsertCandidates(tx *gorm.DB, batch []*models.Property) error {
	if len(batch) == 0 {
		return nil
	}

	rows := make([]CandidateRow, 0, len(batch))
	for _, p := range batch {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal candidate %s: %w", p.MLSNumber, err)
		}
		rows = append(rows, CandidateRow{
			MLSNumber:    p.MLSNumber,
			City:         p.City,
			State:        p.State,
			ZipCode:      p.ZipCode,
			PropertyType: string(p.PropertyType),
			Status:       string(p.Status),
			ListPrice:    p.ListPrice,
			SoldPrice:    p.SoldPrice,
			Latitude:     p.Latitude,
			Longitude:    p.Longitude,
			Data:         string(data),
			UpdatedAt:    time.Now(),
		})
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mls_number"}},
		UpdateAll: true,
	}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to upsert candidates: %w", err)
	}
	return nil
}
