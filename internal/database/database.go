package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"compsight/server/internal/models"
)

// Database stores valuation runs and ingested candidate properties in
// sqlite. A persisted run carries its full inputs so the valuation can be
// repeated or audited later.
type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

// SaveValuation persists one comp run with its inputs and result.
func (d *Database) SaveValuation(rec *models.ValuationRecord) error {
	subjectJSON, err := json.Marshal(rec.Subject)
	if err != nil {
		return fmt.Errorf("failed to marshal subject: %w", err)
	}
	candidatesJSON, err := json.Marshal(rec.Candidates)
	if err != nil {
		return fmt.Errorf("failed to marshal candidates: %w", err)
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	var estimated sql.NullFloat64
	if rec.EstimatedValue != nil {
		estimated = sql.NullFloat64{Float64: *rec.EstimatedValue, Valid: true}
	}

	_, err = d.db.Exec(`
		INSERT INTO valuation_runs
		(id, created_at, subject_json, candidates_json, result_json, comp_count, estimated_value, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt.Format(time.RFC3339), string(subjectJSON), string(candidatesJSON),
		string(resultJSON), rec.CompCount, estimated, rec.Confidence)
	if err != nil {
		return fmt.Errorf("failed to insert valuation run: %w", err)
	}
	return nil
}

// GetValuation loads one run by id. Returns nil, nil when not found.
func (d *Database) GetValuation(id string) (*models.ValuationRecord, error) {
	row := d.db.QueryRow(`
		SELECT id, created_at, subject_json, candidates_json, result_json, comp_count, estimated_value, confidence
		FROM valuation_runs
		WHERE id = ?
	`, id)

	rec, err := scanValuation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation run: %w", err)
	}
	return rec, nil
}

// ListValuations returns the most recent runs, newest first.
func (d *Database) ListValuations(limit int) ([]models.ValuationRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(`
		SELECT id, created_at, subject_json, candidates_json, result_json, comp_count, estimated_value, confidence
		FROM valuation_runs
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuation runs: %w", err)
	}
	defer rows.Close()

	var records []models.ValuationRecord
	for rows.Next() {
		rec, err := scanValuation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan valuation run: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating valuation runs: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanValuation(row rowScanner) (*models.ValuationRecord, error) {
	var rec models.ValuationRecord
	var createdAt, subjectJSON, candidatesJSON, resultJSON string
	var estimated sql.NullFloat64

	err := row.Scan(&rec.ID, &createdAt, &subjectJSON, &candidatesJSON, &resultJSON,
		&rec.CompCount, &estimated, &rec.Confidence)
	if err != nil {
		return nil, err
	}

	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		rec.CreatedAt = t
	}
	if estimated.Valid {
		v := estimated.Float64
		rec.EstimatedValue = &v
	}
	if err := json.Unmarshal([]byte(subjectJSON), &rec.Subject); err != nil {
		return nil, fmt.Errorf("failed to parse subject: %w", err)
	}
	if err := json.Unmarshal([]byte(candidatesJSON), &rec.Candidates); err != nil {
		return nil, fmt.Errorf("failed to parse candidates: %w", err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to parse result: %w", err)
	}
	return &rec, nil
}

// GetCandidates returns ingested candidate properties, optionally filtered
// by city and state (case-insensitive). Used to source comp runs from
// previously ingested data.
func (d *Database) GetCandidates(city, state string, limit int) ([]models.Property, error) {
	query := `SELECT data FROM candidate_properties WHERE 1=1`
	var args []interface{}
	if city != "" {
		query += " AND LOWER(city) = LOWER(?)"
		args = append(args, city)
	}
	if state != "" {
		query += " AND LOWER(state) = LOWER(?)"
		args = append(args, state)
	}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		var p models.Property
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return nil, fmt.Errorf("failed to parse candidate: %w", err)
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating candidates: %w", err)
	}
	return properties, nil
}

// CountCandidates returns the number of ingested candidate properties.
func (d *Database) CountCandidates() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM candidate_properties").Scan(&count)
	return count, err
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}
