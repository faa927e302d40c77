package database

import "fmt"

func (d *Database) RunMigrations() error {
	// Valuation runs: full inputs and result, so a run can be repeated
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS valuation_runs (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			subject_json TEXT NOT NULL,
			candidates_json TEXT NOT NULL,
			result_json TEXT NOT NULL,
			comp_count INTEGER NOT NULL DEFAULT 0,
			estimated_value REAL,
			confidence REAL NOT NULL DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create valuation_runs table: %v", err)
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_valuation_runs_created_at
		ON valuation_runs(created_at);
	`)
	if err != nil {
		return err
	}

	// Ingested candidate properties from external data sources
	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS candidate_properties (
			mls_number TEXT PRIMARY KEY,
			city TEXT,
			state TEXT,
			zip_code TEXT,
			property_type TEXT,
			status TEXT,
			list_price REAL,
			sold_price REAL,
			latitude REAL,
			longitude REAL,
			data TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create candidate_properties table: %v", err)
	}

	// Spatial index for radius pre-filtering
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_candidate_properties_coordinates
		ON candidate_properties(latitude, longitude);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_candidate_properties_city
		ON candidate_properties(city, state);
	`)
	if err != nil {
		return err
	}

	return nil
}
