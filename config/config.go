package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"

	"compsight/server/internal/comps"
)

type Config struct {
	// Server configuration
	Server struct {
		Port string `env:"PORT" envDefault:"5250"`
	}

	// Database configuration
	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"database/compsight.db"`
	}

	// Comp analysis configuration
	Comp struct {
		// Maximum radius for comparable properties (miles)
		MaxCompDistanceMiles float64 `env:"MAX_COMP_DISTANCE_MILES" envDefault:"5.0"`

		// Minimum similarity score for a candidate to qualify as a comp
		MinCompScore float64 `env:"MIN_COMP_SCORE" envDefault:"0.7"`

		// Maximum number of comps returned per valuation
		MaxCompsToReturn int `env:"MAX_COMPS_TO_RETURN" envDefault:"10"`

		// Maximum sale age for comparable sales (days)
		MaxCompAgeDays int `env:"MAX_COMP_AGE_DAYS" envDefault:"180"`

		// Whether comp selections are recorded for weight training
		EnableLearning bool `env:"ENABLE_LEARNING" envDefault:"true"`
	}

	// Guidelines store configuration
	Guidelines struct {
		Path string `env:"GUIDELINES_PATH" envDefault:"comp_guidelines.json"`
	}

	// Candidate ingestion configuration
	Ingest struct {
		// Number of concurrent batch processors
		ProcessorCount int `env:"INGEST_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"INGEST_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"INGEST_RETRY_DELAY" envDefault:"5"`

		// Queue buffer size in batches
		QueueSize int `env:"INGEST_QUEUE_SIZE" envDefault:"50"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects out-of-range values at load time; the comp engine
// assumes a validated configuration and does not revalidate per call.
func (c *Config) Validate() error {
	if c.Comp.MaxCompDistanceMiles <= 0 {
		return fmt.Errorf("MAX_COMP_DISTANCE_MILES must be positive, got %v", c.Comp.MaxCompDistanceMiles)
	}
	if c.Comp.MinCompScore < 0 || c.Comp.MinCompScore > 1 {
		return fmt.Errorf("MIN_COMP_SCORE must be in [0, 1], got %v", c.Comp.MinCompScore)
	}
	if c.Comp.MaxCompsToReturn <= 0 {
		return fmt.Errorf("MAX_COMPS_TO_RETURN must be positive, got %d", c.Comp.MaxCompsToReturn)
	}
	if c.Comp.MaxCompAgeDays <= 0 {
		return fmt.Errorf("MAX_COMP_AGE_DAYS must be positive, got %d", c.Comp.MaxCompAgeDays)
	}
	if c.Ingest.ProcessorCount <= 0 {
		return fmt.Errorf("INGEST_PROCESSOR_COUNT must be positive, got %d", c.Ingest.ProcessorCount)
	}
	if c.Ingest.QueueSize <= 0 {
		return fmt.Errorf("INGEST_QUEUE_SIZE must be positive, got %d", c.Ingest.QueueSize)
	}
	return nil
}

// ScoringConfig builds the comp engine configuration with default weights.
func (c *Config) ScoringConfig() comps.ScoringConfig {
	return comps.ScoringConfig{
		Weights:          comps.DefaultWeights(),
		MaxDistanceMiles: c.Comp.MaxCompDistanceMiles,
		MinScore:         c.Comp.MinCompScore,
		MaxComps:         c.Comp.MaxCompsToReturn,
		MaxAgeDays:       c.Comp.MaxCompAgeDays,
	}
}
