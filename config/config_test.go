package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	assert.NoError(t, err)

	assert.Equal(t, "5250", cfg.Server.Port)
	assert.Equal(t, 5.0, cfg.Comp.MaxCompDistanceMiles)
	assert.Equal(t, 0.7, cfg.Comp.MinCompScore)
	assert.Equal(t, 10, cfg.Comp.MaxCompsToReturn)
	assert.Equal(t, 180, cfg.Comp.MaxCompAgeDays)
	assert.True(t, cfg.Comp.EnableLearning)
	assert.Equal(t, 2, cfg.Ingest.ProcessorCount)
	assert.Equal(t, 50, cfg.Ingest.QueueSize)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MAX_COMP_DISTANCE_MILES", "2.5")
	t.Setenv("MIN_COMP_SCORE", "0.8")
	t.Setenv("ENABLE_LEARNING", "false")

	cfg, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, 2.5, cfg.Comp.MaxCompDistanceMiles)
	assert.Equal(t, 0.8, cfg.Comp.MinCompScore)
	assert.False(t, cfg.Comp.EnableLearning)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	t.Setenv("MIN_COMP_SCORE", "1.5")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := LoadConfig()
	assert.NoError(t, err)

	cfg.Comp.MaxCompDistanceMiles = -1
	assert.Error(t, cfg.Validate())

	cfg, _ = LoadConfig()
	cfg.Comp.MaxCompsToReturn = 0
	assert.Error(t, cfg.Validate())

	cfg, _ = LoadConfig()
	cfg.Ingest.ProcessorCount = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_ScoringConfig(t *testing.T) {
	cfg, err := LoadConfig()
	assert.NoError(t, err)

	sc := cfg.ScoringConfig()
	assert.Equal(t, cfg.Comp.MaxCompDistanceMiles, sc.MaxDistanceMiles)
	assert.Equal(t, cfg.Comp.MinCompScore, sc.MinScore)
	assert.Equal(t, cfg.Comp.MaxCompsToReturn, sc.MaxComps)
	assert.Equal(t, cfg.Comp.MaxCompAgeDays, sc.MaxAgeDays)
	assert.True(t, sc.Weights.IsNormalized())
}
