// Package guidelines manages appraiser-supplied comp selection rules. A
// guideline carries structured criteria (distance, recency, tolerances) and
// a priority; high-priority criteria hard-filter candidates, the rest shift
// scoring weights and thresholds. Guidelines are persisted to a JSON file so
// they survive restarts.
package guidelines

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Priority levels. Criteria at PriorityRequired or above become hard
// filters; lower priorities only influence weights and thresholds.
const (
	PriorityNormal    = 1.0
	PriorityPreferred = 1.5
	PriorityRequired  = 2.0
)

// Criteria holds the structured constraints extracted from one guideline.
// Nil means the guideline does not constrain that dimension.
type Criteria struct {
	MaxDistanceMiles    *float64 `json:"max_distance_miles,omitempty"`
	MaxAgeMonths        *int     `json:"max_age_months,omitempty"`
	LotSizeTolerancePct *float64 `json:"lot_size_tolerance_percent,omitempty"`
	BedroomsExactMatch  bool     `json:"bedrooms_exact_match,omitempty"`
	BedroomsTolerance   *int     `json:"bedrooms_tolerance,omitempty"`
	BathroomsExactMatch bool     `json:"bathrooms_exact_match,omitempty"`
	BathroomsTolerance  *float64 `json:"bathrooms_tolerance,omitempty"`
	PriceTolerancePct   *float64 `json:"price_tolerance_percent,omitempty"`
}

// IsEmpty reports whether no constraint was set.
func (c Criteria) IsEmpty() bool {
	return c.MaxDistanceMiles == nil && c.MaxAgeMonths == nil &&
		c.LotSizeTolerancePct == nil && !c.BedroomsExactMatch &&
		c.BedroomsTolerance == nil && !c.BathroomsExactMatch &&
		c.BathroomsTolerance == nil && c.PriceTolerancePct == nil
}

// Guideline is one comp selection rule.
type Guideline struct {
	Description string   `json:"description"`
	Criteria    Criteria `json:"criteria"`
	Priority    float64  `json:"priority"`
	Examples    []string `json:"examples,omitempty"`
	UsageCount  int      `json:"usage_count"`
}

// Store holds guidelines in memory and mirrors them to a JSON file.
type Store struct {
	mu         sync.RWMutex
	path       string
	guidelines []Guideline
	logger     *logrus.Logger
}

// NewStore creates a store backed by the given file and loads any existing
// guidelines. A missing file is not an error; the store starts empty.
func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Store{path: path, logger: logger}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read guidelines file: %w", err)
	}
	if err := json.Unmarshal(data, &s.guidelines); err != nil {
		return fmt.Errorf("failed to parse guidelines file: %w", err)
	}
	s.logger.Infof("Loaded %d comp guidelines", len(s.guidelines))
	return nil
}

// save writes the current guidelines to disk. Callers must hold the lock.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.guidelines, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal guidelines: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write guidelines file: %w", err)
	}
	return nil
}

// Add appends a guideline and persists the store.
func (s *Store) Add(g Guideline) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.Priority == 0 {
		g.Priority = PriorityNormal
	}
	s.guidelines = append(s.guidelines, g)
	if err := s.save(); err != nil {
		return err
	}
	s.logger.Infof("Added guideline: %s", g.Description)
	return nil
}

// AddInstruction parses a natural-language instruction into a guideline and
// adds it. Returns false when nothing parseable was found.
func (s *Store) AddInstruction(text string) (bool, error) {
	criteria, priority := ParseInstruction(text)
	if criteria.IsEmpty() {
		s.logger.Warnf("Could not parse instruction: %s", text)
		return false, nil
	}
	if err := s.Add(Guideline{Description: text, Criteria: criteria, Priority: priority}); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the guideline at index and persists the store. Returns
// false when the index is out of range.
func (s *Store) Remove(index int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.guidelines) {
		return false, nil
	}
	removed := s.guidelines[index]
	s.guidelines = append(s.guidelines[:index], s.guidelines[index+1:]...)
	if err := s.save(); err != nil {
		return false, err
	}
	s.logger.Infof("Removed guideline: %s", removed.Description)
	return true, nil
}

// List returns a copy of the current guidelines.
func (s *Store) List() []Guideline {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Guideline, len(s.guidelines))
	copy(out, s.guidelines)
	return out
}
