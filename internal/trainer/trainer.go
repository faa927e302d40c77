// Package trainer turns recorded comp selections and user feedback into
// updated similarity weights. It is an optional hook: the valuation engine
// is fully functional without it, and a trained instance can also back a
// comps.LearnedScorer.
package trainer

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"compsight/server/internal/comps"
	"compsight/server/internal/models"
)

// minTrainingExamples is the smallest sample the weight updater accepts.
const minTrainingExamples = 10

// maxSelections bounds the in-memory feedback history.
const maxSelections = 1000

// ErrInsufficientData is returned when too few selections have been
// recorded to derive weights.
var ErrInsufficientData = errors.New("not enough learning data to update weights")

// Selection is one recorded comp run outcome: which comps were kept for a
// subject, optionally with a user feedback multiplier (1.0 = good
// selection, lower = poor).
type Selection struct {
	Subject       models.Property       `json:"subject"`
	SelectedComps []models.CompProperty `json:"selected_comps"`
	UserFeedback  *float64              `json:"user_feedback"`
	Timestamp     time.Time             `json:"timestamp"`
}

// Recorder accumulates comp selections for later training. Disabled
// recorders silently drop everything.
type Recorder struct {
	mu         sync.Mutex
	enabled    bool
	selections []Selection
	logger     *logrus.Logger
}

// NewRecorder creates a recorder. When enabled is false, Record is a no-op.
func NewRecorder(enabled bool, logger *logrus.Logger) *Recorder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Recorder{enabled: enabled, logger: logger}
}

// Record stores one selection, keeping only the most recent history.
func (r *Recorder) Record(subject models.Property, selected []models.CompProperty, feedback *float64) {
	if !r.enabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selections = append(r.selections, Selection{
		Subject:       subject,
		SelectedComps: selected,
		UserFeedback:  feedback,
		Timestamp:     time.Now(),
	})
	if len(r.selections) > maxSelections {
		r.selections = r.selections[len(r.selections)-maxSelections:]
	}
}

// Selections returns a copy of the recorded history.
func (r *Recorder) Selections() []Selection {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Selection, len(r.selections))
	copy(out, r.selections)
	return out
}

// Len returns the number of recorded selections.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.selections)
}

// Trainer derives factor weights from recorded selections and, once
// trained, predicts similarity scores as a comps.Model.
type Trainer struct {
	mu      sync.RWMutex
	weights *comps.Weights
	logger  *logrus.Logger
}

// New creates an untrained trainer.
func New(logger *logrus.Logger) *Trainer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Trainer{logger: logger}
}

// UpdateWeights estimates per-factor importance from the recorded
// selections and returns a normalized weight set for a new ScoringConfig.
// Importance is the feedback-weighted correlation between each feature and
// the observed similarity score; factors that track outcomes closely earn
// more weight. Returns ErrInsufficientData below the minimum sample size.
func (t *Trainer) UpdateWeights(cfg comps.ScoringConfig, selections []Selection) (comps.Weights, error) {
	type example struct {
		features []float64
		target   float64
	}
	var examples []example
	for _, sel := range selections {
		feedback := 1.0
		if sel.UserFeedback != nil {
			feedback = *sel.UserFeedback
		}
		for i := range sel.SelectedComps {
			cp := &sel.SelectedComps[i]
			examples = append(examples, example{
				features: comps.ExtractFeatures(cfg, &sel.Subject, &cp.Property),
				target:   cp.SimilarityScore * feedback,
			})
		}
	}
	if len(examples) < minTrainingExamples {
		t.logger.Warnf("Not enough training examples (%d, need %d)", len(examples), minTrainingExamples)
		return comps.Weights{}, ErrInsufficientData
	}

	importances := make([]float64, 7)
	for f := 0; f < 7; f++ {
		xs := make([]float64, len(examples))
		ys := make([]float64, len(examples))
		for i, ex := range examples {
			xs[i] = ex.features[f]
			ys[i] = ex.target
		}
		importances[f] = math.Abs(correlation(xs, ys))
	}

	var total float64
	for _, v := range importances {
		total += v
	}
	if total <= 0 {
		// Flat importance carries no signal; keep current weights.
		return cfg.Weights, nil
	}

	weights := comps.Weights{
		Distance:     importances[0] / total,
		SquareFeet:   importances[1] / total,
		Price:        importances[2] / total,
		Bedrooms:     importances[3] / total,
		Bathrooms:    importances[4] / total,
		YearBuilt:    importances[5] / total,
		PropertyType: importances[6] / total,
	}.Normalized()

	t.mu.Lock()
	t.weights = &weights
	t.mu.Unlock()

	t.logger.WithField("examples", len(examples)).Info("Updated comp analysis weights from feedback")
	return weights, nil
}

// Predict implements comps.Model with a linear scorer over the trained
// weights. Features 0-5 are dissimilarity measures (0 = identical), feature
// 6 is a type-match flag, so similarity per factor is 1-f for the first six
// and f for the last.
func (t *Trainer) Predict(features []float64) (float64, error) {
	t.mu.RLock()
	w := t.weights
	t.mu.RUnlock()

	if w == nil {
		return 0, errors.New("trainer has no fitted weights")
	}
	if len(features) != 7 {
		return 0, errors.New("expected 7 features")
	}

	factorWeights := []float64{w.Distance, w.SquareFeet, w.Price, w.Bedrooms,
		w.Bathrooms, w.YearBuilt, w.PropertyType}
	var score float64
	for i, f := range features {
		sim := f
		if i < 6 {
			sim = 1.0 - math.Min(f, 1.0)
		}
		score += sim * factorWeights[i]
	}
	return math.Max(0, math.Min(1, score)), nil
}

// Trained reports whether Predict has fitted weights to work with.
func (t *Trainer) Trained() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.weights != nil
}

// correlation is the Pearson correlation coefficient, 0 when either side
// has no variance.
func correlation(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n == 0 {
		return 0
	}
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	// A constant series can accumulate rounding dust in its variance, which
	// would make two flat series correlate at +-1. Treat variance that is
	// negligible relative to the squared mean as zero.
	const eps = 1e-12
	if varX <= eps*n*meanX*meanX || varY <= eps*n*meanY*meanY {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}
