package api

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"compsight/server/config"
	"compsight/server/internal/comps"
	"compsight/server/internal/database"
	"compsight/server/internal/guidelines"
	"compsight/server/internal/ingest"
	"compsight/server/internal/models"
	"compsight/server/internal/trainer"
)

// configHolder guards the process-wide active scoring configuration. Each
// valuation run copies the config at start, so weight updates only affect
// runs started afterwards.
type configHolder struct {
	mu  sync.RWMutex
	cfg comps.ScoringConfig
}

func (h *configHolder) Get() comps.ScoringConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

func (h *configHolder) Set(cfg comps.ScoringConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = cfg
}

type Handler struct {
	db         *database.Database
	logger     *logrus.Logger
	active     *configHolder
	guidelines *guidelines.Store
	recorder   *trainer.Recorder
	trainer    *trainer.Trainer
	queue      *ingest.CandidateQueue
}

// ValuationRequest is the body of POST /api/valuations. When Candidates is
// empty, previously ingested candidates matching the subject's city/state
// are used instead.
type ValuationRequest struct {
	Subject    models.Property   `json:"subject" binding:"required"`
	Candidates []models.Property `json:"candidates"`
	MaxComps   int               `json:"max_comps"`
}

// ValuationResponse pairs a persisted run id with its result.
type ValuationResponse struct {
	ID     string            `json:"id"`
	Result models.CompResult `json:"result"`
}

type GuidelineRequest struct {
	Instruction string               `json:"instruction"`
	Description string               `json:"description"`
	Criteria    *guidelines.Criteria `json:"criteria"`
	Priority    float64              `json:"priority"`
}

type FeedbackRequest struct {
	ValuationID string   `json:"valuation_id" binding:"required"`
	Feedback    *float64 `json:"feedback"`
}

func NewHandler(db *database.Database, store *guidelines.Store, queue *ingest.CandidateQueue, cfg *config.Config, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		db:         db,
		logger:     logger,
		active:     &configHolder{cfg: cfg.ScoringConfig()},
		guidelines: store,
		recorder:   trainer.NewRecorder(cfg.Comp.EnableLearning, logger),
		trainer:    trainer.New(logger),
		queue:      queue,
	}
}

// CreateValuation runs a comp analysis for the posted subject and persists
// the run.
func (h *Handler) CreateValuation(c *gin.Context) {
	var req ValuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse valuation request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	candidates := req.Candidates
	if len(candidates) == 0 {
		stored, err := h.db.GetCandidates(req.Subject.City, req.Subject.State, 0)
		if err != nil {
			h.logger.WithError(err).Error("Failed to load ingested candidates")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load candidates"})
			return
		}
		candidates = stored
	}

	cfg := h.guidelines.Apply(h.active.Get())
	candidates = h.guidelines.FilterCandidates(&req.Subject, candidates)

	analyzer := comps.NewAnalyzer(cfg, h.logger)
	if h.trainer.Trained() {
		analyzer = analyzer.WithScorer(comps.NewLearnedScorer(h.trainer, cfg))
	}
	result := analyzer.FindComps(&req.Subject, candidates, req.MaxComps)

	rec := &models.ValuationRecord{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Subject:        req.Subject,
		Candidates:     candidates,
		Result:         result,
		CompCount:      len(result.ComparableProperties),
		EstimatedValue: result.EstimatedValue,
		Confidence:     result.ConfidenceScore,
	}
	if err := h.db.SaveValuation(rec); err != nil {
		h.logger.WithError(err).Error("Failed to save valuation run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save valuation"})
		return
	}

	c.JSON(http.StatusOK, ValuationResponse{ID: rec.ID, Result: result})
}

// GetValuation returns a persisted run by id.
func (h *Handler) GetValuation(c *gin.Context) {
	rec, err := h.db.GetValuation(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to get valuation run")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get valuation"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Valuation not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListValuations returns recent runs.
func (h *Handler) ListValuations(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 20
	}

	records, err := h.db.ListValuations(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list valuation runs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list valuations"})
		return
	}
	if records == nil {
		records = []models.ValuationRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// GetWeights returns the active scoring configuration.
func (h *Handler) GetWeights(c *gin.Context) {
	c.JSON(http.StatusOK, h.active.Get())
}

// UpdateWeights replaces the factor weights. The new weights are
// renormalized defensively and apply only to valuations started after the
// update.
func (h *Handler) UpdateWeights(c *gin.Context) {
	var w comps.Weights
	if err := c.ShouldBindJSON(&w); err != nil {
		h.logger.WithError(err).Error("Failed to parse weights")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid weight parameters"})
		return
	}

	if !w.IsNormalized() {
		h.logger.WithField("sum", w.Sum()).Warn("Submitted weights do not sum to 1, renormalizing")
	}
	cfg := h.active.Get().WithWeights(w)
	h.active.Set(cfg)

	c.JSON(http.StatusOK, cfg)
}

// AddGuideline accepts either a natural-language instruction or a
// structured criteria set.
func (h *Handler) AddGuideline(c *gin.Context) {
	var req GuidelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse guideline request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	if req.Instruction != "" {
		ok, err := h.guidelines.AddInstruction(req.Instruction)
		if err != nil {
			h.logger.WithError(err).Error("Failed to add guideline")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save guideline"})
			return
		}
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not extract any criteria from instruction"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
		return
	}

	if req.Criteria == nil || req.Criteria.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either instruction or criteria is required"})
		return
	}
	err := h.guidelines.Add(guidelines.Guideline{
		Description: req.Description,
		Criteria:    *req.Criteria,
		Priority:    req.Priority,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to add guideline")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save guideline"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ListGuidelines returns all stored guidelines.
func (h *Handler) ListGuidelines(c *gin.Context) {
	c.JSON(http.StatusOK, h.guidelines.List())
}

// RemoveGuideline deletes a guideline by index.
func (h *Handler) RemoveGuideline(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guideline index"})
		return
	}

	ok, err := h.guidelines.Remove(index)
	if err != nil {
		h.logger.WithError(err).Error("Failed to remove guideline")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove guideline"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Guideline not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// RecordFeedback stores user feedback on a past valuation's comp selection
// for later weight training.
func (h *Handler) RecordFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse feedback request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}

	rec, err := h.db.GetValuation(req.ValuationID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load valuation for feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load valuation"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Valuation not found"})
		return
	}

	h.recorder.Record(rec.Subject, rec.Result.ComparableProperties, req.Feedback)
	c.JSON(http.StatusOK, gin.H{"status": "success", "recorded": h.recorder.Len()})
}

// TrainWeights derives new factor weights from the recorded feedback and
// activates them for subsequent valuations.
func (h *Handler) TrainWeights(c *gin.Context) {
	cfg := h.active.Get()
	weights, err := h.trainer.UpdateWeights(cfg, h.recorder.Selections())
	if err == trainer.ErrInsufficientData {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough recorded feedback to train"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to train weights")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Training failed"})
		return
	}

	cfg = cfg.WithWeights(weights)
	h.active.Set(cfg)
	c.JSON(http.StatusOK, cfg)
}

// IngestCandidates queues a batch of candidate properties for persistence.
func (h *Handler) IngestCandidates(c *gin.Context) {
	var batch []*models.Property
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.logger.WithError(err).Error("Failed to parse candidate batch")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters"})
		return
	}
	if len(batch) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Batch is empty"})
		return
	}

	if err := h.queue.Push(batch); err != nil {
		h.logger.WithError(err).Error("Failed to queue candidate batch")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "batch_size": len(batch)})
}

// Health reports service status, stored-candidate count, and ingest queue depth.
func (h *Handler) Health(c *gin.Context) {
	count, err := h.db.CountCandidates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "candidates": count, "queue_depth": h.queue.Len()})
}
