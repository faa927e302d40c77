package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"compsight/server/config"
	"compsight/server/internal/database"
	"compsight/server/internal/models"
)

// BatchProcessor persists batches of candidate properties pulled from the
// queue, so later comp runs can draw on them.
type BatchProcessor struct {
	db        *gorm.DB
	logger    *logrus.Logger
	config    *config.Config
	queue     *CandidateQueue
	work      chan []*models.Property
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(db *gorm.DB, queue *CandidateQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		work:   make(chan []*models.Property),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the queue and spins up the worker pool. The
// subscription is registered before any goroutine runs, so a batch pushed
// right after Start is never dispatched to an empty handler list.
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(func(batch []*models.Property) error {
		select {
		case p.work <- batch:
			return nil
		case <-p.ctx.Done():
			return p.ctx.Err()
		}
	})
	for i := 0; i < p.config.Ingest.ProcessorCount; i++ {
		p.waitGroup.Add(1)
		go p.processLoop()
	}
}

// Stop gracefully shuts down the processor
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// processLoop drains the work channel until the processor is stopped
func (p *BatchProcessor) processLoop() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case batch := <-p.work:
			if err := p.processBatch(batch); err != nil {
				p.logger.WithError(err).Error("Dropping candidate batch after retries")
			}
		}
	}
}

// processBatch handles a single batch of candidates with transaction and retry logic
func (p *BatchProcessor) processBatch(batch []*models.Property) error {
	var err error
	for attempt := 0; attempt <= p.config.Ingest.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.Ingest.MaxRetries)
			time.Sleep(time.Duration(p.config.Ingest.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			if err := database.UpsertCandidates(tx, batch); err != nil {
				return fmt.Errorf("failed to upsert candidate batch: %w", err)
			}
			return nil
		})

		if err == nil {
			p.logger.Infof("Successfully processed batch of %d candidates", len(batch))
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.Ingest.MaxRetries, err)
}
