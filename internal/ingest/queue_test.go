package ingest

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"compsight/server/internal/models"
)

func TestNewCandidateQueue(t *testing.T) {
	logger := logrus.New()
	q := NewCandidateQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, cap(q.items))
	assert.False(t, q.IsClosed())
}

func TestCandidateQueue_Push(t *testing.T) {
	logger := logrus.New()
	q := NewCandidateQueue(2, logger)

	// Test successful push
	batch := []*models.Property{{MLSNumber: "MLS-1"}}
	err := q.Push(batch)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Test queue full
	for i := 0; i < 2; i++ {
		batch := []*models.Property{{MLSNumber: "MLS-X"}}
		_ = q.Push(batch)
	}
	err = q.Push(batch)
	assert.Equal(t, ErrQueueFull, err)

	// Test closed queue
	q.Close()
	err = q.Push(batch)
	assert.Equal(t, ErrQueueClosed, err)
}

func TestCandidateQueue_Subscribe(t *testing.T) {
	logger := logrus.New()
	q := NewCandidateQueue(10, logger)

	var processed []*models.Property
	var mu sync.Mutex

	// Add handler
	q.Subscribe(func(batch []*models.Property) error {
		mu.Lock()
		processed = append(processed, batch...)
		mu.Unlock()
		return nil
	})

	// Start queue
	q.Start()

	// Push items
	testBatch := []*models.Property{{MLSNumber: "MLS-1"}, {MLSNumber: "MLS-2"}}
	err := q.Push(testBatch)
	assert.NoError(t, err)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	// Verify processing
	mu.Lock()
	assert.Equal(t, 2, len(processed))
	assert.Equal(t, "MLS-1", processed[0].MLSNumber)
	assert.Equal(t, "MLS-2", processed[1].MLSNumber)
	mu.Unlock()
}

func TestCandidateQueue_Close(t *testing.T) {
	logger := logrus.New()
	q := NewCandidateQueue(10, logger)

	// Test first close
	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Test second close (should be no-op)
	err = q.Close()
	assert.NoError(t, err)
}

func TestCandidateQueue_ProcessBatch(t *testing.T) {
	logger := logrus.New()
	q := NewCandidateQueue(10, logger)

	var wg sync.WaitGroup
	processedBatches := 0
	var mu sync.Mutex

	// Add multiple handlers
	for i := 0; i < 3; i++ {
		wg.Add(1)
		q.Subscribe(func(batch []*models.Property) error {
			mu.Lock()
			processedBatches++
			mu.Unlock()
			wg.Done()
			return nil
		})
	}

	// Start queue
	q.Start()

	// Push a batch
	testBatch := []*models.Property{{MLSNumber: "MLS-1"}}
	err := q.Push(testBatch)
	assert.NoError(t, err)

	// Wait for all handlers
	wg.Wait()

	// Verify all handlers processed the batch
	mu.Lock()
	assert.Equal(t, 3, processedBatches)
	mu.Unlock()
}
