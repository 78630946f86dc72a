// Package audit persists the access-decision trail asynchronously so guard
// evaluation never blocks on the database.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/repositories"
)

// Config holds configuration for the Service
type Config struct {
	BufferSize  int // Size of the record buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  4096,
		WorkerCount: 2,
	}
}

// Service records access decisions through a buffered channel drained by
// background workers. When no repository is configured the service is a
// no-op recorder.
type Service struct {
	repo    repositories.AccessRecordRepository
	logger  *zap.Logger
	records chan *models.AccessRecord

	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc

	mu      sync.Mutex
	started bool
}

// NewService creates a new audit service. repo may be nil, in which case
// every Record call is dropped silently.
func NewService(repo repositories.AccessRecordRepository, logger *zap.Logger, cfg Config) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:        repo,
		logger:      logger,
		records:     make(chan *models.AccessRecord, cfg.BufferSize),
		workerCount: cfg.WorkerCount,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}
	if s.repo == nil {
		s.logger.Info("audit trail disabled, no repository configured")
		s.started = true
		return nil
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("audit service started",
		zap.Int("workers", s.workerCount))
	return nil
}

// Stop drains buffered records and waits for workers to finish
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.records)
	s.wg.Wait()
	s.cancel()
	s.logger.Info("audit service stopped")
}

// Record enqueues one decision for persistence. Never blocks: when the
// service is not running, the buffer is full or the repository is absent
// the record is dropped and counted in the log.
func (s *Service) Record(rec *models.AccessRecord) {
	if s.repo == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Stop closes the channel after flipping started under this lock;
	// sending past the guard would panic.
	if !s.started {
		return
	}

	select {
	case s.records <- rec:
	default:
		s.logger.Warn("audit buffer full, dropping access record",
			zap.String("path", rec.Path),
			zap.String("outcome", string(rec.Outcome)))
	}
}

// worker drains the record channel until it is closed
func (s *Service) worker(id int) {
	defer s.wg.Done()

	for rec := range s.records {
		ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
		if err := s.repo.Insert(ctx, rec); err != nil {
			s.logger.Error("failed to persist access record",
				zap.Int("worker", id),
				zap.String("id", rec.ID.String()),
				zap.Error(err))
		}
		cancel()
	}
}
