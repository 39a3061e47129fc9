package archiver

import (
	"context"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/wallet-ledger-engine/internal/engine"
)

// WorkerPoolArchiveService implements the ArchiveService interface
type WorkerPoolArchiveService struct {
	baseService ArchiveService
	pool        *ants.Pool
	logger      *slog.Logger
	// Use a mutex to protect access to the results map
	mu      sync.Mutex
	results map[string]chan error
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolArchiveService(
	baseService ArchiveService,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WorkerPoolArchiveService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolArchiveService{
		baseService: baseService,
		pool:        pool,
		logger:      logger,
		results:     make(map[string]chan error),
	}, nil
}

// ArchiveMovement submits a movement to the worker pool and waits for the
// result, so the caller's offset commit still reflects the archive outcome.
func (s *WorkerPoolArchiveService) ArchiveMovement(ctx context.Context, movement *engine.Movement) error {
	s.logger.Debug("Submitting movement to worker pool",
		"reference", movement.Reference.String(),
		"entries", len(movement.Entries),
	)

	resultChan := make(chan error, 1)

	reference := movement.Reference.String()
	s.mu.Lock()
	s.results[reference] = resultChan
	s.mu.Unlock()

	err := s.pool.Submit(func() {
		err := s.baseService.ArchiveMovement(ctx, movement)

		resultChan <- err

		s.mu.Lock()
		delete(s.results, reference)
		close(resultChan)
		s.mu.Unlock()
	})

	if err != nil {
		// If we couldn't submit the task to the pool, remove the result channel
		s.mu.Lock()
		delete(s.results, reference)
		close(resultChan)
		s.mu.Unlock()

		s.logger.Error("Failed to submit movement to worker pool",
			"reference", reference,
			"error", err,
		)
		return err
	}

	return <-resultChan
}

// Shutdown gracefully shuts down the worker pool.
func (s *WorkerPoolArchiveService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WorkerPoolArchiveService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WorkerPoolArchiveService) Capacity() int {
	return s.pool.Cap()
}
