package archiver

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolArchiveService_ArchiveMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to the base service", func(t *testing.T) {
		base := new(MockArchiveService)
		pool, err := NewWorkerPoolArchiveService(base, WorkerPoolConfig{Size: 2}, newArchiverTestLogger())
		require.NoError(t, err)
		defer pool.Shutdown()

		movement, _ := movementPayload(t)
		base.On("ArchiveMovement", ctx, movement).Return(nil).Once()

		err = pool.ArchiveMovement(ctx, movement)
		assert.NoError(t, err)
		base.AssertExpectations(t)
	})

	t.Run("returns the base service error", func(t *testing.T) {
		base := new(MockArchiveService)
		pool, err := NewWorkerPoolArchiveService(base, WorkerPoolConfig{Size: 2}, newArchiverTestLogger())
		require.NoError(t, err)
		defer pool.Shutdown()

		movement, _ := movementPayload(t)
		archiveErr := errors.New("mongo unavailable")
		base.On("ArchiveMovement", ctx, movement).Return(archiveErr).Once()

		err = pool.ArchiveMovement(ctx, movement)
		assert.ErrorIs(t, err, archiveErr)
		base.AssertExpectations(t)
	})

	t.Run("handles concurrent submissions", func(t *testing.T) {
		base := new(MockArchiveService)
		pool, err := NewWorkerPoolArchiveService(base, WorkerPoolConfig{Size: 4}, newArchiverTestLogger())
		require.NoError(t, err)
		defer pool.Shutdown()

		base.On("ArchiveMovement", ctx, mock.Anything).Return(nil).Times(10)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			movement, _ := movementPayload(t)
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, pool.ArchiveMovement(ctx, movement))
			}()
		}
		wg.Wait()
		base.AssertExpectations(t)
	})
}
