package archiver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wallet-ledger-engine/internal/domain/ledger"
	"github.com/wallet-ledger-engine/internal/engine"
	"github.com/wallet-ledger-engine/internal/platform/messaging/producers"
)

// MockArchiveService mocks ArchiveService
type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) ArchiveMovement(ctx context.Context, movement *engine.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

// MockDLQProducer mocks producers.DeadLetterPublisher
type MockDLQProducer struct {
	mock.Mock
}

func (m *MockDLQProducer) PublishToDLQ(ctx context.Context, originalKey string, originalValue []byte, reason string) error {
	args := m.Called(ctx, originalKey, originalValue, reason)
	return args.Error(0)
}

func (m *MockDLQProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newArchiverTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func movementPayload(t *testing.T) (*engine.Movement, []byte) {
	t.Helper()
	entry, err := ledger.NewEntry(uuid.New(), uuid.New(), ledger.DirectionCredit, ledger.PurposeDeposit, 100, 0, nil)
	require.NoError(t, err)
	movement := &engine.Movement{
		Reference:   entry.Reference,
		Purpose:     ledger.PurposeDeposit,
		Entries:     []*ledger.Entry{entry},
		CommittedAt: time.Now(),
	}
	value, err := json.Marshal(movement)
	require.NoError(t, err)
	return movement, value
}

func TestMovementEventHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("archives valid movement", func(t *testing.T) {
		archiveService := new(MockArchiveService)
		dlq := new(MockDLQProducer)
		handler := NewMovementEventHandler(newArchiverTestLogger(), archiveService, dlq)

		movement, value := movementPayload(t)
		archiveService.On("ArchiveMovement", ctx, mock.MatchedBy(func(m *engine.Movement) bool {
			return m.Reference == movement.Reference && len(m.Entries) == 1
		})).Return(nil).Once()

		err := handler.HandleMessage(ctx, []byte(movement.Reference.String()), value)
		assert.NoError(t, err)
		archiveService.AssertExpectations(t)
		dlq.AssertNotCalled(t, "PublishToDLQ")
	})

	t.Run("archive failure propagates for redelivery", func(t *testing.T) {
		archiveService := new(MockArchiveService)
		dlq := new(MockDLQProducer)
		handler := NewMovementEventHandler(newArchiverTestLogger(), archiveService, dlq)

		movement, value := movementPayload(t)
		archiveErr := errors.New("mongo unavailable")
		archiveService.On("ArchiveMovement", ctx, mock.Anything).Return(archiveErr).Once()

		err := handler.HandleMessage(ctx, []byte(movement.Reference.String()), value)
		assert.ErrorIs(t, err, archiveErr)
		archiveService.AssertExpectations(t)
		dlq.AssertNotCalled(t, "PublishToDLQ")
	})

	t.Run("malformed payload goes to DLQ and commits", func(t *testing.T) {
		archiveService := new(MockArchiveService)
		dlq := new(MockDLQProducer)
		handler := NewMovementEventHandler(newArchiverTestLogger(), archiveService, dlq)

		value := []byte("{not json")
		dlq.On("PublishToDLQ", ctx, "bad-key", value, mock.AnythingOfType("string")).Return(nil).Once()

		err := handler.HandleMessage(ctx, []byte("bad-key"), value)
		assert.NoError(t, err)
		dlq.AssertExpectations(t)
		archiveService.AssertNotCalled(t, "ArchiveMovement")
	})

	t.Run("malformed payload with DLQ failure retries", func(t *testing.T) {
		archiveService := new(MockArchiveService)
		dlq := new(MockDLQProducer)
		handler := NewMovementEventHandler(newArchiverTestLogger(), archiveService, dlq)

		value := []byte("{not json")
		dlq.On("PublishToDLQ", ctx, "bad-key", value, mock.AnythingOfType("string")).
			Return(errors.New("dlq down")).Once()

		err := handler.HandleMessage(ctx, []byte("bad-key"), value)
		assert.Error(t, err)
		dlq.AssertExpectations(t)
	})

	t.Run("malformed payload without DLQ retries", func(t *testing.T) {
		archiveService := new(MockArchiveService)
		handler := NewMovementEventHandler(newArchiverTestLogger(), archiveService, nil)

		err := handler.HandleMessage(ctx, []byte("bad-key"), []byte("{not json"))
		assert.Error(t, err)
		archiveService.AssertNotCalled(t, "ArchiveMovement")
	})
}

// Verify interface implementations
var _ ArchiveService = (*MockArchiveService)(nil)
var _ producers.DeadLetterPublisher = (*MockDLQProducer)(nil)
