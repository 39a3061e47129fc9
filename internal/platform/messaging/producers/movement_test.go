package producers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wallet-ledger-engine/internal/domain/ledger"
	"github.com/wallet-ledger-engine/internal/engine"
)

// MockKafkaWriter mocks KafkaWriter interface
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testMovement() *engine.Movement {
	entry, _ := ledger.NewEntry(uuid.New(), uuid.New(), ledger.DirectionCredit, ledger.PurposeDeposit, 100, 0, nil)
	return &engine.Movement{
		Reference:   entry.Reference,
		Purpose:     ledger.PurposeDeposit,
		Entries:     []*ledger.Entry{entry},
		CommittedAt: time.Now(),
	}
}

func TestMovementProducer_Publish(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	topic := "test-movements"
	ctx := context.Background()

	t.Run("SuccessfulPublish", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &MovementProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		movement := testMovement()
		key := movement.Reference.String()
		expectedJSONValue, _ := json.Marshal(movement)

		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			msg := msgs[0]
			return string(msg.Key) == key && string(msg.Value) == string(expectedJSONValue)
		})).Return(nil).Once()

		err := producer.Publish(ctx, key, movement)
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("PublishReturnsErrorOnWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &MovementProducer{
			logger: logger,
			writer: mockWriter,
			topic:  topic,
		}

		writerError := errors.New("kafka write error")
		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writerError).Once()

		err := producer.Publish(ctx, "key", map[string]string{"data": "test-data"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, writerError) || strings.Contains(err.Error(), writerError.Error()))
		mockWriter.AssertExpectations(t)
	})
}

func TestMovementProducer_MovementCommitted(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	t.Run("PublishesKeyedByReference", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &MovementProducer{
			logger: logger,
			writer: mockWriter,
			topic:  "test-movements",
		}

		movement := testMovement()
		mockWriter.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			return len(msgs) == 1 && string(msgs[0].Key) == movement.Reference.String()
		})).Return(nil).Once()

		producer.MovementCommitted(ctx, movement)
		mockWriter.AssertExpectations(t)
	})

	t.Run("SwallowsWriterError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &MovementProducer{
			logger: logger,
			writer: mockWriter,
			topic:  "test-movements",
		}

		mockWriter.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).
			Return(errors.New("kafka down")).Once()

		// Must not panic or surface the error to the caller.
		producer.MovementCommitted(ctx, testMovement())
		mockWriter.AssertExpectations(t)
	})
}

func TestMovementProducer_Close(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	t.Run("SuccessfulClose", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &MovementProducer{
			logger: logger,
			writer: mockWriter,
			topic:  "test-movements-close",
		}

		mockWriter.On("Close").Return(nil).Once()

		err := producer.Close()
		require.NoError(t, err)
		mockWriter.AssertExpectations(t)
	})

	t.Run("CloseReturnsErrorOnWriterCloseError", func(t *testing.T) {
		mockWriter := new(MockKafkaWriter)
		producer := &MovementProducer{
			logger: logger,
			writer: mockWriter,
			topic:  "test-movements-close",
		}
		closeError := errors.New("kafka close error")

		mockWriter.On("Close").Return(closeError).Once()

		err := producer.Close()
		require.Error(t, err)
		assert.True(t, errors.Is(err, closeError) || strings.Contains(err.Error(), closeError.Error()))
		mockWriter.AssertExpectations(t)
	})
}

// Verify interface implementations
var _ KafkaWriter = (*MockKafkaWriter)(nil)
var _ engine.Notifier = (*MovementProducer)(nil)
