package archiver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wallet-ledger-engine/internal/engine"
	"github.com/wallet-ledger-engine/internal/platform/messaging/producers"
)

// MovementEventHandler handles incoming movement event messages from Kafka
type MovementEventHandler struct {
	archiveService ArchiveService
	producer       producers.DeadLetterPublisher
	logger         *slog.Logger
}

// NewMovementEventHandler creates a new handler
func NewMovementEventHandler(
	logger *slog.Logger,
	archiveService ArchiveService,
	producer producers.DeadLetterPublisher,
) *MovementEventHandler {
	return &MovementEventHandler{
		archiveService: archiveService,
		producer:       producer,
		logger:         logger,
	}
}

// HandleMessage processes Kafka messages
func (h *MovementEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var movement engine.Movement
	if err := json.Unmarshal(value, &movement); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal movement event from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		// Send to DLQ if available
		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				// Message handled, commit offset
				return nil
			}
		}
		// Allow Kafka retries
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	h.logger.Info("Received movement event for archiving",
		"reference", movement.Reference.String(),
		"purpose", string(movement.Purpose),
		"entries", len(movement.Entries),
	)

	if err := h.archiveService.ArchiveMovement(ctx, &movement); err != nil {
		h.logger.Error("Failed to archive movement",
			"reference", movement.Reference.String(),
			"error", err,
		)
		return fmt.Errorf("archiving movement %s failed: %w", movement.Reference.String(), err)
	}

	h.logger.Info("Successfully archived movement", "reference", movement.Reference.String())
	return nil // Success, commit offset
}
