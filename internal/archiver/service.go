// Package archiver consumes committed movement events and maintains the
// MongoDB entry archive. Archiving is idempotent so redelivered events are
// harmless.
package archiver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wallet-ledger-engine/internal/data/mongo"
	"github.com/wallet-ledger-engine/internal/engine"
)

// ArchiveService persists the entries of a committed movement.
type ArchiveService interface {
	ArchiveMovement(ctx context.Context, movement *engine.Movement) error
}

// MovementArchiveService implements ArchiveService over the Mongo archive.
type MovementArchiveService struct {
	archive *mongo.ArchiveRepository
	logger  *slog.Logger
}

func NewMovementArchiveService(logger *slog.Logger, archive *mongo.ArchiveRepository) *MovementArchiveService {
	return &MovementArchiveService{
		archive: archive,
		logger:  logger,
	}
}

// ArchiveMovement upserts every entry of the movement. A failure partway
// through is safe: the handler will not commit the offset and the redelivery
// re-upserts the already archived entries.
func (s *MovementArchiveService) ArchiveMovement(ctx context.Context, movement *engine.Movement) error {
	for _, entry := range movement.Entries {
		if err := s.archive.Upsert(ctx, entry); err != nil {
			return fmt.Errorf("failed to archive entry %s of movement %s: %w",
				entry.ID.String(), movement.Reference.String(), err)
		}
	}

	s.logger.Debug("Archived movement",
		"reference", movement.Reference.String(),
		"purpose", string(movement.Purpose),
		"entries", len(movement.Entries),
	)
	return nil
}
