// Package mongo stores the ledger archive: a denormalized copy of committed
// entries maintained by the archiver from movement events. The archive serves
// entry-history reads so that statement queries never touch the postgres log.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wallet-ledger-engine/internal/domain/ledger"
)

const (
	// ArchiveCollectionName is the name of the entry archive collection in MongoDB
	ArchiveCollectionName = "ledger_entries"
)

// ArchiveRepository stores and serves archived ledger entries.
type ArchiveRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewArchiveRepository creates a new MongoDB archive repository
func NewArchiveRepository(logger *slog.Logger, db *mongo.Database) *ArchiveRepository {
	return &ArchiveRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert stores an entry keyed by its id. Movement events are delivered at
// least once, so a redelivered entry replaces its identical archived copy
// instead of duplicating it.
func (r *ArchiveRepository) Upsert(ctx context.Context, entry *ledger.Entry) error {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"entry_id": entry.ID}
	update := bson.M{"$set": entry}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		r.logger.Error("Failed to upsert archived entry",
			"entry_id", entry.ID.String(),
			"reference", entry.Reference.String(),
			"error", err)
		return fmt.Errorf("failed to upsert archived entry: %w", err)
	}

	return nil
}

// GetByReference retrieves all archived entries of one movement.
// Returns ErrReferenceNotFound if the movement has not been archived yet.
func (r *ArchiveRepository) GetByReference(ctx context.Context, reference uuid.UUID) ([]*ledger.Entry, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"reference": reference}
	opts := options.Find().SetSort(bson.M{"created_at": 1})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archived entries by reference",
			"reference", reference.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get archived entries by reference: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*ledger.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode archived entries",
			"reference", reference.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode archived entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, ledger.ErrReferenceNotFound{Reference: reference}
	}

	return entries, nil
}

// GetByAccountID retrieves paginated archived entries for an account.
// Results are sorted by creation time in descending order (newest first).
func (r *ArchiveRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"account_id": accountID}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archived entries",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get archived entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*ledger.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode archived entries",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode archived entries: %w", err)
	}

	return entries, nil
}

// CountByAccountID counts the total number of archived entries for an account
func (r *ArchiveRepository) CountByAccountID(ctx context.Context, accountID uuid.UUID) (int64, error) {
	collection := r.db.Collection(ArchiveCollectionName)

	filter := bson.M{"account_id": accountID}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count archived entries",
			"account_id", accountID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count archived entries: %w", err)
	}

	return count, nil
}
