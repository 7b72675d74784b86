package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hanbit-systems/netstock/internal/domain/models"
)

// SnapshotStore defines the persistence operations over monthly cable stock
// snapshots.
type SnapshotStore interface {
	Upsert(ctx context.Context, snapshot models.CableStockSnapshot) error
	GetByMonth(ctx context.Context, month string) (*models.CableStockSnapshot, error)
	ListByMonths(ctx context.Context, months []string) ([]models.CableStockSnapshot, error)
}

// SnapshotRepository implements SnapshotStore on the cable stock collection.
type SnapshotRepository struct {
	coll *mongo.Collection
}

// NewSnapshotRepository builds the snapshot store on the shared connection handle.
func NewSnapshotRepository(repo *Repository) *SnapshotRepository {
	return &SnapshotRepository{coll: repo.db.Collection(cableStockCollection)}
}

// Upsert stores the snapshot, replacing any prior document for its month.
func (r *SnapshotRepository) Upsert(ctx context.Context, snapshot models.CableStockSnapshot) error {
	snapshot.ID = primitive.NilObjectID // keep the existing document id on replace
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"month": snapshot.Month}, snapshot, opts); err != nil {
		return fmt.Errorf("failed to upsert snapshot for %s: %w", snapshot.Month, err)
	}
	return nil
}

// GetByMonth fetches the snapshot keyed MM/YYYY.
func (r *SnapshotRepository) GetByMonth(ctx context.Context, month string) (*models.CableStockSnapshot, error) {
	var snapshot models.CableStockSnapshot
	err := r.coll.FindOne(ctx, bson.M{"month": month}).Decode(&snapshot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", models.ErrSnapshotNotFound, month)
		}
		return nil, fmt.Errorf("failed to fetch snapshot %s: %w", month, err)
	}
	return &snapshot, nil
}

// ListByMonths returns the snapshots whose month key is in the given set,
// newest upload first.
func (r *SnapshotRepository) ListByMonths(ctx context.Context, months []string) ([]models.CableStockSnapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploadDate", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"month": bson.M{"$in": months}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var snapshots []models.CableStockSnapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}
	return snapshots, nil
}
