package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hanbit-systems/netstock/internal/domain/models"
)

// InventoryStore defines the persistence operations over inventory items,
// keyed by the (item, location) pair.
type InventoryStore interface {
	Create(ctx context.Context, item models.InventoryItem) error
	Get(ctx context.Context, item string, location models.Location) (*models.InventoryItem, error)
	List(ctx context.Context, location models.Location) ([]models.InventoryItem, error)
	Update(ctx context.Context, item string, location models.Location, record models.InventoryItem) error
	Delete(ctx context.Context, item string, location models.Location) error
}

// InventoryRepository implements InventoryStore on the inventory collection.
type InventoryRepository struct {
	coll *mongo.Collection
}

// NewInventoryRepository builds the inventory store on the shared connection handle.
func NewInventoryRepository(repo *Repository) *InventoryRepository {
	return &InventoryRepository{coll: repo.db.Collection(inventoryCollection)}
}

// Create inserts a new inventory item.
func (r *InventoryRepository) Create(ctx context.Context, item models.InventoryItem) error {
	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateItem
		}
		return fmt.Errorf("failed to insert inventory item: %w", err)
	}
	return nil
}

// Get fetches one item. An empty location matches the first location holding
// the item name.
func (r *InventoryRepository) Get(ctx context.Context, item string, location models.Location) (*models.InventoryItem, error) {
	filter := bson.M{"item": item}
	if location != "" {
		filter["location"] = location
	}

	var record models.InventoryItem
	err := r.coll.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to fetch inventory item %q: %w", item, err)
	}
	return &record, nil
}

// List returns items ordered by name ascending, optionally filtered by location.
func (r *InventoryRepository) List(ctx context.Context, location models.Location) ([]models.InventoryItem, error) {
	filter := bson.M{}
	if location != "" {
		filter["location"] = location
	}

	opts := options.Find().SetSort(bson.D{{Key: "item", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.InventoryItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}
	return items, nil
}

// Update overwrites the record currently keyed by (item, location); the
// replacement may carry a different location or name.
func (r *InventoryRepository) Update(ctx context.Context, item string, location models.Location, record models.InventoryItem) error {
	update := bson.M{"$set": bson.M{
		"item":     record.Item,
		"location": record.Location,
		"quantity": record.Quantity,
		"eos":      record.EOS,
		"note":     record.Note,
		"updated":  record.Updated,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"item": item, "location": location}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateItem
		}
		return fmt.Errorf("failed to update inventory item %q: %w", item, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrItemNotFound
	}
	return nil
}

// Delete removes one item; an empty location removes the first match by name.
func (r *InventoryRepository) Delete(ctx context.Context, item string, location models.Location) error {
	filter := bson.M{"item": item}
	if location != "" {
		filter["location"] = location
	}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item %q: %w", item, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrItemNotFound
	}
	return nil
}
