package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	unitsCollection      = "units"
	inventoryCollection  = "inventory"
	cableStockCollection = "cable_stock"
)

// Repository owns the MongoDB client shared by the collection stores. Its
// lifecycle belongs to the process entry point: opened and pinged at startup,
// closed on shutdown.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// EnsureIndexes creates the unique indexes backing the name/IP/item
// uniqueness rules, so concurrent check-then-write validation falls back to
// a storage-level duplicate error instead of last-writer-wins.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(unitsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_unit_name"),
		},
		{
			// Shared computers borrow their primary user's address, so the
			// IP is only unique among units that own one.
			Keys: bson.D{{Key: "ip", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("uniq_unit_ip").
				SetPartialFilterExpression(bson.D{{Key: "sharedComputer", Value: false}}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create unit indexes: %w", err)
	}

	_, err = r.db.Collection(inventoryCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "item", Value: 1}, {Key: "location", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_item_location"),
	})
	if err != nil {
		return fmt.Errorf("failed to create inventory index: %w", err)
	}

	_, err = r.db.Collection(cableStockCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "month", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_snapshot_month"),
	})
	if err != nil {
		return fmt.Errorf("failed to create cable stock index: %w", err)
	}

	return nil
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
