package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hanbit-systems/netstock/internal/domain/models"
)

// UnitStore defines the persistence operations over unit records.
type UnitStore interface {
	Create(ctx context.Context, unit models.Unit) error
	GetByName(ctx context.Context, name string) (*models.Unit, error)
	Update(ctx context.Context, id primitive.ObjectID, unit models.Unit) error
	DeleteByName(ctx context.Context, name string) error
	List(ctx context.Context) ([]models.Unit, error)
	CountIPOwners(ctx context.Context, ip string, exclude primitive.ObjectID) (int64, error)
	UpdateDependents(ctx context.Context, primaryName, newPrimaryName, ip string) (int64, error)
}

// UnitRepository implements UnitStore on the units collection.
type UnitRepository struct {
	coll *mongo.Collection
}

// NewUnitRepository builds the unit store on the shared connection handle.
func NewUnitRepository(repo *Repository) *UnitRepository {
	return &UnitRepository{coll: repo.db.Collection(unitsCollection)}
}

// Create inserts a new unit record.
func (r *UnitRepository) Create(ctx context.Context, unit models.Unit) error {
	if _, err := r.coll.InsertOne(ctx, unit); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateError(err)
		}
		return fmt.Errorf("failed to insert unit: %w", err)
	}
	return nil
}

// GetByName fetches a unit by its unique name.
func (r *UnitRepository) GetByName(ctx context.Context, name string) (*models.Unit, error) {
	var unit models.Unit
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&unit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrUnitNotFound
		}
		return nil, fmt.Errorf("failed to fetch unit %q: %w", name, err)
	}
	return &unit, nil
}

// Update replaces the record identified by id.
func (r *UnitRepository) Update(ctx context.Context, id primitive.ObjectID, unit models.Unit) error {
	unit.ID = id
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": id}, unit)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateError(err)
		}
		return fmt.Errorf("failed to update unit %q: %w", unit.Name, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrUnitNotFound
	}
	return nil
}

// DeleteByName removes a unit by name.
func (r *UnitRepository) DeleteByName(ctx context.Context, name string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to delete unit %q: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return models.ErrUnitNotFound
	}
	return nil
}

// List returns every unit ordered by numeric IP ascending; units without a
// parseable address sort last, by name.
func (r *UnitRepository) List(ctx context.Context) ([]models.Unit, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer cursor.Close(ctx)

	var units []models.Unit
	if err := cursor.All(ctx, &units); err != nil {
		return nil, fmt.Errorf("failed to decode units: %w", err)
	}

	SortUnitsByIP(units)
	return units, nil
}

// CountIPOwners counts non-shared units holding the given address,
// excluding the record with the given id.
func (r *UnitRepository) CountIPOwners(ctx context.Context, ip string, exclude primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"ip":             ip,
		"sharedComputer": false,
		"_id":            bson.M{"$ne": exclude},
	}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count ip owners for %q: %w", ip, err)
	}
	return count, nil
}

// UpdateDependents repoints every shared computer borrowing from the named
// primary user to the new name and address, keeping the borrowed IPs in sync
// when a primary user is renamed or re-addressed.
func (r *UnitRepository) UpdateDependents(ctx context.Context, primaryName, newPrimaryName, ip string) (int64, error) {
	filter := bson.M{"sharedComputer": true, "primaryUser": primaryName}
	update := bson.M{"$set": bson.M{"primaryUser": newPrimaryName, "ip": ip}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to update dependents of %q: %w", primaryName, err)
	}
	return res.ModifiedCount, nil
}

// SortUnitsByIP orders units by IPToInt ascending with unparseable or empty
// addresses last.
func SortUnitsByIP(units []models.Unit) {
	sort.SliceStable(units, func(i, j int) bool {
		a, errA := models.IPToInt(units[i].IP)
		b, errB := models.IPToInt(units[j].IP)
		switch {
		case errA == nil && errB == nil:
			if a != b {
				return a < b
			}
			return units[i].Name < units[j].Name
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return units[i].Name < units[j].Name
		}
	})
}

// duplicateError maps a unique index violation onto the matching domain
// error by inspecting the index named in the server message.
func duplicateError(err error) error {
	if strings.Contains(err.Error(), "uniq_unit_ip") {
		return models.ErrDuplicateIP
	}
	return models.ErrDuplicateName
}
