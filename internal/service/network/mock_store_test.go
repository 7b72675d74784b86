package network

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hanbit-systems/netstock/internal/domain/models"
	"github.com/hanbit-systems/netstock/internal/repository/mongodb"
)

// mockUnitStore is a simple in-memory unit store for testing.
type mockUnitStore struct {
	units map[primitive.ObjectID]*models.Unit
}

var _ mongodb.UnitStore = (*mockUnitStore)(nil)

func newMockUnitStore() *mockUnitStore {
	return &mockUnitStore{units: make(map[primitive.ObjectID]*models.Unit)}
}

func (m *mockUnitStore) Create(_ context.Context, unit models.Unit) error {
	unit.ID = primitive.NewObjectID()
	m.units[unit.ID] = &unit
	return nil
}

func (m *mockUnitStore) GetByName(_ context.Context, name string) (*models.Unit, error) {
	for _, unit := range m.units {
		if unit.Name == name {
			clone := *unit
			return &clone, nil
		}
	}
	return nil, models.ErrUnitNotFound
}

func (m *mockUnitStore) Update(_ context.Context, id primitive.ObjectID, unit models.Unit) error {
	if _, ok := m.units[id]; !ok {
		return models.ErrUnitNotFound
	}
	unit.ID = id
	m.units[id] = &unit
	return nil
}

func (m *mockUnitStore) DeleteByName(_ context.Context, name string) error {
	for id, unit := range m.units {
		if unit.Name == name {
			delete(m.units, id)
			return nil
		}
	}
	return models.ErrUnitNotFound
}

func (m *mockUnitStore) List(_ context.Context) ([]models.Unit, error) {
	result := make([]models.Unit, 0, len(m.units))
	for _, unit := range m.units {
		result = append(result, *unit)
	}
	mongodb.SortUnitsByIP(result)
	return result, nil
}

func (m *mockUnitStore) CountIPOwners(_ context.Context, ip string, exclude primitive.ObjectID) (int64, error) {
	var count int64
	for id, unit := range m.units {
		if id != exclude && !unit.SharedComputer && unit.IP == ip {
			count++
		}
	}
	return count, nil
}

func (m *mockUnitStore) UpdateDependents(_ context.Context, primaryName, newPrimaryName, ip string) (int64, error) {
	var count int64
	for _, unit := range m.units {
		if unit.SharedComputer && unit.PrimaryUser == primaryName {
			unit.PrimaryUser = newPrimaryName
			unit.IP = ip
			count++
		}
	}
	return count, nil
}
