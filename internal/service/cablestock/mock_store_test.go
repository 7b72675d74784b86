package cablestock

import (
	"context"

	"github.com/hanbit-systems/netstock/internal/domain/models"
	"github.com/hanbit-systems/netstock/internal/repository/mongodb"
)

// mockSnapshotStore is a simple in-memory snapshot store for testing.
type mockSnapshotStore struct {
	byMonth map[string]models.CableStockSnapshot
}

var _ mongodb.SnapshotStore = (*mockSnapshotStore)(nil)

func newMockSnapshotStore() *mockSnapshotStore {
	return &mockSnapshotStore{byMonth: make(map[string]models.CableStockSnapshot)}
}

func (m *mockSnapshotStore) Upsert(_ context.Context, snapshot models.CableStockSnapshot) error {
	m.byMonth[snapshot.Month] = snapshot
	return nil
}

func (m *mockSnapshotStore) GetByMonth(_ context.Context, month string) (*models.CableStockSnapshot, error) {
	snapshot, ok := m.byMonth[month]
	if !ok {
		return nil, models.ErrSnapshotNotFound
	}
	clone := snapshot
	return &clone, nil
}

func (m *mockSnapshotStore) ListByMonths(_ context.Context, months []string) ([]models.CableStockSnapshot, error) {
	var result []models.CableStockSnapshot
	for _, month := range months {
		if snapshot, ok := m.byMonth[month]; ok {
			result = append(result, snapshot)
		}
	}
	return result, nil
}
