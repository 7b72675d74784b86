package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hanbit-systems/netstock/internal/config"
	"github.com/hanbit-systems/netstock/internal/domain/models"
	"github.com/hanbit-systems/netstock/internal/repository/mongodb"
	"github.com/hanbit-systems/netstock/internal/server/handlers"
	"github.com/hanbit-systems/netstock/internal/service/cablestock"
	"github.com/hanbit-systems/netstock/internal/service/inventory"
	"github.com/hanbit-systems/netstock/internal/service/network"
)

type memUnitStore struct {
	units map[primitive.ObjectID]*models.Unit
}

var _ mongodb.UnitStore = (*memUnitStore)(nil)

func (m *memUnitStore) Create(_ context.Context, unit models.Unit) error {
	unit.ID = primitive.NewObjectID()
	m.units[unit.ID] = &unit
	return nil
}

func (m *memUnitStore) GetByName(_ context.Context, name string) (*models.Unit, error) {
	for _, unit := range m.units {
		if unit.Name == name {
			clone := *unit
			return &clone, nil
		}
	}
	return nil, models.ErrUnitNotFound
}

func (m *memUnitStore) Update(_ context.Context, id primitive.ObjectID, unit models.Unit) error {
	if _, ok := m.units[id]; !ok {
		return models.ErrUnitNotFound
	}
	unit.ID = id
	m.units[id] = &unit
	return nil
}

func (m *memUnitStore) DeleteByName(_ context.Context, name string) error {
	for id, unit := range m.units {
		if unit.Name == name {
			delete(m.units, id)
			return nil
		}
	}
	return models.ErrUnitNotFound
}

func (m *memUnitStore) List(_ context.Context) ([]models.Unit, error) {
	result := make([]models.Unit, 0, len(m.units))
	for _, unit := range m.units {
		result = append(result, *unit)
	}
	mongodb.SortUnitsByIP(result)
	return result, nil
}

func (m *memUnitStore) CountIPOwners(_ context.Context, ip string, exclude primitive.ObjectID) (int64, error) {
	var count int64
	for id, unit := range m.units {
		if id != exclude && !unit.SharedComputer && unit.IP == ip {
			count++
		}
	}
	return count, nil
}

func (m *memUnitStore) UpdateDependents(_ context.Context, primaryName, newPrimaryName, ip string) (int64, error) {
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

type memInventoryStore struct {
	items []models.InventoryItem
}

var _ mongodb.InventoryStore = (*memInventoryStore)(nil)

func (m *memInventoryStore) Create(_ context.Context, item models.InventoryItem) error {
	m.items = append(m.items, item)
	return nil
}

func (m *memInventoryStore) Get(_ context.Context, item string, location models.Location) (*models.InventoryItem, error) {
	for i := range m.items {
		if m.items[i].Item == item && (location == "" || m.items[i].Location == location) {
			clone := m.items[i]
			return &clone, nil
		}
	}
	return nil, models.ErrItemNotFound
}

func (m *memInventoryStore) List(_ context.Context, location models.Location) ([]models.InventoryItem, error) {
	result := make([]models.InventoryItem, 0, len(m.items))
	for _, item := range m.items {
		if location == "" || item.Location == location {
			result = append(result, item)
		}
	}
	return result, nil
}

func (m *memInventoryStore) Update(_ context.Context, item string, location models.Location, record models.InventoryItem) error {
	for i := range m.items {
		if m.items[i].Item == item && m.items[i].Location == location {
			m.items[i] = record
			return nil
		}
	}
	return models.ErrItemNotFound
}

func (m *memInventoryStore) Delete(_ context.Context, item string, location models.Location) error {
	for i := range m.items {
		if m.items[i].Item == item && (location == "" || m.items[i].Location == location) {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return models.ErrItemNotFound
}

type memSnapshotStore struct {
	byMonth map[string]models.CableStockSnapshot
}

var _ mongodb.SnapshotStore = (*memSnapshotStore)(nil)

func (m *memSnapshotStore) Upsert(_ context.Context, snapshot models.CableStockSnapshot) error {
	m.byMonth[snapshot.Month] = snapshot
	return nil
}

func (m *memSnapshotStore) GetByMonth(_ context.Context, month string) (*models.CableStockSnapshot, error) {
	snapshot, ok := m.byMonth[month]
	if !ok {
		return nil, models.ErrSnapshotNotFound
	}
	clone := snapshot
	return &clone, nil
}

func (m *memSnapshotStore) ListByMonths(_ context.Context, months []string) ([]models.CableStockSnapshot, error) {
	var result []models.CableStockSnapshot
	for _, month := range months {
		if snapshot, ok := m.byMonth[month]; ok {
			result = append(result, snapshot)
		}
	}
	return result, nil
}

type fixture struct {
	engine    *gin.Engine
	snapshots *memSnapshotStore
}

func newTestRouter(t *testing.T) *fixture {
	t.Helper()

	unitStore := &memUnitStore{units: make(map[primitive.ObjectID]*models.Unit)}
	invStore := &memInventoryStore{}
	snapStore := &memSnapshotStore{byMonth: make(map[string]models.CableStockSnapshot)}

	networkSvc := network.NewService(unitStore,
		config.NetworkConfig{Gateways: []config.Gateway{{IP: "192.168.1.254", Range: 50}}},
		config.SchemaConfig{}, nil)
	inventorySvc := inventory.NewService(invStore, nil, nil)
	cableSvc := cablestock.NewService(snapStore, nil, config.CableStockConfig{
		CategoryHeader: "구분",
		TypeHeader:     "종류",
		LinNoHeader:    "LINNO",
		QuantityHeader: "수량",
	}, nil)

	engine := New(
		handlers.NewUnitHandler(networkSvc, nil),
		handlers.NewInventoryHandler(inventorySvc, nil),
		handlers.NewCableStockHandler(cableSvc, nil),
		nil,
	)
	return &fixture{engine: engine, snapshots: snapStore}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	f := newTestRouter(t)
	w := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUnitLifecycle(t *testing.T) {
	f := newTestRouter(t)

	w := f.do(t, http.MethodPost, "/api/units", gin.H{"name": "jdoe", "ip": "192.168.1.2"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/units/jdoe", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var unit models.Unit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &unit))
	assert.Equal(t, "192.168.1.2", unit.IP)

	// Duplicate IP surfaces as a conflict, a forbidden name as a bad request.
	w = f.do(t, http.MethodPost, "/api/units", gin.H{"name": "other", "ip": "192.168.1.2"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/units", gin.H{"name": "bad/name", "ip": "192.168.1.3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/api/units/jdoe", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/units/jdoe", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckIP(t *testing.T) {
	f := newTestRouter(t)

	w := f.do(t, http.MethodPost, "/api/units/check-ip", gin.H{"ip": "192.168.1.10"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "available")

	w = f.do(t, http.MethodPost, "/api/units", gin.H{"name": "jdoe", "ip": "192.168.1.10"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/units/check-ip", gin.H{"ip": "192.168.1.10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/units/check-ip", gin.H{"ip": "999.1.1.1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/units/check-ip", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSnapshotMonthPath(t *testing.T) {
	f := newTestRouter(t)
	require.NoError(t, f.snapshots.Upsert(context.Background(), models.CableStockSnapshot{
		Month: "04/2024",
		Items: []models.StockItem{{Type: "UTP-CAT5E", Quantity: 3}},
	}))

	// Escaped slash and dash spellings both address the same snapshot.
	for _, path := range []string{"/api/cablestock/04%2F2024", "/api/cablestock/04-2024"} {
		w := f.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "UTP-CAT5E", path)
	}

	w := f.do(t, http.MethodGet, "/api/cablestock/05-2024", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompareEndpoint(t *testing.T) {
	f := newTestRouter(t)
	ctx := context.Background()
	require.NoError(t, f.snapshots.Upsert(ctx, models.CableStockSnapshot{
		Month: "04/2024",
		Items: []models.StockItem{{Type: "UTP-CAT5E", Quantity: 10}},
	}))
	require.NoError(t, f.snapshots.Upsert(ctx, models.CableStockSnapshot{
		Month: "05/2024",
		Items: []models.StockItem{{Type: "UTP-CAT5E", Quantity: 4}},
	}))

	w := f.do(t, http.MethodGet, "/api/cablestock/compare?from=04-2024&to=05-2024", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var records []models.ConsumptionRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 6, records[0].UsedQuantity)

	w = f.do(t, http.MethodGet, "/api/cablestock/compare?from=04-2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadEndpoint(t *testing.T) {
	f := newTestRouter(t)

	w := f.do(t, http.MethodPost, "/api/cablestock/upload", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing file part")

	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	for i, row := range [][]interface{}{
		{"구분", "종류", "LINNO", "수량"},
		{"UTP", "CAT5E", "L-100", 12},
	} {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, workbook.SetCellValue(sheet, cell, value))
		}
	}
	content, err := workbook.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "CABLE STOCK(04.30.2024).xlsx")
	require.NoError(t, err)
	_, err = part.Write(content.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/cablestock/upload", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", form.FormDataContentType())

	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "UTP-CAT5E")

	w = f.do(t, http.MethodGet, "/api/cablestock/04-2024", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInventoryEndpoints(t *testing.T) {
	f := newTestRouter(t)

	w := f.do(t, http.MethodPost, "/api/inventory", gin.H{"item": "velcro", "location": "Wiley", "quantity": 4})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/inventory?location=wiley", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "velcro")

	w = f.do(t, http.MethodGet, "/api/inventory?location=nowhere", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/inventory/velcro", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, "/api/inventory/velcro", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
