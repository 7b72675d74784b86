package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hanbit-systems/netstock/internal/domain/models"
	"github.com/hanbit-systems/netstock/internal/repository/mongodb"
	"github.com/hanbit-systems/netstock/pkg/clients/notify"
)

// ItemInput carries an inventory create/update request. Pointer fields
// distinguish "not supplied" from explicit zero values on update.
type ItemInput struct {
	Item     string  `json:"item"`
	Location string  `json:"location"`
	Quantity *int    `json:"quantity"`
	EOS      *bool   `json:"eos"`
	Note     *string `json:"note"`
}

// Service orchestrates inventory CRUD: (item, location) uniqueness, the
// always-refreshed updated timestamp and out-of-stock notifications.
type Service struct {
	store    mongodb.InventoryStore
	notifier notify.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires an inventory service. The notifier may be nil when no
// webhook is configured.
func NewService(store mongodb.InventoryStore, notifier notify.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores a new item, rejecting a duplicate (item, location) pair.
func (s *Service) Create(ctx context.Context, input ItemInput) (*models.InventoryItem, error) {
	name := strings.TrimSpace(input.Item)
	if name == "" {
		return nil, fmt.Errorf("%w: item name must not be empty", models.ErrInvalidField)
	}

	location, err := models.ParseLocation(input.Location)
	if err != nil {
		return nil, err
	}

	quantity := 0
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", models.ErrInvalidField)
	}

	if _, err := s.store.Get(ctx, name, location); err == nil {
		return nil, models.ErrDuplicateItem
	} else if !errors.Is(err, models.ErrItemNotFound) {
		return nil, err
	}

	record := models.InventoryItem{
		Item:     name,
		Location: location,
		Quantity: quantity,
		Updated:  s.now().UTC(),
	}
	if input.EOS != nil {
		record.EOS = *input.EOS
	}
	if input.Note != nil {
		record.Note = *input.Note
	}

	if err := s.store.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("inventory item created",
		zap.String("item", record.Item),
		zap.String("location", string(record.Location)))
	s.maybeNotify(ctx, record)
	return &record, nil
}

// Update overlays the supplied fields on the stored record. The updated
// timestamp is refreshed on every call, whether or not values changed.
func (s *Service) Update(ctx context.Context, item, location string, input ItemInput) (*models.InventoryItem, error) {
	loc, err := s.optionalLocation(location)
	if err != nil {
		return nil, err
	}

	current, err := s.store.Get(ctx, item, loc)
	if err != nil {
		return nil, err
	}

	record := *current
	if name := strings.TrimSpace(input.Item); name != "" {
		record.Item = name
	}
	if input.Location != "" {
		newLoc, err := models.ParseLocation(input.Location)
		if err != nil {
			return nil, err
		}
		record.Location = newLoc
	}
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity must not be negative", models.ErrInvalidField)
		}
		record.Quantity = *input.Quantity
	}
	if input.EOS != nil {
		record.EOS = *input.EOS
	}
	if input.Note != nil {
		record.Note = *input.Note
	}
	record.Updated = s.now().UTC()

	// Moving or renaming lands on a new (item, location) key; reject an
	// occupied target before writing.
	if record.Item != current.Item || record.Location != current.Location {
		if _, err := s.store.Get(ctx, record.Item, record.Location); err == nil {
			return nil, models.ErrDuplicateItem
		} else if !errors.Is(err, models.ErrItemNotFound) {
			return nil, err
		}
	}

	if err := s.store.Update(ctx, current.Item, current.Location, record); err != nil {
		return nil, err
	}

	s.logger.Info("inventory item updated",
		zap.String("item", record.Item),
		zap.String("location", string(record.Location)))
	s.maybeNotify(ctx, record)
	return &record, nil
}

// List returns items, optionally filtered by location.
func (s *Service) List(ctx context.Context, location string) ([]models.InventoryItem, error) {
	loc, err := s.optionalLocation(location)
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, loc)
}

// Get fetches one item by name, optionally pinned to a location.
func (s *Service) Get(ctx context.Context, item, location string) (*models.InventoryItem, error) {
	loc, err := s.optionalLocation(location)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, item, loc)
}

// Delete removes one item by name, optionally pinned to a location.
func (s *Service) Delete(ctx context.Context, item, location string) error {
	loc, err := s.optionalLocation(location)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, item, loc); err != nil {
		return err
	}
	s.logger.Info("inventory item deleted", zap.String("item", item))
	return nil
}

// Stale returns items whose updated timestamp is older than the window,
// for the scheduled review sweep.
func (s *Service) Stale(ctx context.Context, olderThan time.Duration) ([]models.InventoryItem, error) {
	items, err := s.store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	cutoff := s.now().UTC().Add(-olderThan)
	stale := make([]models.InventoryItem, 0)
	for _, item := range items {
		if item.Updated.Before(cutoff) {
			stale = append(stale, item)
		}
	}
	return stale, nil
}

// maybeNotify pushes a webhook event for items flagged end-of-stock or
// written with zero quantity. Delivery failures never fail the write.
func (s *Service) maybeNotify(ctx context.Context, record models.InventoryItem) {
	if s.notifier == nil || (!record.EOS && record.Quantity > 0) {
		return
	}

	event := notify.Event{
		Type:    "inventory.out_of_stock",
		Subject: record.Item,
		Message: fmt.Sprintf("%s at %s: quantity %d, eos=%t", record.Item, record.Location, record.Quantity, record.EOS),
		Time:    s.now().UTC(),
	}
	if err := s.notifier.Send(ctx, event); err != nil {
		s.logger.Warn("out-of-stock notification failed", zap.String("item", record.Item), zap.Error(err))
	}
}

func (s *Service) optionalLocation(location string) (models.Location, error) {
	if location == "" {
		return "", nil
	}
	return models.ParseLocation(location)
}
