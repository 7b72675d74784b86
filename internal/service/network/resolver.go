package network

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/hanbit-systems/netstock/internal/config"
	"github.com/hanbit-systems/netstock/internal/domain/models"
	"github.com/hanbit-systems/netstock/internal/repository/mongodb"
)

// UnitInput carries a unit create/update request. Pointer fields distinguish
// "not supplied" from an explicit zero value so updates can retain prior
// stored state.
type UnitInput struct {
	Name           string            `json:"name"`
	IP             string            `json:"ip"`
	Type           models.UnitType   `json:"type"`
	SharedComputer *bool             `json:"sharedComputer"`
	PrimaryUser    string            `json:"primaryUser"`
	Fields         map[string]string `json:"fields"`
}

// Service owns unit persistence orchestration: IP conflict resolution on
// create/update and subnet availability reporting.
type Service struct {
	units    mongodb.UnitStore
	gateways []config.Gateway
	schemas  config.SchemaConfig
	logger   *zap.Logger
}

// NewService wires the network service.
func NewService(units mongodb.UnitStore, network config.NetworkConfig, schemas config.SchemaConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		units:    units,
		gateways: network.Gateways,
		schemas:  schemas,
		logger:   logger,
	}
}

// CreateUnit validates the request, resolves the effective IP and persists
// the new unit.
func (s *Service) CreateUnit(ctx context.Context, input UnitInput) (*models.Unit, error) {
	name := models.CleanName(input.Name)
	if err := models.ValidateName(name); err != nil {
		return nil, err
	}

	if _, err := s.units.GetByName(ctx, name); err == nil {
		return nil, models.ErrDuplicateName
	} else if !errors.Is(err, models.ErrUnitNotFound) {
		return nil, err
	}

	unitType := input.Type
	if unitType == "" {
		unitType = models.UnitTypeEmployee
	}
	if !unitType.Valid() {
		return nil, fmt.Errorf("%w: unknown unit type %q", models.ErrInvalidField, unitType)
	}

	if err := models.ValidateFields(s.schemaFor(unitType), input.Fields); err != nil {
		return nil, err
	}

	unit := models.Unit{
		Name:   name,
		Type:   unitType,
		Fields: input.Fields,
	}

	// Shared computers are an employee-only concept; machines always own an IP.
	shared := unitType == models.UnitTypeEmployee && input.SharedComputer != nil && *input.SharedComputer

	if shared {
		primary, err := s.resolvePrimaryUser(ctx, input.PrimaryUser)
		if err != nil {
			return nil, err
		}
		unit.SharedComputer = true
		unit.PrimaryUser = primary.Name
		unit.IP = primary.IP
	} else {
		if input.IP == "" {
			return nil, models.ErrMissingIP
		}
		if err := s.checkIPAvailable(ctx, input.IP, primitive.NilObjectID); err != nil {
			return nil, err
		}
		unit.IP = input.IP
	}

	if err := s.units.Create(ctx, unit); err != nil {
		return nil, err
	}

	s.logger.Info("unit created",
		zap.String("name", unit.Name),
		zap.String("ip", unit.IP),
		zap.Bool("shared", unit.SharedComputer))
	return &unit, nil
}

// UpdateUnit merges the request over the stored record, re-deriving the IP
// when the shared flag flips or the address changes, and keeps dependent
// shared computers in sync with a renamed or re-addressed primary user.
func (s *Service) UpdateUnit(ctx context.Context, name string, input UnitInput) (*models.Unit, error) {
	current, err := s.units.GetByName(ctx, models.CleanName(name))
	if err != nil {
		return nil, err
	}

	newName := current.Name
	if input.Name != "" {
		newName = models.CleanName(input.Name)
		if err := models.ValidateName(newName); err != nil {
			return nil, err
		}
		if newName != current.Name {
			if _, err := s.units.GetByName(ctx, newName); err == nil {
				return nil, models.ErrDuplicateName
			} else if !errors.Is(err, models.ErrUnitNotFound) {
				return nil, err
			}
		}
	}

	unitType := current.Type
	if input.Type != "" {
		unitType = input.Type
		if !unitType.Valid() {
			return nil, fmt.Errorf("%w: unknown unit type %q", models.ErrInvalidField, unitType)
		}
	}

	fields := make(map[string]string, len(current.Fields)+len(input.Fields))
	for k, v := range current.Fields {
		fields[k] = v
	}
	for k, v := range input.Fields {
		fields[k] = v
	}
	if err := models.ValidateFields(s.schemaFor(unitType), fields); err != nil {
		return nil, err
	}

	shared := current.SharedComputer
	if input.SharedComputer != nil {
		shared = *input.SharedComputer
	}
	if unitType == models.UnitTypeMachine {
		shared = false
	}

	unit := models.Unit{
		ID:     current.ID,
		Name:   newName,
		Type:   unitType,
		Fields: fields,
	}

	if shared {
		primaryName := input.PrimaryUser
		if primaryName == "" {
			primaryName = current.PrimaryUser
		}
		primary, err := s.resolvePrimaryUser(ctx, primaryName)
		if err != nil {
			return nil, err
		}
		unit.SharedComputer = true
		unit.PrimaryUser = primary.Name
		unit.IP = primary.IP
	} else {
		ip := input.IP
		if ip == "" {
			if current.SharedComputer {
				// Leaving shared mode requires an address of its own.
				return nil, models.ErrMissingIP
			}
			ip = current.IP
		}
		if current.SharedComputer || ip != current.IP {
			if err := s.checkIPAvailable(ctx, ip, current.ID); err != nil {
				return nil, err
			}
		}
		unit.IP = ip
	}

	if err := s.units.Update(ctx, current.ID, unit); err != nil {
		return nil, err
	}

	if !unit.SharedComputer && (unit.Name != current.Name || unit.IP != current.IP) {
		n, err := s.units.UpdateDependents(ctx, current.Name, unit.Name, unit.IP)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			s.logger.Info("updated dependent shared computers",
				zap.String("primaryUser", unit.Name),
				zap.Int64("count", n))
		}
	}

	s.logger.Info("unit updated",
		zap.String("name", unit.Name),
		zap.String("ip", unit.IP),
		zap.Bool("shared", unit.SharedComputer))
	return &unit, nil
}

// CheckIP reports whether the address could be assigned to a new unit right
// now. It never writes; repeated calls are side-effect free.
func (s *Service) CheckIP(ctx context.Context, ip string) error {
	return s.checkIPAvailable(ctx, ip, primitive.NilObjectID)
}

// ListUnits returns all units ordered by IP ascending.
func (s *Service) ListUnits(ctx context.Context) ([]models.Unit, error) {
	return s.units.List(ctx)
}

// GetUnit fetches one unit by name.
func (s *Service) GetUnit(ctx context.Context, name string) (*models.Unit, error) {
	return s.units.GetByName(ctx, models.CleanName(name))
}

// DeleteUnit removes one unit by name.
func (s *Service) DeleteUnit(ctx context.Context, name string) error {
	if err := s.units.DeleteByName(ctx, models.CleanName(name)); err != nil {
		return err
	}
	s.logger.Info("unit deleted", zap.String("name", name))
	return nil
}

// checkIPAvailable validates the address format before any database lookup,
// then rejects addresses already owned by another non-shared unit.
func (s *Service) checkIPAvailable(ctx context.Context, ip string, exclude primitive.ObjectID) error {
	if _, err := models.ParseIPv4(ip); err != nil {
		return err
	}
	count, err := s.units.CountIPOwners(ctx, ip, exclude)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %s", models.ErrDuplicateIP, ip)
	}
	return nil
}

func (s *Service) resolvePrimaryUser(ctx context.Context, name string) (*models.Unit, error) {
	cleaned := models.CleanName(name)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: primaryUser is required for a shared computer", models.ErrPrimaryUserNotFound)
	}
	primary, err := s.units.GetByName(ctx, cleaned)
	if err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			return nil, fmt.Errorf("%w: %q", models.ErrPrimaryUserNotFound, cleaned)
		}
		return nil, err
	}
	return primary, nil
}

func (s *Service) schemaFor(t models.UnitType) []models.FieldSpec {
	if t == models.UnitTypeMachine {
		return s.schemas.Machine
	}
	return s.schemas.Employee
}
