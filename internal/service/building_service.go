package service

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/database"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type buildingStore interface {
	ListBuildings(ctx context.Context, exec sqlx.ExtContext) ([]models.Building, error)
	CreateBuilding(ctx context.Context, exec sqlx.ExtContext, building *models.Building) error
	UpsertTravel(ctx context.Context, exec sqlx.ExtContext, travel models.BuildingTravel) error
	InsertTravelIfMissing(ctx context.Context, exec sqlx.ExtContext, travel models.BuildingTravel) error
}

type referenceInvalidator interface {
	Invalidate(ctx context.Context)
}

// BuildingService manages buildings and the travel matrix between them.
type BuildingService struct {
	store         buildingStore
	reference     referenceInvalidator
	tx            database.TxBeginner
	maxRetries    int
	defaultTravel int
	logger        *zap.Logger
}

// NewBuildingService wires building management.
func NewBuildingService(store buildingStore, reference referenceInvalidator, tx database.TxBeginner, maxRetries, defaultTravel int, logger *zap.Logger) *BuildingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultTravel <= 0 {
		defaultTravel = DefaultTravelMinutes
	}
	return &BuildingService{store: store, reference: reference, tx: tx, maxRetries: maxRetries, defaultTravel: defaultTravel, logger: logger}
}

// ListBuildings returns every building.
func (s *BuildingService) ListBuildings(ctx context.Context) ([]models.Building, error) {
	buildings, err := s.store.ListBuildings(ctx, nil)
	if err != nil {
		return nil, internalError(err, "failed to list buildings")
	}
	return buildings, nil
}

// CreateBuilding inserts the building and seeds a default travel row to every
// existing building.
func (s *BuildingService) CreateBuilding(ctx context.Context, req dto.CreateBuildingRequest) (*models.Building, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	var building *models.Building
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		existing, err := s.store.ListBuildings(ctx, tx)
		if err != nil {
			return internalError(err, "failed to list buildings")
		}
		building = &models.Building{Name: name}
		if err := s.store.CreateBuilding(ctx, tx, building); err != nil {
			return internalError(err, "failed to create building")
		}
		for _, other := range existing {
			if other.ID == building.ID {
				continue
			}
			a, b := models.CanonicalPair(building.ID, other.ID)
			if err := s.store.InsertTravelIfMissing(ctx, tx, models.BuildingTravel{BuildingAID: a, BuildingBID: b, Minutes: s.defaultTravel}); err != nil {
				return internalError(err, "failed to seed travel time")
			}
		}
		return nil
	})
	if err != nil {
		return nil, translateTxError(err, "failed to create building")
	}
	s.reference.Invalidate(ctx)
	s.logger.Info("building created", zap.Int64("building_id", building.ID), zap.String("name", building.Name))
	return building, nil
}

// SetTravelTime stores the minutes needed between two buildings.
func (s *BuildingService) SetTravelTime(ctx context.Context, req dto.TravelTimeRequest) (*models.BuildingTravel, error) {
	if req.BuildingAID == req.BuildingBID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "travel time needs two different buildings")
	}
	if req.Minutes < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minutes must not be negative")
	}
	a, b := models.CanonicalPair(req.BuildingAID, req.BuildingBID)
	travel := models.BuildingTravel{BuildingAID: a, BuildingBID: b, Minutes: req.Minutes}
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		buildings, err := s.store.ListBuildings(ctx, tx)
		if err != nil {
			return internalError(err, "failed to list buildings")
		}
		known := make(map[int64]bool, len(buildings))
		for _, building := range buildings {
			known[building.ID] = true
		}
		if !known[a] || !known[b] {
			return appErrors.Clone(appErrors.ErrNotFound, "building not found")
		}
		if err := s.store.UpsertTravel(ctx, tx, travel); err != nil {
			return internalError(err, "failed to store travel time")
		}
		return nil
	})
	if err != nil {
		return nil, translateTxError(err, "failed to set travel time")
	}
	s.reference.Invalidate(ctx)
	return &travel, nil
}
