package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// RoomRepository persists rooms, buildings and the travel matrix.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// GetRoom loads one room.
func (r *RoomRepository) GetRoom(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Room, error) {
	var room models.Room
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &room, `SELECT id, building_id, name, capacity FROM rooms WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListRooms returns every room ordered by capacity then id.
func (r *RoomRepository) ListRooms(ctx context.Context, exec sqlx.ExtContext) ([]models.Room, error) {
	var rooms []models.Room
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &rooms, `SELECT id, building_id, name, capacity FROM rooms ORDER BY capacity ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListBuildings returns every building ordered by id.
func (r *RoomRepository) ListBuildings(ctx context.Context, exec sqlx.ExtContext) ([]models.Building, error) {
	var buildings []models.Building
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &buildings, `SELECT id, name FROM buildings ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	return buildings, nil
}

// CreateBuilding inserts a building and stores the generated id.
func (r *RoomRepository) CreateBuilding(ctx context.Context, exec sqlx.ExtContext, building *models.Building) error {
	row := pick(r.db, exec).QueryRowxContext(ctx, `INSERT INTO buildings (name) VALUES ($1) RETURNING id`, building.Name)
	if err := row.Scan(&building.ID); err != nil {
		return fmt.Errorf("create building: %w", err)
	}
	return nil
}

// ListTravels returns the whole travel matrix.
func (r *RoomRepository) ListTravels(ctx context.Context, exec sqlx.ExtContext) ([]models.BuildingTravel, error) {
	var travels []models.BuildingTravel
	query := `SELECT building_a_id, building_b_id, minutes FROM building_travels ORDER BY building_a_id ASC, building_b_id ASC`
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &travels, query); err != nil {
		return nil, fmt.Errorf("list building travels: %w", err)
	}
	return travels, nil
}

// UpsertTravel stores the travel time of a canonical building pair.
func (r *RoomRepository) UpsertTravel(ctx context.Context, exec sqlx.ExtContext, travel models.BuildingTravel) error {
	travel.BuildingAID, travel.BuildingBID = models.CanonicalPair(travel.BuildingAID, travel.BuildingBID)
	const query = `INSERT INTO building_travels (building_a_id, building_b_id, minutes)
VALUES (:building_a_id, :building_b_id, :minutes)
ON CONFLICT (building_a_id, building_b_id) DO UPDATE SET minutes = EXCLUDED.minutes`
	if _, err := sqlx.NamedExecContext(ctx, pick(r.db, exec), query, travel); err != nil {
		return fmt.Errorf("upsert building travel: %w", err)
	}
	return nil
}

// InsertTravelIfMissing seeds a canonical pair without touching an existing row.
func (r *RoomRepository) InsertTravelIfMissing(ctx context.Context, exec sqlx.ExtContext, travel models.BuildingTravel) error {
	travel.BuildingAID, travel.BuildingBID = models.CanonicalPair(travel.BuildingAID, travel.BuildingBID)
	const query = `INSERT INTO building_travels (building_a_id, building_b_id, minutes)
VALUES (:building_a_id, :building_b_id, :minutes)
ON CONFLICT (building_a_id, building_b_id) DO NOTHING`
	if _, err := sqlx.NamedExecContext(ctx, pick(r.db, exec), query, travel); err != nil {
		return fmt.Errorf("seed building travel: %w", err)
	}
	return nil
}
