package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestRoomRepositoryUpsertTravelCanonicalises(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO building_travels")).
		WithArgs(int64(2), int64(5), 20).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpsertTravel(context.Background(), nil, models.BuildingTravel{BuildingAID: 5, BuildingBID: 2, Minutes: 20})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreateBuilding(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO buildings (name) VALUES ($1) RETURNING id")).
		WithArgs("North").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	building := &models.Building{Name: "North"}
	require.NoError(t, repo.CreateBuilding(context.Background(), nil, building))
	assert.Equal(t, int64(3), building.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryListRooms(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "building_id", "name", "capacity"}).
		AddRow(1, 1, "A-101", 20).
		AddRow(2, 1, "A-201", 40)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, building_id, name, capacity FROM rooms ORDER BY capacity ASC, id ASC")).
		WillReturnRows(rows)

	rooms, err := repo.ListRooms(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
