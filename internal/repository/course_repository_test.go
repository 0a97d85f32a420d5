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

func TestCourseRepositoryListGroupsByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "name", "student_count"}).
		AddRow(1, 7, "G-1", 30).
		AddRow(2, 7, "G-2", 25)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, name, student_count FROM student_groups WHERE course_id = $1 ORDER BY id ASC")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	courseID := int64(7)
	groups, err := repo.ListGroups(context.Background(), nil, &courseID)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, 30, groups[0].StudentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListModulesByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "name", "credits", "allowed_room_ids", "allowed_building_ids"}).
		AddRow(3, 7, "Algebra", 4, "{10,11}", "{}")
	mock.ExpectQuery(regexp.QuoteMeta("FROM modules m\nWHERE m.course_id = $1 OR m.id IN (SELECT module_id FROM course_modules WHERE course_id = $1)")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	modules, err := repo.ListModulesByCourse(context.Background(), nil, 7)
	require.NoError(t, err)
	require.Len(t, modules, 1)
	assert.Equal(t, []int64{10, 11}, []int64(modules[0].AllowedRoomIDs))
	assert.Empty(t, modules[0].AllowedBuildingIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListTopicsSkipsEmptyModules(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	topics, err := repo.ListTopicsByModules(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, topics)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryCreateModulePlan(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO module_plans")).
		WithArgs(int64(7), int64(3), 120, 0, true, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	plan := &models.ModulePlan{CourseID: 7, ModuleID: 3, TargetHours: 120, IsActive: true}
	require.NoError(t, repo.CreateModulePlan(context.Background(), nil, plan))
	assert.Equal(t, int64(42), plan.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListModulePlansByKeys(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "module_id", "target_hours", "scheduled_hours", "is_active", "sort_order"}).
		AddRow(5, 7, 3, 120, 12, true, 1)
	mock.ExpectQuery(regexp.QuoteMeta("unnest($1::bigint[], $2::bigint[])")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	plans, err := repo.ListModulePlansByKeys(context.Background(), nil, []models.CourseModuleKey{{CourseID: 7, ModuleID: 3}})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, 12, plans[0].ScheduledHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}
