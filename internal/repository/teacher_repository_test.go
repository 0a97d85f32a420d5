package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestTeacherRepositoryListWorkingHours(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "weekday", "start_time", "end_time"}).
		AddRow(1, 5, 1, "08:00:00", "12:30:00").
		AddRow(2, 5, 3, "13:00", "17:00")
	mock.ExpectQuery(regexp.QuoteMeta("FROM teacher_working_hours\nWHERE teacher_id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	hours, err := repo.ListWorkingHours(context.Background(), nil, []int64{5})
	require.NoError(t, err)
	require.Len(t, hours, 2)
	assert.Equal(t, models.Clock(8, 0), hours[0].StartTime)
	assert.Equal(t, models.Clock(12, 30), hours[0].EndTime)
	assert.Equal(t, 3, hours[1].Weekday)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListTeacherLoadsByKeys(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "course_id", "target_hours", "scheduled_hours", "is_active"}).
		AddRow(9, 5, 1, 60, 12, true)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE (teacher_id, course_id) IN (SELECT * FROM unnest($1::bigint[], $2::bigint[])) ORDER BY id ASC")).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	loads, err := repo.ListTeacherLoads(context.Background(), nil, []models.TeacherCourseKey{{TeacherID: 5, CourseID: 1}})
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, 12, loads[0].ScheduledHours)

	none, err := repo.ListTeacherLoads(context.Background(), nil, []models.TeacherCourseKey{})
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryIsLinkedWrapsErrors(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM teacher_modules")).
		WithArgs(int64(5), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM teacher_modules")).
		WithArgs(int64(5), int64(4)).
		WillReturnError(errors.New("boom"))

	linked, err := repo.IsLinked(context.Background(), nil, 5, 3)
	require.NoError(t, err)
	assert.True(t, linked)

	_, err = repo.IsLinked(context.Background(), nil, 5, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check teacher module link")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryListCalendarExceptions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	rows := sqlmock.NewRows([]string{"id", "date", "is_working", "reason"}).
		AddRow(1, "2025-03-12", false, "holiday").
		AddRow(2, "2025-03-15", true, "make-up day")
	mock.ExpectQuery(regexp.QuoteMeta("FROM calendar_exceptions WHERE date BETWEEN $1 AND $2")).
		WithArgs("2025-03-10", "2025-03-16").
		WillReturnRows(rows)

	exceptions, err := repo.ListCalendarExceptions(context.Background(), nil,
		models.MustParseDate("2025-03-10"), models.MustParseDate("2025-03-16"))
	require.NoError(t, err)
	require.Len(t, exceptions, 2)
	assert.Equal(t, "2025-03-12", exceptions[0].Date.String())
	assert.False(t, exceptions[0].IsWorking)
	assert.True(t, exceptions[1].IsWorking)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryListTimeSlots(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "start_time", "end_time", "sort_order", "is_active"}).
		AddRow(1, nil, "08:30", "10:00", 1, true).
		AddRow(2, 7, "10:10:00", "11:40:00", 2, true)
	mock.ExpectQuery(regexp.QuoteMeta("FROM time_slots\nWHERE is_active = TRUE")).WillReturnRows(rows)

	slots, err := repo.ListTimeSlots(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Nil(t, slots[0].CourseID)
	require.NotNil(t, slots[1].CourseID)
	assert.Equal(t, int64(7), *slots[1].CourseID)
	assert.Equal(t, models.Clock(10, 10), slots[1].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}
