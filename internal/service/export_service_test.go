package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func newExportFixture(t *testing.T) (*timetableFixture, *ExportService) {
	t.Helper()
	catalog := scenarioCatalog()
	catalog.topics = []models.Topic{{ID: 901, ModuleID: 100, Code: "1.2", Title: "Sorting", AuditoriumHours: 2}}
	f := newTimetableFixture(t, catalog)
	p := lecture("2025-03-11", models.Clock(8, 30), models.Clock(10, 0), 10, int64Ptr(7), int64Ptr(202))
	p.TopicID = int64Ptr(901)
	f.addItem(p)
	f.addItem(models.Placement{Date: models.MustParseDate("2025-03-10"), StartTime: models.Clock(12, 0), EndTime: models.Clock(13, 0), GroupID: 10, LessonTypeID: ltBreak})
	f.addItem(lecture("2025-03-17", models.Clock(8, 30), models.Clock(10, 0), 10, int64Ptr(7), int64Ptr(202)))
	return f, NewExportService(f.items, f.catalog, f.catalog, f.reference, nil, nil)
}

func TestExportServiceRendersGroupWeekAsCSV(t *testing.T) {
	_, svc := newExportFixture(t)

	file, err := svc.ExportWeek(context.Background(), dto.ExportWeekQuery{WeekStart: "2025-03-12", GroupID: int64Ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, "timetable-group-10-2025-03-10.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	assert.Equal(t, []string{
		"Date,Time,Group,Module,Topic,Teacher,Room,Lesson type",
		"2025-03-10,12:00-13:00,CS-1,,,,,Lunch",
		"2025-03-11,08:30-10:00,CS-1,Algorithms,1.2 Sorting,Ada Lovelace,Hall A,Lecture",
	}, lines)
}

func TestExportServiceRendersTeacherWeekAsPDF(t *testing.T) {
	_, svc := newExportFixture(t)

	file, err := svc.ExportWeek(context.Background(), dto.ExportWeekQuery{WeekStart: "2025-03-10", TeacherID: int64Ptr(7), Format: "pdf"})
	require.NoError(t, err)
	assert.Equal(t, "timetable-teacher-7-2025-03-10.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportServiceValidatesQuery(t *testing.T) {
	_, svc := newExportFixture(t)

	cases := []dto.ExportWeekQuery{
		{WeekStart: "2025-03-10"},
		{WeekStart: "2025-03-10", GroupID: int64Ptr(10), Format: "xlsx"},
		{WeekStart: "next week", GroupID: int64Ptr(10)},
		{GroupID: int64Ptr(10)},
	}
	for _, query := range cases {
		_, err := svc.ExportWeek(context.Background(), query)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}
