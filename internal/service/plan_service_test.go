package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func TestPlanServiceEnsureCoursePlansCreatesMissingPlans(t *testing.T) {
	catalog := scenarioCatalog()
	catalog.plans[0].SortOrder = 3
	catalog.modules = append(catalog.modules,
		models.Module{ID: 101, CourseID: 1, Name: "Databases", Credits: 4},
		models.Module{ID: 102, CourseID: 1, Name: "Ethics", Credits: 1},
		models.Module{ID: 200, CourseID: 2, Name: "Other course"},
	)
	f := newTimetableFixture(t, catalog)
	svc := NewPlanService(catalog, f.db, 0, 30, nil)
	f.expectCommits(2)

	resp, err := svc.EnsureCoursePlans(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Created)
	require.Len(t, catalog.plans, 3)
	// The existing plan keeps its target.
	assert.Equal(t, 10, catalog.plans[0].TargetHours)
	assert.Equal(t, models.ModulePlan{ID: catalog.plans[1].ID, CourseID: 1, ModuleID: 101, TargetHours: 120, IsActive: true, SortOrder: 4}, catalog.plans[1])
	assert.Equal(t, 30, catalog.plans[2].TargetHours)
	assert.Equal(t, 5, catalog.plans[2].SortOrder)

	resp, err = svc.EnsureCoursePlans(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Created)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestPlanServiceEnsureCoursePlansUnknownCourse(t *testing.T) {
	catalog := scenarioCatalog()
	f := newTimetableFixture(t, catalog)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := NewPlanService(catalog, f.db, 0, 0, nil).EnsureCoursePlans(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
