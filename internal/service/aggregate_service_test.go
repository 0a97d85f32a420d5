package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

func TestAggregateServiceCountsCanceledButNotBreaks(t *testing.T) {
	catalog := scenarioCatalog()
	catalog.loads = []models.TeacherCourseLoad{
		{ID: 1, TeacherID: 7, CourseID: 1, TargetHours: 40, IsActive: true},
		{ID: 2, TeacherID: 8, CourseID: 1, TargetHours: 40, ScheduledHours: 4, IsActive: false},
	}
	f := newTimetableFixture(t, catalog)
	for _, lt := range []int64{ltLecture, ltLecture, ltCanceled, ltBreak, ltSelfStudy} {
		p := lecture("2025-03-10", models.Clock(8, 30), models.Clock(10, 0), 10, int64Ptr(7), int64Ptr(202))
		p.LessonTypeID = lt
		f.addItem(p)
	}
	f.addItem(lecture("2025-03-11", models.Clock(8, 30), models.Clock(10, 0), 10, int64Ptr(8), int64Ptr(202)))

	res, err := f.aggregates().RecomputeAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, AggregateResult{PlansUpdated: 1, LoadsUpdated: 2}, res)
	// Two lectures from teacher 7, one from teacher 8 and the canceled session.
	assert.Equal(t, 4, catalog.plans[0].ScheduledHours)
	assert.Equal(t, 2, catalog.loads[0].ScheduledHours)
	// Inactive loads are reset.
	assert.Equal(t, 0, catalog.loads[1].ScheduledHours)

	res, err = f.aggregates().RecomputeAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, AggregateResult{}, res)
}

func TestAggregateServiceRecomputesTouchedKeysOnly(t *testing.T) {
	catalog := scenarioCatalog()
	catalog.modules = append(catalog.modules, models.Module{ID: 101, CourseID: 1, Name: "Databases"})
	catalog.plans = append(catalog.plans, models.ModulePlan{ID: 501, CourseID: 1, ModuleID: 101, TargetHours: 10, ScheduledHours: 5, IsActive: true})
	catalog.loads = []models.TeacherCourseLoad{{ID: 1, TeacherID: 7, CourseID: 1, IsActive: true}}
	f := newTimetableFixture(t, catalog)
	p := f.addItem(lecture("2025-03-10", models.Clock(8, 30), models.Clock(10, 0), 10, int64Ptr(7), int64Ptr(202))).Placement

	orphan := p
	orphan.GroupID = 99
	res, err := f.aggregates().RecomputeFor(context.Background(), nil, p, orphan)
	require.NoError(t, err)
	assert.Equal(t, AggregateResult{PlansUpdated: 1, LoadsUpdated: 1}, res)
	assert.Equal(t, 1, catalog.plans[0].ScheduledHours)
	assert.Equal(t, 5, catalog.plans[1].ScheduledHours)
	assert.Equal(t, 1, catalog.loads[0].ScheduledHours)
}

func TestAggregateServiceKeysFor(t *testing.T) {
	f := newTimetableFixture(t, scenarioCatalog())
	p := lecture("2025-03-10", models.Clock(8, 30), models.Clock(10, 0), 10, int64Ptr(7), int64Ptr(202))
	lunch := models.Placement{Date: p.Date, GroupID: 10, LessonTypeID: ltBreak}

	keys, err := f.aggregates().KeysFor(context.Background(), nil, p, p, lunch)
	require.NoError(t, err)
	assert.Equal(t, []models.CourseModuleKey{{CourseID: 1, ModuleID: 100}}, keys.Plans)
	assert.Equal(t, []models.TeacherCourseKey{{TeacherID: 7, CourseID: 1}}, keys.Loads)

	keys, err = f.aggregates().KeysFor(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, keys.Plans)
	assert.Empty(t, keys.Plans)

	res, err := f.aggregates().Recompute(context.Background(), nil, keys)
	require.NoError(t, err)
	assert.Equal(t, AggregateResult{}, res)
}
