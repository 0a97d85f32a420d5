package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// Reasons reported for unplaced modules and empty slots.
const (
	reasonNoTeacher          = "no teacher assigned to module"
	reasonNoRoom             = "no room fits"
	reasonNoLessonType       = "no lesson type available"
	reasonTeacherUnavailable = "teacher unavailable"
	reasonTeacherBusy        = "teacher busy"
	reasonRoomBusy           = "room busy"
	reasonTravel             = "insufficient travel time"
	reasonTopicsExhausted    = "topics exhausted"
	reasonNoHours            = "no module with remaining hours"
)

// primaryPerDay caps how many sessions the day's primary module gets.
const primaryPerDay = 2

type courseContext struct {
	modules map[int64]models.Module
	order   ModuleOrder
	// teachers lists linked teacher IDs per module, ascending.
	teachers map[int64][]int64
}

type failKey struct {
	GroupID  int64
	ModuleID int64
	Date     string
}

type gapKey struct {
	GroupID int64
	Date    string
	Start   models.ClockTime
}

type reasonTally map[string]int

func (t reasonTally) top() string {
	best, bestCount := "", 0
	for reason, count := range t {
		if count > bestCount || (count == bestCount && reason < best) {
			best, bestCount = reason, count
		}
	}
	return best
}

// autogenRun holds the state of one week attempt. It is rebuilt on every
// transaction retry.
type autogenRun struct {
	svc      *AutogenService
	exec     sqlx.ExtContext
	plan     weekPlan
	batchKey string

	ref     *ReferenceData
	grid    *TimeGrid
	lunch   func(courseID int64) (models.TimeWindow, bool)
	busy    *occupancy
	topics  *TopicAllocator
	book    *PlanBook
	hours   map[int64][]models.TeacherWorkingHour
	groups  []models.Group
	courses map[int64]*courseContext

	lessonTypes []models.LessonType
	rotations   map[int64]*moduleRotation
	typeCursor  map[groupModuleKey]int
	failed      map[failKey]bool
	warned      map[groupModuleKey]bool
	slotReasons map[gapKey]reasonTally

	result *dto.AutogenResponse
}

func (s *AutogenService) newRun(ctx context.Context, exec sqlx.ExtContext, plan weekPlan) (*autogenRun, error) {
	run := &autogenRun{
		svc:         s,
		exec:        exec,
		plan:        plan,
		batchKey:    fmt.Sprintf("autogen:%s:%s", plan.weekStart, s.newBatch()),
		hours:       make(map[int64][]models.TeacherWorkingHour),
		courses:     make(map[int64]*courseContext),
		rotations:   make(map[int64]*moduleRotation),
		typeCursor:  make(map[groupModuleKey]int),
		failed:      make(map[failKey]bool),
		warned:      make(map[groupModuleKey]bool),
		slotReasons: make(map[gapKey]reasonTally),
		result:      &dto.AutogenResponse{Warnings: []string{}, GapDetails: []dto.GapDetail{}, WeeksProcessed: 1},
	}
	if len(plan.days) == 0 {
		return run, nil
	}
	if err := run.load(ctx); err != nil {
		return nil, err
	}
	return run, nil
}

func (r *autogenRun) from() models.Date { return r.plan.days[0] }
func (r *autogenRun) to() models.Date   { return r.plan.days[len(r.plan.days)-1] }

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (r *autogenRun) load(ctx context.Context) error {
	s := r.svc
	opts := r.plan.opts

	groups, err := r.scopeGroups(ctx)
	if err != nil {
		return err
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	r.groups = groups
	groupIDs := make([]int64, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}

	if opts.ClearExisting && len(groupIDs) > 0 {
		cleared, err := s.drafts.DeleteByFilter(ctx, r.exec, models.PlacementFilter{
			From:         r.from(),
			To:           r.to(),
			GroupIDs:     groupIDs,
			TeacherID:    opts.TeacherID,
			OnlyUnlocked: true,
			Status:       models.DraftStatusDraft,
		})
		if err != nil {
			return internalError(err, "failed to clear drafts")
		}
		s.logger.Debug("autogen cleared drafts", zap.String("week", r.plan.weekStart.String()), zap.Int64("deleted", cleared))
	}

	if r.ref, err = s.reference.Load(ctx); err != nil {
		return err
	}
	if r.grid, err = s.reference.TimeGrid(ctx, r.exec, r.from(), r.to()); err != nil {
		return err
	}
	if r.lunch, err = s.reference.LunchWindow(ctx, r.exec); err != nil {
		return err
	}
	for _, lt := range r.ref.LessonTypes {
		r.lessonTypes = append(r.lessonTypes, lt)
	}
	sort.Slice(r.lessonTypes, func(i, j int) bool { return r.lessonTypes[i].ID < r.lessonTypes[j].ID })

	r.busy = newOccupancy(r.ref)
	items, err := s.items.List(ctx, r.exec, models.PlacementFilter{From: r.from(), To: r.to()})
	if err != nil {
		return internalError(err, "failed to load schedule items")
	}
	r.busy.addItems(items, nil)
	drafts, err := s.drafts.List(ctx, r.exec, models.PlacementFilter{From: r.from(), To: r.to(), Status: models.DraftStatusDraft})
	if err != nil {
		return internalError(err, "failed to load drafts")
	}
	r.busy.addDrafts(drafts, nil)

	if len(groups) == 0 {
		return nil
	}

	plans, groupsByCourse, moduleIDs, err := r.loadCourses(ctx)
	if err != nil {
		return err
	}
	if err := r.loadTeachers(ctx, moduleIDs); err != nil {
		return err
	}

	topics, err := s.courses.ListTopicsByModules(ctx, r.exec, moduleIDs)
	if err != nil {
		return internalError(err, "failed to load topics")
	}
	usage, err := s.items.CountTopicUsage(ctx, r.exec, groupIDs)
	if err != nil {
		return internalError(err, "failed to count topic usage")
	}
	draftUsage, err := s.drafts.CountTopicUsage(ctx, r.exec, groupIDs)
	if err != nil {
		return internalError(err, "failed to count draft topic usage")
	}
	r.topics = NewTopicAllocator(topics, append(usage, draftUsage...))

	counts, err := s.items.CountByGroupModule(ctx, r.exec, groupIDs)
	if err != nil {
		return internalError(err, "failed to count placements")
	}
	draftCounts, err := s.drafts.CountByGroupModule(ctx, r.exec, groupIDs)
	if err != nil {
		return internalError(err, "failed to count draft placements")
	}
	r.book = NewPlanBook(plans, groupsByCourse, r.topics.AuditoriumHours, completedHours(append(counts, draftCounts...), r.ref.LessonTypes))
	return nil
}

func (r *autogenRun) scopeGroups(ctx context.Context) ([]models.Group, error) {
	s := r.svc
	opts := r.plan.opts
	if opts.GroupID != nil {
		group, err := s.courses.GetGroup(ctx, r.exec, *opts.GroupID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
			}
			return nil, internalError(err, "failed to load group")
		}
		return []models.Group{*group}, nil
	}
	groups, err := s.courses.ListGroups(ctx, r.exec, opts.CourseID)
	if err != nil {
		return nil, internalError(err, "failed to load groups")
	}
	return groups, nil
}

// loadCourses builds the per-course module order. Plan shares are split over
// every group of a course, not only the groups in scope.
func (r *autogenRun) loadCourses(ctx context.Context) ([]models.ModulePlan, map[int64][]int64, []int64, error) {
	s := r.svc
	var (
		plans     []models.ModulePlan
		moduleIDs []int64
	)
	groupsByCourse := make(map[int64][]int64)
	for _, g := range r.groups {
		if _, done := r.courses[g.CourseID]; done {
			continue
		}
		courseID := g.CourseID
		cc := &courseContext{modules: make(map[int64]models.Module), teachers: make(map[int64][]int64)}
		r.courses[courseID] = cc

		members, err := s.courses.ListGroups(ctx, r.exec, &courseID)
		if err != nil {
			return nil, nil, nil, internalError(err, "failed to load course groups")
		}
		for _, m := range members {
			groupsByCourse[courseID] = append(groupsByCourse[courseID], m.ID)
		}

		modules, err := s.courses.ListModulesByCourse(ctx, r.exec, courseID)
		if err != nil {
			return nil, nil, nil, internalError(err, "failed to load modules")
		}
		for _, m := range modules {
			cc.modules[m.ID] = m
		}
		coursePlans, err := s.courses.ListModulePlans(ctx, r.exec, &courseID)
		if err != nil {
			return nil, nil, nil, internalError(err, "failed to load module plans")
		}
		sort.SliceStable(coursePlans, func(i, j int) bool {
			if coursePlans[i].SortOrder != coursePlans[j].SortOrder {
				return coursePlans[i].SortOrder < coursePlans[j].SortOrder
			}
			return coursePlans[i].ModuleID < coursePlans[j].ModuleID
		})
		var planModules []int64
		for _, p := range coursePlans {
			if !p.IsActive {
				continue
			}
			if _, ok := cc.modules[p.ModuleID]; !ok {
				continue
			}
			plans = append(plans, p)
			planModules = append(planModules, p.ModuleID)
			moduleIDs = append(moduleIDs, p.ModuleID)
		}
		sequence, err := s.courses.ListModuleSequence(ctx, r.exec, courseID)
		if err != nil {
			return nil, nil, nil, internalError(err, "failed to load module sequence")
		}
		fillers, err := s.courses.ListModuleFillers(ctx, r.exec, courseID)
		if err != nil {
			return nil, nil, nil, internalError(err, "failed to load module fillers")
		}
		cc.order = BuildCourseModuleOrder(sequence, fillers, planModules)
	}
	return plans, groupsByCourse, moduleIDs, nil
}

func (r *autogenRun) loadTeachers(ctx context.Context, moduleIDs []int64) error {
	s := r.svc
	scope := r.plan.opts.TeacherID
	links, err := s.teachers.ListTeacherModules(ctx, r.exec, moduleIDs)
	if err != nil {
		return internalError(err, "failed to load teacher links")
	}
	byModule := make(map[int64][]int64)
	seen := make(map[int64]bool)
	var teacherIDs []int64
	for _, link := range links {
		if scope != nil && link.TeacherID != *scope {
			continue
		}
		byModule[link.ModuleID] = append(byModule[link.ModuleID], link.TeacherID)
		if !seen[link.TeacherID] {
			seen[link.TeacherID] = true
			teacherIDs = append(teacherIDs, link.TeacherID)
		}
	}
	for _, cc := range r.courses {
		for moduleID := range cc.modules {
			ids := byModule[moduleID]
			sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
			cc.teachers[moduleID] = ids
		}
		if scope != nil {
			cc.order = cc.order.restrict(func(moduleID int64) bool { return len(cc.teachers[moduleID]) > 0 })
		}
	}
	if len(teacherIDs) == 0 {
		return nil
	}
	hours, err := s.teachers.ListWorkingHours(ctx, r.exec, teacherIDs)
	if err != nil {
		return internalError(err, "failed to load working hours")
	}
	for _, h := range hours {
		r.hours[h.TeacherID] = append(r.hours[h.TeacherID], h)
	}
	return nil
}

func (r *autogenRun) execute(ctx context.Context) error {
	if len(r.plan.days) == 0 || len(r.groups) == 0 {
		return nil
	}
	var days []models.Date
	for _, day := range r.plan.days {
		if r.grid.IsWorkingDay(day) || r.plan.opts.AllowOnDaysOff {
			days = append(days, day)
		}
	}
	if err := r.seedBreaks(ctx, days); err != nil {
		return err
	}
	for _, group := range r.groups {
		cc := r.courses[group.CourseID]
		for _, day := range days {
			if err := r.fillDay(ctx, group, cc, day); err != nil {
				return err
			}
		}
	}
	return nil
}

// seedBreaks places the lunch BREAK into every effective slot overlapping the
// course's lunch window where the group is still free.
func (r *autogenRun) seedBreaks(ctx context.Context, days []models.Date) error {
	breakType, ok := r.ref.LessonTypeByCode(models.LessonTypeBreak)
	if !ok || !breakType.IsActive {
		return nil
	}
	for _, group := range r.groups {
		lunch, ok := r.lunch(group.CourseID)
		if !ok {
			continue
		}
		for _, day := range days {
			for _, slot := range r.grid.EffectiveSlots(group.CourseID) {
				if !slot.Overlaps(lunch) || !r.busy.groupFree(day, group.ID, slot) {
					continue
				}
				p := models.Placement{
					Date:         day,
					StartTime:    slot.Start,
					EndTime:      slot.End,
					GroupID:      group.ID,
					LessonTypeID: breakType.ID,
				}
				if err := r.store(ctx, p, breakType, nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *autogenRun) freeSlots(group models.Group, day models.Date) []models.TimeWindow {
	var free []models.TimeWindow
	for _, slot := range r.grid.EffectiveSlots(group.CourseID) {
		if r.busy.groupFree(day, group.ID, slot) {
			free = append(free, slot)
		}
	}
	return free
}

func (r *autogenRun) hasFreeSlot(group models.Group, day models.Date) bool {
	return len(r.freeSlots(group, day)) > 0
}

// placeable is true while the module still has hours and pending topics and
// has not already failed for the group on day.
func (r *autogenRun) placeable(group models.Group, cc *courseContext, moduleID int64, day models.Date) bool {
	if r.failed[failKey{GroupID: group.ID, ModuleID: moduleID, Date: day.String()}] {
		return false
	}
	if r.book.Remaining(group.ID, moduleID) <= 0 {
		return false
	}
	if r.topics.TopicsDepleted(group.ID, moduleID) {
		key := groupModuleKey{GroupID: group.ID, ModuleID: moduleID}
		if !r.warned[key] {
			r.warned[key] = true
			r.result.Warnings = append(r.result.Warnings,
				fmt.Sprintf("group %s: topics of module %s are exhausted with %d hours left", group.Name, cc.modules[moduleID].Name, r.book.Remaining(group.ID, moduleID)))
		}
		r.noteDay(group, day, reasonTopicsExhausted)
		return false
	}
	return true
}

func (r *autogenRun) rotation(group models.Group, cc *courseContext) *moduleRotation {
	rot, ok := r.rotations[group.ID]
	if !ok {
		rot = &moduleRotation{modules: cc.order.PrimaryCandidates()}
		r.rotations[group.ID] = rot
	}
	return rot
}

func (r *autogenRun) fillDay(ctx context.Context, group models.Group, cc *courseContext, day models.Date) error {
	if cc == nil || !r.hasFreeSlot(group, day) {
		return nil
	}
	placedToday := make(map[int64]bool)
	try := func(moduleID int64) (bool, error) {
		if !r.hasFreeSlot(group, day) || !r.placeable(group, cc, moduleID, day) {
			return false, nil
		}
		placed, err := r.place(ctx, group, cc, moduleID, day)
		if placed {
			placedToday[moduleID] = true
		}
		return placed, err
	}

	rot := r.rotation(group, cc)
	if primary, ok := rot.pick(func(id int64) bool { return r.placeable(group, cc, id, day) }); ok {
		count := 0
		for count < primaryPerDay {
			placed, err := try(primary)
			if err != nil {
				return err
			}
			if !placed {
				break
			}
			count++
		}
		if count > 0 {
			rot.advance()
		}
	}

	fillers := shuffleFillers(cc.order.Fillers, r.plan.weekStart, group.ID, day)
	if err := r.roundRobin(fillers, try); err != nil {
		return err
	}

	for _, moduleID := range cc.order.All {
		if placedToday[moduleID] {
			continue
		}
		if _, err := try(moduleID); err != nil {
			return err
		}
	}
	if err := r.roundRobin(cc.order.All, try); err != nil {
		return err
	}

	for _, slot := range r.freeSlots(group, day) {
		reason := r.slotReasons[gapKey{GroupID: group.ID, Date: day.String(), Start: slot.Start}].top()
		if reason == "" {
			reason = reasonNoHours
		}
		r.result.GapDetails = append(r.result.GapDetails, dto.GapDetail{
			Date:      day,
			GroupID:   group.ID,
			StartTime: slot.Start,
			EndTime:   slot.End,
			Reason:    reason,
		})
	}
	return nil
}

// roundRobin cycles modules until a full pass places nothing.
func (r *autogenRun) roundRobin(modules []int64, try func(int64) (bool, error)) error {
	for {
		progress := false
		for _, moduleID := range modules {
			placed, err := try(moduleID)
			if err != nil {
				return err
			}
			progress = progress || placed
		}
		if !progress {
			return nil
		}
	}
}

func (r *autogenRun) noteSlot(group models.Group, day models.Date, slot models.TimeWindow, reason string, attempt reasonTally) {
	key := gapKey{GroupID: group.ID, Date: day.String(), Start: slot.Start}
	if r.slotReasons[key] == nil {
		r.slotReasons[key] = make(reasonTally)
	}
	r.slotReasons[key][reason]++
	attempt[reason]++
}

func (r *autogenRun) noteDay(group models.Group, day models.Date, reason string) {
	scratch := make(reasonTally)
	for _, slot := range r.freeSlots(group, day) {
		r.noteSlot(group, day, slot, reason, scratch)
	}
}

// place tries every free slot, teacher and room for one session of the module
// on day and stores the first combination with no clash.
func (r *autogenRun) place(ctx context.Context, group models.Group, cc *courseContext, moduleID int64, day models.Date) (bool, error) {
	module := cc.modules[moduleID]
	topic := r.topics.PeekNextTopic(group.ID, moduleID)
	attempt := make(reasonTally)

	lessonType, ok := r.chooseLessonType(group.ID, moduleID, day, topic)
	if !ok {
		r.noteDay(group, day, reasonNoLessonType)
		r.fail(group, module, day, reasonNoLessonType)
		return false, nil
	}
	teachers := cc.teachers[moduleID]
	if lessonType.RequiresTeacher && len(teachers) == 0 {
		r.noteDay(group, day, reasonNoTeacher)
		r.fail(group, module, day, reasonNoTeacher)
		return false, nil
	}
	rooms := []*int64{nil}
	if lessonType.RequiresRoom {
		rooms = r.roomsFor(group, module)
		if len(rooms) == 0 {
			r.noteDay(group, day, reasonNoRoom)
			r.fail(group, module, day, reasonNoRoom)
			return false, nil
		}
	}
	teacherOptions := make([]*int64, 0, len(teachers)+1)
	for i := range teachers {
		teacherOptions = append(teacherOptions, &teachers[i])
	}
	if !lessonType.RequiresTeacher {
		teacherOptions = append(teacherOptions, nil)
	}

	for _, slot := range r.freeSlots(group, day) {
		candidate := models.Placement{
			Date:         day,
			StartTime:    slot.Start,
			EndTime:      slot.End,
			GroupID:      group.ID,
			ModuleID:     &module.ID,
			LessonTypeID: lessonType.ID,
		}
		if topic != nil {
			candidate.TopicID = &topic.ID
		}
		for _, teacherID := range teacherOptions {
			candidate.TeacherID = teacherID
			candidate.RoomID = nil
			if teacherID != nil {
				if !fitsWorkingHours(r.hours[*teacherID], day.IsoWeekday(), slot) {
					r.noteSlot(group, day, slot, reasonTeacherUnavailable, attempt)
					continue
				}
				if c, clashed := r.busy.firstClash(r.busy.annotate(0, true, candidate)); clashed && c.Kind == clashTeacher {
					r.noteSlot(group, day, slot, reasonTeacherBusy, attempt)
					continue
				}
			}
			for _, roomID := range rooms {
				candidate.RoomID = roomID
				occ := r.busy.annotate(0, true, candidate)
				if c, clashed := r.busy.firstClash(occ); clashed {
					reason := reasonRoomBusy
					if c.Kind == clashTeacher {
						reason = reasonTeacherBusy
					}
					r.noteSlot(group, day, slot, reason, attempt)
					continue
				}
				if len(r.busy.travelIssues(occ, r.ref.Travel)) > 0 {
					r.noteSlot(group, day, slot, reasonTravel, attempt)
					continue
				}
				if err := r.store(ctx, candidate, lessonType, topic); err != nil {
					return false, err
				}
				return true, nil
			}
		}
	}
	r.fail(group, module, day, attempt.top())
	return false, nil
}

// roomsFor lists rooms large enough and allowed for the module, smallest first.
func (r *autogenRun) roomsFor(group models.Group, module models.Module) []*int64 {
	var rooms []models.Room
	for _, room := range r.ref.Rooms {
		if room.Capacity >= group.StudentCount && module.AllowsRoom(room) {
			rooms = append(rooms, room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Capacity != rooms[j].Capacity {
			return rooms[i].Capacity < rooms[j].Capacity
		}
		return rooms[i].ID < rooms[j].ID
	})
	ids := make([]*int64, 0, len(rooms))
	for i := range rooms {
		ids = append(ids, &rooms[i].ID)
	}
	return ids
}

func schedulable(lt models.LessonType) bool {
	if !lt.IsActive {
		return false
	}
	switch lt.Code {
	case models.LessonTypeBreak, models.LessonTypeCanceled, models.LessonTypeRescheduled:
		return false
	}
	return true
}

// usedInWeek reports whether the group already has the module with lessonTypeID this week.
func (r *autogenRun) usedInWeek(groupID, moduleID, lessonTypeID int64) bool {
	for i := 0; i < 7; i++ {
		if r.busy.lessonTypesOn(r.plan.weekStart.AddDays(i), groupID, moduleID)[lessonTypeID] {
			return true
		}
	}
	return false
}

// chooseLessonType prefers the topic's own type, then a preferred-first type
// not yet used this week, then cycles plan-counting types avoiding the
// previous day's.
func (r *autogenRun) chooseLessonType(groupID, moduleID int64, day models.Date, topic *models.Topic) (models.LessonType, bool) {
	if topic != nil && topic.LessonTypeID != nil {
		if lt, ok := r.ref.LessonTypes[*topic.LessonTypeID]; ok && schedulable(lt) {
			return lt, true
		}
	}
	yesterday := r.busy.lessonTypesOn(day.AddDays(-1), groupID, moduleID)
	for _, lt := range r.lessonTypes {
		if schedulable(lt) && lt.PreferredFirstInWeek && !yesterday[lt.ID] && !r.usedInWeek(groupID, moduleID, lt.ID) {
			return lt, true
		}
	}
	var cycle []models.LessonType
	for _, lt := range r.lessonTypes {
		if schedulable(lt) && lt.CountInPlan {
			cycle = append(cycle, lt)
		}
	}
	key := groupModuleKey{GroupID: groupID, ModuleID: moduleID}
	for i := 0; i < len(cycle); i++ {
		pos := (r.typeCursor[key] + i) % len(cycle)
		if !yesterday[cycle[pos].ID] {
			r.typeCursor[key] = (pos + 1) % len(cycle)
			return cycle[pos], true
		}
	}
	for _, lt := range r.lessonTypes {
		if schedulable(lt) {
			return lt, true
		}
	}
	if len(r.lessonTypes) > 0 {
		return r.lessonTypes[0], true
	}
	return models.LessonType{}, false
}

func (r *autogenRun) fail(group models.Group, module models.Module, day models.Date, reason string) {
	r.failed[failKey{GroupID: group.ID, ModuleID: module.ID, Date: day.String()}] = true
	r.result.Skipped++
	if reason == "" {
		reason = "no free slot"
	}
	r.result.Warnings = append(r.result.Warnings, fmt.Sprintf("%s group %s: module %s not placed (%s)", day, group.Name, module.Name, reason))
	r.svc.logger.Debug("autogen skipped module",
		zap.String("date", day.String()),
		zap.Int64("group_id", group.ID),
		zap.Int64("module_id", module.ID),
		zap.String("reason", reason),
	)
}

func (r *autogenRun) store(ctx context.Context, p models.Placement, lessonType models.LessonType, topic *models.Topic) error {
	p.Normalize()
	report := models.ValidationReport{GeneratedAt: r.svc.now(), Issues: []models.ValidationIssue{}}
	if !r.grid.IsWorkingDay(p.Date) {
		report.Issues = append(report.Issues, models.ValidationIssue{
			Severity:    models.SeverityWarning,
			Code:        models.IssueNonWorkingDay,
			Title:       "Non-working day",
			Description: fmt.Sprintf("%s is not a working day", p.Date),
		})
	}
	batchKey := r.batchKey
	draft := &models.TeacherDraftItem{
		Placement:          p,
		Status:             models.DraftStatusDraft,
		BatchKey:           &batchKey,
		ValidationWarnings: report.JSON(),
	}
	if err := r.svc.drafts.Create(ctx, r.exec, draft); err != nil {
		return internalError(err, "failed to store draft")
	}
	r.busy.add(r.busy.annotate(draft.ID, true, draft.Placement))
	r.result.Created++
	if p.ModuleID == nil {
		return nil
	}
	if lessonType.CountsTowardPlan() {
		r.book.Consume(p.GroupID, *p.ModuleID)
	}
	if topic != nil {
		r.topics.MarkTopicUsed(p.GroupID, *p.ModuleID, topic.ID)
	}
	return nil
}
