package service

import (
	"sort"

	"github.com/noah-isme/timetable-api/internal/models"
)

type groupModuleKey struct {
	GroupID  int64
	ModuleID int64
}

type groupTopicKey struct {
	GroupID int64
	TopicID int64
}

// TopicAllocator walks each module's topics in code order, one cursor per
// (group, module). A topic is consumed once it reaches its usage limit.
type TopicAllocator struct {
	byModule map[int64][]models.Topic
	cursors  map[groupModuleKey]int
	used     map[groupTopicKey]int
}

// NewTopicAllocator sorts topics by code and seeds usage from existing placements.
func NewTopicAllocator(topics []models.Topic, usage []models.TopicUsage) *TopicAllocator {
	a := &TopicAllocator{
		byModule: make(map[int64][]models.Topic),
		cursors:  make(map[groupModuleKey]int),
		used:     make(map[groupTopicKey]int),
	}
	for _, topic := range topics {
		a.byModule[topic.ModuleID] = append(a.byModule[topic.ModuleID], topic)
	}
	for moduleID := range a.byModule {
		list := a.byModule[moduleID]
		sort.SliceStable(list, func(i, j int) bool {
			return models.CompareTopicCodes(list[i].Code, list[j].Code) < 0
		})
	}
	for _, u := range usage {
		a.used[groupTopicKey{GroupID: u.GroupID, TopicID: u.TopicID}] += u.Count
	}
	return a
}

func (a *TopicAllocator) exhausted(groupID int64, topic models.Topic) bool {
	limit := topic.UsageLimit()
	return limit <= 0 || a.used[groupTopicKey{GroupID: groupID, TopicID: topic.ID}] >= limit
}

// normalize moves the cursor past exhausted topics and returns it.
func (a *TopicAllocator) normalize(groupID, moduleID int64) int {
	key := groupModuleKey{GroupID: groupID, ModuleID: moduleID}
	list := a.byModule[moduleID]
	pos := a.cursors[key]
	for pos < len(list) && a.exhausted(groupID, list[pos]) {
		pos++
	}
	a.cursors[key] = pos
	return pos
}

// PeekNextTopic returns the topic to schedule next, or nil when none is pending.
func (a *TopicAllocator) PeekNextTopic(groupID, moduleID int64) *models.Topic {
	pos := a.normalize(groupID, moduleID)
	list := a.byModule[moduleID]
	if pos >= len(list) {
		return nil
	}
	topic := list[pos]
	return &topic
}

// MarkTopicUsed records one session of the topic for the group.
func (a *TopicAllocator) MarkTopicUsed(groupID, moduleID, topicID int64) {
	a.used[groupTopicKey{GroupID: groupID, TopicID: topicID}]++
	a.normalize(groupID, moduleID)
}

// TopicsDepleted is true when the module has topics and every one is used up.
func (a *TopicAllocator) TopicsDepleted(groupID, moduleID int64) bool {
	list := a.byModule[moduleID]
	if len(list) == 0 {
		return false
	}
	return a.normalize(groupID, moduleID) >= len(list)
}

// AuditoriumHours sums the usage limits of a module's topics.
func (a *TopicAllocator) AuditoriumHours(moduleID int64) int {
	total := 0
	for _, topic := range a.byModule[moduleID] {
		total += topic.AuditoriumHours
	}
	return total
}

// PlanBook tracks remaining hours per (group, module).
type PlanBook struct {
	remaining map[groupModuleKey]int
}

// SplitTarget divides target evenly across groups in ascending id order,
// handing the remainder to the first groups.
func SplitTarget(target int, groupIDs []int64) map[int64]int {
	ids := append([]int64(nil), groupIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	shares := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return shares
	}
	base := target / len(ids)
	extra := target % len(ids)
	for i, id := range ids {
		shares[id] = base
		if i < extra {
			shares[id]++
		}
	}
	return shares
}

// NewPlanBook derives remaining hours from active plans, the groups of each
// course, the module topic hour totals and the placements already counted.
func NewPlanBook(plans []models.ModulePlan, groupsByCourse map[int64][]int64, auditoriumHours func(moduleID int64) int, completed map[groupModuleKey]int) *PlanBook {
	book := &PlanBook{remaining: make(map[groupModuleKey]int)}
	for _, plan := range plans {
		if !plan.IsActive {
			continue
		}
		floor := auditoriumHours(plan.ModuleID)
		for groupID, share := range SplitTarget(plan.TargetHours, groupsByCourse[plan.CourseID]) {
			if share < floor {
				share = floor
			}
			key := groupModuleKey{GroupID: groupID, ModuleID: plan.ModuleID}
			left := share - completed[key]
			if left < 0 {
				left = 0
			}
			book.remaining[key] = left
		}
	}
	return book
}

// Remaining returns the hours still to schedule, never negative.
func (b *PlanBook) Remaining(groupID, moduleID int64) int {
	return b.remaining[groupModuleKey{GroupID: groupID, ModuleID: moduleID}]
}

// Consume books one hour.
func (b *PlanBook) Consume(groupID, moduleID int64) {
	key := groupModuleKey{GroupID: groupID, ModuleID: moduleID}
	if b.remaining[key] > 0 {
		b.remaining[key]--
	}
}

// completedHours sums plan-counting placements per (group, module).
func completedHours(counts []models.PlacementCount, lessonTypes map[int64]models.LessonType) map[groupModuleKey]int {
	done := make(map[groupModuleKey]int)
	for _, c := range counts {
		if lt, ok := lessonTypes[c.LessonTypeID]; ok && lt.CountsTowardPlan() {
			done[groupModuleKey{GroupID: c.GroupID, ModuleID: c.ModuleID}] += c.Count
		}
	}
	return done
}
