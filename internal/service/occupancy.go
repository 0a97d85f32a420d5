package service

import (
	"fmt"

	"github.com/noah-isme/timetable-api/internal/models"
)

// occupant is a placement annotated with the lesson-type flags the overlap
// and travel rules need.
type occupant struct {
	ID            int64
	Draft         bool
	Placement     models.Placement
	BlocksRoom    bool
	BlocksTeacher bool
	// Located is set when the session holds a room exclusively, so its
	// building counts for travel.
	Located    bool
	BuildingID int64
}

type clashKind string

const (
	clashGroup   clashKind = "group"
	clashRoom    clashKind = "room"
	clashTeacher clashKind = "teacher"
)

type clash struct {
	Kind  clashKind
	Other occupant
}

type travelIssue struct {
	Via       clashKind
	Other     occupant
	Violation TravelViolation
}

// occupancy is the busy set: every known session per date. Conflict checks and
// the generator share it so both apply the same overlap policy.
type occupancy struct {
	byDate      map[string][]occupant
	lessonTypes map[int64]models.LessonType
	rooms       map[int64]models.Room
}

func newOccupancy(ref *ReferenceData) *occupancy {
	return &occupancy{
		byDate:      make(map[string][]occupant),
		lessonTypes: ref.LessonTypes,
		rooms:       ref.Rooms,
	}
}

func (o *occupancy) annotate(id int64, draft bool, p models.Placement) occupant {
	lt := o.lessonTypes[p.LessonTypeID]
	occ := occupant{
		ID:            id,
		Draft:         draft,
		Placement:     p,
		BlocksRoom:    lt.BlocksRoom,
		BlocksTeacher: lt.BlocksTeacher,
	}
	if p.RoomID != nil && lt.RequiresRoom && lt.BlocksRoom {
		if room, ok := o.rooms[*p.RoomID]; ok {
			occ.Located = true
			occ.BuildingID = room.BuildingID
		}
	}
	return occ
}

func (o *occupancy) add(occ occupant) {
	key := occ.Placement.Date.String()
	o.byDate[key] = append(o.byDate[key], occ)
}

func (o *occupancy) addItems(items []models.ScheduleItem, excludeID *int64) {
	for _, item := range items {
		if excludeID != nil && item.ID == *excludeID {
			continue
		}
		o.add(o.annotate(item.ID, false, item.Placement))
	}
}

func (o *occupancy) addDrafts(drafts []models.TeacherDraftItem, excludeID *int64) {
	for _, draft := range drafts {
		if excludeID != nil && draft.ID == *excludeID {
			continue
		}
		if draft.Status != "" && draft.Status != models.DraftStatusDraft {
			continue
		}
		o.add(o.annotate(draft.ID, true, draft.Placement))
	}
}

func sameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}

// clashes lists every session overlapping c on a shared group, or on a room or
// teacher both sessions hold exclusively.
func (o *occupancy) clashes(c occupant) []clash {
	var found []clash
	window := c.Placement.Window()
	for _, other := range o.byDate[c.Placement.Date.String()] {
		if !window.Overlaps(other.Placement.Window()) {
			continue
		}
		switch {
		case other.Placement.GroupID == c.Placement.GroupID:
			found = append(found, clash{Kind: clashGroup, Other: other})
		case c.BlocksRoom && other.BlocksRoom && sameID(c.Placement.RoomID, other.Placement.RoomID):
			found = append(found, clash{Kind: clashRoom, Other: other})
		case c.BlocksTeacher && other.BlocksTeacher && sameID(c.Placement.TeacherID, other.Placement.TeacherID):
			found = append(found, clash{Kind: clashTeacher, Other: other})
		}
	}
	return found
}

func (o *occupancy) firstClash(c occupant) (clash, bool) {
	found := o.clashes(c)
	if len(found) == 0 {
		return clash{}, false
	}
	return found[0], true
}

// travelIssues lists same-day sessions of the group or teacher in another
// building that leave too little time to move.
func (o *occupancy) travelIssues(c occupant, matrix *TravelMatrix) []travelIssue {
	if !c.Located || matrix == nil {
		return nil
	}
	var found []travelIssue
	for _, other := range o.byDate[c.Placement.Date.String()] {
		if !other.Located || other.BuildingID == c.BuildingID {
			continue
		}
		var via clashKind
		switch {
		case other.Placement.GroupID == c.Placement.GroupID:
			via = clashGroup
		case sameID(c.Placement.TeacherID, other.Placement.TeacherID):
			via = clashTeacher
		default:
			continue
		}
		violation, ok := matrix.CheckGap(
			TravelStop{BuildingID: c.BuildingID, Window: c.Placement.Window()},
			TravelStop{BuildingID: other.BuildingID, Window: other.Placement.Window()},
		)
		if !ok {
			found = append(found, travelIssue{Via: via, Other: other, Violation: violation})
		}
	}
	return found
}

// groupFree reports whether the group has nothing overlapping w on date.
func (o *occupancy) groupFree(date models.Date, groupID int64, w models.TimeWindow) bool {
	for _, other := range o.byDate[date.String()] {
		if other.Placement.GroupID == groupID && w.Overlaps(other.Placement.Window()) {
			return false
		}
	}
	return true
}

// lessonTypesOn returns the lesson types the group used for module on date.
func (o *occupancy) lessonTypesOn(date models.Date, groupID, moduleID int64) map[int64]bool {
	used := make(map[int64]bool)
	for _, other := range o.byDate[date.String()] {
		if other.Placement.GroupID == groupID && sameID(other.Placement.ModuleID, &moduleID) {
			used[other.Placement.LessonTypeID] = true
		}
	}
	return used
}

func describeSession(occ occupant) string {
	kind := "published session"
	if occ.Draft {
		kind = "draft session"
	}
	p := occ.Placement
	desc := fmt.Sprintf("%s #%d on %s %s (group %d", kind, occ.ID, p.Date, p.Window(), p.GroupID)
	if p.TeacherID != nil {
		desc += fmt.Sprintf(", teacher %d", *p.TeacherID)
	}
	if p.RoomID != nil {
		desc += fmt.Sprintf(", room %d", *p.RoomID)
	}
	return desc + ")"
}
