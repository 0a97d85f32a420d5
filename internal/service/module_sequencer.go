package service

import (
	"hash/fnv"
	"math/rand"
	"strconv"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ModuleOrder is a course's scheduling order.
type ModuleOrder struct {
	// Main is the configured sequence, restricted to plan modules.
	Main []int64
	// Fillers pad free slots.
	Fillers []int64
	// All holds every plan module exactly once: main, fillers, then leftovers.
	All []int64
}

// BuildCourseModuleOrder orders planModules by the course's sequence and filler tables.
func BuildCourseModuleOrder(sequence []models.ModuleSequenceItem, fillers []models.ModuleFiller, planModules []int64) ModuleOrder {
	inPlan := make(map[int64]bool, len(planModules))
	for _, id := range planModules {
		inPlan[id] = true
	}
	seen := make(map[int64]bool, len(planModules))
	var order ModuleOrder
	for _, item := range sequence {
		if inPlan[item.ModuleID] && !seen[item.ModuleID] {
			seen[item.ModuleID] = true
			order.Main = append(order.Main, item.ModuleID)
		}
	}
	for _, filler := range fillers {
		if inPlan[filler.ModuleID] && !seen[filler.ModuleID] {
			seen[filler.ModuleID] = true
			order.Fillers = append(order.Fillers, filler.ModuleID)
		}
	}
	order.All = append(order.All, order.Main...)
	order.All = append(order.All, order.Fillers...)
	for _, id := range planModules {
		if !seen[id] {
			seen[id] = true
			order.All = append(order.All, id)
		}
	}
	return order
}

// PrimaryCandidates are the modules the daily rotation cycles through: the
// main sequence, or every non-filler module when no sequence is configured.
func (o ModuleOrder) PrimaryCandidates() []int64 {
	if len(o.Main) > 0 {
		return o.Main
	}
	fillers := make(map[int64]bool, len(o.Fillers))
	for _, id := range o.Fillers {
		fillers[id] = true
	}
	var out []int64
	for _, id := range o.All {
		if !fillers[id] {
			out = append(out, id)
		}
	}
	return out
}

// moduleRotation picks the primary module of a day for one group.
type moduleRotation struct {
	modules []int64
	next    int
}

// pick returns the first module from the rotating index with hours left.
func (r *moduleRotation) pick(hasHours func(moduleID int64) bool) (int64, bool) {
	n := len(r.modules)
	for i := 0; i < n; i++ {
		id := r.modules[(r.next+i)%n]
		if hasHours(id) {
			r.next = (r.next + i) % n
			return id, true
		}
	}
	return 0, false
}

// advance moves past the module returned by pick.
func (r *moduleRotation) advance() {
	if len(r.modules) > 0 {
		r.next = (r.next + 1) % len(r.modules)
	}
}

// shuffleFillers returns a permutation of fillers that depends only on week, group and date.
func shuffleFillers(fillers []int64, weekStart models.Date, groupID int64, date models.Date) []int64 {
	out := append([]int64(nil), fillers...)
	h := fnv.New64a()
	_, _ = h.Write([]byte(weekStart.String() + "|" + strconv.FormatInt(groupID, 10) + "|" + date.String()))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (o ModuleOrder) restrict(keep func(moduleID int64) bool) ModuleOrder {
	filter := func(ids []int64) []int64 {
		var out []int64
		for _, id := range ids {
			if keep(id) {
				out = append(out, id)
			}
		}
		return out
	}
	return ModuleOrder{Main: filter(o.Main), Fillers: filter(o.Fillers), All: filter(o.All)}
}
