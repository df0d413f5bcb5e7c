package catalog

import (
	"slices"

	"github.com/samber/lo"
)

type StudentState struct {
	Completed map[CourseCode]bool
	Blacklist map[Slot]bool
}

func NewStudentState(completed []CourseCode, blacklist []Slot) StudentState {
	return StudentState{
		Completed: lo.SliceToMap(completed, func(code CourseCode) (CourseCode, bool) { return NormalizeCode(string(code)), true }),
		Blacklist: lo.SliceToMap(blacklist, func(slot Slot) (Slot, bool) { return slot, true }),
	}
}

func (student StudentState) CompletedCodes() []CourseCode {
	codes := lo.Keys(lo.PickBy(student.Completed, func(_ CourseCode, done bool) bool { return done }))
	slices.Sort(codes)
	return codes
}

func (student StudentState) BlacklistedSlots() []Slot {
	slots := lo.Keys(lo.PickBy(student.Blacklist, func(_ Slot, blocked bool) bool { return blocked }))
	slices.SortFunc(slots, Slot.Compare)
	return slots
}

// Targets are the student's goals: exact per-category course counts and an inclusive credit band
type Targets struct {
	MajorCount    int
	MinorCount    int
	ElectiveCount int
	MinCredits    int
	MaxCredits    int
}

func (targets Targets) Count(category Category) int {
	switch category {
	case Major:
		return targets.MajorCount
	case Minor:
		return targets.MinorCount
	case Elective:
		return targets.ElectiveCount
	}
	return 0
}
