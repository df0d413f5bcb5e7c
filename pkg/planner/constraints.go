package planner

import (
	"fmt"
	"slices"

	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/limaJavier/courseplan/pkg/sat"
	"github.com/samber/lo"
)

// Labels of the constraint groups a student can relax
const (
	LabelCredits = "credits"
)

func QuotaLabel(category catalog.Category) string {
	return "quota:" + category.String()
}

type constraintState struct {
	eligible  Eligible
	targets   catalog.Targets
	completed map[catalog.CourseCode]bool
	indexer   *Indexer
}

// BuildModel translates the eligible catalog and the targets into a problem over course-selection and section-usage
// variables. It never fails: a course whose corequisite cannot be taken becomes a fixed-false variable
func BuildModel(eligible Eligible, targets catalog.Targets, completed map[catalog.CourseCode]bool) (sat.Problem, *Indexer) {
	state := constraintState{
		eligible:  eligible,
		targets:   targets,
		completed: completed,
		indexer:   NewIndexer(eligible.Courses),
	}

	// Constraints functions
	constraints := []func(state constraintState) []sat.Constraint{
		linkageConstraints,
		quotaConstraints,
		creditConstraints,
		corequisiteConstraints,
		slotConstraints,
	}

	return buildProblem(state, constraints), state.indexer
}

func buildProblem(state constraintState, constraints []func(state constraintState) []sat.Constraint) sat.Problem {
	type generated struct {
		position    int
		constraints []sat.Constraint
	}

	// Execute constraints functions on different goroutines; results are merged in declaration order to keep the problem deterministic
	channel := make(chan generated)
	for position, constraint := range constraints {
		go func() {
			channel <- generated{position: position, constraints: constraint(state)}
		}()
	}

	collected := make([][]sat.Constraint, len(constraints))
	for range constraints {
		result := <-channel
		collected[result.position] = result.constraints
	}

	return sat.Problem{
		Variables:   state.indexer.Variables(),
		Constraints: lo.Flatten(collected),
	}
}

// A course is selected iff exactly one of its sections is used
func linkageConstraints(state constraintState) []sat.Constraint {
	return lo.Map(state.eligible.Courses, func(course catalog.Course, _ int) sat.Constraint {
		sections := lo.Map(course.Sections, func(section catalog.Section, _ int) int { return state.indexer.Section(section.ID) })
		slices.Sort(sections)
		return sat.NewLinkage("linkage:"+string(course.Code), state.indexer.Course(course.Code), sections)
	})
}

// Exact number of selected courses per category
func quotaConstraints(state constraintState) []sat.Constraint {
	return lo.Map(catalog.Categories, func(category catalog.Category, _ int) sat.Constraint {
		vars := lo.FilterMap(state.eligible.Courses, func(course catalog.Course, _ int) (int, bool) {
			return state.indexer.Course(course.Code), course.Category == category
		})
		return sat.NewExactly(QuotaLabel(category), vars, state.targets.Count(category))
	})
}

func creditConstraints(state constraintState) []sat.Constraint {
	vars := lo.Map(state.eligible.Courses, func(course catalog.Course, _ int) int { return state.indexer.Course(course.Code) })
	weights := lo.Map(state.eligible.Courses, func(course catalog.Course, _ int) int { return course.Credits })
	return []sat.Constraint{sat.NewSum(LabelCredits, vars, weights, state.targets.MinCredits, state.targets.MaxCredits)}
}

// Selecting a course implies selecting each eligible corequisite. A corequisite that is neither eligible nor completed
// makes the course unselectable
func corequisiteConstraints(state constraintState) []sat.Constraint {
	constraints := make([]sat.Constraint, 0)
	for _, course := range state.eligible.Courses {
		for _, coreq := range course.Coreqs {
			if coreq == course.Code {
				continue
			}

			label := fmt.Sprintf("coreq:%v->%v", course.Code, coreq)
			if _, ok := state.eligible.Course(coreq); ok {
				constraints = append(constraints, sat.NewImplication(label, state.indexer.Course(course.Code), state.indexer.Course(coreq)))
			} else if !state.completed[coreq] {
				constraints = append(constraints, sat.NewFixed(label, state.indexer.Course(course.Code), false))
			}
		}
	}
	return constraints
}

// At most one used section per slot shared by sections of different courses
func slotConstraints(state constraintState) []sat.Constraint {
	occupants := make(map[catalog.Slot][]catalog.Section)
	for _, course := range state.eligible.Courses {
		for _, section := range course.Sections {
			for _, slot := range section.Slots {
				occupants[slot] = append(occupants[slot], section)
			}
		}
	}

	slots := lo.Keys(occupants)
	slices.SortFunc(slots, catalog.Slot.Compare)

	constraints := make([]sat.Constraint, 0)
	for _, slot := range slots {
		sections := occupants[slot]
		owners := lo.UniqBy(sections, func(section catalog.Section) catalog.CourseCode { return section.Course })
		if len(owners) < 2 {
			continue
		}

		// A section listing the slot twice still counts once
		vars := lo.Uniq(lo.Map(sections, func(section catalog.Section, _ int) int { return state.indexer.Section(section.ID) }))
		slices.Sort(vars)
		constraints = append(constraints, sat.NewAtMostOne("slot:"+slot.String(), vars))
	}
	return constraints
}

// Reports whether a course can be selected at all given its corequisites
func selectable(course catalog.Course, eligible Eligible, completed map[catalog.CourseCode]bool) bool {
	return lo.EveryBy(course.Coreqs, func(coreq catalog.CourseCode) bool {
		_, ok := eligible.Course(coreq)
		return ok || completed[coreq] || coreq == course.Code
	})
}
