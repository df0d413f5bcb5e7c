package planner

import (
	"errors"
	"fmt"

	"github.com/limaJavier/courseplan/pkg/catalog"
)

var ErrVerification = errors.New("schedule verification failed")

// Verify re-checks a schedule against the eligible catalog and the targets without relying on any solver
func Verify(schedule Schedule, eligible Eligible, targets catalog.Targets, completed map[catalog.CourseCode]bool) error {
	//** Initialize counters
	selected := make(map[catalog.CourseCode]bool)
	counts := make(map[catalog.Category]int)
	occupied := make(map[catalog.Slot]catalog.CourseCode)
	credits := 0

	for _, scheduled := range schedule.Courses {
		course, ok := eligible.Course(scheduled.Code)
		// Check that:
		// - Course is eligible and scheduled once
		// - Section is an eligible section of the course
		// - None of its slots is already taken by another course
		if !ok {
			return fmt.Errorf("%w: %v is not eligible", ErrVerification, scheduled.Code)
		} else if selected[scheduled.Code] {
			return fmt.Errorf("%w: %v is scheduled twice", ErrVerification, scheduled.Code)
		} else if ref, ok := eligible.Sections[scheduled.SectionID]; !ok || ref.Course != scheduled.Code {
			return fmt.Errorf("%w: %v is not an eligible section of %v", ErrVerification, scheduled.SectionID, scheduled.Code)
		}

		for _, slot := range eligible.Sections[scheduled.SectionID].Slots {
			if owner, taken := occupied[slot]; taken {
				return fmt.Errorf("%w: %v and %v both meet at %v", ErrVerification, owner, scheduled.Code, slot)
			}
			occupied[slot] = scheduled.Code
		}

		selected[scheduled.Code] = true
		counts[course.Category]++
		credits += course.Credits
	}

	//** Check quotas and credits
	for _, category := range catalog.Categories {
		if counts[category] != targets.Count(category) {
			return fmt.Errorf("%w: %d %v courses scheduled, %d wanted", ErrVerification, counts[category], category, targets.Count(category))
		}
	}
	if credits != schedule.TotalCredits {
		return fmt.Errorf("%w: total credits reported as %d, courses add up to %d", ErrVerification, schedule.TotalCredits, credits)
	} else if credits < targets.MinCredits || credits > targets.MaxCredits {
		return fmt.Errorf("%w: %d credits outside [%d, %d]", ErrVerification, credits, targets.MinCredits, targets.MaxCredits)
	}

	//** Check corequisites
	for code := range selected {
		course, _ := eligible.Course(code)
		for _, coreq := range course.Coreqs {
			if _, ok := eligible.Course(coreq); ok && !selected[coreq] {
				return fmt.Errorf("%w: %v is scheduled without its corequisite %v", ErrVerification, code, coreq)
			} else if !ok && !completed[coreq] {
				return fmt.Errorf("%w: %v requires %v, which cannot be taken", ErrVerification, code, coreq)
			}
		}
	}

	return nil
}
