package planner

import (
	"slices"

	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/samber/lo"
)

type Reason int

const (
	PrerequisitesUnmet Reason = iota
	AllSectionsBlacklisted
)

func (reason Reason) String() string {
	if reason == AllSectionsBlacklisted {
		return "all sections blacklisted"
	}
	return "prerequisites unmet"
}

type SectionRef struct {
	Course catalog.CourseCode
	Slots  []catalog.Slot
}

// Eligible is the reduced catalog: courses the student may take, each holding only its surviving sections
type Eligible struct {
	Courses  []catalog.Course // Sorted by code
	Sections map[string]SectionRef
	Excluded map[catalog.CourseCode]Reason
}

func (eligible Eligible) Empty() bool {
	return len(eligible.Courses) == 0
}

func (eligible Eligible) Course(code catalog.CourseCode) (catalog.Course, bool) {
	index, found := slices.BinarySearchFunc(eligible.Courses, code, func(course catalog.Course, code catalog.CourseCode) int {
		switch {
		case course.Code < code:
			return -1
		case course.Code > code:
			return 1
		}
		return 0
	})
	if !found {
		return catalog.Course{}, false
	}
	return eligible.Courses[index], true
}

// Filter narrows the catalog to what the student can take: prerequisites met and at least one section clear of the
// blacklist. A course whose sections are all blacklisted is dropped entirely
func Filter(courses catalog.Catalog, student catalog.StudentState) Eligible {
	eligible := Eligible{
		Courses:  make([]catalog.Course, 0, len(courses)),
		Sections: make(map[string]SectionRef),
		Excluded: make(map[catalog.CourseCode]Reason),
	}

	for _, course := range courses.Courses() {
		if !course.Prereqs.SatisfiedBy(student.Completed) {
			eligible.Excluded[course.Code] = PrerequisitesUnmet
			continue
		}

		sections := lo.Filter(course.Sections, func(section catalog.Section, _ int) bool {
			return section.DisjointFrom(student.Blacklist)
		})
		if len(sections) == 0 {
			eligible.Excluded[course.Code] = AllSectionsBlacklisted
			continue
		}

		eligible.Courses = append(eligible.Courses, course.WithSections(sections))
		for _, section := range sections {
			eligible.Sections[section.ID] = SectionRef{Course: course.Code, Slots: section.Slots}
		}
	}

	return eligible
}
