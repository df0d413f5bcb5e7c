package planner

import (
	"log"
	"slices"

	"github.com/limaJavier/courseplan/pkg/catalog"
)

// Assemble turns a satisfying assignment into a schedule by walking the used section variables. The assignment is
// trusted to be valid
func Assemble(values []bool, indexer *Indexer, eligible Eligible) Schedule {
	schedule := Schedule{Courses: make([]ScheduledCourse, 0)}

	// Variables follow the canonical order, hence courses come out sorted by code
	for variable := 1; variable < len(values); variable++ {
		if !values[variable] {
			continue
		}
		code, sectionID := indexer.Attributes(variable)
		if sectionID == "" {
			continue
		}

		course, ok := eligible.Course(code)
		if !ok {
			log.Panicf("section %v belongs to a course that is not eligible: %v", sectionID, code)
		}
		index := slices.IndexFunc(course.Sections, func(section catalog.Section) bool { return section.ID == sectionID })
		if index < 0 {
			log.Panicf("section %v is not an eligible section of %v", sectionID, code)
		}

		schedule.Courses = append(schedule.Courses, ScheduledCourse{
			Code:      course.Code,
			Name:      course.Name,
			SectionID: sectionID,
			Credits:   course.Credits,
			Category:  course.Category,
			Slots:     slices.Clone(course.Sections[index].Slots),
		})
		schedule.TotalCredits += course.Credits
	}

	return schedule
}
