package planner

import (
	"slices"
	"strings"

	"github.com/limaJavier/courseplan/pkg/catalog"
)

type attributes struct {
	course  catalog.CourseCode
	section string // Empty for course variables
}

// Indexer gives a unique variable to every eligible course and section and vice versa. Variables follow the canonical
// order: courses by code, each immediately followed by its sections by id
type Indexer struct {
	courses    map[catalog.CourseCode]int
	sections   map[string]int
	attributes []attributes // Variable -> attributes, index 0 unused
}

func NewIndexer(courses []catalog.Course) *Indexer {
	sorted := slices.Clone(courses)
	slices.SortFunc(sorted, func(a, b catalog.Course) int { return strings.Compare(string(a.Code), string(b.Code)) })

	indexer := &Indexer{
		courses:    make(map[catalog.CourseCode]int, len(sorted)),
		sections:   make(map[string]int),
		attributes: []attributes{{}},
	}
	for _, course := range sorted {
		indexer.courses[course.Code] = len(indexer.attributes)
		indexer.attributes = append(indexer.attributes, attributes{course: course.Code})

		sections := slices.Clone(course.Sections)
		slices.SortFunc(sections, func(a, b catalog.Section) int { return strings.Compare(a.ID, b.ID) })
		for _, section := range sections {
			indexer.sections[section.ID] = len(indexer.attributes)
			indexer.attributes = append(indexer.attributes, attributes{course: course.Code, section: section.ID})
		}
	}
	return indexer
}

// Returns the course's selection variable, or 0 if the course is not indexed
func (indexer *Indexer) Course(code catalog.CourseCode) int {
	return indexer.courses[code]
}

// Returns the section's usage variable, or 0 if the section is not indexed
func (indexer *Indexer) Section(id string) int {
	return indexer.sections[id]
}

// Returns the owning course of a variable and, for section variables, the section id
func (indexer *Indexer) Attributes(variable int) (course catalog.CourseCode, section string) {
	if variable < 1 || variable >= len(indexer.attributes) {
		return "", ""
	}
	attributes := indexer.attributes[variable]
	return attributes.course, attributes.section
}

func (indexer *Indexer) Variables() int {
	return len(indexer.attributes) - 1
}
