package planner

import (
	"math/rand/v2"
	"testing"

	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterDropsBlacklistedSections(t *testing.T) {
	// Arrange
	student := catalog.NewStudentState(
		[]catalog.CourseCode{"COP3503", "COT3100"},
		[]catalog.Slot{{Day: catalog.Friday, Period: 1}},
	)

	// Act
	eligible := Filter(demoCatalog(), student)

	// Assert
	require.Len(t, eligible.Courses, 2)
	assert.Equal(t, catalog.CourseCode("ART2000"), eligible.Courses[0].Code)
	require.Len(t, eligible.Courses[0].Sections, 1)
	assert.Equal(t, "12353", eligible.Courses[0].Sections[0].ID)
	assert.Len(t, eligible.Courses[1].Sections, 2)
	assert.NotContains(t, eligible.Sections, "12352")
	assert.Equal(t, catalog.CourseCode("ART2000"), eligible.Sections["12353"].Course)
	assert.Empty(t, eligible.Excluded)
}

func TestFilterLeavesCatalogUntouched(t *testing.T) {
	courses := demoCatalog()
	student := catalog.NewStudentState(nil, []catalog.Slot{{Day: catalog.Friday, Period: 1}})

	Filter(courses, student)

	assert.Len(t, courses["ART2000"].Sections, 2)
}

func TestFilterAlternativePrerequisites(t *testing.T) {
	courses := catalog.Catalog{
		"COP4600": {
			Code:     "COP4600",
			Credits:  3,
			Category: catalog.Major,
			Prereqs: catalog.NewRequirementExpr(
				[]catalog.CourseCode{"COP3530", "CDA3101"},
				[]catalog.CourseCode{"COP3530", "EEL3701"},
			),
			Sections: []catalog.Section{section("40001", "COP4600", catalog.Slot{Day: catalog.Thursday, Period: 5})},
		},
	}

	scenarios := []struct {
		completed []catalog.CourseCode
		eligible  bool
	}{
		{nil, false},
		{[]catalog.CourseCode{"COP3530"}, false},
		{[]catalog.CourseCode{"COP3530", "CDA3101"}, true},
		{[]catalog.CourseCode{"cop 3530", "eel3701"}, true},
		{[]catalog.CourseCode{"CDA3101", "EEL3701"}, false},
	}

	for _, scenario := range scenarios {
		eligible := Filter(courses, catalog.NewStudentState(scenario.completed, nil))

		assert.Equal(t, scenario.eligible, !eligible.Empty(), "completed: %v", scenario.completed)
		if !scenario.eligible {
			assert.Equal(t, PrerequisitesUnmet, eligible.Excluded["COP4600"])
		}
	}
}

func TestFilterProperties(t *testing.T) {
	random := rand.New(rand.NewPCG(1, 2))

	for range 50 {
		courses := catalog.GenerateCatalog(random, 12)
		student := catalog.GenerateStudent(random, courses)
		eligible := Filter(courses, student)

		for _, course := range courses.Courses() {
			filtered, ok := eligible.Course(course.Code)

			// Courses without prerequisites only depend on the blacklist
			if course.Prereqs.Empty() {
				survivors := 0
				for _, section := range course.Sections {
					if section.DisjointFrom(student.Blacklist) {
						survivors++
					}
				}
				assert.Equal(t, survivors > 0, ok, course.Code)
			}
			if !ok {
				assert.Contains(t, eligible.Excluded, course.Code)
				continue
			}

			// Sections survive iff they avoid every blacklisted slot
			for _, section := range course.Sections {
				_, kept := eligible.Sections[section.ID]
				assert.Equal(t, section.DisjointFrom(student.Blacklist), kept, section.ID)
			}
			assert.NotEmpty(t, filtered.Sections)
			assert.NotContains(t, eligible.Excluded, course.Code)
		}
	}
}
