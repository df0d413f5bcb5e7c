package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCourse() Course {
	return Course{
		Code:     "MAS3114",
		Credits:  3,
		Category: Major,
		Coreqs:   []CourseCode{"MAS3114L", "STA3032"},
		Sections: []Section{{ID: "12351", Course: "MAS3114", Slots: []Slot{{Day: Monday, Period: 5}, {Day: Wednesday, Period: 5}}}},
	}
}

func TestCatalogValidate(t *testing.T) {
	require.NoError(t, Catalog{"MAS3114": validCourse()}.Validate())

	scenarios := []struct {
		name   string
		modify func(course *Course)
	}{
		{"Unnormalized corequisite", func(course *Course) { course.Coreqs = []CourseCode{"mas 3114l"} }},
		{"Unsorted corequisites", func(course *Course) { course.Coreqs = []CourseCode{"STA3032", "MAS3114L"} }},
		{"Repeated corequisite", func(course *Course) { course.Coreqs = []CourseCode{"MAS3114L", "MAS3114L"} }},
		{"Repeated slot", func(course *Course) {
			course.Sections[0].Slots = []Slot{{Day: Monday, Period: 1}, {Day: Monday, Period: 1}}
		}},
		{"Unsorted slots", func(course *Course) {
			course.Sections[0].Slots = []Slot{{Day: Wednesday, Period: 5}, {Day: Monday, Period: 5}}
		}},
	}

	for _, scenario := range scenarios {
		t.Run(scenario.name, func(t *testing.T) {
			//** Arrange
			course := validCourse()
			scenario.modify(&course)

			//** Act
			err := Catalog{"MAS3114": course}.Validate()

			//** Assert
			var validation *ValidationError
			assert.ErrorIs(t, err, ErrMalformedInput)
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, "course MAS3114", validation.Field)
		})
	}
}
