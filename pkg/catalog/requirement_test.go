package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequirementExprSatisfiedBy(t *testing.T) {
	expr := NewRequirementExpr(
		[]CourseCode{"COP3530", "CDA3101"},
		[]CourseCode{"cop 3530", "EEL3701"},
	)

	scenarios := []struct {
		completed []CourseCode
		expected  bool
	}{
		{nil, false},
		{[]CourseCode{"COP3530"}, false},
		{[]CourseCode{"COP3530", "CDA3101"}, true},
		{[]CourseCode{"COP3530", "EEL3701", "MAC2312"}, true},
		{[]CourseCode{"CDA3101", "EEL3701"}, false},
	}

	for _, scenario := range scenarios {
		completed := NewStudentState(scenario.completed, nil).Completed
		assert.Equal(t, scenario.expected, expr.SatisfiedBy(completed), "completed: %v", scenario.completed)
	}
}

func TestEmptyRequirementExpr(t *testing.T) {
	// No groups at all, and a single empty group, are both trivially satisfied
	for _, expr := range []RequirementExpr{NewRequirementExpr(), {}, NewRequirementExpr([]CourseCode{})} {
		assert.True(t, expr.SatisfiedBy(nil))
		assert.True(t, expr.SatisfiedBy(map[CourseCode]bool{"COP3530": true}))
	}
	assert.True(t, NewRequirementExpr().Empty())
	assert.Equal(t, "none", NewRequirementExpr().String())
}

func TestRequirementExprIsImmutable(t *testing.T) {
	// Arrange
	group := []CourseCode{"COT3100", "COP3503"}
	expr := NewRequirementExpr(group)

	// Act
	group[0] = "MAC2312"
	expr.Groups()[0][0] = "STA2023"

	// Assert
	assert.Equal(t, []RequirementGroup{{"COP3503", "COT3100"}}, expr.Groups())
	assert.Equal(t, "(COP3503 AND COT3100)", expr.String())
	assert.Equal(t, []CourseCode{"COP3503", "COT3100"}, expr.Codes())
}

func TestNormalizeCodeAndDays(t *testing.T) {
	assert.Equal(t, CourseCode("COP3530"), NormalizeCode(" cop 35\t30 "))

	for value, expected := range map[string]Day{"M": Monday, "r": Thursday, "U": Sunday, "Tue": Tuesday, "friday": Friday} {
		day, err := ParseDay(value)
		assert.NoError(t, err)
		assert.Equal(t, expected, day, value)
	}
	_, err := ParseDay("Someday")
	assert.ErrorIs(t, err, ErrMalformedInput)

	assert.Equal(t, "R-4", Slot{Day: Thursday, Period: 4}.String())
	assert.Equal(t, []Slot{{Monday, 2}, {Monday, 3}, {Friday, 1}}, SortSlots([]Slot{{Friday, 1}, {Monday, 3}, {Monday, 2}, {Monday, 3}}))
}

func TestTargetsValidate(t *testing.T) {
	assert.NoError(t, Targets{MajorCount: 1, ElectiveCount: 1, MinCredits: 6, MaxCredits: 6}.Validate())
	assert.NoError(t, Targets{}.Validate())
	assert.ErrorIs(t, Targets{MinCredits: 7, MaxCredits: 6}.Validate(), ErrMalformedInput)
	assert.ErrorIs(t, Targets{MinorCount: -1}.Validate(), ErrMalformedInput)

	var validation *ValidationError
	assert.ErrorAs(t, Targets{MaxCredits: -3}.Validate(), &validation)
	assert.Equal(t, "targets.maxCredits", validation.Field)
}
