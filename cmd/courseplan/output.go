package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/limaJavier/courseplan/pkg/planner"
	"github.com/samber/lo"
)

type courseOutput struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Section  string   `json:"section"`
	Credits  int      `json:"credits"`
	Category string   `json:"category"`
	Slots    []string `json:"slots"`
}

type planOutput struct {
	Outcome      string            `json:"outcome"`
	Courses      []courseOutput    `json:"courses,omitempty"`
	TotalCredits int               `json:"total_credits"`
	Error        string            `json:"error,omitempty"`
	Culprits     []string          `json:"culprits,omitempty"`
	Excluded     map[string]string `json:"excluded,omitempty"`
}

func newPlanOutput(schedule *planner.Schedule, err error) planOutput {
	output := planOutput{Outcome: planner.OutcomeOf(err).String()}
	if schedule != nil {
		output.TotalCredits = schedule.TotalCredits
		output.Courses = lo.Map(schedule.Courses, func(course planner.ScheduledCourse, _ int) courseOutput {
			return courseOutput{
				Code:     string(course.Code),
				Name:     course.Name,
				Section:  course.SectionID,
				Credits:  course.Credits,
				Category: course.Category.String(),
				Slots:    lo.Map(course.Slots, func(slot catalog.Slot, _ int) string { return slot.String() }),
			}
		})
	}
	if err != nil {
		output.Error = err.Error()
	}

	var infeasible *planner.InfeasibleError
	if errors.As(err, &infeasible) {
		output.Culprits = infeasible.Culprits
	}
	var eligibility *planner.EligibilityError
	if errors.As(err, &eligibility) {
		output.Excluded = make(map[string]string, len(eligibility.Excluded))
		for code, reason := range eligibility.Excluded {
			output.Excluded[string(code)] = reason.String()
		}
	}
	return output
}

func writeJSON(out io.Writer, schedule *planner.Schedule, err error) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newPlanOutput(schedule, err))
}

func writeText(out io.Writer, schedule *planner.Schedule, err error) error {
	var builder strings.Builder
	if schedule == nil {
		fmt.Fprintf(&builder, "No schedule: %v\n", err)
		_, err := io.WriteString(out, builder.String())
		return err
	}

	builder.WriteString("--- Your Schedule ---\n")
	for _, course := range schedule.Courses {
		fmt.Fprintf(&builder, "\n* %v - %v (%d credits)\n", course.Code, course.Name, course.Credits)
		fmt.Fprintf(&builder, "  Section: %v\n", course.SectionID)
		fmt.Fprintf(&builder, "  Type: %v\n", course.Category)
	}

	byDay := schedule.ByDay()
	builder.WriteString("\n--- Weekly View ---\n")
	for day := catalog.Monday; day.Valid(); day++ {
		meetings, ok := byDay[day]
		if !ok {
			continue
		}
		entries := lo.Map(meetings, func(meeting planner.Meeting, _ int) string {
			return fmt.Sprintf("P%d: %v", meeting.Period, meeting.Code)
		})
		fmt.Fprintf(&builder, "%-9v %v\n", day.String()+":", strings.Join(entries, ", "))
	}

	fmt.Fprintf(&builder, "\nTotal Courses: %d\n", len(schedule.Courses))
	fmt.Fprintf(&builder, "Total Credits: %d\n", schedule.TotalCredits)
	_, err = io.WriteString(out, builder.String())
	return err
}

func writeStudent(out io.Writer, id string, student catalog.StudentState) {
	fmt.Fprintf(out, "Student: %v\n", id)
	fmt.Fprintf(out, "Completed: %v\n", strings.Join(lo.Map(student.CompletedCodes(), func(code catalog.CourseCode, _ int) string { return string(code) }), ", "))
	fmt.Fprintf(out, "Blacklist: %v\n", strings.Join(lo.Map(student.BlacklistedSlots(), func(slot catalog.Slot, _ int) string { return slot.String() }), ", "))
}
