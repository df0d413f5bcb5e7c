package planner

import (
	"cmp"
	"slices"

	"github.com/limaJavier/courseplan/pkg/catalog"
)

type ScheduledCourse struct {
	Code      catalog.CourseCode
	Name      string
	SectionID string
	Credits   int
	Category  catalog.Category
	Slots     []catalog.Slot
}

// Schedule is produced fresh by every successful plan and never mutated afterwards. Courses are ordered by code
type Schedule struct {
	Courses      []ScheduledCourse
	TotalCredits int
}

type Meeting struct {
	Period    int
	Code      catalog.CourseCode
	Name      string
	SectionID string
}

// ByDay lays the schedule out as a weekly grid: each day maps to its meetings ordered by period
func (schedule Schedule) ByDay() map[catalog.Day][]Meeting {
	days := make(map[catalog.Day][]Meeting)
	for _, course := range schedule.Courses {
		for _, slot := range course.Slots {
			days[slot.Day] = append(days[slot.Day], Meeting{
				Period:    slot.Period,
				Code:      course.Code,
				Name:      course.Name,
				SectionID: course.SectionID,
			})
		}
	}

	for day := range days {
		slices.SortFunc(days[day], func(a, b Meeting) int {
			if c := cmp.Compare(a.Period, b.Period); c != 0 {
				return c
			}
			return cmp.Compare(a.Code, b.Code)
		})
	}
	return days
}

func (schedule Schedule) Codes() []catalog.CourseCode {
	codes := make([]catalog.CourseCode, 0, len(schedule.Courses))
	for _, course := range schedule.Courses {
		codes = append(codes, course.Code)
	}
	return codes
}
