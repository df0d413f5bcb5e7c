package planner

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/limaJavier/courseplan/pkg/sat"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func section(id string, course catalog.CourseCode, slots ...catalog.Slot) catalog.Section {
	return catalog.Section{ID: id, Course: course, Slots: catalog.SortSlots(slots)}
}

func demoCatalog() catalog.Catalog {
	return catalog.Catalog{
		"COP3530": {
			Code:     "COP3530",
			Name:     "Data Structures",
			Credits:  3,
			Category: catalog.Major,
			Prereqs:  catalog.NewRequirementExpr([]catalog.CourseCode{"COP3503", "COT3100"}),
			Sections: []catalog.Section{
				section("11001", "COP3530", catalog.Slot{Day: catalog.Monday, Period: 2}, catalog.Slot{Day: catalog.Wednesday, Period: 2}),
				section("11002", "COP3530", catalog.Slot{Day: catalog.Tuesday, Period: 4}, catalog.Slot{Day: catalog.Thursday, Period: 4}),
			},
		},
		"ART2000": {
			Code:     "ART2000",
			Name:     "Art Appreciation",
			Credits:  3,
			Category: catalog.Elective,
			Sections: []catalog.Section{
				section("12352", "ART2000", catalog.Slot{Day: catalog.Friday, Period: 1}),
				section("12353", "ART2000", catalog.Slot{Day: catalog.Monday, Period: 6}, catalog.Slot{Day: catalog.Wednesday, Period: 6}),
			},
		},
	}
}

var demoTargets = catalog.Targets{MajorCount: 1, ElectiveCount: 1, MinCredits: 6, MaxCredits: 6}

func TestPlanPrerequisitesMet(t *testing.T) {
	g := NewWithT(t)

	//** Arrange
	student := catalog.NewStudentState(
		[]catalog.CourseCode{"COP3503", "COT3100"},
		[]catalog.Slot{{Day: catalog.Friday, Period: 1}},
	)

	//** Act
	schedule, err := Plan(context.Background(), demoCatalog(), student, demoTargets, Options{})

	//** Assert
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(schedule.Codes()).To(Equal([]catalog.CourseCode{"ART2000", "COP3530"}))
	g.Expect(schedule.Courses[0].SectionID).To(Equal("12353"))
	g.Expect(schedule.Courses[1].SectionID).To(BeElementOf("11001", "11002"))
	g.Expect(schedule.TotalCredits).To(Equal(6))
	g.Expect(Verify(*schedule, Filter(demoCatalog(), student), demoTargets, student.Completed)).To(Succeed())
}

func TestPlanPrerequisitesUnmet(t *testing.T) {
	g := NewWithT(t)

	//** Arrange
	student := catalog.NewStudentState(nil, []catalog.Slot{{Day: catalog.Friday, Period: 1}})

	//** Act
	schedule, err := Plan(context.Background(), demoCatalog(), student, demoTargets, Options{})

	//** Assert
	g.Expect(schedule).To(BeNil())
	g.Expect(err).To(MatchError(ErrInfeasible))
	g.Expect(OutcomeOf(err)).To(Equal(Infeasible))

	var infeasible *InfeasibleError
	g.Expect(err).To(BeAssignableToTypeOf(infeasible))
	infeasible = err.(*InfeasibleError)
	g.Expect(infeasible.Shortfalls).To(ConsistOf(QuotaShortfall{Category: catalog.Major, Target: 1, Available: 0}))
	g.Expect(infeasible.Culprits).To(BeEmpty())
}

func TestPlanEligibilityEmpty(t *testing.T) {
	//** Arrange
	student := catalog.NewStudentState(nil, []catalog.Slot{{Day: catalog.Friday, Period: 1}, {Day: catalog.Wednesday, Period: 6}})

	//** Act
	_, err := Plan(context.Background(), demoCatalog(), student, demoTargets, Options{})

	//** Assert
	require.ErrorIs(t, err, ErrEligibilityEmpty)
	assert.Equal(t, EligibilityEmpty, OutcomeOf(err))

	var eligibility *EligibilityError
	require.ErrorAs(t, err, &eligibility)
	assert.Equal(t, map[catalog.CourseCode]Reason{
		"ART2000": AllSectionsBlacklisted,
		"COP3530": PrerequisitesUnmet,
	}, eligibility.Excluded)
}

func TestPlanMalformedInput(t *testing.T) {
	student := catalog.NewStudentState(nil, nil)

	_, err := Plan(context.Background(), demoCatalog(), student, catalog.Targets{MinCredits: 9, MaxCredits: 6}, Options{})
	assert.ErrorIs(t, err, catalog.ErrMalformedInput)
	assert.Equal(t, Malformed, OutcomeOf(err))

	_, err = Plan(context.Background(), demoCatalog(), student, catalog.Targets{MajorCount: -1}, Options{})
	assert.ErrorIs(t, err, catalog.ErrMalformedInput)

	courses := demoCatalog()
	empty := courses["ART2000"]
	empty.Sections = nil
	courses["ART2000"] = empty
	_, err = Plan(context.Background(), courses, student, demoTargets, Options{})
	assert.ErrorIs(t, err, catalog.ErrMalformedInput)

	courses = demoCatalog()
	unnormalized := courses["COP3530"]
	unnormalized.Coreqs = []catalog.CourseCode{"art 2000"}
	courses["COP3530"] = unnormalized
	_, err = Plan(context.Background(), courses, student, demoTargets, Options{})
	assert.ErrorIs(t, err, catalog.ErrMalformedInput)
}

func TestPlanUndetermined(t *testing.T) {
	//** Arrange
	student := catalog.NewStudentState([]catalog.CourseCode{"COP3503", "COT3100"}, nil)

	//** Act
	_, err := Plan(context.Background(), demoCatalog(), student, demoTargets, Options{MaxSteps: 1})

	//** Assert
	assert.ErrorIs(t, err, ErrUndetermined)
	assert.NotErrorIs(t, err, ErrInfeasible)
	assert.Equal(t, Undetermined, OutcomeOf(err))
}

func TestPlanCulprits(t *testing.T) {
	g := NewWithT(t)

	//** Arrange
	courses := catalog.Catalog{
		"COP4600": {Code: "COP4600", Credits: 3, Category: catalog.Major, Sections: []catalog.Section{
			section("20001", "COP4600", catalog.Slot{Day: catalog.Monday, Period: 1}),
		}},
		"CDA3101": {Code: "CDA3101", Credits: 3, Category: catalog.Major, Sections: []catalog.Section{
			section("20002", "CDA3101", catalog.Slot{Day: catalog.Tuesday, Period: 1}),
		}},
	}
	targets := catalog.Targets{MajorCount: 2, MinCredits: 0, MaxCredits: 3}

	//** Act
	_, err := Plan(context.Background(), courses, catalog.NewStudentState(nil, nil), targets, Options{})

	//** Assert
	var infeasible *InfeasibleError
	g.Expect(err).To(MatchError(ErrInfeasible))
	g.Expect(err).To(BeAssignableToTypeOf(infeasible))
	infeasible = err.(*InfeasibleError)
	g.Expect(infeasible.Culprits).To(Equal([]string{"quota:major", "credits"}))
	g.Expect(infeasible.Shortfalls).To(BeEmpty())
	g.Expect(err.Error()).To(ContainSubstring("relax one of: quota:major, credits"))
}

func TestPlanCorequisites(t *testing.T) {
	courses := catalog.Catalog{
		"MAS3114": {Code: "MAS3114", Credits: 3, Category: catalog.Major, Coreqs: []catalog.CourseCode{"MAS3114L"}, Sections: []catalog.Section{
			section("30001", "MAS3114", catalog.Slot{Day: catalog.Monday, Period: 3}),
		}},
		"MAS3114L": {Code: "MAS3114L", Credits: 1, Category: catalog.Elective, Sections: []catalog.Section{
			section("30002", "MAS3114L", catalog.Slot{Day: catalog.Monday, Period: 4}),
		}},
		"STA3032": {Code: "STA3032", Credits: 3, Category: catalog.Major, Coreqs: []catalog.CourseCode{"STA3032L"}, Sections: []catalog.Section{
			section("30003", "STA3032", catalog.Slot{Day: catalog.Tuesday, Period: 3}),
		}},
	}

	t.Run("Eligible corequisite is selected along", func(t *testing.T) {
		g := NewWithT(t)
		targets := catalog.Targets{MajorCount: 1, ElectiveCount: 1, MinCredits: 0, MaxCredits: 10}

		schedule, err := Plan(context.Background(), courses, catalog.NewStudentState(nil, nil), targets, Options{})

		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(schedule.Codes()).To(Equal([]catalog.CourseCode{"MAS3114", "MAS3114L"}))
	})

	t.Run("Corequisite that cannot be taken makes the course unselectable", func(t *testing.T) {
		g := NewWithT(t)
		targets := catalog.Targets{MajorCount: 2, ElectiveCount: 1, MinCredits: 0, MaxCredits: 10}

		_, err := Plan(context.Background(), courses, catalog.NewStudentState(nil, nil), targets, Options{})

		g.Expect(err).To(MatchError(ErrInfeasible))
		g.Expect(err.(*InfeasibleError).Shortfalls).To(ConsistOf(QuotaShortfall{Category: catalog.Major, Target: 2, Available: 1}))
	})

	t.Run("Completed corequisite puts no constraint", func(t *testing.T) {
		g := NewWithT(t)
		targets := catalog.Targets{MajorCount: 2, ElectiveCount: 1, MinCredits: 0, MaxCredits: 10}
		student := catalog.NewStudentState([]catalog.CourseCode{"STA3032L"}, nil)

		schedule, err := Plan(context.Background(), courses, student, targets, Options{})

		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(schedule.Codes()).To(ConsistOf(catalog.CourseCode("MAS3114"), catalog.CourseCode("MAS3114L"), catalog.CourseCode("STA3032")))
		g.Expect(schedule.TotalCredits).To(Equal(7))
	})
}

func TestPlanIsDeterministic(t *testing.T) {
	random := rand.New(rand.NewPCG(7, 11))

	for range 30 {
		//** Arrange
		courses := catalog.GenerateCatalog(random, 10)
		student := catalog.GenerateStudent(random, courses)
		targets := catalog.GenerateTargets(random)

		//** Act
		first, firstErr := Plan(context.Background(), courses, student, targets, Options{})
		second, secondErr := Plan(context.Background(), courses, student, targets, Options{})

		//** Assert
		assert.Equal(t, OutcomeOf(firstErr), OutcomeOf(secondErr))
		assert.Equal(t, first, second)
	}
}

func TestPlanProperties(t *testing.T) {
	random := rand.New(rand.NewPCG(3, 5))
	backends := map[string]sat.Solver{
		"backtracking": sat.NewBacktrackingSolver(sat.Options{}),
		"gini":         sat.NewGiniSolver(),
	}

	for range 60 {
		courses := catalog.GenerateCatalog(random, 8)
		student := catalog.GenerateStudent(random, courses)
		targets := catalog.GenerateTargets(random)
		eligible := Filter(courses, student)

		outcomes := make(map[string]Outcome)
		for name, solver := range backends {
			schedule, err := Plan(context.Background(), courses, student, targets, Options{Solver: solver})
			outcomes[name] = OutcomeOf(err)
			if err != nil {
				continue
			}

			require.NoError(t, Verify(*schedule, eligible, targets, student.Completed), name)

			// Selected sections never share a slot
			seen := make(map[catalog.Slot]bool)
			for _, course := range schedule.Courses {
				for _, slot := range course.Slots {
					assert.False(t, seen[slot], "%v: slot %v used twice", name, slot)
					seen[slot] = true
					assert.False(t, student.Blacklist[slot], "%v: blacklisted slot %v used", name, slot)
				}
			}
		}
		assert.Equal(t, outcomes["backtracking"], outcomes["gini"])
	}
}
