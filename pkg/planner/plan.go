package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/limaJavier/courseplan/pkg/sat"
	"github.com/samber/lo"
)

type Options struct {
	Solver   sat.Solver    // Defaults to the backtracking solver
	MaxSteps int           // Step budget of the default solver; zero means unlimited
	Timeout  time.Duration // Deadline for the whole plan, diagnosis included; zero means none
}

func (options Options) solver() sat.Solver {
	if options.Solver != nil {
		return options.Solver
	}
	return sat.NewBacktrackingSolver(sat.Options{MaxSteps: options.MaxSteps})
}

// Plan assembles a schedule meeting the targets, or reports exactly one of: ErrEligibilityEmpty (as *EligibilityError),
// ErrInfeasible (as *InfeasibleError) or ErrUndetermined. Malformed input wraps catalog.ErrMalformedInput
func Plan(ctx context.Context, courses catalog.Catalog, student catalog.StudentState, targets catalog.Targets, options Options) (*Schedule, error) {
	//** Validate input
	if err := courses.Validate(); err != nil {
		return nil, err
	} else if err := targets.Validate(); err != nil {
		return nil, err
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	//** Filter
	eligible := Filter(courses, student)
	if eligible.Empty() {
		return nil, &EligibilityError{Excluded: eligible.Excluded}
	}

	//** Build and solve
	problem, indexer := BuildModel(eligible, targets, student.Completed)
	solver := options.solver()

	solution, err := solver.Solve(ctx, problem)
	if err != nil {
		return nil, fmt.Errorf("cannot solve model: %w", err)
	}

	switch solution.Status {
	case sat.Satisfiable:
		schedule := Assemble(solution.Values, indexer, eligible)
		return &schedule, nil
	case sat.Unsatisfiable:
		return nil, diagnose(ctx, solver, problem, eligible, targets, student.Completed)
	}
	return nil, ErrUndetermined
}

// Relaxable constraint groups, in the order they are tried
func relaxable() []string {
	return append(lo.Map(catalog.Categories, func(category catalog.Category, _ int) string { return QuotaLabel(category) }), LabelCredits)
}

// Explains an infeasible model: static quota shortfalls first, then every relaxable group whose removal alone makes
// the model satisfiable. Relaxed solves that end undetermined are not reported
func diagnose(ctx context.Context, solver sat.Solver, problem sat.Problem, eligible Eligible, targets catalog.Targets, completed map[catalog.CourseCode]bool) *InfeasibleError {
	infeasible := &InfeasibleError{
		Culprits:   make([]string, 0),
		Shortfalls: make([]QuotaShortfall, 0),
	}

	for _, category := range catalog.Categories {
		available := lo.CountBy(eligible.Courses, func(course catalog.Course) bool {
			return course.Category == category && selectable(course, eligible, completed)
		})
		if target := targets.Count(category); available < target {
			infeasible.Shortfalls = append(infeasible.Shortfalls, QuotaShortfall{Category: category, Target: target, Available: available})
		}
	}

	for _, label := range relaxable() {
		if ctx.Err() != nil {
			break
		}
		solution, err := solver.Solve(ctx, problem.Without(label))
		if err == nil && solution.Status == sat.Satisfiable {
			infeasible.Culprits = append(infeasible.Culprits, label)
		}
	}

	return infeasible
}
