package sat

import "context"

type Solver interface {
	// Returns Satisfiable with a full assignment, Unsatisfiable when no assignment exists, or Undetermined when the
	// context ended or the step budget ran out before either could be established (these are valid outputs where error shall be nil)
	Solve(ctx context.Context, problem Problem) (Solution, error)
}

type Options struct {
	MaxSteps int // Decisions plus backtracks allowed before giving up; zero means unlimited
}
