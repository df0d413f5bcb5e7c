package sat

import (
	"context"
	"fmt"
)

const contextCheckInterval = 128

type backtrackingSolver struct {
	options Options
}

// NewBacktrackingSolver returns a complete and deterministic solver: bounds propagation per constraint kind run to a
// fixed point, and chronological backtracking that branches on the lowest unassigned variable, trying true first
func NewBacktrackingSolver(options Options) Solver {
	return &backtrackingSolver{options: options}
}

type decision struct {
	variable int
	trail    int // Trail length before the decision was made
	flipped  bool
}

type search struct {
	problem     Problem
	values      []int8 // 0 = unassigned, 1 = true, -1 = false
	trail       []int
	occurrences [][]int // Variable -> constraints mentioning it
	queue       []int
	queued      []bool
	steps       int
	maxSteps    int
}

func (solver *backtrackingSolver) Solve(ctx context.Context, problem Problem) (Solution, error) {
	if err := problem.Validate(); err != nil {
		return Solution{}, err
	}

	s := newSearch(problem, solver.options.MaxSteps)

	//** Root propagation
	for i := range problem.Constraints {
		s.enqueue(i)
	}
	if !s.propagate() {
		return Solution{Status: Unsatisfiable}, nil
	}

	//** Search
	stack := make([]decision, 0, problem.Variables)
	for {
		if s.exhausted(ctx) {
			return Solution{Status: Undetermined, Steps: s.steps}, nil
		}

		from := 1
		if len(stack) > 0 {
			from = stack[len(stack)-1].variable + 1
		}
		variable := s.nextUnassigned(from)
		if variable == 0 {
			values := s.assignment()
			// Never report a model that violates the problem
			if !problem.Satisfies(values) {
				return Solution{}, fmt.Errorf("search produced an assignment that violates the problem")
			}
			return Solution{Status: Satisfiable, Values: values, Steps: s.steps}, nil
		}

		s.steps++
		stack = append(stack, decision{variable: variable, trail: len(s.trail)})
		ok := s.assign(variable, true) && s.propagate()

		for !ok {
			// Drop decisions whose both branches failed
			for len(stack) > 0 && stack[len(stack)-1].flipped {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				return Solution{Status: Unsatisfiable, Steps: s.steps}, nil
			}
			if s.exhausted(ctx) {
				return Solution{Status: Undetermined, Steps: s.steps}, nil
			}

			s.steps++
			top := &stack[len(stack)-1]
			s.undo(top.trail)
			top.flipped = true
			ok = s.assign(top.variable, false) && s.propagate()
		}
	}
}

func newSearch(problem Problem, maxSteps int) *search {
	s := &search{
		problem:     problem,
		values:      make([]int8, problem.Variables+1),
		trail:       make([]int, 0, problem.Variables),
		occurrences: make([][]int, problem.Variables+1),
		queue:       make([]int, 0, len(problem.Constraints)),
		queued:      make([]bool, len(problem.Constraints)),
		maxSteps:    maxSteps,
	}
	for i, constraint := range problem.Constraints {
		for _, variable := range constraint.Vars {
			s.occurrences[variable] = append(s.occurrences[variable], i)
		}
	}
	return s
}

func (s *search) exhausted(ctx context.Context) bool {
	if s.maxSteps > 0 && s.steps >= s.maxSteps {
		return true
	}
	return s.steps%contextCheckInterval == 0 && ctx.Err() != nil
}

func (s *search) nextUnassigned(from int) int {
	for variable := from; variable <= s.problem.Variables; variable++ {
		if s.values[variable] == 0 {
			return variable
		}
	}
	return 0
}

func (s *search) assignment() []bool {
	values := make([]bool, len(s.values))
	for variable := 1; variable < len(s.values); variable++ {
		values[variable] = s.values[variable] == 1
	}
	return values
}

// Assigns the variable and schedules its constraints; fails if it already holds the opposite value
func (s *search) assign(variable int, value bool) bool {
	sign := int8(-1)
	if value {
		sign = 1
	}
	if current := s.values[variable]; current != 0 {
		return current == sign
	}

	s.values[variable] = sign
	s.trail = append(s.trail, variable)
	for _, constraint := range s.occurrences[variable] {
		s.enqueue(constraint)
	}
	return true
}

func (s *search) undo(trail int) {
	for _, variable := range s.trail[trail:] {
		s.values[variable] = 0
	}
	s.trail = s.trail[:trail]
}

func (s *search) enqueue(constraint int) {
	if !s.queued[constraint] {
		s.queued[constraint] = true
		s.queue = append(s.queue, constraint)
	}
}

// Runs the queued constraints to a fixed point; on conflict the queue is discarded and false is returned
func (s *search) propagate() bool {
	for head := 0; head < len(s.queue); head++ {
		constraint := s.queue[head]
		s.queued[constraint] = false

		if !s.propagateConstraint(s.problem.Constraints[constraint]) {
			for _, pending := range s.queue[head+1:] {
				s.queued[pending] = false
			}
			s.queue = s.queue[:0]
			return false
		}
	}
	s.queue = s.queue[:0]
	return true
}

func (s *search) propagateConstraint(constraint Constraint) bool {
	switch constraint.Kind {
	case Linkage:
		return s.propagateLinkage(constraint)
	case Sum:
		return s.propagateSum(constraint)
	case Implication:
		return s.propagateImplication(constraint)
	case Fixed:
		return s.assign(constraint.Vars[0], constraint.Value)
	}
	return false
}

func (s *search) propagateLinkage(constraint Constraint) bool {
	head, body := constraint.Vars[0], constraint.Vars[1:]

	trues, frees, lastFree := 0, 0, 0
	for _, variable := range body {
		switch s.values[variable] {
		case 1:
			trues++
		case 0:
			frees++
			lastFree = variable
		}
	}

	switch {
	case trues > 1:
		return false
	case trues == 1:
		// The head is selected and the remaining body is excluded
		return s.assign(head, true) && s.assignFree(body, false)
	case frees == 0:
		return s.assign(head, false)
	case s.values[head] == -1:
		return s.assignFree(body, false)
	case s.values[head] == 1 && frees == 1:
		return s.assign(lastFree, true)
	}
	return true
}

func (s *search) propagateSum(constraint Constraint) bool {
	trueWeight, freeWeight := 0, 0
	for i, variable := range constraint.Vars {
		switch s.values[variable] {
		case 1:
			trueWeight += constraint.Weight(i)
		case 0:
			freeWeight += constraint.Weight(i)
		}
	}

	if trueWeight > constraint.Max || trueWeight+freeWeight < constraint.Min {
		return false
	}

	// Totals are not refreshed inside the loop: forced values only make both conditions stricter, so each deduction stays sound
	for i, variable := range constraint.Vars {
		if s.values[variable] != 0 {
			continue
		}
		weight := constraint.Weight(i)
		if trueWeight+weight > constraint.Max {
			if !s.assign(variable, false) {
				return false
			}
		} else if trueWeight+freeWeight-weight < constraint.Min {
			if !s.assign(variable, true) {
				return false
			}
		}
	}
	return true
}

func (s *search) propagateImplication(constraint Constraint) bool {
	from, to := constraint.Vars[0], constraint.Vars[1]
	switch {
	case s.values[from] == 1:
		return s.assign(to, true)
	case s.values[to] == -1:
		return s.assign(from, false)
	}
	return true
}

func (s *search) assignFree(vars []int, value bool) bool {
	for _, variable := range vars {
		if s.values[variable] == 0 && !s.assign(variable, value) {
			return false
		}
	}
	return true
}
