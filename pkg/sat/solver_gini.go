package sat

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

const giniPollInterval = 5 * time.Millisecond

type giniSolver struct{}

// NewGiniSolver returns a CDCL-based solver. Sums are encoded through cardinality networks where a variable of
// weight w is fed w times. The assignment it finds may differ from the backtracking solver's one
func NewGiniSolver() Solver {
	return &giniSolver{}
}

func (solver *giniSolver) Solve(ctx context.Context, problem Problem) (Solution, error) {
	if err := problem.Validate(); err != nil {
		return Solution{}, err
	}

	//** Encode problem as a circuit
	circuit := logic.NewC()
	lits := make([]z.Lit, problem.Variables+1)
	for variable := 1; variable <= problem.Variables; variable++ {
		lits[variable] = circuit.Lit()
	}

	roots := make([]z.Lit, 0, len(problem.Constraints))
	for _, constraint := range problem.Constraints {
		roots = append(roots, encode(circuit, lits, constraint))
	}
	formula := circuit.Ands(roots...)

	g := gini.New()
	// Register every variable, including those no constraint mentions
	for variable := 1; variable <= problem.Variables; variable++ {
		g.Add(lits[variable])
		g.Add(lits[variable].Not())
		g.Add(z.LitNull)
	}
	circuit.ToCnf(g)
	g.Assume(formula)

	//** Solve honoring the context
	solve := g.GoSolve()
	ticker := time.NewTicker(giniPollInterval)
	defer ticker.Stop()

	result := 0
poll:
	for {
		if value, done := solve.Test(); done {
			result = value
			break
		}
		select {
		case <-ctx.Done():
			result = solve.Stop()
			break poll
		case <-ticker.C:
		}
	}

	switch result {
	case 1:
		values := make([]bool, problem.Variables+1)
		for variable := 1; variable <= problem.Variables; variable++ {
			values[variable] = g.Value(lits[variable])
		}
		return Solution{Status: Satisfiable, Values: values}, nil
	case -1:
		return Solution{Status: Unsatisfiable}, nil
	}
	return Solution{Status: Undetermined}, nil
}

func encode(circuit *logic.C, lits []z.Lit, constraint Constraint) z.Lit {
	switch constraint.Kind {
	case Linkage:
		head := lits[constraint.Vars[0]]
		body := make([]z.Lit, 0, len(constraint.Vars)-1)
		for _, variable := range constraint.Vars[1:] {
			body = append(body, lits[variable])
		}
		if len(body) == 0 {
			return head.Not()
		}
		selected := circuit.Ors(body...)
		equivalent := circuit.And(circuit.Implies(head, selected), circuit.Implies(selected, head))
		return circuit.And(equivalent, atMost(circuit, body, 1))
	case Sum:
		weighted := make([]z.Lit, 0, len(constraint.Vars))
		for i, variable := range constraint.Vars {
			for range constraint.Weight(i) {
				weighted = append(weighted, lits[variable])
			}
		}
		return circuit.And(atLeast(circuit, weighted, constraint.Min), atMost(circuit, weighted, constraint.Max))
	case Implication:
		return circuit.Implies(lits[constraint.Vars[0]], lits[constraint.Vars[1]])
	case Fixed:
		if constraint.Value {
			return lits[constraint.Vars[0]]
		}
		return lits[constraint.Vars[0]].Not()
	}
	return circuit.F
}

func atMost(circuit *logic.C, ms []z.Lit, n int) z.Lit {
	switch {
	case n < 0:
		return circuit.F
	case n >= len(ms):
		return circuit.T
	}
	return circuit.CardSort(ms).Leq(n)
}

func atLeast(circuit *logic.C, ms []z.Lit, n int) z.Lit {
	switch {
	case n <= 0:
		return circuit.T
	case n > len(ms):
		return circuit.F
	}
	return circuit.CardSort(ms).Geq(n)
}
