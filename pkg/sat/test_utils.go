package sat

import (
	"fmt"
	"math/rand/v2"
)

// GenerateProblem builds a random problem mixing every constraint kind. Sums get small weights and bounds drawn around
// half of their total weight, so both satisfiable and unsatisfiable instances come out
func GenerateProblem(variables, constraints int) Problem {
	problem := Problem{
		Variables:   variables,
		Constraints: make([]Constraint, 0, constraints),
	}

	randomVariable := func() int { return 1 + rand.IntN(variables) }
	randomVars := func(count int) []int {
		vars := make([]int, 0, count)
		for _, variable := range rand.Perm(variables)[:min(count, variables)] {
			vars = append(vars, variable+1)
		}
		return vars
	}

	for i := range constraints {
		label := fmt.Sprintf("c%d", i)
		switch rand.IntN(10) {
		case 0:
			problem.Constraints = append(problem.Constraints, NewFixed(label, randomVariable(), rand.Float32() < 0.5))
		case 1, 2:
			vars := randomVars(2)
			if len(vars) < 2 {
				continue
			}
			problem.Constraints = append(problem.Constraints, NewImplication(label, vars[0], vars[1]))
		case 3, 4:
			vars := randomVars(2 + rand.IntN(3))
			problem.Constraints = append(problem.Constraints, NewLinkage(label, vars[0], vars[1:]))
		default:
			vars := randomVars(1 + rand.IntN(5))
			weights := make([]int, len(vars))
			total := 0
			for j := range weights {
				weights[j] = 1 + rand.IntN(4)
				total += weights[j]
			}
			low := rand.IntN(total/2 + 1)
			high := low + rand.IntN(total-low+1)
			problem.Constraints = append(problem.Constraints, NewSum(label, vars, weights, low, high))
		}
	}

	return problem
}

// BruteForce enumerates every assignment; only meant for problems with a handful of variables
func BruteForce(problem Problem) Status {
	values := make([]bool, problem.Variables+1)
	for mask := 0; mask < 1<<problem.Variables; mask++ {
		for variable := 1; variable <= problem.Variables; variable++ {
			values[variable] = mask&(1<<(variable-1)) != 0
		}
		if problem.Satisfies(values) {
			return Satisfiable
		}
	}
	return Unsatisfiable
}

// AssertSolution checks that a solution is consistent with the problem it claims to solve
func AssertSolution(problem Problem, solution Solution) bool {
	switch solution.Status {
	case Satisfiable:
		return problem.Satisfies(solution.Values)
	case Unsatisfiable, Undetermined:
		return len(solution.Values) == 0
	}
	return false
}
