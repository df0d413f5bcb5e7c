package sat

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type Kind int

const (
	// Vars[0] is the head and Vars[1:] the body: the number of true body variables equals 1 if the head is true, 0 otherwise
	Linkage Kind = iota
	// Min <= Σ Weights[i]*Vars[i] <= Max, with positive weights (nil weights stand for all ones)
	Sum
	// Vars[0] -> Vars[1]
	Implication
	// Vars[0] == Value
	Fixed
)

func (kind Kind) String() string {
	switch kind {
	case Linkage:
		return "linkage"
	case Sum:
		return "sum"
	case Implication:
		return "implication"
	case Fixed:
		return "fixed"
	}
	return fmt.Sprintf("Kind(%d)", int(kind))
}

// Variables are identified by positive integers in [1, Problem.Variables]
type Constraint struct {
	Kind    Kind
	Label   string
	Vars    []int
	Weights []int
	Min     int
	Max     int
	Value   bool
}

func (constraint Constraint) Weight(i int) int {
	if constraint.Weights == nil {
		return 1
	}
	return constraint.Weights[i]
}

func NewLinkage(label string, head int, body []int) Constraint {
	return Constraint{Kind: Linkage, Label: label, Vars: append([]int{head}, body...)}
}

func NewSum(label string, vars []int, weights []int, min, max int) Constraint {
	return Constraint{Kind: Sum, Label: label, Vars: vars, Weights: weights, Min: min, Max: max}
}

func NewExactly(label string, vars []int, count int) Constraint {
	return NewSum(label, vars, nil, count, count)
}

func NewAtMostOne(label string, vars []int) Constraint {
	return NewSum(label, vars, nil, 0, 1)
}

func NewImplication(label string, from, to int) Constraint {
	return Constraint{Kind: Implication, Label: label, Vars: []int{from, to}}
}

func NewFixed(label string, variable int, value bool) Constraint {
	return Constraint{Kind: Fixed, Label: label, Vars: []int{variable}, Value: value}
}

type Problem struct {
	Variables   int
	Constraints []Constraint
}

func (problem Problem) Validate() error {
	for i, constraint := range problem.Constraints {
		for _, variable := range constraint.Vars {
			if variable < 1 || variable > problem.Variables {
				return fmt.Errorf("constraint %d (%v): variable %d is out of range [1, %d]", i, constraint.Label, variable, problem.Variables)
			}
		}

		switch constraint.Kind {
		case Linkage:
			if len(constraint.Vars) == 0 {
				return fmt.Errorf("constraint %d (%v): linkage without head", i, constraint.Label)
			}
		case Sum:
			if constraint.Weights != nil && len(constraint.Weights) != len(constraint.Vars) {
				return fmt.Errorf("constraint %d (%v): %d weights for %d variables", i, constraint.Label, len(constraint.Weights), len(constraint.Vars))
			} else if lo.SomeBy(constraint.Weights, func(weight int) bool { return weight <= 0 }) {
				return fmt.Errorf("constraint %d (%v): weights must be positive", i, constraint.Label)
			}
		case Implication:
			if len(constraint.Vars) != 2 {
				return fmt.Errorf("constraint %d (%v): implication needs exactly two variables", i, constraint.Label)
			}
		case Fixed:
			if len(constraint.Vars) != 1 {
				return fmt.Errorf("constraint %d (%v): fixed needs exactly one variable", i, constraint.Label)
			}
		default:
			return fmt.Errorf("constraint %d (%v): unknown kind %v", i, constraint.Label, constraint.Kind)
		}
	}
	return nil
}

// Without returns a copy of the problem lacking every constraint whose label is listed
func (problem Problem) Without(labels ...string) Problem {
	excluded := lo.SliceToMap(labels, func(label string) (string, bool) { return label, true })
	return Problem{
		Variables: problem.Variables,
		Constraints: lo.Filter(problem.Constraints, func(constraint Constraint, _ int) bool {
			return !excluded[constraint.Label]
		}),
	}
}

// Checks whether values (indexed by variable, index 0 unused) satisfy every constraint
func (problem Problem) Satisfies(values []bool) bool {
	if len(values) != problem.Variables+1 {
		return false
	}
	return lo.EveryBy(problem.Constraints, func(constraint Constraint) bool { return constraint.SatisfiedBy(values) })
}

func (constraint Constraint) SatisfiedBy(values []bool) bool {
	switch constraint.Kind {
	case Linkage:
		body := lo.CountBy(constraint.Vars[1:], func(variable int) bool { return values[variable] })
		if values[constraint.Vars[0]] {
			return body == 1
		}
		return body == 0
	case Sum:
		total := 0
		for i, variable := range constraint.Vars {
			if values[variable] {
				total += constraint.Weight(i)
			}
		}
		return constraint.Min <= total && total <= constraint.Max
	case Implication:
		return !values[constraint.Vars[0]] || values[constraint.Vars[1]]
	case Fixed:
		return values[constraint.Vars[0]] == constraint.Value
	}
	return false
}

// ToOPB renders the problem in the OPB pseudo-boolean format, the PB counterpart of DIMACS-CNF
func (problem Problem) ToOPB() string {
	var builder strings.Builder
	lines := make([]string, 0, len(problem.Constraints))
	for _, constraint := range problem.Constraints {
		lines = append(lines, constraint.opbLines()...)
	}

	count := lo.CountBy(lines, func(line string) bool { return !strings.HasPrefix(line, "*") })
	fmt.Fprintf(&builder, "* #variable= %d #constraint= %d\n", problem.Variables, count)
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteString("\n")
	}
	return builder.String()
}

func (constraint Constraint) opbLines() []string {
	term := func(weight, variable int) string { return fmt.Sprintf("%+d x%d", weight, variable) }
	terms := func(sign int) []string {
		return lo.Map(constraint.Vars, func(variable int, i int) string { return term(sign*constraint.Weight(i), variable) })
	}
	comment := fmt.Sprintf("* %v %v", constraint.Kind, constraint.Label)

	switch constraint.Kind {
	case Linkage:
		body := lo.Map(constraint.Vars[1:], func(variable int, _ int) string { return term(1, variable) })
		return []string{comment, strings.Join(append(body, term(-1, constraint.Vars[0])), " ") + " = 0 ;"}
	case Sum:
		lines := []string{comment}
		total := 0
		for i := range constraint.Vars {
			total += constraint.Weight(i)
		}
		if constraint.Min > 0 {
			lines = append(lines, fmt.Sprintf("%v >= %d ;", strings.Join(terms(1), " "), constraint.Min))
		}
		if constraint.Max < total {
			lines = append(lines, fmt.Sprintf("%v >= %d ;", strings.Join(terms(-1), " "), -constraint.Max))
		}
		return lines
	case Implication:
		return []string{comment, fmt.Sprintf("%v %v >= 0 ;", term(-1, constraint.Vars[0]), term(1, constraint.Vars[1]))}
	case Fixed:
		return []string{comment, fmt.Sprintf("%v = %d ;", term(1, constraint.Vars[0]), lo.Ternary(constraint.Value, 1, 0))}
	}
	return nil
}

type Status int

const (
	Undetermined Status = iota
	Satisfiable
	Unsatisfiable
)

func (status Status) String() string {
	switch status {
	case Satisfiable:
		return "satisfiable"
	case Unsatisfiable:
		return "unsatisfiable"
	}
	return "undetermined"
}

// Solution carries the search status and, when satisfiable, the value of every variable (index 0 unused)
type Solution struct {
	Status Status
	Values []bool
	Steps  int
}

// Returns the true variables in ascending order
func (solution Solution) Positives() []int {
	positives := make([]int, 0)
	for variable := 1; variable < len(solution.Values); variable++ {
		if solution.Values[variable] {
			positives = append(positives, variable)
		}
	}
	return positives
}
