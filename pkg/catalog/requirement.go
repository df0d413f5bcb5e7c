package catalog

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// RequirementGroup holds course codes that must all be completed (AND semantics)
type RequirementGroup []CourseCode

func (group RequirementGroup) satisfiedBy(completed map[CourseCode]bool) bool {
	return lo.EveryBy(group, func(code CourseCode) bool { return completed[code] })
}

// RequirementExpr is a disjunction of requirement groups: it holds when any group is fully completed.
// An expression without groups is trivially satisfied. Values are never mutated after construction.
type RequirementExpr struct {
	groups []RequirementGroup
}

// Builds an expression from copies of the given groups; codes are normalized, sorted and deduplicated
func NewRequirementExpr(groups ...[]CourseCode) RequirementExpr {
	expr := RequirementExpr{groups: make([]RequirementGroup, 0, len(groups))}
	for _, group := range groups {
		normalized := lo.Uniq(lo.Map(group, func(code CourseCode, _ int) CourseCode { return NormalizeCode(string(code)) }))
		slices.Sort(normalized)
		expr.groups = append(expr.groups, normalized)
	}
	return expr
}

// Returns a copy of the expression's groups
func (expr RequirementExpr) Groups() []RequirementGroup {
	return lo.Map(expr.groups, func(group RequirementGroup, _ int) RequirementGroup { return slices.Clone(group) })
}

func (expr RequirementExpr) Empty() bool {
	return len(expr.groups) == 0
}

// Checks whether any group is a subset of completed. An empty group is satisfied by any completed set
func (expr RequirementExpr) SatisfiedBy(completed map[CourseCode]bool) bool {
	if len(expr.groups) == 0 {
		return true
	}
	return lo.SomeBy(expr.groups, func(group RequirementGroup) bool { return group.satisfiedBy(completed) })
}

// Every code mentioned by the expression, sorted
func (expr RequirementExpr) Codes() []CourseCode {
	codes := lo.Uniq(lo.Flatten(lo.Map(expr.groups, func(group RequirementGroup, _ int) []CourseCode { return group })))
	slices.Sort(codes)
	return codes
}

func (expr RequirementExpr) String() string {
	if expr.Empty() {
		return "none"
	}
	return strings.Join(lo.Map(expr.groups, func(group RequirementGroup, _ int) string {
		return "(" + strings.Join(lo.Map(group, func(code CourseCode, _ int) string { return string(code) }), " AND ") + ")"
	}), " OR ")
}
