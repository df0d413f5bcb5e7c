package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/samber/lo"
)

var (
	ErrEligibilityEmpty = errors.New("no eligible courses")
	ErrInfeasible       = errors.New("no schedule satisfies the targets")
	// The search budget ran out before a schedule or a proof of infeasibility was found. It never means "no schedule exists"
	ErrUndetermined = errors.New("schedule search was undetermined")
)

type EligibilityError struct {
	Excluded map[catalog.CourseCode]Reason
}

func (err *EligibilityError) Error() string {
	return fmt.Sprintf("%v (%d courses excluded)", ErrEligibilityEmpty, len(err.Excluded))
}

func (err *EligibilityError) Unwrap() error {
	return ErrEligibilityEmpty
}

// QuotaShortfall reports a category whose target exceeds the courses that could possibly be selected
type QuotaShortfall struct {
	Category  catalog.Category
	Target    int
	Available int
}

// InfeasibleError tells which constraint groups to relax. Culprits are labels whose removal alone makes the model
// satisfiable; the set is not guaranteed to be minimal nor complete
type InfeasibleError struct {
	Culprits   []string
	Shortfalls []QuotaShortfall
}

func (err *InfeasibleError) Error() string {
	details := make([]string, 0, 2)
	if len(err.Shortfalls) > 0 {
		details = append(details, "shortfalls: "+strings.Join(lo.Map(err.Shortfalls, func(shortfall QuotaShortfall, _ int) string {
			return fmt.Sprintf("%v %d/%d", shortfall.Category, shortfall.Available, shortfall.Target)
		}), ", "))
	}
	if len(err.Culprits) > 0 {
		details = append(details, "relax one of: "+strings.Join(err.Culprits, ", "))
	}
	if len(details) == 0 {
		return ErrInfeasible.Error()
	}
	return fmt.Sprintf("%v (%v)", ErrInfeasible, strings.Join(details, "; "))
}

func (err *InfeasibleError) Unwrap() error {
	return ErrInfeasible
}

type Outcome int

const (
	Scheduled Outcome = iota
	EligibilityEmpty
	Infeasible
	Undetermined
	Malformed
	Failed
)

func (outcome Outcome) String() string {
	switch outcome {
	case Scheduled:
		return "scheduled"
	case EligibilityEmpty:
		return "eligibility_empty"
	case Infeasible:
		return "infeasible"
	case Undetermined:
		return "undetermined"
	case Malformed:
		return "malformed"
	}
	return "failed"
}

// Maps the error returned by Plan to its outcome; a nil error means a schedule was produced
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return Scheduled
	case errors.Is(err, ErrEligibilityEmpty):
		return EligibilityEmpty
	case errors.Is(err, ErrInfeasible):
		return Infeasible
	case errors.Is(err, ErrUndetermined):
		return Undetermined
	case errors.Is(err, catalog.ErrMalformedInput):
		return Malformed
	}
	return Failed
}
