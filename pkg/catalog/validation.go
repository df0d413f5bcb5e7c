package catalog

import (
	"errors"
	"fmt"
	"slices"
)

// ErrMalformedInput marks caller or integration bugs (not runtime conditions); every validation failure wraps it
var ErrMalformedInput = errors.New("malformed input")

type ValidationError struct {
	Field  string
	Reason string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("%v: %v: %v", ErrMalformedInput, err.Field, err.Reason)
}

func (err *ValidationError) Unwrap() error {
	return ErrMalformedInput
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the catalog's structural invariants. Courses without sections are rejected here rather than filtered out
func (catalog Catalog) Validate() error {
	owners := make(map[string]CourseCode)
	for _, code := range catalog.Codes() {
		course := catalog[code]
		field := fmt.Sprintf("course %v", code)

		if code == "" || course.Code != code {
			return invalid(field, "code %q does not match its catalog key", course.Code)
		} else if NormalizeCode(string(code)) != code {
			return invalid(field, "code is not normalized")
		} else if course.Credits <= 0 {
			return invalid(field, "credits must be positive: %d", course.Credits)
		} else if course.Category < Major || course.Category > Elective {
			return invalid(field, "unknown category %v", course.Category)
		} else if len(course.Sections) == 0 {
			return invalid(field, "course has no sections")
		}

		for i, coreq := range course.Coreqs {
			if NormalizeCode(string(coreq)) != coreq {
				return invalid(field, "corequisite %q is not normalized", coreq)
			} else if i > 0 && course.Coreqs[i-1] >= coreq {
				return invalid(field, "corequisites must be sorted and without duplicates")
			}
		}

		for _, section := range course.Sections {
			if section.ID == "" {
				return invalid(field, "section with empty id")
			} else if section.Course != code {
				return invalid(field, "section %v belongs to %v", section.ID, section.Course)
			} else if owner, ok := owners[section.ID]; ok {
				return invalid(field, "section id %v is already used by %v", section.ID, owner)
			}
			owners[section.ID] = code

			for _, slot := range section.Slots {
				if !slot.Day.Valid() || slot.Period < 0 {
					return invalid(field, "section %v has an invalid slot %v", section.ID, slot)
				}
			}
			if !slices.Equal(section.Slots, SortSlots(section.Slots)) {
				return invalid(field, "section %v slots must be sorted and without duplicates", section.ID)
			}
		}
	}
	return nil
}

func (targets Targets) Validate() error {
	switch {
	case targets.MajorCount < 0:
		return invalid("targets.majorCount", "must be non-negative: %d", targets.MajorCount)
	case targets.MinorCount < 0:
		return invalid("targets.minorCount", "must be non-negative: %d", targets.MinorCount)
	case targets.ElectiveCount < 0:
		return invalid("targets.electiveCount", "must be non-negative: %d", targets.ElectiveCount)
	case targets.MinCredits < 0:
		return invalid("targets.minCredits", "must be non-negative: %d", targets.MinCredits)
	case targets.MaxCredits < 0:
		return invalid("targets.maxCredits", "must be non-negative: %d", targets.MaxCredits)
	case targets.MinCredits > targets.MaxCredits:
		return invalid("targets", "minCredits (%d) is greater than maxCredits (%d)", targets.MinCredits, targets.MaxCredits)
	}
	return nil
}
