package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

type CourseCode string

// Uppercases the code and strips every whitespace rune, so "cop 3530" and "COP3530" are equal
func NormalizeCode(code string) CourseCode {
	return CourseCode(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, code))
}

type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Single-letter registrar codes, R stands for Thursday and U for Sunday
var dayLetters = [...]string{"M", "T", "W", "R", "F", "S", "U"}

func (day Day) String() string {
	if day < Monday || day > Sunday {
		return fmt.Sprintf("Day(%d)", int(day))
	}
	return dayNames[day]
}

func (day Day) Letter() string {
	if day < Monday || day > Sunday {
		return "?"
	}
	return dayLetters[day]
}

func (day Day) Valid() bool {
	return day >= Monday && day <= Sunday
}

// ParseDay accepts full names ("Monday"), three-letter abbreviations ("Mon") and registrar letters ("M", "R")
func ParseDay(value string) (Day, error) {
	value = strings.TrimSpace(value)
	if len(value) == 1 {
		if index := slices.Index(dayLetters[:], strings.ToUpper(value)); index >= 0 {
			return Day(index), nil
		}
	}
	for i, name := range dayNames {
		if strings.EqualFold(name, value) || (len(value) == 3 && strings.EqualFold(name[:3], value)) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown day %q", ErrMalformedInput, value)
}

type Slot struct {
	Day    Day
	Period int
}

func (slot Slot) String() string {
	return fmt.Sprintf("%v-%d", slot.Day.Letter(), slot.Period)
}

// Orders slots by day and then by period
func (slot Slot) Compare(other Slot) int {
	if c := cmp.Compare(slot.Day, other.Day); c != 0 {
		return c
	}
	return cmp.Compare(slot.Period, other.Period)
}

// Returns a sorted copy of slots without duplicates
func SortSlots(slots []Slot) []Slot {
	sorted := lo.Uniq(slots)
	slices.SortFunc(sorted, Slot.Compare)
	return sorted
}

type Category int

const (
	Major Category = iota
	Minor
	Elective
)

var Categories = []Category{Major, Minor, Elective}

func (category Category) String() string {
	switch category {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Elective:
		return "elective"
	}
	return fmt.Sprintf("Category(%d)", int(category))
}

func ParseCategory(value string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "major":
		return Major, nil
	case "minor":
		return Minor, nil
	case "elective":
		return Elective, nil
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrMalformedInput, value)
}

type Section struct {
	ID     string
	Course CourseCode
	Slots  []Slot // Sorted and deduplicated
}

// Checks whether the section shares no slot with the given set
func (section Section) DisjointFrom(slots map[Slot]bool) bool {
	return !lo.SomeBy(section.Slots, func(slot Slot) bool { return slots[slot] })
}

type Course struct {
	Code     CourseCode
	Name     string
	Credits  int
	Category Category
	Prereqs  RequirementExpr
	Coreqs   []CourseCode // Sorted and deduplicated
	Sections []Section    // Sorted by id
}

// Returns a copy of the course holding only the given sections
func (course Course) WithSections(sections []Section) Course {
	course.Sections = slices.Clone(sections)
	return course
}

type Catalog map[CourseCode]Course

// Returns the catalog's course codes in lexicographic order
func (catalog Catalog) Codes() []CourseCode {
	codes := lo.Keys(catalog)
	slices.Sort(codes)
	return codes
}

// Returns the catalog's courses ordered by code
func (catalog Catalog) Courses() []Course {
	return lo.Map(catalog.Codes(), func(code CourseCode, _ int) Course { return catalog[code] })
}

func (catalog Catalog) Sections() int {
	return lo.SumBy(lo.Values(catalog), func(course Course) int { return len(course.Sections) })
}
