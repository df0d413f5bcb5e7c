package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type RawSlot struct {
	Day    string `mapstructure:"day"`
	Period int    `mapstructure:"period"`
}

type RawSection struct {
	SectionId string    `mapstructure:"section_id"`
	Slots     []RawSlot `mapstructure:"slots"`
}

type RawCourse struct {
	Code     string       `mapstructure:"code"`
	Name     string       `mapstructure:"name"`
	Credits  int          `mapstructure:"credits"`
	Type     string       `mapstructure:"type"`
	Prereqs  any          `mapstructure:"prereqs"` // Either a flat list (one AND-group) or a list of lists (OR of AND-groups)
	Coreqs   []string     `mapstructure:"coreqs"`
	Sections []RawSection `mapstructure:"sections"`
}

type RawCatalog struct {
	Courses map[string]RawCourse `mapstructure:"courses"`
}

type RawStudent struct {
	Completed []string         `mapstructure:"completed"`
	Blacklist map[string][]int `mapstructure:"blacklist"` // Day -> blacklisted periods, e.g. "M" -> [1, 2]
}

// FromFile loads a catalog from a JSON, YAML or TOML file, chosen by extension
func FromFile(file string) (Catalog, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog file: %w", err)
	}

	inputMap, err := unmarshalByExtension(filepath.Ext(file), bytes)
	if err != nil {
		return nil, fmt.Errorf("cannot parse catalog file %v: %w", file, err)
	}

	var rawCatalog RawCatalog
	if err := Decode(inputMap, &rawCatalog); err != nil {
		return nil, fmt.Errorf("cannot decode catalog file %v: %w", file, err)
	}
	return ProcessRawCatalog(rawCatalog)
}

// StudentFromFile loads a student state from a JSON, YAML or TOML file
func StudentFromFile(file string) (StudentState, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return StudentState{}, fmt.Errorf("cannot read student file: %w", err)
	}

	inputMap, err := unmarshalByExtension(filepath.Ext(file), bytes)
	if err != nil {
		return StudentState{}, fmt.Errorf("cannot parse student file %v: %w", file, err)
	}

	var rawStudent RawStudent
	if err := Decode(inputMap, &rawStudent); err != nil {
		return StudentState{}, fmt.Errorf("cannot decode student file %v: %w", file, err)
	}
	return ProcessRawStudent(rawStudent)
}

func unmarshalByExtension(extension string, bytes []byte) (map[string]any, error) {
	var inputMap map[string]any
	var err error
	switch strings.ToLower(extension) {
	case ".json":
		err = json.Unmarshal(bytes, &inputMap)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &inputMap)
	case ".toml":
		err = toml.Unmarshal(bytes, &inputMap)
	default:
		return nil, fmt.Errorf("unsupported file extension %q", extension)
	}
	if err != nil {
		return nil, err
	}
	return inputMap, nil
}

// Decode maps generic input (as produced by any of the supported formats) onto a raw structure.
// Slots may be written either as {day, period} objects or as [day, period] pairs
func Decode(input any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.DecodeHookFuncType(slotPairHook),
		Result:     output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func slotPairHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(RawSlot{}) || (from.Kind() != reflect.Slice && from.Kind() != reflect.Array) {
		return data, nil
	}
	pair := reflect.ValueOf(data)
	if pair.Len() != 2 {
		return nil, fmt.Errorf("slot %v must be a [day, period] pair", data)
	}
	return map[string]any{
		"day":    pair.Index(0).Interface(),
		"period": pair.Index(1).Interface(),
	}, nil
}

// ProcessRawCatalog normalizes and validates raw input into a Catalog
func ProcessRawCatalog(rawCatalog RawCatalog) (Catalog, error) {
	catalog := make(Catalog, len(rawCatalog.Courses))

	// Iterate in key order so that the reported error is deterministic
	keys := lo.Keys(rawCatalog.Courses)
	slices.Sort(keys)
	for _, key := range keys {
		rawCourse := rawCatalog.Courses[key]
		code := NormalizeCode(key)
		if rawCourse.Code != "" && NormalizeCode(rawCourse.Code) != code {
			return nil, invalid(fmt.Sprintf("course %v", key), "code field %q differs from its key", rawCourse.Code)
		} else if _, ok := catalog[code]; ok {
			return nil, invalid(fmt.Sprintf("course %v", key), "duplicate course after normalization")
		}

		category, err := ParseCategory(rawCourse.Type)
		if err != nil {
			return nil, fmt.Errorf("course %v: %w", code, err)
		}

		prereqs, err := parsePrereqs(rawCourse.Prereqs)
		if err != nil {
			return nil, fmt.Errorf("course %v: %w", code, err)
		}

		sections := make([]Section, 0, len(rawCourse.Sections))
		for _, rawSection := range rawCourse.Sections {
			slots := make([]Slot, 0, len(rawSection.Slots))
			for _, rawSlot := range rawSection.Slots {
				day, err := ParseDay(rawSlot.Day)
				if err != nil {
					return nil, fmt.Errorf("course %v, section %v: %w", code, rawSection.SectionId, err)
				}
				slots = append(slots, Slot{Day: day, Period: rawSlot.Period})
			}
			sections = append(sections, Section{
				ID:     strings.TrimSpace(rawSection.SectionId),
				Course: code,
				Slots:  SortSlots(slots),
			})
		}
		slices.SortFunc(sections, func(a, b Section) int { return strings.Compare(a.ID, b.ID) })

		coreqs := lo.Uniq(lo.Map(rawCourse.Coreqs, func(coreq string, _ int) CourseCode { return NormalizeCode(coreq) }))
		slices.Sort(coreqs)

		catalog[code] = Course{
			Code:     code,
			Name:     rawCourse.Name,
			Credits:  rawCourse.Credits,
			Category: category,
			Prereqs:  prereqs,
			Coreqs:   coreqs,
			Sections: sections,
		}
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// A flat list of codes is a single AND-group, a list of lists is an OR of AND-groups
func parsePrereqs(raw any) (RequirementExpr, error) {
	if raw == nil {
		return NewRequirementExpr(), nil
	}
	items, ok := toSlice(raw)
	if !ok {
		return RequirementExpr{}, fmt.Errorf("%w: prereqs must be a list, got %T", ErrMalformedInput, raw)
	} else if len(items) == 0 {
		return NewRequirementExpr(), nil
	}

	if lo.EveryBy(items, func(item any) bool { _, isString := item.(string); return isString }) {
		return NewRequirementExpr(lo.Map(items, func(item any, _ int) CourseCode { return CourseCode(item.(string)) })), nil
	}

	groups := make([][]CourseCode, 0, len(items))
	for _, item := range items {
		codes, ok := toSlice(item)
		if !ok {
			return RequirementExpr{}, fmt.Errorf("%w: prereqs mix codes and groups", ErrMalformedInput)
		}
		group := make([]CourseCode, 0, len(codes))
		for _, code := range codes {
			codeStr, ok := code.(string)
			if !ok {
				return RequirementExpr{}, fmt.Errorf("%w: prereq %v is not a course code", ErrMalformedInput, code)
			}
			group = append(group, CourseCode(codeStr))
		}
		groups = append(groups, group)
	}
	return NewRequirementExpr(groups...), nil
}

func toSlice(value any) ([]any, bool) {
	reflected := reflect.ValueOf(value)
	if reflected.Kind() != reflect.Slice && reflected.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, reflected.Len())
	for i := range items {
		items[i] = reflected.Index(i).Interface()
	}
	return items, true
}

// ProcessRawStudent normalizes raw student input into a StudentState
func ProcessRawStudent(rawStudent RawStudent) (StudentState, error) {
	completed := lo.Map(rawStudent.Completed, func(code string, _ int) CourseCode { return NormalizeCode(code) })

	blacklist := make([]Slot, 0)
	for dayStr, periods := range rawStudent.Blacklist {
		day, err := ParseDay(dayStr)
		if err != nil {
			return StudentState{}, err
		}
		for _, period := range periods {
			if period < 0 {
				return StudentState{}, invalid("blacklist", "negative period %d on %v", period, day)
			}
			blacklist = append(blacklist, Slot{Day: day, Period: period})
		}
	}

	return NewStudentState(completed, blacklist), nil
}
