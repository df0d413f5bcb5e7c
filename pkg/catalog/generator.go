package catalog

import (
	"fmt"
	"math/rand/v2"
)

// GenerateCatalog builds a random, valid catalog over a five-day week of six periods. Prerequisites and corequisites
// only point at other generated courses
func GenerateCatalog(random *rand.Rand, courses int) Catalog {
	catalog := make(Catalog, courses)
	codes := make([]CourseCode, courses)
	for i := range courses {
		codes[i] = CourseCode(fmt.Sprintf("GEN%04d", i+1))
	}

	for i, code := range codes {
		course := Course{
			Code:     code,
			Name:     fmt.Sprintf("Generated course %d", i+1),
			Credits:  1 + random.IntN(4),
			Category: Categories[random.IntN(len(Categories))],
		}

		if i > 0 && random.Float32() < 0.3 {
			group := []CourseCode{codes[random.IntN(i)]}
			if random.Float32() < 0.5 {
				group = append(group, codes[random.IntN(i)])
			}
			course.Prereqs = NewRequirementExpr(group)
		}
		if courses > 1 && random.Float32() < 0.1 {
			if coreq := codes[random.IntN(courses)]; coreq != code {
				course.Coreqs = []CourseCode{coreq}
			}
		}

		sections := 1 + random.IntN(3)
		for j := range sections {
			slots := make([]Slot, 0, 3)
			for range 1 + random.IntN(3) {
				slots = append(slots, Slot{Day: Day(random.IntN(5)), Period: 1 + random.IntN(6)})
			}
			course.Sections = append(course.Sections, Section{
				ID:     fmt.Sprintf("%v-%d", code, j+1),
				Course: code,
				Slots:  SortSlots(slots),
			})
		}

		catalog[code] = course
	}
	return catalog
}

// GenerateStudent marks a random share of the catalog as completed and blacklists a couple of slots
func GenerateStudent(random *rand.Rand, catalog Catalog) StudentState {
	completed := make([]CourseCode, 0)
	for _, code := range catalog.Codes() {
		if random.Float32() < 0.3 {
			completed = append(completed, code)
		}
	}

	blacklist := make([]Slot, 0, 2)
	for range random.IntN(3) {
		blacklist = append(blacklist, Slot{Day: Day(random.IntN(5)), Period: 1 + random.IntN(6)})
	}
	return NewStudentState(completed, blacklist)
}

func GenerateTargets(random *rand.Rand) Targets {
	minCredits := random.IntN(7)
	return Targets{
		MajorCount:    random.IntN(3),
		MinorCount:    random.IntN(2),
		ElectiveCount: random.IntN(3),
		MinCredits:    minCredits,
		MaxCredits:    minCredits + random.IntN(7),
	}
}
