package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/limaJavier/courseplan/pkg/planner"
	"github.com/limaJavier/courseplan/pkg/sat"
	"github.com/samber/lo"
)

const (
	resultFile               = "benchmark_results.csv"
	seed                     = 2024
	instancesPerSize         = 5
	timeout                  = 30 * time.Second
	MB               float32 = 1024 * 1024
)

var sizes = []int{10, 25, 50, 100, 200}

type SolverType int

const (
	backtracking SolverType = iota
	gini
)

var solverTypes = map[SolverType]string{
	backtracking: "backtracking",
	gini:         "gini",
}

type TestMetadata struct {
	Name      string
	Courses   int
	Sections  int
	Completed int
	Blacklist int
	Targets   catalog.Targets
}

type BenchmarkResult struct {
	Solver   SolverType
	Test     TestMetadata
	Duration int64
	Memory   float32
	Outcome  planner.Outcome
	Credits  int
}

type testCase struct {
	metadata TestMetadata
	catalog  catalog.Catalog
	student  catalog.StudentState
}

func main() {
	tests := getTests(rand.New(rand.NewPCG(seed, seed)))
	solvers := getSolvers()
	results := make([]BenchmarkResult, 0, len(tests)*len(solvers))

	for _, test := range tests {
		for _, solver := range solvers {
			fmt.Printf("Benchmarking test \"%v\" with solver \"%v\"\n", test.metadata.Name, solverTypes[solver])
			results = append(results, measure(solver, test))
		}
	}

	file, err := os.Create(resultFile)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	if err := toCsv(file, results); err != nil {
		log.Panicf("cannot write CSV file: %v", err)
	}
}

func getTests(random *rand.Rand) []testCase {
	tests := make([]testCase, 0, len(sizes)*instancesPerSize)
	for _, size := range sizes {
		for i := range instancesPerSize {
			courses := catalog.GenerateCatalog(random, size)
			student := catalog.GenerateStudent(random, courses)
			targets := catalog.GenerateTargets(random)

			tests = append(tests, testCase{
				metadata: TestMetadata{
					Name:      fmt.Sprintf("%d-%d", size, i+1),
					Courses:   len(courses),
					Sections:  courses.Sections(),
					Completed: len(student.Completed),
					Blacklist: len(student.Blacklist),
					Targets:   targets,
				},
				catalog: courses,
				student: student,
			})
		}
	}
	return tests
}

func getSolvers() []SolverType {
	return []SolverType{backtracking, gini}
}

func newSolver(solver SolverType) sat.Solver {
	if solver == gini {
		return sat.NewGiniSolver()
	}
	return sat.NewBacktrackingSolver(sat.Options{})
}

// Plans in-process and reports wall time and the bytes allocated while planning
func measure(solver SolverType, test testCase) BenchmarkResult {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	start := time.Now()
	schedule, err := planner.Plan(context.Background(), test.catalog, test.student, test.metadata.Targets, planner.Options{
		Solver:  newSolver(solver),
		Timeout: timeout,
	})
	duration := time.Since(start)
	runtime.ReadMemStats(&after)

	outcome := planner.OutcomeOf(err)
	if outcome == planner.Malformed || outcome == planner.Failed {
		log.Fatalf("an error occurred at test \"%v\" using solver \"%v\": %v", test.metadata.Name, solverTypes[solver], err)
	}

	result := BenchmarkResult{
		Solver:   solver,
		Test:     test.metadata,
		Duration: duration.Milliseconds(),
		Memory:   float32(after.TotalAlloc-before.TotalAlloc) / MB,
		Outcome:  outcome,
	}
	if schedule != nil {
		if err := planner.Verify(*schedule, planner.Filter(test.catalog, test.student), test.metadata.Targets, test.student.Completed); err != nil {
			log.Fatalf("invalid schedule at test \"%v\" using solver \"%v\": %v", test.metadata.Name, solverTypes[solver], err)
		}
		result.Credits = schedule.TotalCredits
	} else if errors.Is(err, planner.ErrUndetermined) {
		log.Printf("test \"%v\" timed out with solver \"%v\"", test.metadata.Name, solverTypes[solver])
	}
	return result
}

func toCsv(out io.Writer, results []BenchmarkResult) error {
	writer := csv.NewWriter(out)

	header := []string{"Solver", "Test", "Courses", "Sections", "Completed", "Blacklist", "Major", "Minor", "Elective", "MinCredits", "MaxCredits", "Duration(ms)", "Memory(MB)", "Outcome", "Credits"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		targets := result.Test.Targets
		record := append(
			[]string{solverTypes[result.Solver], result.Test.Name},
			lo.Map([]int{
				result.Test.Courses,
				result.Test.Sections,
				result.Test.Completed,
				result.Test.Blacklist,
				targets.MajorCount,
				targets.MinorCount,
				targets.ElectiveCount,
				targets.MinCredits,
				targets.MaxCredits,
			}, func(value int, _ int) string { return fmt.Sprintf("%d", value) })...,
		)
		record = append(record,
			fmt.Sprintf("%d", result.Duration),
			fmt.Sprintf("%.1f", result.Memory),
			result.Outcome.String(),
			fmt.Sprintf("%d", result.Credits),
		)
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
