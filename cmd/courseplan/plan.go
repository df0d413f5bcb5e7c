package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/limaJavier/courseplan/internal/logger"
	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/limaJavier/courseplan/pkg/planner"
	"github.com/limaJavier/courseplan/pkg/store"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a term schedule",
	Example: `  courseplan plan --catalog testdata/catalog.json --completed COP3503,COT3100 --blacklist F:1 -x 1 -z 1 --min-credits 6 --max-credits 6
  courseplan plan --student jdoe -x 2 --max-credits 9 --json`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	flags := planCmd.Flags()
	flags.IntP("major", "x", 0, "number of major courses")
	flags.IntP("minor", "y", 0, "number of minor courses")
	flags.IntP("elective", "z", 0, "number of elective courses")
	flags.Int("min-credits", 0, "minimum total credits")
	flags.Int("max-credits", 0, "maximum total credits")
	flags.StringSlice("completed", nil, "completed course codes")
	flags.StringArray("blacklist", nil, "blacklisted periods as DAY:PERIOD[,PERIOD...], e.g. F:1 or M:7,8")
	flags.String("student", "", "load completed courses and blacklist of a stored student")
	flags.String("student-file", "", "load completed courses and blacklist from a file")
	flags.Bool("json", false, "print the result as JSON")
	flags.String("out", "", "write the result to a file instead of the standard output")
	flags.String("dump-opb", "", "write the constraint model in OPB format to a file")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	//** Extract input
	courses, err := catalog.FromFile(cfg.Catalog)
	if err != nil {
		return fmt.Errorf("cannot load catalog: %w", err)
	}

	student, err := resolveStudent(cmd)
	if err != nil {
		return err
	}

	major, _ := flags.GetInt("major")
	minor, _ := flags.GetInt("minor")
	elective, _ := flags.GetInt("elective")
	minCredits, _ := flags.GetInt("min-credits")
	maxCredits, _ := flags.GetInt("max-credits")
	targets := catalog.Targets{MajorCount: major, MinorCount: minor, ElectiveCount: elective, MinCredits: minCredits, MaxCredits: maxCredits}

	if file, _ := flags.GetString("dump-opb"); file != "" {
		if err := dumpOPB(file, courses, student, targets); err != nil {
			return err
		}
	}

	//** Plan
	start := time.Now()
	schedule, err := planner.Plan(cmd.Context(), courses, student, targets, planner.Options{
		Solver:  newSolver(cfg),
		Timeout: cfg.Timeout,
	})
	outcome := planner.OutcomeOf(err)
	logger.Info().
		Str("catalog", cfg.Catalog).
		Str("solver", cfg.Solver).
		Str("outcome", outcome.String()).
		Dur("duration", time.Since(start)).
		Msg("plan")

	switch outcome {
	case planner.Malformed, planner.Failed:
		return err
	case planner.Scheduled:
		// Verify schedule correctness
		if err := planner.Verify(*schedule, planner.Filter(courses, student), targets, student.Completed); err != nil {
			return &exitError{code: exitVerificationFailed, err: err}
		}
	}

	//** Write result
	var out io.Writer = cmd.OutOrStdout()
	if file, _ := flags.GetString("out"); file != "" {
		handle, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer handle.Close()
		out = handle
	}

	asJSON, _ := flags.GetBool("json")
	if asJSON {
		err = writeJSON(out, schedule, err)
	} else {
		err = writeText(out, schedule, err)
	}
	if err != nil {
		return fmt.Errorf("cannot write result: %w", err)
	}

	return &exitError{code: exitCode(outcome)}
}

func exitCode(outcome planner.Outcome) int {
	switch outcome {
	case planner.Scheduled:
		return exitScheduled
	case planner.Infeasible:
		return exitInfeasible
	case planner.EligibilityEmpty:
		return exitEligibilityEmpty
	case planner.Undetermined:
		return exitUndetermined
	}
	return 1
}

// Merges the stored student (or student file) with the completed and blacklist flags
func resolveStudent(cmd *cobra.Command) (catalog.StudentState, error) {
	flags := cmd.Flags()
	completed := make([]catalog.CourseCode, 0)
	blacklist := make([]catalog.Slot, 0)

	if id, _ := flags.GetString("student"); id != "" {
		stored, err := loadStoredStudent(cmd.Context(), id)
		if err != nil {
			return catalog.StudentState{}, err
		}
		completed = append(completed, stored.CompletedCodes()...)
		blacklist = append(blacklist, stored.BlacklistedSlots()...)
	}
	if file, _ := flags.GetString("student-file"); file != "" {
		loaded, err := catalog.StudentFromFile(file)
		if err != nil {
			return catalog.StudentState{}, err
		}
		completed = append(completed, loaded.CompletedCodes()...)
		blacklist = append(blacklist, loaded.BlacklistedSlots()...)
	}

	codes, _ := flags.GetStringSlice("completed")
	entries, _ := flags.GetStringArray("blacklist")
	periods, err := parseBlacklist(entries)
	if err != nil {
		return catalog.StudentState{}, err
	}
	extra, err := catalog.ProcessRawStudent(catalog.RawStudent{Completed: codes, Blacklist: periods})
	if err != nil {
		return catalog.StudentState{}, err
	}

	return catalog.NewStudentState(
		append(completed, extra.CompletedCodes()...),
		append(blacklist, extra.BlacklistedSlots()...),
	), nil
}

func loadStoredStudent(ctx context.Context, id string) (catalog.StudentState, error) {
	students, err := store.NewSQLiteStore(ctx, cfg.Store)
	if err != nil {
		return catalog.StudentState{}, err
	}
	defer students.Close()
	return students.LoadStudent(ctx, id)
}

// Parses DAY:PERIOD[,PERIOD...] entries into the day -> periods shape of raw student input
func parseBlacklist(entries []string) (map[string][]int, error) {
	periods := make(map[string][]int)
	for _, entry := range entries {
		day, list, found := strings.Cut(entry, ":")
		if !found || day == "" || list == "" {
			return nil, fmt.Errorf("%w: blacklist entry %q must look like DAY:PERIOD[,PERIOD...]", catalog.ErrMalformedInput, entry)
		}
		for _, value := range strings.Split(list, ",") {
			period, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("%w: blacklist entry %q: %v", catalog.ErrMalformedInput, entry, err)
			}
			periods[day] = append(periods[day], period)
		}
	}
	return periods, nil
}

func dumpOPB(file string, courses catalog.Catalog, student catalog.StudentState, targets catalog.Targets) error {
	if err := courses.Validate(); err != nil {
		return err
	}
	problem, _ := planner.BuildModel(planner.Filter(courses, student), targets, student.Completed)
	if err := os.WriteFile(file, []byte(problem.ToOPB()), 0o644); err != nil {
		return fmt.Errorf("cannot write OPB file: %w", err)
	}
	logger.Debug().Str("file", file).Int("variables", problem.Variables).Int("constraints", len(problem.Constraints)).Msg("model dumped")
	return nil
}
