package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/limaJavier/courseplan/internal/config"
	"github.com/limaJavier/courseplan/internal/logger"
	"github.com/limaJavier/courseplan/pkg/sat"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes of the plan command, following the SAT-solver convention of 10 for satisfiable and 20 for unsatisfiable
const (
	exitScheduled          = 10
	exitVerificationFailed = 15
	exitInfeasible         = 20
	exitEligibilityEmpty   = 21
	exitUndetermined       = 30
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:               "courseplan",
	Short:             "Term schedule planner",
	Long:              "courseplan selects courses and sections meeting category quotas, a credit band, corequisites and time conflicts.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// exitError carries a process exit code; err is printed when present
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintln(os.Stderr, exit.err)
		}
		return exit.code
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .courseplan.yaml)")
	flags.String("catalog", "", "catalog file (.json, .yaml or .toml)")
	flags.String("store", "", "sqlite database holding student states")
	flags.String("solver", "", "solver backend: backtracking or gini")
	flags.Int("max-steps", 0, "search step budget of the backtracking solver, 0 for unlimited")
	flags.Duration("timeout", 0, "deadline of a single plan")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Bool("log-pretty", false, "human-readable logs")

	for key, flag := range map[string]string{
		"catalog":    "catalog",
		"store":      "store",
		"solver":     "solver",
		"max_steps":  "max-steps",
		"timeout":    "timeout",
		"log.level":  "log-level",
		"log.pretty": "log-pretty",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(planCmd, serveCmd, studentCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("config")
	if err := config.Init(file); err != nil {
		return err
	}

	var err error
	if cfg, err = config.Load(); err != nil {
		return err
	}

	logger.Configure(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	return nil
}

func newSolver(config config.Config) sat.Solver {
	if config.Solver == "gini" {
		return sat.NewGiniSolver()
	}
	return sat.NewBacktrackingSolver(sat.Options{MaxSteps: config.MaxSteps})
}
