package main

import (
	"fmt"

	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/limaJavier/courseplan/pkg/store"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var studentCmd = &cobra.Command{
	Use:   "student",
	Short: "Manage stored student states",
}

var studentSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Create or replace a student's completed courses and blacklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		codes, _ := cmd.Flags().GetStringSlice("completed")
		entries, _ := cmd.Flags().GetStringArray("blacklist")
		periods, err := parseBlacklist(entries)
		if err != nil {
			return err
		}
		student, err := catalog.ProcessRawStudent(catalog.RawStudent{Completed: codes, Blacklist: periods})
		if err != nil {
			return err
		}

		return withStore(cmd, func(students *store.SQLiteStore) error {
			return students.SaveStudent(cmd.Context(), args[0], student)
		})
	},
}

var studentCompleteCmd = &cobra.Command{
	Use:   "complete <id> <course>...",
	Short: "Mark courses as completed",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		codes := lo.Map(args[1:], func(code string, _ int) catalog.CourseCode { return catalog.NormalizeCode(code) })
		return withStore(cmd, func(students *store.SQLiteStore) error {
			return students.MarkCompleted(cmd.Context(), args[0], codes...)
		})
	},
}

var studentShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a student's completed courses and blacklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(students *store.SQLiteStore) error {
			student, err := students.LoadStudent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeStudent(cmd.OutOrStdout(), args[0], student)
			return nil
		})
	},
}

var studentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored students",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(students *store.SQLiteStore) error {
			ids, err := students.Students(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

var studentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored student",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(students *store.SQLiteStore) error {
			return students.DeleteStudent(cmd.Context(), args[0])
		})
	},
}

func init() {
	studentSetCmd.Flags().StringSlice("completed", nil, "completed course codes")
	studentSetCmd.Flags().StringArray("blacklist", nil, "blacklisted periods as DAY:PERIOD[,PERIOD...]")

	studentCmd.AddCommand(studentSetCmd, studentCompleteCmd, studentShowCmd, studentListCmd, studentDeleteCmd)
}

func withStore(cmd *cobra.Command, fn func(students *store.SQLiteStore) error) error {
	students, err := store.NewSQLiteStore(cmd.Context(), cfg.Store)
	if err != nil {
		return err
	}
	defer students.Close()
	return fn(students)
}
