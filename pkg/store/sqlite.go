package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/samber/lo"

	_ "modernc.org/sqlite"
)

var ErrStudentNotFound = errors.New("student not found")

const schema = `
CREATE TABLE IF NOT EXISTS students (
    id         TEXT PRIMARY KEY,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS completed (
    student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    code       TEXT NOT NULL,
    PRIMARY KEY (student_id, code)
);

CREATE TABLE IF NOT EXISTS blacklist (
    student_id TEXT NOT NULL REFERENCES students(id) ON DELETE CASCADE,
    day        INTEGER NOT NULL,
    period     INTEGER NOT NULL,
    PRIMARY KEY (student_id, day, period)
);
`

// SQLiteStore persists student states (completed courses and blacklisted slots) for callers of the planner.
// The planner itself never reads it
type SQLiteStore struct {
	db *sql.DB
	sb squirrel.StatementBuilderType
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// SQLite supports a single writer
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", "PRAGMA foreign_keys=ON"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %v: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &SQLiteStore{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveStudent replaces everything stored for the student with the given state
func (s *SQLiteStore) SaveStudent(ctx context.Context, id string, student catalog.StudentState) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.touch(ctx, tx, id); err != nil {
			return err
		}
		if err := s.exec(ctx, tx, s.sb.Delete("completed").Where(squirrel.Eq{"student_id": id})); err != nil {
			return fmt.Errorf("store: clear completed of %q: %w", id, err)
		}
		if err := s.insertCompleted(ctx, tx, id, student.CompletedCodes()); err != nil {
			return err
		}
		return s.replaceBlacklist(ctx, tx, id, student.BlacklistedSlots())
	})
}

// MarkCompleted adds codes to the student's completed set, creating the student if needed
func (s *SQLiteStore) MarkCompleted(ctx context.Context, id string, codes ...catalog.CourseCode) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.touch(ctx, tx, id); err != nil {
			return err
		}
		normalized := lo.Uniq(lo.Map(codes, func(code catalog.CourseCode, _ int) catalog.CourseCode {
			return catalog.NormalizeCode(string(code))
		}))
		slices.Sort(normalized)
		return s.insertCompleted(ctx, tx, id, normalized)
	})
}

// SetBlacklist replaces the student's blacklisted slots, creating the student if needed
func (s *SQLiteStore) SetBlacklist(ctx context.Context, id string, slots []catalog.Slot) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.touch(ctx, tx, id); err != nil {
			return err
		}
		return s.replaceBlacklist(ctx, tx, id, catalog.SortSlots(slots))
	})
}

// LoadStudent returns the stored state, or ErrStudentNotFound if the student was never saved
func (s *SQLiteStore) LoadStudent(ctx context.Context, id string) (catalog.StudentState, error) {
	query, args, err := s.sb.Select("COUNT(*)").From("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return catalog.StudentState{}, fmt.Errorf("store: build student query: %w", err)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return catalog.StudentState{}, fmt.Errorf("store: load student %q: %w", id, err)
	} else if count == 0 {
		return catalog.StudentState{}, fmt.Errorf("%w: %q", ErrStudentNotFound, id)
	}

	//** Completed courses
	query, args, err = s.sb.Select("code").From("completed").Where(squirrel.Eq{"student_id": id}).OrderBy("code").ToSql()
	if err != nil {
		return catalog.StudentState{}, fmt.Errorf("store: build completed query: %w", err)
	}
	completed := make([]catalog.CourseCode, 0)
	err = s.query(ctx, query, args, func(rows *sql.Rows) error {
		var code string
		if err := rows.Scan(&code); err != nil {
			return err
		}
		completed = append(completed, catalog.CourseCode(code))
		return nil
	})
	if err != nil {
		return catalog.StudentState{}, fmt.Errorf("store: load completed of %q: %w", id, err)
	}

	//** Blacklisted slots
	query, args, err = s.sb.Select("day", "period").From("blacklist").Where(squirrel.Eq{"student_id": id}).OrderBy("day", "period").ToSql()
	if err != nil {
		return catalog.StudentState{}, fmt.Errorf("store: build blacklist query: %w", err)
	}
	blacklist := make([]catalog.Slot, 0)
	err = s.query(ctx, query, args, func(rows *sql.Rows) error {
		var slot catalog.Slot
		if err := rows.Scan(&slot.Day, &slot.Period); err != nil {
			return err
		}
		blacklist = append(blacklist, slot)
		return nil
	})
	if err != nil {
		return catalog.StudentState{}, fmt.Errorf("store: load blacklist of %q: %w", id, err)
	}

	return catalog.NewStudentState(completed, blacklist), nil
}

// Students lists the stored student ids in order
func (s *SQLiteStore) Students(ctx context.Context) ([]string, error) {
	query, args, err := s.sb.Select("id").From("students").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build students query: %w", err)
	}
	ids := make([]string, 0)
	err = s.query(ctx, query, args, func(rows *sql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: list students: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) DeleteStudent(ctx context.Context, id string) error {
	return s.exec(ctx, s.db, s.sb.Delete("students").Where(squirrel.Eq{"id": id}))
}

//** Helpers

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) exec(ctx context.Context, db execer, builder squirrel.Sqlizer) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

func (s *SQLiteStore) query(ctx context.Context, query string, args []any, scan func(rows *sql.Rows) error) error {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Creates the student row or refreshes its update time
func (s *SQLiteStore) touch(ctx context.Context, tx *sql.Tx, id string) error {
	builder := s.sb.Insert("students").
		Columns("id").
		Values(id).
		Suffix("ON CONFLICT(id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP")
	if err := s.exec(ctx, tx, builder); err != nil {
		return fmt.Errorf("store: upsert student %q: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) insertCompleted(ctx context.Context, tx *sql.Tx, id string, codes []catalog.CourseCode) error {
	if len(codes) == 0 {
		return nil
	}
	builder := s.sb.Insert("completed").Options("OR IGNORE").Columns("student_id", "code")
	for _, code := range codes {
		builder = builder.Values(id, string(code))
	}
	if err := s.exec(ctx, tx, builder); err != nil {
		return fmt.Errorf("store: insert completed of %q: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) replaceBlacklist(ctx context.Context, tx *sql.Tx, id string, slots []catalog.Slot) error {
	if err := s.exec(ctx, tx, s.sb.Delete("blacklist").Where(squirrel.Eq{"student_id": id})); err != nil {
		return fmt.Errorf("store: clear blacklist of %q: %w", id, err)
	}
	if len(slots) == 0 {
		return nil
	}

	builder := s.sb.Insert("blacklist").Columns("student_id", "day", "period")
	for _, slot := range slots {
		builder = builder.Values(id, int(slot.Day), slot.Period)
	}
	if err := s.exec(ctx, tx, builder); err != nil {
		return fmt.Errorf("store: insert blacklist of %q: %w", id, err)
	}
	return nil
}
