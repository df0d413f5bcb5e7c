package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/limaJavier/courseplan/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "students.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAndLoadStudent(t *testing.T) {
	// Arrange
	store := newTestStore(t)
	ctx := context.Background()
	student := catalog.NewStudentState(
		[]catalog.CourseCode{"COT3100", "COP3503"},
		[]catalog.Slot{{Day: catalog.Friday, Period: 1}, {Day: catalog.Monday, Period: 6}},
	)

	// Act
	require.NoError(t, store.SaveStudent(ctx, "jdoe", student))
	loaded, err := store.LoadStudent(ctx, "jdoe")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, student, loaded)
	assert.Equal(t, []catalog.CourseCode{"COP3503", "COT3100"}, loaded.CompletedCodes())
}

func TestSaveStudentReplacesState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveStudent(ctx, "jdoe", catalog.NewStudentState([]catalog.CourseCode{"COP3503"}, []catalog.Slot{{Day: catalog.Friday, Period: 1}})))
	require.NoError(t, store.SaveStudent(ctx, "jdoe", catalog.NewStudentState([]catalog.CourseCode{"MAS3114"}, nil)))

	loaded, err := store.LoadStudent(ctx, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, []catalog.CourseCode{"MAS3114"}, loaded.CompletedCodes())
	assert.Empty(t, loaded.BlacklistedSlots())
}

func TestMarkCompletedAndBlacklist(t *testing.T) {
	// Arrange
	store := newTestStore(t)
	ctx := context.Background()

	// Act
	require.NoError(t, store.MarkCompleted(ctx, "asmith", "cop 3503"))
	require.NoError(t, store.MarkCompleted(ctx, "asmith", "COP3503", "COT3100"))
	require.NoError(t, store.SetBlacklist(ctx, "asmith", []catalog.Slot{{Day: catalog.Thursday, Period: 3}, {Day: catalog.Thursday, Period: 3}}))
	loaded, err := store.LoadStudent(ctx, "asmith")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []catalog.CourseCode{"COP3503", "COT3100"}, loaded.CompletedCodes())
	assert.Equal(t, []catalog.Slot{{Day: catalog.Thursday, Period: 3}}, loaded.BlacklistedSlots())
}

func TestStudentsAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.LoadStudent(ctx, "nobody")
	assert.ErrorIs(t, err, ErrStudentNotFound)

	require.NoError(t, store.MarkCompleted(ctx, "b"))
	require.NoError(t, store.SetBlacklist(ctx, "a", nil))

	ids, err := store.Students(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, store.DeleteStudent(ctx, "a"))
	_, err = store.LoadStudent(ctx, "a")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}
