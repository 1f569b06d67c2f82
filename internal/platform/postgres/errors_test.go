package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "cards",
		ColumnName:     "content",
		ConstraintName: "cards_ease_factor_check",
	}
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), store.ErrNotFound},
		{"unique violation", newPgError(uniqueViolationCode), store.ErrDuplicate},
		{"foreign key violation", newPgError(foreignKeyViolationCode), store.ErrInvalidEntity},
		{"check violation", newPgError(checkViolationCode), store.ErrInvalidEntity},
		{"not null violation", newPgError(notNullViolationCode), store.ErrInvalidEntity},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			mapped := MapError(tc.err)
			assert.ErrorIs(t, mapped, tc.target)
		})
	}

	assert.NoError(t, MapError(nil))

	other := errors.New("connection reset")
	assert.Same(t, other, MapError(other))

	unknown := newPgError("40001")
	assert.Equal(t, error(unknown), MapError(unknown))
}

func TestMapErrorKeepsConstraintName(t *testing.T) {
	t.Parallel()
	assert.Contains(t, MapError(newPgError(checkViolationCode)).Error(), "cards_ease_factor_check")
	assert.Contains(t, MapError(newPgError(notNullViolationCode)).Error(), "content")
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(newPgError(uniqueViolationCode)))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", newPgError(uniqueViolationCode))))
	assert.False(t, IsUniqueViolation(newPgError(checkViolationCode)))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestRowsAffected(t *testing.T) {
	t.Parallel()

	n, err := rowsAffected(fakeResult{rows: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = rowsAffected(fakeResult{err: errors.New("driver")})
	assert.Error(t, err)

	_, err = rowsAffected(nil)
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/00001_create_cards.sql",
		"migrations/00002_create_session_reports.sql",
	}, names)

	for _, name := range names {
		body, err := fs.ReadFile(migrationFS, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestGooseLogger(t *testing.T) {
	t.Parallel()

	l, buf := logger.NewTestLogger(t)
	gl := gooseLogger{logger: l}

	gl.Printf("applied %d migrations", 2)
	gl.Fatalf("failed at %s", "00002")

	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "applied 2 migrations", entries[0]["msg"])
	assert.Equal(t, slog.LevelInfo.String(), entries[0]["level"])
	assert.Equal(t, "failed at 00002", entries[1]["msg"])
	assert.Equal(t, slog.LevelError.String(), entries[1]["level"])
}

func TestConstructorsRejectNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewPostgresCardStore(nil, nil) })
	assert.Panics(t, func() { NewPostgresSessionReportStore(nil, nil) })
}

func TestNullTime(t *testing.T) {
	t.Parallel()

	assert.False(t, nullTime(time.Time{}).Valid)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, sql.NullTime{Time: now, Valid: true}, nullTime(now))
}
