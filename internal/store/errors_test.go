package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("failed to do something: %w", ErrNotFound), true},
		{"ErrCardNotFound", ErrCardNotFound, true},
		{"wrapped ErrSessionReportNotFound", fmt.Errorf("load: %w", ErrSessionReportNotFound), true},
		{"ErrVersionConflict", ErrVersionConflict, false},
		{"ErrDuplicate", ErrDuplicate, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.False(t, IsDuplicateError(nil))
	assert.False(t, IsDuplicateError(ErrNotFound))
	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(fmt.Errorf("failed to save report: %w", ErrDuplicate)))
}

func TestEntitySpecificErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	assert.False(t, errors.Is(ErrCardNotFound, ErrSessionReportNotFound))
	assert.False(t, errors.Is(ErrSessionReportNotFound, ErrCardNotFound))
	assert.Equal(t, "entity not found: card", ErrCardNotFound.Error())
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("card", "update", "database error", originalErr)

	assert.Equal(t,
		"update operation on card failed: database error: database connection failed",
		storeErr.Error())
	assert.ErrorIs(t, storeErr, originalErr)

	var target *StoreError
	assert.True(t, errors.As(fmt.Errorf("outer: %w", storeErr), &target))
	assert.Equal(t, "card", target.Entity)

	bare := NewStoreError("card", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on card failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
