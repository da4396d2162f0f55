package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionNotFoundError(t *testing.T) {
	t.Parallel()

	err := NewActionNotFoundError("/unmapped/path")

	assert.Equal(t, "no action found for path /unmapped/path", err.Error())
	assert.Equal(t, "/unmapped/path", err.Path)
}

func TestActionNotFoundError_Is(t *testing.T) {
	t.Parallel()

	err := NewActionNotFoundError("/a")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, err.Is(&ActionNotFoundError{}))
	assert.False(t, err.Is(&StoreNotFoundError{}))
	assert.False(t, err.Is(errors.New("other error")))
}

func TestStoreNotFoundError(t *testing.T) {
	t.Parallel()

	err := NewStoreNotFoundError("/missing")

	assert.Equal(t, "no store found for path /missing", err.Error())
	assert.Equal(t, "/missing", err.Path)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, err.Is(&ActionNotFoundError{}))
}

func TestStateMismatchError(t *testing.T) {
	t.Parallel()

	err := NewStateMismatchError(3, 2)

	assert.Equal(t, 3, err.Want)
	assert.Equal(t, 2, err.Got)
	assert.Contains(t, err.Error(), "registry has 3 stores")
	assert.Contains(t, err.Error(), "snapshot has 2 entries")
	assert.True(t, errors.Is(err, ErrStateMismatch))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, WrapError(nil, "context"))

	base := errors.New("base error")
	wrapped := WrapError(base, "loading snapshot")

	assert.Equal(t, "loading snapshot: base error", wrapped.Error())
	assert.True(t, errors.Is(wrapped, base))
}

func TestNotFoundErrorsAsTargets(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("dispatch failed: %w", NewActionNotFoundError("/x"))

	var anfe *ActionNotFoundError
	assert.True(t, errors.As(wrapped, &anfe))
	assert.Equal(t, "/x", anfe.Path)
}
