package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotConfigured", ErrNotConfigured},
		{"ErrSourceNotFound", ErrSourceNotFound},
		{"ErrExternalService", ErrExternalService},
		{"ErrClassificationRejected", ErrClassificationRejected},
		{"ErrPersistence", ErrPersistence},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Wrapping(t *testing.T) {
	wrapped := fmt.Errorf("insert track: %w", ErrPersistence)

	assert.True(t, errors.Is(wrapped, ErrPersistence))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "insert track: persistence failure", wrapped.Error())
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}
