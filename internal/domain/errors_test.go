package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrCatalogUnavailable(cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeCatalogUnavailable))
	assert.Contains(t, err.Error(), "connection refused")

	wrapped := fmt.Errorf("load view: %w", err)
	assert.True(t, IsCode(wrapped, CodeCatalogUnavailable))
	assert.False(t, IsCode(wrapped, CodeRelationStoreUnavailable))
}

func TestErrDanglingReference(t *testing.T) {
	err := ErrDanglingReference("alice", "ghost-id")
	assert.True(t, IsCode(err, CodeDanglingReference))
	assert.Equal(t, "ghost-id", err.(*AppError).Meta["event_id"])
	assert.False(t, IsCode(errors.New("plain"), CodeDanglingReference))
}
