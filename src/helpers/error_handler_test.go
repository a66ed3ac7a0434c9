package helpers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewNetworkError("report fetch failed", cause)

	assert.Equal(t, "report fetch failed: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestErrorKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("load: %w", NewConfigurationError("bad port", nil))

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "bad port", cfgErr.Message)

	var storeErr *StorageError
	assert.False(t, errors.As(err, &storeErr))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(fmt.Errorf("wrap: %w", NewValidationError("empty key"))))
	assert.False(t, IsValidation(NewFeedError("no endpoint", nil)))
	assert.False(t, IsValidation(nil))
}
