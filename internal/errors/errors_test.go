package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSherpaError_Error(t *testing.T) {
	err := New(CodeConfigInvalid, "missing agent name")
	assert.Equal(t, "[CONFIG_INVALID] missing agent name", err.Error())
}

func TestSherpaError_Wrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := Wrap(CodeProviderError, "API call failed", inner)

	assert.Equal(t, "[PROVIDER_ERROR] API call failed: connection refused", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestSherpaError_WithSuggestion(t *testing.T) {
	err := New(CodeAPIKeyMissing, "OPENAI_API_KEY not set").
		WithSuggestion("Set OPENAI_API_KEY or add api_key to sherpa.yaml")

	assert.Equal(t, "Set OPENAI_API_KEY or add api_key to sherpa.yaml", Suggestion(err))
}

func TestSherpaError_ErrorsAs(t *testing.T) {
	err := fmt.Errorf("restore: %w", Newf(CodeDecodeFailed, "field %q missing", "events"))

	var se *SherpaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CodeDecodeFailed, se.Code)
	assert.Equal(t, CodeDecodeFailed, AsCode(err))
}

func TestSherpaError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("context: %w", New(CodeNoTaskContext, "store has no task or result events"))

	assert.ErrorIs(t, err, ErrNoTaskContext)
	assert.NotErrorIs(t, err, ErrDecodeFailed)
}

func TestAsCode_NonSherpaError(t *testing.T) {
	err := fmt.Errorf("plain error")
	assert.Equal(t, "", AsCode(err))
	assert.Equal(t, "", Suggestion(err))
}
