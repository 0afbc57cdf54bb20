// ABOUTME: Tests for logger construction
// ABOUTME: Checks level parsing and format selection
package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	logger, err := New("warn", FormatConsole)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))

	logger, err = New("debug", FormatJSON)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("loud", FormatConsole)
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)

	assert.Panics(t, func() { Must("loud", "") })
}
