package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("RejectsUnknownLevel", func(t *testing.T) {
		_, err := NewLogger(Options{Service: "storefront", Level: "loud"})
		require.Error(t, err)
	})

	t.Run("WritesRotatedFile", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "logs", "storefront.log")
		logger, err := NewLogger(Options{Service: "storefront", Env: "test", Level: "debug", File: file})
		require.NoError(t, err)

		logger.Info("boot")
		_ = logger.Sync()

		assert.FileExists(t, file)
	})
}

func TestWithTraceDefaultsUnknown(t *testing.T) {
	assert.NotPanics(t, func() {
		WithTrace(nil, "", "").Info("no_trace")
	})
}
