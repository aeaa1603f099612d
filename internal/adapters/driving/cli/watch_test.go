package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCmd_Use(t *testing.T) {
	assert.Equal(t, "watch <dir>", watchCmd.Use)
	assert.NotNil(t, watchCmd.Flags().Lookup("settle"))
}

func TestWatchCmd_MissingDirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, nil, "watch", filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "inbox dir error")
}

func TestWatchCmd_ServiceNotConfigured(t *testing.T) {
	old := syncService
	syncService = nil
	defer func() { syncService = old }()

	_, err := execute(t, nil, "watch", t.TempDir())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sync service not configured")
}
