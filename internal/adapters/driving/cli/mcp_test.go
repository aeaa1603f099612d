package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/opus/internal/adapters/driving/mcp"
	"github.com/custodia-labs/opus/internal/core/domain"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	httpFlag := mcpServeCmd.Flags().Lookup("http")
	require.NotNil(t, httpFlag)
	assert.Equal(t, "false", httpFlag.DefValue)

	addrFlag := mcpServeCmd.Flags().Lookup("addr")
	require.NotNil(t, addrFlag)
	assert.Empty(t, addrFlag.DefValue)
}

func TestMCPServeCmd_RequiresServices(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	searchService = nil

	_, err := execute(t, nil, "mcp", "serve")

	require.Error(t, err)
	assert.ErrorIs(t, err, mcp.ErrMissingSearchService)
}

func TestMCPAddrFromSettings(t *testing.T) {
	t.Run("defaults without settings service", func(t *testing.T) {
		old := settingsService
		settingsService = nil
		defer func() { settingsService = old }()

		addr, err := mcpAddrFromSettings()
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultMCPHTTPAddr, addr)
	})

	t.Run("reads configured address", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		require.NoError(t, ts.config.Set("mcp.http_addr", "127.0.0.1:9999"))

		addr, err := mcpAddrFromSettings()
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9999", addr)
	})
}
