package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/opus/internal/adapters/driving/mcp"
	"github.com/custodia-labs/opus/internal/core/domain"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC.

Use --http to serve the streamable HTTP transport instead. The listen
address comes from --addr or the mcp.http_addr setting.

Examples:
  # Stdio mode (default)
  opus mcp serve

  # HTTP mode
  opus mcp serve --http --addr localhost:8765`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().Bool("http", false, "serve over HTTP instead of stdio")
	mcpServeCmd.Flags().String("addr", "", "HTTP listen address (default from settings)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	useHTTP, err := cmd.Flags().GetBool("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	ports := &mcp.Ports{
		Search:    searchService,
		Recommend: recommendationService,
		Ingest:    ingestionService,
		Sync:      syncService,
		Discover:  discoveryService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if !useHTTP {
		return server.Run(cmd.Context())
	}

	if addr == "" {
		addr, err = mcpAddrFromSettings()
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}

func mcpAddrFromSettings() (string, error) {
	if settingsService == nil {
		return domain.DefaultMCPHTTPAddr, nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.MCP.HTTPAddr == "" {
		return "", errors.New("mcp.http_addr is empty")
	}
	return settings.MCP.HTTPAddr, nil
}
