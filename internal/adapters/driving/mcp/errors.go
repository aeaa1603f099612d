// Package mcp provides an MCP (Model Context Protocol) server adapter for Opus.
// It lets AI assistants add tracks, run batch syncs and ask for similar tracks.
package mcp

import "errors"

var (
	// ErrMissingSearchService is returned when the search service is not provided.
	ErrMissingSearchService = errors.New("mcp: search service is required")

	// ErrMissingRecommendationService is returned when the recommendation service is not provided.
	ErrMissingRecommendationService = errors.New("mcp: recommendation service is required")
)
