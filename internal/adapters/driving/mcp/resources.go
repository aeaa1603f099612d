package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/opus/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Opus resources.
	uriScheme = "opus://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Track store statistics",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "tracks/{trackId}/similar",
		Name:        "similar-tracks",
		Description: "The five tracks most similar to a stored track",
		MIMEType:    "application/json",
	}, s.handleSimilarResource)
}

// handleStatsResource returns store counters.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Search.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	return jsonResource(req.Params.URI, stats)
}

// handleSimilarResource returns the default recommendation list for a track.
func (s *Server) handleSimilarResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract trackId from URI: opus://tracks/{trackId}/similar
	trackID := extractTrackID(req.Params.URI)
	if trackID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	recs, err := s.ports.Recommend.Recommend(ctx, trackID, domain.RecommendOptions{TopK: domain.DefaultTopK})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("recommending: %w", err)
	}
	return jsonResource(req.Params.URI, recs)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractTrackID extracts the track ID from a URI like opus://tracks/{trackId}/similar.
func extractTrackID(uri string) string {
	const prefix = uriScheme + "tracks/"
	const suffix = "/similar"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return ""
	}

	id := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
