package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// TrackInput is the schema for a candidate track.
type TrackInput struct {
	TrackID  string `json:"track_id" jsonschema:"unique external identifier of the track"`
	Name     string `json:"name" jsonschema:"track title"`
	Composer string `json:"composer,omitempty" jsonschema:"composer or performing artist"`
}

// AddTrackOutput is the output schema for the add_track tool.
type AddTrackOutput struct {
	TrackID string `json:"track_id"`
	Outcome string `json:"outcome"`
	Present bool   `json:"present"`
	Message string `json:"message,omitempty"`
}

// SyncInput is the input schema for the sync tool.
type SyncInput struct {
	Tracks []TrackInput `json:"tracks" jsonschema:"tracks to ingest in order"`
}

// SyncOutput is the output schema for the sync tool.
type SyncOutput struct {
	RunID          string `json:"run_id,omitempty"`
	Added          int    `json:"added"`
	Existing       int    `json:"existing"`
	Skipped        int    `json:"skipped"`
	TotalProcessed int    `json:"total_processed"`
}

// DiscoverInput is the input schema for the discover tool.
type DiscoverInput struct {
	Query string `json:"query" jsonschema:"catalogue search text, e.g. a title and composer"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of catalogue hits (default 5, at most 50)"`
	Sync  bool   `json:"sync,omitempty" jsonschema:"ingest the hits after searching"`
}

// CatalogTrackOutput represents one catalogue hit.
type CatalogTrackOutput struct {
	TrackID string `json:"track_id"`
	Name    string `json:"name"`
	Artist  string `json:"artist"`
	Album   string `json:"album,omitempty"`
}

// DiscoverOutput is the output schema for the discover tool. Report is set
// only when the hits were synced.
type DiscoverOutput struct {
	Results []CatalogTrackOutput `json:"results"`
	Count   int                  `json:"count"`
	Report  *SyncOutput          `json:"report,omitempty"`
}

// RecommendInput is the input schema for the recommend tool.
type RecommendInput struct {
	TrackID         string `json:"track_id" jsonschema:"external identifier of the query track"`
	TopK            *int   `json:"top_k,omitempty" jsonschema:"maximum number of results (default 5)"`
	ExcludeFallback bool   `json:"exclude_fallback,omitempty" jsonschema:"skip tracks whose embedding is a low-fidelity fallback"`
}

// RecommendOutput is the output schema for the recommend tool.
type RecommendOutput struct {
	Results []RecommendationOutput `json:"results"`
	Count   int                    `json:"count"`
}

// RecommendationOutput represents a single ranked track.
type RecommendationOutput struct {
	TrackID         string  `json:"track_id"`
	Name            string  `json:"name"`
	Composer        string  `json:"composer"`
	SimilarityScore float64 `json:"similarity_score"`
	Fallback        bool    `json:"fallback,omitempty"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text matched against track names and composers"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []TrackOutput `json:"results"`
	Count   int           `json:"count"`
}

// TrackOutput represents a stored track.
type TrackOutput struct {
	TrackID  string `json:"track_id"`
	Name     string `json:"name"`
	Composer string `json:"composer"`
}

// StatsInput is the (empty) input schema for the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	TrackCount             int `json:"track_count"`
	FallbackEmbeddingCount int `json:"fallback_embedding_count"`
}

// registerTools registers all tool handlers with the MCP server.
// Write tools are only offered when their ports are configured.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommend",
		Description: "Find stored tracks that sound most similar to a given track",
	}, s.handleRecommend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Look up stored tracks by name or composer",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report how many tracks are stored",
	}, s.handleStats)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "add_track",
			Description: "Classify, fetch audio for and store one track",
		}, s.handleAddTrack)
	}

	if s.ports.Sync != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "sync",
			Description: "Ingest a batch of tracks, skipping those already stored",
		}, s.handleSync)
	}

	if s.ports.Discover != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "discover",
			Description: "Search the music catalogue for tracks and optionally ingest them",
		}, s.handleDiscover)
	}
}

// handleAddTrack handles the add_track tool invocation.
func (s *Server) handleAddTrack(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TrackInput,
) (*mcp.CallToolResult, AddTrackOutput, error) {
	if s.ports.Ingest == nil {
		return nil, AddTrackOutput{}, errors.New("ingestion is not configured")
	}

	outcome, err := s.ports.Ingest.AddTrack(ctx, toDomainInput(input))
	if err != nil {
		return nil, AddTrackOutput{}, err
	}

	output := AddTrackOutput{
		TrackID: input.TrackID,
		Outcome: outcome.String(),
		Present: outcome.Present(),
	}
	if outcome == domain.OutcomeRejected {
		output.Message = domain.ErrClassificationRejected.Error()
	}
	return nil, output, nil
}

// handleSync handles the sync tool invocation.
func (s *Server) handleSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	if s.ports.Sync == nil {
		return nil, SyncOutput{}, errors.New("sync is not configured")
	}

	tracks := make([]domain.TrackInput, len(input.Tracks))
	for i, t := range input.Tracks {
		tracks[i] = toDomainInput(t)
	}

	report, err := s.ports.Sync.Sync(ctx, tracks)
	if err != nil {
		return nil, SyncOutput{}, err
	}

	return nil, toSyncOutput(report), nil
}

// handleDiscover handles the discover tool invocation.
func (s *Server) handleDiscover(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DiscoverInput,
) (*mcp.CallToolResult, DiscoverOutput, error) {
	if s.ports.Discover == nil {
		return nil, DiscoverOutput{}, errors.New("catalogue discovery is not configured")
	}

	var (
		tracks []domain.CatalogTrack
		report *SyncOutput
	)
	if input.Sync {
		result, err := s.ports.Discover.DiscoverAndSync(ctx, input.Query, input.Limit)
		if err != nil {
			return nil, DiscoverOutput{}, err
		}
		tracks = result.Tracks
		out := toSyncOutput(result.Report)
		report = &out
	} else {
		var err error
		tracks, err = s.ports.Discover.Discover(ctx, input.Query, input.Limit)
		if err != nil {
			return nil, DiscoverOutput{}, err
		}
	}

	output := DiscoverOutput{
		Results: make([]CatalogTrackOutput, len(tracks)),
		Count:   len(tracks),
		Report:  report,
	}
	for i, t := range tracks {
		output.Results[i] = CatalogTrackOutput{
			TrackID: t.ID,
			Name:    t.Name,
			Artist:  t.Artist,
			Album:   t.Album,
		}
	}
	return nil, output, nil
}

// handleRecommend handles the recommend tool invocation.
func (s *Server) handleRecommend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecommendInput,
) (*mcp.CallToolResult, RecommendOutput, error) {
	topK := domain.DefaultTopK
	if input.TopK != nil {
		topK = *input.TopK
	}

	recs, err := s.ports.Recommend.Recommend(ctx, input.TrackID, domain.RecommendOptions{
		TopK:            topK,
		ExcludeFallback: input.ExcludeFallback,
	})
	if err != nil {
		return nil, RecommendOutput{}, err
	}

	output := RecommendOutput{
		Results: make([]RecommendationOutput, len(recs)),
		Count:   len(recs),
	}
	for i, r := range recs {
		output.Results[i] = RecommendationOutput{
			TrackID:         r.ExternalID,
			Name:            r.Name,
			Composer:        r.Composer,
			SimilarityScore: r.Score,
			Fallback:        r.Fallback,
		}
	}
	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit == 0 {
		limit = domain.DefaultSearchLimit
	}

	tracks, err := s.ports.Search.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]TrackOutput, len(tracks)),
		Count:   len(tracks),
	}
	for i, t := range tracks {
		output.Results[i] = TrackOutput{
			TrackID:  t.ExternalID,
			Name:     t.Name,
			Composer: t.Composer,
		}
	}
	return nil, output, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Search.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{
		TrackCount:             stats.Tracks,
		FallbackEmbeddingCount: stats.FallbackEmbeddings,
	}, nil
}

func toDomainInput(t TrackInput) domain.TrackInput {
	return domain.TrackInput{
		ExternalID: t.TrackID,
		Name:       t.Name,
		Composer:   t.Composer,
	}
}

func toSyncOutput(report domain.SyncReport) SyncOutput {
	return SyncOutput{
		RunID:          report.RunID,
		Added:          report.Added,
		Existing:       report.Existing,
		Skipped:        report.Skipped,
		TotalProcessed: report.TotalProcessed,
	}
}
