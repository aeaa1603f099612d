// Package spotify provides a driven.Catalog adapter for the Spotify Web API.
//
// Access tokens come from the client-credentials grant and are cached and
// refreshed by golang.org/x/oauth2.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
)

// Default endpoints and timeout.
const (
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultBaseURL  = "https://api.spotify.com"
	DefaultTimeout  = 15 * time.Second
)

// Ensure Client implements the interface.
var _ driven.Catalog = (*Client)(nil)

// Config holds configuration for the Spotify client.
type Config struct {
	// ClientID and ClientSecret identify the application. Both are required.
	ClientID     string
	ClientSecret string

	// TokenURL is the OAuth2 token endpoint (default: accounts.spotify.com).
	TokenURL string

	// BaseURL is the Web API root (default: https://api.spotify.com).
	BaseURL string

	// Timeout bounds each search call, token fetch included (default: 15s).
	Timeout time.Duration
}

// Client searches the Spotify catalogue.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewClient creates a new Spotify client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client id and secret are required", domain.ErrInvalidInput)
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	return &Client{
		httpClient: cc.Client(context.Background()),
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout:    cfg.Timeout,
	}, nil
}

// searchResponse is the /v1/search JSON envelope for type=track.
type searchResponse struct {
	Tracks struct {
		Items []trackItem `json:"items"`
	} `json:"tracks"`
}

type trackItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URI     string `json:"uri"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name string `json:"name"`
	} `json:"album"`
}

// SearchTracks runs a track search and returns hits in catalogue order.
func (c *Client) SearchTracks(ctx context.Context, query string, limit int) ([]domain.CatalogTrack, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/search?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return nil, fmt.Errorf("%w: spotify token request failed (status %d)",
				domain.ErrExternalService, retrieveErr.Response.StatusCode)
		}
		return nil, fmt.Errorf("%w: spotify search: %w", domain.ErrExternalService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: spotify error (status %d): %s",
			domain.ErrExternalService, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode spotify response: %w", domain.ErrExternalService, err)
	}

	tracks := make([]domain.CatalogTrack, 0, len(result.Tracks.Items))
	for _, item := range result.Tracks.Items {
		track := domain.CatalogTrack{
			ID:    item.ID,
			Name:  item.Name,
			Album: item.Album.Name,
			URI:   item.URI,
		}
		if len(item.Artists) > 0 {
			track.Artist = item.Artists[0].Name
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}
