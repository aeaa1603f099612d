// Package archive provides a driven.Archive adapter for the Internet Archive.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/opus/internal/core/domain"
	"github.com/custodia-labs/opus/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.Archive = (*Client)(nil)

// Config holds configuration for the archive client.
type Config struct {
	// BaseURL is the archive root (default: https://archive.org).
	BaseURL string

	// RatePerSecond throttles all requests made by this client. Zero disables it.
	RatePerSecond float64

	// SearchTimeout bounds an advanced search call (default: 15s).
	SearchTimeout time.Duration

	// MetadataTimeout bounds an item metadata call (default: 15s).
	MetadataTimeout time.Duration

	// DownloadTimeout bounds a file download, body included (default: 30s).
	DownloadTimeout time.Duration
}

// Client talks to the Internet Archive advanced search, metadata and
// download endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *RateLimiter

	searchTimeout   time.Duration
	metadataTimeout time.Duration
	downloadTimeout time.Duration
}

// NewClient creates a new archive client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultArchiveBaseURL
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = domain.DefaultSearchTimeout
	}
	if cfg.MetadataTimeout <= 0 {
		cfg.MetadataTimeout = domain.DefaultMetadataTimeout
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = domain.DefaultDownloadTimeout
	}

	return &Client{
		httpClient:      &http.Client{},
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		limiter:         NewRateLimiter(cfg.RatePerSecond),
		searchTimeout:   cfg.SearchTimeout,
		metadataTimeout: cfg.MetadataTimeout,
		downloadTimeout: cfg.DownloadTimeout,
	}
}

// searchResponse is the advancedsearch.php JSON envelope.
type searchResponse struct {
	Response struct {
		Docs []searchDoc `json:"docs"`
	} `json:"response"`
}

type searchDoc struct {
	Identifier string    `json:"identifier"`
	Title      textField `json:"title"`
	Creator    textField `json:"creator"`
}

// metadataResponse is the /metadata/<id> JSON document.
type metadataResponse struct {
	Files []struct {
		Name   string `json:"name"`
		Format string `json:"format"`
	} `json:"files"`
}

// textField accepts either a string or an array of strings. Archive items
// with several creators return an array.
type textField string

func (f *textField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = textField(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("archive: unexpected text field %s", string(data))
	}
	*f = textField(strings.Join(list, "; "))
	return nil
}

// Search runs an advanced search and returns hits in archive order.
func (c *Client) Search(ctx context.Context, query string, rows int) ([]domain.ArchiveHit, error) {
	ctx, cancel := context.WithTimeout(ctx, c.searchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("fl", "identifier,title,creator")
	params.Set("rows", strconv.Itoa(rows))
	params.Set("page", "1")
	params.Set("output", "json")

	var result searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/advancedsearch.php?"+params.Encode(), &result); err != nil {
		return nil, fmt.Errorf("archive search: %w", err)
	}

	hits := make([]domain.ArchiveHit, 0, len(result.Response.Docs))
	for _, doc := range result.Response.Docs {
		hits = append(hits, domain.ArchiveHit{
			Identifier: doc.Identifier,
			Title:      string(doc.Title),
			Creator:    string(doc.Creator),
		})
	}
	return hits, nil
}

// Metadata lists the files of an archive item.
func (c *Client) Metadata(ctx context.Context, identifier string) ([]domain.ArchiveFile, error) {
	ctx, cancel := context.WithTimeout(ctx, c.metadataTimeout)
	defer cancel()

	var result metadataResponse
	if err := c.getJSON(ctx, c.baseURL+"/metadata/"+url.PathEscape(identifier), &result); err != nil {
		return nil, fmt.Errorf("archive metadata %s: %w", identifier, err)
	}

	files := make([]domain.ArchiveFile, 0, len(result.Files))
	for _, f := range result.Files {
		files = append(files, domain.ArchiveFile{Name: f.Name, Format: f.Format})
	}
	return files, nil
}

// Download streams one file of an item into w.
func (c *Client) Download(ctx context.Context, identifier, filename string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	resp, err := c.get(ctx, c.baseURL+"/download/"+url.PathEscape(identifier)+"/"+escapePath(filename))
	if err != nil {
		return fmt.Errorf("archive download %s/%s: %w", identifier, filename, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("archive download %s/%s: %w", identifier, filename, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, dst any) error {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// get performs a throttled GET and returns the response if it is a 200.
// The caller closes the body.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", domain.ErrExternalService, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			c.limiter.RecordRateLimitError(parseRetryAfter(resp.Header.Get("Retry-After")))
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: archive error (status %d): %s",
			domain.ErrExternalService, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// escapePath escapes each segment of a file path inside an item, keeping
// the separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
