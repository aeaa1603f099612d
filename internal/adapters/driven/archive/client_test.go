package archive

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/opus/internal/core/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL})
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/advancedsearch.php", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, `title:("Air") AND creator:("Bach")`, q.Get("q"))
		assert.Equal(t, "identifier,title,creator", q.Get("fl"))
		assert.Equal(t, "7", q.Get("rows"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "json", q.Get("output"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":{"docs":[
			{"identifier":"air1","title":"Air","creator":"Bach"},
			{"identifier":"air2","title":"Air","creator":["Bach","Stokowski"]}
		]}}`))
	}))

	hits, err := client.Search(context.Background(), `title:("Air") AND creator:("Bach")`, 7)
	require.NoError(t, err)
	assert.Equal(t, []domain.ArchiveHit{
		{Identifier: "air1", Title: "Air", Creator: "Bach"},
		{Identifier: "air2", Title: "Air", Creator: "Bach; Stokowski"},
	}, hits)
}

func TestClient_SearchServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))

	_, err := client.Search(context.Background(), "q", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClient_Metadata(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metadata/item one", r.URL.Path)
		_, _ = w.Write([]byte(`{"files":[{"name":"a.mp3","format":"VBR MP3"},{"name":"cover.jpg","format":"JPEG"}]}`))
	}))

	files, err := client.Metadata(context.Background(), "item one")
	require.NoError(t, err)
	assert.Equal(t, []domain.ArchiveFile{
		{Name: "a.mp3", Format: "VBR MP3"},
		{Name: "cover.jpg", Format: "JPEG"},
	}, files)
}

func TestClient_MetadataNotFound(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	_, err := client.Metadata(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrExternalService)
}

func TestClient_Download(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download/item/disc 1/track #1.mp3", r.URL.Path)
		assert.Equal(t, "/download/item/disc%201/track%20%231.mp3", r.URL.EscapedPath())
		_, _ = w.Write([]byte("audio"))
	}))

	var buf bytes.Buffer
	require.NoError(t, client.Download(context.Background(), "item", "disc 1/track #1.mp3", &buf))
	assert.Equal(t, "audio", buf.String())
}

func TestClient_DownloadTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)
	client := NewClient(Config{BaseURL: server.URL, DownloadTimeout: 50 * time.Millisecond})

	var buf bytes.Buffer
	err := client.Download(context.Background(), "item", "a.mp3", &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_TooManyRequestsSetsBackoff(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.Search(context.Background(), "q", 1)
	require.Error(t, err)

	client.limiter.mu.Lock()
	retryAt := client.limiter.retryAt
	client.limiter.mu.Unlock()
	assert.WithinDuration(t, time.Now().Add(120*time.Second), retryAt, 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, client.limiter.Wait(ctx), context.DeadlineExceeded)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{BaseURL: "https://example.test/"})
	assert.Equal(t, "https://example.test", c.baseURL)
	assert.Equal(t, domain.DefaultSearchTimeout, c.searchTimeout)
	assert.Equal(t, domain.DefaultMetadataTimeout, c.metadataTimeout)
	assert.Equal(t, domain.DefaultDownloadTimeout, c.downloadTimeout)
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "a%20b/c%3F.mp3", escapePath("a b/c?.mp3"))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 5*time.Second, parseRetryAfter("5"))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
