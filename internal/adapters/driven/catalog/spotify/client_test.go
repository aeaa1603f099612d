package spotify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/opus/internal/core/domain"
)

// newTestClient serves a token endpoint and the given search handler.
func newTestClient(t *testing.T, tokenCalls *atomic.Int32, search http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		id, secret, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", id)
		assert.Equal(t, "secret", secret)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/search", search)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     server.URL + "/api/token",
		BaseURL:      server.URL,
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{ClientID: "client"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewClient(Config{ClientSecret: "secret"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_SearchTracks(t *testing.T) {
	var tokenCalls atomic.Int32
	client := newTestClient(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "gymnopédie satie", q.Get("q"))
		assert.Equal(t, "track", q.Get("type"))
		assert.Equal(t, "3", q.Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tracks":{"items":[
			{"id":"sp1","name":"Gymnopédie No.1","uri":"spotify:track:sp1",
			 "artists":[{"name":"Erik Satie"},{"name":"Pascal Rogé"}],"album":{"name":"Satie: Piano Works"}},
			{"id":"sp2","name":"Untitled","artists":[]}
		]}}`))
	})

	tracks, err := client.SearchTracks(context.Background(), "gymnopédie satie", 3)
	require.NoError(t, err)
	assert.Equal(t, []domain.CatalogTrack{
		{ID: "sp1", Name: "Gymnopédie No.1", Artist: "Erik Satie", Album: "Satie: Piano Works", URI: "spotify:track:sp1"},
		{ID: "sp2", Name: "Untitled"},
	}, tracks)
}

func TestClient_SearchTracksReusesToken(t *testing.T) {
	var tokenCalls atomic.Int32
	client := newTestClient(t, &tokenCalls, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tracks":{"items":[]}}`))
	})

	for range 3 {
		tracks, err := client.SearchTracks(context.Background(), "bach", 5)
		require.NoError(t, err)
		assert.Empty(t, tracks)
	}
	assert.Equal(t, int32(1), tokenCalls.Load())
}

func TestClient_SearchTracksServerError(t *testing.T) {
	var tokenCalls atomic.Int32
	client := newTestClient(t, &tokenCalls, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	})

	_, err := client.SearchTracks(context.Background(), "bach", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Contains(t, err.Error(), "status 429")
}

func TestClient_SearchTracksTokenRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	})
	mux.HandleFunc("/v1/search", func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("search must not be called without a token")
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		ClientID:     "client",
		ClientSecret: "wrong",
		TokenURL:     server.URL + "/api/token",
		BaseURL:      server.URL,
	})
	require.NoError(t, err)

	_, err = client.SearchTracks(context.Background(), "bach", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalService)
	assert.Contains(t, err.Error(), "token")
}

func TestClient_SearchTracksBadJSON(t *testing.T) {
	var tokenCalls atomic.Int32
	client := newTestClient(t, &tokenCalls, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tracks":`))
	})

	_, err := client.SearchTracks(context.Background(), "bach", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalService)
}
