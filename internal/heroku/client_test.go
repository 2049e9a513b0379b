package heroku

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chdsbd/eve/internal/httpx"
)

func newTestClient(baseURL string) *Client {
	c := NewClient("heroku-token", &http.Client{Timeout: 5 * time.Second})
	c.BaseURL = baseURL
	return c
}

func TestGetRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/apps/acme-api/releases/41", r.URL.Path)
		require.Equal(t, "Bearer heroku-token", r.Header.Get("Authorization"))
		require.Equal(t, acceptV3, r.Header.Get("Accept"))
		require.Equal(t, rangeVersionDesc, r.Header.Get("Range"))

		w.Write([]byte(`{"slug":{"id":"slug-41"}}`))
	}))
	defer server.Close()

	release, err := newTestClient(server.URL).GetRelease(context.Background(), "acme-api", 41)
	require.NoError(t, err)
	require.Equal(t, "slug-41", release.Slug.ID)
}

func TestGetSlug(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/apps/acme-api/slugs/slug-41", r.URL.Path)
		require.Empty(t, r.Header.Get("Range"))

		w.Write([]byte(`{"commit":"7c68a71a87d12cc2404aed192840674af84f3df4"}`))
	}))
	defer server.Close()

	slug, err := newTestClient(server.URL).GetSlug(context.Background(), "acme-api", "slug-41")
	require.NoError(t, err)
	require.Equal(t, "7c68a71a87d12cc2404aed192840674af84f3df4", slug.Commit)
}

func TestReleaseLookupError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"id":"not_found"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetRelease(context.Background(), "acme-api", 999)

	var lookupErr *ReleaseLookupError
	require.True(t, errors.As(err, &lookupErr))
	require.Equal(t, http.StatusNotFound, lookupErr.Status)
}

func TestReleaseLookupTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).GetSlug(context.Background(), "acme-api", "slug-41")

	var transportErr *httpx.TransportError
	require.True(t, errors.As(err, &transportErr))
}
