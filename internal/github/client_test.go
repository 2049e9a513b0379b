package github

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

// newTestClient points a Client at a test server.
func newTestClient(baseURL string) *Client {
	c := NewClient(&http.Client{Timeout: 5 * time.Second})
	c.BaseURL = baseURL
	return c
}

func TestCreateInstallationToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/app/installations/999/access_tokens", r.URL.Path)
		require.Equal(t, "Bearer signed-assertion", r.Header.Get("Authorization"))
		require.Equal(t, machineManPreview, r.Header.Get("Accept"))
		require.Equal(t, httpx.UserAgent, r.Header.Get("User-Agent"))

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"token":"ghs_abc","expires_at":"2020-01-01T01:00:00Z","permissions":{"contents":"read"},"repository_selection":"all"}`))
	}))
	defer server.Close()

	token, err := newTestClient(server.URL).CreateInstallationToken(context.Background(), "signed-assertion", "999")
	require.NoError(t, err)
	require.Equal(t, "ghs_abc", token.Token)
	require.Equal(t, "2020-01-01T01:00:00Z", token.ExpiresAt)
	require.Equal(t, "all", token.RepositorySelection)
}

func TestCreateInstallationTokenExchangeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"bad credentials"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).CreateInstallationToken(context.Background(), "signed-assertion", "999")

	var exchangeErr *AuthExchangeError
	require.True(t, errors.As(err, &exchangeErr))
	require.Equal(t, http.StatusUnauthorized, exchangeErr.Status)
	require.Contains(t, exchangeErr.Body, "bad credentials")
}

func TestCreateInstallationTokenTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).CreateInstallationToken(context.Background(), "signed-assertion", "999")

	var transportErr *httpx.TransportError
	require.True(t, errors.As(err, &transportErr))
}

func TestCompare(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/repos/acme/api/compare/abc123...def456", r.URL.Path)
		require.Equal(t, "Bearer ghs_abc", r.Header.Get("Authorization"))

		w.Write([]byte(`{
			"url": "https://api.github.com/repos/acme/api/compare/abc123...def456",
			"html_url": "https://github.com/acme/api/compare/abc123...def456",
			"commits": [
				{
					"sha": "56b515000c090c0ba5f285c6e19f9451788413f1",
					"html_url": "https://github.com/acme/api/commit/56b5150",
					"commit": {"message": "Fix bug\n\nDetails here", "author": {"date": "2015-12-19T16:39:57-08:00"}},
					"author": {"id": 42, "login": "ghost"}
				}
			]
		}`))
	}))
	defer server.Close()

	cmp, err := newTestClient(server.URL).Compare(context.Background(), "ghs_abc", "acme", "api", "abc123", "def456")
	require.NoError(t, err)
	require.Equal(t, "https://github.com/acme/api/compare/abc123...def456", cmp.HTMLURL)
	require.Len(t, cmp.Commits, 1)
	require.Equal(t, int64(42), cmp.Commits[0].Author.ID)
	require.Equal(t, "ghost", cmp.Commits[0].Author.Login)
	require.Equal(t, "Fix bug\n\nDetails here", cmp.Commits[0].Commit.Message)
}

func TestCompareEmptyRangeIsValid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":"u","html_url":"h","commits":[]}`))
	}))
	defer server.Close()

	cmp, err := newTestClient(server.URL).Compare(context.Background(), "ghs_abc", "acme", "api", "abc123", "def456")
	require.NoError(t, err)
	require.Empty(t, cmp.Commits)
}

func TestCompareError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Compare(context.Background(), "ghs_abc", "acme", "api", "missing", "def456")

	var compareErr *CompareError
	require.True(t, errors.As(err, &compareErr))
	require.Equal(t, http.StatusNotFound, compareErr.Status)
}

func TestCompareTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	_, err := newTestClient(server.URL).Compare(context.Background(), "ghs_abc", "acme", "api", "abc123", "def456")

	var transportErr *httpx.TransportError
	require.True(t, errors.As(err, &transportErr))
}
