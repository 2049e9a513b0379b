// Package github authenticates as a GitHub App installation and fetches
// commit comparisons for deployed revision ranges.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/chdsbd/eve/internal/httpx"
)

const defaultBaseURL = "https://api.github.com"

// machineManPreview is the Accept header GitHub requires for app
// installation endpoints. Held as configuration so it can be bumped when
// the preview graduates.
const machineManPreview = "application/vnd.github.machine-man-preview+json"

// InstallationToken is the scoped, time-limited credential returned by the
// access-token exchange. It is used once per pipeline run and discarded.
type InstallationToken struct {
	Token               string          `json:"token"`
	ExpiresAt           string          `json:"expires_at"`
	Permissions         json.RawMessage `json:"permissions"`
	RepositorySelection string          `json:"repository_selection"`
}

// Actor is the GitHub account attached to a commit.
type Actor struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	HTMLURL   string `json:"html_url"`
	AvatarURL string `json:"avatar_url"`
}

// CommitAuthor carries the authored timestamp as the raw RFC3339 string the
// API returns; parsing is left to the aggregation step.
type CommitAuthor struct {
	Date string `json:"date"`
}

// CommitDetail is the git-level part of a comparison commit.
type CommitDetail struct {
	Message string       `json:"message"`
	URL     string       `json:"url"`
	Author  CommitAuthor `json:"author"`
}

// CommitNode is one commit in a comparison, in the host's native order.
type CommitNode struct {
	SHA     string       `json:"sha"`
	Commit  CommitDetail `json:"commit"`
	Author  Actor        `json:"author"`
	HTMLURL string       `json:"html_url"`
}

// Comparison is the compare-view between two revisions.
type Comparison struct {
	URL     string       `json:"url"`
	HTMLURL string       `json:"html_url"`
	Commits []CommitNode `json:"commits"`
}

// Client calls the GitHub REST API. BaseURL and Accept are overridable for
// tests and for API compatibility changes.
type Client struct {
	BaseURL    string
	Accept     string
	HTTPClient *http.Client
}

// NewClient builds a GitHub client against the public API.
func NewClient(httpClient *http.Client) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		Accept:     machineManPreview,
		HTTPClient: httpClient,
	}
}

// CreateInstallationToken exchanges a signed app assertion for an
// installation access token. One call, no retry; a failure fails the run.
// https://docs.github.com/rest/apps/apps#create-an-installation-access-token-for-an-app
func (c *Client) CreateInstallationToken(ctx context.Context, assertion, installID string) (InstallationToken, error) {
	url := fmt.Sprintf("%s/app/installations/%s/access_tokens", c.BaseURL, installID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return InstallationToken{}, &httpx.TransportError{Op: "access token exchange", Err: err}
	}

	req.Header.Set("User-Agent", httpx.UserAgent)
	req.Header.Set("Authorization", "Bearer "+assertion)
	req.Header.Set("Accept", c.Accept)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return InstallationToken{}, &httpx.TransportError{Op: "access token exchange", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return InstallationToken{}, &AuthExchangeError{Status: resp.StatusCode, Body: string(body)}
	}

	var token InstallationToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return InstallationToken{}, &AuthExchangeError{Status: resp.StatusCode, Body: "undecodable token response: " + err.Error()}
	}

	return token, nil
}

// Compare fetches the commits reachable from head but not from base, in the
// host's native chronological order. An empty commit list is a valid result.
// https://docs.github.com/rest/commits/commits#compare-two-commits
func (c *Client) Compare(ctx context.Context, token, org, repo, base, head string) (Comparison, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/compare/%s...%s", c.BaseURL, org, repo, base, head)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Comparison{}, &httpx.TransportError{Op: "commit comparison", Err: err}
	}

	req.Header.Set("User-Agent", httpx.UserAgent)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Comparison{}, &httpx.TransportError{Op: "commit comparison", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return Comparison{}, &CompareError{Status: resp.StatusCode, Body: string(body)}
	}

	var cmp Comparison
	if err := json.NewDecoder(resp.Body).Decode(&cmp); err != nil {
		return Comparison{}, &CompareError{Status: resp.StatusCode, Body: "undecodable comparison response: " + err.Error()}
	}

	return cmp, nil
}
