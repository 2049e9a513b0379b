// Package heroku looks up releases and slugs to resolve which commit range a
// deploy covered. The webhook only carries the new slug; the base revision
// comes from the previous release's slug.
package heroku

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/chdsbd/eve/internal/httpx"
)

const defaultBaseURL = "https://api.heroku.com"

// acceptV3 pins the Heroku Platform API version.
const acceptV3 = "application/vnd.heroku+json; version=3"

// rangeVersionDesc is the list-ordering header the platform expects on
// release lookups.
const rangeVersionDesc = "version; order=desc"

// ReleaseLookupError reports a non-success status from the platform API.
type ReleaseLookupError struct {
	Status int
	Body   string
}

func (e *ReleaseLookupError) Error() string {
	return fmt.Sprintf("release lookup returned status %d: %s", e.Status, e.Body)
}

// Release is the subset of a platform release the relay needs.
type Release struct {
	Slug ReleaseSlug `json:"slug"`
}

// ReleaseSlug points at the build artifact of a release.
type ReleaseSlug struct {
	ID string `json:"id"`
}

// Slug is a build artifact and the commit it was built from.
type Slug struct {
	Commit string `json:"commit"`
}

// Client calls the Heroku Platform API with a fixed account token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient builds a Heroku client against the public platform API.
func NewClient(token string, httpClient *http.Client) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		Token:      token,
		HTTPClient: httpClient,
	}
}

// GetRelease fetches one release of an app by version number.
// https://devcenter.heroku.com/articles/platform-api-reference#release-info
func (c *Client) GetRelease(ctx context.Context, app string, version int64) (Release, error) {
	var release Release
	url := fmt.Sprintf("%s/apps/%s/releases/%d", c.BaseURL, app, version)
	if err := c.get(ctx, url, rangeVersionDesc, &release); err != nil {
		return Release{}, err
	}

	return release, nil
}

// GetSlug fetches a slug by id to recover the commit it was built from.
// https://devcenter.heroku.com/articles/platform-api-reference#slug-info
func (c *Client) GetSlug(ctx context.Context, app, slugID string) (Slug, error) {
	var slug Slug
	url := fmt.Sprintf("%s/apps/%s/slugs/%s", c.BaseURL, app, slugID)
	if err := c.get(ctx, url, "", &slug); err != nil {
		return Slug{}, err
	}

	return slug, nil
}

func (c *Client) get(ctx context.Context, url, rangeHeader string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &httpx.TransportError{Op: "release lookup", Err: err}
	}

	req.Header.Set("User-Agent", httpx.UserAgent)
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", acceptV3)
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &httpx.TransportError{Op: "release lookup", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &ReleaseLookupError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ReleaseLookupError{Status: resp.StatusCode, Body: "undecodable release response: " + err.Error()}
	}

	return nil
}
