// package spotify is a thin bearer-authenticated client for the Spotify
// Web API's now-playing surface
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/kvasen/spotnow/internal/shared"
)

const (
	// BaseURL is the Spotify Web API root.
	BaseURL = "https://api.spotify.com/v1"

	// OpenPlaylistURL prefixes public playlist links.
	OpenPlaylistURL = "https://open.spotify.com/playlist/"

	// OpenLikedURL is the public link for the Liked Songs collection.
	OpenLikedURL = "https://open.spotify.com/collection/tracks"
)

// APIError is a non-2xx upstream response, carrying the status code and
// a truncated response body for diagnostics.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error: status %d: %s", e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// Client issues bearer-authenticated GET requests against the Spotify
// Web API. The zero-value timeouts of the default client bound both the
// connection and the full request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOpts contains configuration options for creating a Client.
type ClientOpts struct {
	HTTPClient *http.Client
	BaseURL    string // override in tests
}

// NewClient creates a Spotify Web API client.
func NewClient(opts ClientOpts) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 15 * time.Second}).DialContext,
			},
		}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}

	return &Client{baseURL: opts.BaseURL, httpClient: opts.HTTPClient}
}

// get performs an authenticated GET against the API and decodes the JSON
// response into result. Returns (false, nil) on a 204 without touching
// result; any other non-200 status yields an [APIError].
func (c *Client) get(ctx context.Context, token, endpoint string, result any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, &APIError{Status: resp.StatusCode, Body: shared.Snippet(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	return true, nil
}

// CurrentlyPlaying retrieves the currently playing track. Returns
// (nil, nil) when nothing is playing (204 No Content).
func (c *Client) CurrentlyPlaying(ctx context.Context, token string) (*CurrentlyPlaying, error) {
	var cur CurrentlyPlaying
	ok, err := c.get(ctx, token, "/me/player/currently-playing", &cur)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &cur, nil
}

// PlayerState retrieves the playback device state (shuffle, repeat).
func (c *Client) PlayerState(ctx context.Context, token string) (*PlayerState, error) {
	var state PlayerState
	ok, err := c.get(ctx, token, "/me/player", &state)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// Queue retrieves the user's play queue.
func (c *Client) Queue(ctx context.Context, token string) (*Queue, error) {
	var queue Queue
	ok, err := c.get(ctx, token, "/me/player/queue", &queue)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &queue, nil
}

// Playlist retrieves a playlist by ID.
func (c *Client) Playlist(ctx context.Context, token, playlistID string) (*Playlist, error) {
	var playlist Playlist
	endpoint := "/playlists/" + url.PathEscape(playlistID)
	ok, err := c.get(ctx, token, endpoint, &playlist)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &playlist, nil
}
