package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	permalinkMarker = "/permalink/"
	videolinkMarker = "/videos/"

	// html5Modes asks the server for mp4/mp3/HLS renditions.
	html5Modes = "mp4_mp3_m3u8"
)

// Client talks to the Ubicast HTTP API of a single server instance. The
// oids it returns are only meaningful against that instance.
type Client struct {
	server string
	apiKey string
	http   *http.Client
}

// NewClient builds a client for the given server base URL. A trailing slash
// on the base URL is tolerated. verifyTLS false disables certificate checks.
func NewClient(server, apiKey string, timeout time.Duration, verifyTLS bool) *Client {
	return &Client{
		server: strings.TrimRight(server, "/"),
		apiKey: apiKey,
		http:   newHTTPClient(timeout, verifyTLS),
	}
}

// MediaInfo is the subset of the medias/get response this tool reads.
// Pointer fields distinguish "absent" from "empty".
type MediaInfo struct {
	OID   string  `json:"oid"`
	Title *string `json:"title"`
	Slug  *string `json:"slug"`
}

type mediaGetResponse struct {
	Info *MediaInfo `json:"info"`
}

// AudioTrack describes one audio stream of an asset. Language and Title are
// nil when the server omits them.
type AudioTrack struct {
	Language *string `json:"language"`
	Title    *string `json:"title"`
	URL      string  `json:"url"`
}

// TrackCatalog is the normalized view of the medias/modes response. Track
// order is the server's response order. It is rebuilt on every fetch and
// never cached; indices are not stable across fetches.
type TrackCatalog struct {
	VideoTracks []string
	AudioTracks []AudioTrack

	videoURLs map[string]string
}

// HasVideoTrack reports whether name is one of the catalog's video tracks.
func (c *TrackCatalog) HasVideoTrack(name string) bool {
	_, ok := c.videoURLs[name]
	if ok {
		return true
	}
	for _, track := range c.VideoTracks {
		if track == name {
			return true
		}
	}
	return false
}

// VideoURL returns the stream URL for a named video track.
func (c *TrackCatalog) VideoURL(name string) (string, bool) {
	u, ok := c.videoURLs[name]
	return u, ok && u != ""
}

// AudioURL returns the stream URL for the audio track at index.
func (c *TrackCatalog) AudioURL(index int) (string, bool) {
	if index < 0 || index >= len(c.AudioTracks) {
		return "", false
	}
	u := c.AudioTracks[index].URL
	return u, u != ""
}

type modesResponse struct {
	Names []string `json:"names"`
	Audio *struct {
		Tracks []AudioTrack `json:"tracks"`
	} `json:"audio"`
}

// ResolveOID turns a user-supplied URL into the server's object id.
// Permalinks embed the oid directly and resolve without a network call;
// videolinks carry a slug that needs one lookup against the server.
func (c *Client) ResolveOID(ctx context.Context, rawURL string) (string, error) {
	switch {
	case strings.Contains(rawURL, permalinkMarker):
		return oidFromPermalink(rawURL), nil
	case strings.Contains(rawURL, videolinkMarker):
		return c.oidFromVideolink(ctx, rawURL)
	default:
		return "", categoryErrorf(CategoryUnrecognizedURL, "unrecognized URL %q: expected a /permalink/ or /videos/ link", rawURL)
	}
}

func oidFromPermalink(rawURL string) string {
	idx := strings.LastIndex(rawURL, permalinkMarker)
	oid := rawURL[idx+len(permalinkMarker):]
	oid = strings.TrimSuffix(oid, "/")
	if i := strings.IndexByte(oid, '/'); i >= 0 {
		oid = oid[:i]
	}
	return oid
}

func slugFromVideolink(rawURL string) string {
	idx := strings.LastIndex(rawURL, videolinkMarker)
	slug := rawURL[idx+len(videolinkMarker):]
	slug = strings.TrimSuffix(slug, "/")
	if i := strings.IndexByte(slug, '/'); i >= 0 {
		slug = slug[:i]
	}
	return slug
}

func (c *Client) oidFromVideolink(ctx context.Context, rawURL string) (string, error) {
	body, err := c.get(ctx, "/api/v2/medias/get/", url.Values{"slug": {slugFromVideolink(rawURL)}})
	if err != nil {
		return "", err
	}

	var parsed mediaGetResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", wrapCategory(CategoryMalformedResponse, fmt.Errorf("decoding media lookup response: %w", err))
	}
	if parsed.Info == nil || parsed.Info.OID == "" {
		return "", categoryErrorf(CategoryMalformedResponse, "media lookup response has no info.oid")
	}
	return parsed.Info.OID, nil
}

// GetMediaInfo fetches title and related metadata for an oid.
func (c *Client) GetMediaInfo(ctx context.Context, oid string) (*MediaInfo, error) {
	body, err := c.get(ctx, "/api/v2/medias/get/", url.Values{"oid": {oid}})
	if err != nil {
		return nil, err
	}

	var parsed mediaGetResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, wrapCategory(CategoryMalformedResponse, fmt.Errorf("decoding media info response: %w", err))
	}
	if parsed.Info == nil || parsed.Info.OID == "" {
		return nil, categoryErrorf(CategoryMalformedResponse, "media info response has no info.oid")
	}
	return parsed.Info, nil
}

// FetchTracks queries the modes endpoint and normalizes the answer.
// The server lists "audio" among the video track names as a pseudo-track;
// it is filtered out here. A null or absent audio object means no audio
// tracks, not an error.
func (c *Client) FetchTracks(ctx context.Context, oid string) (*TrackCatalog, error) {
	body, err := c.get(ctx, "/api/v2/medias/modes/", url.Values{"oid": {oid}, "html5": {html5Modes}})
	if err != nil {
		return nil, err
	}

	var parsed modesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, wrapCategory(CategoryMalformedResponse, fmt.Errorf("decoding modes response: %w", err))
	}

	// Track stream URLs live under dynamic top-level keys named after each
	// track, as {"resource": {"url": ...}} objects.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapCategory(CategoryMalformedResponse, fmt.Errorf("decoding modes response: %w", err))
	}

	catalog := &TrackCatalog{videoURLs: make(map[string]string)}
	for _, name := range parsed.Names {
		if name == "audio" {
			continue
		}
		catalog.VideoTracks = append(catalog.VideoTracks, name)
		catalog.videoURLs[name] = resourceURL(raw[name])
	}
	if parsed.Audio != nil {
		catalog.AudioTracks = parsed.Audio.Tracks
	}
	return catalog, nil
}

func resourceURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var mode struct {
		Resource *struct {
			URL string `json:"url"`
		} `json:"resource"`
	}
	if err := json.Unmarshal(raw, &mode); err != nil || mode.Resource == nil {
		return ""
	}
	return mode.Resource.URL
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)
	endpoint := c.server + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, wrapCategory(CategoryUnrecognizedURL, fmt.Errorf("building request for %s: %w", path, err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapCategory(CategoryServerUnreachable, fmt.Errorf("ubicast server unreachable: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapCategory(CategoryServerUnreachable, fmt.Errorf("reading response from %s: %w", path, err))
	}
	return body, nil
}
