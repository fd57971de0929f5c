// Package itunes queries the iTunes Search API for music releases.
package itunes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediatorr/internal/services"
)

// Track is the subset of an iTunes search result kept in the cache.
type Track struct {
	WrapperType      string `json:"wrapperType,omitempty"`
	Kind             string `json:"kind,omitempty"`
	CollectionID     int64  `json:"collectionId,omitempty"`
	TrackID          int64  `json:"trackId,omitempty"`
	ArtistName       string `json:"artistName"`
	CollectionName   string `json:"collectionName,omitempty"`
	TrackName        string `json:"trackName,omitempty"`
	ReleaseDate      string `json:"releaseDate,omitempty"`
	PrimaryGenreName string `json:"primaryGenreName,omitempty"`
	ArtworkURL100    string `json:"artworkUrl100,omitempty"`
	TrackCount       int    `json:"trackCount,omitempty"`
	Country          string `json:"country,omitempty"`
}

// ID returns the collection id, falling back to the track id.
func (t Track) ID() int64 {
	if t.CollectionID != 0 {
		return t.CollectionID
	}
	return t.TrackID
}

// DisplayTitle returns the collection name, falling back to the track name.
func (t Track) DisplayTitle() string {
	if t.CollectionName != "" {
		return t.CollectionName
	}
	return t.TrackName
}

type searchResponse struct {
	ResultCount int     `json:"resultCount"`
	Results     []Track `json:"results"`
}

// Client provides access to the iTunes Search API.
type Client struct {
	baseURL    string
	country    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates an iTunes client.
func New(baseURL, country string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://itunes.apple.com"
	}
	client := &Client{
		baseURL:    baseURL,
		country:    strings.TrimSpace(country),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Search returns the best match for "artist title". An empty result set is
// reported as services.ErrNotFound.
func (c *Client) Search(ctx context.Context, artist, title string) (*Track, error) {
	term := strings.TrimSpace(strings.TrimSpace(artist) + " " + strings.TrimSpace(title))
	if term == "" {
		return nil, services.Wrap(services.ErrValidation, "itunes", "search", "empty search term", nil)
	}
	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("limit", "1")
	if c.country != "" {
		params.Set("country", c.country)
	}
	endpoint := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		marker := services.ErrTransient
		var netErr interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			marker = services.ErrTimeout
		}
		return nil, services.Wrap(marker, "itunes", "search", fmt.Sprintf("latency=%v", latency.Round(time.Millisecond)), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "itunes", "search", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "itunes", "search", "decode response", err)
	}
	if len(payload.Results) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "itunes", "search", fmt.Sprintf("no match for %q", term), nil)
	}
	track := payload.Results[0]
	return &track, nil
}
