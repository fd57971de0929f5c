package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mediatorr/internal/services"
)

// Kind selects the TMDB media type.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

// Result represents a single TMDB search match.
type Result struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Popularity   float64 `json:"popularity"`
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalResults int      `json:"total_results"`
}

// Genre is a TMDB genre label.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Details is the subset of the movie/tv details payload kept in the cache.
type Details struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalName     string  `json:"original_name,omitempty"`
	Overview         string  `json:"overview"`
	Tagline          string  `json:"tagline,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	Runtime          int     `json:"runtime,omitempty"`
	NumberOfSeasons  int     `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int     `json:"number_of_episodes,omitempty"`
	VoteAverage      float64 `json:"vote_average"`
	Genres           []Genre `json:"genres,omitempty"`
	PosterPath       string  `json:"poster_path,omitempty"`
	MediaType        string  `json:"media_type,omitempty"`
}

// DisplayTitle returns the localized title for movies or name for shows.
func (d Details) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// Year returns the release or first air year, or 0.
func (d Details) Year() int {
	date := d.ReleaseDate
	if date == "" {
		date = d.FirstAirDate
	}
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
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

// New creates a TMDB client. timeout bounds every request.
func New(apiKey, baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "init", "api key required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search performs a movie or tv search. year narrows the search when > 0.
func (c *Client) Search(ctx context.Context, kind Kind, query string, year int, language string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "search", "query must not be empty", nil)
	}
	params := url.Values{}
	params.Set("query", query)
	if year > 0 {
		switch kind {
		case KindTV:
			params.Set("first_air_date_year", strconv.Itoa(year))
		default:
			params.Set("primary_release_year", strconv.Itoa(year))
		}
	}
	var payload Response
	if err := c.get(ctx, "/search/"+string(kind), params, language, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Details fetches the details of a movie or tv show.
func (c *Client) Details(ctx context.Context, kind Kind, id int64, language string) (*Details, error) {
	if id <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "details", "id must be positive", nil)
	}
	var payload Details
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", kind, id), url.Values{}, language, &payload); err != nil {
		return nil, err
	}
	payload.MediaType = string(kind)
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, language string, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if language = strings.TrimSpace(language); language != "" {
		params.Set("language", language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		marker := services.ErrTransient
		var netErr interface{ Timeout() bool }
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "tmdb", path, fmt.Sprintf("latency=%v", latency.Round(time.Millisecond)), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "tmdb", path, "status 404", nil)
	case resp.StatusCode == http.StatusUnauthorized:
		return services.Wrap(services.ErrConfiguration, "tmdb", path, "status 401, check tmdb.api_key", nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrTransient, "tmdb", path, fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency.Round(time.Millisecond)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, "tmdb", path, "decode response", err)
	}
	return nil
}
