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
)

// API defines the TMDB operations used by the feed pipeline.
type API interface {
	PersonCombinedCredits(ctx context.Context, personID int64) (*PersonCredits, error)
	DiscoverUpcomingMovies(ctx context.Context, companyID int64, since string) ([]DiscoverResult, error)
	MovieDetails(ctx context.Context, movieID int64) (*Details, error)
	TVDetails(ctx context.Context, showID int64) (*Details, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

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

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	language = strings.TrimSpace(language)
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// PersonCombinedCredits fetches a person's movie and TV credits in one call.
func (c *Client) PersonCombinedCredits(ctx context.Context, personID int64) (*PersonCredits, error) {
	if personID <= 0 {
		return nil, errors.New("person id must be positive")
	}
	var payload PersonCredits
	path := fmt.Sprintf("/person/%d/combined_credits", personID)
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return nil, fmt.Errorf("person credits: %w", err)
	}
	return &payload, nil
}

// DiscoverUpcomingMovies lists movies attributed to a production company with
// a release date on or after since (YYYY-MM-DD). All pages are drained
// before returning.
func (c *Client) DiscoverUpcomingMovies(ctx context.Context, companyID int64, since string) ([]DiscoverResult, error) {
	if companyID <= 0 {
		return nil, errors.New("company id must be positive")
	}
	if strings.TrimSpace(since) == "" {
		return nil, errors.New("since date required")
	}

	var results []DiscoverResult
	for page := 1; ; page++ {
		params := url.Values{}
		params.Set("with_companies", strconv.FormatInt(companyID, 10))
		params.Set("release_date.gte", since)
		params.Set("sort_by", "primary_release_date.asc")
		params.Set("page", strconv.Itoa(page))

		var payload DiscoverResponse
		if err := c.getJSON(ctx, "/discover/movie", params, &payload); err != nil {
			return nil, fmt.Errorf("discover movies (page %d): %w", page, err)
		}
		results = append(results, payload.Results...)
		if payload.Page >= payload.TotalPages {
			break
		}
	}
	return results, nil
}

// MovieDetails fetches a movie with credits and external IDs appended.
func (c *Client) MovieDetails(ctx context.Context, movieID int64) (*Details, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "credits,external_ids")

	var payload Details
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", movieID), params, &payload); err != nil {
		return nil, fmt.Errorf("movie details: %w", err)
	}
	payload.MediaType = MediaTypeMovie
	return &payload, nil
}

// TVDetails fetches a TV show with credits and external IDs appended.
func (c *Client) TVDetails(ctx context.Context, showID int64) (*Details, error) {
	if showID <= 0 {
		return nil, errors.New("show id must be positive")
	}
	params := url.Values{}
	params.Set("append_to_response", "credits,external_ids")

	var payload Details
	if err := c.getJSON(ctx, fmt.Sprintf("/tv/%d", showID), params, &payload); err != nil {
		return nil, fmt.Errorf("tv details: %w", err)
	}
	payload.MediaType = MediaTypeTV
	return &payload, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tmdb %s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response: %w", err)
	}
	return nil
}
