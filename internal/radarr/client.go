// Package radarr implements the HTTP client for the Radarr v3 API. The
// reconciliation pipeline only depends on the Service interface, so tests
// and alternative backends can substitute their own implementation.
package radarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Service defines the library operations the reconciliation pipeline uses.
type Service interface {
	ListMovies(ctx context.Context) ([]Movie, error)
	SearchByTitle(ctx context.Context, title string) ([]Candidate, error)
	AddMovie(ctx context.Context, req AddRequest) (*Movie, error)
	UpdateMovie(ctx context.Context, movie Movie) (*Movie, error)
	QualityProfiles(ctx context.Context) ([]QualityProfile, error)
	RootFolders(ctx context.Context) ([]RootFolder, error)
	Ping(ctx context.Context) error
}

// Client talks to a Radarr instance using API key header auth.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ Service = (*Client)(nil)

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

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a Radarr client.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("radarr base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("radarr api key required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// ListMovies returns the full library snapshot.
func (c *Client) ListMovies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	if err := c.get(ctx, "/api/v3/movie", nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

// SearchByTitle looks up add candidates for a title.
func (c *Client) SearchByTitle(ctx context.Context, title string) ([]Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("search title must not be empty")
	}
	params := url.Values{}
	params.Set("term", title)
	var candidates []Candidate
	if err := c.get(ctx, "/api/v3/movie/lookup", params, &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

// AddMovie adds a candidate to the library.
func (c *Client) AddMovie(ctx context.Context, req AddRequest) (*Movie, error) {
	if req.Candidate.TMDBID <= 0 {
		return nil, errors.New("candidate tmdb id must be positive")
	}
	payload := map[string]any{
		"title":               req.Candidate.Title,
		"year":                req.Candidate.Year,
		"tmdbId":              req.Candidate.TMDBID,
		"qualityProfileId":    req.QualityProfileID,
		"rootFolderPath":      req.RootFolder,
		"monitored":           req.Monitored,
		"minimumAvailability": req.MinimumAvailability,
		"addOptions": map[string]any{
			"monitor":        req.MonitorOption,
			"searchForMovie": req.SearchNow,
		},
	}
	var movie Movie
	if err := c.post(ctx, "/api/v3/movie", payload, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// UpdateMovie writes back a modified library entry, typically to change
// its quality profile.
func (c *Client) UpdateMovie(ctx context.Context, movie Movie) (*Movie, error) {
	if movie.ID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	var updated Movie
	if err := c.put(ctx, fmt.Sprintf("/api/v3/movie/%d", movie.ID), movie, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// QualityProfiles lists the configured quality profiles.
func (c *Client) QualityProfiles(ctx context.Context) ([]QualityProfile, error) {
	var profiles []QualityProfile
	if err := c.get(ctx, "/api/v3/qualityprofile", nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// RootFolders lists the storage locations Radarr advertises.
func (c *Client) RootFolders(ctx context.Context) ([]RootFolder, error) {
	var folders []RootFolder
	if err := c.get(ctx, "/api/v3/rootfolder", nil, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// Ping verifies connectivity and credentials.
func (c *Client) Ping(ctx context.Context) error {
	var status struct {
		Version string `json:"version"`
	}
	return c.get(ctx, "/api/v3/system/status", nil, &status)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse radarr url: %w", err)
	}
	if params != nil {
		endpoint.RawQuery = params.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	op := method + " " + path
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return &ConnectionError{Op: op, Err: fmt.Errorf("execute request (latency=%v): %w", latency, err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w (%s)", ErrUnauthorized, op)
	case http.StatusNotFound:
		return fmt.Errorf("%w (%s)", ErrNotFound, op)
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode radarr response: %w", err)
	}
	return nil
}
