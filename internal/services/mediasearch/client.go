package mediasearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

var (
	// ErrNoResults reports a search that matched nothing.
	ErrNoResults = errors.New("no results")
	// ErrNotConfigured reports a provider without credentials.
	ErrNotConfigured = errors.New("provider not configured")
)

// Config captures provider credentials and endpoints.
type Config struct {
	UnsplashAccessKey    string
	UnsplashBaseURL      string
	GoogleAPIKey         string
	GoogleSearchEngineID string
	GoogleBaseURL        string
	TenorAPIKey          string
	TenorClientKey       string
	TenorBaseURL         string
	TimeoutSeconds       int
}

// Client talks to the stock media providers.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ImageConfigured reports whether any image provider has credentials.
func (c *Client) ImageConfigured() bool {
	return c.cfg.UnsplashAccessKey != "" || (c.cfg.GoogleAPIKey != "" && c.cfg.GoogleSearchEngineID != "")
}

// GIFConfigured reports whether Tenor has credentials.
func (c *Client) GIFConfigured() bool {
	return c.cfg.TenorAPIKey != ""
}

// SearchUnsplash returns the regular-size URL of the first photo for query.
func (c *Client) SearchUnsplash(ctx context.Context, query string) (string, error) {
	if c.cfg.UnsplashAccessKey == "" {
		return "", fmt.Errorf("unsplash: %w", ErrNotConfigured)
	}
	var payload struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}
	params := url.Values{"query": {query}, "per_page": {"1"}}
	headers := map[string]string{
		"Authorization":  "Client-ID " + c.cfg.UnsplashAccessKey,
		"Accept-Version": "v1",
	}
	if err := c.getJSON(ctx, c.cfg.UnsplashBaseURL, "search/photos", params, headers, &payload); err != nil {
		return "", fmt.Errorf("unsplash: %w", err)
	}
	if len(payload.Results) == 0 || payload.Results[0].URLs.Regular == "" {
		return "", fmt.Errorf("unsplash %q: %w", query, ErrNoResults)
	}
	return payload.Results[0].URLs.Regular, nil
}

// SearchGoogle returns the link of the first image result for query.
func (c *Client) SearchGoogle(ctx context.Context, query string) (string, error) {
	if c.cfg.GoogleAPIKey == "" || c.cfg.GoogleSearchEngineID == "" {
		return "", fmt.Errorf("google: %w", ErrNotConfigured)
	}
	var payload struct {
		Items []struct {
			Link string `json:"link"`
		} `json:"items"`
	}
	params := url.Values{
		"q":          {query},
		"cx":         {c.cfg.GoogleSearchEngineID},
		"key":        {c.cfg.GoogleAPIKey},
		"searchType": {"image"},
		"num":        {"1"},
	}
	if err := c.getJSON(ctx, c.cfg.GoogleBaseURL, "", params, nil, &payload); err != nil {
		return "", fmt.Errorf("google: %w", err)
	}
	if len(payload.Items) == 0 || payload.Items[0].Link == "" {
		return "", fmt.Errorf("google %q: %w", query, ErrNoResults)
	}
	return payload.Items[0].Link, nil
}

// SearchTenor returns the MP4 rendition URL of the first GIF for query.
func (c *Client) SearchTenor(ctx context.Context, query string) (string, error) {
	if c.cfg.TenorAPIKey == "" {
		return "", fmt.Errorf("tenor: %w", ErrNotConfigured)
	}
	var payload struct {
		Results []struct {
			MediaFormats map[string]struct {
				URL string `json:"url"`
			} `json:"media_formats"`
		} `json:"results"`
	}
	params := url.Values{
		"q":             {query},
		"key":           {c.cfg.TenorAPIKey},
		"limit":         {"1"},
		"media_filter":  {"mp4"},
		"contentfilter": {"medium"},
	}
	if c.cfg.TenorClientKey != "" {
		params.Set("client_key", c.cfg.TenorClientKey)
	}
	if err := c.getJSON(ctx, c.cfg.TenorBaseURL, "search", params, nil, &payload); err != nil {
		return "", fmt.Errorf("tenor: %w", err)
	}
	if len(payload.Results) == 0 {
		return "", fmt.Errorf("tenor %q: %w", query, ErrNoResults)
	}
	mp4, ok := payload.Results[0].MediaFormats["mp4"]
	if !ok || mp4.URL == "" {
		return "", fmt.Errorf("tenor %q: mp4 rendition: %w", query, ErrNoResults)
	}
	return mp4.URL, nil
}

// Download fetches rawURL into dest, creating parent directories. dest is
// only replaced once the body has been fully written.
func (c *Client) Download(ctx context.Context, rawURL, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("download: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: http %d", rawURL, resp.StatusCode)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("download: create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("download: temp file: %w", err)
	}
	tmpName := tmp.Name()
	n, copyErr := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("download: write: %w", err)
	}
	if n == 0 {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("download %s: empty body", rawURL)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("download: rename: %w", err)
	}
	return n, nil
}

func (c *Client) getJSON(ctx context.Context, base, path string, params url.Values, headers map[string]string, dest any) error {
	endpoint := strings.TrimRight(base, "/")
	if path != "" {
		joined, err := url.JoinPath(endpoint, path)
		if err != nil {
			return fmt.Errorf("build url: %w", err)
		}
		endpoint = joined
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
