package catalog

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

	"golang.org/x/time/rate"
)

// ErrMalformed is returned when a response body cannot be decoded.
var ErrMalformed = errors.New("malformed catalog response")

// HTTPError reports a non-2xx response from the catalog backend.
type HTTPError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

const (
	userAgent       = "mediaseek/1.0"
	maxErrorBody    = 200
	maxResponseBody = 8 << 20
)

// Client talks to the catalog backend.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	baseURL string
}

// New creates a catalog client for baseURL.
func New(baseURL string, reqPerSec float64, timeout time.Duration) *Client {
	if reqPerSec <= 0 {
		reqPerSec = 5.0
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(reqPerSec), 5),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search looks up catalog items matching query.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	var results []SearchResult
	if err := c.post(ctx, "search", map[string]string{"keyword": query}, &results); err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Title = PlainText(results[i].Title)
	}
	return results, nil
}

// Details fetches the metadata and download sources for the item at path.
func (c *Client) Details(ctx context.Context, path string) (*DetailResponse, error) {
	var resp DetailResponse
	if err := c.post(ctx, "details", map[string]string{"path": path}, &resp); err != nil {
		return nil, err
	}
	resp.Info.Synopsis = PlainText(resp.Info.Synopsis)
	for i := range resp.DownloadItems {
		resp.DownloadItems[i].FileName = PlainText(resp.DownloadItems[i].FileName)
	}
	return &resp, nil
}

// Download lists the files offered by the download source identified by key.
func (c *Client) Download(ctx context.Context, key string) (*DownloadResponse, error) {
	var resp DownloadResponse
	if err := c.post(ctx, "download", map[string]string{"key": key}, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Files {
		resp.Files[i].Name = PlainText(resp.Files[i].Name)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", endpoint, err)
	}

	endpointURL, err := url.JoinPath(c.baseURL, endpoint)
	if err != nil {
		return fmt.Errorf("building %s URL: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting %s: %w", endpointURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("reading %s response: %w", endpoint, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w from %s: %v", ErrMalformed, endpoint, err)
	}
	return nil
}
