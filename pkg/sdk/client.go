package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 60 * time.Second

// Client talks to a towersearch server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sets the Bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Search finds catalog items relevant to a free-text query.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	path := "/v1/search"
	if req.IncludeScores {
		path += "?include_scores=true"
	}

	var resp SearchResponse
	if err := c.post(ctx, path, req, &resp); err != nil {
		return SearchResponse{}, err
	}
	return resp, nil
}

// Similar suggests catalog items resembling the source item.
func (c *Client) Similar(ctx context.Context, req SimilarRequest) (SearchResponse, error) {
	var resp SearchResponse
	if err := c.post(ctx, "/v1/similar", req, &resp); err != nil {
		return SearchResponse{}, err
	}
	return resp, nil
}

// Classify predicts the install location of a material.
func (c *Client) Classify(ctx context.Context, item Item) (ClassifyResponse, error) {
	var resp ClassifyResponse
	if err := c.post(ctx, "/v1/classify", classifyRequest{Item: item}, &resp); err != nil {
		return ClassifyResponse{}, err
	}
	return resp, nil
}

// Health reports server component health. A degraded server returns the
// report along with an APIError carrying status 503.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("towersearch: build request: %w", err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("towersearch: health request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	var resp HealthResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return HealthResponse{}, fmt.Errorf("towersearch: decode health response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return resp, &APIError{StatusCode: httpResp.StatusCode, Code: "degraded", Message: resp.Status}
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("towersearch: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("towersearch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("towersearch: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("towersearch: decode response: %w", err)
	}
	return nil
}

func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || json.Unmarshal(body, apiErr) != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
