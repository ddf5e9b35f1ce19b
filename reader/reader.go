package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"reader-mcp/reader/vo"
)

// DefaultBaseURL is the production Reader API endpoint.
const DefaultBaseURL = "https://readwise.io/api/v3"

// API is the slice of the Reader service the MCP handlers depend on.
type API interface {
	FetchPage(ctx context.Context, query vo.Query) (*vo.Page, error)
	FetchDocument(ctx context.Context, id string) (*vo.Document, error)
	UpdateDocument(ctx context.Context, id string, patch map[string]any) (*vo.Document, error)
}

// Config holds the read-only settings the client needs. It is constructed
// once at startup and never mutated.
type Config struct {
	AccessToken string
	BaseURL     string
}

// Validate checks that the required credential is present.
func (c Config) Validate() error {
	if c.AccessToken == "" {
		return errors.New("access token is required")
	}
	return nil
}

// Client issues authenticated calls against the Reader API. It performs no
// retries and no caching; every method maps to exactly one HTTP round trip.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Reader API client. A nil httpClient falls back to a 30s
// timeout client, a nil logger to a no-op one.
func New(cfg Config, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger}, nil
}

// FetchPage retrieves one page of the document listing. The query must
// already be validated; this only serializes it.
func (c *Client) FetchPage(ctx context.Context, query vo.Query) (*vo.Page, error) {
	params := url.Values{}
	if query.Location != "" {
		params.Set("location", string(query.Location))
	}
	if !query.UpdatedAfter.IsZero() {
		params.Set("updatedAfter", query.UpdatedAfter.UTC().Format(time.RFC3339))
	}
	if query.WithContent {
		params.Set("withHtmlContent", "true")
	}
	if query.PageCursor != "" {
		params.Set("pageCursor", query.PageCursor)
	}

	c.logger.Debug("fetching document list",
		zap.String("location", string(query.Location)),
		zap.Bool("has_cursor", query.PageCursor != ""))

	body, err := c.get(ctx, "/list/", params)
	if err != nil {
		return nil, err
	}

	var page vo.Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, Errorf(KindMalformed, "cannot decode list response: %v", err)
	}
	return &page, nil
}

// FetchDocument retrieves a single document by id, including its HTML
// content.
func (c *Client) FetchDocument(ctx context.Context, id string) (*vo.Document, error) {
	params := url.Values{}
	params.Set("id", id)
	params.Set("withHtmlContent", "true")

	body, err := c.get(ctx, "/list/", params)
	if err != nil {
		return nil, err
	}

	var page vo.Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, Errorf(KindMalformed, "cannot decode list response: %v", err)
	}
	if len(page.Results) == 0 {
		return nil, Errorf(KindValidation, "no document with id %q", id)
	}
	return &page.Results[0], nil
}

// UpdateDocument applies a partial update to one document and returns the
// updated record.
func (c *Client) UpdateDocument(ctx context.Context, id string, patch map[string]any) (*vo.Document, error) {
	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, Errorf(KindValidation, "cannot encode patch: %v", err)
	}

	endpoint := fmt.Sprintf("%s/update/%s/", c.cfg.BaseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, Errorf(KindUnavailable, "cannot build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("updating document", zap.String("id", id))

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var doc vo.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, Errorf(KindMalformed, "cannot decode update response: %v", err)
	}
	return &doc, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.cfg.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, Errorf(KindUnavailable, "cannot build request: %v", err)
	}
	return c.do(req)
}

// do executes one round trip and classifies the outcome. No retry here;
// retry policy belongs to the caller.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Token "+c.cfg.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("reader api request failed", zap.String("path", req.URL.Path), zap.Error(err))
		return nil, Errorf(KindUnavailable, "request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Errorf(KindUnavailable, "cannot read response: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &Error{Kind: KindAuth, Message: "access token rejected by the Reader API"}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{
			Kind:       KindRateLimited,
			Message:    "Reader API rate limit exceeded",
			RetryAfter: retryAfter(resp),
		}
	case resp.StatusCode >= 500:
		return nil, Errorf(KindUnavailable, "Reader API returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		// Validation happens before the call, so an unexpected 4xx means
		// the API contract shifted under us.
		return nil, Errorf(KindMalformed, "Reader API returned unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

func retryAfter(resp *http.Response) time.Duration {
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
