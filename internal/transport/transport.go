// Package transport performs the HTTP calls behind every data source and
// maps failures onto core.FetchError kinds.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/tekir/core"
)

// DefaultUserAgent identifies tekir to backends.
const DefaultUserAgent = "tekir/1.0 (+https://tekir.co)"

// maxErrorBody bounds how much of an error response is read for its message.
const maxErrorBody = 4 << 10

// ErrNotFound is returned by GetJSON when the server answers 404 and the
// caller opted in with AllowNotFound.
var ErrNotFound = errors.New("resource not found")

// Client is a thin JSON-over-HTTP client. It is safe for concurrent use.
type Client struct {
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout bounds every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client. Without options no timeout is applied, so a hung
// backend leaves its request pending until the context is canceled.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		userAgent: DefaultUserAgent,
		logger:    slog.Default().With("component", "transport"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	allowNotFound bool
}

// AllowNotFound makes a 404 return ErrNotFound instead of an HTTP status
// FetchError.
func AllowNotFound() RequestOption {
	return func(o *requestOptions) {
		o.allowNotFound = true
	}
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, source, url string, out any, opts ...RequestOption) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.NewFetchError(source, core.ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, source, out, opts...)
}

// PostJSON issues a POST with a JSON body and decodes the JSON response.
func (c *Client) PostJSON(ctx context.Context, source, url string, body, out any) error {
	req, err := c.newJSONRequest(ctx, source, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.doJSON(req, source, out)
}

// PostStream issues a POST with a JSON body and returns the response body
// unread. The caller must close it.
func (c *Client) PostStream(ctx context.Context, source, url string, body any) (io.ReadCloser, error) {
	req, err := c.newJSONRequest(ctx, source, url, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req, source)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) newJSONRequest(ctx context.Context, source, url string, body any) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, core.NewFetchError(source, core.ErrNetwork, fmt.Errorf("encoding request: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, core.NewFetchError(source, core.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) doJSON(req *http.Request, source string, out any, opts ...RequestOption) error {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	resp, err := c.send(req, source)
	if err != nil {
		var fe *core.FetchError
		if o.allowNotFound && errors.As(err, &fe) && fe.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Warn("undecodable response", "source", source, "url", req.URL.String(), "error", err)
		return core.NewFetchError(source, core.ErrMalformedResponse, err)
	}
	return nil
}

// send performs the request and converts transport failures and non-2xx
// statuses into FetchErrors. On success the caller owns resp.Body.
func (c *Client) send(req *http.Request, source string) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "source", source, "url", req.URL.String(), "error", err)
		return nil, core.NewFetchError(source, core.ErrNetwork, err)
	}
	c.logger.Debug("response",
		"source", source,
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	kind := core.ErrHTTPStatus
	if resp.StatusCode == http.StatusTooManyRequests {
		kind = core.ErrRateLimited
	}
	return nil, &core.FetchError{
		Source:     source,
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(resp.Body),
	}
}

// errorMessage extracts {"message": "..."} or {"error": "..."} from an error
// body, falling back to the trimmed text.
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}
