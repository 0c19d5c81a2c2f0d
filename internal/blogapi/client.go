// Package blogapi is the client of the remote blog backend.
package blogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/blog-client/internal/serviceerr"
)

// DefaultBaseURL is the public blog backend.
const DefaultBaseURL = "https://blog-backend-xlw9.onrender.com"

const maxMessageLen = 256

// File is an uploaded file forwarded to the backend as a multipart part.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Client talks to the blog backend. It is safe for concurrent use.
type Client struct {
	rest *resty.Client
}

type Option func(*resty.Client)

// WithTransport replaces the HTTP transport of the underlying client.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *resty.Client) {
		c.SetTransport(rt)
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *resty.Client) {
		c.SetHeader("User-Agent", ua)
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	for _, opt := range opts {
		opt(rest)
	}

	return &Client{rest: rest}
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	req := c.rest.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}

	return req
}

// check converts transport failures and non-2xx responses into
// *serviceerr.Error values.
func check(ctx context.Context, op string, resp *resty.Response, err error) error {
	if err != nil {
		slogctx.Warn(ctx, "Blog backend request failed", "operation", op, "error", err)
		return fmt.Errorf("%s: %w", op, serviceerr.ErrBackendUnavailable.WithDescription(err.Error()))
	}

	if !resp.IsError() {
		return nil
	}

	status := resp.StatusCode()
	msg := message(resp.Body())
	slogctx.Debug(ctx, "Blog backend rejected request", "operation", op, "status", status, "message", msg)

	var svcErr *serviceerr.Error

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		svcErr = serviceerr.ErrUnauthorized
	case status == http.StatusNotFound:
		svcErr = serviceerr.ErrNotFound
	case status == http.StatusConflict:
		svcErr = serviceerr.ErrConflict
	case status >= 400 && status < 500:
		svcErr = serviceerr.ErrInvalidRequest
	default:
		svcErr = serviceerr.ErrBackendError
	}

	if msg != "" {
		svcErr = svcErr.WithDescription(msg)
	}

	return fmt.Errorf("%s: %w", op, svcErr)
}

// message extracts the backend message from an error body: the "message"
// or "error" field of a JSON object, or the trimmed text otherwise.
func message(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}

		return payload.Error
	}

	return truncate(strings.TrimSpace(string(body)), maxMessageLen)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n]
}
