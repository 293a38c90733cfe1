package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gtonic/legalapi-cli/pkg/apierror"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultRetries = 3
	DefaultBackoff = 800 * time.Millisecond
)

const userAgent = "legalapi-client/1.0"

type Client struct {
	URL string

	bearer string

	retries int
	backoff time.Duration

	client *http.Client
	logger *slog.Logger
}

type Option func(*Client)

func New(baseURL string, options ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)

	if err != nil {
		return nil, err
	}

	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL")
	}

	c := &Client{
		URL: u.String(),

		retries: DefaultRetries,
		backoff: DefaultBackoff,

		client: &http.Client{
			Timeout: DefaultTimeout,
		},

		logger: slog.New(slog.DiscardHandler),
	}

	for _, o := range options {
		o(c)
	}

	return c, nil
}

func WithBearer(bearer string) Option {
	return func(c *Client) {
		c.bearer = bearer
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

func WithRetries(retries int) Option {
	return func(c *Client) {
		if retries < 0 {
			retries = 0
		}

		c.retries = retries
	}
}

func WithBackoff(backoff time.Duration) Option {
	return func(c *Client) {
		c.backoff = backoff
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Execute performs one logical call: path substitution, query encoding, body
// encoding and the bounded retry loop. Retries cover 5xx responses and
// transport errors only; the serialized body is reused across attempts.
func (c *Client) Execute(ctx context.Context, method, path string, args Args) (*Result, error) {
	u, err := c.buildURL(path, args)

	if err != nil {
		return nil, err
	}

	contentType, payload, err := encodeBody(args)

	if err != nil {
		return nil, err
	}

	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * c.backoff

			c.logger.Debug("retrying request",
				"method", method,
				"url", u,
				"attempt", attempt+1,
				"delay", delay,
				"error", lastErr)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, retryable, err := c.do(ctx, method, u, contentType, payload, args.Header)

		if err == nil {
			return result, nil
		}

		lastErr = err

		if !retryable {
			return nil, err
		}
	}

	if c.retries == 0 {
		return nil, lastErr
	}

	return nil, apierror.Wrap(apierror.KindRetriesExhausted, lastErr, "request failed after %d attempts", c.retries+1)
}

func (c *Client) do(ctx context.Context, method, u, contentType string, payload []byte, override http.Header) (*Result, bool, error) {
	var body io.Reader

	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)

	if err != nil {
		return nil, false, err
	}

	req.Header.Set("Accept", "application/json, */*")
	req.Header.Set("User-Agent", userAgent)

	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	// per-call overrides win over client defaults
	for k, v := range override {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}

	resp, err := c.client.Do(req)

	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}

		// connection/timeout class, worth another attempt
		return nil, true, err
	}

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result := &Result{
			Status:      resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),

			Raw: data,
		}

		return result, false, nil
	}

	retryable := resp.StatusCode >= 500 && resp.StatusCode <= 599

	httpErr := &apierror.Error{
		Kind: apierror.KindHTTP,

		Status:  resp.StatusCode,
		Payload: decodePayload(data),

		Message: fmt.Sprintf("HTTP %d at %s: %s", resp.StatusCode, u, snippet(data)),
	}

	return nil, retryable, httpErr
}

var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

func (c *Client) buildURL(path string, args Args) (string, error) {
	var missing []string

	expanded := placeholder.ReplaceAllStringFunc(path, func(m string) string {
		name := m[1 : len(m)-1]

		value, ok := args.Path[name]

		if !ok {
			missing = append(missing, name)
			return m
		}

		return url.PathEscape(value)
	})

	if len(missing) > 0 {
		return "", apierror.New(apierror.KindMissingPathParam, "missing path parameter %q in %s", strings.Join(missing, ", "), path)
	}

	u := strings.TrimRight(c.URL, "/") + "/" + strings.TrimLeft(expanded, "/")

	if len(args.Query) > 0 {
		u += "?" + args.Query.Encode()
	}

	return u, nil
}

func decodePayload(data []byte) any {
	var value any

	if err := json.Unmarshal(data, &value); err == nil {
		return value
	}

	return map[string]any{"text": string(data)}
}

func snippet(data []byte) string {
	s := string(data)

	if len(s) > 500 {
		s = s[:500]
	}

	return s
}
