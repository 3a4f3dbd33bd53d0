// Package client talks to a tzapi server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/codeGROOVE-dev/retry"

	"github.com/codeGROOVE-dev/tzapi/pkg/constants"
	"github.com/codeGROOVE-dev/tzapi/pkg/httpcache"
)

// APIError is a non-retryable rejection from the server.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for retry and memo diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMemo memoizes successful convert and datediff responses.
func WithMemo(m *httpcache.Memo) Option {
	return func(c *Client) {
		c.memo = m
	}
}

// WithRetry sets the attempt count and the initial backoff delay.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// Client calls the three tzapi endpoints.
type Client struct {
	httpClient *http.Client
	memo       *httpcache.Memo
	page       *converter.Converter
	logger     *slog.Logger
	baseURL    string
	attempts   uint
	delay      time.Duration
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.New(slog.DiscardHandler),
		attempts:   4,
		delay:      200 * time.Millisecond,
		// Zone names such as America/New_York must come back without
		// markdown escapes.
		page: converter.NewConverter(
			converter.WithPlugins(base.NewBasePlugin(), commonmark.NewCommonmarkPlugin()),
			converter.WithEscapeMode(converter.EscapeModeDisabled),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentTime returns the server's current-time page as plain text, e.g.
// "Current time in GMT: 2024-02-01 12:30:05 UTC+0000". An empty zone asks for UTC.
func (c *Client) CurrentTime(ctx context.Context, zone string) (string, error) {
	segments := strings.Split(zone, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	body, err := c.do(ctx, http.MethodGet, "/"+strings.Join(segments, "/"), nil)
	if err != nil {
		return "", err
	}
	text, err := c.page.ConvertString(string(body))
	if err != nil {
		return "", fmt.Errorf("converting page: %w", err)
	}
	return strings.TrimSpace(strings.TrimLeft(text, "# ")), nil
}

// Convert returns date (MM.DD.YYYY HH:MM:SS in fromTZ) rendered in toTZ.
func (c *Client) Convert(ctx context.Context, date, fromTZ, toTZ string) (string, error) {
	body := map[string]any{
		"date":      map[string]string{"date": date, "tz": fromTZ},
		"target_tz": toTZ,
	}
	var out struct {
		ConvertedDate string `json:"converted_date"`
	}
	if err := c.post(ctx, constants.ConvertPath, body, &out); err != nil {
		return "", err
	}
	return out.ConvertedDate, nil
}

// DateDiff returns the seconds from the first stamp (MM.DD.YYYY HH:MM:SS)
// to the second (hh:mmXM YYYY-MM-DD).
func (c *Client) DateDiff(ctx context.Context, firstDate, firstTZ, secondDate, secondTZ string) (int64, error) {
	body := map[string]string{
		"first_date":  firstDate,
		"first_tz":    firstTZ,
		"second_date": secondDate,
		"second_tz":   secondTZ,
	}
	var out struct {
		SecondsDifference int64 `json:"seconds_difference"`
	}
	if err := c.post(ctx, constants.DateDiffPath, body, &out); err != nil {
		return 0, err
	}
	return out.SecondsDifference, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	// Both POST endpoints are pure functions of their body.
	data, found := []byte(nil), false
	if c.memo != nil {
		data, found = c.memo.Get(c.baseURL+path, body)
	}
	if !found {
		data, err = c.do(ctx, http.MethodPost, path, body)
		if err != nil {
			return err
		}
		if c.memo != nil {
			c.memo.Set(c.baseURL+path, body, data)
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	target := c.baseURL + path

	var data []byte
	var apiErr *APIError
	err := retry.Do(
		func() error {
			var reader io.Reader = http.NoBody
			if body != nil {
				reader = bytes.NewReader(body)
			}
			req, err := http.NewRequestWithContext(ctx, method, target, reader)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
			}
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}
			req.Header.Set("User-Agent", "tzapi-client/1.0")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					c.logger.Debug("failed to close response body", "error", err)
				}
			}()

			b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return fmt.Errorf("reading response: %w", err)
			}
			switch {
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
				return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
			case resp.StatusCode != http.StatusOK:
				apiErr = &APIError{StatusCode: resp.StatusCode, Message: errorMessage(b)}
				return retry.Unrecoverable(apiErr)
			}
			data = b
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.MaxDelay(5*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying tzapi request", "attempt", n+1, "method", method, "url", target, "error", err)
		}),
	)
	if apiErr != nil {
		return nil, apiErr
	}
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return data, nil
}

// errorMessage extracts {"error": ...} bodies and falls back to the raw text.
func errorMessage(b []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
