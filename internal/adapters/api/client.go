// Package api is the REST client for the external attendance API.
// All persistence lives behind it; nothing is cached between calls.
package api

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
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"checkin/internal/adapters/http/perf"
	"checkin/internal/domain/apperr"
)

// Defaults match the deployed API.
const (
	DefaultBaseURL = "https://h-infinite-power.store"
	DefaultPrefix  = "/test-api"
	DefaultTimeout = 10 * time.Second
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Config configures a Client.
type Config struct {
	BaseURL string        // scheme and host, e.g. https://h-infinite-power.store
	Prefix  string        // path prefix for resource routes, e.g. /test-api
	Timeout time.Duration // per-request timeout; zero means DefaultTimeout
}

// Client calls the attendance API. It is safe for concurrent use.
type Client struct {
	http   *http.Client
	base   *url.URL
	prefix string
	perf   *perf.Collector // nil disables timing
	now    func() time.Time
}

// New builds a Client.
// PRE: cfg.BaseURL is an absolute http(s) URL
// POST: returns a ready client or an error describing the bad config
func New(cfg Config, collector *perf.Collector) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", cfg.BaseURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		base:   base,
		prefix: "/" + strings.Trim(cfg.Prefix, "/"),
		perf:   collector,
		now:    time.Now,
	}, nil
}

// call describes one API request.
type call struct {
	method     string
	route      string // templated path for logs and perf, e.g. "test-attendances/{id}"
	path       string // concrete path relative to the prefix
	unprefixed bool   // skip the prefix (the likes route lives at the root)
	body       any    // JSON-encoded when non-nil
	out        any    // JSON-decoded from a 2xx body when non-nil
}

func (c *Client) endpoint(cl call) string {
	u := *c.base
	p := strings.TrimRight(u.Path, "/")
	if !cl.unprefixed && c.prefix != "/" {
		p += c.prefix
	}
	u.Path = p + "/" + strings.TrimLeft(cl.path, "/")
	if cl.method == http.MethodGet {
		q := u.Query()
		q.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends cl and maps the outcome onto the apperr taxonomy.
// PRE: ctx is non-nil
// POST: transport failures and 5xx are Network; 404 is NotFound;
// other 4xx are Validation carrying the API's error message
func (c *Client) do(ctx context.Context, cl call) error {
	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", cl.method, cl.route, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.endpoint(cl), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", cl.method, cl.route, err)
	}
	requestID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.perf.Record(perf.Entry{
		Kind:       perf.KindUpstream,
		Path:       cl.method + " " + cl.route,
		StatusCode: status,
		DurationMs: float64(elapsed.Microseconds()) / 1000,
		Timestamp:  start,
	})

	if err != nil {
		slog.Warn("api_request", "method", cl.method, "route", cl.route, "request_id", requestID,
			"duration_ms", elapsed.Milliseconds(), "error", err)
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return apperr.Network("The server did not respond in time.", err)
		}
		return apperr.Network("Could not reach the server.", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return apperr.Network("Could not read the server response.", err)
	}
	slog.Info("api_request", "method", cl.method, "route", cl.route, "request_id", requestID,
		"status", status, "duration_ms", elapsed.Milliseconds())

	switch {
	case status >= 200 && status < 300:
		if cl.out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, cl.out); err != nil {
			return apperr.Network("The server sent an unexpected response.", fmt.Errorf("decode %s: %w", cl.route, err))
		}
		return nil
	case status == http.StatusNotFound:
		return apperr.NotFound(errorMessage(raw, "The requested item was not found."))
	case status >= 400 && status < 500:
		return apperr.Validation(errorMessage(raw, "The request was rejected."))
	default:
		return apperr.Network(errorMessage(raw, "The server had a problem. Please try again."),
			fmt.Errorf("%s %s: status %d", cl.method, cl.route, status))
	}
}

// errorMessage extracts {"error": "..."} from a failure body.
func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Error) != "" {
		return body.Error
	}
	return fallback
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
