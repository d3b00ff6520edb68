package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultClientId = "BitCraft-Companion-App/1.0.0"
	DefaultTimeout  = 10 * time.Second

	// maxBodyBytes mirrors the proxy's request body limit.
	maxBodyBytes = 10 << 20
)

// Requester is what the rest of the client needs from the gateway.
type Requester interface {
	Request(ctx context.Context, q Query) (json.RawMessage, error)
}

// Client talks to the upstream game API through the companion proxy. Each
// call is a single attempt; retry policy belongs to the caller.
type Client struct {
	baseURL  *url.URL
	token    string
	clientId string
	timeout  time.Duration
	limiter  *rate.Limiter
	http     *http.Client
}

// NewClient returns a client for the proxy at baseURL (including its /api
// prefix). A token is mandatory.
func NewClient(baseURL string, token string, opts ...ClientOpt) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL:  u,
		token:    token,
		clientId: DefaultClientId,
		timeout:  DefaultTimeout,
		http:     http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// Request performs q and returns the envelope's data payload. Every failure
// is a *Error; nothing is retried.
func (c *Client) Request(ctx context.Context, q Query) (json.RawMessage, error) {
	r, err := q.build()
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, unavailable(q.Domain, fmt.Errorf("waiting for rate limiter: %w", err))
		}
	}

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, unavailable(q.Domain, err)
	}

	slog.DebugContext(ctx, "gateway request", "domain", q.Domain, "route", r.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, unavailable(q.Domain, err)
	}
	// Ignoring close error - body is fully read, error is not actionable
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, unavailable(q.Domain, fmt.Errorf("reading response: %w", err))
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && env.describe() != "" {
			return nil, unavailable(q.Domain, fmt.Errorf("upstream returned %s: %s", resp.Status, env.describe()))
		}
		return nil, unavailable(q.Domain, fmt.Errorf("upstream returned %s", resp.Status))
	}
	if decodeErr != nil {
		return nil, unavailable(q.Domain, fmt.Errorf("decoding response: %w", decodeErr))
	}
	if !env.Success {
		msg := env.describe()
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, unavailable(q.Domain, fmt.Errorf("upstream: %s", msg))
	}
	if q.Domain != DomainChatWrite && env.empty() {
		return nil, unavailable(q.Domain, fmt.Errorf("response carried no data"))
	}

	return env.Data, nil
}

func (c *Client) newRequest(ctx context.Context, r *route) (*http.Request, error) {
	u := c.baseURL.JoinPath(r.path...)
	if len(r.values) > 0 {
		u.RawQuery = r.values.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.clientId)
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (e *envelope) describe() string {
	switch {
	case e.Error != "" && e.Message != "":
		return e.Error + ": " + e.Message
	case e.Error != "":
		return e.Error
	default:
		return e.Message
	}
}

func (e *envelope) empty() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
