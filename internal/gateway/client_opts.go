package gateway

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type ClientOpt func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) ClientOpt {
	return func(c *Client) {
		c.http = hc
	}
}

// WithClientId sets the fixed client identifier sent as User-Agent.
func WithClientId(id string) ClientOpt {
	return func(c *Client) {
		if id != "" {
			c.clientId = id
		}
	}
}

// WithTimeout sets the per-request deadline. Zero disables it.
func WithTimeout(d time.Duration) ClientOpt {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRateLimit throttles outgoing requests to r per second with the given
// burst.
func WithRateLimit(r float64, burst int) ClientOpt {
	return func(c *Client) {
		if r <= 0 {
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}
