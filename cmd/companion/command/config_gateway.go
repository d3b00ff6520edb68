package command

import (
	"fmt"
	"net/url"

	"github.com/caarlos0/env/v11"
	"github.com/pixil98/bitcraft-companion/internal/gateway"
	"github.com/pixil98/go-errors"
)

// GatewayConfig points the client at the companion proxy. BaseURL includes
// the /api prefix. The token may come from the environment instead of the
// config file.
type GatewayConfig struct {
	BaseURL   string  `json:"base_url" env:"BITCRAFT_API_BASE"`
	Token     string  `json:"token" env:"BITCRAFT_API_KEY"`
	ClientId  string  `json:"client_id"`
	Timeout   string  `json:"timeout"`
	RateLimit float64 `json:"rate_limit"`
	Burst     int     `json:"burst"`
}

func (c *GatewayConfig) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("gateway: parse env: %w", err)
	}
	return nil
}

func (c *GatewayConfig) validate() error {
	el := errors.NewErrorList()

	if c.BaseURL == "" {
		el.Add(fmt.Errorf("gateway: base_url is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil {
		el.Add(fmt.Errorf("gateway: parsing base_url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		el.Add(fmt.Errorf("gateway: base_url must be http or https"))
	}

	if c.Token == "" {
		el.Add(fmt.Errorf("gateway: token is required (set token or BITCRAFT_API_KEY)"))
	}

	if _, err := parseDuration("timeout", c.Timeout); err != nil {
		el.Add(fmt.Errorf("gateway: %w", err))
	}

	if c.RateLimit < 0 {
		el.Add(fmt.Errorf("gateway: rate_limit cannot be negative"))
	}
	if c.RateLimit > 0 && c.Burst < 1 {
		el.Add(fmt.Errorf("gateway: burst must be at least 1 when rate_limit is set"))
	}

	return el.Err()
}

func (c *GatewayConfig) buildClient() (*gateway.Client, error) {
	timeout, err := parseDuration("timeout", c.Timeout)
	if err != nil {
		return nil, err
	}

	var opts []gateway.ClientOpt
	if c.ClientId != "" {
		opts = append(opts, gateway.WithClientId(c.ClientId))
	}
	if timeout > 0 {
		opts = append(opts, gateway.WithTimeout(timeout))
	}
	if c.RateLimit > 0 {
		opts = append(opts, gateway.WithRateLimit(c.RateLimit, c.Burst))
	}

	return gateway.NewClient(c.BaseURL, c.Token, opts...)
}
