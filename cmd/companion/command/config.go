package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Gateway GatewayConfig `json:"gateway"`
	Session SessionConfig `json:"session"`
	Store   StoreConfig   `json:"store"`
	Nats    NatsConfig    `json:"nats"`
	Console ConsoleConfig `json:"console"`
}

// Validate overlays the environment onto the gateway section, then checks
// every section.
func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if err := c.Gateway.applyEnv(); err != nil {
		el.Add(err)
	}

	el.Add(c.Gateway.validate())
	el.Add(c.Session.validate())
	el.Add(c.Store.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Console.validate())

	return el.Err()
}

type StoreConfig struct {
	RequestTimeout string `json:"request_timeout"`
}

func (c *StoreConfig) validate() error {
	if _, err := parseDuration("request_timeout", c.RequestTimeout); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// parseDuration parses a positive duration named name. An empty string is 0,
// meaning the default.
func parseDuration(name string, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return d, nil
}
