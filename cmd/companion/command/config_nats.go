package command

import (
	"fmt"

	"github.com/pixil98/bitcraft-companion/internal/messaging"
	"github.com/pixil98/go-errors"
)

type NatsConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	StartTimeout string `json:"start_timeout"`
}

func (n *NatsConfig) validate() error {
	el := errors.NewErrorList()

	if _, err := parseDuration("start_timeout", n.StartTimeout); err != nil {
		el.Add(fmt.Errorf("nats: %w", err))
	}
	if n.Port < -1 || n.Port > 65535 {
		el.Add(fmt.Errorf("nats: port %d out of range", n.Port))
	}

	return el.Err()
}

func (n *NatsConfig) buildNatsServer() (*messaging.NatsServer, error) {
	timeout, err := parseDuration("start_timeout", n.StartTimeout)
	if err != nil {
		return nil, err
	}

	var opts []messaging.NatsServerOpt
	if timeout > 0 {
		opts = append(opts, messaging.WithStartTimeout(timeout))
	}
	if n.Host != "" {
		opts = append(opts, messaging.WithHost(n.Host))
	}
	if n.Port != 0 {
		opts = append(opts, messaging.WithPort(n.Port))
	}

	s, err := messaging.NewNatsServer(opts...)
	if err != nil {
		return nil, err
	}

	return s, nil
}
