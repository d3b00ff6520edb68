package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pixil98/bitcraft-companion/internal/console"
	"github.com/pixil98/bitcraft-companion/internal/listener"
	"github.com/pixil98/bitcraft-companion/internal/messaging"
	"github.com/pixil98/bitcraft-companion/internal/session"
	"github.com/pixil98/bitcraft-companion/internal/state"
	"github.com/pixil98/bitcraft-companion/internal/substitute"
	"github.com/pixil98/go-service"
)

// WorkerBuilder returns the worker factory for service.NewApp. stop is called
// when the terminal console ends so the whole process exits with it.
func WorkerBuilder(stop func()) func(config interface{}) (service.WorkerList, error) {
	return func(config interface{}) (service.WorkerList, error) {
		cfg, ok := config.(*Config)
		if !ok {
			return nil, fmt.Errorf("unable to cast config")
		}
		return buildWorkers(context.Background(), cfg, stop)
	}
}

func buildWorkers(ctx context.Context, cfg *Config, stop func()) (service.WorkerList, error) {
	client, err := cfg.Gateway.buildClient()
	if err != nil {
		return nil, fmt.Errorf("creating gateway client: %w", err)
	}

	slots, err := cfg.Session.buildSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating session storage: %w", err)
	}
	sessions := session.New(ctx, slots)

	bus, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	requestTimeout, err := parseDuration("request_timeout", cfg.Store.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	store := state.New(client, substitute.Provider{}, sessions,
		state.WithRequestTimeout(requestTimeout),
		state.WithPublisher(messaging.NewStatePublisher(bus)),
	)

	consoleOpts := []console.ManagerOpt{console.WithBus(bus)}
	if cfg.Console.Width != nil {
		consoleOpts = append(consoleOpts, console.WithWidth(*cfg.Console.Width))
	}
	var connOpts []listener.ConnectionManagerOpt
	if cfg.Console.MaxConsoles > 0 {
		connOpts = append(connOpts, listener.WithMaxConsoles(cfg.Console.MaxConsoles))
	}
	cm := listener.NewConnectionManager(console.NewManager(store, sessions, consoleOpts...), connOpts...)

	workers := service.WorkerList{
		"nats": bus,
	}
	if !cfg.Console.DisableStdio {
		workers["console"] = listener.NewStdioListener(os.Stdin, os.Stdout, cm, stop)
	}
	if cfg.Console.TelnetPort != 0 {
		workers["telnet"] = listener.NewTelnetListener(cfg.Console.TelnetPort, cm)
	}
	if c, ok := slots.(io.Closer); ok {
		workers["session-storage"] = &closer{name: "session storage", c: c}
	}

	return workers, nil
}

// closer releases a resource once the app shuts down.
type closer struct {
	name string
	c    io.Closer
}

func (w *closer) Start(ctx context.Context) error {
	<-ctx.Done()
	if err := w.c.Close(); err != nil {
		slog.WarnContext(ctx, "closing "+w.name, "error", err)
	}
	return nil
}
