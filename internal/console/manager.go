package console

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pixil98/bitcraft-companion/internal/display"
	"github.com/pixil98/bitcraft-companion/internal/session"
	"github.com/pixil98/bitcraft-companion/internal/state"
)

// Manager starts consoles that all share one state store and session.
type Manager struct {
	store    *state.Store
	sessions *session.Store
	handler  *Handler
	bus      Bus
	width    int

	active atomic.Int32
}

type ManagerOpt func(*Manager)

// WithBus lets consoles hear about changes made by other consoles.
func WithBus(b Bus) ManagerOpt {
	return func(m *Manager) {
		m.bus = b
	}
}

// WithWidth sets the wrap width. Zero disables wrapping.
func WithWidth(w int) ManagerOpt {
	return func(m *Manager) {
		m.width = w
	}
}

func NewManager(store *state.Store, sessions *session.Store, opts ...ManagerOpt) *Manager {
	m := &Manager{
		store:    store,
		sessions: sessions,
		handler:  NewHandler(),
		width:    display.DefaultWidth,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RunSession runs a console on conn until the user quits or input ends.
func (m *Manager) RunSession(ctx context.Context, conn io.ReadWriter) error {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	slog.InfoContext(ctx, "console session started", "active", n)

	return m.newConsole(conn).Run(ctx)
}

func (m *Manager) newConsole(conn io.ReadWriter) *Console {
	return &Console{
		in:       bufio.NewReader(conn),
		out:      conn,
		store:    m.store,
		sessions: m.sessions,
		handler:  m.handler,
		bus:      m.bus,
		width:    m.width,
		lines:    make(chan string),
		readErr:  make(chan error, 1),
		changes:  make(chan state.Change, 16),
		done:     make(chan struct{}),
		seen:     map[string]time.Time{},
	}
}
