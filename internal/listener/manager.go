package listener

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const refusedMessage = "Too many consoles are open right now. Try again later.\n"

// SessionRunner runs one console over a connection until it ends.
type SessionRunner interface {
	RunSession(ctx context.Context, conn io.ReadWriter) error
}

type ConnectionManagerOpt func(*ConnectionManager)

// WithMaxConsoles caps how many consoles may be open at once. Zero means no
// limit.
func WithMaxConsoles(n int) ConnectionManagerOpt {
	return func(m *ConnectionManager) {
		m.max = n
	}
}

// ConnectionManager hands accepted connections to the console runner and
// keeps track of which consoles are open.
type ConnectionManager struct {
	runner SessionRunner
	max    int

	mu     sync.Mutex
	active map[string]string
}

func NewConnectionManager(runner SessionRunner, opts ...ConnectionManagerOpt) *ConnectionManager {
	m := &ConnectionManager{
		runner: runner,
		active: map[string]string{},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// AcceptConnection runs a console over conn and returns when it closes.
// origin names the listener the connection arrived on. Connections over the
// limit are told so and returned without a console.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, origin string, conn io.ReadWriter) {
	id, ok := m.admit(origin)
	if !ok {
		slog.WarnContext(ctx, "console refused", "origin", origin, "open", m.Open(), "max", m.max)
		if _, err := io.WriteString(conn, refusedMessage); err != nil {
			slog.DebugContext(ctx, "writing refusal", "origin", origin, "error", err)
		}
		return
	}
	defer m.release(id)

	log := slog.With("conn", id, "origin", origin)
	log.InfoContext(ctx, "console opened")

	start := time.Now()
	err := m.runner.RunSession(ctx, conn)
	if err != nil && ctx.Err() == nil {
		log.WarnContext(ctx, "console session", "error", err)
	}
	log.InfoContext(ctx, "console closed", "duration", time.Since(start).Round(time.Millisecond))
}

// Open reports how many consoles are currently running.
func (m *ConnectionManager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *ConnectionManager) admit(origin string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.max > 0 && len(m.active) >= m.max {
		return "", false
	}
	id := uuid.New().String()
	m.active[id] = origin
	return id, true
}

func (m *ConnectionManager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, id)
}
