package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

const shutdownMessage = "\r\nThe companion is shutting down. Goodbye!\r\n"

// TelnetListener serves a console to every telnet client on its port.
type TelnetListener struct {
	addr string
	cm   *ConnectionManager
}

func NewTelnetListener(port uint16, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		addr: fmt.Sprintf(":%d", port),
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	conns := newTelnetConsoles(ctx, l.cm)
	svr := telnet.NewServer(l.addr, conns)

	stop := context.AfterFunc(ctx, func() { svr.Stop() })
	defer stop()

	slog.InfoContext(ctx, "serving consoles over telnet", "addr", l.addr)

	err := svr.ListenAndServe()
	conns.shutdown()

	switch {
	case ctx.Err() != nil:
		return nil
	case errors.Is(err, syscall.EADDRINUSE):
		return fmt.Errorf("telnet address %s is already in use (another companion running?)", l.addr)
	case err != nil:
		return fmt.Errorf("serving telnet on %s: %w", l.addr, err)
	}
	return nil
}

// telnetConsoles runs a console per telnet connection. The consoles run on a
// context detached from the accept loop so shutdown can say goodbye to each
// one before cancelling it.
type telnetConsoles struct {
	cm     *ConnectionManager
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	open   map[io.Writer]struct{}
}

func newTelnetConsoles(ctx context.Context, cm *ConnectionManager) *telnetConsoles {
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	return &telnetConsoles{
		cm:     cm,
		ctx:    connCtx,
		cancel: cancel,
		open:   map[io.Writer]struct{}{},
	}
}

func (t *telnetConsoles) HandleTelnet(conn *telnet.Connection) {
	t.serve(conn)
}

func (t *telnetConsoles) serve(conn io.ReadWriteCloser) {
	defer func() {
		if err := conn.Close(); err != nil {
			slog.DebugContext(t.ctx, "closing telnet connection", "error", err)
		}
	}()

	if !t.track(conn) {
		return
	}
	defer t.untrack(conn)

	t.cm.AcceptConnection(t.ctx, "telnet", newCRLFReadWriter(conn))
}

func (t *telnetConsoles) track(w io.Writer) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return false
	}
	t.open[w] = struct{}{}
	t.wg.Add(1)
	return true
}

func (t *telnetConsoles) untrack(w io.Writer) {
	t.mu.Lock()
	delete(t.open, w)
	t.mu.Unlock()
	t.wg.Done()
}

// shutdown tells every open console the companion is going away, ends them,
// and waits for their connections to close.
func (t *telnetConsoles) shutdown() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	for w := range t.open {
		if _, err := io.WriteString(w, shutdownMessage); err != nil {
			slog.DebugContext(t.ctx, "writing shutdown notice", "error", err)
		}
	}
	t.mu.Unlock()

	t.cancel()
	t.wg.Wait()
}
