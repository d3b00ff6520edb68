package listener

import (
	"context"
	"io"
	"log/slog"
)

// StdioListener runs a single console on the process's own terminal. When
// that console ends, onClose is called so the process can shut down.
type StdioListener struct {
	rw      io.ReadWriter
	cm      *ConnectionManager
	onClose func()
}

type stdio struct {
	io.Reader
	io.Writer
}

func NewStdioListener(in io.Reader, out io.Writer, cm *ConnectionManager, onClose func()) *StdioListener {
	return &StdioListener{
		rw:      &stdio{Reader: in, Writer: out},
		cm:      cm,
		onClose: onClose,
	}
}

func (l *StdioListener) Start(ctx context.Context) error {
	l.cm.AcceptConnection(ctx, "stdio", l.rw)

	if ctx.Err() == nil {
		slog.InfoContext(ctx, "console closed")
		if l.onClose != nil {
			l.onClose()
		}
	}

	<-ctx.Done()
	return nil
}
