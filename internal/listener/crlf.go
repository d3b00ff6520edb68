package listener

import (
	"io"
)

// lineEndings translates between network line endings and the bare \n the
// console works with. Input ending in \r\n, \r\x00 or a lone \r becomes \n,
// including when the pair is split across reads. Output \n becomes \r\n.
type lineEndings struct {
	rw io.ReadWriter

	// afterCR is set when the last byte read was a \r already emitted as \n.
	afterCR bool
	// lastOut is the last byte written, so a \r\n already in the output is
	// not doubled.
	lastOut byte
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &lineEndings{rw: rw}
}

func (l *lineEndings) Read(p []byte) (int, error) {
	for {
		n, err := l.rw.Read(p)
		out := 0
		for _, b := range p[:n] {
			switch {
			case l.afterCR && (b == '\n' || b == 0):
				l.afterCR = false
			case b == '\r':
				p[out] = '\n'
				out++
				l.afterCR = true
			default:
				p[out] = b
				out++
				l.afterCR = false
			}
		}
		// A read that held only the tail of a \r\n must not look like EOF.
		if out > 0 || err != nil || n == 0 {
			return out, err
		}
	}
}

func (l *lineEndings) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	buf := make([]byte, 0, len(p)+len(p)/8)
	prev := l.lastOut
	for _, b := range p {
		if b == '\n' && prev != '\r' {
			buf = append(buf, '\r')
		}
		buf = append(buf, b)
		prev = b
	}

	if _, err := l.rw.Write(buf); err != nil {
		return 0, err
	}
	l.lastOut = prev
	return len(p), nil
}
