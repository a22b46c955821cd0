// Package input provides the byte sources that drive an interactive session:
// a serial line, the controlling terminal and GPIO push buttons.
//
// Every source feeds a Queue, which the session polls without blocking.
package input

import (
	"io"
	"sync"
)

// Source is polled by the session: Buffered reports how many bytes can be
// read without blocking.
type Source interface {
	Buffered() int
	ReadByte() (byte, error)
}

// Queue is an unbounded FIFO of input bytes, safe for concurrent use.
type Queue struct {
	mu  sync.Mutex
	buf []byte
}

// Push appends bytes to the queue.
func (q *Queue) Push(b ...byte) {
	q.mu.Lock()
	q.buf = append(q.buf, b...)
	q.mu.Unlock()
}

// Write implements io.Writer, so a Queue can be the target of io.Copy.
func (q *Queue) Write(p []byte) (int, error) {
	q.Push(p...)
	return len(p), nil
}

func (q *Queue) Buffered() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// ReadByte returns io.EOF if the queue is empty.
func (q *Queue) ReadByte() (byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return 0, io.EOF
	}
	b := q.buf[0]
	q.buf = q.buf[1:]
	if len(q.buf) == 0 {
		q.buf = nil
	}
	return b, nil
}

// pump copies r into q until r fails or is closed. The error is sent on done,
// io.EOF and closed files are reported as nil.
func pump(q *Queue, r io.Reader, done chan<- error) {
	_, err := io.Copy(q, r)
	done <- err
}

var (
	_ Source    = (*Queue)(nil)
	_ io.Writer = (*Queue)(nil)
)
