package input

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Interrupt is the byte a raw terminal delivers for Ctrl-C.
const Interrupt = 0x03

// Stdin reads input bytes from the controlling terminal in raw mode, so keys
// arrive without waiting for a newline.
type Stdin struct {
	Queue
	fd    int
	state *term.State
}

// OpenStdin switches standard input to raw mode. Raw mode disables the
// terminal's signal keys: onInterrupt is called whenever Ctrl-C is typed.
func OpenStdin(onInterrupt func()) (*Stdin, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("input: stdin is not a terminal")
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("input: raw mode: %w", err)
	}

	s := &Stdin{fd: fd, state: state}
	go func() {
		_, _ = io.Copy(&interruptWriter{w: &s.Queue, onInterrupt: onInterrupt}, os.Stdin)
	}()
	return s, nil
}

func (s *Stdin) String() string {
	return "stdin"
}

// Close restores the terminal. The reader stays blocked on stdin until the
// process exits.
func (s *Stdin) Close() error {
	return term.Restore(s.fd, s.state)
}

// interruptWriter forwards everything except Interrupt bytes.
type interruptWriter struct {
	w           io.Writer
	onInterrupt func()
}

func (w *interruptWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		i := 0
		for i < len(p) && p[i] != Interrupt {
			i++
		}
		if i > 0 {
			if _, err := w.w.Write(p[:i]); err != nil {
				return 0, err
			}
		}
		if i < len(p) {
			if w.onInterrupt != nil {
				w.onInterrupt()
			}
			i++
		}
		p = p[i:]
	}
	return n, nil
}
