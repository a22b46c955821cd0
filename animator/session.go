// Package animator runs a palette animation session on an indexed display.
//
// A session owns the palette table and the lightness/chroma state. It draws a
// hue swirl once and then only rewrites the palette: statically, as an
// automatic sweep, or in response to input bytes.
package animator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/BeatGlow/lchdisplay/draw"
	"github.com/BeatGlow/lchdisplay/input"
	"github.com/BeatGlow/lchdisplay/palette"
)

// ErrNoInput is returned by New for an interactive session without input.
var ErrNoInput = errors.New("animator: interactive mode needs an input source")

// Screen is what a session draws on. A display.Display is a Screen.
type Screen interface {
	palette.Sink
	draw.Image

	// SetStatus sets the status line shown on the next refresh.
	SetStatus(string)

	// Refresh presents the bitmap through the palette.
	Refresh() error
}

// Options configure a Session.
type Options struct {
	Mode Mode

	// Start is the initial state, clamped to the axes.
	Start State

	Lightness Axis
	Chroma    Axis
	Keys      Keymap

	// Input is read in interactive mode.
	Input input.Source

	// Poll is the sleep between checks for input.
	Poll time.Duration

	// SweepChroma is the outer and SweepLightness the inner loop of a sweep.
	SweepChroma    Range
	SweepLightness Range

	// Delay between sweep frames.
	Delay time.Duration

	// Logger receives progress at debug level, nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns an interactive session starting at L 0.24, C 0.76.
func DefaultOptions() Options {
	return Options{
		Mode:           Interactive,
		Start:          State{L: 0.24, C: 0.76},
		Lightness:      Axis{Min: 0, Max: 1, Step: 0.01},
		Chroma:         Axis{Min: 0, Max: 2, Step: 0.01},
		Keys:           DefaultKeymap,
		Poll:           20 * time.Millisecond,
		SweepChroma:    Range{From: 0.2, To: 1.9, Step: 0.1},
		SweepLightness: Range{From: 0.1, To: 0.4, Step: 0.1},
		Delay:          100 * time.Millisecond,
	}
}

// Validate checks the options for the selected mode.
func (o *Options) Validate() error {
	var errs []error
	switch o.Mode {
	case Static:
	case Sweep:
		errs = append(errs, o.SweepChroma.Validate(), o.SweepLightness.Validate())
		if o.Delay < 0 {
			errs = append(errs, errors.New("animator: negative sweep delay"))
		}
	case Interactive:
		errs = append(errs, o.Lightness.Validate(), o.Chroma.Validate(), o.Keys.Validate())
		if o.Input == nil {
			errs = append(errs, ErrNoInput)
		}
		if o.Poll <= 0 {
			errs = append(errs, errors.New("animator: poll interval must be positive"))
		}
	default:
		errs = append(errs, ErrMode)
	}
	return errors.Join(errs...)
}

// Session animates the palette of one screen. It is not safe for concurrent use.
type Session struct {
	screen Screen
	opts   Options
	log    *slog.Logger
	state  State
	table  palette.Table
	frames int
}

// New returns a session drawing on screen.
func New(screen Screen, opts Options) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := &Session{
		screen: screen,
		opts:   opts,
		log:    opts.Logger,
		state: State{
			L: opts.Lightness.Clamp(opts.Start.L),
			C: opts.Chroma.Clamp(opts.Start.C),
		},
	}
	if opts.Mode != Interactive {
		s.state = opts.Start
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	return s, nil
}

// State is the current lightness and chroma.
func (s *Session) State() State {
	return s.state
}

// Table is the palette as of the last frame.
func (s *Session) Table() palette.Table {
	return s.table
}

// Frames is the number of palettes presented.
func (s *Session) Frames() int {
	return s.frames
}

// Run draws the swirl and runs the session until ctx is done. It returns
// ctx.Err(), or the first refresh error.
func (s *Session) Run(ctx context.Context) error {
	DrawSwirl(s.screen)
	s.log.Debug("session started", "mode", s.opts.Mode, "state", s.state)

	switch s.opts.Mode {
	case Sweep:
		return s.sweep(ctx)
	case Interactive:
		return s.interactive(ctx)
	default:
		if err := s.paint(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return ctx.Err()
	}
}

func (s *Session) sweep(ctx context.Context) error {
	var (
		cs    = s.opts.SweepChroma
		ls    = s.opts.SweepLightness
		timer = time.NewTimer(s.opts.Delay)
	)
	defer timer.Stop()
	for {
		for ci := 0; ci < cs.Len(); ci++ {
			for li := 0; li < ls.Len(); li++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				s.state = State{L: ls.At(li), C: cs.At(ci)}
				if err := s.paint(ctx); err != nil {
					return err
				}
				timer.Reset(s.opts.Delay)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-timer.C:
				}
			}
		}
	}
}

func (s *Session) interactive(ctx context.Context) error {
	if err := s.paint(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.opts.Poll)
	defer ticker.Stop()
	for {
		if s.opts.Input.Buffered() == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.drain(ctx) {
			if err := s.paint(ctx); err != nil {
				return err
			}
		}
	}
}

// drain applies every buffered input byte and reports whether any of them
// was a command.
func (s *Session) drain(ctx context.Context) (applied bool) {
	for s.opts.Input.Buffered() > 0 {
		b, err := s.opts.Input.ReadByte()
		if err != nil {
			break
		}
		if s.opts.Keys.Apply(&s.state, b, s.opts.Lightness, s.opts.Chroma) {
			applied = true
		} else {
			s.log.DebugContext(ctx, "ignored input", "byte", b)
		}
	}
	return
}

// paint fills the palette for the current state and presents it.
func (s *Session) paint(ctx context.Context) error {
	palette.Fill(&s.table, s.state.L, s.state.C)
	s.table.Apply(s.screen)
	s.screen.SetStatus(s.state.String())
	if s.log.Enabled(ctx, slog.LevelDebug) {
		s.log.DebugContext(ctx, "palette", "state", s.state, "stats", palette.Measure(&s.table, s.state.L, s.state.C))
	}
	if err := s.screen.Refresh(); err != nil {
		return err
	}
	s.frames++
	return nil
}
