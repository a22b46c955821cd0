package animator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BeatGlow/lchdisplay/input"
	"github.com/BeatGlow/lchdisplay/palette"
	"github.com/BeatGlow/lchdisplay/pixel"
)

type testScreen struct {
	*pixel.Indexed8Image
	entries   int
	status    string
	refreshes int
	onRefresh func(n int) error
}

func newTestScreen(onRefresh func(n int) error) *testScreen {
	return &testScreen{
		Indexed8Image: pixel.NewIndexed8Image(16, 16),
		onRefresh:     onRefresh,
	}
}

func (s *testScreen) SetEntry(index uint8, c pixel.RGB) {
	s.Palette[index] = c
	s.entries++
}

func (s *testScreen) SetStatus(text string) {
	s.status = text
}

func (s *testScreen) Refresh() error {
	s.refreshes++
	if s.onRefresh != nil {
		return s.onRefresh(s.refreshes)
	}
	return nil
}

// cancelAfter cancels the context on refresh n.
func cancelAfter(n int, cancel context.CancelFunc) func(int) error {
	return func(i int) error {
		if i >= n {
			cancel()
		}
		return nil
	}
}

func interactiveOptions(in input.Source) Options {
	opts := DefaultOptions()
	opts.Input = in
	opts.Poll = time.Millisecond
	return opts
}

func TestSessionInteractive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var q input.Queue
	q.Push('d', 'd')
	screen := newTestScreen(cancelAfter(2, cancel))
	s, err := New(screen, interactiveOptions(&q))
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if v, want := s.State(), (State{L: 0.24, C: 0.78}); v != want {
		t.Errorf("expected state %v, got %v", want, v)
	}
	// Initial frame plus one frame for both keys.
	if screen.refreshes != 2 {
		t.Errorf("expected 2 refreshes, got %d", screen.refreshes)
	}
	if screen.entries != 2*palette.Size {
		t.Errorf("expected 2 palette loads, got %d entries", screen.entries)
	}
	if v, want := s.Table(), *palette.New(0.24, 0.78); v != want {
		t.Error("expected table filled for L 0.24, C 0.78")
	}
	if screen.Palette != s.Table() {
		t.Error("expected the screen palette to match the table")
	}
	if v, want := screen.status, "L 0.24  C 0.78"; v != want {
		t.Errorf("expected status %q, got %q", want, v)
	}
}

func TestSessionBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var q input.Queue
	screen := newTestScreen(func(n int) error {
		switch n {
		case 1:
			// Arrives between two polls.
			q.Push([]byte("wwWsdAa")...)
		case 2:
			cancel()
		}
		return nil
	})
	s, err := New(screen, interactiveOptions(&q))
	if err != nil {
		t.Fatal(err)
	}
	_ = s.Run(ctx)

	if screen.refreshes != 2 {
		t.Errorf("expected a single repaint for the batch, got %d refreshes", screen.refreshes)
	}
	if v, want := s.State(), (State{L: 0.26, C: 0.75}); v != want {
		t.Errorf("expected state %v, got %v", want, v)
	}
	if v, want := s.Table(), *palette.New(0.26, 0.75); v != want {
		t.Error("expected table to reflect all commands")
	}
}

func TestSessionClamp(t *testing.T) {
	tests := []struct {
		Name  string
		Start State
		Key   byte
		Want  State
	}{
		{"lightness at max", State{L: 1, C: 0.5}, 'w', State{L: 1, C: 0.5}},
		{"lightness at min", State{L: 0, C: 0.5}, 's', State{L: 0, C: 0.5}},
		{"chroma at max", State{L: 0.5, C: 2}, 'd', State{L: 0.5, C: 2}},
		{"chroma at min", State{L: 0.5, C: 0}, 'a', State{L: 0.5, C: 0}},
		{"chroma below max", State{L: 0.5, C: 1.995}, 'D', State{L: 0.5, C: 2}},
	}
	for _, test := range tests {
		t.Run(test.Name, func(it *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			var q input.Queue
			q.Push(test.Key)
			opts := interactiveOptions(&q)
			opts.Start = test.Start
			s, err := New(newTestScreen(cancelAfter(2, cancel)), opts)
			if err != nil {
				it.Fatal(err)
			}
			_ = s.Run(ctx)
			if v := s.State(); v != test.Want {
				it.Errorf("expected %v, got %v", test.Want, v)
			}
		})
	}
}

func TestSessionIgnoresUnknown(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var q input.Queue
	q.Push([]byte("xq 1\n")...)
	screen := newTestScreen(nil)
	s, err := New(screen, interactiveOptions(&q))
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if v, want := s.State(), (State{L: 0.24, C: 0.76}); v != want {
		t.Errorf("expected state %v, got %v", want, v)
	}
	if screen.refreshes != 1 {
		t.Errorf("expected only the initial refresh, got %d", screen.refreshes)
	}
	if q.Buffered() != 0 {
		t.Errorf("expected input to be consumed, %d bytes left", q.Buffered())
	}
}

func TestSessionStatic(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	screen := newTestScreen(nil)
	opts := DefaultOptions()
	opts.Mode = Static
	opts.Start = State{L: 0.5, C: 0.2}
	s, err := New(screen, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if screen.refreshes != 1 {
		t.Errorf("expected 1 refresh, got %d", screen.refreshes)
	}
	if screen.Palette != *palette.New(0.5, 0.2) {
		t.Error("expected palette for L 0.5, C 0.2")
	}
	// The swirl uses every slot but the background.
	if v := screen.IndexAt(0, 0); v == palette.Background {
		t.Errorf("expected swirl pixel, got background")
	}
}

func TestSessionSweep(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var states []State
	screen := newTestScreen(nil)
	opts := DefaultOptions()
	opts.Mode = Sweep
	opts.Delay = 0
	opts.SweepChroma = Range{From: 0.2, To: 0.3, Step: 0.1}
	opts.SweepLightness = Range{From: 0.1, To: 0.2, Step: 0.1}

	s, err := New(screen, opts)
	if err != nil {
		t.Fatal(err)
	}
	screen.onRefresh = func(n int) error {
		states = append(states, s.State())
		if n == 5 {
			cancel()
		}
		return nil
	}
	if err = s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	want := []State{
		{L: 0.1, C: 0.2},
		{L: 0.2, C: 0.2},
		{L: 0.1, C: 0.3},
		{L: 0.2, C: 0.3},
		{L: 0.1, C: 0.2}, // repeats
	}
	if len(states) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(states))
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("frame %d: expected %v, got %v", i, want[i], states[i])
		}
	}
}

func TestSessionRefreshError(t *testing.T) {
	fail := errors.New("refresh failed")
	opts := DefaultOptions()
	opts.Mode = Static
	s, err := New(newTestScreen(func(int) error { return fail }), opts)
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Run(context.Background()); !errors.Is(err, fail) {
		t.Errorf("expected %v, got %v", fail, err)
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(newTestScreen(nil), DefaultOptions()); !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}

	opts := DefaultOptions()
	opts.Mode = Sweep
	opts.SweepChroma.Step = 0
	if _, err := New(newTestScreen(nil), opts); err == nil {
		t.Error("expected error for zero sweep step")
	}
}
