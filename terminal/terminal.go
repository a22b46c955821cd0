// Package terminal shows a display on a text terminal.
//
// Every character cell shows two pixels with the upper half block: the
// foreground color is the upper pixel, the background color the lower one.
// The last row holds the status line. Keys typed into the terminal are
// available through Input.
package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/BeatGlow/lchdisplay"
	"github.com/BeatGlow/lchdisplay/input"
	"github.com/BeatGlow/lchdisplay/pixel"
)

const upperHalfBlock = '▀'

// Screen is a display.Display drawn with tcell.
type Screen struct {
	display.Indexed
	screen      tcell.Screen
	keys        input.Queue
	onInterrupt func()
	done        chan struct{}
}

// Open takes over the terminal. A zero Width or Height in config fills the
// terminal. onInterrupt is called for Escape and Ctrl-C.
func Open(config *display.Config, onInterrupt func()) (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	if err = s.Init(); err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	d, err := newScreen(s, config, onInterrupt)
	if err != nil {
		s.Fini()
		return nil, err
	}
	return d, nil
}

// newScreen wraps an initialized tcell screen.
func newScreen(s tcell.Screen, config *display.Config, onInterrupt func()) (*Screen, error) {
	cols, rows := s.Size()
	if config.Width == 0 {
		config.Width = max(cols, 1)
	}
	if config.Height == 0 {
		config.Height = max(rows-1, 1) * 2
	}
	if config.Depth == 0 {
		config.Depth = 16
	}

	d := &Screen{
		screen:      s,
		onInterrupt: onInterrupt,
		done:        make(chan struct{}),
	}
	if err := d.Init(config); err != nil {
		return nil, err
	}
	s.HideCursor()
	go d.poll()
	return d, nil
}

func (d *Screen) poll() {
	defer close(d.done)
	for {
		switch ev := d.screen.PollEvent().(type) {
		case nil:
			// Screen finalized.
			return
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				if d.onInterrupt != nil {
					d.onInterrupt()
				}
			case tcell.KeyRune:
				if r := ev.Rune(); r < 0x80 {
					d.keys.Push(byte(r))
				}
			}
		case *tcell.EventResize:
			d.screen.Sync()
		}
	}
}

// Input returns the keys typed into the terminal.
func (d *Screen) Input() input.Source {
	return &d.keys
}

func (d *Screen) String() string {
	cols, rows := d.screen.Size()
	return fmt.Sprintf("terminal %dx%d", cols, rows)
}

// Close restores the terminal.
func (d *Screen) Close() error {
	d.screen.Fini()
	<-d.done
	return nil
}

// Refresh scales the bitmap onto the terminal and writes the status line on
// the last row.
func (d *Screen) Refresh() error {
	var (
		cols, rows = d.screen.Size()
		lines      = rows - 1
		bounds     = d.Bounds()
	)
	if cols <= 0 || lines <= 0 {
		return nil
	}

	for cy := 0; cy < lines; cy++ {
		top := bounds.Min.Y + (2*cy)*bounds.Dy()/(2*lines)
		bot := bounds.Min.Y + (2*cy+1)*bounds.Dy()/(2*lines)
		for cx := 0; cx < cols; cx++ {
			x := bounds.Min.X + cx*bounds.Dx()/cols
			style := tcell.StyleDefault.
				Foreground(tcellColor(d.Palette[d.IndexAt(x, top)])).
				Background(tcellColor(d.Palette[d.IndexAt(x, bot)]))
			d.screen.SetContent(cx, cy, upperHalfBlock, nil, style)
		}
	}

	status := []rune(d.Status())
	for cx := 0; cx < cols; cx++ {
		r := ' '
		if cx < len(status) {
			r = status[cx]
		}
		d.screen.SetContent(cx, lines, r, nil, tcell.StyleDefault)
	}

	d.screen.Show()
	return nil
}

func tcellColor(c pixel.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

var _ display.Display = (*Screen)(nil)
