// Package config loads the command configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/BeatGlow/lchdisplay"
	"github.com/BeatGlow/lchdisplay/animator"
	"github.com/BeatGlow/lchdisplay/framebuffer"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Display backends.
const (
	BackendMemory      = "memory"
	BackendFramebuffer = "framebuffer"
	BackendST7789      = "st7789"
	BackendST7735      = "st7735"
	BackendTerminal    = "terminal"
)

// Input sources.
const (
	InputNone     = "none"
	InputTerminal = "terminal"
	InputStdin    = "stdin"
	InputSerial   = "serial"
	InputButtons  = "buttons"
)

// Config is the command configuration.
type Config struct {
	Mode      animator.Mode `toml:"mode"`
	Poll      Duration      `toml:"poll"`
	Display   Display       `toml:"display"`
	Input     Input         `toml:"input"`
	Lightness Axis          `toml:"lightness"`
	Chroma    Axis          `toml:"chroma"`
	Sweep     Sweep         `toml:"sweep"`
	Keys      Keys          `toml:"keys"`
}

// Display selects and configures the display backend.
type Display struct {
	Backend     string  `toml:"backend"`
	Width       int     `toml:"width"`
	Height      int     `toml:"height"`
	Depth       int     `toml:"depth"`
	Rotation    int     `toml:"rotation"`
	MemoryLimit int     `toml:"memory_limit"`
	Font        string  `toml:"font"`
	FontSize    float64 `toml:"font_size"`
	Device      string  `toml:"device"`
	PNG         string  `toml:"png"`
	SPI         SPI     `toml:"spi"`
}

// SPI configures the bus and pins of SPI panels. Pins are GPIO names.
type SPI struct {
	Bus       int    `toml:"bus"`
	Device    int    `toml:"device"`
	SpeedHz   uint32 `toml:"speed_hz"`
	Reset     string `toml:"reset"`
	DC        string `toml:"dc"`
	CE        string `toml:"ce"`
	Backlight string `toml:"backlight"`
}

// Input selects the input source of interactive sessions.
type Input struct {
	Source  string   `toml:"source"`
	Serial  string   `toml:"serial"`
	Baud    int      `toml:"baud"`
	Buttons []Button `toml:"buttons"`
}

// Button maps a GPIO pin name to a key.
type Button struct {
	Pin string `toml:"pin"`
	Key Key    `toml:"key"`
}

// Axis bounds lightness or chroma.
type Axis struct {
	Start float64 `toml:"start"`
	Min   float64 `toml:"min"`
	Max   float64 `toml:"max"`
	Step  float64 `toml:"step"`
}

// Range is a sweep range.
type Range struct {
	From float64 `toml:"from"`
	To   float64 `toml:"to"`
	Step float64 `toml:"step"`
}

// Sweep configures the sweep mode.
type Sweep struct {
	Chroma    Range    `toml:"chroma"`
	Lightness Range    `toml:"lightness"`
	Delay     Duration `toml:"delay"`
}

// Keys assigns the interactive commands.
type Keys struct {
	LighterL Key `toml:"lighter_l"`
	DarkerL  Key `toml:"darker_l"`
	MoreC    Key `toml:"more_c"`
	LessC    Key `toml:"less_c"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	opts := animator.DefaultOptions()
	return Config{
		Mode: opts.Mode,
		Poll: Duration(opts.Poll),
		Display: Display{
			Backend:  BackendTerminal,
			FontSize: display.DefaultLabelSize,
			Device:   framebuffer.DefaultDevice,
			SPI: SPI{
				Bus:     display.DefaultSPIConfig.Bus,
				Device:  display.DefaultSPIConfig.Device,
				SpeedHz: display.DefaultSPIConfig.SpeedHz,
				Reset:   "GPIO25",
				DC:      "GPIO24",
			},
		},
		Input: Input{
			Source: InputTerminal,
			Baud:   115200,
		},
		Lightness: axisOf(opts.Lightness, opts.Start.L),
		Chroma:    axisOf(opts.Chroma, opts.Start.C),
		Sweep: Sweep{
			Chroma:    rangeOf(opts.SweepChroma),
			Lightness: rangeOf(opts.SweepLightness),
			Delay:     Duration(opts.Delay),
		},
		Keys: Keys{
			LighterL: Key(opts.Keys.LighterL),
			DarkerL:  Key(opts.Keys.DarkerL),
			MoreC:    Key(opts.Keys.MoreC),
			LessC:    Key(opts.Keys.LessC),
		},
	}
}

func axisOf(a animator.Axis, start float64) Axis {
	return Axis{Start: start, Min: a.Min, Max: a.Max, Step: a.Step}
}

func rangeOf(r animator.Range) Range {
	return Range{From: r.From, To: r.To, Step: r.Step}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(name string) (Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()

	c, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", name, err)
	}
	return c, nil
}

// Decode reads TOML over the defaults and validates the result. Unknown keys
// are an error.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	if err := toml.NewDecoder(r).DisallowUnknownFields().Decode(&c); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate reports every problem found, each wrapping ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	switch c.Display.Backend {
	case BackendMemory, BackendFramebuffer, BackendST7789, BackendST7735, BackendTerminal:
	default:
		invalid("display backend %q", c.Display.Backend)
	}
	if c.Display.Width < 0 || c.Display.Height < 0 {
		invalid("display size %dx%d", c.Display.Width, c.Display.Height)
	}
	switch c.Display.Depth {
	case 0, 8, 16:
	default:
		invalid("display depth %d, expected 8 or 16", c.Display.Depth)
	}
	if c.Display.Rotation%90 != 0 {
		invalid("display rotation %d, expected a multiple of 90", c.Display.Rotation)
	}
	if c.Display.MemoryLimit < 0 {
		invalid("negative memory limit")
	}
	if c.Display.FontSize <= 0 {
		invalid("font size %g", c.Display.FontSize)
	}

	if c.Mode == animator.Interactive {
		switch c.Input.Source {
		case InputTerminal:
			if c.Display.Backend != BackendTerminal {
				invalid("terminal input needs the terminal display backend")
			}
		case InputStdin:
		case InputSerial:
			if c.Input.Serial == "" {
				invalid("serial input without a port")
			}
		case InputButtons:
			if len(c.Input.Buttons) == 0 {
				invalid("button input without buttons")
			}
		case InputNone:
			invalid("interactive mode without input")
		default:
			invalid("input source %q", c.Input.Source)
		}
	}

	for name, a := range map[string]Axis{"lightness": c.Lightness, "chroma": c.Chroma} {
		if err := (animator.Axis{Min: a.Min, Max: a.Max, Step: a.Step}).Validate(); err != nil {
			invalid("%s: %v", name, err)
		} else if a.Start < a.Min || a.Start > a.Max {
			invalid("%s: start %g outside [%g, %g]", name, a.Start, a.Min, a.Max)
		}
	}
	for name, r := range map[string]Range{"sweep chroma": c.Sweep.Chroma, "sweep lightness": c.Sweep.Lightness} {
		if err := (animator.Range{From: r.From, To: r.To, Step: r.Step}).Validate(); err != nil {
			invalid("%s: %v", name, err)
		}
	}
	if c.Sweep.Delay < 0 {
		invalid("negative sweep delay")
	}
	if c.Poll <= 0 {
		invalid("poll interval must be positive")
	}
	if err := c.Keymap().Validate(); err != nil {
		invalid("keys: %v", err)
	}
	return errors.Join(errs...)
}

// Keymap of the configured keys.
func (c Config) Keymap() animator.Keymap {
	return animator.Keymap{
		LighterL: byte(c.Keys.LighterL),
		DarkerL:  byte(c.Keys.DarkerL),
		MoreC:    byte(c.Keys.MoreC),
		LessC:    byte(c.Keys.LessC),
	}
}

// Options for an animator session, without input and logger.
func (c Config) Options() animator.Options {
	return animator.Options{
		Mode:           c.Mode,
		Start:          animator.State{L: c.Lightness.Start, C: c.Chroma.Start},
		Lightness:      animator.Axis{Min: c.Lightness.Min, Max: c.Lightness.Max, Step: c.Lightness.Step},
		Chroma:         animator.Axis{Min: c.Chroma.Min, Max: c.Chroma.Max, Step: c.Chroma.Step},
		Keys:           c.Keymap(),
		Poll:           time.Duration(c.Poll),
		SweepChroma:    animator.Range{From: c.Sweep.Chroma.From, To: c.Sweep.Chroma.To, Step: c.Sweep.Chroma.Step},
		SweepLightness: animator.Range{From: c.Sweep.Lightness.From, To: c.Sweep.Lightness.To, Step: c.Sweep.Lightness.Step},
		Delay:          time.Duration(c.Sweep.Delay),
	}
}

// Mode is the requested video mode.
func (d Display) Mode() display.Mode {
	return display.Mode{Width: d.Width, Height: d.Height, Depth: d.Depth}
}

// Config for the display package, for mode m.
func (d Display) Config(m display.Mode) *display.Config {
	return &display.Config{
		Width:       m.Width,
		Height:      m.Height,
		Depth:       m.Depth,
		Rotation:    display.Rotation(d.Rotation / 90),
		MemoryLimit: d.MemoryLimit,
	}
}
