// Command lchdisplay animates a palette of equal lightness hues on an indexed
// display.
//
// Usage:
//
//	lchdisplay [flags]
//
// Settings are read from the TOML file given with -config, flags override
// them. In interactive mode w/s change lightness and d/a change chroma.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/lchdisplay"
	"github.com/BeatGlow/lchdisplay/animator"
	"github.com/BeatGlow/lchdisplay/config"
	"github.com/BeatGlow/lchdisplay/framebuffer"
	"github.com/BeatGlow/lchdisplay/input"
	"github.com/BeatGlow/lchdisplay/terminal"
)

// defaultMemoryMode is used by the memory backend when no size is configured.
var defaultMemoryMode = display.Mode{Width: 320, Height: 240, Depth: 16}

func main() {
	configFlag := flag.String("config", "", "TOML configuration file")
	modeFlag := flag.String("mode", "", "Session mode: static, sweep or interactive")
	backendFlag := flag.String("backend", "", "Display backend: memory, framebuffer, st7789, st7735 or terminal")
	widthFlag := flag.Int("width", 0, "Display width")
	heightFlag := flag.Int("height", 0, "Display height")
	depthFlag := flag.Int("depth", 0, "Display depth in bits (8 or 16)")
	memoryFlag := flag.Int("memory-limit", 0, "Display memory budget in bytes")
	rotateFlag := flag.String("rotate", "", "Display rotation")
	deviceFlag := flag.String("fb", "", "Framebuffer device")
	fontFlag := flag.String("font", "", "TrueType font for the status line")
	inputFlag := flag.String("input", "", "Input source: terminal, stdin, serial, buttons or none")
	serialFlag := flag.String("serial", "", "Serial port for serial input")
	pngFlag := flag.String("png", "", "Write the last frame of the memory backend to this PNG file")
	verboseFlag := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	cfg := config.Default()
	if *configFlag != "" {
		var err error
		if cfg, err = config.Load(*configFlag); err != nil {
			fatal(err)
		}
	}

	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			if cfg.Mode, err = animator.ParseMode(*modeFlag); err != nil {
				fatal(err)
			}
		case "backend":
			cfg.Display.Backend = *backendFlag
			if *backendFlag != config.BackendTerminal && cfg.Input.Source == config.InputTerminal {
				cfg.Input.Source = config.InputStdin
			}
		case "width":
			cfg.Display.Width = *widthFlag
		case "height":
			cfg.Display.Height = *heightFlag
		case "depth":
			cfg.Display.Depth = *depthFlag
		case "memory-limit":
			cfg.Display.MemoryLimit = *memoryFlag
		case "rotate":
			if cfg.Display.Rotation, err = parseRotation(*rotateFlag); err != nil {
				fatal(err)
			}
		case "fb":
			cfg.Display.Device = *deviceFlag
		case "font":
			cfg.Display.Font = *fontFlag
		case "input":
			cfg.Input.Source = *inputFlag
		case "serial":
			cfg.Input.Serial = *serialFlag
		case "png":
			cfg.Display.PNG = *pngFlag
		}
	})
	if err = cfg.Validate(); err != nil {
		fatal(err)
	}

	if err = run(cfg, *verboseFlag); err != nil {
		fatal(err)
	}
}

// run opens the display and input and runs the session until it is
// interrupted. Resources are released before it returns.
func run(cfg config.Config, verbose bool) error {
	level := slog.LevelInfo
	if verbose || os.Getenv("LCHDISPLAY_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// The terminal backend owns stdout and stderr while it runs.
	quiet := cfg.Display.Backend == config.BackendTerminal
	say := func(format string, args ...any) {
		if !quiet {
			fmt.Printf(format+"\n", args...)
		}
	}
	if quiet {
		logger = slog.New(slog.DiscardHandler)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Display.Backend == config.BackendST7789 || cfg.Display.Backend == config.BackendST7735 || (cfg.Mode == animator.Interactive && cfg.Input.Source == config.InputButtons) {
		if _, err := host.Init(); err != nil {
			return err
		}
	}

	var label *display.Label
	if cfg.Display.Font != "" {
		ttf, err := os.ReadFile(cfg.Display.Font)
		if err != nil {
			return err
		}
		if label, err = display.NewLabel(ttf, cfg.Display.FontSize); err != nil {
			return fmt.Errorf("font %s: %w", cfg.Display.Font, err)
		}
	}

	mode := cfg.Display.Mode()
	if cfg.Display.Backend == config.BackendMemory {
		if mode.Width == 0 || mode.Height == 0 {
			mode.Width, mode.Height = defaultMemoryMode.Width, defaultMemoryMode.Height
		}
		if mode.Depth == 0 {
			mode.Depth = defaultMemoryMode.Depth
		}
	}
	say("requesting video mode %s on %s", mode, cfg.Display.Backend)

	output, err := display.Acquire(nil, mode, opener(&cfg, label, stop))
	if err != nil {
		if output != nil {
			// The fallback display shows the error, keep it up for a moment.
			err = errors.Join(err, writePNG(cfg.Display.PNG, output))
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			_ = output.Close()
		}
		return err
	}
	defer func() { _ = output.Close() }()
	say("using display: %s", output)

	var source input.Source
	if cfg.Mode == animator.Interactive {
		var closer func() error
		if source, closer, err = openInput(&cfg, output, stop); err != nil {
			return err
		}
		if closer != nil {
			defer func() { _ = closer() }()
		}
		say("using input: %s", source)
	}

	opts := cfg.Options()
	opts.Input = source
	opts.Logger = logger
	session, err := animator.New(output, opts)
	if err != nil {
		return err
	}

	say("running %s session, hit control-c to stop...", cfg.Mode)
	if err = session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err = writePNG(cfg.Display.PNG, output); err != nil {
		return err
	}
	say("stopped after %d frames at %s", session.Frames(), session.State())
	return nil
}

func opener(cfg *config.Config, label *display.Label, interrupt func()) display.Opener {
	return func(m display.Mode) (display.Display, error) {
		dc := cfg.Display.Config(m)
		dc.Label = label

		switch cfg.Display.Backend {
		case config.BackendMemory:
			d, err := display.NewMemory(dc)
			if err != nil {
				return nil, err
			}
			return d, nil

		case config.BackendFramebuffer:
			d, err := framebuffer.Open(cfg.Display.Device, dc)
			if err != nil {
				return nil, err
			}
			return d, nil

		case config.BackendST7789, config.BackendST7735:
			spi := cfg.Display.SPI
			sc := display.SPIConfig{
				Bus:     spi.Bus,
				Device:  spi.Device,
				SpeedHz: spi.SpeedHz,
			}
			display.SPIPins(&sc, spi.Reset, spi.DC, spi.CE)
			conn, err := display.OpenSPI(&sc)
			if err != nil {
				return nil, err
			}
			dc.Reset = sc.Reset
			if spi.Backlight != "" {
				dc.Backlight = gpioreg.ByName(spi.Backlight)
			}
			var d display.Display
			if cfg.Display.Backend == config.BackendST7735 {
				d, err = display.NewST7735(conn, dc)
			} else {
				d, err = display.NewST7789(conn, dc)
			}
			if err != nil {
				_ = conn.Close()
				return nil, err
			}
			return d, nil

		case config.BackendTerminal:
			d, err := terminal.Open(dc, interrupt)
			if err != nil {
				return nil, err
			}
			return d, nil

		default:
			return nil, fmt.Errorf("unsupported display backend %q", cfg.Display.Backend)
		}
	}
}

// openInput returns the configured input source and a function releasing it.
func openInput(cfg *config.Config, output display.Display, interrupt func()) (input.Source, func() error, error) {
	switch cfg.Input.Source {
	case config.InputTerminal:
		screen, ok := output.(*terminal.Screen)
		if !ok {
			return nil, nil, errors.New("terminal input needs the terminal display")
		}
		return screen.Input(), nil, nil

	case config.InputStdin:
		s, err := input.OpenStdin(interrupt)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.InputSerial:
		s, err := input.OpenSerial(cfg.Input.Serial, cfg.Input.Baud)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	case config.InputButtons:
		var buttons []input.Button
		for _, b := range cfg.Input.Buttons {
			button, err := input.LookupButton(b.Pin, byte(b.Key))
			if err != nil {
				return nil, nil, err
			}
			buttons = append(buttons, button)
		}
		s, err := input.OpenButtons(buttons)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported input source %q", cfg.Input.Source)
	}
}

func parseRotation(s string) (int, error) {
	switch s {
	case "", "no", "0":
		return 0, nil
	case "90", "right", "cw":
		return 90, nil
	case "180", "flip":
		return 180, nil
	case "270", "left", "ccw":
		return 270, nil
	default:
		return 0, fmt.Errorf("invalid rotation %q specified", s)
	}
}

// writePNG saves the frame of a memory display, if name is set.
func writePNG(name string, output display.Display) error {
	m, ok := output.(*display.Memory)
	if name == "" || !ok {
		return nil
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = m.WritePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", name)
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "fatal: "+err.Error())
	os.Exit(1)
}
