package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/BeatGlow/lchdisplay"
	"github.com/BeatGlow/lchdisplay/animator"
	"github.com/BeatGlow/lchdisplay/config"
)

func TestRunReturnsErrors(t *testing.T) {
	t.Run("font", func(it *testing.T) {
		cfg := config.Default()
		cfg.Display.Backend = config.BackendMemory
		cfg.Display.Font = filepath.Join(it.TempDir(), "missing.ttf")
		if err := run(cfg, false); !errors.Is(err, fs.ErrNotExist) {
			it.Errorf("expected ErrNotExist, got %v", err)
		}
	})

	t.Run("input", func(it *testing.T) {
		cfg := config.Default()
		cfg.Mode = animator.Interactive
		cfg.Display.Backend = config.BackendMemory
		cfg.Input.Source = config.InputTerminal
		if err := run(cfg, false); err == nil {
			it.Error("expected terminal input on a memory display to fail")
		}
	})
}

func TestWritePNG(t *testing.T) {
	d, err := display.NewMemory(&display.Config{Width: 8, Height: 8, Depth: 16})
	if err != nil {
		t.Fatal(err)
	}
	if err = d.Refresh(); err != nil {
		t.Fatal(err)
	}

	name := filepath.Join(t.TempDir(), "frame.png")
	if err = writePNG(name, d); err != nil {
		t.Fatal(err)
	}
	if _, err = os.Stat(name); err != nil {
		t.Errorf("expected %s to be written, got %v", name, err)
	}

	if err = writePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), d); err == nil {
		t.Error("expected an error for a missing directory")
	}
	if err = writePNG("", d); err != nil {
		t.Errorf("expected no file without a name, got %v", err)
	}
}
