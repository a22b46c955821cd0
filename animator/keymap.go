package animator

import "fmt"

// Keymap assigns input bytes to the four commands. Letters match in either case.
type Keymap struct {
	LighterL byte
	DarkerL  byte
	MoreC    byte
	LessC    byte
}

// DefaultKeymap uses w/s for lightness and d/a for chroma.
var DefaultKeymap = Keymap{
	LighterL: 'w',
	DarkerL:  's',
	MoreC:    'd',
	LessC:    'a',
}

// Validate checks that every command has its own key.
func (k Keymap) Validate() error {
	keys := []byte{lower(k.LighterL), lower(k.DarkerL), lower(k.MoreC), lower(k.LessC)}
	for i, a := range keys {
		if a == 0 {
			return fmt.Errorf("animator: keymap has an unassigned command")
		}
		for _, b := range keys[i+1:] {
			if a == b {
				return fmt.Errorf("animator: key %q is assigned twice", a)
			}
		}
	}
	return nil
}

// Apply the command for key b to s. It reports false for unknown keys.
func (k Keymap) Apply(s *State, b byte, lightness, chroma Axis) bool {
	switch lower(b) {
	case lower(k.LighterL):
		s.L = lightness.Move(s.L, +1)
	case lower(k.DarkerL):
		s.L = lightness.Move(s.L, -1)
	case lower(k.MoreC):
		s.C = chroma.Move(s.C, +1)
	case lower(k.LessC):
		s.C = chroma.Move(s.C, -1)
	default:
		return false
	}
	return true
}

func lower(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
