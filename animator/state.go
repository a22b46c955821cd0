package animator

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrMode is returned for unknown session mode names.
var ErrMode = errors.New("animator: unknown mode")

// Mode selects the session loop.
type Mode int

// Modes
const (
	Static      Mode = iota // Fill once and hold
	Sweep                   // Step through chroma and lightness ranges
	Interactive             // Adjust lightness and chroma from input
)

var modeNames = [...]string{
	Static:      "static",
	Sweep:       "sweep",
	Interactive: "interactive",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) (err error) {
	*m, err = ParseMode(string(text))
	return
}

// State is the lightness and chroma of the current palette.
type State struct {
	L float64
	C float64
}

func (s State) String() string {
	return fmt.Sprintf("L %.2f  C %.2f", s.L, s.C)
}

// Axis bounds one component of the State.
type Axis struct {
	Min  float64
	Max  float64
	Step float64
}

// Validate checks that the axis is not empty and moves forward.
func (a Axis) Validate() error {
	if a.Min > a.Max {
		return fmt.Errorf("animator: axis minimum %g above maximum %g", a.Min, a.Max)
	}
	if !(a.Step > 0) {
		return fmt.Errorf("animator: axis step %g must be positive", a.Step)
	}
	return nil
}

// Clamp v to [Min, Max].
func (a Axis) Clamp(v float64) float64 {
	return math.Max(a.Min, math.Min(a.Max, v))
}

// Move v by dir steps and clamp the result.
func (a Axis) Move(v float64, dir int) float64 {
	return a.Clamp(settle(v + float64(dir)*a.Step))
}

// Range is an inclusive sequence From, From+Step, ... To.
type Range struct {
	From float64
	To   float64
	Step float64
}

// Validate checks that the range has at least one value.
func (r Range) Validate() error {
	if r.From > r.To {
		return fmt.Errorf("animator: range start %g after end %g", r.From, r.To)
	}
	if !(r.Step > 0) {
		return fmt.Errorf("animator: range step %g must be positive", r.Step)
	}
	return nil
}

// Len is the number of values in the range.
func (r Range) Len() int {
	return int(math.Floor(settle((r.To-r.From)/r.Step))) + 1
}

// At returns value i of the range. Values are computed from the start, so
// they do not accumulate rounding errors.
func (r Range) At(i int) float64 {
	return settle(r.From + float64(i)*r.Step)
}

// settle rounds v to nine decimals, which returns sums of decimal steps to
// the nearest representable decimal.
func settle(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}
