package config

import (
	"fmt"
	"time"
)

// Duration is a time.Duration written as a string, such as "100ms".
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Key is a single ASCII character.
type Key byte

func (k Key) MarshalText() ([]byte, error) {
	return []byte{byte(k)}, nil
}

func (k *Key) UnmarshalText(text []byte) error {
	if len(text) != 1 || text[0] < 0x21 || text[0] > 0x7e {
		return fmt.Errorf("key %q is not a single printable ASCII character", text)
	}
	*k = Key(text[0])
	return nil
}
