package tracecfg

import (
	"sync/atomic"
	"time"
)

// The live handle is process-wide state holding the most recently installed
// snapshot. Installation is a single pointer swap: readers either see the
// previous complete snapshot or the new one, never a partially merged
// state. One writer at a time is assumed (a single setup call at process
// start, plus Reset in tests); the handle provides no further locking.
var handle atomic.Pointer[Config]

// Install makes the given snapshot the current configuration. Existing
// references obtained through Current keep pointing at the snapshot they
// were read from.
func Install(cfg *Config) {
	handle.Store(cfg)
}

// Current returns the most recently installed snapshot, or ErrNotConfigured
// when nothing has been installed since process start or the last Reset.
func Current() (*Config, error) {
	cfg := handle.Load()
	if cfg == nil {
		return nil, ErrNotConfigured
	}
	return cfg, nil
}

// Reset clears the handle, returning it to the uninitialized state. Meant
// for test isolation; any subsequent read fails until the next Install.
func Reset() {
	handle.Store(nil)
}

// Value reads a field's merged value through the live handle.
func Value(name string) (any, error) {
	cfg, err := Current()
	if err != nil {
		return nil, err
	}
	v, ok := cfg.Value(name)
	if !ok {
		return nil, errUndeclared(name)
	}
	return v, nil
}

// String reads a string field through the live handle.
func String(name string) (string, error) {
	return handleValue(func(cfg *Config) (string, error) { return cfg.String(name) })
}

// Int reads an int field through the live handle.
func Int(name string) (int, error) {
	return handleValue(func(cfg *Config) (int, error) { return cfg.Int(name) })
}

// Float reads a float field through the live handle.
func Float(name string) (float64, error) {
	return handleValue(func(cfg *Config) (float64, error) { return cfg.Float(name) })
}

// Bool reads a bool field through the live handle.
func Bool(name string) (bool, error) {
	return handleValue(func(cfg *Config) (bool, error) { return cfg.Bool(name) })
}

// Duration reads a duration field through the live handle.
func Duration(name string) (time.Duration, error) {
	return handleValue(func(cfg *Config) (time.Duration, error) { return cfg.Duration(name) })
}

// Ints reads an int-list field through the live handle.
func Ints(name string) ([]int, error) {
	return handleValue(func(cfg *Config) ([]int, error) { return cfg.Ints(name) })
}

// OptionalString reads an optional-string field through the live handle.
func OptionalString(name string) (*string, error) {
	return handleValue(func(cfg *Config) (*string, error) { return cfg.OptionalString(name) })
}

// Trace reads the provenance map through the live handle.
func Trace() (map[string]TraceEntry, error) {
	cfg, err := Current()
	if err != nil {
		return nil, err
	}
	return cfg.Trace(), nil
}

// Scan populates a consumer struct from the live handle.
func Scan(dst any) error {
	cfg, err := Current()
	if err != nil {
		return err
	}
	return cfg.Scan(dst)
}

func handleValue[T any](read func(*Config) (T, error)) (T, error) {
	cfg, err := Current()
	if err != nil {
		var zero T
		return zero, err
	}
	return read(cfg)
}
