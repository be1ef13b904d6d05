package tracecfg

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"
)

type setupApp struct {
	X int `config:"x"`
}

// The canonical precedence scenario: default 0, .env file 5, OS environment
// 7, CLI flag 9. The CLI must win and the trace must say so.
func TestSetupPrecedenceScenario(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	envFile := writeSourceFile(t, "local.env", "X=5\n")
	t.Setenv("X", "7")

	cfg, err := Setup(setupApp{X: 0}, nil,
		WithFiles(envFile),
		WithArgs([]string{"--x", "9"}),
		WithLogger(zaptest.NewLogger(t)),
	)
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	x, err := cfg.Int("x")
	if err != nil || x != 9 {
		t.Fatalf("expected CLI value 9, got %d (%v)", x, err)
	}
	if entry := cfg.Trace()["x"]; entry.Source != SourceCLI {
		t.Fatalf("unexpected provenance: %+v", entry)
	}

	// The result is also readable through the live handle.
	if x, err := Int("x"); err != nil || x != 9 {
		t.Fatalf("handle read failed: %d (%v)", x, err)
	}
}

func TestSetupLayerAttribution(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	envFile := writeSourceFile(t, "local.env", "X=5\n")

	cfg, err := Setup(setupApp{X: 0}, nil, WithFiles(envFile), WithOSEnv(false))
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	x, _ := cfg.Int("x")
	if x != 5 {
		t.Fatalf("expected env file value 5, got %d", x)
	}
	entry := cfg.Trace()["x"]
	if entry.Source != SourceEnvFile || entry.Detail != envFile {
		t.Fatalf("unexpected provenance: %+v", entry)
	}
}

func TestSetupRuntimeScopeScenario(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	type app struct {
		Shared string `config:"shared"`
	}
	type run struct {
		Shared string `config:"shared"`
	}

	cfg, err := Setup(app{Shared: "a"}, run{Shared: "b"}, WithOSEnv(false))
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	if shared, _ := cfg.String("shared"); shared != "b" {
		t.Fatalf("runtime default must win, got %q", shared)
	}
	if entry := cfg.Trace()["shared"]; entry.Source != SourceDefaultRuntime {
		t.Fatalf("unexpected provenance: %+v", entry)
	}
}

func TestSetupIdempotent(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	envFile := writeSourceFile(t, "local.env", "X=5\n")
	t.Setenv("X", "7")

	run := func() *Config {
		t.Helper()
		Reset()
		cfg, err := Setup(setupApp{}, nil, WithFiles(envFile), WithArgs([]string{"--x", "9"}))
		if err != nil {
			t.Fatalf("Setup returned error: %v", err)
		}
		return cfg
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first.values, second.values) {
		t.Fatalf("setup is not idempotent: %v vs %v", first.values, second.values)
	}
	if !reflect.DeepEqual(first.trace, second.trace) {
		t.Fatalf("trace is not idempotent: %v vs %v", first.trace, second.trace)
	}
}

// A failing setup must leave the previously installed snapshot untouched.
func TestSetupFailureKeepsPreviousHandle(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, err := Setup(setupApp{X: 1}, nil, WithOSEnv(false)); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	_, err := Setup(setupApp{X: 2}, nil,
		WithFiles(filepath.Join(t.TempDir(), "absent.yaml")), WithOSEnv(false))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}

	x, err := Int("x")
	if err != nil || x != 1 {
		t.Fatalf("previous snapshot must stay installed, got %d (%v)", x, err)
	}
}

func TestSetupOverrides(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Run("override beats default", func(t *testing.T) {
		cfg, err := Setup(setupApp{X: 1}, nil, WithOverrides(map[string]any{"x": 3}), WithOSEnv(false))
		if err != nil {
			t.Fatalf("Setup returned error: %v", err)
		}
		x, _ := cfg.Int("x")
		if x != 3 {
			t.Fatalf("expected override 3, got %d", x)
		}
		if entry := cfg.Trace()["x"]; entry.Source != SourceOverride {
			t.Fatalf("unexpected provenance: %+v", entry)
		}
	})

	t.Run("external source beats override", func(t *testing.T) {
		t.Setenv("X", "7")
		cfg, err := Setup(setupApp{X: 1}, nil, WithOverrides(map[string]any{"x": 3}))
		if err != nil {
			t.Fatalf("Setup returned error: %v", err)
		}
		x, _ := cfg.Int("x")
		if x != 7 {
			t.Fatalf("environment must beat code overrides, got %d", x)
		}
	})
}

func TestSetupScanThroughHandle(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	t.Setenv("X", "7")
	if _, err := Setup(setupApp{}, nil); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}

	var dst setupApp
	if err := Scan(&dst); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if dst.X != 7 {
		t.Fatalf("expected scanned value 7, got %d", dst.X)
	}
}
