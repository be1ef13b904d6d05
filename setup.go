package tracecfg

import (
	"fmt"

	"go.uber.org/zap"
)

// SetupOption configures the behaviour of Setup.
type SetupOption func(*setupConfig)

type setupConfig struct {
	files     []string
	osEnv     bool
	argv      []string
	useArgs   bool
	overrides map[string]any
	logger    *zap.Logger
}

// WithFiles adds file sources (YAML, JSON or .env, dispatched by
// extension). Files rank below the OS environment regardless of the order
// given here; among files, .env outranks YAML and JSON.
func WithFiles(paths ...string) SetupOption {
	return func(cfg *setupConfig) {
		cfg.files = append(cfg.files, paths...)
	}
}

// WithOSEnv controls whether process environment variables are consulted.
// Enabled by default.
func WithOSEnv(enabled bool) SetupOption {
	return func(cfg *setupConfig) {
		cfg.osEnv = enabled
	}
}

// WithArgs enables the CLI layer, parsing the given argument vector
// (typically os.Args[1:]). Without this option no CLI layer is applied, so
// tests and embedded uses never parse the real process arguments by
// accident.
func WithArgs(argv []string) SetupOption {
	return func(cfg *setupConfig) {
		cfg.argv = argv
		cfg.useArgs = true
	}
}

// WithOverrides supplies code-override values, ranked above schema defaults
// and below every external source.
func WithOverrides(values map[string]any) SetupOption {
	return func(cfg *setupConfig) {
		cfg.overrides = values
	}
}

// WithLogger sets the logger used to report setup progress at debug level.
// Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) SetupOption {
	return func(cfg *setupConfig) {
		cfg.logger = logger
	}
}

// Setup runs the whole pipeline in one call: register the two schema
// scopes, load every enabled source, merge in precedence order and install
// the result behind the live handle. runtime may be nil for a single-scope
// setup.
//
// On any failure the error is returned and the previously installed
// snapshot, if any, is left untouched; a partially merged configuration is
// never observable.
func Setup(app, runtime any, opts ...SetupOption) (*Config, error) {
	sc := setupConfig{osEnv: true, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&sc)
	}

	schema, err := Register(app, runtime, sc.overrides)
	if err != nil {
		return nil, fmt.Errorf("register schema: %w", err)
	}
	sc.logger.Debug("schema registered", zap.Int("fields", len(schema.fields)))

	var layers []Layer
	for _, path := range sc.files {
		layer, err := LoadFile(schema, path)
		if err != nil {
			return nil, err
		}
		sc.logger.Debug("file source loaded",
			zap.String("source", string(layer.Source)),
			zap.String("path", path),
			zap.Int("fields", len(layer.Values)))
		layers = append(layers, layer)
	}

	if sc.osEnv {
		layer := LoadOSEnv(schema)
		sc.logger.Debug("environment source loaded", zap.Int("fields", len(layer.Values)))
		layers = append(layers, layer)
	}

	if sc.useArgs {
		layer, err := LoadArgs(schema, sc.argv)
		if err != nil {
			return nil, err
		}
		sc.logger.Debug("cli source loaded", zap.Int("fields", len(layer.Values)))
		layers = append(layers, layer)
	}

	cfg, err := Merge(schema, layers...)
	if err != nil {
		return nil, err
	}

	Install(cfg)
	sc.logger.Debug("configuration installed", zap.Int("fields", len(cfg.values)))
	return cfg, nil
}
