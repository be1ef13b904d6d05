// Package tracecfg resolves application configuration from layered sources
// and records where every value came from.
//
// An application declares its configuration shape as one or two plain
// structs (an application scope and an optional runtime scope whose
// declarations win on overlap). Register turns them into a merged schema of
// typed field specs; Setup then folds the enabled sources over the schema
// defaults in fixed precedence order:
//
//	defaults < code overrides < YAML/JSON file < .env file < environment < CLI
//
// Every raw value passes through a single coercion path keyed by the
// field's declared type, so "2" from a .env file, an environment variable
// or a --flag always yields the same integer 2. The result of a merge pass
// is an immutable Config snapshot holding final values plus a provenance
// trace, installed behind a process-wide live handle:
//
//	type ServerConfig struct {
//		Port         string        `config:"port" usage:"HTTP port"`
//		WriteTimeout time.Duration `config:"write_timeout"`
//	}
//
//	cfg, err := tracecfg.Setup(ServerConfig{Port: "8080", WriteTimeout: 15 * time.Second}, nil,
//		tracecfg.WithFiles("server.yaml"),
//		tracecfg.WithArgs(os.Args[1:]),
//	)
//
// Configuration errors abort setup immediately: a missing requested file,
// an unconvertible value or a schema conflict is surfaced as an error and
// the previously installed snapshot stays in place. Nested or composed
// config files are not supported.
package tracecfg
