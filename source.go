package tracecfg

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Source identifies where a field's final value came from.
type Source string

const (
	// SourceDefaultApp marks a value taken from the application schema default.
	SourceDefaultApp Source = "app_default"
	// SourceDefaultRuntime marks a value taken from the runtime schema default.
	SourceDefaultRuntime Source = "runtime_default"
	// SourceOverride marks a value supplied as a code override at registration.
	SourceOverride Source = "code_override"
	// SourceYAMLFile marks a value read from a YAML file.
	SourceYAMLFile Source = "yaml_file"
	// SourceJSONFile marks a value read from a JSON file.
	SourceJSONFile Source = "json_file"
	// SourceEnvFile marks a value read from a .env file.
	SourceEnvFile Source = "env_file"
	// SourceOSEnv marks a value read from a process environment variable.
	SourceOSEnv Source = "environment"
	// SourceCLI marks a value passed as a command-line flag.
	SourceCLI Source = "cli"
)

// rank orders sources for merging: config files lowest, .env files next,
// then OS environment, CLI flags highest. Default sources never appear as
// layers; they seed the merge before any layer applies.
func (s Source) rank() int {
	switch s {
	case SourceYAMLFile, SourceJSONFile:
		return 1
	case SourceEnvFile:
		return 2
	case SourceOSEnv:
		return 3
	case SourceCLI:
		return 4
	default:
		return 0
	}
}

// Layer is one source's contribution to a merge pass: the origin tag, an
// optional detail (the file path for file-based sources) and the raw values
// keyed by declared field name. Layers are ephemeral; Merge discards them
// once folded.
type Layer struct {
	Source Source
	Detail string
	Values map[string]any
}

// LoadFile reads a configuration file and dispatches on its extension:
// .yaml/.yml, .json and .env are supported. A missing file is a fatal
// ErrSourceNotFound, never a silent skip.
func LoadFile(schema *Schema, path string) (Layer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAMLFile(schema, path)
	case ".json":
		return loadJSONFile(schema, path)
	case ".env":
		return loadEnvFile(schema, path)
	default:
		return Layer{}, fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}
}

// loadYAMLFile parses a YAML file into a flat field mapping. YAML scalars
// keep their native types. Nested mappings are rejected: composed config
// files are not supported. Scalar sequences are allowed so list-typed
// fields can be declared inline.
func loadYAMLFile(schema *Schema, path string) (Layer, error) {
	data, err := readSource(path)
	if err != nil {
		return Layer{}, err
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Layer{}, fmt.Errorf("parse YAML %s: %w", path, err)
	}

	values := make(map[string]any, len(raw))
	for key, value := range raw {
		switch value.(type) {
		case map[string]any, map[any]any:
			return Layer{}, fmt.Errorf("parse YAML %s: key %q holds a nested mapping, nested config files are not supported", path, key)
		}
		values[normalizeKey(schema, key)] = value
	}

	return Layer{Source: SourceYAMLFile, Detail: path, Values: values}, nil
}

// loadJSONFile parses a JSON file (comments and trailing commas tolerated)
// into a flat field mapping. A nested object, or an array containing
// anything but scalars, is re-serialized into a literal JSON string at the
// nesting point so it can still land in a string-typed field. This is a
// compatibility behaviour, kept deliberately JSON-only.
func loadJSONFile(schema *Schema, path string) (Layer, error) {
	data, err := readSource(path)
	if err != nil {
		return Layer{}, err
	}

	raw := map[string]any{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return Layer{}, fmt.Errorf("parse JSON %s: %w", path, err)
	}

	values := make(map[string]any, len(raw))
	for key, value := range raw {
		flattened, err := flattenJSONValue(value)
		if err != nil {
			return Layer{}, fmt.Errorf("parse JSON %s: key %q: %w", path, key, err)
		}
		values[normalizeKey(schema, key)] = flattened
	}

	return Layer{Source: SourceJSONFile, Detail: path, Values: values}, nil
}

func flattenJSONValue(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		return reserializeJSON(v)
	case []any:
		for _, item := range v {
			switch item.(type) {
			case map[string]any, []any:
				return reserializeJSON(v)
			}
		}
		return v, nil
	default:
		return v, nil
	}
}

func reserializeJSON(value any) (any, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("re-serialize nested value: %w", err)
	}
	return string(encoded), nil
}

// loadEnvFile parses a KEY=VALUE .env file. Comments and blank lines are
// skipped by the parser; keys are matched to field names case-insensitively
// and all values stay raw strings for the coercion path.
func loadEnvFile(schema *Schema, path string) (Layer, error) {
	if _, err := os.Stat(path); err != nil {
		return Layer{}, sourceStatError(path, err)
	}

	raw, err := godotenv.Read(path)
	if err != nil {
		return Layer{}, fmt.Errorf("parse env file %s: %w", path, err)
	}

	values := make(map[string]any, len(raw))
	for key, value := range raw {
		values[normalizeKey(schema, key)] = value
	}

	return Layer{Source: SourceEnvFile, Detail: path, Values: values}, nil
}

// LoadOSEnv reads every process environment variable whose name is the
// uppercased form of a declared field name. No prefix is applied.
func LoadOSEnv(schema *Schema) Layer {
	values := map[string]any{}
	for _, f := range schema.fields {
		if raw, ok := os.LookupEnv(strings.ToUpper(f.Name)); ok {
			values[f.Name] = raw
		}
	}
	return Layer{Source: SourceOSEnv, Values: values}
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sourceStatError(path, err)
	}
	return data, nil
}

func sourceStatError(path string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
	}
	return fmt.Errorf("read %s: %w", path, err)
}

// normalizeKey maps a raw source key onto its declared field name using a
// case-insensitive comparison, mirroring how file keys written as X or x
// both address the field x. Unknown keys pass through unchanged and are
// ignored by the merge.
func normalizeKey(schema *Schema, key string) string {
	if _, ok := schema.index[key]; ok {
		return key
	}
	lower := strings.ToLower(key)
	if _, ok := schema.index[lower]; ok {
		return lower
	}
	return key
}
