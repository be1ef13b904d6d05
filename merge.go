package tracecfg

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"dario.cat/mergo"
)

// TraceEntry records which source ultimately determined a field's final
// value. Detail carries the file path for file-based sources.
type TraceEntry struct {
	Value  any    `json:"value"`
	Source Source `json:"source"`
	Detail string `json:"detail,omitempty"`
}

// Config is an immutable snapshot produced by one merge pass: the final
// typed value for every declared field plus a parallel provenance trace.
type Config struct {
	schema *Schema
	values map[string]any
	trace  map[string]TraceEntry
}

// Merge folds the given layers over the schema defaults in ascending source
// rank (config files < .env files < OS environment < CLI), regardless of
// the order the layers were passed in. Every present field is coerced
// through the single coercion path and overwrites both the running value
// and its provenance; fields absent from a layer are left untouched, so a
// layer can never reset a field back to its default. Keys that match no
// declared field are ignored. Given identical inputs the result is
// identical: Merge has no hidden state.
func Merge(schema *Schema, layers ...Layer) (*Config, error) {
	cfg := &Config{
		schema: schema,
		values: make(map[string]any, len(schema.fields)),
		trace:  make(map[string]TraceEntry, len(schema.fields)),
	}

	for _, f := range schema.fields {
		cfg.values[f.Name] = f.Default
		cfg.trace[f.Name] = TraceEntry{Value: f.Default, Source: f.defaultSource}
	}

	ordered := make([]Layer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Source.rank() < ordered[j].Source.rank()
	})

	for _, layer := range ordered {
		coerced := make(map[string]any, len(layer.Values))
		for name, raw := range layer.Values {
			spec, ok := schema.Lookup(name)
			if !ok {
				continue
			}
			value, err := coerceValue(raw, spec.Kind)
			if err != nil {
				return nil, fmt.Errorf("%s source%s: field %q: %w",
					layer.Source, layerDetail(layer), name, err)
			}
			coerced[name] = value
		}

		if err := mergo.Merge(&cfg.values, coerced,
			mergo.WithOverride, mergo.WithOverwriteWithEmptyValue); err != nil {
			return nil, fmt.Errorf("fold %s layer: %w", layer.Source, err)
		}
		for name, value := range coerced {
			cfg.trace[name] = TraceEntry{Value: value, Source: layer.Source, Detail: layer.Detail}
		}
	}

	return cfg, nil
}

func layerDetail(layer Layer) string {
	if layer.Detail == "" {
		return ""
	}
	return " " + layer.Detail
}

// copyValue detaches reference-typed values before they leave the snapshot,
// so callers cannot mutate the Config through a returned slice or pointer.
func copyValue(v any) any {
	switch typed := v.(type) {
	case []int:
		out := make([]int, len(typed))
		copy(out, typed)
		return out
	case *string:
		if typed == nil {
			return typed
		}
		s := *typed
		return &s
	default:
		return v
	}
}

// Value returns the merged value for a declared field.
func (c *Config) Value(name string) (any, bool) {
	v, ok := c.values[name]
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// Trace returns a copy of the provenance map: per field, the final value
// and the source that set it.
func (c *Config) Trace() map[string]TraceEntry {
	out := make(map[string]TraceEntry, len(c.trace))
	for name, entry := range c.trace {
		entry.Value = copyValue(entry.Value)
		out[name] = entry
	}
	return out
}

// String returns the merged value of a string-declared field.
func (c *Config) String(name string) (string, error) {
	return typedValue[string](c, name)
}

// Int returns the merged value of an int-declared field.
func (c *Config) Int(name string) (int, error) {
	return typedValue[int](c, name)
}

// Float returns the merged value of a float-declared field.
func (c *Config) Float(name string) (float64, error) {
	return typedValue[float64](c, name)
}

// Bool returns the merged value of a bool-declared field.
func (c *Config) Bool(name string) (bool, error) {
	return typedValue[bool](c, name)
}

// Duration returns the merged value of a duration-declared field.
func (c *Config) Duration(name string) (time.Duration, error) {
	return typedValue[time.Duration](c, name)
}

// Ints returns the merged value of an int-list-declared field. The
// returned slice is the caller's to modify.
func (c *Config) Ints(name string) ([]int, error) {
	v, err := typedValue[[]int](c, name)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(v))
	copy(out, v)
	return out, nil
}

// OptionalString returns the merged value of an optional-string field; nil
// means the field has no value.
func (c *Config) OptionalString(name string) (*string, error) {
	v, err := typedValue[*string](c, name)
	if err != nil || v == nil {
		return v, err
	}
	s := *v
	return &s, nil
}

func errUndeclared(name string) error {
	return fmt.Errorf("field %q is not declared", name)
}

func typedValue[T any](c *Config, name string) (T, error) {
	var zero T
	v, ok := c.values[name]
	if !ok {
		return zero, errUndeclared(name)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("field %q holds %T, not %T", name, v, zero)
	}
	return typed, nil
}

// Scan copies the merged values into a consumer struct, matching struct
// fields to config names by the same rules Register uses (`config` tag or
// derived snake_case name). Struct fields with no matching declared field
// are left untouched.
func (c *Config) Scan(dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("scan destination must be a non-nil struct pointer")
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("scan destination must point to a struct, got %s", v.Kind())
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Tag.Get("config")
		if name == "-" {
			continue
		}
		if name == "" {
			name = snakeCase(sf.Name)
		}
		value, ok := c.values[name]
		if !ok || value == nil {
			continue
		}
		rv := reflect.ValueOf(copyValue(value))
		if !rv.Type().AssignableTo(sf.Type) {
			return fmt.Errorf("field %q: cannot assign %T to %s", name, value, sf.Type)
		}
		v.Field(i).Set(rv)
	}
	return nil
}
