package tracecfg

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
)

// Kind identifies the declared type of a configuration field. Every raw
// source value is converted to its field's Kind through a single coercion
// path, so identical inputs behave identically regardless of origin.
type Kind int

const (
	// KindString declares a plain string field.
	KindString Kind = iota
	// KindInt declares an integer field.
	KindInt
	// KindFloat declares a float64 field.
	KindFloat
	// KindBool declares a boolean field.
	KindBool
	// KindDuration declares a time.Duration field parsed from strings such as "30s".
	KindDuration
	// KindOptionalString declares a *string field whose default may be absent.
	KindOptionalString
	// KindInts declares an []int field parsed from comma-separated strings.
	KindInts
)

// String returns a human-readable name for the kind, used in error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDuration:
		return "duration"
	case KindOptionalString:
		return "optional string"
	case KindInts:
		return "int list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FieldSpec describes a single declared configuration field: its resolved
// name, declared type, winning default value and flag help text. Specs are
// built once at registration time; the merge path never reflects over the
// schema structs again.
type FieldSpec struct {
	Name    string
	Kind    Kind
	Default any
	Usage   string

	defaultSource Source
}

// Schema is the merged, ordered field set produced by Register. Application
// scope fields come first in declaration order, runtime-only fields are
// appended; overlapping names are resolved in favour of the runtime scope.
// A Schema is read-only after construction.
type Schema struct {
	fields []FieldSpec
	index  map[string]int
}

// Fields returns the declared fields in registration order.
func (s *Schema) Fields() []FieldSpec {
	out := make([]FieldSpec, len(s.fields))
	copy(out, s.fields)
	return out
}

// Lookup returns the spec for a declared field name.
func (s *Schema) Lookup(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Register builds the merged schema from an application-scope struct and an
// optional runtime-scope struct (pass nil for none). Field names come from
// the `config` struct tag or are derived from the Go field name
// (RateLimitRPS -> rate_limit_rps); flag help text comes from the `usage`
// tag; defaults are the field values of the supplied instances.
//
// When both scopes declare the same name, the runtime declaration wins
// structurally: its type and default replace the application's, and the
// field's default provenance becomes the runtime tag. Declaring the same
// name with incompatible types fails with ErrSchemaConflict.
//
// Overrides (may be nil) are code-supplied values applied as an extra
// defaults layer: they replace the winning default and mark the field's
// default provenance as code_override, but remain below every external
// source. Override keys that match no declared field are ignored.
func Register(app, runtime any, overrides map[string]any) (*Schema, error) {
	if app == nil {
		return nil, fmt.Errorf("application schema must not be nil")
	}

	schema := &Schema{index: make(map[string]int)}

	appFields, err := reflectFields(app, SourceDefaultApp)
	if err != nil {
		return nil, fmt.Errorf("application schema: %w", err)
	}
	for _, f := range appFields {
		if _, dup := schema.index[f.Name]; dup {
			return nil, fmt.Errorf("application schema: duplicate field %q", f.Name)
		}
		schema.index[f.Name] = len(schema.fields)
		schema.fields = append(schema.fields, f)
	}

	if runtime != nil {
		runFields, err := reflectFields(runtime, SourceDefaultRuntime)
		if err != nil {
			return nil, fmt.Errorf("runtime schema: %w", err)
		}
		for _, f := range runFields {
			if i, ok := schema.index[f.Name]; ok {
				if schema.fields[i].Kind != f.Kind {
					return nil, fmt.Errorf("%w: field %q declared as %s and %s",
						ErrSchemaConflict, f.Name, schema.fields[i].Kind, f.Kind)
				}
				// Runtime scope wins: type, default and usage all replaced.
				schema.fields[i] = f
				continue
			}
			schema.index[f.Name] = len(schema.fields)
			schema.fields = append(schema.fields, f)
		}
	}

	for name, value := range overrides {
		i, ok := schema.index[name]
		if !ok {
			continue
		}
		coerced, err := coerceValue(value, schema.fields[i].Kind)
		if err != nil {
			return nil, fmt.Errorf("override for field %q: %w", name, err)
		}
		schema.fields[i].Default = coerced
		schema.fields[i].defaultSource = SourceOverride
	}

	return schema, nil
}

// reflectFields enumerates the exported fields of a schema struct instance
// and translates each into a FieldSpec tagged with the originating scope.
func reflectFields(schema any, scope Source) ([]FieldSpec, error) {
	v := reflect.ValueOf(schema)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("schema pointer must not be nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	fields := make([]FieldSpec, 0, t.NumField())
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

		kind, ok := kindOf(sf.Type)
		if !ok {
			return nil, fmt.Errorf("field %s: unsupported type %s", sf.Name, sf.Type)
		}

		fields = append(fields, FieldSpec{
			Name:          name,
			Kind:          kind,
			Default:       defaultOf(v.Field(i), kind),
			Usage:         sf.Tag.Get("usage"),
			defaultSource: scope,
		})
	}
	return fields, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

func kindOf(t reflect.Type) (Kind, bool) {
	if t == durationType {
		return KindDuration, true
	}
	switch t.Kind() {
	case reflect.String:
		return KindString, true
	case reflect.Int:
		return KindInt, true
	case reflect.Float64:
		return KindFloat, true
	case reflect.Bool:
		return KindBool, true
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.String {
			return KindOptionalString, true
		}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Int {
			return KindInts, true
		}
	}
	return 0, false
}

// defaultOf extracts the field's default value in its canonical runtime
// representation. Optional strings keep nil to mean "no default".
func defaultOf(v reflect.Value, kind Kind) any {
	if kind == KindOptionalString {
		if v.IsNil() {
			return (*string)(nil)
		}
		s := v.Elem().String()
		return &s
	}
	return v.Interface()
}

// snakeCase derives a config field name from a Go field name, keeping
// acronym runs intact: RateLimitRPS -> rate_limit_rps, Port -> port.
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			startsWord := i > 0 && !unicode.IsUpper(runes[i-1])
			endsAcronym := i > 0 && i+1 < len(runes) &&
				unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1])
			if startsWord || endsAcronym {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
