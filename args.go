package tracecfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
)

// LoadArgs parses command-line arguments into a CLI layer. One optional
// flag is generated per declared field, named exactly like the field and
// taking a single VALUE argument; only flags the user actually set end up
// in the layer. Pass the process arguments without the program name
// (os.Args[1:]). A -h or --help invocation prints the generated usage
// listing and exits 0. Values stay raw strings; coercion happens during the
// merge.
func LoadArgs(schema *Schema, argv []string) (Layer, error) {
	return newArgParser(filepath.Base(os.Args[0]), schema).parse(argv)
}

type argParser struct {
	app    *kingpin.Application
	fields []string
	values map[string]*string
	set    map[string]*bool
}

func newArgParser(name string, schema *Schema) *argParser {
	p := &argParser{
		app:    kingpin.New(name, "Configuration flags generated from the declared schema."),
		values: make(map[string]*string, len(schema.fields)),
		set:    make(map[string]*bool, len(schema.fields)),
	}
	p.app.HelpFlag.Short('h')
	for _, f := range schema.fields {
		usage := f.Usage
		if usage == "" {
			usage = fmt.Sprintf("Value for the %s field", f.Name)
		}
		isSet := new(bool)
		p.fields = append(p.fields, f.Name)
		p.set[f.Name] = isSet
		p.values[f.Name] = p.app.Flag(f.Name, usage).
			PlaceHolder("VALUE").
			IsSetByUser(isSet).
			String()
	}
	return p
}

func (p *argParser) parse(argv []string) (Layer, error) {
	if _, err := p.app.Parse(argv); err != nil {
		return Layer{}, fmt.Errorf("parse command-line arguments: %w", err)
	}

	values := map[string]any{}
	for _, name := range p.fields {
		if *p.set[name] {
			values[name] = *p.values[name]
		}
	}
	return Layer{Source: SourceCLI, Values: values}, nil
}
