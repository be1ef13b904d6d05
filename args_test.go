package tracecfg

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoadArgsCollectsSetFlags(t *testing.T) {
	schema := mustSchema(t)

	layer, err := newArgParser("tracecfg-test", schema).parse(
		[]string{"--port", "9000", "--workers", "8", "--debug", "true"})
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}

	if layer.Source != SourceCLI {
		t.Fatalf("unexpected source %s", layer.Source)
	}
	if layer.Values["port"] != "9000" || layer.Values["workers"] != "8" || layer.Values["debug"] != "true" {
		t.Fatalf("unexpected values: %v", layer.Values)
	}
	if _, ok := layer.Values["shared"]; ok {
		t.Fatalf("unset flags must not appear in the layer")
	}
}

func TestLoadArgsEmpty(t *testing.T) {
	schema := mustSchema(t)

	layer, err := newArgParser("tracecfg-test", schema).parse(nil)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(layer.Values) != 0 {
		t.Fatalf("expected empty layer, got %v", layer.Values)
	}
}

func TestLoadArgsUnknownFlag(t *testing.T) {
	schema := mustSchema(t)

	parser := newArgParser("tracecfg-test", schema)
	parser.app.Terminate(nil)
	if _, err := parser.parse([]string{"--no-such-flag", "1"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestLoadArgsUsageListsFlags(t *testing.T) {
	schema := mustSchema(t)

	// Both help spellings print the generated usage listing.
	for _, helpArg := range []string{"--help", "-h"} {
		t.Run(helpArg, func(t *testing.T) {
			var buf bytes.Buffer
			parser := newArgParser("tracecfg-test", schema)
			parser.app.Terminate(nil)
			parser.app.UsageWriter(&buf)

			// With termination disabled help falls through after printing usage.
			_, _ = parser.parse([]string{helpArg})

			usage := buf.String()
			if !strings.Contains(usage, "--port") {
				t.Fatalf("usage must list the generated port flag:\n%s", usage)
			}
			if !strings.Contains(usage, "VALUE") {
				t.Fatalf("usage must document flags with the VALUE placeholder:\n%s", usage)
			}
			if !strings.Contains(usage, "HTTP port") {
				t.Fatalf("usage must carry the declared usage text:\n%s", usage)
			}
		})
	}
}
