package pongo_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-valuation/pkg/render/template/pongo"
)

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()

	files := fstest.MapFS{
		"hello.tpl":      {Data: []byte("Hello {{ name }}")},
		"use-global.tpl": {Data: []byte("env={{ settings.env }}")},
		"use-filter.tpl": {Data: []byte("{{ name|shout_test }}")},
		"struct.tpl":     {Data: []byte("{{ item.city }} {{ item.count }}")},
	}
	engine, err := pongo.New(pongo.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestRenderTemplateWritesOutput(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Amina"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Amina" || buf.String() != got {
		t.Fatalf("unexpected output %q / %q", got, buf.String())
	}
}

func TestGlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{"settings": map[string]any{"env": "staging"}}); err != nil {
		t.Fatalf("global context: %v", err)
	}
	got, err := engine.RenderTemplate("use-global.tpl", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout_test", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	got, err := engine.RenderTemplate("use-filter", map[string]any{"name": "rabat"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "RABAT!" {
		t.Fatalf("unexpected output %q", got)
	}
	if err := engine.RegisterFilter("shout_test", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}
}

func TestStructDataUsesJSONNames(t *testing.T) {
	engine := newEngine(t)
	type row struct {
		City  string `json:"city"`
		Count string `json:"count"`
	}
	got, err := engine.RenderTemplate("struct", map[string]any{"item": row{City: "Tangier", Count: "3"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Tangier 3" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderStringAndMissingTemplate(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderString("{{ a }}-{{ b }}", map[string]any{"a": 1, "b": "x"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "1-x" {
		t.Fatalf("unexpected output %q", got)
	}
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without a filesystem")
	}
}
