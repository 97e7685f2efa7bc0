// Package style holds the per-kind display table consulted by the graph
// builder and the diagram renderers.
package style

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/awantoch/flowviz/model"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed styles.yaml
var defaultTable []byte

//go:embed style.schema.json
var schemaJSON string

// Style is the display metadata of one step kind.
type Style struct {
	Kind         model.Kind        `yaml:"kind" json:"kind"`
	MermaidIcon  string            `yaml:"mermaidIcon" json:"mermaidIcon"`
	PlantUMLIcon string            `yaml:"plantumlIcon,omitempty" json:"plantumlIcon,omitempty"`
	Background   string            `yaml:"background" json:"background"`
	Color        string            `yaml:"color" json:"color"`
	Open         string            `yaml:"open" json:"open"`
	Close        string            `yaml:"close" json:"close"`
	Label        string            `yaml:"label,omitempty" json:"label,omitempty"`
	ActionIcons  map[string]string `yaml:"actionIcons,omitempty" json:"actionIcons,omitempty"`
}

// Table is an ordered, read-only set of styles keyed by kind.
type Table struct {
	entries []Style
	byKind  map[model.Kind]int
}

var (
	defaultOnce  sync.Once
	defaultStyle *Table

	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Default returns the embedded style table. It panics if the embedded
// table is invalid, which is a build defect.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(defaultTable)
		if err != nil {
			panic(fmt.Sprintf("style: embedded table: %v", err))
		}
		defaultStyle = t
	})
	return defaultStyle
}

// Load reads and validates a style table from a YAML or JSON file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("style table %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes and validates a style table.
func Parse(data []byte) (*Table, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var entries []Style
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return New(entries)
}

// Validate checks a decoded table against the embedded JSON Schema.
func Validate(doc any) error {
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("style.schema.json", schemaJSON)
	})
	if schemaErr != nil {
		return schemaErr
	}
	var v any
	if err := json.Unmarshal(jsonBytes, &v); err != nil {
		return err
	}
	return schema.Validate(v)
}

// New builds a table from entries. Kinds must be unique.
func New(entries []Style) (*Table, error) {
	t := &Table{
		entries: make([]Style, 0, len(entries)),
		byKind:  make(map[model.Kind]int, len(entries)),
	}
	for _, e := range entries {
		if e.Kind == "" {
			return nil, fmt.Errorf("style entry without kind")
		}
		if _, dup := t.byKind[e.Kind]; dup {
			return nil, fmt.Errorf("duplicate style for kind %q", e.Kind)
		}
		t.byKind[e.Kind] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t, nil
}

// Lookup returns the style of kind k.
func (t *Table) Lookup(k model.Kind) (Style, bool) {
	if t == nil {
		return Style{}, false
	}
	i, ok := t.byKind[k]
	if !ok {
		return Style{}, false
	}
	return t.entries[i], true
}

// Has reports whether the table styles kind k.
func (t *Table) Has(k model.Kind) bool {
	_, ok := t.Lookup(k)
	return ok
}

// Entries returns the styles in table order.
func (t *Table) Entries() []Style {
	if t == nil {
		return nil
	}
	out := make([]Style, len(t.entries))
	copy(out, t.entries)
	return out
}

// MermaidIcon returns the icon for kind k, preferring the variant icon
// when one is configured for it.
func (t *Table) MermaidIcon(k model.Kind, variant string) string {
	s, ok := t.Lookup(k)
	if !ok {
		return ""
	}
	if icon, ok := s.ActionIcons[variant]; ok && variant != "" {
		return icon
	}
	return s.MermaidIcon
}
