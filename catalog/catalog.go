package catalog

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/formlio/relq/dsl"
	"github.com/formlio/relq/kind"
)

// Catalog holds the tables declared by a document.
type Catalog struct {
	tables map[string]*dsl.Table
}

type document struct {
	Tables map[string]tableSpec `yaml:"tables"`
}

type tableSpec struct {
	Fields []fieldSpec `yaml:"fields"`
}

type fieldSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

// Parse reads a YAML catalog document. Unknown document keys are rejected.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if len(doc.Tables) == 0 {
		return nil, fmt.Errorf("catalog declares no tables")
	}

	c := &Catalog{tables: make(map[string]*dsl.Table, len(doc.Tables))}
	for name, spec := range doc.Tables {
		table, err := assemble(name, spec)
		if err != nil {
			return nil, err
		}
		c.tables[name] = table
	}
	return c, nil
}

// LoadFile reads a YAML catalog from the given path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func assemble(name string, spec tableSpec) (*dsl.Table, error) {
	if len(spec.Fields) == 0 {
		return nil, fmt.Errorf("table %q declares no fields", name)
	}
	fields := make([]dsl.Field, len(spec.Fields))
	for i, fs := range spec.Fields {
		if fs.Name == "" {
			return nil, fmt.Errorf("table %q field %d has no name", name, i)
		}
		k, err := kind.Parse(fs.Kind)
		if err != nil {
			return nil, fmt.Errorf("table %q field %q: %w", name, fs.Name, err)
		}
		fields[i] = dsl.NewField(k, fs.Name)
	}
	table, err := dsl.NewTable(name, fields...)
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", name, err)
	}
	return table, nil
}

// Table returns the named table declaration.
func (c *Catalog) Table(name string) (*dsl.Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Names lists the declared table names in lexical order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
