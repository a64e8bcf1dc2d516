// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidSchema = errors.New("REGISTRY_LOAD_FAILED")

// ColumnRegistry answers which physical columns exist per logical table and
// how business vocabulary maps onto them.
type ColumnRegistry interface {
	IsValidColumn(table, column string) bool
	ColumnForBusinessTerm(table, term string) (string, bool)
	IsKnownColumn(column string) bool
}

type table struct {
	primaryKey string
	columns    map[string]struct{}
	terms      map[string]string
}

// Registry is an immutable ColumnRegistry. It is safe for concurrent use.
type Registry struct {
	version string
	order   []string
	tables  map[string]*table
}

var _ ColumnRegistry = (*Registry)(nil)

// New validates a schema and builds a Registry from it.
func New(s Schema) (*Registry, error) {
	if len(s.Tables) == 0 {
		return nil, fmt.Errorf("%w: no tables defined", ErrInvalidSchema)
	}
	r := &Registry{version: s.Version, tables: make(map[string]*table, len(s.Tables))}
	for _, spec := range s.Tables {
		name := strings.ToLower(strings.TrimSpace(spec.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: table without a name", ErrInvalidSchema)
		}
		if _, dup := r.tables[name]; dup {
			return nil, fmt.Errorf("%w: duplicate table %q", ErrInvalidSchema, name)
		}
		t := &table{
			primaryKey: strings.ToUpper(spec.PrimaryKey),
			columns:    make(map[string]struct{}, len(spec.Columns)),
			terms:      make(map[string]string, len(spec.BusinessTerms)),
		}
		for _, c := range spec.Columns {
			c = strings.ToUpper(strings.TrimSpace(c))
			if c == "" {
				return nil, fmt.Errorf("%w: empty column in table %q", ErrInvalidSchema, name)
			}
			t.columns[c] = struct{}{}
		}
		if t.primaryKey != "" {
			if _, ok := t.columns[t.primaryKey]; !ok {
				return nil, fmt.Errorf("%w: primary key %s is not a column of %q", ErrInvalidSchema, t.primaryKey, name)
			}
		}
		for term, col := range spec.BusinessTerms {
			col = strings.ToUpper(strings.TrimSpace(col))
			if _, ok := t.columns[col]; !ok {
				return nil, fmt.Errorf("%w: term %q maps to unknown column %s in %q", ErrInvalidSchema, term, col, name)
			}
			t.terms[normalizeTerm(term)] = col
		}
		r.tables[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// Default returns the registry built from the embedded seed.
func Default() *Registry {
	r, err := New(DefaultSchema())
	if err != nil {
		panic(fmt.Sprintf("registry: invalid default schema: %v", err))
	}
	return r
}

// LoadRegistry reads a YAML or JSON schema file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Schema
	if err := unmarshalByExt(path, data, &s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, path, err)
	}
	return New(s)
}

func unmarshalByExt(path string, data []byte, v interface{}) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Unmarshal(data, v)
	default:
		return yaml.Unmarshal(data, v)
	}
}

func normalizeTerm(term string) string {
	term = strings.ToLower(strings.ReplaceAll(term, "_", " "))
	return strings.Join(strings.Fields(term), " ")
}

func (r *Registry) IsValidColumn(tableName, column string) bool {
	t, ok := r.tables[strings.ToLower(tableName)]
	if !ok {
		return false
	}
	_, ok = t.columns[strings.ToUpper(column)]
	return ok
}

func (r *Registry) ColumnForBusinessTerm(tableName, term string) (string, bool) {
	t, ok := r.tables[strings.ToLower(tableName)]
	if !ok {
		return "", false
	}
	col, ok := t.terms[normalizeTerm(term)]
	return col, ok
}

// IsKnownColumn reports whether any table defines the column.
func (r *Registry) IsKnownColumn(column string) bool {
	for _, name := range r.order {
		if r.IsValidColumn(name, column) {
			return true
		}
	}
	return false
}

// PrimaryKey returns the key column of a table.
func (r *Registry) PrimaryKey(tableName string) string {
	if t, ok := r.tables[strings.ToLower(tableName)]; ok {
		return t.primaryKey
	}
	return ""
}

// Tables returns the table names in definition order.
func (r *Registry) Tables() []string {
	return append([]string(nil), r.order...)
}

// Columns returns the sorted columns of a table.
func (r *Registry) Columns(tableName string) []string {
	t, ok := r.tables[strings.ToLower(tableName)]
	if !ok {
		return nil
	}
	cols := make([]string, 0, len(t.columns))
	for c := range t.columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Schema renders the registry back into its file form.
func (r *Registry) Schema() Schema {
	s := Schema{Version: r.version}
	for _, name := range r.order {
		t := r.tables[name]
		terms := make(map[string]string, len(t.terms))
		for k, v := range t.terms {
			terms[k] = v
		}
		s.Tables = append(s.Tables, TableSpec{
			Name:          name,
			PrimaryKey:    t.primaryKey,
			Columns:       r.Columns(name),
			BusinessTerms: terms,
		})
	}
	return s
}
