// Package budget holds the category budget table: the fixed set of expense
// categories and the monthly spending ceiling configured for each of them.
//
// The table is built once at startup from CATEGORIES_BUDGETS (a JSON object) or
// from a JSON/YAML file, and is read-only afterwards, so a single *Table can be
// shared by every request goroutine.
package budget

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"spendwise/internal/money"
)

// ErrEmptyTable is returned when the configuration defines no categories.
var ErrEmptyTable = errors.New("budget table defines no categories")

// Entry is one category with its ceiling.
type Entry struct {
	Category string      `json:"category"`
	Budget   money.Money `json:"budget"`
}

// Table maps category names to budget ceilings, in definition order.
type Table struct {
	entries []Entry
	index   map[string]int
}

// NormalizeCategory trims and lower-cases a category name.
func NormalizeCategory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// New builds a table from entries. Category names are normalized; empty,
// duplicate or negative entries are rejected.
func New(entries ...Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		name := NormalizeCategory(e.Category)
		if name == "" {
			return nil, errors.New("budget table contains an empty category name")
		}
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("category %q is defined more than once", name)
		}
		if e.Budget < 0 {
			return nil, fmt.Errorf("category %q has a negative budget", name)
		}
		t.index[name] = len(t.entries)
		t.entries = append(t.entries, Entry{Category: name, Budget: e.Budget})
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and fixed tables.
func MustNew(entries ...Entry) *Table {
	t, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse reads a mapping of category name to budget ceiling (major units).
// Both JSON objects and YAML mappings are accepted; key order is preserved.
func Parse(raw []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse budget table: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrEmptyTable
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("budget table must be an object of category to amount, line %d", root.Line)
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("budget table key on line %d is not a string", key.Line)
		}
		if value.Kind != yaml.ScalarNode || (value.Tag != "!!int" && value.Tag != "!!float") {
			return nil, fmt.Errorf("budget for %q must be a number", key.Value)
		}
		amount, err := money.Parse(value.Value)
		if err != nil {
			return nil, fmt.Errorf("budget for %q: %w", key.Value, err)
		}
		entries = append(entries, Entry{Category: key.Value, Budget: amount})
	}
	return New(entries...)
}

// LoadFile reads and parses a JSON or YAML budget file.
func LoadFile(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read budget file: %w", err)
	}
	return Parse(raw)
}

// Load builds the table from a file when path is set, otherwise from the raw
// JSON value.
func Load(rawJSON, path string) (*Table, error) {
	if path != "" {
		return LoadFile(path)
	}
	if strings.TrimSpace(rawJSON) == "" {
		return nil, ErrEmptyTable
	}
	return Parse([]byte(rawJSON))
}

// Has reports whether name is a configured category. name must already be normalized.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Budget returns the ceiling for a category.
func (t *Table) Budget(name string) (money.Money, bool) {
	i, ok := t.index[name]
	if !ok {
		return 0, false
	}
	return t.entries[i].Budget, true
}

// Categories returns the category names in definition order.
func (t *Table) Categories() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.Category
	}
	return names
}

// Entries returns a copy of the table in definition order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of categories.
func (t *Table) Len() int {
	return len(t.entries)
}
