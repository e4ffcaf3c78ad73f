package budget

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"spendwise/internal/money"
)

func TestParse(t *testing.T) {
	t.Run("json_keeps_definition_order", func(t *testing.T) {
		table, err := Parse([]byte(`{"transport": 500, "Groceries": 300.50, "dining": 200}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"transport", "groceries", "dining"}
		if got := table.Categories(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
		if b, _ := table.Budget("groceries"); b != money.FromCents(30050) {
			t.Errorf("expected groceries budget 30050, got %d", b)
		}
		if !table.Has("dining") || table.Has("Dining") || table.Has("travel") {
			t.Error("membership check should use normalized names only")
		}
	})

	t.Run("yaml", func(t *testing.T) {
		table, err := Parse([]byte("groceries: 300\nutilities: 200\n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.Len() != 2 {
			t.Errorf("expected 2 categories, got %d", table.Len())
		}
	})

	t.Run("rejects_malformed_input", func(t *testing.T) {
		cases := map[string]string{
			"not_an_object":    `[1, 2]`,
			"string_amount":    `{"groceries": "300"}`,
			"negative_amount":  `{"groceries": -1}`,
			"duplicate_names":  `{"groceries": 1, " GROCERIES ": 2}`,
			"empty_name":       `{"": 1}`,
			"nested_value":     `{"groceries": {"limit": 3}}`,
			"broken_syntax":    `{"groceries": 300`,
			"huge_amount":      `{"groceries": 99999999999999999999}`,
			"extreme_exponent": `{"groceries": 1e-300000000}`,
		}
		for name, raw := range cases {
			if _, err := Parse([]byte(raw)); err == nil {
				t.Errorf("%s: expected error for %s", name, raw)
			}
		}
	})

	t.Run("empty_object", func(t *testing.T) {
		if _, err := Parse([]byte(`{}`)); !errors.Is(err, ErrEmptyTable) {
			t.Errorf("expected ErrEmptyTable, got %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("file_wins_over_env_value", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "budgets.yaml")
		if err := os.WriteFile(path, []byte("travel: 400\n"), 0o600); err != nil {
			t.Fatalf("write file: %v", err)
		}

		table, err := Load(`{"groceries": 300}`, path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(table.Categories(), []string{"travel"}) {
			t.Errorf("expected file categories, got %v", table.Categories())
		}
	})

	t.Run("missing_configuration", func(t *testing.T) {
		if _, err := Load("  ", ""); !errors.Is(err, ErrEmptyTable) {
			t.Errorf("expected ErrEmptyTable, got %v", err)
		}
	})

	t.Run("missing_file", func(t *testing.T) {
		if _, err := Load("", filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestEntriesAreCopies(t *testing.T) {
	table := MustNew(Entry{Category: "groceries", Budget: 100})
	entries := table.Entries()
	entries[0].Budget = 1

	if b, _ := table.Budget("groceries"); b != 100 {
		t.Errorf("table must not be mutated through Entries, got %d", b)
	}
}
