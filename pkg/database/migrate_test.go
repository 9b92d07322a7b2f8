package database

import (
	"sort"
	"testing"
)

func TestListMigrationsSortedSQL(t *testing.T) {
	names, err := listMigrations()
	if err != nil {
		t.Fatalf("listMigrations: %v", err)
	}
	if len(names) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("migrations not in apply order: %v", names)
	}
	if names[0] != "001_schema.sql" {
		t.Errorf("first migration = %q, want 001_schema.sql", names[0])
	}
	for _, n := range names {
		if len(n) < 4 || n[len(n)-4:] != ".sql" {
			t.Errorf("non-sql entry %q", n)
		}
	}
}
