package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "001_a.down.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	ups, downs, err := migrationFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(ups) != 2 || filepath.Base(ups[0]) != "001_a.sql" || filepath.Base(ups[1]) != "002_b.sql" {
		t.Errorf("ups = %v", ups)
	}
	if got := downs[filepath.Join(dir, "001_a.sql")]; filepath.Base(got) != "001_a.down.sql" {
		t.Errorf("downs = %v", downs)
	}
	if _, ok := downs[filepath.Join(dir, "002_b.sql")]; ok {
		t.Error("002 has no down file")
	}
}
