package migration

import (
	"testing"
	"testing/fstest"

	"skill-swap/migrations"
)

func TestLoad_OrdersAndFilters(t *testing.T) {
	src := fstest.MapFS{
		"V2__swaps.sql":    {Data: []byte("CREATE TABLE b();")},
		"V1__init.sql":     {Data: []byte("  CREATE TABLE a();\n")},
		"README.md":        {Data: []byte("ignored")},
		"V3_bad.sql":       {Data: []byte("ignored")},
		"nested/V9__x.sql": {Data: []byte("ignored")},
	}

	migs, err := Load(src)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migs))
	}
	if migs[0].Version != 1 || migs[1].Version != 2 {
		t.Fatalf("unexpected order: %d, %d", migs[0].Version, migs[1].Version)
	}
	if migs[0].SQL != "CREATE TABLE a();" {
		t.Fatalf("expected trimmed sql, got %q", migs[0].SQL)
	}
	if migs[0].Checksum == "" || migs[0].Checksum == migs[1].Checksum {
		t.Fatalf("expected distinct checksums")
	}
}

func TestLoad_DuplicateVersion(t *testing.T) {
	src := fstest.MapFS{
		"V1__a.sql":  {Data: []byte("SELECT 1;")},
		"V01__b.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := Load(src); err == nil {
		t.Fatalf("expected duplicate version error")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	src := fstest.MapFS{"V1__a.sql": {Data: []byte("   ")}}
	if _, err := Load(src); err == nil {
		t.Fatalf("expected empty file error")
	}
}

func TestLoad_EmbeddedSchema(t *testing.T) {
	migs, err := Load(migrations.FS)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) < 2 {
		t.Fatalf("expected embedded migrations, got %d", len(migs))
	}
}
