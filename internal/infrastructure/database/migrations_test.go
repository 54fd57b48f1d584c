package database

import (
	"errors"
	"testing"
	"testing/fstest"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"20260101_000000_widgets.up.sql": {Data: []byte(`
			CREATE TABLE widgets (id TEXT PRIMARY KEY, name TEXT NOT NULL) STRICT;`)},
		"20260101_000000_widgets.down.sql": {Data: []byte(`DROP TABLE widgets;`)},
		"20260102_000000_gadgets.up.sql": {Data: []byte(`
			CREATE TABLE gadgets (id TEXT PRIMARY KEY) STRICT;`)},
		"20260102_000000_gadgets.down.sql": {Data: []byte(`DROP TABLE gadgets;`)},
		"README.md":                        {Data: []byte("not a migration")},
	}
}

func tableExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRowContext(t.Context(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&n)
	if err != nil {
		t.Fatalf("querying sqlite_master: %v", err)
	}
	return n == 1
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	src := testMigrations()

	n, err := db.Migrate(ctx, src)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Migrate() applied %d, want 2", n)
	}
	for _, table := range []string{"widgets", "gadgets"} {
		if !tableExists(t, db, table) {
			t.Errorf("table %s not created", table)
		}
	}

	applied, pending, err := db.MigrationStatus(ctx, src)
	if err != nil {
		t.Fatalf("MigrationStatus() error = %v", err)
	}
	if len(applied) != 2 || len(pending) != 0 {
		t.Errorf("status = %d applied, %d pending; want 2, 0", len(applied), len(pending))
	}
	if applied[0].Version != "20260101_000000" || applied[0].AppliedAt.IsZero() {
		t.Errorf("applied[0] = %+v", applied[0])
	}

	n, err = db.Migrate(ctx, src)
	if err != nil || n != 0 {
		t.Errorf("second Migrate() = %d, %v; want 0, nil", n, err)
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	src := testMigrations()

	if _, err := db.Migrate(ctx, src); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(ctx, src); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	if tableExists(t, db, "gadgets") {
		t.Error("gadgets should be dropped")
	}
	if !tableExists(t, db, "widgets") {
		t.Error("widgets should remain")
	}

	_, pending, _ := db.MigrationStatus(ctx, src)
	if len(pending) != 1 || pending[0].Name != "gadgets" {
		t.Errorf("pending = %+v, want gadgets", pending)
	}
}

func TestMigrateDown_Empty(t *testing.T) {
	db := openTestDB(t)
	if err := db.MigrateDown(t.Context(), testMigrations()); err != nil {
		t.Errorf("MigrateDown() on fresh db error = %v", err)
	}
}

func TestMigrateDown_MissingFile(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()

	if _, err := db.Migrate(ctx, testMigrations()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	src := testMigrations()
	delete(src, "20260102_000000_gadgets.up.sql")
	delete(src, "20260102_000000_gadgets.down.sql")

	if err := db.MigrateDown(ctx, src); !errors.Is(err, ErrMigrationMissing) {
		t.Errorf("MigrateDown() error = %v, want ErrMigrationMissing", err)
	}
}

func TestMigrate_FailureKeepsEarlier(t *testing.T) {
	db := openTestDB(t)
	src := testMigrations()
	src["20260103_000000_broken.up.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE (")}

	n, err := db.Migrate(t.Context(), src)
	if err == nil {
		t.Fatal("Migrate() error = nil, want failure")
	}
	if n != 2 {
		t.Errorf("Migrate() applied %d before failing, want 2", n)
	}
	if !tableExists(t, db, "gadgets") {
		t.Error("earlier migrations should stay committed")
	}
}

func TestMigrate_NilSource(t *testing.T) {
	db := openTestDB(t)
	n, err := db.Migrate(t.Context(), nil)
	if err != nil || n != 0 {
		t.Errorf("Migrate(nil) = %d, %v; want 0, nil", n, err)
	}
}

func TestLoadMigrations_DownWithoutUp(t *testing.T) {
	src := fstest.MapFS{
		"20260101_000000_orphan.down.sql": {Data: []byte("DROP TABLE x;")},
	}
	if _, err := loadMigrations(src); err == nil {
		t.Error("loadMigrations() should reject a down file without an up file")
	}
}

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename    string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"20260301_120000_initial.up.sql", "20260301_120000", true, true},
		{"20260301_120000_initial.down.sql", "20260301_120000", false, true},
		{"20260301_120000_add_room_states.up.sql", "20260301_120000", true, true},
		{"20260301_120000.up.sql", "20260301_120000", true, true},
		{"20260301_initial.sql", "", false, false},
		{"notes.txt", "", false, false},
		{"20260301.up.sql", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if version != tt.wantVersion || isUp != tt.wantUp || ok != tt.wantOK {
				t.Errorf("parseMigrationFilename(%q) = (%q, %v, %v), want (%q, %v, %v)",
					tt.filename, version, isUp, ok, tt.wantVersion, tt.wantUp, tt.wantOK)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20260301_120000_initial.up.sql", "initial"},
		{"20260301_120000_add_room_states.down.sql", "add_room_states"},
		{"20260301_120000.up.sql", "20260301_120000"},
	}

	for _, tt := range tests {
		if got := extractMigrationName(tt.filename); got != tt.want {
			t.Errorf("extractMigrationName(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
