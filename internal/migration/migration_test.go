package migration

import (
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/fastwell/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestRunner(t *testing.T, db *sql.DB, files map[string]string) *Runner {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	runner, err := NewRunner(db, fsys, DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	return runner
}

func TestNewRunner(t *testing.T) {
	db := setupTestDB(t)
	if _, err := NewRunner(nil, fstest.MapFS{}, DriverSQLite); err == nil {
		t.Error("NewRunner(nil db) succeeded")
	}
	if _, err := NewRunner(db, fstest.MapFS{}, Driver("mysql")); err == nil {
		t.Error("NewRunner(mysql) succeeded")
	}
}

func TestCurrentVersion(t *testing.T) {
	runner := newTestRunner(t, setupTestDB(t), nil)

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion() error = %v", err)
	}
	if version != 0 {
		t.Errorf("fresh version = %d, want 0", version)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion() error = %v", err)
	}
	if version, _ = runner.GetCurrentVersion(); version != 5 {
		t.Errorf("version = %d, want 5", version)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	runner := newTestRunner(t, setupTestDB(t), map[string]string{
		"002_second.sql": "CREATE TABLE b (id INTEGER);",
		"001_first.sql":  "CREATE TABLE a (id INTEGER);",
		"README.md":      "not a migration",
	})

	got, err := runner.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d migrations, want 2", len(got))
	}
	if got[0].Version != 1 || got[0].Name != "first" || got[1].Version != 2 {
		t.Errorf("migrations out of order: %+v", got)
	}
}

func TestReadMigrationFilesRejectsBadNames(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"missing separator", map[string]string{"001.sql": ""}, "invalid migration filename"},
		{"non-numeric version", map[string]string{"abc_x.sql": ""}, "invalid version number"},
		{"zero version", map[string]string{"000_x.sql": ""}, "at least 1"},
		{"duplicate version", map[string]string{"001_a.sql": "", "01_b.sql": ""}, "duplicate migration version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := newTestRunner(t, setupTestDB(t), tt.files)
			_, err := runner.ReadMigrationFiles()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ReadMigrationFiles() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestApplyMigrations(t *testing.T) {
	db := setupTestDB(t)
	files := map[string]string{
		"001_init.sql": "CREATE TABLE a (id INTEGER);",
	}

	applied, err := newTestRunner(t, db, files).ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}

	files["002_more.sql"] = "CREATE TABLE b (id INTEGER);"
	var logs []string
	runner := newTestRunner(t, db, files)
	applied, err = runner.ApplyMigrations(func(msg string) { logs = append(logs, msg) })
	if err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}
	if applied != 1 {
		t.Errorf("incremental applied = %d, want 1", applied)
	}
	if len(logs) == 0 || !strings.Contains(logs[0], "from version 1 to 2") {
		t.Errorf("logs = %v", logs)
	}

	applied, err = runner.ApplyMigrations(nil)
	if err != nil || applied != 0 {
		t.Errorf("rerun applied = %d, err = %v, want a no-op", applied, err)
	}
	if _, err := db.Exec("INSERT INTO b (id) VALUES (1)"); err != nil {
		t.Errorf("table from migration 2 missing: %v", err)
	}
}

func TestApplyMigrationsRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	runner := newTestRunner(t, db, map[string]string{
		"001_ok.sql":     "CREATE TABLE a (id INTEGER);",
		"002_broken.sql": "CREATE TABLE b (id INTEGER); NOT VALID SQL;",
	})

	applied, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("ApplyMigrations() succeeded with a broken migration")
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if version, _ := runner.GetCurrentVersion(); version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
	if _, err := db.Exec("SELECT id FROM b"); err == nil {
		t.Error("table from the failed migration exists")
	}
}

func TestValidateVersion(t *testing.T) {
	runner := newTestRunner(t, setupTestDB(t), map[string]string{
		"001_init.sql": "CREATE TABLE a (id INTEGER);",
	})
	if err := runner.SetVersion(3); err != nil {
		t.Fatalf("SetVersion() error = %v", err)
	}

	err := runner.ValidateVersion()
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("ValidateVersion() error = %v, want newer schema error", err)
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Error("ApplyMigrations() on a newer database succeeded")
	}
}

func TestEmbeddedSQLiteMigrations(t *testing.T) {
	db := setupTestDB(t)
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("fs.Sub() error = %v", err)
	}
	runner, err := NewRunner(db, sub, DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	if _, err := runner.ApplyMigrations(nil); err != nil {
		t.Fatalf("ApplyMigrations() error = %v", err)
	}

	latest, err := runner.GetLatestVersion()
	if err != nil {
		t.Fatalf("GetLatestVersion() error = %v", err)
	}
	if current, _ := runner.GetCurrentVersion(); current != latest {
		t.Errorf("current = %d, want %d", current, latest)
	}
	for _, table := range []string{"fasts", "prayer_logs", "progress_entries", "journals", "journal_comments", "partners"} {
		if _, err := db.Exec("SELECT COUNT(*) FROM " + table); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestEmbeddedMigrationsMatch(t *testing.T) {
	lite, err := fs.ReadDir(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("ReadDir(sqlite) error = %v", err)
	}
	pg, err := fs.ReadDir(migrations.FS, "postgres")
	if err != nil {
		t.Fatalf("ReadDir(postgres) error = %v", err)
	}
	if len(lite) != len(pg) {
		t.Fatalf("sqlite has %d migrations, postgres has %d", len(lite), len(pg))
	}
	for i := range lite {
		if lite[i].Name() != pg[i].Name() {
			t.Errorf("migration %d: sqlite %s, postgres %s", i, lite[i].Name(), pg[i].Name())
		}
	}
}
