package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/storage"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClock() *clock {
	return &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

// setupTestDB initializes a fastwell database holding the given number of fasts
func setupTestDB(t *testing.T, fasts int) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "fastwell.db")
	addFasts(t, dbPath, fasts)
	return dbPath
}

func addFasts(t *testing.T, dbPath string, n int) {
	t.Helper()
	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	defer store.Close()
	start := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s := start.AddDate(0, 0, i*2)
		if _, err := store.CreateFast(context.Background(), models.CreateFastPayload{
			Type:     constants.FastTypeCustom,
			Schedule: models.NewFixedSchedule(s, s.Add(12*time.Hour), "UTC"),
		}); err != nil {
			t.Fatalf("CreateFast() error = %v", err)
		}
	}
}

func countFasts(t *testing.T, dbPath string) int {
	t.Helper()
	store := storage.NewSQLiteStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	defer store.Close()
	page, err := store.ListFasts(context.Background(), models.ListFilter{Page: 1, Limit: 100})
	if err != nil {
		t.Fatalf("ListFasts() error = %v", err)
	}
	return page.Total
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t, 2)
	c := newTestClock()
	mgr := NewManager(dbPath, WithClock(c.Now))

	info, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if want := filepath.Join(mgr.Dir(), "fastwell-20240601-120000.db"); info.Path != want {
		t.Errorf("Path = %s, want %s", info.Path, want)
	}
	if !info.Timestamp.Equal(c.now) || info.Size == 0 {
		t.Errorf("Info = %+v", info)
	}
	if got := countFasts(t, info.Path); got != 2 {
		t.Errorf("backup holds %d fasts, want 2", got)
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Create() error = %v, want missing database", err)
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t, 0)
	mgr := NewManager(dbPath, WithClock(newTestClock().Now))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		info, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
		if seen[info.Path] {
			t.Fatalf("duplicate backup path %s", info.Path)
		}
		seen[info.Path] = true
	}
	for _, name := range []string{"fastwell-20240601-120000.db", "fastwell-20240601-120000-1.db", "fastwell-20240601-120000-2.db"} {
		if !seen[filepath.Join(mgr.Dir(), name)] {
			t.Errorf("missing %s in %v", name, seen)
		}
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t, 0)
	c := newTestClock()
	mgr := NewManager(dbPath, WithClock(c.Now), WithRetention(3))

	var newest Info
	for i := 0; i < 5; i++ {
		info, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		newest = info
		c.Advance(time.Hour)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("List() = %d backups, want 3", len(backups))
	}
	if backups[0].Path != newest.Path {
		t.Errorf("newest backup = %s, want %s", backups[0].Path, newest.Path)
	}
	for i := 1; i < len(backups); i++ {
		if !backups[i-1].Timestamp.After(backups[i].Timestamp) {
			t.Errorf("backups not sorted newest first: %v", backups)
		}
	}
}

func TestListBackups(t *testing.T) {
	dbPath := setupTestDB(t, 0)
	mgr := NewManager(dbPath)

	backups, err := mgr.List()
	if err != nil || len(backups) != 0 {
		t.Fatalf("List() with no directory = %v, %v", backups, err)
	}

	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	files := []string{
		"fastwell-20240102-030405.db",
		"fastwell-20240102-030405-2.db",
		"fastwell-20240101-000000.db",
		"fastwell-notadate.db",
		"fastwell-20240102-030405-x.db",
		"other-20240102-030405.db",
		"fastwell-20240102-030405.txt",
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var got []string
	for _, b := range backups {
		got = append(got, filepath.Base(b.Path))
	}
	want := []string{"fastwell-20240102-030405.db", "fastwell-20240102-030405-2.db", "fastwell-20240101-000000.db"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"fastwell-20240601-120000.db", true},
		{"fastwell-20240601-120000-12.db", true},
		{"fastwell-20240601-120000-0.db", false},
		{"fastwell-20240601-1200.db", false},
		{"fastwell-20241301-120000.db", false},
		{"other-20240601-120000.db", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseName(tt.name); ok != tt.ok {
				t.Errorf("parseName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
		})
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t, 1)
	c := newTestClock()
	mgr := NewManager(dbPath, WithClock(c.Now))

	saved, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	addFasts(t, dbPath, 2)
	if got := countFasts(t, dbPath); got != 3 {
		t.Fatalf("database holds %d fasts before restore, want 3", got)
	}

	c.Advance(time.Minute)
	previous, err := mgr.Restore(saved.Path)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := countFasts(t, dbPath); got != 1 {
		t.Errorf("database holds %d fasts after restore, want 1", got)
	}

	if previous == nil {
		t.Fatal("Restore() did not back up the current database")
	}
	if got := countFasts(t, previous.Path); got != 3 {
		t.Errorf("pre-restore backup holds %d fasts, want 3", got)
	}
}

func TestRestoreRejectsInvalidBackups(t *testing.T) {
	dbPath := setupTestDB(t, 1)
	mgr := NewManager(dbPath)
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.db")
	if err := os.WriteFile(garbage, []byte("this is not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	foreign := filepath.Join(dir, "foreign.db")
	db, err := sql.Open("sqlite", foreign)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	for name, path := range map[string]string{
		"missing": filepath.Join(dir, "missing.db"),
		"garbage": garbage,
		"foreign": foreign,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := mgr.Restore(path); err == nil {
				t.Errorf("Restore(%s) succeeded", name)
			}
		})
	}
	if got := countFasts(t, dbPath); got != 1 {
		t.Errorf("failed restores changed the database: %d fasts", got)
	}
}
