package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/logger"
	"github.com/julianstephens/fastwell/internal/migration"
	"github.com/julianstephens/fastwell/migrations"
)

// Dialect is the SQL flavor a Store talks to
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Store is the local fast backend on top of database/sql. Queries are written
// with ? placeholders and rebound for PostgreSQL.
type Store struct {
	dialect Dialect
	dsn     string
	db      *sql.DB
	now     func() time.Time
}

// NewSQLiteStore returns a store backed by the SQLite file at path
func NewSQLiteStore(path string) *Store {
	return &Store{dialect: DialectSQLite, dsn: path, now: time.Now}
}

// NewPostgresStore returns a store for a PostgreSQL connection string. The
// search_path is pinned to the application schema.
func NewPostgresStore(connStr string) *Store {
	return &Store{dialect: DialectPostgres, dsn: ensureSearchPath(connStr), now: time.Now}
}

// New picks the dialect from the database setting: connection strings go to
// PostgreSQL, anything else is a SQLite path.
func New(database string) (*Store, error) {
	if IsPostgresConnString(database) {
		if _, err := ValidateConnString(database); err != nil {
			return nil, err
		}
		return NewPostgresStore(database), nil
	}
	return NewSQLiteStore(database), nil
}

// IsPostgresConnString reports whether database looks like a PostgreSQL URI or DSN
func IsPostgresConnString(database string) bool {
	d := strings.TrimSpace(database)
	if strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://") {
		return true
	}
	return strings.Contains(d, "host=") || strings.Contains(d, "dbname=")
}

// SetClock overrides the time source used for timestamps and status refresh
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Init opens the database, creating it if needed, and applies migrations
func (s *Store) Init() error {
	if err := s.open(); err != nil {
		return err
	}
	if s.dialect == DialectPostgres {
		if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	runner, err := s.migrationRunner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(func(msg string) {
		logger.Info(msg)
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens an existing database and checks its schema version
func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if s.dialect == DialectSQLite {
		if _, err := os.Stat(s.dsn); os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
	}
	if err := s.open(); err != nil {
		return err
	}
	runner, err := s.migrationRunner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion()
}

func (s *Store) open() error {
	if s.db != nil {
		return nil
	}

	switch s.dialect {
	case DialectSQLite:
		if err := os.MkdirAll(filepath.Dir(s.dsn), 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		// Pragmas in the DSN apply to every pooled connection
		db, err := sql.Open("sqlite", s.dsn+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		s.db = db

	case DialectPostgres:
		db, err := sql.Open("postgres", s.dsn)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.Ping(); err != nil {
			db.Close()
			if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.dsn) {
				return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
			}
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		s.db = db

	default:
		return fmt.Errorf("unsupported dialect %q", s.dialect)
	}
	return nil
}

func (s *Store) migrationRunner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, string(s.dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.dialect, err)
	}
	driver := migration.DriverSQLite
	if s.dialect == DialectPostgres {
		driver = migration.DriverPostgres
	}
	return migration.NewRunner(s.db, subFS, driver)
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// GetConfigPath returns the SQLite file path, or a non-sensitive label for
// PostgreSQL.
func (s *Store) GetConfigPath() string {
	if s.dialect == DialectPostgres {
		return "postgresql"
	}
	return s.dsn
}

// GetDB returns the underlying connection, nil before Init or Load
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// rebind rewrites ? placeholders as $1, $2, ... for PostgreSQL
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(constants.InstantFormat)
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(constants.InstantFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored instant %q: %w", s, err)
	}
	return t, nil
}

func nullInstant(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatInstant(*t), Valid: true}
}

func parseNullInstant(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseInstant(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type scanner interface {
	Scan(dest ...any) error
}
