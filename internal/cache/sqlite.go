package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"fieldplanner/internal/cache/migrations"
	"fieldplanner/internal/geo"
)

// SQLiteCache is a durable, single-host TimeCache backend. Adapted from the
// teacher's distanceCacheRepository: same ROUND(lat,5)-keyed matching and
// ON CONFLICT upsert, but schema-managed by golang-migrate/migrate/v4
// instead of the teacher's hand-written createSchema DDL string (grounded
// on banshee-data-velocity.report's migrate.go).
type SQLiteCache struct {
	db *sql.DB
}

// NewSQLiteCache opens (creating if absent) the SQLite database at path,
// applies pending migrations, and returns a ready cache.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open sqlite %q: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON; PRAGMA busy_timeout=5000;"); err != nil {
		return nil, fmt.Errorf("cache: set pragmas: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("cache: iofs source driver: %w", err)
	}

	dbDriver, err := migratesqlite.WithInstance(c.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("cache: sqlite migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("cache: migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("cache: migrate up: %w", err)
	}
	return nil
}

type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[cache-migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool { return false }

// Get implements TimeCache.
func (c *SQLiteCache) Get(ctx context.Context, origin, dest geo.Point) (Entry, bool, error) {
	o, d := origin, dest
	if greater(o, d) {
		o, d = d, o
	}

	const query = `
		SELECT origin_lat, origin_lng, dest_lat, dest_lng, miles, minutes
		FROM distance_cache
		WHERE ROUND(origin_lat, 5) = ROUND(?, 5)
		  AND ROUND(origin_lng, 5) = ROUND(?, 5)
		  AND ROUND(dest_lat, 5) = ROUND(?, 5)
		  AND ROUND(dest_lng, 5) = ROUND(?, 5)
	`

	var entry Entry
	err := c.db.QueryRowContext(ctx, query, o.Lat, o.Lng, d.Lat, d.Lng).Scan(
		&entry.Origin.Lat, &entry.Origin.Lng, &entry.Destination.Lat, &entry.Destination.Lng,
		&entry.Miles, &entry.Minutes,
	)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache: get: %w", err)
	}
	return entry, true, nil
}

// Set implements TimeCache.
func (c *SQLiteCache) Set(ctx context.Context, entry Entry) error {
	return c.upsert(ctx, c.db, entry)
}

// SetBatch implements TimeCache, writing all entries in one transaction
// (mirrors the teacher's transactional SetBatch).
func (c *SQLiteCache) SetBatch(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cache: begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		if err := c.upsert(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cache: commit: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (c *SQLiteCache) upsert(ctx context.Context, db execer, entry Entry) error {
	o, d := entry.Origin, entry.Destination
	if greater(o, d) {
		o, d = d, o
	}

	const query = `
		INSERT INTO distance_cache (origin_lat, origin_lng, dest_lat, dest_lng, miles, minutes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(origin_lat, origin_lng, dest_lat, dest_lng)
		DO UPDATE SET miles = excluded.miles, minutes = excluded.minutes, cached_at = CURRENT_TIMESTAMP
	`
	_, err := db.ExecContext(ctx, query, o.Lat, o.Lng, d.Lat, d.Lng, entry.Miles, entry.Minutes)
	if err != nil {
		return fmt.Errorf("cache: upsert: %w", err)
	}
	return nil
}

// Clear implements TimeCache.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM distance_cache`); err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
