// Package persistence is the storage adapter: user accounts, live/saved
// tables, finished game results, and player ratings, against either SQLite
// or PostgreSQL depending on configuration.
package persistence

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"playpalace/internal/config"
)

// DB wraps a *sql.DB plus the dialect-specific placeholder rewriting needed
// to share one set of query strings between SQLite (?) and PostgreSQL ($n).
type DB struct {
	conn    *sql.DB
	dialect string
}

// Open connects according to cfg.DBType, pings to verify, applies the
// connection pool settings, and creates the schema if it's missing.
func Open(cfg *config.Config) (*DB, error) {
	var driver string
	switch cfg.DBType {
	case "sqlite":
		driver = "sqlite3"
	case "postgres":
		driver = "postgres"
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}

	if cfg.DBType == "sqlite" {
		if dbDir := filepath.Dir(cfg.DBDSN); dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open(driver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBType, err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s database: %w", cfg.DBType, err)
	}
	conn.SetMaxOpenConns(cfg.DBMaxConnections)
	conn.SetMaxIdleConns(cfg.DBMaxIdleConns)

	if cfg.DBType == "sqlite" {
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			log.Printf("persistence: failed to set WAL mode: %v", err)
		}
	}

	db := &DB{conn: conn, dialect: cfg.DBType}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// q rewrites a query written with "?" placeholders into "$1, $2, ..." form
// for PostgreSQL, left untouched for SQLite. Every query in this package is
// written once, in SQLite form, and passed through q before executing.
func (db *DB) q(query string) string {
	if db.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (db *DB) exec(query string, args ...any) (sql.Result, error) {
	return db.conn.Exec(db.q(query), args...)
}

func (db *DB) query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(db.q(query), args...)
}

func (db *DB) queryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(db.q(query), args...)
}

// migrate creates every table if missing, then backfills columns added by
// later revisions (trust_level/approved) on databases created before those
// columns existed.
func (db *DB) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
    uuid TEXT PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    locale TEXT NOT NULL DEFAULT 'en',
    preferences_json TEXT NOT NULL DEFAULT '{}',
    trust_level INTEGER NOT NULL DEFAULT 0,
    approved INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tables (
    table_id TEXT PRIMARY KEY,
    game_type TEXT NOT NULL,
    host TEXT NOT NULL,
    members_json TEXT NOT NULL,
    game_json TEXT NOT NULL,
    status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS saved_tables (
    table_id TEXT PRIMARY KEY,
    game_type TEXT NOT NULL,
    host TEXT NOT NULL,
    members_json TEXT NOT NULL,
    game_json TEXT NOT NULL,
    status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS game_results (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    game_type TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    duration_ticks INTEGER NOT NULL,
    custom_data_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS game_result_players (
    game_result_id INTEGER NOT NULL,
    player_id TEXT NOT NULL,
    player_name TEXT NOT NULL,
    is_bot INTEGER NOT NULL,
    rank INTEGER NOT NULL,
    FOREIGN KEY (game_result_id) REFERENCES game_results(id)
);

CREATE TABLE IF NOT EXISTS player_ratings (
    player_id TEXT NOT NULL,
    game_type TEXT NOT NULL,
    mu REAL NOT NULL,
    sigma REAL NOT NULL,
    PRIMARY KEY (player_id, game_type)
);

CREATE INDEX IF NOT EXISTS idx_result_players_result ON game_result_players(game_result_id);
CREATE INDEX IF NOT EXISTS idx_result_players_player ON game_result_players(player_id);
`
	if db.dialect == "postgres" {
		schema = strings.ReplaceAll(schema, "INTEGER PRIMARY KEY AUTOINCREMENT", "SERIAL PRIMARY KEY")
	}
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return db.backfillUserColumns()
}

// backfillUserColumns adds trust_level/approved to a users table created
// before this revision, defaulting every existing row to ordinary,
// unapproved status (the first-registered-user-becomes-admin rule only
// applies going forward, at registration time).
func (db *DB) backfillUserColumns() error {
	has, err := db.columnExists("users", "trust_level")
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	log.Println("persistence: backfilling users.trust_level / users.approved")
	if _, err := db.conn.Exec(`ALTER TABLE users ADD COLUMN trust_level INTEGER NOT NULL DEFAULT 0`); err != nil {
		return err
	}
	if _, err := db.conn.Exec(`ALTER TABLE users ADD COLUMN approved INTEGER NOT NULL DEFAULT 0`); err != nil {
		return err
	}
	return nil
}

func (db *DB) columnExists(table, column string) (bool, error) {
	if db.dialect == "postgres" {
		var name string
		err := db.conn.QueryRow(
			`SELECT column_name FROM information_schema.columns WHERE table_name = $1 AND column_name = $2`,
			table, column,
		).Scan(&name)
		if err == sql.ErrNoRows {
			return false, nil
		}
		return err == nil, err
	}

	rows, err := db.conn.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
