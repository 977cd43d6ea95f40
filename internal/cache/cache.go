// Package cache maintains an embedded SQLite mirror of the task document
// for fast queries.
//
// The document stays the source of truth; the cache is rebuilt from it
// after commits (or by the watcher when an external process rewrites the
// file) and answers read-only questions (counts, status breakdowns,
// dangling dependency edges) without re-parsing JSON.
//
// The database runs in embedded mode with WAL, so concurrent readers are
// safe while a sync is in flight.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hfern/tagtask/internal/task"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB wraps the SQLite connection holding the task mirror.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the cache database at path. The caller must call
// Close when done.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn, path: path}

	if _, err := db.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	err := db.conn.Close()
	db.conn = nil
	return err
}

// Path returns the cache file path.
func (db *DB) Path() string {
	return db.path
}

// InitSchema creates the mirror tables if they do not exist.
func (db *DB) InitSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS tasks (
    tag         TEXT NOT NULL,
    id          INTEGER NOT NULL,
    title       TEXT NOT NULL,
    status      TEXT NOT NULL,
    priority    TEXT,
    description TEXT,
    PRIMARY KEY (tag, id)
);

CREATE TABLE IF NOT EXISTS deps (
    tag        TEXT NOT NULL,
    task_id    INTEGER NOT NULL,
    depends_on INTEGER NOT NULL,
    PRIMARY KEY (tag, task_id, depends_on)
);

CREATE TABLE IF NOT EXISTS subtasks (
    tag       TEXT NOT NULL,
    parent_id INTEGER NOT NULL,
    id        INTEGER NOT NULL,
    title     TEXT NOT NULL,
    status    TEXT NOT NULL,
    PRIMARY KEY (tag, parent_id, id)
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(tag, status);
`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create cache schema: %w", err)
	}
	return nil
}

// Sync rebuilds the mirror from the document inside one transaction.
func (db *DB) Sync(doc *task.Document) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache sync: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"tasks", "deps", "subtasks"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for tag, p := range doc.Tags {
		for _, t := range p.Tasks {
			if _, err := tx.Exec(
				`INSERT INTO tasks (tag, id, title, status, priority, description) VALUES (?, ?, ?, ?, ?, ?)`,
				tag, t.ID, t.Title, string(t.Status), string(t.Priority), t.Description,
			); err != nil {
				return fmt.Errorf("failed to insert task %s/%d: %w", tag, t.ID, err)
			}
			for _, dep := range t.Dependencies {
				if _, err := tx.Exec(
					`INSERT OR IGNORE INTO deps (tag, task_id, depends_on) VALUES (?, ?, ?)`,
					tag, t.ID, dep,
				); err != nil {
					return fmt.Errorf("failed to insert dep %s/%d->%d: %w", tag, t.ID, dep, err)
				}
			}
			for _, st := range t.Subtasks {
				if _, err := tx.Exec(
					`INSERT INTO subtasks (tag, parent_id, id, title, status) VALUES (?, ?, ?, ?, ?)`,
					tag, t.ID, st.ID, st.Title, string(st.Status),
				); err != nil {
					return fmt.Errorf("failed to insert subtask %s/%d.%d: %w", tag, t.ID, st.ID, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache sync: %w", err)
	}
	return nil
}

// TaskCount returns the number of mirrored tasks.
func (db *DB) TaskCount() (int, error) {
	return db.count("SELECT COUNT(*) FROM tasks")
}

// DepCount returns the number of mirrored dependency edges.
func (db *DB) DepCount() (int, error) {
	return db.count("SELECT COUNT(*) FROM deps")
}

// TagCount returns the number of distinct tags in the mirror.
func (db *DB) TagCount() (int, error) {
	return db.count("SELECT COUNT(DISTINCT tag) FROM tasks")
}

func (db *DB) count(query string) (int, error) {
	var n int
	if err := db.conn.QueryRow(query).Scan(&n); err != nil {
		return 0, fmt.Errorf("cache query failed: %w", err)
	}
	return n, nil
}

// StatusCounts returns the per-status task counts for one tag.
func (db *DB) StatusCounts(tag string) (map[string]int, error) {
	rows, err := db.conn.Query(
		`SELECT status, COUNT(*) FROM tasks WHERE tag = ? GROUP BY status`, tag)
	if err != nil {
		return nil, fmt.Errorf("cache query failed: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("cache scan failed: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// DanglingEdge is a dependency reference that does not resolve to a task
// in its own tag.
type DanglingEdge struct {
	Tag       string
	TaskID    int
	DependsOn int
}

// DanglingDeps reports dependency edges whose target is missing from the
// same tag. The store tolerates these as a pre-existing condition; this
// query makes them reportable.
func (db *DB) DanglingDeps() ([]DanglingEdge, error) {
	rows, err := db.conn.Query(`
SELECT d.tag, d.task_id, d.depends_on
FROM deps d
LEFT JOIN tasks t ON t.tag = d.tag AND t.id = d.depends_on
WHERE t.id IS NULL
ORDER BY d.tag, d.task_id, d.depends_on`)
	if err != nil {
		return nil, fmt.Errorf("cache query failed: %w", err)
	}
	defer rows.Close()

	var edges []DanglingEdge
	for rows.Next() {
		var e DanglingEdge
		if err := rows.Scan(&e.Tag, &e.TaskID, &e.DependsOn); err != nil {
			return nil, fmt.Errorf("cache scan failed: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
