// Package history keeps a local sqlite log of completed downloads.
package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one completed download. AudioTrack is -1 when no audio track
// was muxed in.
type Record struct {
	ID         int64
	OID        string
	Title      string
	OutputPath string
	SourceURL  string
	VideoTrack string
	AudioTrack int
	Bytes      int64
	CreatedAt  time.Time
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS downloads (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    oid         TEXT NOT NULL DEFAULT '',
    title       TEXT NOT NULL DEFAULT '',
    output_path TEXT NOT NULL DEFAULT '',
    source_url  TEXT NOT NULL DEFAULT '',
    video_track TEXT NOT NULL DEFAULT '',
    audio_track INTEGER NOT NULL DEFAULT -1,
    bytes       INTEGER NOT NULL DEFAULT 0,
    created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_downloads_oid ON downloads(oid);
CREATE INDEX IF NOT EXISTS idx_downloads_created_at ON downloads(created_at);
`

// DB wraps an SQLite connection for the download log.
type DB struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens or creates the SQLite database at the given path.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	if _, err := sqlDB.Exec(createTableSQL); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: sqlDB}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Insert appends a record and returns its id.
func (d *DB) Insert(record Record) (int64, error) {
	if d == nil || d.db == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	result, err := d.db.Exec(`
		INSERT INTO downloads (oid, title, output_path, source_url, video_track, audio_track, bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		record.OID, record.Title, record.OutputPath, record.SourceURL,
		record.VideoTrack, record.AudioTrack, record.Bytes,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting download record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}
	return id, nil
}

// List returns the most recent records, newest first. limit <= 0 means all.
func (d *DB) List(limit int) ([]Record, error) {
	if d == nil || d.db == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	query := `
		SELECT id, oid, title, output_path, source_url, video_track, audio_track, bytes, created_at
		FROM downloads ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying download records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.OID, &rec.Title, &rec.OutputPath, &rec.SourceURL,
			&rec.VideoTrack, &rec.AudioTrack, &rec.Bytes, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning download record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
