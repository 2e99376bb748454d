package store

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/model"
)

// Catalog is the sqlite index over meeting folders. It only accelerates
// listing and lookup; the folders remain authoritative and the catalog can be
// rebuilt from them at any time via Store.Refresh.
type Catalog struct {
	db *sql.DB
}

const catalogSchema = `
CREATE TABLE IF NOT EXISTS meetings (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	folder      TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_meetings_created_at ON meetings(created_at);
CREATE INDEX IF NOT EXISTS idx_meetings_status ON meetings(status);
`

// NewCatalog opens (or creates) the catalog database at dbPath.
func NewCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening catalog database")
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing catalog schema")
	}
	return &Catalog{db: db}, nil
}

// NewCatalogFromDB wraps an existing connection, used by tests.
func NewCatalogFromDB(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) Upsert(s model.Summary) error {
	_, err := c.db.Exec(`
		INSERT INTO meetings (id, name, folder, created_at, duration_ms, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			folder = excluded.folder,
			created_at = excluded.created_at,
			duration_ms = excluded.duration_ms,
			status = excluded.status`,
		s.ID, s.Name, s.Folder, s.CreatedAt.UTC(), s.DurationMs, string(s.Status))
	if err != nil {
		return errors.Wrap(err, "upserting catalog row")
	}
	return nil
}

func (c *Catalog) Delete(id string) error {
	_, err := c.db.Exec(`DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "deleting catalog row")
	}
	return nil
}

func (c *Catalog) Clear() error {
	_, err := c.db.Exec(`DELETE FROM meetings`)
	if err != nil {
		return errors.Wrap(err, "clearing catalog")
	}
	return nil
}

// Folder resolves a meeting id to its folder name.
func (c *Catalog) Folder(id string) (string, error) {
	var folder string
	err := c.db.QueryRow(`SELECT folder FROM meetings WHERE id = ?`, id).Scan(&folder)
	if err == sql.ErrNoRows {
		return "", errors.Wrapf(errors.ErrNotFound, "meeting %s", id)
	}
	if err != nil {
		return "", errors.Wrap(err, "querying catalog")
	}
	return folder, nil
}

// List returns summaries newest first, filtered by an optional name substring
// (case-insensitive) and an optional status.
func (c *Catalog) List(nameContains string, status model.MeetingStatus) ([]model.Summary, error) {
	query := `SELECT id, name, folder, created_at, duration_ms, status FROM meetings WHERE 1=1`
	args := []interface{}{}
	if nameContains != "" {
		query += ` AND name LIKE ? COLLATE NOCASE`
		args = append(args, "%"+nameContains+"%")
	}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing meetings")
	}
	defer rows.Close()

	var out []model.Summary
	for rows.Next() {
		var s model.Summary
		var createdAt time.Time
		var status string
		if err := rows.Scan(&s.ID, &s.Name, &s.Folder, &createdAt, &s.DurationMs, &status); err != nil {
			return nil, errors.Wrap(err, "scanning catalog row")
		}
		s.CreatedAt = createdAt
		s.Status = model.MeetingStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}
