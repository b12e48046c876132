package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/starford/shiori/internal/models"
)

// SearchResult represents one full-text hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// UpsertEntry inserts or replaces the entry parsed from file.
func (db *DB) UpsertEntry(file, checksum string, m models.Meta) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.Exec(`
		INSERT INTO entries (file, checksum, id, timestamp, title, summary, tags, category_lv1, category_lv2, post_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file) DO UPDATE SET
			checksum     = excluded.checksum,
			id           = excluded.id,
			timestamp    = excluded.timestamp,
			title        = excluded.title,
			summary      = excluded.summary,
			tags         = excluded.tags,
			category_lv1 = excluded.category_lv1,
			category_lv2 = excluded.category_lv2,
			post_path    = excluded.post_path
	`, file, checksum, m.ID, m.Timestamp, m.Title, m.Summary, string(tagsJSON), m.CategoryLv1, m.CategoryLv2, m.PostPath)
	if err != nil {
		return fmt.Errorf("catalog: upsert entry: %w", err)
	}

	if err := ftsUpsert(tx, file, m); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteEntry removes the entry for file. Missing entries are not an error.
func (db *DB) DeleteEntry(file string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, file); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM entries WHERE file = ?`, file); err != nil {
		return fmt.Errorf("catalog: delete entry: %w", err)
	}
	return tx.Commit()
}

// AllChecksums returns file → checksum for every cached entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT file, checksum FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var f, cs string
		if err := rows.Scan(&f, &cs); err != nil {
			return nil, err
		}
		out[f] = cs
	}
	return out, rows.Err()
}

// Entries returns every cached entry ordered by source file name.
func (db *DB) Entries() ([]models.Meta, error) {
	rows, err := db.conn.Query(`
		SELECT id, timestamp, title, summary, tags, category_lv1, category_lv2, post_path
		FROM entries
		ORDER BY file
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: entries: %w", err)
	}
	defer rows.Close()

	out := []models.Meta{}
	for rows.Next() {
		var m models.Meta
		var tagsJSON string
		if err := rows.Scan(&m.ID, &m.Timestamp, &m.Title, &m.Summary, &tagsJSON, &m.CategoryLv1, &m.CategoryLv2, &m.PostPath); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tagsJSON), &m.Tags); err != nil || m.Tags == nil {
			m.Tags = []string{}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
