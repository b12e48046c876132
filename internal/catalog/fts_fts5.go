//go:build sqlite_fts5

package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/shiori/internal/models"
)

// The trigram tokenizer handles Japanese text, which has no word separators.
func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS entries_fts USING fts5(
			file UNINDEXED,
			id UNINDEXED,
			title,
			summary,
			tags,
			tokenize = 'trigram'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, file string, m models.Meta) error {
	if err := ftsDelete(tx, file); err != nil {
		return err
	}
	_, err := tx.Exec(`INSERT INTO entries_fts (file, id, title, summary, tags) VALUES (?, ?, ?, ?, ?)`,
		file, m.ID, m.Title, m.Summary, strings.Join(m.Tags, " "))
	if err != nil {
		return fmt.Errorf("catalog: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, file string) error {
	if _, err := tx.Exec(`DELETE FROM entries_fts WHERE file = ?`, file); err != nil {
		return fmt.Errorf("catalog: delete fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 phrase search and returns hits with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	phrase := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
	rows, err := db.conn.Query(`
		SELECT id,
		       title,
		       snippet(entries_fts, 3, '<b>', '</b>', '...', 32)
		FROM entries_fts
		WHERE entries_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, phrase, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
