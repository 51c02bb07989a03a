package vector

import (
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lioncity/rentqa/internal/models"
)

// The sidecar is a SQLite file mapping vector ordinal to chunk content and
// metadata. It is written whole on every save and read whole on load; the
// serving path never touches it. The meta table carries the generation stamp
// the vector artifact from the same save also carries.

func writeSidecar(path string, generation uint64, chunks []models.DocumentChunk) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("open sidecar: %w", err)
	}
	defer db.Close()

	schema := `
	CREATE TABLE chunks (
		ordinal INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		title TEXT,
		url TEXT,
		category TEXT,
		content TEXT NOT NULL
	);
	CREATE TABLE meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create sidecar schema: %w", err)
	}
	if _, err := db.Exec(`INSERT INTO meta (key, value) VALUES ('generation', ?)`,
		strconv.FormatUint(generation, 10)); err != nil {
		return fmt.Errorf("write sidecar generation: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin sidecar tx: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO chunks (ordinal, id, title, url, category, content) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare sidecar insert: %w", err)
	}
	defer stmt.Close()
	for ord, chunk := range chunks {
		if _, err := stmt.Exec(ord, chunk.ID, chunk.Title, chunk.URL, chunk.Category, chunk.Content); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert chunk %d: %w", ord, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sidecar: %w", err)
	}
	return nil
}

func readSidecar(path string) (uint64, []models.DocumentChunk, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return 0, nil, fmt.Errorf("open sidecar: %w", err)
	}
	defer db.Close()

	var genText string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'generation'`).Scan(&genText); err != nil {
		return 0, nil, fmt.Errorf("read sidecar generation: %w", err)
	}
	generation, err := strconv.ParseUint(genText, 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("parse sidecar generation: %w", err)
	}

	rows, err := db.Query(`SELECT id, title, url, category, content FROM chunks ORDER BY ordinal`)
	if err != nil {
		return 0, nil, fmt.Errorf("query sidecar: %w", err)
	}
	defer rows.Close()

	var chunks []models.DocumentChunk
	for rows.Next() {
		var c models.DocumentChunk
		if err := rows.Scan(&c.ID, &c.Title, &c.URL, &c.Category, &c.Content); err != nil {
			return 0, nil, fmt.Errorf("scan sidecar row: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("read sidecar rows: %w", err)
	}
	return generation, chunks, nil
}
