package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/fiscalxml/processor/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id               TEXT PRIMARY KEY,
	type             TEXT NOT NULL,
	number           TEXT,
	series           TEXT,
	access_key       TEXT NOT NULL DEFAULT '',
	issuer_tax_id    TEXT,
	issuer_name      TEXT,
	recipient_tax_id TEXT,
	recipient_name   TEXT,
	issued_at        TEXT,
	total_value      REAL NOT NULL DEFAULT 0,
	tax_total        REAL NOT NULL DEFAULT 0,
	file_name        TEXT,
	file_path        TEXT,
	file_size        INTEGER NOT NULL DEFAULT 0,
	content_hash     TEXT NOT NULL UNIQUE,
	payload          TEXT NOT NULL,
	created_at       TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_access_key
	ON documents (access_key) WHERE access_key <> '';

CREATE TABLE IF NOT EXISTS items (
	document_id TEXT NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
	number      INTEGER NOT NULL,
	code        TEXT,
	ean         TEXT,
	description TEXT,
	ncm         TEXT,
	cfop        TEXT,
	unit        TEXT,
	quantity    REAL NOT NULL DEFAULT 0,
	unit_value  REAL NOT NULL DEFAULT 0,
	total_value REAL NOT NULL DEFAULT 0,
	tax_total   REAL NOT NULL DEFAULT 0,
	tax_rate    REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_items_document ON items (document_id);
`

// SQLite stores documents in a local database file. Canonical values are
// kept exact in the JSON payload; the flat columns exist for querying and
// carry float approximations.
type SQLite struct {
	db  *sql.DB
	log zerolog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and ensures
// the schema.
func OpenSQLite(ctx context.Context, path string, log zerolog.Logger) (*SQLite, error) {
	if path == "" {
		path = "fiscalxml.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// The driver is not safe for concurrent writers on one file.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("sqlite store ready")
	return &SQLite{db: db, log: log}, nil
}

func (s *SQLite) Insert(ctx context.Context, doc *model.Document) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (
			id, type, number, series, access_key,
			issuer_tax_id, issuer_name, recipient_tax_id, recipient_name,
			issued_at, total_value, tax_total,
			file_name, file_path, file_size, content_hash, payload, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, doc.Type.String(), doc.Number, doc.Series, doc.AccessKey,
		doc.Issuer.TaxID, doc.Issuer.Name, doc.Recipient.TaxID, doc.Recipient.Name,
		nullableTime(doc.IssuedAt), doc.Totals.Grand.InexactFloat64(), doc.TaxTotal.InexactFloat64(),
		doc.FileName, doc.FilePath, doc.FileSize, doc.ContentHash, string(payload),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return "", model.ErrDuplicate
		}
		return "", fmt.Errorf("insert document: %w", err)
	}

	for _, item := range doc.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO items (
				document_id, number, code, ean, description, ncm, cfop, unit,
				quantity, unit_value, total_value, tax_total, tax_rate
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, item.Number, item.Code, item.EAN, item.Description, item.NCM,
			item.CFOP, item.Unit,
			item.Quantity.InexactFloat64(), item.UnitValue.InexactFloat64(),
			item.TotalValue.InexactFloat64(), item.TaxTotal.InexactFloat64(),
			item.TaxRate.InexactFloat64(),
		)
		if err != nil {
			return "", fmt.Errorf("insert item %d: %w", item.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (s *SQLite) ExistsHash(ctx context.Context, hash string) (bool, error) {
	return s.exists(ctx, "SELECT 1 FROM documents WHERE content_hash = ?", hash)
}

func (s *SQLite) ExistsAccessKey(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	return s.exists(ctx, "SELECT 1 FROM documents WHERE access_key = ?", key)
}

func (s *SQLite) exists(ctx context.Context, query string, arg any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists query: %w", err)
	}
	return true, nil
}

func (s *SQLite) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByType: make(map[model.DocumentType]int64)}

	var total float64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total_value), 0) FROM documents").
		Scan(&stats.Documents, &total)
	if err != nil {
		return nil, fmt.Errorf("document stats: %w", err)
	}
	stats.TotalValue = decimal.NewFromFloat(total)

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&stats.Items); err != nil {
		return nil, fmt.Errorf("item stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT type, COUNT(*) FROM documents GROUP BY type")
	if err != nil {
		return nil, fmt.Errorf("type stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan type stats: %w", err)
		}
		stats.ByType[model.DocumentType(t)] = n
	}
	return stats, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
