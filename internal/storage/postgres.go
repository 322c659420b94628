package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/fiscalxml/processor/internal/model"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id               UUID PRIMARY KEY,
	type             TEXT NOT NULL,
	number           TEXT,
	series           TEXT,
	access_key       TEXT NOT NULL DEFAULT '',
	issuer_tax_id    TEXT,
	issuer_name      TEXT,
	recipient_tax_id TEXT,
	recipient_name   TEXT,
	issued_at        TIMESTAMPTZ,
	total_value      NUMERIC(15,2) NOT NULL DEFAULT 0,
	tax_total        NUMERIC(15,2) NOT NULL DEFAULT 0,
	file_name        TEXT,
	file_path        TEXT,
	file_size        BIGINT NOT NULL DEFAULT 0,
	content_hash     TEXT NOT NULL UNIQUE,
	payload          JSONB NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_documents_access_key
	ON documents (access_key) WHERE access_key <> '';

CREATE TABLE IF NOT EXISTS items (
	document_id UUID NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
	number      INT NOT NULL,
	code        TEXT,
	ean         TEXT,
	description TEXT,
	ncm         TEXT,
	cfop        TEXT,
	unit        TEXT,
	quantity    NUMERIC(15,4) NOT NULL DEFAULT 0,
	unit_value  NUMERIC(15,4) NOT NULL DEFAULT 0,
	total_value NUMERIC(15,2) NOT NULL DEFAULT 0,
	tax_total   NUMERIC(15,2) NOT NULL DEFAULT 0,
	tax_rate    NUMERIC(8,4) NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_items_document ON items (document_id);
`

// uniqueViolation is the PostgreSQL error code for unique constraint hits.
const uniqueViolation = "23505"

// Postgres stores documents in a shared PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// OpenPostgres connects a pool to dsn and ensures the schema. Decimal
// values map to NUMERIC through the shopspring integration registered on
// every connection.
func OpenPostgres(ctx context.Context, dsn string, log zerolog.Logger) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	log.Debug().Msg("postgres store ready")
	return &Postgres{pool: pool, log: log}, nil
}

func (p *Postgres) Insert(ctx context.Context, doc *model.Document) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	id := uuid.NewString()
	cmd, err := tx.Exec(ctx, `
		INSERT INTO documents (
			id, type, number, series, access_key,
			issuer_tax_id, issuer_name, recipient_tax_id, recipient_name,
			issued_at, total_value, tax_total,
			file_name, file_path, file_size, content_hash, payload
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (content_hash) DO NOTHING`,
		id, doc.Type.String(), doc.Number, doc.Series, doc.AccessKey,
		doc.Issuer.TaxID, doc.Issuer.Name, doc.Recipient.TaxID, doc.Recipient.Name,
		doc.IssuedAt, doc.Totals.Grand, doc.TaxTotal,
		doc.FileName, doc.FilePath, doc.FileSize, doc.ContentHash, payload,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", model.ErrDuplicate
		}
		return "", fmt.Errorf("insert document: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return "", model.ErrDuplicate
	}

	for _, item := range doc.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO items (
				document_id, number, code, ean, description, ncm, cfop, unit,
				quantity, unit_value, total_value, tax_total, tax_rate
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			id, item.Number, item.Code, item.EAN, item.Description, item.NCM,
			item.CFOP, item.Unit,
			item.Quantity, item.UnitValue, item.TotalValue, item.TaxTotal, item.TaxRate,
		)
		if err != nil {
			return "", fmt.Errorf("insert item %d: %w", item.Number, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (p *Postgres) ExistsHash(ctx context.Context, hash string) (bool, error) {
	return p.exists(ctx, "SELECT EXISTS (SELECT 1 FROM documents WHERE content_hash = $1)", hash)
}

func (p *Postgres) ExistsAccessKey(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	return p.exists(ctx, "SELECT EXISTS (SELECT 1 FROM documents WHERE access_key = $1)", key)
}

func (p *Postgres) exists(ctx context.Context, query, arg string) (bool, error) {
	var ok bool
	if err := p.pool.QueryRow(ctx, query, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists query: %w", err)
	}
	return ok, nil
}

func (p *Postgres) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByType: make(map[model.DocumentType]int64)}

	err := p.pool.QueryRow(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total_value), 0) FROM documents").
		Scan(&stats.Documents, &stats.TotalValue)
	if err != nil {
		return nil, fmt.Errorf("document stats: %w", err)
	}

	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM items").Scan(&stats.Items); err != nil {
		return nil, fmt.Errorf("item stats: %w", err)
	}

	rows, err := p.pool.Query(ctx, "SELECT type, COUNT(*) FROM documents GROUP BY type")
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

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
