package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trustlens/trustlens/internal/domain/analysis"
)

// AnalysisRepository persists analysis records keyed by content
// fingerprint. The fingerprint is the primary key; the analysis document
// is stored as JSON. Raw content never reaches this table.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Get returns the record for a fingerprint, or analysis.ErrNotFound.
func (r *AnalysisRepository) Get(ctx context.Context, hash string) (*analysis.Record, error) {
	const q = `
SELECT hash, content_type, analysis_json, created_at
FROM content_analysis
WHERE hash=?;
`
	row := r.db.QueryRowContext(ctx, q, hash)

	var rec analysis.Record
	var doc string
	var created time.Time
	if err := row.Scan(&rec.Hash, &rec.Type, &doc, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, analysis.ErrNotFound
		}
		return nil, fmt.Errorf("mysql get: %w", err)
	}
	rec.Analysis = []byte(doc)
	rec.CreatedAt = created
	return &rec, nil
}

// Put upserts a record. Re-storing an existing fingerprint keeps the
// original created_at, so a duplicate write is a no-op in effect.
func (r *AnalysisRepository) Put(ctx context.Context, rec *analysis.Record) error {
	const q = `
INSERT INTO content_analysis
  (hash, content_type, analysis_json, created_at)
VALUES (?,?,?,?)
ON DUPLICATE KEY UPDATE
  content_type=VALUES(content_type), analysis_json=VALUES(analysis_json);
`
	doc := string(rec.Analysis)
	if strings.TrimSpace(doc) == "" {
		// analysis_json column requires valid JSON; use empty object
		doc = "{}"
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, q, rec.Hash, rec.Type, doc, createdAt); err != nil {
		return fmt.Errorf("mysql put: %w", err)
	}
	return nil
}
