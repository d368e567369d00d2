package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/trustlens/trustlens/internal/domain/analysis"
)

// AnalysisRepository is the Postgres variant of the fingerprint-keyed
// record store.
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
WHERE hash=$1;
`
	row := r.db.QueryRowContext(ctx, q, hash)

	var rec analysis.Record
	var doc string
	var created time.Time
	if err := row.Scan(&rec.Hash, &rec.Type, &doc, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, analysis.ErrNotFound
		}
		return nil, fmt.Errorf("postgres get: %w", err)
	}
	rec.Analysis = []byte(doc)
	rec.CreatedAt = created
	return &rec, nil
}

// Put upserts a record; created_at is preserved on conflict.
func (r *AnalysisRepository) Put(ctx context.Context, rec *analysis.Record) error {
	const q = `
INSERT INTO content_analysis
  (hash, content_type, analysis_json, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (hash) DO UPDATE SET
  content_type=EXCLUDED.content_type,
  analysis_json=EXCLUDED.analysis_json;
`
	doc := string(rec.Analysis)
	if strings.TrimSpace(doc) == "" {
		doc = "{}"
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, q, rec.Hash, rec.Type, doc, createdAt); err != nil {
		return fmt.Errorf("postgres put: %w", err)
	}
	return nil
}
