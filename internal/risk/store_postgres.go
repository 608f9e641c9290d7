package risk

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the assessment audit trail in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the audit-trail table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS risk_assessments (
			id          UUID PRIMARY KEY,
			user_id     TEXT NOT NULL,
			wallet_hash TEXT NOT NULL DEFAULT '',
			score       INT NOT NULL,
			category    TEXT NOT NULL,
			synthetic   BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS risk_assessments_user_idx ON risk_assessments (user_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("migrate risk assessments: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, record AssessmentRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO risk_assessments (id, user_id, wallet_hash, score, category, synthetic, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.UserID, record.WalletHash, record.Score,
		string(record.Category), record.Synthetic, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save risk assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]AssessmentRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, wallet_hash, score, category, synthetic, created_at
		FROM risk_assessments
		WHERE user_id = $1
		ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list risk assessments: %w", err)
	}
	defer rows.Close()

	var out []AssessmentRecord
	for rows.Next() {
		var r AssessmentRecord
		var category string
		if err := rows.Scan(&r.ID, &r.UserID, &r.WalletHash, &r.Score, &category, &r.Synthetic, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan risk assessment: %w", err)
		}
		r.Category = Category(category)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate risk assessments: %w", err)
	}
	return out, nil
}
