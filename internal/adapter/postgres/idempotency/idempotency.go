package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portidempotency "github.com/alanyang/project-chat/internal/port/idempotency"
)

var _ portidempotency.Store = (*Repository)(nil)

// Repository keeps replayable chat responses in processed_operations.
// Keys are expected to be namespaced by the caller (user + client key).
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Check(ctx context.Context, key string) ([]byte, bool, error) {
	var result []byte
	err := r.pool.QueryRow(ctx,
		`SELECT result FROM processed_operations
		 WHERE idempotency_key = $1 AND result IS NOT NULL`, key,
	).Scan(&result)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("check idempotency key: %w", err)
	}
	return result, true, nil
}

// Reserve inserts a pending row with a NULL result. Only one caller wins the
// insert; everyone else sees the existing row.
func (r *Repository) Reserve(ctx context.Context, key string, userID uuid.UUID, opType string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO processed_operations (idempotency_key, user_id, operation_type)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (idempotency_key) DO NOTHING`,
		key, userID, opType,
	)
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Store fills a pending reservation or inserts a fresh row. A completed
// result is never overwritten.
func (r *Repository) Store(ctx context.Context, key string, userID uuid.UUID, opType string, result []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO processed_operations (idempotency_key, user_id, operation_type, result)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (idempotency_key) DO UPDATE SET result = EXCLUDED.result
		 WHERE processed_operations.result IS NULL`,
		key, userID, opType, result,
	)
	if err != nil {
		return fmt.Errorf("store idempotency key: %w", err)
	}
	return nil
}

// Release deletes a reservation that has no result.
func (r *Repository) Release(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM processed_operations WHERE idempotency_key = $1 AND result IS NULL`, key)
	if err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// Purge deletes records created before cutoff and returns how many went.
func (r *Repository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM processed_operations WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
