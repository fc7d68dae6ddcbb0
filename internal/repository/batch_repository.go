package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/internal/service"
	"github.com/upgraderly/redemption-code-service/pkg/database"
)

// BatchRepository provides data access for code batches using pgx.
type BatchRepository struct {
	pool PoolInterface
}

// NewBatchRepository creates a new BatchRepository with the given pool.
func NewBatchRepository(pool *pgxpool.Pool) *BatchRepository {
	return &BatchRepository{pool: pool}
}

// NewBatchRepositoryWithPool creates a BatchRepository with a custom pool
// interface. This is primarily used for testing.
func NewBatchRepositoryWithPool(pool PoolInterface) *BatchRepository {
	return &BatchRepository{pool: pool}
}

// InsertTx writes the batch row inside the caller's transaction, so the
// batch and its codes commit or roll back together.
func (r *BatchRepository) InsertTx(ctx context.Context, tx database.TxQuerier, batch *model.Batch) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO code_batches (id, batch_name, product_type, reward_tier, codes_count, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		batch.ID, batch.Name, batch.ProductType, nullableTier(batch.RewardTier),
		batch.CodesCount, batch.OwnerID)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// Get retrieves one batch by id. Returns service.ErrBatchNotFound when the
// id matches nothing.
func (r *BatchRepository) Get(ctx context.Context, id uuid.UUID) (*model.Batch, error) {
	var batch model.Batch
	var tier *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, batch_name, product_type, reward_tier, codes_count, owner_id, created_at
		 FROM code_batches WHERE id = $1`, id).Scan(
		&batch.ID, &batch.Name, &batch.ProductType, &tier,
		&batch.CodesCount, &batch.OwnerID, &batch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrBatchNotFound
		}
		return nil, fmt.Errorf("get batch %s: %w", id, err)
	}
	if tier != nil {
		batch.RewardTier = model.RewardTier(*tier)
	}
	return &batch, nil
}

// List returns batches newest first, optionally filtered to one owner.
func (r *BatchRepository) List(ctx context.Context, ownerID *uuid.UUID) ([]model.Batch, error) {
	query := `SELECT id, batch_name, product_type, reward_tier, codes_count, owner_id, created_at
		 FROM code_batches`
	args := []any{}
	if ownerID != nil {
		query += ` WHERE owner_id = $1`
		args = append(args, *ownerID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	batches := []model.Batch{}
	for rows.Next() {
		var batch model.Batch
		var tier *string
		if err := rows.Scan(
			&batch.ID, &batch.Name, &batch.ProductType, &tier,
			&batch.CodesCount, &batch.OwnerID, &batch.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan batch row: %w", err)
		}
		if tier != nil {
			batch.RewardTier = model.RewardTier(*tier)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch rows: %w", err)
	}
	return batches, nil
}
