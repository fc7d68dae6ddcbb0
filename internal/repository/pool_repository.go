package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/internal/service"
	"github.com/upgraderly/redemption-code-service/pkg/database"
)

// PoolRepository provides data access for the Roblox gift-code pool.
type PoolRepository struct {
	pool PoolInterface
}

// NewPoolRepository creates a new PoolRepository with the given pool.
func NewPoolRepository(pool *pgxpool.Pool) *PoolRepository {
	return &PoolRepository{pool: pool}
}

// NewPoolRepositoryWithPool creates a PoolRepository with a custom pool
// interface. This is primarily used for testing.
func NewPoolRepositoryWithPool(pool PoolInterface) *PoolRepository {
	return &PoolRepository{pool: pool}
}

// Claim marks one arbitrary unused entry of the tier as used and returns
// it, in a single conditional UPDATE. FOR UPDATE SKIP LOCKED makes
// concurrent claimants pick distinct rows instead of queueing on or
// double-claiming the same one.
// Returns service.ErrNoInventory when no unused entry exists.
func (r *PoolRepository) Claim(ctx context.Context, tier model.RewardTier, requesterIdentity string) (*model.PoolEntry, error) {
	var entry model.PoolEntry
	err := r.pool.QueryRow(ctx,
		`UPDATE roblox_codes
		 SET is_used = TRUE, redeemed_by = $2, redeemed_at = now()
		 WHERE id = (
			SELECT id FROM roblox_codes
			WHERE robux_type = $1 AND is_used = FALSE
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, code, robux_type, robux_amount, is_used, redeemed_by, redeemed_at`,
		string(tier), requesterIdentity).Scan(
		&entry.ID, &entry.RawCode, &entry.Tier, &entry.RewardAmount,
		&entry.IsUsed, &entry.RedeemedBy, &entry.RedeemedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNoInventory
		}
		return nil, fmt.Errorf("claim pool entry: %w", err)
	}
	return &entry, nil
}

// InsertTx writes one unused pool row inside the caller's transaction.
// Duplicates against existing rows are not checked; restocking is an
// administrative responsibility.
func (r *PoolRepository) InsertTx(ctx context.Context, tx database.TxQuerier, raw string, tier model.RewardTier) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO roblox_codes (code, robux_type, robux_amount) VALUES ($1, $2, $3)`,
		raw, string(tier), tier.RewardAmount())
	if err != nil {
		return fmt.Errorf("insert pool code: %w", err)
	}
	return nil
}

// Stats counts available and used entries per tier in one grouped query.
func (r *PoolRepository) Stats(ctx context.Context) (*model.PoolStatsResponse, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT robux_type, is_used, COUNT(*) FROM roblox_codes GROUP BY robux_type, is_used`)
	if err != nil {
		return nil, fmt.Errorf("pool stats: %w", err)
	}
	defer rows.Close()

	var stats model.PoolStatsResponse
	for rows.Next() {
		var tier string
		var used bool
		var count int
		if err := rows.Scan(&tier, &used, &count); err != nil {
			return nil, fmt.Errorf("scan pool stats row: %w", err)
		}
		switch model.RewardTier(tier) {
		case model.TierA:
			if used {
				stats.TierA.Used = count
			} else {
				stats.TierA.Available = count
			}
		case model.TierB:
			if used {
				stats.TierB.Used = count
			} else {
				stats.TierB.Available = count
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool stats rows: %w", err)
	}
	return &stats, nil
}
