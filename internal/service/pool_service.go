package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/pkg/database"
)

// PoolRepositoryInterface defines the interface for Roblox pool data access.
type PoolRepositoryInterface interface {
	Claim(ctx context.Context, tier model.RewardTier, requesterIdentity string) (*model.PoolEntry, error)
	InsertTx(ctx context.Context, tx database.TxQuerier, raw string, tier model.RewardTier) error
	Stats(ctx context.Context) (*model.PoolStatsResponse, error)
}

// PoolService allocates pre-loaded third-party gift codes. Unlike issued
// codes there is no counter; a claim consumes one arbitrary unused row.
type PoolService struct {
	pool     TxBeginner
	poolRepo PoolRepositoryInterface
}

// NewPoolService creates a PoolService with the given pool and repository.
func NewPoolService(pool *pgxpool.Pool, poolRepo PoolRepositoryInterface) *PoolService {
	return &PoolService{pool: pool, poolRepo: poolRepo}
}

// NewPoolServiceWithTxBeginner creates a PoolService with a custom
// TxBeginner. Primarily used for testing.
func NewPoolServiceWithTxBeginner(pool TxBeginner, poolRepo PoolRepositoryInterface) *PoolService {
	return &PoolService{pool: pool, poolRepo: poolRepo}
}

// Claim atomically marks one unused entry of the tier as used and returns
// it. Returns ErrNoInventory when the tier is depleted. Concurrent claims
// never receive the same entry; the repository's conditional update
// guarantees the unused-to-used transition happens exactly once per row.
func (s *PoolService) Claim(ctx context.Context, req *model.PoolClaimRequest) (*model.PoolEntry, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	tier := model.RewardTier(req.RewardTier)
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: unknown reward tier", ErrInvalidRequest)
	}

	entry, err := s.poolRepo.Claim(ctx, tier, req.RequesterIdentity)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("tier", string(tier)).
		Int("reward_amount", entry.RewardAmount).
		Msg("pool entry claimed")
	return entry, nil
}

// BulkAdd inserts new unused pool rows for the tier in one transaction, so
// a failed restock leaves nothing behind. Raw codes are trimmed; blank
// entries are rejected. Existing duplicates are not checked, matching the
// administrative contract of the pool.
func (s *PoolService) BulkAdd(ctx context.Context, req *model.PoolAddRequest) (int, error) {
	if req == nil {
		return 0, ErrInvalidRequest
	}
	tier := model.RewardTier(req.RewardTier)
	if !tier.Valid() {
		return 0, fmt.Errorf("%w: unknown reward tier", ErrInvalidRequest)
	}

	cleaned := make([]string, 0, len(req.RawCodes))
	for _, raw := range req.RawCodes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			return 0, fmt.Errorf("%w: blank pool code", ErrInvalidRequest)
		}
		cleaned = append(cleaned, trimmed)
	}
	if len(cleaned) == 0 {
		return 0, fmt.Errorf("%w: no codes provided", ErrInvalidRequest)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	for _, raw := range cleaned {
		if err := s.poolRepo.InsertTx(ctx, tx, raw, tier); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit pool restock: %w", err)
	}

	log.Info().
		Str("tier", string(tier)).
		Int("added", len(cleaned)).
		Msg("pool restocked")
	return len(cleaned), nil
}

// Stats returns the per-tier available/used snapshot.
func (s *PoolService) Stats(ctx context.Context) (*model.PoolStatsResponse, error) {
	return s.poolRepo.Stats(ctx)
}
