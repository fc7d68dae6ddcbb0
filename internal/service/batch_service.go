package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/upgraderly/redemption-code-service/internal/codec"
	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/pkg/database"
)

// BatchRepositoryInterface defines the interface for batch data access.
type BatchRepositoryInterface interface {
	InsertTx(ctx context.Context, tx database.TxQuerier, batch *model.Batch) error
	List(ctx context.Context, ownerID *uuid.UUID) ([]model.Batch, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Batch, error)
}

// BatchService issues batches of codes sharing expiry, quota and product
// metadata.
type BatchService struct {
	pool      TxBeginner
	batchRepo BatchRepositoryInterface
	codeRepo  CodeRepositoryInterface
}

// NewBatchService creates a BatchService with the given pool and repositories.
func NewBatchService(pool *pgxpool.Pool, batchRepo BatchRepositoryInterface, codeRepo CodeRepositoryInterface) *BatchService {
	return &BatchService{pool: pool, batchRepo: batchRepo, codeRepo: codeRepo}
}

// NewBatchServiceWithTxBeginner creates a BatchService with a custom
// TxBeginner. Primarily used for testing.
func NewBatchServiceWithTxBeginner(pool TxBeginner, batchRepo BatchRepositoryInterface, codeRepo CodeRepositoryInterface) *BatchService {
	return &BatchService{pool: pool, batchRepo: batchRepo, codeRepo: codeRepo}
}

// Generate creates the batch row and exactly req.Count codes in a single
// transaction. Either the whole batch persists or none of it does; a
// collision or write failure on any code rolls everything back.
func (s *BatchService) Generate(ctx context.Context, req *model.BatchIssueRequest) (*model.Batch, []string, error) {
	if req == nil {
		return nil, nil, ErrInvalidRequest
	}
	product := model.ProductType(req.ProductType)
	tier := model.RewardTier(req.RewardTier)
	if err := checkTierRules(product, tier); err != nil {
		return nil, nil, err
	}
	if req.Count < 1 || req.Count > 100 {
		return nil, nil, fmt.Errorf("%w: count must be between 1 and 100", ErrInvalidRequest)
	}
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: invalid owner id", ErrInvalidRequest)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	batch := &model.Batch{
		ID:          uuid.New(),
		Name:        req.BatchName,
		ProductType: product,
		RewardTier:  tier,
		CodesCount:  req.Count,
		OwnerID:     ownerID,
	}
	if err := s.batchRepo.InsertTx(ctx, tx, batch); err != nil {
		return nil, nil, fmt.Errorf("insert batch: %w", err)
	}

	codes := make([]string, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		frag1, err := codec.RandomFragment()
		if err != nil {
			return nil, nil, fmt.Errorf("random fragment: %w", err)
		}
		frag2, err := codec.RandomFragment()
		if err != nil {
			return nil, nil, fmt.Errorf("random fragment: %w", err)
		}
		raw, err := codec.Encode(codec.Fields{
			ExpiryMonth: req.ExpiryMonth,
			ExpiryYear:  req.ExpiryYear,
			MaxUses:     req.MaxUses,
			Fragment1:   frag1,
			Fragment2:   frag2,
			ProductType: product,
			RewardTier:  tier,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
		}

		code := &model.Code{
			ID:              uuid.New(),
			RawString:       raw,
			ProductType:     product,
			RewardTier:      tier,
			ExpiryMonth:     req.ExpiryMonth,
			ExpiryYear:      req.ExpiryYear,
			MaxUses:         req.MaxUses,
			IsActive:        true,
			SecretFragment1: frag1,
			SecretFragment2: frag2,
			BatchID:         &batch.ID,
			OwnerID:         &ownerID,
		}
		if err := s.codeRepo.InsertTx(ctx, tx, code); err != nil {
			return nil, nil, fmt.Errorf("insert batch code %d: %w", i, err)
		}
		codes = append(codes, raw)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit batch: %w", err)
	}

	log.Info().
		Str("batch_id", batch.ID.String()).
		Str("batch_name", batch.Name).
		Str("product_type", string(product)).
		Int("count", req.Count).
		Msg("batch issued")

	return batch, codes, nil
}

// List returns batches, optionally filtered to one owner.
func (s *BatchService) List(ctx context.Context, ownerID *uuid.UUID) ([]model.Batch, error) {
	return s.batchRepo.List(ctx, ownerID)
}

// Codes returns the codes of one batch, or ErrBatchNotFound.
func (s *BatchService) Codes(ctx context.Context, batchID uuid.UUID) ([]model.Code, error) {
	if _, err := s.batchRepo.Get(ctx, batchID); err != nil {
		return nil, err
	}
	return s.codeRepo.ListByBatch(ctx, batchID)
}
