package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/upgraderly/redemption-code-service/internal/codec"
	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/pkg/database"
)

// CodeRepositoryInterface defines the interface for code data access.
type CodeRepositoryInterface interface {
	Insert(ctx context.Context, code *model.Code) error
	InsertTx(ctx context.Context, tx database.TxQuerier, code *model.Code) error
	GetByRawString(ctx context.Context, raw string) (*model.Code, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, raw string) (*model.Code, error)
	IncrementUses(ctx context.Context, tx database.TxQuerier, id uuid.UUID) error
	InsertRedemption(ctx context.Context, tx database.TxQuerier, rec *model.RedemptionRecord) error
	MarkSold(ctx context.Context, id uuid.UUID, price *float64) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]model.Code, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Code, error)
}

// LinkRepositoryInterface resolves the fulfillment URL for a product.
type LinkRepositoryInterface interface {
	GetURLByProduct(ctx context.Context, product model.ProductType) (string, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CodeService provides business logic for issuing and redeeming codes.
type CodeService struct {
	pool     TxBeginner
	codeRepo CodeRepositoryInterface
	linkRepo LinkRepositoryInterface
	now      func() time.Time
}

// NewCodeService creates a CodeService backed by the given pool and repositories.
func NewCodeService(pool *pgxpool.Pool, codeRepo CodeRepositoryInterface, linkRepo LinkRepositoryInterface) *CodeService {
	return &CodeService{pool: pool, codeRepo: codeRepo, linkRepo: linkRepo, now: time.Now}
}

// NewCodeServiceWithDeps creates a CodeService with custom dependencies and
// clock. Primarily used for testing.
func NewCodeServiceWithDeps(pool TxBeginner, codeRepo CodeRepositoryInterface, linkRepo LinkRepositoryInterface, now func() time.Time) *CodeService {
	if now == nil {
		now = time.Now
	}
	return &CodeService{pool: pool, codeRepo: codeRepo, linkRepo: linkRepo, now: now}
}

// Generate issues a single code. Secret fragments come from the operator's
// custom material (obfuscated with their key) when provided, otherwise from
// crypto/rand.
// Returns ErrInvalidRequest for tier/product mismatches and ErrCodeExists
// on a rawString collision.
func (s *CodeService) Generate(ctx context.Context, req *model.GenerateCodeRequest) (*model.Code, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	product := model.ProductType(req.ProductType)
	tier := model.RewardTier(req.RewardTier)
	if err := checkTierRules(product, tier); err != nil {
		return nil, err
	}

	frag1, frag2, err := buildFragments(req.CustomSecrets)
	if err != nil {
		return nil, fmt.Errorf("build fragments: %w", err)
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
		return nil, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
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
	}
	if err := s.codeRepo.Insert(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

// RedemptionResult is what a successful redemption hands back to the caller.
type RedemptionResult struct {
	Record         *model.RedemptionRecord
	FulfillmentURL string
}

// Redeem validates and atomically consumes a code for the given requester.
//
// The raw string itself is the lookup key; decoding is only a structural
// gate so that garbage input fails fast as ErrMalformedCode instead of
// hitting the store. The eligibility checks and the counter increment run
// in one transaction with the code row locked, so two concurrent attempts
// on the last remaining use resolve to exactly one success.
func (s *CodeService) Redeem(ctx context.Context, rawCode, requesterIdentity string) (*RedemptionResult, error) {
	fields, err := codec.Decode(rawCode)
	if err != nil {
		return nil, ErrMalformedCode
	}
	// The canonical stored form is what Encode would have produced.
	canonical, err := codec.Encode(fields)
	if err != nil {
		return nil, ErrMalformedCode
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	code, err := s.codeRepo.GetForUpdate(ctx, tx, canonical)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("get code for update: %w", err)
	}

	outcome := Classify(code, s.now())
	if outcome != OutcomeEligible {
		log.Info().
			Str("code", code.RawString).
			Str("outcome", outcome.String()).
			Msg("redemption rejected")
		return nil, outcome.Err()
	}

	if err := s.codeRepo.IncrementUses(ctx, tx, code.ID); err != nil {
		return nil, fmt.Errorf("increment uses: %w", err)
	}
	rec := &model.RedemptionRecord{
		ID:                uuid.New(),
		CodeID:            code.ID,
		RequesterIdentity: requesterIdentity,
	}
	if err := s.codeRepo.InsertRedemption(ctx, tx, rec); err != nil {
		return nil, fmt.Errorf("insert redemption: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit redemption: %w", err)
	}

	url, err := s.linkRepo.GetURLByProduct(ctx, code.ProductType)
	if err != nil {
		// The redemption is already committed; a missing link is a
		// fulfillment gap, not a redemption failure.
		log.Warn().Err(err).
			Str("product_type", string(code.ProductType)).
			Msg("no fulfillment link for redeemed code")
		url = ""
	}

	return &RedemptionResult{Record: rec, FulfillmentURL: url}, nil
}

// MarkSold flags a code as sold with an optional price.
func (s *CodeService) MarkSold(ctx context.Context, codeID uuid.UUID, price *float64) error {
	return s.codeRepo.MarkSold(ctx, codeID, price)
}

// SetActive flips the kill-switch on a code. A deactivated code is
// rejected at redemption time regardless of its remaining uses; flipping
// it back restores eligibility.
func (s *CodeService) SetActive(ctx context.Context, codeID uuid.UUID, active bool) error {
	if err := s.codeRepo.SetActive(ctx, codeID, active); err != nil {
		return err
	}
	log.Info().
		Str("code_id", codeID.String()).
		Bool("active", active).
		Msg("code active flag changed")
	return nil
}

// ListByBatch returns every code issued in a batch.
func (s *CodeService) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]model.Code, error) {
	return s.codeRepo.ListByBatch(ctx, batchID)
}

// checkTierRules enforces that RB codes carry a tier and nothing else does.
func checkTierRules(product model.ProductType, tier model.RewardTier) error {
	if !product.Valid() {
		return fmt.Errorf("%w: unknown product type", ErrInvalidRequest)
	}
	if product == model.ProductRoblox {
		if !tier.Valid() {
			return fmt.Errorf("%w: reward tier required for RB codes", ErrInvalidRequest)
		}
		return nil
	}
	if tier != "" {
		return fmt.Errorf("%w: reward tier only valid for RB codes", ErrInvalidRequest)
	}
	return nil
}

// buildFragments derives the two secret fragments from custom material when
// present, otherwise generates them randomly.
func buildFragments(custom *model.CustomSecrets) (string, string, error) {
	if custom != nil {
		return codec.DeriveFragment(custom.Fragment1, custom.Key),
			codec.DeriveFragment(custom.Fragment2, custom.Key), nil
	}
	frag1, err := codec.RandomFragment()
	if err != nil {
		return "", "", err
	}
	frag2, err := codec.RandomFragment()
	if err != nil {
		return "", "", err
	}
	return frag1, frag2, nil
}
