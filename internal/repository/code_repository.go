package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/internal/service"
	"github.com/upgraderly/redemption-code-service/pkg/database"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const codeColumns = `id, code, product_type, reward_tier, expiry_month, expiry_year,
	max_uses, current_uses, is_active, secret_key1, secret_key2,
	batch_id, owner_id, is_sold, sold_price, created_at`

// CodeRepository provides data access for redemption codes using pgx.
type CodeRepository struct {
	pool PoolInterface
}

// NewCodeRepository creates a new CodeRepository with the given pool.
func NewCodeRepository(pool *pgxpool.Pool) *CodeRepository {
	return &CodeRepository{pool: pool}
}

// NewCodeRepositoryWithPool creates a CodeRepository with a custom pool
// interface. This is primarily used for testing.
func NewCodeRepositoryWithPool(pool PoolInterface) *CodeRepository {
	return &CodeRepository{pool: pool}
}

// Insert writes a new code outside any caller transaction.
// Returns service.ErrCodeExists if the code string already exists.
func (r *CodeRepository) Insert(ctx context.Context, code *model.Code) error {
	return insertCode(ctx, r.pool, code)
}

// InsertTx writes a new code inside the caller's transaction.
// Returns service.ErrCodeExists if the code string already exists.
func (r *CodeRepository) InsertTx(ctx context.Context, tx database.TxQuerier, code *model.Code) error {
	return insertCode(ctx, tx, code)
}

func insertCode(ctx context.Context, q database.TxQuerier, code *model.Code) error {
	_, err := q.Exec(ctx,
		`INSERT INTO redemption_codes
			(id, code, product_type, reward_tier, expiry_month, expiry_year,
			 max_uses, current_uses, is_active, secret_key1, secret_key2,
			 batch_id, owner_id, is_sold, sold_price)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9, $10, $11, $12, $13, $14)`,
		code.ID, code.RawString, code.ProductType, nullableTier(code.RewardTier),
		code.ExpiryMonth, code.ExpiryYear, code.MaxUses, code.IsActive,
		code.SecretFragment1, code.SecretFragment2,
		code.BatchID, code.OwnerID, code.IsSold, code.SoldPrice)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return service.ErrCodeExists
		}
		return fmt.Errorf("insert code: %w", err)
	}
	return nil
}

// GetByRawString retrieves a code by its full string.
// Returns service.ErrCodeNotFound when nothing matches.
func (r *CodeRepository) GetByRawString(ctx context.Context, raw string) (*model.Code, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+codeColumns+` FROM redemption_codes WHERE code = $1`, raw)
	return scanCode(row, raw)
}

// GetForUpdate retrieves a code by string with a row lock (SELECT FOR
// UPDATE). The lock holds until the transaction completes, serializing
// concurrent redemptions of the same code.
func (r *CodeRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, raw string) (*model.Code, error) {
	row := tx.QueryRow(ctx,
		`SELECT `+codeColumns+` FROM redemption_codes WHERE code = $1 FOR UPDATE`, raw)
	return scanCode(row, raw)
}

func scanCode(row pgx.Row, raw string) (*model.Code, error) {
	var code model.Code
	var tier *string
	err := row.Scan(
		&code.ID, &code.RawString, &code.ProductType, &tier,
		&code.ExpiryMonth, &code.ExpiryYear, &code.MaxUses, &code.CurrentUses,
		&code.IsActive, &code.SecretFragment1, &code.SecretFragment2,
		&code.BatchID, &code.OwnerID, &code.IsSold, &code.SoldPrice, &code.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCodeNotFound
		}
		return nil, fmt.Errorf("get code %s: %w", raw, err)
	}
	if tier != nil {
		code.RewardTier = model.RewardTier(*tier)
	}
	return &code, nil
}

// IncrementUses bumps current_uses by 1. Must run inside the transaction
// that locked the row; the guard clause keeps the counter within max_uses
// even if a caller skips the lock.
func (r *CodeRepository) IncrementUses(ctx context.Context, tx database.TxQuerier, id uuid.UUID) error {
	tag, err := tx.Exec(ctx,
		`UPDATE redemption_codes
		 SET current_uses = current_uses + 1
		 WHERE id = $1 AND current_uses < max_uses`, id)
	if err != nil {
		return fmt.Errorf("increment uses for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCodeExhausted
	}
	return nil
}

// InsertRedemption writes the audit row for a successful redemption, in the
// same transaction as the counter increment.
func (r *CodeRepository) InsertRedemption(ctx context.Context, tx database.TxQuerier, rec *model.RedemptionRecord) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO code_redemptions (id, code_id, requester_identity) VALUES ($1, $2, $3)`,
		rec.ID, rec.CodeID, rec.RequesterIdentity)
	if err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

// MarkSold flags a code as sold. Returns service.ErrCodeNotFound when the
// id matches nothing.
func (r *CodeRepository) MarkSold(ctx context.Context, id uuid.UUID, price *float64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE redemption_codes SET is_sold = TRUE, sold_price = $2 WHERE id = $1`,
		id, price)
	if err != nil {
		return fmt.Errorf("mark code %s sold: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCodeNotFound
	}
	return nil
}

// SetActive flips the kill-switch on a code. Returns
// service.ErrCodeNotFound when the id matches nothing.
func (r *CodeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE redemption_codes SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set code %s active=%t: %w", id, active, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCodeNotFound
	}
	return nil
}

// ListByBatch returns the codes of one batch.
func (r *CodeRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]model.Code, error) {
	return r.listCodes(ctx,
		`SELECT `+codeColumns+` FROM redemption_codes WHERE batch_id = $1 ORDER BY created_at`, batchID)
}

// ListByOwner returns the codes issued to one helper.
func (r *CodeRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Code, error) {
	return r.listCodes(ctx,
		`SELECT `+codeColumns+` FROM redemption_codes WHERE owner_id = $1 ORDER BY created_at`, ownerID)
}

func (r *CodeRepository) listCodes(ctx context.Context, query string, arg any) ([]model.Code, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()

	codes := []model.Code{}
	for rows.Next() {
		var code model.Code
		var tier *string
		if err := rows.Scan(
			&code.ID, &code.RawString, &code.ProductType, &tier,
			&code.ExpiryMonth, &code.ExpiryYear, &code.MaxUses, &code.CurrentUses,
			&code.IsActive, &code.SecretFragment1, &code.SecretFragment2,
			&code.BatchID, &code.OwnerID, &code.IsSold, &code.SoldPrice, &code.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan code row: %w", err)
		}
		if tier != nil {
			code.RewardTier = model.RewardTier(*tier)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate code rows: %w", err)
	}
	return codes, nil
}

// nullableTier maps the empty tier to NULL so non-Roblox codes store no tier.
func nullableTier(t model.RewardTier) *string {
	if t == "" {
		return nil
	}
	s := string(t)
	return &s
}
