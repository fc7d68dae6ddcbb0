package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/internal/service"
)

// HelperRepository provides data access for reseller identities using pgx.
type HelperRepository struct {
	pool PoolInterface
}

// NewHelperRepository creates a new HelperRepository with the given pool.
func NewHelperRepository(pool *pgxpool.Pool) *HelperRepository {
	return &HelperRepository{pool: pool}
}

// NewHelperRepositoryWithPool creates a HelperRepository with a custom pool
// interface. This is primarily used for testing.
func NewHelperRepositoryWithPool(pool PoolInterface) *HelperRepository {
	return &HelperRepository{pool: pool}
}

// Insert writes a new helper row.
func (r *HelperRepository) Insert(ctx context.Context, helper *model.Helper) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO helpers (id, name, code, password_hash, is_active, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		helper.ID, helper.Name, helper.Code, helper.PasswordHash,
		helper.IsActive, helper.Notes)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: helper code collision", service.ErrInvalidRequest)
		}
		return fmt.Errorf("insert helper: %w", err)
	}
	return nil
}

// List returns all helpers, newest first.
func (r *HelperRepository) List(ctx context.Context) ([]model.Helper, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, code, password_hash, is_active, notes, created_at, last_login_at
		 FROM helpers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list helpers: %w", err)
	}
	defer rows.Close()

	helpers := []model.Helper{}
	for rows.Next() {
		var helper model.Helper
		if err := rows.Scan(
			&helper.ID, &helper.Name, &helper.Code, &helper.PasswordHash,
			&helper.IsActive, &helper.Notes, &helper.CreatedAt, &helper.LastLoginAt,
		); err != nil {
			return nil, fmt.Errorf("scan helper row: %w", err)
		}
		helpers = append(helpers, helper)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate helper rows: %w", err)
	}
	return helpers, nil
}

// Update applies the non-nil fields via COALESCE so untouched columns keep
// their values. Returns service.ErrHelperNotFound when the id matches
// nothing.
func (r *HelperRepository) Update(ctx context.Context, id uuid.UUID, name, notes, passwordHash *string, isActive *bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE helpers SET
			name = COALESCE($2, name),
			notes = COALESCE($3, notes),
			password_hash = COALESCE($4, password_hash),
			is_active = COALESCE($5, is_active)
		 WHERE id = $1`,
		id, name, notes, passwordHash, isActive)
	if err != nil {
		return fmt.Errorf("update helper %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrHelperNotFound
	}
	return nil
}

// Delete removes the helper row. Codes referencing it keep their owner_id;
// the foreign key is ON DELETE SET NULL territory handled by the schema,
// never a cascade.
func (r *HelperRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM helpers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete helper %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrHelperNotFound
	}
	return nil
}
