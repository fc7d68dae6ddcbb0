package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/upgraderly/redemption-code-service/internal/model"
)

// ErrNoLink is returned when no fulfillment link is configured for a
// product. Callers treat it as a fulfillment gap, not a redemption failure.
var ErrNoLink = errors.New("no fulfillment link configured")

// LinkRepository resolves download URLs per product type.
type LinkRepository struct {
	pool PoolInterface
}

// NewLinkRepository creates a new LinkRepository with the given pool.
func NewLinkRepository(pool *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{pool: pool}
}

// NewLinkRepositoryWithPool creates a LinkRepository with a custom pool
// interface. This is primarily used for testing.
func NewLinkRepositoryWithPool(pool PoolInterface) *LinkRepository {
	return &LinkRepository{pool: pool}
}

// GetURLByProduct returns the configured download URL for the product.
func (r *LinkRepository) GetURLByProduct(ctx context.Context, product model.ProductType) (string, error) {
	var url string
	err := r.pool.QueryRow(ctx,
		`SELECT url FROM download_links WHERE product_type = $1 LIMIT 1`,
		string(product)).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoLink
		}
		return "", fmt.Errorf("get link for %s: %w", product, err)
	}
	return url, nil
}
