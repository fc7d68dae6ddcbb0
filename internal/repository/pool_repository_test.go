package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upgraderly/redemption-code-service/internal/model"
	"github.com/upgraderly/redemption-code-service/internal/service"
)

func TestPoolRepository_Claim_SingleStatement(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			capturedArgs = args
			return &mockRow{scanFn: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}

	repo := NewPoolRepositoryWithPool(mock)

	_, _ = repo.Claim(context.Background(), model.TierA, "player-7")

	// Claim must be a single conditional UPDATE so concurrent claimants
	// cannot race between a read and a write.
	assert.Contains(t, capturedSQL, "UPDATE roblox_codes")
	assert.Contains(t, capturedSQL, "is_used = FALSE")
	assert.Contains(t, capturedSQL, "FOR UPDATE SKIP LOCKED")
	assert.Contains(t, capturedSQL, "RETURNING")
	assert.Equal(t, "A", capturedArgs[0])
	assert.Equal(t, "player-7", capturedArgs[1])
}

func TestPoolRepository_Claim_NoInventory(t *testing.T) {
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}

	repo := NewPoolRepositoryWithPool(mock)

	_, err := repo.Claim(context.Background(), model.TierB, "player-7")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrNoInventory)
}

func TestPoolRepository_Claim_DatabaseError(t *testing.T) {
	dbErr := errors.New("connection refused")
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error { return dbErr }}
		},
	}

	repo := NewPoolRepositoryWithPool(mock)

	_, err := repo.Claim(context.Background(), model.TierA, "player-7")

	require.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrNoInventory))
	assert.ErrorIs(t, err, dbErr)
}

func TestPoolRepository_InsertTx(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			capturedSQL = sql
			capturedArgs = arguments
			return pgconn.NewCommandTag("INSERT 0 1"), nil
		},
	}

	repo := NewPoolRepositoryWithPool(mock)

	err := repo.InsertTx(context.Background(), mock, "GIFT-1", model.TierB)

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "INSERT INTO roblox_codes")
	assert.Equal(t, "GIFT-1", capturedArgs[0])
	assert.Equal(t, "B", capturedArgs[1])
	assert.Equal(t, 500, capturedArgs[2])
}

func TestPoolRepository_InsertTx_Error(t *testing.T) {
	dbErr := errors.New("write failed")
	mock := &mockPool{
		execFn: func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, dbErr
		},
	}

	repo := NewPoolRepositoryWithPool(mock)

	err := repo.InsertTx(context.Background(), mock, "GIFT-1", model.TierA)

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
}
