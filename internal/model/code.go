package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductType identifies which product a redemption code unlocks.
// The value doubles as the tag suffix embedded in the code string.
type ProductType string

const (
	ProductMinecraft    ProductType = "MCD"
	ProductGeometryDash ProductType = "GD"
	ProductRoblox       ProductType = "RB"
)

// Valid reports whether the product type is one of the known tags.
func (p ProductType) Valid() bool {
	switch p {
	case ProductMinecraft, ProductGeometryDash, ProductRoblox:
		return true
	}
	return false
}

// RewardTier is the Roblox reward size. Only meaningful when ProductType
// is ProductRoblox; empty otherwise.
type RewardTier string

const (
	TierA RewardTier = "A"
	TierB RewardTier = "B"
)

// Valid reports whether the tier is one of the known tiers.
func (t RewardTier) Valid() bool {
	return t == TierA || t == TierB
}

// RewardAmount returns the Robux amount granted by the tier.
func (t RewardTier) RewardAmount() int {
	if t == TierB {
		return 500
	}
	return 100
}

// Code is a single issued redemption code. RawString is unique and is the
// lookup key used by redemption; the decoded fields are stored alongside it
// so administrative views never need to re-parse the string.
type Code struct {
	ID              uuid.UUID   `json:"id"`
	RawString       string      `json:"code"`
	ProductType     ProductType `json:"product_type"`
	RewardTier      RewardTier  `json:"reward_tier,omitempty"`
	ExpiryMonth     int         `json:"expiry_month"`
	ExpiryYear      int         `json:"expiry_year"`
	MaxUses         int         `json:"max_uses"`
	CurrentUses     int         `json:"current_uses"`
	IsActive        bool        `json:"is_active"`
	SecretFragment1 string      `json:"-"`
	SecretFragment2 string      `json:"-"`
	BatchID         *uuid.UUID  `json:"batch_id,omitempty"`
	OwnerID         *uuid.UUID  `json:"owner_id,omitempty"`
	IsSold          bool        `json:"is_sold"`
	SoldPrice       *float64    `json:"sold_price,omitempty"`
	CreatedAt       time.Time   `json:"-"`
}

// RedemptionRecord is the audit row written once per successful redemption.
// Immutable after creation.
type RedemptionRecord struct {
	ID                uuid.UUID `json:"id"`
	CodeID            uuid.UUID `json:"code_id"`
	RequesterIdentity string    `json:"requester_identity"`
	CreatedAt         time.Time `json:"created_at"`
}

// Batch groups codes issued in one administrative operation. Deleting a
// batch never cascades to its codes; the reference is informational.
type Batch struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	ProductType ProductType `json:"product_type"`
	RewardTier  RewardTier  `json:"reward_tier,omitempty"`
	CodesCount  int         `json:"codes_count"`
	OwnerID     uuid.UUID   `json:"owner_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// PoolEntry is one pre-loaded third-party Roblox gift code. Claiming marks
// an arbitrary unused row as used; the transition never reverses.
type PoolEntry struct {
	ID           uuid.UUID  `json:"id"`
	RawCode      string     `json:"code"`
	Tier         RewardTier `json:"reward_tier"`
	RewardAmount int        `json:"reward_amount"`
	IsUsed       bool       `json:"is_used"`
	RedeemedBy   *string    `json:"redeemed_by,omitempty"`
	RedeemedAt   *time.Time `json:"redeemed_at,omitempty"`
	CreatedAt    time.Time  `json:"-"`
}

// Helper is a reseller identity that owns batches of codes.
type Helper struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Code         string     `json:"code"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}
