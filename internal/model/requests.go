package model

import "github.com/google/uuid"

// CustomSecrets carries operator-supplied secret material for a generated
// code. The fragments are obfuscated with Key before being embedded.
type CustomSecrets struct {
	Fragment1 string `json:"fragment1" validate:"required,len=4"`
	Fragment2 string `json:"fragment2" validate:"required,len=4"`
	Key       string `json:"key" validate:"required,notblank"`
}

// GenerateCodeRequest is the DTO for creating a single code.
type GenerateCodeRequest struct {
	ProductType   string         `json:"product_type" validate:"required,oneof=MCD GD RB"`
	RewardTier    string         `json:"reward_tier" validate:"omitempty,oneof=A B"`
	ExpiryMonth   int            `json:"expiry_month" validate:"required,gte=1,lte=12"`
	ExpiryYear    int            `json:"expiry_year" validate:"required,gte=2025,lte=2099"`
	MaxUses       int            `json:"max_uses" validate:"required,gte=1,lte=999"`
	CustomSecrets *CustomSecrets `json:"custom_secrets,omitempty"`
}

// GenerateCodeResponse returns the freshly issued code string.
type GenerateCodeResponse struct {
	Code string `json:"code"`
}

// RedeemRequest is the DTO for redeeming a code.
type RedeemRequest struct {
	Code              string `json:"code" validate:"required,notblank,max=64"`
	RequesterIdentity string `json:"requester_identity" validate:"required,notblank,max=255"`
}

// RedeemResponse is returned on a successful redemption.
type RedeemResponse struct {
	Success        bool   `json:"success"`
	FulfillmentURL string `json:"fulfillment_url,omitempty"`
}

// BatchIssueRequest is the DTO for issuing a batch of codes.
type BatchIssueRequest struct {
	OwnerID     string `json:"owner_id" validate:"required,uuid4"`
	BatchName   string `json:"batch_name" validate:"required,notblank,max=255"`
	ProductType string `json:"product_type" validate:"required,oneof=MCD GD RB"`
	RewardTier  string `json:"reward_tier" validate:"omitempty,oneof=A B"`
	Count       int    `json:"count" validate:"required,gte=1,lte=100"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,gte=1,lte=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required,gte=2025,lte=2099"`
	MaxUses     int    `json:"max_uses" validate:"required,gte=1,lte=999"`
}

// BatchIssueResponse returns the batch id and every issued code string.
type BatchIssueResponse struct {
	BatchID uuid.UUID `json:"batch_id"`
	Codes   []string  `json:"codes"`
}

// PoolAddRequest is the DTO for bulk-loading pool rows.
type PoolAddRequest struct {
	RewardTier string   `json:"reward_tier" validate:"required,oneof=A B"`
	RawCodes   []string `json:"codes" validate:"required,min=1,max=1000,dive,required,notblank"`
}

// PoolAddResponse reports how many rows were inserted.
type PoolAddResponse struct {
	Added int `json:"added"`
}

// PoolClaimRequest is the DTO for claiming one pool row.
type PoolClaimRequest struct {
	RewardTier        string `json:"reward_tier" validate:"required,oneof=A B"`
	RequesterIdentity string `json:"requester_identity" validate:"required,notblank,max=255"`
}

// PoolClaimResponse hands back the claimed third-party code.
type PoolClaimResponse struct {
	RawCode      string `json:"code"`
	RewardAmount int    `json:"reward_amount"`
}

// TierStats counts available and consumed pool rows for one tier.
type TierStats struct {
	Available int `json:"available"`
	Used      int `json:"used"`
}

// PoolStatsResponse is the per-tier pool inventory snapshot.
type PoolStatsResponse struct {
	TierA TierStats `json:"tier_a"`
	TierB TierStats `json:"tier_b"`
}

// CreateHelperRequest is the DTO for registering a reseller.
type CreateHelperRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Notes    string `json:"notes" validate:"max=1000"`
}

// UpdateHelperRequest carries partial updates; nil fields are untouched.
type UpdateHelperRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,notblank,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
	IsActive *bool   `json:"is_active,omitempty"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// SetActiveRequest flips the kill-switch on a code. The pointer
// distinguishes an absent field from an explicit false.
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// MarkSoldRequest flags a code as sold with an optional price.
type MarkSoldRequest struct {
	SoldPrice *float64 `json:"sold_price,omitempty" validate:"omitempty,gte=0"`
}

// HelperStats aggregates code usage for one helper.
type HelperStats struct {
	Helper       Helper                      `json:"helper"`
	TotalCodes   int                         `json:"total_codes"`
	UsedCodes    int                         `json:"used_codes"`
	SoldCodes    int                         `json:"sold_codes"`
	TotalRevenue float64                     `json:"total_revenue"`
	ByProduct    map[ProductType]*UsageSplit `json:"by_product"`
}

// UsageSplit is a total/used pair inside HelperStats.
type UsageSplit struct {
	Total int `json:"total"`
	Used  int `json:"used"`
}
