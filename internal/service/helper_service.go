package service

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/upgraderly/redemption-code-service/internal/codec"
	"github.com/upgraderly/redemption-code-service/internal/model"
)

// HelperRepositoryInterface defines the interface for helper data access.
type HelperRepositoryInterface interface {
	Insert(ctx context.Context, helper *model.Helper) error
	List(ctx context.Context) ([]model.Helper, error)
	Update(ctx context.Context, id uuid.UUID, name, notes, passwordHash *string, isActive *bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// HelperService manages reseller identities and their sales stats.
type HelperService struct {
	helperRepo HelperRepositoryInterface
	codeRepo   CodeRepositoryInterface
}

// NewHelperService creates a HelperService with the given repositories.
func NewHelperService(helperRepo HelperRepositoryInterface, codeRepo CodeRepositoryInterface) *HelperService {
	return &HelperService{helperRepo: helperRepo, codeRepo: codeRepo}
}

// Create registers a helper with a generated H-XXXXXX login code and a
// bcrypt hash of their password.
func (s *HelperService) Create(ctx context.Context, req *model.CreateHelperRequest) (*model.Helper, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	code, err := generateHelperCode()
	if err != nil {
		return nil, fmt.Errorf("generate helper code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash helper password: %w", err)
	}

	helper := &model.Helper{
		ID:           uuid.New(),
		Name:         req.Name,
		Code:         code,
		PasswordHash: string(hash),
		IsActive:     true,
		Notes:        req.Notes,
	}
	if err := s.helperRepo.Insert(ctx, helper); err != nil {
		return nil, err
	}
	return helper, nil
}

// List returns all helpers, newest first.
func (s *HelperService) List(ctx context.Context) ([]model.Helper, error) {
	return s.helperRepo.List(ctx)
}

// Update applies the non-nil fields of req to the helper. A new password is
// re-hashed before storage.
func (s *HelperService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateHelperRequest) error {
	if req == nil {
		return ErrInvalidRequest
	}
	var passwordHash *string
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash helper password: %w", err)
		}
		h := string(hash)
		passwordHash = &h
	}
	return s.helperRepo.Update(ctx, id, req.Name, req.Notes, passwordHash, req.IsActive)
}

// Delete removes the helper. Codes keep their owner reference as a dangling
// weak reference; they are never cascade-deleted.
func (s *HelperService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.helperRepo.Delete(ctx, id)
}

// Stats aggregates code usage and revenue per helper.
func (s *HelperService) Stats(ctx context.Context) ([]model.HelperStats, error) {
	helpers, err := s.helperRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list helpers: %w", err)
	}

	stats := make([]model.HelperStats, 0, len(helpers))
	for _, helper := range helpers {
		codes, err := s.codeRepo.ListByOwner(ctx, helper.ID)
		if err != nil {
			return nil, fmt.Errorf("list codes for helper %s: %w", helper.ID, err)
		}

		entry := model.HelperStats{
			Helper:    helper,
			ByProduct: make(map[model.ProductType]*model.UsageSplit),
		}
		for _, code := range codes {
			entry.TotalCodes++
			split := entry.ByProduct[code.ProductType]
			if split == nil {
				split = &model.UsageSplit{}
				entry.ByProduct[code.ProductType] = split
			}
			split.Total++
			if code.CurrentUses > 0 {
				entry.UsedCodes++
				split.Used++
			}
			if code.IsSold {
				entry.SoldCodes++
				if code.SoldPrice != nil {
					entry.TotalRevenue += *code.SoldPrice
				}
			}
		}
		stats = append(stats, entry)
	}
	return stats, nil
}

// generateHelperCode builds the H-XXXXXX login code from the code alphabet.
func generateHelperCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codec.Alphabet[int(b)%len(codec.Alphabet)]
	}
	return "H-" + string(buf), nil
}
