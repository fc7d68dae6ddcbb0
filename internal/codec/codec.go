// Package codec implements the redemption code string format: a fixed-width
// concatenation of expiry, usage quota, secret fragments and a product tag.
//
// Layout: MM YY UUU FFFFFFFF TAG[T]
//   - MM   expiry month, zero-padded to 2 digits
//   - YY   expiry year mod 100, zero-padded to 2 digits
//   - UUU  max uses 1-999, zero-padded to 3 digits
//   - FFFFFFFF two 4-char secret fragments from [A-Z0-9]
//   - TAG  product tag MCD, GD or RB; RB may carry a tier char A or B
//
// Example: 0327005K7Q2ZX4VMCD = March 2027, 5 uses, Minecraft.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/upgraderly/redemption-code-service/internal/model"
)

// Alphabet is the symbol set for secret fragments and, together with
// decimal digits, the only characters a valid code may contain.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// FragmentLen is the length of each embedded secret fragment.
const FragmentLen = 4

// bodyLen is the fixed length of a code before the product tag:
// 2 (month) + 2 (year) + 3 (uses) + 8 (fragments).
const bodyLen = 15

// ErrMalformedCode is returned when a string does not match the code
// layout. All structural failures collapse into this one error so the
// decoder cannot be used as an oracle for guessing near-valid codes.
var ErrMalformedCode = errors.New("malformed code")

// Fields is the decoded form of a code string.
type Fields struct {
	ExpiryMonth int
	ExpiryYear  int
	MaxUses     int
	Fragment1   string
	Fragment2   string
	ProductType model.ProductType
	RewardTier  model.RewardTier
}

// Encode builds the code string for the given fields. Every field is
// range-checked; the month is always emitted with two digits so decoding
// is unambiguous.
func Encode(f Fields) (string, error) {
	if f.ExpiryMonth < 1 || f.ExpiryMonth > 12 {
		return "", fmt.Errorf("expiry month %d out of range", f.ExpiryMonth)
	}
	if f.ExpiryYear < 2000 || f.ExpiryYear > 2099 {
		return "", fmt.Errorf("expiry year %d out of range", f.ExpiryYear)
	}
	if f.MaxUses < 1 || f.MaxUses > 999 {
		return "", fmt.Errorf("max uses %d out of range", f.MaxUses)
	}
	if !validFragment(f.Fragment1) || !validFragment(f.Fragment2) {
		return "", errors.New("secret fragments must be 4 chars from [A-Z0-9]")
	}
	if !f.ProductType.Valid() {
		return "", fmt.Errorf("unknown product type %q", f.ProductType)
	}
	tier := ""
	if f.RewardTier != "" {
		if f.ProductType != model.ProductRoblox {
			return "", errors.New("reward tier is only valid for RB codes")
		}
		if !f.RewardTier.Valid() {
			return "", fmt.Errorf("unknown reward tier %q", f.RewardTier)
		}
		tier = string(f.RewardTier)
	}

	return fmt.Sprintf("%02d%02d%03d%s%s%s%s",
		f.ExpiryMonth, f.ExpiryYear%100, f.MaxUses,
		f.Fragment1, f.Fragment2, f.ProductType, tier), nil
}

// Decode parses a code string back into Fields. Input is trimmed and
// uppercased first, so codes are case-insensitive. Returns ErrMalformedCode
// for any structural failure.
func Decode(raw string) (Fields, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))

	product, tier, tagLen, ok := matchTag(s)
	if !ok {
		return Fields{}, ErrMalformedCode
	}
	body := s[:len(s)-tagLen]
	if len(body) != bodyLen {
		return Fields{}, ErrMalformedCode
	}

	month, ok := parseDigits(body[0:2])
	if !ok || month < 1 || month > 12 {
		return Fields{}, ErrMalformedCode
	}
	yy, ok := parseDigits(body[2:4])
	if !ok {
		return Fields{}, ErrMalformedCode
	}
	uses, ok := parseDigits(body[4:7])
	if !ok || uses < 1 {
		return Fields{}, ErrMalformedCode
	}
	frag1, frag2 := body[7:11], body[11:15]
	if !validFragment(frag1) || !validFragment(frag2) {
		return Fields{}, ErrMalformedCode
	}

	return Fields{
		ExpiryMonth: month,
		ExpiryYear:  2000 + yy,
		MaxUses:     uses,
		Fragment1:   frag1,
		Fragment2:   frag2,
		ProductType: product,
		RewardTier:  tier,
	}, nil
}

// matchTag identifies the product tag suffix. MCD is checked before GD so
// that the D/CD overlap cannot misclassify, then bare RB, then RB with a
// tier char.
func matchTag(s string) (model.ProductType, model.RewardTier, int, bool) {
	switch {
	case strings.HasSuffix(s, string(model.ProductMinecraft)):
		return model.ProductMinecraft, "", 3, true
	case strings.HasSuffix(s, string(model.ProductGeometryDash)):
		return model.ProductGeometryDash, "", 2, true
	case strings.HasSuffix(s, string(model.ProductRoblox)):
		return model.ProductRoblox, "", 2, true
	case len(s) >= 3 && s[len(s)-3:len(s)-1] == string(model.ProductRoblox):
		tier := model.RewardTier(s[len(s)-1:])
		if tier.Valid() {
			return model.ProductRoblox, tier, 3, true
		}
	}
	return "", "", 0, false
}

// parseDigits converts a fixed-width ASCII-decimal field. Unlike
// strconv.Atoi it rejects signs and whitespace outright.
func parseDigits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func validFragment(s string) bool {
	if len(s) != FragmentLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(Alphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
