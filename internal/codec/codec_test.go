package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/upgraderly/redemption-code-service/internal/model"
)

func TestEncode_Layout(t *testing.T) {
	code, err := Encode(Fields{
		ExpiryMonth: 3,
		ExpiryYear:  2027,
		MaxUses:     5,
		Fragment1:   "K7Q2",
		Fragment2:   "ZX4V",
		ProductType: model.ProductMinecraft,
	})

	require.NoError(t, err)
	assert.Equal(t, "0327005K7Q2ZX4VMCD", code, "month must be zero-padded to 2 digits")
}

func TestEncode_RobloxTierSuffix(t *testing.T) {
	code, err := Encode(Fields{
		ExpiryMonth: 12,
		ExpiryYear:  2025,
		MaxUses:     999,
		Fragment1:   "AAAA",
		Fragment2:   "0000",
		ProductType: model.ProductRoblox,
		RewardTier:  model.TierB,
	})

	require.NoError(t, err)
	assert.Equal(t, "1225999AAAA0000RBB", code)
}

func TestEncode_InvalidFields(t *testing.T) {
	valid := Fields{
		ExpiryMonth: 6,
		ExpiryYear:  2026,
		MaxUses:     10,
		Fragment1:   "ABCD",
		Fragment2:   "1234",
		ProductType: model.ProductGeometryDash,
	}

	testCases := []struct {
		name   string
		mutate func(f *Fields)
	}{
		{"month_zero", func(f *Fields) { f.ExpiryMonth = 0 }},
		{"month_thirteen", func(f *Fields) { f.ExpiryMonth = 13 }},
		{"year_past_window", func(f *Fields) { f.ExpiryYear = 2100 }},
		{"uses_zero", func(f *Fields) { f.MaxUses = 0 }},
		{"uses_overflow", func(f *Fields) { f.MaxUses = 1000 }},
		{"fragment_too_short", func(f *Fields) { f.Fragment1 = "ABC" }},
		{"fragment_lowercase", func(f *Fields) { f.Fragment2 = "abcd" }},
		{"fragment_punctuation", func(f *Fields) { f.Fragment2 = "AB!D" }},
		{"unknown_product", func(f *Fields) { f.ProductType = "XYZ" }},
		{"tier_on_non_roblox", func(f *Fields) { f.RewardTier = model.TierA }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := valid
			tc.mutate(&f)
			_, err := Encode(f)
			assert.Error(t, err)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	testCases := []Fields{
		{ExpiryMonth: 1, ExpiryYear: 2025, MaxUses: 1, Fragment1: "AAAA", Fragment2: "ZZZZ", ProductType: model.ProductMinecraft},
		{ExpiryMonth: 12, ExpiryYear: 2099, MaxUses: 999, Fragment1: "0000", Fragment2: "9999", ProductType: model.ProductGeometryDash},
		{ExpiryMonth: 7, ExpiryYear: 2031, MaxUses: 50, Fragment1: "K7Q2", Fragment2: "ZX4V", ProductType: model.ProductRoblox},
		{ExpiryMonth: 2, ExpiryYear: 2026, MaxUses: 100, Fragment1: "Q1W2", Fragment2: "E3R4", ProductType: model.ProductRoblox, RewardTier: model.TierA},
		{ExpiryMonth: 10, ExpiryYear: 2040, MaxUses: 7, Fragment1: "MNBV", Fragment2: "CXZ0", ProductType: model.ProductRoblox, RewardTier: model.TierB},
	}

	for _, f := range testCases {
		code, err := Encode(f)
		require.NoError(t, err)

		decoded, err := Decode(code)
		require.NoError(t, err, "code %s should decode", code)
		assert.Equal(t, f, decoded, "round-trip mismatch for %s", code)
	}
}

func TestDecode_CaseAndWhitespaceInsensitive(t *testing.T) {
	decoded, err := Decode("  0327005k7q2zx4vmcd\n")

	require.NoError(t, err)
	assert.Equal(t, model.ProductMinecraft, decoded.ProductType)
	assert.Equal(t, "K7Q2", decoded.Fragment1)
	assert.Equal(t, 2027, decoded.ExpiryYear)
}

func TestDecode_Malformed(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"garbage", "garbage!!"},
		{"empty", ""},
		{"missing_tag", "0327005K7Q2ZX4V"},
		{"unknown_tag", "0327005K7Q2ZX4VXX"},
		{"too_short", "0327MCD"},
		{"body_too_long", "00327005K7Q2ZX4VMCD"},
		{"one_digit_month", "327005K7Q2ZX4VMCD"},
		{"month_zero", "0027005K7Q2ZX4VMCD"},
		{"month_thirteen", "1327005K7Q2ZX4VMCD"},
		{"uses_zero", "0327000K7Q2ZX4VMCD"},
		{"letters_in_numeric_field", "A327005K7Q2ZX4VMCD"},
		{"punctuation_in_fragment", "0327005K7Q-ZX4VMCD"},
		{"bad_tier_char", "0327005K7Q2ZX4VRBC"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.input)
			assert.ErrorIs(t, err, ErrMalformedCode)
		})
	}
}

// A fragment that happens to end in the letters of a product tag must not
// confuse the suffix matcher; the tag is always matched from the end.
func TestDecode_TagMatchedFromEnd(t *testing.T) {
	decoded, err := Decode("0327005MCDAGDBVRB")

	require.NoError(t, err)
	assert.Equal(t, model.ProductRoblox, decoded.ProductType)
	assert.Equal(t, model.RewardTier(""), decoded.RewardTier)
	assert.Equal(t, "MCDA", decoded.Fragment1)
	assert.Equal(t, "GDBV", decoded.Fragment2)
}
