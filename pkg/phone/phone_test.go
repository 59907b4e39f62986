package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

func TestNormalize_EquivalentForms(t *testing.T) {
	inputs := []string{
		"+254712345678",
		"254712345678",
		"0712345678",
		"712345678",
		"0712 345-678",
		"(0712) 345.678",
		"00254712345678",
		"+254 0712 345 678",
		"2540712345678",
		"002540712345678",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			n, err := Normalize(in, "254")
			require.NoError(t, err)
			assert.Equal(t, "+254712345678", n.Canonical)
			assert.Equal(t, "712345678", n.National)
			assert.ElementsMatch(t, []string{
				"+254712345678", "254712345678", "0712345678", "712345678",
			}, n.Variants)
		})
	}
}

func TestNormalize_DefaultCountryCode(t *testing.T) {
	n, err := Normalize("0712345678", "")
	require.NoError(t, err)
	assert.Equal(t, "+254712345678", n.Canonical)
}

func TestNormalize_OtherCountryCode(t *testing.T) {
	n, err := Normalize("0123456789", "60")
	require.NoError(t, err)
	assert.Equal(t, "+60123456789", n.Canonical)
}

func TestNormalize_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "07123x5678", "0123", "+2540712345678901234", "+15551234567", "0015551234567"} {
		_, err := Normalize(in, "254")
		assert.ErrorIs(t, err, domain.ErrValidation, "input %q", in)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("0712345678", "+254 712 345 678", "254"))
	assert.True(t, Equal("2540712345678", "0712345678", "254"))
	assert.False(t, Equal("0712345678", "0712345679", "254"))
	assert.False(t, Equal("bad", "0712345678", "254"))
}
