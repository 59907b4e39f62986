// Package phone normalizes customer phone numbers so every lookup path
// matches the same set of stored representations.
package phone

import (
	"strings"

	"github.com/SwiftWash/service-booking/pkg/domain"
)

// DefaultCountryCode is used when no country code is configured.
const DefaultCountryCode = "254"

const (
	minNationalDigits = 7
	maxNationalDigits = 12
)

// Number is a normalized phone number.
type Number struct {
	// Canonical is the E.164 form, e.g. "+254712345678".
	Canonical string
	// National is the subscriber number without country code or trunk prefix.
	National string
	// Variants lists every textual form that older records may have been stored under.
	Variants []string
}

// Normalize parses raw into a Number. Spaces, dashes, dots and parentheses are
// ignored. Accepted inputs for country code 254 include "+254712345678",
// "254712345678", "00254712345678", "+2540712345678", "0712345678" and
// "712345678". Numbers dialled with another country code are rejected.
func Normalize(raw, countryCode string) (Number, error) {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}

	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	international := strings.HasPrefix(cleaned, "+")
	cleaned = strings.TrimPrefix(cleaned, "+")
	if cleaned == "" {
		return Number{}, domain.NewValidationError("phone number is required")
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return Number{}, domain.NewValidationError("phone number must contain only digits")
		}
	}
	if !international && strings.HasPrefix(cleaned, "00") {
		international = true
		cleaned = cleaned[2:]
	}

	national := cleaned
	switch {
	case strings.HasPrefix(cleaned, countryCode) && len(cleaned)-len(countryCode) >= minNationalDigits:
		national = cleaned[len(countryCode):]
	case international:
		return Number{}, domain.NewValidationError("phone number country code is not supported")
	}
	// The trunk zero may follow the country code, as in "+254 0712 345 678".
	national = strings.TrimPrefix(national, "0")

	if len(national) < minNationalDigits || len(national) > maxNationalDigits {
		return Number{}, domain.NewValidationError("phone number has an invalid length")
	}

	return Number{
		Canonical: "+" + countryCode + national,
		National:  national,
		Variants: []string{
			"+" + countryCode + national,
			countryCode + national,
			"0" + national,
			national,
		},
	}, nil
}

// Equal reports whether a and b normalize to the same number.
func Equal(a, b, countryCode string) bool {
	na, err := Normalize(a, countryCode)
	if err != nil {
		return false
	}
	nb, err := Normalize(b, countryCode)
	if err != nil {
		return false
	}
	return na.Canonical == nb.Canonical
}
