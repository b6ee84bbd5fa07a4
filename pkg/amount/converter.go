// Package amount converts between human-entered decimal strings and the
// integer minor units used on the ledger wire.
package amount

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/SscSPs/catalog_sync_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Exponent is the number of fractional digits in one ledger currency unit.
const Exponent = 18

// MaxBits is the width of the ledger's unsigned amount fields.
const MaxBits = 256

// plain dot-separated decimal, no sign other than '+', no exponent notation
var decimalPattern = regexp.MustCompile(`^\+?(\d+\.?\d*|\.\d+)$`)

// ToMinorUnits parses a decimal string such as "1.5" into ledger minor units.
// Example: "0.000000000000000001" returns 1.
func ToMinorUnits(s string) (*big.Int, error) {
	trimmed := strings.TrimSpace(s)
	if !decimalPattern.MatchString(trimmed) {
		return nil, fmt.Errorf("%w: %q is not a non-negative decimal", apperrors.ErrInvalidAmount, s)
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(trimmed, "+"))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", apperrors.ErrInvalidAmount, s, err)
	}

	shifted := d.Shift(Exponent)
	if !shifted.IsInteger() {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", apperrors.ErrInvalidAmount, s, Exponent)
	}
	v := shifted.BigInt()
	if v.BitLen() > MaxBits {
		return nil, fmt.Errorf("%w: %q does not fit in %d bits of minor units", apperrors.ErrInvalidAmount, s, MaxBits)
	}
	return v, nil
}

// ToDecimalString formats minor units as a decimal string without trailing zeros.
// Example: 1500000000000000000 returns "1.5".
func ToDecimalString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -Exponent).String()
}

// Normalize returns the canonical form of a decimal amount string.
func Normalize(s string) (string, error) {
	v, err := ToMinorUnits(s)
	if err != nil {
		return "", err
	}
	return ToDecimalString(v), nil
}
