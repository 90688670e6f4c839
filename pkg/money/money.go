// Package money provides an exact currency amount type for the tallyvox
// ledger. Amounts are stored as integer cents, so arithmetic on bill values
// is exact — there is no floating point anywhere in the money path.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Amount is a currency value in cents. The zero value is $0.00.
// Amounts may be negative when used as signed net balances.
type Amount int64

// FromCents returns the Amount representing the given number of cents.
func FromCents(cents int64) Amount {
	return Amount(cents)
}

// FromUnits returns the Amount for whole currency units (e.g., dollars).
func FromUnits(units int64) Amount {
	return Amount(units * 100)
}

// FromParts combines whole units and a 0–99 fraction into an Amount.
// The fraction is interpreted as written: FromParts(12, 5) is $12.05
// only when the caller has already scaled a one-digit fraction; use
// [ParseDecimal] for textual input.
func FromParts(units int64, cents int64) Amount {
	return Amount(units*100 + cents)
}

// ParseDecimal parses a plain decimal string such as "12", "12.5", or
// "12.50" into an Amount. At most two fraction digits are accepted; a
// single fraction digit counts as tenths.
func ParseDecimal(s string) (Amount, error) {
	whole, frac, hasFrac := strings.Cut(strings.TrimSpace(s), ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", s, err)
	}
	if !hasFrac {
		return FromUnits(units), nil
	}
	if len(frac) == 0 || len(frac) > 2 {
		return 0, fmt.Errorf("money: parse %q: fraction must be 1 or 2 digits", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("money: parse %q: %w", s, err)
	}
	if len(frac) == 1 {
		cents *= 10
	}
	if units < 0 {
		cents = -cents
	}
	return Amount(units*100 + cents), nil
}

// Cents returns the amount in cents.
func (a Amount) Cents() int64 {
	return int64(a)
}

// IsPositive reports whether the amount is strictly greater than zero.
func (a Amount) IsPositive() bool {
	return a > 0
}

// Neg returns the negated amount.
func (a Amount) Neg() Amount {
	return -a
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return a - b
}

// String formats the amount as "$12.50". Negative amounts render as
// "-$12.50".
func (a Amount) String() string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
