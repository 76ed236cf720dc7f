// Package money provides the fixed-point currency type used for budgets,
// envelopes, transactions and the cashflow balance. Every amount carries
// exactly two fractional digits and is serialized as a decimal string.
package money

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for every amount.
const Places = 2

var (
	// ErrInvalidAmount is returned when a string is not a decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrTooPrecise is returned when an amount has more than two fractional digits.
	ErrTooPrecise = errors.New("amount has more than two fractional digits")
	// ErrOutOfRange is returned when an amount does not fit NUMERIC(12,2).
	ErrOutOfRange = errors.New("amount out of range")
)

var (
	hundred = decimal.NewFromInt(100)
	// limit is the exclusive bound on the absolute value of a parsed amount.
	limit = decimal.New(1, 10)
)

// Money is a signed fixed-point amount with two fractional digits.
// The zero value is 0.00.
type Money struct {
	d decimal.Decimal
}

// Zero is 0.00.
var Zero = Money{}

// New rounds d to the cent (half away from zero) and returns it as Money.
func New(d decimal.Decimal) Money {
	return Money{d: d.Round(Places)}
}

// FromCents builds an amount from an integer number of cents.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -Places)}
}

// Parse reads a decimal string such as "12.34". Amounts with more than two
// significant fractional digits are rejected rather than silently rounded,
// as are amounts whose absolute value reaches 10^10.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.Equal(d.Round(Places)) {
		return Zero, fmt.Errorf("%w: %q", ErrTooPrecise, s)
	}
	if d.Abs().GreaterThanOrEqual(limit) {
		return Zero, fmt.Errorf("%w: %q", ErrOutOfRange, s)
	}
	return Money{d: d.Round(Places)}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Cents returns the amount as an integer number of cents.
func (m Money) Cents() int64 { return m.d.Shift(Places).IntPart() }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }
func (m Money) Abs() Money        { return Money{d: m.d.Abs()} }

// Half divides the amount by two, rounding a half-cent remainder half-up
// (away from zero), e.g. 0.01 -> 0.01 and 100.01 -> 50.01.
func (m Money) Half() Money {
	return Money{d: m.d.Div(decimal.NewFromInt(2)).Round(Places)}
}

func (m Money) Cmp(o Money) int          { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool       { return m.d.Equal(o.d) }
func (m Money) LessThan(o Money) bool    { return m.d.LessThan(o.d) }
func (m Money) GreaterThan(o Money) bool { return m.d.GreaterThan(o.d) }
func (m Money) IsZero() bool             { return m.d.IsZero() }
func (m Money) IsNegative() bool         { return m.d.IsNegative() }
func (m Money) IsPositive() bool         { return m.d.IsPositive() }

// Max returns the larger of a and b.
func Max(a, b Money) Money {
	if a.LessThan(b) {
		return b
	}
	return a
}

// PercentOf formats m/total*100 with two fractional digits and a trailing
// percent sign. A zero total yields "0.00%".
func (m Money) PercentOf(total Money) string {
	if total.IsZero() {
		return "0.00%"
	}
	pct := m.d.DivRound(total.d, 8).Mul(hundred)
	return pct.StringFixed(Places) + "%"
}

// String returns the amount with exactly two fractional digits.
func (m Money) String() string { return m.d.StringFixed(Places) }

// MarshalJSON encodes the amount as a quoted decimal string, e.g. "100.00".
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a quoted decimal string or a bare JSON number.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = Zero
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value implements driver.Valuer. Amounts are stored as NUMERIC(12,2).
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	*m = New(d)
	return nil
}
