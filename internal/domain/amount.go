package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a nullable fixed-point decimal that keeps the scale it was parsed
// with, so "12.50" renders back as "12.50". It never goes through float64.
type Amount struct {
	decimal.NullDecimal
}

// ParseAmount parses a decimal string. Blank input yields an absent Amount.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("failed to parse amount %q: %w", s, err)
	}
	return Amount{decimal.NullDecimal{Decimal: d, Valid: true}}, nil
}

// MustAmount is ParseAmount that panics, for constants and tests
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ZeroIfAbsent returns a valid zero amount (scale 2) when a is absent
func (a Amount) ZeroIfAbsent() Amount {
	if a.Valid {
		return a
	}
	return Amount{decimal.NullDecimal{Decimal: decimal.New(0, -2), Valid: true}}
}

// Add sums two amounts. An absent operand counts as zero; the result is
// absent only if both are.
func (a Amount) Add(b Amount) Amount {
	switch {
	case !a.Valid:
		return b
	case !b.Valid:
		return a
	}
	return Amount{decimal.NullDecimal{Decimal: a.Decimal.Add(b.Decimal), Valid: true}}
}

// Equal compares value and presence; scale is ignored
func (a Amount) Equal(b Amount) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

// String renders the amount with its original number of fraction digits
func (a Amount) String() string {
	if !a.Valid {
		return ""
	}
	places := -a.Decimal.Exponent()
	if places < 0 {
		places = 0
	}
	return a.Decimal.StringFixed(places)
}

// Value implements driver.Valuer. Amounts are written as decimal text.
func (a Amount) Value() (driver.Value, error) {
	if !a.Valid {
		return nil, nil
	}
	return a.String(), nil
}

// Scan implements sql.Scanner
func (a *Amount) Scan(value interface{}) error {
	return a.NullDecimal.Scan(value)
}

// MarshalJSON writes the amount as a JSON string, or null when absent
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON string, a bare JSON number or null.
// Numbers are read from their literal text.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode amount: %w", err)
		}
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Money is an amount paired with its ISO currency code
type Money struct {
	Amount       Amount `json:"amount"`
	CurrencyCode string `json:"currency_code,omitempty"`
}
