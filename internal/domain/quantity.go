package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is an optional decimal amount. The server sends quantities as
// quoted decimals ("10.00"), bare numbers, "" or null.
type Quantity struct {
	decimal.NullDecimal
}

// Qty builds a present quantity.
func Qty(d decimal.Decimal) Quantity {
	return Quantity{decimal.NullDecimal{Decimal: d, Valid: true}}
}

// ParseQuantity parses user or server text; blank yields an absent quantity.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity %q", s)
	}
	return Qty(d), nil
}

// MustQty is ParseQuantity for literals; it panics on bad input.
func MustQty(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Present() bool {
	return q.Valid
}

// Positive reports whether the quantity is present and greater than zero.
func (q Quantity) Positive() bool {
	return q.Valid && q.Decimal.IsPositive()
}

// String renders the quantity without trailing zeros; absent renders "".
func (q Quantity) String() string {
	if !q.Valid {
		return ""
	}
	return q.Decimal.String()
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = Quantity{}
		return nil
	}
	var s string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := ParseQuantity(s)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(q.Decimal.String())
}
