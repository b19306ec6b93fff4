package models

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a stored or submitted amount is not a decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a currency value kept in its decimal string form, the way it is persisted.
// Arithmetic always goes through Decimal.
type Amount string

// UnmarshalJSON accepts both "12.50" and 12.50.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		*a = Amount(s)
		return nil
	}
	*a = Amount(data)
	return nil
}

// Value stores the amount as text so numeric columns keep their exact scale.
func (a Amount) Value() (driver.Value, error) {
	return string(a), nil
}

// Scan reads numeric columns whatever representation the driver hands back.
func (a *Amount) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*a = ""
	case string:
		*a = Amount(v)
	case []byte:
		*a = Amount(v)
	case float64:
		*a = Amount(decimal.NewFromFloat(v).StringFixed(2))
	case int64:
		*a = Amount(decimal.NewFromInt(v).StringFixed(2))
	default:
		return fmt.Errorf("cannot scan %T into Amount", value)
	}
	return nil
}

// Decimal parses the stored value.
func (a Amount) Decimal() (decimal.Decimal, error) {
	return ParseAmount(string(a))
}

// ParseAmount parses a decimal string such as "1200.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// NormalizeAmount validates a positive amount with at most two decimals and returns it
// formatted with exactly two.
func NormalizeAmount(a Amount) (Amount, error) {
	d, err := a.Decimal()
	if err != nil {
		return "", invalid("amount", "must be a decimal number")
	}
	if !d.IsPositive() {
		return "", invalid("amount", "must be greater than zero")
	}
	if !d.Equal(d.Round(2)) {
		return "", invalid("amount", "must have at most two decimal places")
	}
	return Amount(d.StringFixed(2)), nil
}

func normalizeCurrency(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency, nil
	}
	if len(c) != 3 {
		return "", invalid("currency", "must be a three-letter code")
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", invalid("currency", "must be a three-letter code")
		}
	}
	return c, nil
}

// DefaultCurrency is applied when a record arrives without one.
const DefaultCurrency = "USD"
