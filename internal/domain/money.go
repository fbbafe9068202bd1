package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountOverflow = errors.New("amount out of range")
)

// MaxPrice is the highest ticket price an event may have.
const MaxPrice Money = 99_999_999_99

// Money is an amount in cents. Prices are kept as integers so that
// quantity * price is exact.
type Money int64

// ParseMoney accepts "10", "10.5" or "10.50". More than two decimals is
// rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if s == "" || s == "." {
		return 0, ErrInvalidAmount
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, ErrInvalidAmount
	}
	if !digitsOnly(whole) || (hasFrac && !digitsOnly(frac)) {
		return 0, ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if w > math.MaxInt64/100-1 {
		return 0, ErrInvalidAmount
	}

	m := Money(w*100 + f)
	if neg {
		m = -m
	}

	return m, nil
}

// Times returns m * n, or ErrAmountOverflow when the product does not fit.
func (m Money) Times(n int) (Money, error) {
	if n < 0 {
		return 0, ErrAmountOverflow
	}
	if n != 0 && (m > Money(math.MaxInt64)/Money(n) || m < Money(math.MinInt64)/Money(n)) {
		return 0, ErrAmountOverflow
	}

	return m * Money(n), nil
}

func (m Money) Float64() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}

	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
