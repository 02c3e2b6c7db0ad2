package money

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: currency is required")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// Money is an amount in whole currency units. Prices in the catalog are
// whole-unit nightly rates; fee math rounds half-up at each step, so whole
// units stay exact end to end.
type Money struct {
	Amount   int64
	Currency string
}

func New(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return Money{}, ErrInvalidCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Must is New for literals known valid at compile time.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

func (m Money) Multiply(factor int64) Money {
	return Money{Amount: m.Amount * factor, Currency: m.Currency}
}

// PercentRounded returns percent% of the amount, rounded half-up.
func (m Money) PercentRounded(percent int64) Money {
	amount := (m.Amount*percent + 50) / 100
	return Money{Amount: amount, Currency: m.Currency}
}

// Subunits converts to the smallest currency denomination, the convention
// payment providers expect.
func (m Money) Subunits() int64 { return m.Amount * 100 }

func (m Money) IsZero() bool { return m.Amount == 0 }

func (m Money) Symbol() string {
	if m.Currency == "INR" {
		return "₹"
	}
	return "$"
}

func (m Money) String() string {
	return fmt.Sprintf("%s%d", m.Symbol(), m.Amount)
}
