// Package pricing turns a parking stay into parked minutes and a charge.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultBlockMinutes   = 15
	DefaultBlockRate      = "2.5"
	DefaultCurrencySymbol = "$"

	// MaxRateDecimals matches the scale of the stored charge column.
	MaxRateDecimals = 2
)

// Tariff charges BlockRate for every completed block of BlockMinutes.
// Partial blocks are free.
type Tariff struct {
	BlockMinutes   int64
	BlockRate      decimal.Decimal
	CurrencySymbol string
}

// DefaultTariff is 2.5 per completed 15 minutes.
func DefaultTariff() Tariff {
	return Tariff{
		BlockMinutes:   DefaultBlockMinutes,
		BlockRate:      decimal.RequireFromString(DefaultBlockRate),
		CurrencySymbol: DefaultCurrencySymbol,
	}
}

// NewTariff validates and builds a tariff from its textual rate.
func NewTariff(blockMinutes int, rate, symbol string) (Tariff, error) {
	if blockMinutes <= 0 {
		return Tariff{}, errors.New("block minutes must be positive")
	}
	parsed, err := decimal.NewFromString(strings.TrimSpace(rate))
	if err != nil {
		return Tariff{}, fmt.Errorf("parse block rate %q: %w", rate, err)
	}
	if parsed.IsNegative() {
		return Tariff{}, fmt.Errorf("block rate %s must not be negative", parsed)
	}
	if !parsed.Equal(parsed.Round(MaxRateDecimals)) {
		return Tariff{}, fmt.Errorf("block rate %s has more than %d decimal places", parsed, MaxRateDecimals)
	}
	return Tariff{BlockMinutes: int64(blockMinutes), BlockRate: parsed, CurrencySymbol: symbol}, nil
}

// ParkedMinutes floors the elapsed whole seconds to minutes. Exit before
// entry (clock skew) yields 0.
func ParkedMinutes(entryTime, exitTime int64) int64 {
	elapsed := exitTime - entryTime
	if elapsed <= 0 {
		return 0
	}
	return elapsed / 60
}

// Charge returns the amount owed for a stay of the given minutes.
func (t Tariff) Charge(parkedMinutes int64) decimal.Decimal {
	if parkedMinutes <= 0 || t.BlockMinutes <= 0 {
		return decimal.Zero
	}
	blocks := parkedMinutes / t.BlockMinutes
	return t.BlockRate.Mul(decimal.NewFromInt(blocks))
}

// FormatCharge renders an amount the way receipts show it: "$2.5", "$5.0".
func (t Tariff) FormatCharge(amount decimal.Decimal) string {
	s := amount.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return t.CurrencySymbol + s
}

// FormatDuration renders parked minutes as "<n> minutes".
func FormatDuration(parkedMinutes int64) string {
	return fmt.Sprintf("%d minutes", parkedMinutes)
}
