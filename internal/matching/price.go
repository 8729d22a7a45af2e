package matching

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	// PriceDecimals is the number of fractional digits a Price keeps
	PriceDecimals = 5

	// Scaler is 10^PriceDecimals, the denominator of Price.fractional
	Scaler uint64 = 100000
)

// maxIntegral keeps integral*Scaler+fractional inside an int64
const maxIntegral = math.MaxInt64/int64(Scaler) - 1

// maxPrice is maxIntegral.99999, the largest value PriceFromTicks accepts
var maxPrice = decimal.New(maxIntegral*int64(Scaler)+int64(Scaler-1), -PriceDecimals)

// Price is an exact fixed-point price: integral + fractional/Scaler.
// Two prices are equal iff both parts match, so Price is usable as a map key.
// Every Price shares the package Scaler, so it is not stored per value.
type Price struct {
	integral   uint64
	fractional uint64
}

// PriceFromDecimal rounds value half away from zero to PriceDecimals digits
// and splits it. Negative values and values above the representable range
// are rejected.
func PriceFromDecimal(value decimal.Decimal) (Price, error) {
	if value.Sign() < 0 {
		return Price{}, fmt.Errorf("%w: %s is negative", ErrInvalidPrice, value)
	}

	rounded := value.Round(PriceDecimals)
	if rounded.GreaterThan(maxPrice) {
		return Price{}, fmt.Errorf("%w: %s exceeds maximum %s", ErrInvalidPrice, value, maxPrice)
	}

	whole := rounded.Truncate(0)
	frac := rounded.Sub(whole).Shift(PriceDecimals).IntPart()

	// rounding to PriceDecimals already bounds frac, the carry is kept so the
	// invariant fractional < Scaler never depends on it
	integral := uint64(whole.IntPart())
	fractional := uint64(frac)
	if fractional >= Scaler {
		integral += fractional / Scaler
		fractional %= Scaler
	}

	return Price{integral: integral, fractional: fractional}, nil
}

// PriceFromFloat converts a float64 through its shortest decimal representation,
// so 50.1 becomes exactly 50.10000.
func PriceFromFloat(value float64) (Price, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return Price{}, fmt.Errorf("%w: %v is not finite", ErrInvalidPrice, value)
	}
	if value < 0 {
		return Price{}, fmt.Errorf("%w: %v is negative", ErrInvalidPrice, value)
	}
	return PriceFromDecimal(decimal.NewFromFloat(value))
}

// PriceFromString parses a decimal literal such as "10000.25"
func PriceFromString(value string) (Price, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Price{}, fmt.Errorf("%w: %q: %v", ErrInvalidPrice, value, err)
	}
	return PriceFromDecimal(d)
}

// PriceFromTicks builds a price from an integer count of 1/Scaler units
func PriceFromTicks(ticks uint64) (Price, error) {
	integral := ticks / Scaler
	if integral > uint64(maxIntegral) {
		return Price{}, fmt.Errorf("%w: %d ticks exceeds maximum", ErrInvalidPrice, ticks)
	}
	return Price{integral: integral, fractional: ticks % Scaler}, nil
}

// MustPrice is PriceFromString that panics, for tests and constants
func MustPrice(value string) Price {
	p, err := PriceFromString(value)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) Integral() uint64 {
	return p.integral
}

func (p Price) Fractional() uint64 {
	return p.fractional
}

func (p Price) Scaler() uint64 {
	return Scaler
}

// Ticks returns the price as a count of 1/Scaler units
func (p Price) Ticks() uint64 {
	return p.integral*Scaler + p.fractional
}

// Decimal reconstructs integral + fractional/Scaler exactly
func (p Price) Decimal() decimal.Decimal {
	return decimal.New(int64(p.Ticks()), -PriceDecimals)
}

// Less orders prices ascending
func (p Price) Less(other Price) bool {
	if p.integral != other.integral {
		return p.integral < other.integral
	}
	return p.fractional < other.fractional
}

func (p Price) String() string {
	return p.Decimal().StringFixed(PriceDecimals)
}
