package matching

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice          = errors.New("invalid price")
	ErrInvalidSize           = errors.New("invalid order size")
	ErrInvalidSide           = errors.New("invalid order side")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrUnknownPriceLevel     = errors.New("no liquidity at price")
	ErrUnknownMarket         = errors.New("unknown market")
	ErrDuplicateMarket       = errors.New("market already exists")
)

// InsufficientLiquidityError reports how much of an order could not be matched.
// It satisfies errors.Is(err, ErrInsufficientLiquidity).
type InsufficientLiquidityError struct {
	Price     *Price // nil for multi-level sweeps
	Requested decimal.Decimal
	Available decimal.Decimal
	Filled    decimal.Decimal
}

// Unfilled is the part of the request left on the incoming order
func (e *InsufficientLiquidityError) Unfilled() decimal.Decimal {
	return e.Requested.Sub(e.Filled)
}

func (e *InsufficientLiquidityError) Error() string {
	if e.Price != nil {
		return fmt.Sprintf("%s at %s: requested %s, available %s, filled %s",
			ErrInsufficientLiquidity, e.Price, e.Requested, e.Available, e.Filled)
	}
	return fmt.Sprintf("%s: requested %s, available %s, filled %s",
		ErrInsufficientLiquidity, e.Requested, e.Available, e.Filled)
}

func (e *InsufficientLiquidityError) Is(target error) bool {
	return target == ErrInsufficientLiquidity
}
