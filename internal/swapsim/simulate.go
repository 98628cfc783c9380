// Package swapsim estimates the price impact of a single swap against a
// two-asset constant-product pool with a proportional fee on the input.
package swapsim

import (
	"errors"

	"token-holder-lab/internal/domain"
)

var (
	// ErrInvalidReserves is returned when either pool reserve is not positive.
	ErrInvalidReserves = errors.New("invalid reserves: both pool reserves must be > 0")

	// ErrInvalidAmount is returned when the trade size is not positive.
	ErrInvalidAmount = errors.New("invalid amount: amountIn must be > 0")

	// ErrInvalidFee is returned when the fee rate is outside [0, 1).
	ErrInvalidFee = errors.New("invalid fee: feeRate must be in [0, 1)")

	// ErrInvalidDirection is returned for an unrecognized swap direction.
	ErrInvalidDirection = errors.New("invalid direction: must be BASE_IN or QUOTE_IN")
)

// Simulate computes the post-trade state of pool for a swap of amountIn
// under x*y=k with the fee deducted from the input before the invariant is
// applied. dir maps the input token onto a reserve; it is never inferred.
//
// For any amountIn > 0 and feeRate in [0,1) the output satisfies
// 0 < amountOut < reserveOut: a single trade can approach but never drain
// the output reserve.
func Simulate(pool domain.PoolState, amountIn, feeRate float64, dir domain.SwapDirection) (*domain.SwapResult, error) {
	if pool.ReserveBase <= 0 || pool.ReserveQuote <= 0 {
		return nil, ErrInvalidReserves
	}
	if amountIn <= 0 {
		return nil, ErrInvalidAmount
	}
	if feeRate < 0 || feeRate >= 1 {
		return nil, ErrInvalidFee
	}

	var reserveIn, reserveOut float64
	switch dir {
	case domain.SwapBaseIn:
		reserveIn, reserveOut = pool.ReserveBase, pool.ReserveQuote
	case domain.SwapQuoteIn:
		reserveIn, reserveOut = pool.ReserveQuote, pool.ReserveBase
	default:
		return nil, ErrInvalidDirection
	}

	effectiveIn := amountIn * (1 - feeRate)
	k := reserveIn * reserveOut
	newReserveIn := reserveIn + effectiveIn
	newReserveOut := k / newReserveIn
	amountOut := reserveOut - newReserveOut

	spotPrice := reserveOut / reserveIn
	executionPrice := amountOut / effectiveIn
	priceImpact := 1 - executionPrice/spotPrice

	return &domain.SwapResult{
		Direction:        dir,
		AmountIn:         amountIn,
		EffectiveIn:      effectiveIn,
		AmountOut:        amountOut,
		ReserveInBefore:  reserveIn,
		ReserveOutBefore: reserveOut,
		ReserveInAfter:   newReserveIn,
		ReserveOutAfter:  newReserveOut,
		SpotPrice:        spotPrice,
		ExecutionPrice:   executionPrice,
		PriceImpactPct:   priceImpact * 100,
	}, nil
}
