package domain

// PoolState is a snapshot of a two-asset constant-product pool.
type PoolState struct {
	PoolAddress  string
	BaseSymbol   string
	QuoteSymbol  string
	ReserveBase  float64 // must be > 0
	ReserveQuote float64 // must be > 0
	FeeRate      float64 // fraction in [0,1), applied to the input amount
}

// SwapDirection selects which reserve the input token maps to. Reserve order
// is otherwise ambiguous, so callers must state it explicitly.
type SwapDirection string

const (
	// SwapBaseIn swaps base for quote: base reserve grows.
	SwapBaseIn SwapDirection = "BASE_IN"
	// SwapQuoteIn swaps quote for base: quote reserve grows.
	SwapQuoteIn SwapDirection = "QUOTE_IN"
)

// IsValid checks if the direction is a valid value.
func (d SwapDirection) IsValid() bool {
	return d == SwapBaseIn || d == SwapQuoteIn
}

// SwapResult is the full post-trade picture of a simulated swap.
type SwapResult struct {
	Direction SwapDirection

	AmountIn    float64 // as requested by the caller
	EffectiveIn float64 // amountIn after the input fee
	AmountOut   float64

	ReserveInBefore  float64
	ReserveOutBefore float64
	ReserveInAfter   float64
	ReserveOutAfter  float64

	// SpotPrice is reserveOut/reserveIn before the trade.
	SpotPrice float64
	// ExecutionPrice is the realized average price, amountOut per effective
	// input unit.
	ExecutionPrice float64
	// PriceImpactPct is 1 - executionPrice/spotPrice, as a percentage.
	PriceImpactPct float64
}
