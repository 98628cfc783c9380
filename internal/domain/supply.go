package domain

import "strings"

// SupplyContext carries the manually curated supply figures for one token.
// Locked addresses are team/vesting wallets whose balances are part of
// LockedSupply; market-maker addresses are a disclosed set that is reported
// but never inferred.
type SupplyContext struct {
	TotalSupply          float64
	LockedSupply         float64
	LockedAddresses      map[string]struct{} // normalized (lowercased) addresses
	MarketMakerAddresses map[string]struct{} // normalized (lowercased) addresses
}

// NewSupplyContext builds a SupplyContext, normalizing address sets so that
// membership checks are checksum-insensitive.
func NewSupplyContext(totalSupply, lockedSupply float64, lockedAddrs, marketMakerAddrs []string) SupplyContext {
	ctx := SupplyContext{
		TotalSupply:          totalSupply,
		LockedSupply:         lockedSupply,
		LockedAddresses:      make(map[string]struct{}, len(lockedAddrs)),
		MarketMakerAddresses: make(map[string]struct{}, len(marketMakerAddrs)),
	}
	for _, a := range lockedAddrs {
		ctx.LockedAddresses[NormalizeAddress(a)] = struct{}{}
	}
	for _, a := range marketMakerAddrs {
		ctx.MarketMakerAddresses[NormalizeAddress(a)] = struct{}{}
	}
	return ctx
}

// CirculatingSupply is total supply minus explicitly locked allocations.
func (c SupplyContext) CirculatingSupply() float64 {
	return c.TotalSupply - c.LockedSupply
}

// IsLocked reports whether addr is in the locked set (checksum-insensitive).
func (c SupplyContext) IsLocked(addr string) bool {
	_, ok := c.LockedAddresses[NormalizeAddress(addr)]
	return ok
}

// IsMarketMaker reports whether addr is in the disclosed market-maker set.
func (c SupplyContext) IsMarketMaker(addr string) bool {
	_, ok := c.MarketMakerAddresses[NormalizeAddress(addr)]
	return ok
}

// BurnAddress is the EVM zero address. Tokens sent there are destroyed, so
// a balance on it is never a holder.
const BurnAddress = "0x0000000000000000000000000000000000000000"

// IsBurnAddress reports whether addr is the burn address.
func IsBurnAddress(addr string) bool {
	return NormalizeAddress(addr) == BurnAddress
}

// NormalizeAddress lowercases an address for comparison. EVM addresses differ
// only in checksum casing; case-sensitive address schemes must be compared as
// provided by a single source, which holds for snapshot data.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
