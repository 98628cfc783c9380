package classify

import (
	"strings"

	"token-holder-lab/internal/domain"
)

// Rule is one classification predicate. Rules are evaluated in slice order
// and the first match wins, so priority lives in the rule list, not in the
// predicates themselves.
type Rule struct {
	Category domain.Category
	Match    func(r *domain.HolderRecord, ctx domain.SupplyContext) bool
}

// DefaultExchangeTypes are the provider type codes treated as exchange
// custody in the reference labeling source.
func DefaultExchangeTypes() map[string]struct{} {
	return map[string]struct{}{
		"cex":   {},
		"dex":   {},
		"yield": {},
		"misc":  {},
	}
}

// DefaultExchangeKeywords are label/name substrings that mark custodial
// exchange wallets.
func DefaultExchangeKeywords() []string {
	return []string{
		"hot wallet",
		"cold wallet",
		"deposit",
	}
}

// DefaultExchangeBrands are recognized exchange entity names. Matching is
// case-insensitive on entity name and label.
func DefaultExchangeBrands() []string {
	return []string{
		"binance",
		"coinbase",
		"kraken",
		"okx",
		"bybit",
		"gate.io",
		"kucoin",
		"htx",
		"bitget",
		"mexc",
	}
}

// LockedAddressRule classifies wallets from the caller's locked set. It must
// run first: a locked wallet with an exchange-like label is still locked.
func LockedAddressRule() Rule {
	return Rule{
		Category: domain.CategoryLockedTeamVesting,
		Match: func(r *domain.HolderRecord, ctx domain.SupplyContext) bool {
			return ctx.IsLocked(r.Address)
		},
	}
}

// BurnAddressRule classifies the burn address. Burned balances are destroyed
// supply, never a holder, whatever the provider labels them.
func BurnAddressRule() Rule {
	return Rule{
		Category: domain.CategoryBurn,
		Match: func(r *domain.HolderRecord, _ domain.SupplyContext) bool {
			return domain.IsBurnAddress(r.Address)
		},
	}
}

// EntityTypeRule classifies wallets whose provider type code is in types.
// Matching is case-insensitive on both sides.
func EntityTypeRule(types map[string]struct{}) Rule {
	lowered := make(map[string]struct{}, len(types))
	for t := range types {
		lowered[strings.ToLower(t)] = struct{}{}
	}
	return Rule{
		Category: domain.CategoryExchange,
		Match: func(r *domain.HolderRecord, _ domain.SupplyContext) bool {
			_, ok := lowered[strings.ToLower(r.EntityTypeOf())]
			return ok
		},
	}
}

// LabelHeuristicRule classifies wallets whose entity label or name contains
// any of the given substrings (case-insensitive).
func LabelHeuristicRule(keywords []string) Rule {
	lowered := make([]string, len(keywords))
	for i, k := range keywords {
		lowered[i] = strings.ToLower(k)
	}
	return Rule{
		Category: domain.CategoryExchange,
		Match: func(r *domain.HolderRecord, _ domain.SupplyContext) bool {
			label := strings.ToLower(r.EntityLabelOf())
			name := strings.ToLower(r.EntityNameOf())
			for _, k := range lowered {
				if k == "" {
					continue
				}
				if strings.Contains(label, k) || strings.Contains(name, k) {
					return true
				}
			}
			return false
		},
	}
}

// DefaultRules returns the standard rule order: locked addresses first, then
// the burn address, then provider type codes, then label heuristics, then
// exchange brands.
func DefaultRules() []Rule {
	return []Rule{
		LockedAddressRule(),
		BurnAddressRule(),
		EntityTypeRule(DefaultExchangeTypes()),
		LabelHeuristicRule(DefaultExchangeKeywords()),
		LabelHeuristicRule(DefaultExchangeBrands()),
	}
}
