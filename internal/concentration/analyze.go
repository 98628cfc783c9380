// Package concentration computes circulating-supply concentration statistics
// over a classified holder set: per-holder shares, cumulative top-N shares,
// the Herfindahl-Hirschman Index, and whale flags.
package concentration

import (
	"errors"
	"sort"

	"token-holder-lab/internal/domain"
)

// DefaultWhaleThreshold is the share of circulating supply above which a
// holder is flagged.
const DefaultWhaleThreshold = 0.05

var (
	// ErrInvalidContext is returned when circulating supply is not positive.
	ErrInvalidContext = errors.New("invalid supply context: circulating supply must be > 0")

	// ErrEmptyInput is returned when no holders remain after excluding locked
	// team/vesting wallets and the burn address; shares and HHI are undefined
	// on an empty set.
	ErrEmptyInput = errors.New("empty input: no holders left after exclusion")
)

// Analyze produces a ConcentrationReport for the classified set.
//
// Locked team/vesting wallets and the burn address are excluded from every
// statistic: locked balances are supply, not float, and burned balances are
// destroyed. Exchange wallets stay in the denominator and are eligible for
// whale flags, so per-holder shares intentionally do not sum to 100%.
// whaleThreshold <= 0 falls back to DefaultWhaleThreshold.
func Analyze(classified []domain.ClassifiedHolder, ctx domain.SupplyContext, topNs []int, whaleThreshold float64) (*domain.ConcentrationReport, error) {
	circulating := ctx.CirculatingSupply()
	if circulating <= 0 {
		return nil, ErrInvalidContext
	}
	if whaleThreshold <= 0 {
		whaleThreshold = DefaultWhaleThreshold
	}

	included := make([]domain.ClassifiedHolder, 0, len(classified))
	for _, h := range classified {
		if h.Category == domain.CategoryLockedTeamVesting || h.Category == domain.CategoryBurn {
			continue
		}
		// Excluded by address too, so a custom rule set without a burn rule
		// cannot rank destroyed supply.
		if domain.IsBurnAddress(h.Address) {
			continue
		}
		included = append(included, h)
	}
	if len(included) == 0 {
		return nil, ErrEmptyInput
	}

	// Balance descending, address ascending on ties. Top-N cuts must be
	// reproducible across runs regardless of ingestion order.
	sort.Slice(included, func(i, j int) bool {
		if included[i].Balance != included[j].Balance {
			return included[i].Balance > included[j].Balance
		}
		return included[i].Address < included[j].Address
	})

	report := &domain.ConcentrationReport{
		CirculatingSupply: circulating,
		PerHolderShare:    make(map[string]float64, len(included)),
		Ranked:            included,
		TopNShares:        make(map[int]float64, len(topNs)),
		Flagged:           make(map[string]struct{}),
		WhaleThreshold:    whaleThreshold,
	}

	shares := make([]float64, len(included))
	for i, h := range included {
		share := h.Balance / circulating
		shares[i] = share
		report.PerHolderShare[domain.NormalizeAddress(h.Address)] = share
		if share > whaleThreshold {
			report.Flagged[domain.NormalizeAddress(h.Address)] = struct{}{}
		}
		pct := share * 100
		report.HHI += pct * pct
	}

	for _, n := range topNs {
		if n <= 0 {
			continue
		}
		cut := n
		if cut > len(shares) {
			cut = len(shares)
		}
		sum := 0.0
		for _, s := range shares[:cut] {
			sum += s
		}
		report.TopNShares[n] = sum
	}

	return report, nil
}
