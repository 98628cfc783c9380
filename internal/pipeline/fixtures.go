package pipeline

import (
	"context"
	"fmt"

	"token-holder-lab/internal/domain"
)

// Fixture token parameters. The distribution reproduces a real mid-cap
// profile: top-10 at 42.78%, top-20 at 50.14%, top-50 at 58.60%, HHI 532.48,
// two holders above the 5% whale line.
const (
	FixtureToken       = "0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82"
	FixtureChain       = domain.ChainBSC
	FixtureTotalSupply = 1e9
	FixtureLocked      = 7.9e8
)

// FixtureLockedAddresses are the team vesting wallets in the fixture set.
var FixtureLockedAddresses = []string{
	"0xaaaa000000000000000000000000000000000001",
	"0xaaaa000000000000000000000000000000000002",
}

// fixtureSharePcts lists each holder's percent of circulating supply,
// largest first.
func fixtureSharePcts() []float64 {
	shares := []float64{
		20.83378153208076,
		7.266218467919241,
		4.28, 2.9, 2.1, 1.5, 1.2, 1.0, 0.9, 0.8,
		0.78, 0.77, 0.76, 0.75, 0.74, 0.73, 0.72, 0.71, 0.70, 0.70,
	}
	for k := 0; k < 30; k++ {
		shares = append(shares, 0.456-0.012*float64(k))
	}
	for k := 0; k < 50; k++ {
		shares = append(shares, 0.10-0.0015*float64(k))
	}
	return shares
}

// FixtureSupplyContext builds the supply context matching FixtureHolders.
func FixtureSupplyContext() domain.SupplyContext {
	return domain.NewSupplyContext(FixtureTotalSupply, FixtureLocked,
		FixtureLockedAddresses, nil)
}

// FixtureHolders returns the demonstration holder set: 100 circulating
// holders plus two locked team wallets. The two largest circulating holders
// carry exchange labels so classification has something to chew on without
// changing any aggregate (exchanges stay in the denominator).
func FixtureHolders() []domain.HolderRecord {
	circulating := FixtureTotalSupply - FixtureLocked

	var records []domain.HolderRecord
	for i, pct := range fixtureSharePcts() {
		rec := domain.HolderRecord{
			Address: fmt.Sprintf("0x%040x", i+1),
			Balance: pct / 100 * circulating,
		}
		switch i {
		case 0:
			rec.EntityName = strPtr("Binance")
			rec.EntityType = strPtr("cex")
			rec.EntityLabel = strPtr("Binance Hot Wallet")
		case 1:
			rec.EntityName = strPtr("PancakeSwap")
			rec.EntityType = strPtr("dex")
		}
		records = append(records, rec)
	}

	records = append(records,
		domain.HolderRecord{
			Address:    FixtureLockedAddresses[0],
			Balance:    4.0e8,
			EntityName: strPtr("Team Vesting"),
		},
		domain.HolderRecord{
			Address:    FixtureLockedAddresses[1],
			Balance:    3.9e8,
			EntityName: strPtr("Team Vesting"),
		},
	)
	return records
}

// FixtureSource is a HolderSource backed by the fixture set.
type FixtureSource struct{}

// FetchTopHolders returns the fixture holders regardless of token and chain.
func (FixtureSource) FetchTopHolders(_ context.Context, _ domain.Chain, _ string) ([]domain.HolderRecord, error) {
	return FixtureHolders(), nil
}

func strPtr(s string) *string { return &s }
