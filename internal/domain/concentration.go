package domain

// ConcentrationReport is the output of one concentration analysis run over a
// classified holder set. Locked team/vesting wallets and the burn address are
// excluded everywhere; exchange wallets stay in the denominator and in the
// flagged set. Per-holder shares therefore do not sum to 100% of circulating
// supply. That is the business rule, not an accounting error.
type ConcentrationReport struct {
	CirculatingSupply float64

	// PerHolderShare maps address to share of circulating supply in [0,1],
	// over included (non-locked) holders only.
	PerHolderShare map[string]float64

	// Ranked is the included holder set sorted by balance descending,
	// ties broken by address ascending.
	Ranked []ClassifiedHolder

	// TopNShares maps N to the cumulative share of the first min(N, count)
	// ranked holders.
	TopNShares map[int]float64

	// HHI is the Herfindahl-Hirschman Index on the conventional 0-10000
	// scale: sum of squared percentage shares over included holders.
	HHI float64

	// Flagged holds addresses whose individual share exceeds the whale
	// threshold.
	Flagged map[string]struct{}

	// WhaleThreshold is the share threshold used to populate Flagged.
	WhaleThreshold float64
}

// IsFlagged reports whether addr was flagged as a whale.
func (r *ConcentrationReport) IsFlagged(addr string) bool {
	_, ok := r.Flagged[NormalizeAddress(addr)]
	return ok
}
