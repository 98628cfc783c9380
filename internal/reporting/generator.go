// Package reporting builds and renders concentration analysis reports as
// CSV and Markdown.
package reporting

import (
	"sort"
	"time"

	"token-holder-lab/internal/domain"
)

// Generator assembles a Report from analysis output.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Build assembles a Report from a supply context and a concentration result.
func (g *Generator) Build(token string, chain domain.Chain, supply domain.SupplyContext, result *domain.ConcentrationReport) *Report {
	rows := make([]HolderRow, 0, len(result.Ranked))
	for i, h := range result.Ranked {
		rows = append(rows, HolderRow{
			Rank:        i + 1,
			Address:     h.Address,
			EntityName:  h.EntityNameOf(),
			EntityLabel: h.EntityLabelOf(),
			Category:    string(h.Category),
			Balance:     h.Balance,
			SharePct:    result.PerHolderShare[domain.NormalizeAddress(h.Address)] * 100,
			Flagged:     result.IsFlagged(h.Address),
			MarketMaker: h.MarketMaker,
		})
	}

	topN := make([]TopNRow, 0, len(result.TopNShares))
	for n, share := range result.TopNShares {
		topN = append(topN, TopNRow{N: n, CumulativeSharePct: share * 100})
	}
	sort.Slice(topN, func(i, j int) bool { return topN[i].N < topN[j].N })

	return &Report{
		GeneratedAt:       g.now(),
		Token:             token,
		Chain:             chain.String(),
		TotalSupply:       supply.TotalSupply,
		LockedSupply:      supply.LockedSupply,
		CirculatingSupply: result.CirculatingSupply,
		HolderCount:       len(result.Ranked),
		Rows:              rows,
		TopN:              topN,
		HHI:               result.HHI,
		WhaleThreshold:    result.WhaleThreshold,
		FlaggedCount:      len(result.Flagged),
	}
}
