package reporting

import "time"

// Report is the rendered view of one concentration analysis run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	Token       string
	Chain       string

	// Supply summary
	TotalSupply       float64
	LockedSupply      float64
	CirculatingSupply float64
	HolderCount       int

	// Holder table (ranked by balance desc, locked excluded)
	Rows []HolderRow

	// Concentration
	TopN           []TopNRow // sorted by N ascending
	HHI            float64
	WhaleThreshold float64
	FlaggedCount   int
}

// HolderRow is one ranked holder in the report table.
type HolderRow struct {
	Rank        int
	Address     string
	EntityName  string
	EntityLabel string
	Category    string
	Balance     float64
	SharePct    float64 // share of circulating supply, percent
	Flagged     bool
	MarketMaker bool
}

// TopNRow is one cumulative top-N concentration cut.
type TopNRow struct {
	N                  int
	CumulativeSharePct float64
}
