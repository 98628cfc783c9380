package domain

// HolderSnapshot is one persisted pull of a token's top holders.
// Corresponds to holder_snapshots table in PostgreSQL; its records live in
// holder_records keyed by (snapshot_id, address).
type HolderSnapshot struct {
	SnapshotID  string // PRIMARY KEY, deterministic hash
	Token       string // token identifier at the labeling provider
	Chain       Chain
	TakenAt     int64 // Unix timestamp in milliseconds
	HolderCount int
	Records     []HolderRecord
	CreatedAt   int64 // record creation timestamp (ms)
}

// ConcentrationPoint is one analysis result flattened for the timeseries
// store, so concentration drift is queryable over time per token.
// Corresponds to concentration_timeseries table in ClickHouse.
type ConcentrationPoint struct {
	SnapshotID        string
	Token             string
	Chain             Chain
	TakenAt           int64 // Unix timestamp in milliseconds
	CirculatingSupply float64
	HolderCount       int // included (non-locked) holders
	Top10Share        float64
	Top20Share        float64
	Top50Share        float64
	HHI               float64
	FlaggedCount      int
	WhaleThreshold    float64
}
