package domain

// HolderRecord is one raw row from a holder-labeling provider.
// Corresponds to holder_records table in PostgreSQL.
type HolderRecord struct {
	Address     string  // wallet address, unique within a snapshot
	Balance     float64 // token units, must be >= 0
	EntityName  *string // entity name as labeled by the provider (nullable)
	EntityLabel *string // free-text sub-label, e.g. "Hot Wallet", "Deposit" (nullable)
	EntityType  *string // provider type code, e.g. "cex", "dex" (nullable)
}

// Category is the derived classification of a holder. It is recomputed on
// every classification pass and never stored on the raw record.
type Category string

const (
	CategoryExchange          Category = "EXCHANGE"
	CategoryLockedTeamVesting Category = "LOCKED_TEAM_VESTING"
	CategoryBurn              Category = "BURN"
	CategoryUnclassified      Category = "UNCLASSIFIED"
)

// String returns the string representation of Category.
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is a valid value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryExchange, CategoryLockedTeamVesting, CategoryBurn, CategoryUnclassified:
		return true
	}
	return false
}

// ClassifiedHolder is a HolderRecord tagged with its category for one
// analysis run. Market-maker tagging is a caller-supplied annotation only;
// it never changes the category.
type ClassifiedHolder struct {
	HolderRecord
	Category    Category
	MarketMaker bool // address appears in the caller's market-maker set
}

// EntityTypeOf returns the record's entity type or "" when unset.
func (r *HolderRecord) EntityTypeOf() string {
	if r.EntityType == nil {
		return ""
	}
	return *r.EntityType
}

// EntityNameOf returns the record's entity name or "" when unset.
func (r *HolderRecord) EntityNameOf() string {
	if r.EntityName == nil {
		return ""
	}
	return *r.EntityName
}

// EntityLabelOf returns the record's entity label or "" when unset.
func (r *HolderRecord) EntityLabelOf() string {
	if r.EntityLabel == nil {
		return ""
	}
	return *r.EntityLabel
}
