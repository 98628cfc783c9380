package holders

// topHoldersResponse mirrors the labeling provider's top-holders payload.
// Holder lists arrive bucketed (e.g. per chain) under addressTopHolders;
// buckets are concatenated in response order.
type topHoldersResponse struct {
	AddressTopHolders map[string][]holderRow `json:"addressTopHolders"`
}

// holderRow is one holder entry as returned by the provider. The address
// field nests entity and label metadata.
type holderRow struct {
	Address  addressInfo `json:"address"`
	Balance  float64     `json:"balance"`
	PctOfCap float64     `json:"pctOfCap"`
}

type addressInfo struct {
	Address string      `json:"address"`
	Entity  *entityInfo `json:"arkhamEntity,omitempty"`
	Label   *labelInfo  `json:"arkhamLabel,omitempty"`
}

type entityInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type labelInfo struct {
	Name string `json:"name"`
}
