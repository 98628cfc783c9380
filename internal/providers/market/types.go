package market

// poolResponse mirrors the pool explorer's cached pool payload.
type poolResponse struct {
	Token0    tokenRef `json:"token0"`
	Token1    tokenRef `json:"token1"`
	TVLToken0 string   `json:"tvlToken0"`
	TVLToken1 string   `json:"tvlToken1"`
	TVLUSD    string   `json:"tvlUSD"`
	FeeTier   int      `json:"feeTier"` // hundredths of a bip, e.g. 2500 = 0.25%
}

type tokenRef struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

// PoolData is the normalized pool snapshot handed to the swap simulator.
type PoolData struct {
	PoolAddress  string
	Token0ID     string
	Token1ID     string
	Token0Symbol string
	Token1Symbol string
	Reserve0     float64
	Reserve1     float64
	TVLUSD       float64
	FeeRate      float64
}

// tokenPriceResponse mirrors the market-data provider's simple token price
// payload: contract address -> price fields.
type tokenPriceResponse map[string]tokenPriceEntry

type tokenPriceEntry struct {
	USD          float64 `json:"usd"`
	USDMarketCap float64 `json:"usd_market_cap"`
}

// TokenData is normalized token market data. Supply is derived as
// marketCap/price when both are present, else zero.
type TokenData struct {
	Address   string
	PriceUSD  float64
	MarketCap float64
	Supply    float64
}

// reserveUpdate is one pool reserve tick on the reserve stream.
type reserveUpdate struct {
	Pool     string  `json:"pool"`
	Reserve0 float64 `json:"reserve0"`
	Reserve1 float64 `json:"reserve1"`
	Ts       int64   `json:"ts"`
}

// ReserveTick is a live reserve update delivered by the stream.
type ReserveTick struct {
	Pool      string
	Reserve0  float64
	Reserve1  float64
	Timestamp int64
}
