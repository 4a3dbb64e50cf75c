package domain

// Operation names a call across the core boundary
type Operation string

const (
	OpGetSymbols         Operation = "getSymbols"
	OpGetOrderbook       Operation = "getOrderbook"
	OpGetRecentTrades    Operation = "getRecentTrades"
	OpGetAssetIcons      Operation = "getAssetIcons"
	OpListCoins          Operation = "listCoins"
	OpGetCoinMeta        Operation = "getCoinMeta"
	OpGetCoinHistory     Operation = "getCoinHistory"
	OpGetAggregatedCoins Operation = "getAggregatedCoins"
	OpGetTopMovers       Operation = "getTopMovers"
)

func (o Operation) String() string {
	return string(o)
}
