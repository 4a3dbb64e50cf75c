package domain

// TopMoversParams requests the US equity top movers. Alpha Vantage ranks the
// whole market, so there is nothing to filter on.
type TopMoversParams struct{}

// TopMovers is the daily gainers, losers and most traded tickers
type TopMovers struct {
	Metadata           string       `json:"metadata"`
	LastUpdated        string       `json:"last_updated"`
	TopGainers         []StockMover `json:"top_gainers"`
	TopLosers          []StockMover `json:"top_losers"`
	MostActivelyTraded []StockMover `json:"most_actively_traded"`
}

// StockMover is one ticker of a top movers list. Values stay wire strings.
type StockMover struct {
	Ticker           string `json:"ticker"`
	Price            string `json:"price"`
	ChangeAmount     string `json:"change_amount"`
	ChangePercentage string `json:"change_percentage"`
	Volume           string `json:"volume"`
}
