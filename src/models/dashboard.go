package models

// MDashboardRow is one line of the dashboard summary: the latest warehouse
// snapshot for a ticker, patched with the live tick when the hub holds one.
type MDashboardRow struct {
	Ticker      string   `json:"ticker"`
	TradeDate   string   `json:"trade_date"`
	Close       float64  `json:"close"`
	DailyReturn *float64 `json:"daily_return,omitempty"`
	RSI14       *float64 `json:"rsi_14,omitempty"`
	Live        bool     `json:"live"`
}
