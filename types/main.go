package types

import "github.com/shopspring/decimal"

// Depth is the cached orderbook payload pushed to websocket clients and
// stored in redis per market.
type Depth struct {
	Asks     [][]decimal.Decimal `json:"asks"`
	Bids     [][]decimal.Decimal `json:"bids"`
	Sequence uint64              `json:"sequence"`
}
