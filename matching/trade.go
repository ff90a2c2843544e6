package matching

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TradeExecution records one fill produced by a match step. Created once,
// never mutated.
type TradeExecution struct {
	TradeID      uuid.UUID       `json:"trade_id"`
	MakerOrderID uuid.UUID       `json:"maker_order_id"`
	TakerOrderID uuid.UUID       `json:"taker_order_id"`
	MakerAddress string          `json:"maker_address"`
	Price        decimal.Decimal `json:"price"`
	Amount       decimal.Decimal `json:"amount"`
	MakerFee     decimal.Decimal `json:"maker_fee"`
	TakerFee     decimal.Decimal `json:"taker_fee"`
	Timestamp    int64           `json:"timestamp"`
}

func (t *TradeExecution) Total() decimal.Decimal {
	return t.Amount.Mul(t.Price)
}

// TradeEvent is the broadcast form of a fill, carrying both parties.
// Side is the taker's side.
type TradeEvent struct {
	Symbol       string          `json:"symbol"`
	TradeID      uuid.UUID       `json:"trade_id"`
	MakerOrderID uuid.UUID       `json:"maker_order_id"`
	TakerOrderID uuid.UUID       `json:"taker_order_id"`
	MakerAddress string          `json:"maker_address"`
	TakerAddress string          `json:"taker_address"`
	Side         Side            `json:"side"`
	Price        decimal.Decimal `json:"price"`
	Amount       decimal.Decimal `json:"amount"`
	MakerFee     decimal.Decimal `json:"maker_fee"`
	TakerFee     decimal.Decimal `json:"taker_fee"`
	Timestamp    int64           `json:"timestamp"`
}

// MatchResult is returned to the submitter. The engine keeps no reference
// to it after return.
type MatchResult struct {
	OrderID         uuid.UUID           `json:"order_id"`
	Status          OrderStatus         `json:"status"`
	FilledAmount    decimal.Decimal     `json:"filled_amount"`
	RemainingAmount decimal.Decimal     `json:"remaining_amount"`
	AveragePrice    decimal.NullDecimal `json:"average_price"`
	Trades          []TradeExecution    `json:"trades"`
}

// OrderbookSnapshot is a bounded-depth aggregated view of one book. Each
// row is [price, total remaining amount at that level], bids best-first,
// asks best-first.
type OrderbookSnapshot struct {
	Symbol    string              `json:"symbol"`
	Bids      [][]decimal.Decimal `json:"bids"`
	Asks      [][]decimal.Decimal `json:"asks"`
	LastPrice decimal.NullDecimal `json:"last_price"`
	Sequence  uint64              `json:"sequence"`
	Timestamp int64               `json:"timestamp"`
}

// OrderbookUpdate is broadcast after any change to the book.
type OrderbookUpdate struct {
	Symbol    string              `json:"symbol"`
	Bids      [][]decimal.Decimal `json:"bids"`
	Asks      [][]decimal.Decimal `json:"asks"`
	Sequence  uint64              `json:"sequence"`
	Timestamp int64               `json:"timestamp"`
}
