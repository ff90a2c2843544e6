package matching

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the side a taker order matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

type OrderType string

const (
	TypeLimit  OrderType = "limit"
	TypeMarket OrderType = "market"
)

// TimeInForce is carried on every resting order. Only GTC semantics are
// implemented by the matching loop: limit remainders always rest in the book.
// IOC and FOK are declared for the wire format but not enforced.
type TimeInForce string

const (
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

type OrderStatus string

const (
	StatusOpen            OrderStatus = "open"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCancelled       OrderStatus = "cancelled"
	StatusRejected        OrderStatus = "rejected"
)

// OrderEntry is a resting order resident in the book. RemainingAmount is
// decremented in place by the matching loop; the entry is removed the moment
// it reaches zero. Side and Price never change after creation.
type OrderEntry struct {
	ID              uuid.UUID       `json:"id"`
	UserAddress     string          `json:"user_address"`
	Price           decimal.Decimal `json:"price"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Side            Side            `json:"side"`
	TimeInForce     TimeInForce     `json:"time_in_force"`
	Timestamp       int64           `json:"timestamp"`
}

func (o *OrderEntry) Filled() bool {
	return !o.RemainingAmount.IsPositive()
}

type FeeConfig struct {
	MakerFeeRate decimal.Decimal `json:"maker_fee_rate"`
	TakerFeeRate decimal.Decimal `json:"taker_fee_rate"`
}

// DefaultFeeConfig returns the exchange-wide fallback rates,
// 0.02% maker / 0.05% taker.
func DefaultFeeConfig() FeeConfig {
	return FeeConfig{
		MakerFeeRate: decimal.New(2, -4),
		TakerFeeRate: decimal.New(5, -4),
	}
}
