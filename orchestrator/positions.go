package orchestrator

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/perpex/perpex/config"
	"github.com/perpex/perpex/matching"
	"github.com/perpex/perpex/models"
)

const PositionUpdaterSubject = "position_updater"

// PositionIncrease is the delta handed to the position service after a
// fill. Collateral is the margin locked for the increase, notional divided
// by leverage. SkipMinSize is always set for engine-originated increases
// since the order already passed market minimums.
type PositionIncrease struct {
	UserAddress string          `json:"user_address"`
	Symbol      string          `json:"symbol"`
	Side        matching.Side   `json:"side"`
	Amount      decimal.Decimal `json:"amount"`
	Price       decimal.Decimal `json:"price"`
	Leverage    uint32          `json:"leverage"`
	Collateral  decimal.Decimal `json:"collateral"`
	SkipMinSize bool            `json:"skip_min_size"`
}

type PositionUpdater interface {
	IncreasePosition(increase PositionIncrease) error
}

// NatsPositionUpdater hands position deltas to the position service over
// NATS. Delivery is fire-and-forget; the position service reconciles
// against persisted trades on restart.
type NatsPositionUpdater struct{}

func (NatsPositionUpdater) IncreasePosition(increase PositionIncrease) error {
	payload, err := json.Marshal(increase)
	if err != nil {
		return err
	}

	return config.Nats.Publish(PositionUpdaterSubject, payload)
}

// buildPositionIncreases derives the per-side position deltas for one
// fill: the taker's position grows on the trade side, the maker's on the
// opposite side, each at the leverage of its own order row. A side whose
// row could not be loaded is skipped rather than given a fabricated
// leverage.
func buildPositionIncreases(event *matching.TradeEvent, makerOrder *models.Order, takerOrder *models.Order) []PositionIncrease {
	increases := make([]PositionIncrease, 0, 2)

	if makerOrder != nil {
		increases = append(increases, PositionIncrease{
			UserAddress: event.MakerAddress,
			Symbol:      event.Symbol,
			Side:        event.Side.Opposite(),
			Amount:      event.Amount,
			Price:       event.Price,
			Leverage:    makerOrder.Leverage,
			Collateral:  CollateralFor(event.Amount, event.Price, makerOrder.Leverage),
			SkipMinSize: true,
		})
	}

	if takerOrder != nil {
		increases = append(increases, PositionIncrease{
			UserAddress: event.TakerAddress,
			Symbol:      event.Symbol,
			Side:        event.Side,
			Amount:      event.Amount,
			Price:       event.Price,
			Leverage:    takerOrder.Leverage,
			Collateral:  CollateralFor(event.Amount, event.Price, takerOrder.Leverage),
			SkipMinSize: true,
		})
	}

	return increases
}

// CollateralFor computes the margin locked for a fill: amount * price / leverage.
func CollateralFor(amount decimal.Decimal, price decimal.Decimal, leverage uint32) decimal.Decimal {
	if leverage == 0 {
		leverage = 1
	}

	return amount.Mul(price).Div(decimal.NewFromInt(int64(leverage)))
}
