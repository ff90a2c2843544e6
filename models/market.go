package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/perpex/perpex/config"
	"github.com/perpex/perpex/matching"
)

// Market is one perpetual contract. Enabled markets define the engine's
// symbol set at process start; adding a market requires a restart.
type Market struct {
	Symbol          string          `json:"symbol" gorm:"primaryKey"`
	State           string          `json:"state"`
	PricePrecision  int             `json:"price_precision"`
	AmountPrecision int             `json:"amount_precision"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	MaxLeverage     uint32          `json:"max_leverage"`
	MakerFee        decimal.Decimal `json:"maker_fee" gorm:"default:0.0002"`
	TakerFee        decimal.Decimal `json:"taker_fee" gorm:"default:0.0005"`
	Position        int32           `json:"position"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func EnabledMarkets() []Market {
	var markets []Market

	config.DataBase.Where("state = ?", "enabled").Order("position asc").Find(&markets)

	return markets
}

func (m *Market) FeeConfig() matching.FeeConfig {
	return matching.FeeConfig{
		MakerFeeRate: m.MakerFee,
		TakerFeeRate: m.TakerFee,
	}
}
