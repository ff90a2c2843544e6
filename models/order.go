package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/gookit/validate"
	"github.com/shopspring/decimal"

	"github.com/perpex/perpex/config"
	"github.com/perpex/perpex/matching"
	"github.com/perpex/perpex/models/concerns"
)

var precision_validator = &concerns.PrecisionValidator{}

const (
	// StatusPending is the row state before the engine has answered.
	StatusPending = "pending"
)

type Order struct {
	ID           uuid.UUID           `json:"id" gorm:"primaryKey"`
	Symbol       string              `json:"symbol" validate:"required"`
	UserAddress  string              `json:"user_address" validate:"required"`
	Side         string              `json:"side" validate:"SideValidator"`
	OrdType      string              `json:"ord_type" validate:"OrdTypeValidator"`
	Status       string              `json:"status"`
	Price        decimal.NullDecimal `json:"price" validate:"PriceValidator"`
	Amount       decimal.Decimal     `json:"amount" validate:"AmountValidator"`
	FilledAmount decimal.Decimal     `json:"filled_amount" gorm:"default:0.0"`
	AvgFillPrice decimal.NullDecimal `json:"avg_fill_price"`
	Leverage     uint32              `json:"leverage" gorm:"default:1"`
	TimeInForce  string              `json:"time_in_force" gorm:"default:GTC"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (o Order) Message() map[string]string {
	invalid_message := "market.order.invalid_{field}"

	return validate.MS{
		"required": invalid_message,
	}
}

func (o Order) SideValidator(Side string) bool {
	return matching.Side(Side).Valid()
}

func (o Order) OrdTypeValidator(OrdType string) bool {
	return OrdType == string(matching.TypeLimit) || OrdType == string(matching.TypeMarket)
}

func (o Order) PriceValidator(Price decimal.NullDecimal) bool {
	if o.OrdType == string(matching.TypeMarket) {
		return true // skip
	}

	dPrice := Price.Decimal

	if !Price.Valid || dPrice.LessThanOrEqual(decimal.Zero) {
		return false
	}

	if dPrice.GreaterThan(matching.MaxPrice) {
		return false
	}

	market := o.Market()

	return precision_validator.LessThanOrEqTo(dPrice, int32(market.PricePrecision))
}

func (o Order) AmountValidator(Amount decimal.Decimal) bool {
	if Amount.LessThanOrEqual(decimal.Zero) {
		return false
	}

	market := o.Market()

	if Amount.LessThan(market.MinAmount) && market.MinAmount.IsPositive() {
		return false
	}

	return precision_validator.LessThanOrEqTo(Amount, int32(market.AmountPrecision))
}

func (o *Order) Market() *Market {
	market := &Market{}

	config.DataBase.First(&market, "symbol = ?", o.Symbol)

	return market
}

func (o *Order) Validate() error {
	v := validate.Struct(o)

	if !v.Validate() {
		return v.Errors.OneError()
	}

	return nil
}

func (o *Order) RemainingAmount() decimal.Decimal {
	return o.Amount.Sub(o.FilledAmount)
}

// ToOrderEntry builds the matching-engine form of a resting order for
// startup rehydration.
func (o *Order) ToOrderEntry() *matching.OrderEntry {
	return &matching.OrderEntry{
		ID:              o.ID,
		UserAddress:     o.UserAddress,
		Price:           o.Price.Decimal,
		OriginalAmount:  o.Amount,
		RemainingAmount: o.RemainingAmount(),
		Side:            matching.Side(o.Side),
		TimeInForce:     matching.TimeInForce(o.TimeInForce),
		Timestamp:       o.CreatedAt.UnixMilli(),
	}
}
