package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/perpex/perpex/config"
	"github.com/perpex/perpex/matching"
)

type Trade struct {
	ID           uuid.UUID       `json:"id" gorm:"primaryKey"`
	Symbol       string          `json:"symbol"`
	MakerOrderID uuid.UUID       `json:"maker_order_id"`
	TakerOrderID uuid.UUID       `json:"taker_order_id"`
	MakerAddress string          `json:"maker_address"`
	TakerAddress string          `json:"taker_address"`
	Side         string          `json:"side"`
	Price        decimal.Decimal `json:"price"`
	Amount       decimal.Decimal `json:"amount"`
	MakerFee     decimal.Decimal `json:"maker_fee" gorm:"default:0.0"`
	TakerFee     decimal.Decimal `json:"taker_fee" gorm:"default:0.0"`
	CreatedAt    time.Time       `json:"created_at"`
}

func TradeFromEvent(event *matching.TradeEvent) *Trade {
	return &Trade{
		ID:           event.TradeID,
		Symbol:       event.Symbol,
		MakerOrderID: event.MakerOrderID,
		TakerOrderID: event.TakerOrderID,
		MakerAddress: event.MakerAddress,
		TakerAddress: event.TakerAddress,
		Side:         string(event.Side),
		Price:        event.Price,
		Amount:       event.Amount,
		MakerFee:     event.MakerFee,
		TakerFee:     event.TakerFee,
		CreatedAt:    time.UnixMilli(event.Timestamp),
	}
}

func (t *Trade) Total() decimal.Decimal {
	return t.Amount.Mul(t.Price)
}

func (t *Trade) MakerOrder() (*Order, error) {
	order := &Order{}
	if err := config.DataBase.First(&order, "id = ?", t.MakerOrderID).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (t *Trade) TakerOrder() (*Order, error) {
	order := &Order{}
	if err := config.DataBase.First(&order, "id = ?", t.TakerOrderID).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (t *Trade) WriteToInflux() {
	price, _ := t.Price.Float64()
	amount, _ := t.Amount.Float64()
	total, _ := t.Total().Float64()

	tags := map[string]string{"symbol": t.Symbol}
	fields := map[string]interface{}{
		"id":         t.ID.String(),
		"price":      price,
		"amount":     amount,
		"total":      total,
		"taker_type": t.Side,
		"created_at": t.CreatedAt,
	}

	config.InfluxDB.NewPoint("trades", tags, fields)
}
