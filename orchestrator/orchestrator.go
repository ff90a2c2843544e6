package orchestrator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/perpex/perpex/config"
	"github.com/perpex/perpex/matching"
	"github.com/perpex/perpex/models"
	"github.com/perpex/perpex/mq_client"
	"github.com/perpex/perpex/types"
)

// OrderFlowOrchestrator sits between the transports and the matching
// engine. Matching stays synchronous; everything durable (order rows,
// trade rows, influx points, position deltas, referral earnings, redis
// depth cache, websocket events) happens on the engine's broadcast
// streams, off the matching path.
type OrderFlowOrchestrator struct {
	engine    *matching.Engine
	db        *gorm.DB
	positions PositionUpdater

	tradeSub *matching.Subscription[matching.TradeEvent]
	depthSub *matching.Subscription[matching.OrderbookUpdate]
}

func NewOrderFlowOrchestrator(engine *matching.Engine, db *gorm.DB, positions PositionUpdater) *OrderFlowOrchestrator {
	return &OrderFlowOrchestrator{
		engine:    engine,
		db:        db,
		positions: positions,
	}
}

// Start subscribes to the engine streams and launches the persistence
// workers. Call once, before the first ProcessOrder.
func (o *OrderFlowOrchestrator) Start() {
	o.tradeSub = o.engine.SubscribeTrades()
	o.depthSub = o.engine.SubscribeOrderbook()

	go o.tradeWorker()
	go o.depthWorker()
}

// ProcessOrder validates, persists and matches one incoming order. The
// match result is returned synchronously; row updates ride on goroutines.
func (o *OrderFlowOrchestrator) ProcessOrder(order *models.Order) (*matching.MatchResult, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.Status = models.StatusPending
	if len(order.TimeInForce) == 0 {
		order.TimeInForce = string(matching.TimeInForceGTC)
	}

	result, err := o.engine.SubmitOrder(
		order.ID,
		order.Symbol,
		order.UserAddress,
		matching.Side(order.Side),
		matching.OrderType(order.OrdType),
		order.Amount,
		order.Price,
		order.Leverage,
	)
	if err != nil {
		return nil, err
	}

	order.Status = string(result.Status)
	order.FilledAmount = result.FilledAmount
	order.AvgFillPrice = result.AveragePrice

	go o.persistOrder(order)

	return result, nil
}

// CancelOrder removes a resting order and marks the row cancelled.
// Returns false without error when the order is no longer resident.
func (o *OrderFlowOrchestrator) CancelOrder(symbol string, orderID uuid.UUID, userAddress string) (bool, error) {
	removed, err := o.engine.CancelOrder(symbol, orderID, userAddress)
	if err != nil {
		return false, err
	}

	if !removed {
		return false, nil
	}

	go func() {
		result := o.db.Model(&models.Order{}).
			Where("id = ?", orderID).
			Updates(map[string]interface{}{"status": string(matching.StatusCancelled), "updated_at": time.Now()})
		if result.Error != nil {
			config.Logger.Errorf("Failed to mark order %s cancelled: %v", orderID, result.Error)
		}

		o.publishPrivateOrderEvent(userAddress, orderID, symbol, string(matching.StatusCancelled))
	}()

	return true, nil
}

// PersistTrade makes one fill durable and fans out its side effects.
// Idempotent on trade id, so a replay after a crash is safe.
func (o *OrderFlowOrchestrator) PersistTrade(event *matching.TradeEvent) error {
	trade := models.TradeFromEvent(event)

	result := o.db.Clauses(clause.OnConflict{DoNothing: true}).Create(trade)
	if result.Error != nil {
		return fmt.Errorf("%w: %v", matching.ErrDatabase, result.Error)
	}
	if result.RowsAffected == 0 {
		// Already persisted by an earlier run.
		return nil
	}

	trade.WriteToInflux()

	for _, order_id := range incrementalFillOrders(event) {
		o.applyFill(order_id, event.Amount)
	}

	maker_order, err := trade.MakerOrder()
	if err != nil {
		config.Logger.Warnf("Skipping maker position update, order %s not loadable: %v", event.MakerOrderID, err)
	}
	taker_order, err := trade.TakerOrder()
	if err != nil {
		config.Logger.Warnf("Skipping taker position update, order %s not loadable: %v", event.TakerOrderID, err)
	}

	for _, increase := range buildPositionIncreases(event, maker_order, taker_order) {
		if err := o.positions.IncreasePosition(increase); err != nil {
			config.Logger.Errorf("Failed to hand position increase for %s to updater: %v", increase.UserAddress, err)
		}
	}

	o.recordReferralEarning(event.MakerAddress, trade, event.MakerFee)
	o.recordReferralEarning(event.TakerAddress, trade, event.TakerFee)

	o.publishTradeEvents(trade)

	return nil
}

// BatchPersistTrades replays a slice of fills inside one transaction,
// used by recovery paths.
func (o *OrderFlowOrchestrator) BatchPersistTrades(events []*matching.TradeEvent) error {
	return o.db.Transaction(func(tx *gorm.DB) error {
		for _, event := range events {
			trade := models.TradeFromEvent(event)

			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(trade).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

func (o *OrderFlowOrchestrator) tradeWorker() {
	for event := range o.tradeSub.C() {
		if missed := o.tradeSub.Missed(); missed > 0 {
			config.Logger.Warnf("Trade stream lagged, %d events dropped before persistence", missed)
		}

		event := event
		if err := o.PersistTrade(&event); err != nil {
			config.Logger.Errorf("Failed to persist trade %s: %v", event.TradeID, err)
		}
	}
}

func (o *OrderFlowOrchestrator) depthWorker() {
	for update := range o.depthSub.C() {
		if missed := o.depthSub.Missed(); missed > 0 {
			config.Logger.Debugf("Depth stream lagged, %d updates skipped", missed)
		}

		depth := types.Depth{
			Asks:     update.Asks,
			Bids:     update.Bids,
			Sequence: update.Sequence,
		}

		key_root := "perpex:" + update.Symbol + ":depth"
		config.Redis.SetKey(key_root+":asks", depth.Asks, 0)
		config.Redis.SetKey(key_root+":bids", depth.Bids, 0)
		config.Redis.SetKey(key_root+":sequence", depth.Sequence, 0)

		payload, err := json.Marshal(depth)
		if err != nil {
			config.Logger.Errorf("Failed to marshal depth for %s: %v", update.Symbol, err)
			continue
		}

		if err := mq_client.EnqueueEvent("public", update.Symbol, "ob-inc", payload); err != nil {
			config.Logger.Errorf("Failed to enqueue depth event for %s: %v", update.Symbol, err)
		}
	}
}

func (o *OrderFlowOrchestrator) persistOrder(order *models.Order) {
	result := o.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "filled_amount", "avg_fill_price", "updated_at",
		}),
	}).Create(order)

	if result.Error != nil {
		config.Logger.Errorf("Failed to persist order %s: %v", order.ID, result.Error)
		return
	}

	o.publishPrivateOrderEvent(order.UserAddress, order.ID, order.Symbol, order.Status)
}

// incrementalFillOrders lists the order rows whose filled_amount advances
// per trade. The taker row is written with absolute amounts by
// persistOrder; advancing it here as well would double count the fill and
// could flip a still-resting order to filled.
func incrementalFillOrders(event *matching.TradeEvent) []uuid.UUID {
	return []uuid.UUID{event.MakerOrderID}
}

// applyFill advances a row's filled amount and derives its status from
// the row itself, so replays converge on the same state.
func (o *OrderFlowOrchestrator) applyFill(orderID uuid.UUID, amount decimal.Decimal) {
	result := o.db.Exec(
		`UPDATE orders
		 SET filled_amount = filled_amount + ?,
		     status = CASE WHEN filled_amount + ? >= amount THEN 'filled' ELSE 'partially_filled' END,
		     updated_at = ?
		 WHERE id = ?`,
		amount, amount, time.Now(), orderID,
	)

	if result.Error != nil {
		config.Logger.Errorf("Failed to apply fill to order %s: %v", orderID, result.Error)
	}
}

func (o *OrderFlowOrchestrator) recordReferralEarning(address string, trade *models.Trade, fee decimal.Decimal) {
	if !fee.IsPositive() {
		return
	}

	code := models.ReferrerFor(address)
	if code == nil || !code.CommissionRate.IsPositive() {
		return
	}

	earning := &models.ReferralEarning{
		ID:              uuid.New(),
		ReferrerAddress: code.OwnerAddress,
		RefereeAddress:  address,
		TradeID:         trade.ID,
		EventType:       "trade",
		Volume:          trade.Total(),
		Commission:      fee.Mul(code.CommissionRate),
		Token:           "USDT",
		Status:          models.EarningStatusPending,
		CreatedAt:       time.Now(),
	}

	if err := o.db.Create(earning).Error; err != nil {
		config.Logger.Errorf("Failed to record referral earning for trade %s: %v", trade.ID, err)
	}
}

func (o *OrderFlowOrchestrator) publishTradeEvents(trade *models.Trade) {
	payload, err := json.Marshal(trade)
	if err != nil {
		config.Logger.Errorf("Failed to marshal trade %s: %v", trade.ID, err)
		return
	}

	if err := mq_client.EnqueueEvent("public", trade.Symbol, "trades", payload); err != nil {
		config.Logger.Errorf("Failed to enqueue public trade event for %s: %v", trade.ID, err)
	}

	for _, address := range []string{trade.MakerAddress, trade.TakerAddress} {
		if err := mq_client.EnqueueEvent("private", address, "trade", payload); err != nil {
			config.Logger.Errorf("Failed to enqueue private trade event for %s: %v", trade.ID, err)
		}
	}
}

func (o *OrderFlowOrchestrator) publishPrivateOrderEvent(address string, orderID uuid.UUID, symbol string, status string) {
	payload, err := json.Marshal(map[string]interface{}{
		"id":     orderID,
		"symbol": symbol,
		"status": status,
	})
	if err != nil {
		return
	}

	if err := mq_client.EnqueueEvent("private", address, "order", payload); err != nil {
		config.Logger.Errorf("Failed to enqueue order event for %s: %v", orderID, err)
	}
}
