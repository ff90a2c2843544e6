package engines

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/perpex/perpex/config"
	"github.com/perpex/perpex/matching"
	"github.com/perpex/perpex/models"
	"github.com/perpex/perpex/orchestrator"
)

const (
	ActionSubmit = "submit"
	ActionCancel = "cancel"
)

type Worker interface {
	Process(payload []byte) error
}

// MatchingPayloadMessage is the wire form of a matching request carried
// on the matching subject.
type MatchingPayloadMessage struct {
	Action string       `json:"action"`
	Order  OrderPayload `json:"order"`
}

type OrderPayload struct {
	ID          uuid.UUID           `json:"id"`
	Symbol      string              `json:"symbol"`
	UserAddress string              `json:"user_address"`
	Side        string              `json:"side"`
	OrdType     string              `json:"ord_type"`
	Price       decimal.NullDecimal `json:"price"`
	Amount      decimal.Decimal     `json:"amount"`
	Leverage    uint32              `json:"leverage"`
	TimeInForce string              `json:"time_in_force"`
}

type MatchingWorker struct {
	engine       *matching.Engine
	orchestrator *orchestrator.OrderFlowOrchestrator
}

func NewMatchingWorker(engine *matching.Engine, orch *orchestrator.OrderFlowOrchestrator) *MatchingWorker {
	return &MatchingWorker{
		engine:       engine,
		orchestrator: orch,
	}
}

// Process handles one matching request. Errors are returned to the
// consumer loop for logging; the message is never redelivered.
func (w *MatchingWorker) Process(payload []byte) error {
	var matching_payload MatchingPayloadMessage

	if err := json.Unmarshal(payload, &matching_payload); err != nil {
		return err
	}

	switch matching_payload.Action {
	case ActionSubmit:
		return w.submitOrder(matching_payload.Order)
	case ActionCancel:
		return w.cancelOrder(matching_payload.Order)
	default:
		return fmt.Errorf("unknown action: %s", matching_payload.Action)
	}
}

func (w *MatchingWorker) submitOrder(payload OrderPayload) error {
	order := &models.Order{
		ID:          payload.ID,
		Symbol:      payload.Symbol,
		UserAddress: payload.UserAddress,
		Side:        payload.Side,
		OrdType:     payload.OrdType,
		Price:       payload.Price,
		Amount:      payload.Amount,
		Leverage:    payload.Leverage,
		TimeInForce: payload.TimeInForce,
	}

	_, err := w.orchestrator.ProcessOrder(order)
	return err
}

func (w *MatchingWorker) cancelOrder(payload OrderPayload) error {
	_, err := w.orchestrator.CancelOrder(payload.Symbol, payload.ID, payload.UserAddress)
	return err
}

// LoadOrders reloads resting orders into the engine after a restart.
// Rows come back oldest first so time priority inside each price level
// survives the round trip.
func (w *MatchingWorker) LoadOrders() error {
	var orders []*models.Order

	result := config.DataBase.
		Where("status IN ?", []string{string(matching.StatusOpen), string(matching.StatusPartiallyFilled)}).
		Where("ord_type = ?", string(matching.TypeLimit)).
		Order("created_at asc").
		Find(&orders)

	if result.Error != nil {
		return result.Error
	}

	for _, order := range orders {
		if !w.engine.IsValidSymbol(order.Symbol) {
			config.Logger.Warnf("Skipping order %s on disabled market %s", order.ID, order.Symbol)
			continue
		}

		if err := w.engine.RehydrateOrder(order.Symbol, order.ToOrderEntry()); err != nil {
			return err
		}
	}

	config.Logger.Infof("Reloaded %d resting orders", len(orders))

	return nil
}
