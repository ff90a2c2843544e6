package matching

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/perpex/perpex/config"
)

const (
	// eventBuffer is the per-subscriber buffer of the broadcast streams.
	eventBuffer = 1024

	// DepthLimit bounds the levels carried by broadcast book updates.
	DepthLimit = 50
)

// Engine owns one OrderBook per configured symbol. The symbol set is fixed
// at construction; matching is synchronous and in-memory, event delivery to
// subscribers is asynchronous and lossy (see Stream).
type Engine struct {
	books map[string]*OrderBook
	fees  map[string]FeeConfig

	trades *Stream[TradeEvent]
	depth  *Stream[OrderbookUpdate]
}

// NewEngine builds one book per symbol with that symbol's fee rates.
func NewEngine(fees map[string]FeeConfig) *Engine {
	books := make(map[string]*OrderBook, len(fees))
	for symbol := range fees {
		books[symbol] = NewOrderBook(symbol)
	}

	return &Engine{
		books:  books,
		fees:   fees,
		trades: NewStream[TradeEvent](eventBuffer),
		depth:  NewStream[OrderbookUpdate](eventBuffer),
	}
}

func (e *Engine) Symbols() []string {
	symbols := make([]string, 0, len(e.books))
	for symbol := range e.books {
		symbols = append(symbols, symbol)
	}
	return symbols
}

func (e *Engine) IsValidSymbol(symbol string) bool {
	_, found := e.books[symbol]
	return found
}

// SubmitOrder validates the order, matches it against the book and returns
// the result to the caller synchronously. Trades and book changes are
// broadcast to subscribers as a side effect. Market orders never rest: a
// market order with no fill is Rejected, an unmatched remainder is
// discarded. A limit remainder rests in the book as a GTC entry.
func (e *Engine) SubmitOrder(orderID uuid.UUID, symbol, userAddress string, side Side, ordType OrderType, amount decimal.Decimal, price decimal.NullDecimal, leverage uint32) (*MatchResult, error) {
	book, found := e.books[symbol]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	if !side.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSide, side)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}

	limit_price := decimal.NullDecimal{}
	if ordType == TypeLimit {
		if !price.Valid || !price.Decimal.IsPositive() || price.Decimal.GreaterThan(MaxPrice) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, price.Decimal)
		}
		limit_price = price
	}

	fees := e.fees[symbol]
	trades, remaining := book.MatchOrder(orderID, userAddress, side, amount, limit_price, fees)
	filled := amount.Sub(remaining)

	result := &MatchResult{
		OrderID:         orderID,
		FilledAmount:    filled,
		RemainingAmount: remaining,
		AveragePrice:    averageFillPrice(trades, filled),
		Trades:          trades,
	}

	rested := false
	switch ordType {
	case TypeMarket:
		// Unmatched remainder is discarded, never rests.
		switch {
		case filled.IsZero():
			result.Status = StatusRejected
		case remaining.IsPositive():
			result.Status = StatusPartiallyFilled
		default:
			result.Status = StatusFilled
		}

	default:
		switch {
		case !remaining.IsPositive():
			result.Status = StatusFilled
		default:
			if filled.IsPositive() {
				result.Status = StatusPartiallyFilled
			} else {
				result.Status = StatusOpen
			}

			book.AddOrder(&OrderEntry{
				ID:              orderID,
				UserAddress:     userAddress,
				Price:           price.Decimal,
				OriginalAmount:  amount,
				RemainingAmount: remaining,
				Side:            side,
				TimeInForce:     TimeInForceGTC,
				Timestamp:       time.Now().UnixMilli(),
			})
			rested = true
		}
	}

	config.Logger.Debugf("[matching] %s order %s %s %s@%s filled %s status %s", symbol, orderID, side, amount, price.Decimal, filled, result.Status)

	for _, trade := range trades {
		e.trades.Publish(TradeEvent{
			Symbol:       symbol,
			TradeID:      trade.TradeID,
			MakerOrderID: trade.MakerOrderID,
			TakerOrderID: trade.TakerOrderID,
			MakerAddress: trade.MakerAddress,
			TakerAddress: userAddress,
			Side:         side,
			Price:        trade.Price,
			Amount:       trade.Amount,
			MakerFee:     trade.MakerFee,
			TakerFee:     trade.TakerFee,
			Timestamp:    trade.Timestamp,
		})
	}

	if len(trades) > 0 || rested {
		e.publishDepth(book)
	}

	return result, nil
}

// CancelOrder removes a resting order. Ownership of the order by
// userAddress is the caller's responsibility; the engine does not
// re-verify it. Returns false if the order is not resident (already
// filled, already cancelled, or never existed).
func (e *Engine) CancelOrder(symbol string, orderID uuid.UUID, userAddress string) (bool, error) {
	book, found := e.books[symbol]
	if !found {
		return false, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	entry := book.CancelOrder(orderID)
	if entry == nil {
		return false, nil
	}

	config.Logger.Debugf("[matching] %s order %s cancelled", symbol, orderID)
	e.publishDepth(book)

	return true, nil
}

func (e *Engine) GetOrderBook(symbol string, depth int) (*OrderbookSnapshot, error) {
	book, found := e.books[symbol]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	return book.Snapshot(depth), nil
}

// LastTradePrice reports the most recent execution price for a symbol.
func (e *Engine) LastTradePrice(symbol string) (decimal.NullDecimal, error) {
	book, found := e.books[symbol]
	if !found {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	return book.LastTradePrice(), nil
}

// RehydrateOrder inserts a resting order directly, bypassing matching. Used
// once at startup to reload open orders from durable storage; callers must
// feed orders oldest-first to preserve time priority.
func (e *Engine) RehydrateOrder(symbol string, entry *OrderEntry) error {
	book, found := e.books[symbol]
	if !found {
		return fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
	}

	book.AddOrder(entry)
	return nil
}

// SubscribeTrades opens an independent lossy subscription to trade events.
func (e *Engine) SubscribeTrades() *Subscription[TradeEvent] {
	return e.trades.Subscribe()
}

// SubscribeOrderbook opens an independent lossy subscription to book updates.
func (e *Engine) SubscribeOrderbook() *Subscription[OrderbookUpdate] {
	return e.depth.Subscribe()
}

func (e *Engine) publishDepth(book *OrderBook) {
	snapshot := book.Snapshot(DepthLimit)

	e.depth.Publish(OrderbookUpdate{
		Symbol:    snapshot.Symbol,
		Bids:      snapshot.Bids,
		Asks:      snapshot.Asks,
		Sequence:  snapshot.Sequence,
		Timestamp: snapshot.Timestamp,
	})
}

func averageFillPrice(trades []TradeExecution, filled decimal.Decimal) decimal.NullDecimal {
	if !filled.IsPositive() {
		return decimal.NullDecimal{}
	}

	volume := decimal.Zero
	for _, trade := range trades {
		volume = volume.Add(trade.Total())
	}

	return decimal.NewNullDecimal(volume.Div(filled))
}
