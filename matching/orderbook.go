package matching

import (
	"sync"
	"sync/atomic"
	"time"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// bookSide is one side of the book: price level -> FIFO queue, ordered
// ascending by price key. Best bid is the rightmost node, best ask the
// leftmost.
type bookSide struct {
	sync.RWMutex
	levels *rbt.Tree
}

func newBookSide() *bookSide {
	return &bookSide{levels: rbt.NewWith(priceLevelComparator)}
}

type orderRef struct {
	side  Side
	level PriceLevel
}

// OrderBook holds the resting orders of one symbol. Add, cancel and match
// take the affected side's exclusive lock; snapshot and aggregate queries
// take shared locks. The order index is guarded separately so cancellation
// lookups do not contend the price-level locks.
type OrderBook struct {
	Symbol string

	bids *bookSide
	asks *bookSide

	indexMu sync.RWMutex
	index   map[uuid.UUID]orderRef

	// last trade price, 1e8 scaled; relaxed with respect to snapshots
	lastTradePrice int64
	orderCount     int64
	sequence       uint64
}

func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		bids:   newBookSide(),
		asks:   newBookSide(),
		index:  make(map[uuid.UUID]orderRef),
	}
}

func (ob *OrderBook) side(s Side) *bookSide {
	if s == SideBuy {
		return ob.bids
	}
	return ob.asks
}

// AddOrder inserts a resting order at the tail of its price level's queue,
// preserving time priority, and registers it in the order index. Price and
// amount are assumed to be validated upstream.
func (ob *OrderBook) AddOrder(entry *OrderEntry) {
	key := PriceLevelFromDecimal(entry.Price)
	side := ob.side(entry.Side)

	side.Lock()
	value, found := side.levels.Get(key)
	var level *levelQueue
	if found {
		level = value.(*levelQueue)
	} else {
		level = newLevelQueue(entry.Price)
		side.levels.Put(key, level)
	}
	level.Append(entry)
	atomic.AddUint64(&ob.sequence, 1)
	side.Unlock()

	ob.indexMu.Lock()
	ob.index[entry.ID] = orderRef{side: entry.Side, level: key}
	ob.indexMu.Unlock()

	atomic.AddInt64(&ob.orderCount, 1)
}

// CancelOrder removes the order from its queue and the index, returning the
// removed entry, or nil if the id is unknown. A second cancel of the same id
// returns nil. Racing a concurrent match is safe: whichever reaches the
// index first wins.
func (ob *OrderBook) CancelOrder(id uuid.UUID) *OrderEntry {
	ob.indexMu.Lock()
	ref, found := ob.index[id]
	if found {
		delete(ob.index, id)
	}
	ob.indexMu.Unlock()

	if !found {
		return nil
	}

	side := ob.side(ref.side)
	side.Lock()
	defer side.Unlock()

	value, found := side.levels.Get(ref.level)
	if !found {
		return nil
	}

	level := value.(*levelQueue)
	entry := level.Remove(id)
	if entry == nil {
		return nil
	}

	if level.Empty() {
		side.levels.Remove(ref.level)
	}
	atomic.AddUint64(&ob.sequence, 1)
	atomic.AddInt64(&ob.orderCount, -1)

	return entry
}

// MatchOrder walks the opposite side in price order (asks ascending for a
// buy, bids descending for a sell) and consumes makers strictly FIFO within
// each level. Every fill executes at the maker's price. A limit order stops
// at the first level beyond its limit; a market order (limitPrice invalid)
// consumes until the amount or the opposite side is exhausted. Returns the
// trades produced and whatever amount remains unmatched.
func (ob *OrderBook) MatchOrder(takerOrderID uuid.UUID, takerAddress string, side Side, amount decimal.Decimal, limitPrice decimal.NullDecimal, fees FeeConfig) ([]TradeExecution, decimal.Decimal) {
	trades := []TradeExecution{}
	now := time.Now().UnixMilli()

	makers := ob.side(side.Opposite())
	makers.Lock()
	defer makers.Unlock()

	for amount.IsPositive() {
		var best *rbt.Node
		if side == SideBuy {
			best = makers.levels.Left()
		} else {
			best = makers.levels.Right()
		}
		if best == nil {
			break
		}

		key := best.Key.(PriceLevel)
		level := best.Value.(*levelQueue)
		level_price := key.ToDecimal()

		if limitPrice.Valid {
			if side == SideBuy && level_price.GreaterThan(limitPrice.Decimal) {
				break
			}
			if side == SideSell && level_price.LessThan(limitPrice.Decimal) {
				break
			}
		}

		for amount.IsPositive() && level.Size() > 0 {
			maker := level.Front()

			trade_amount := decimal.Min(amount, maker.RemainingAmount)
			trade_price := maker.Price
			trade_value := trade_amount.Mul(trade_price)

			trades = append(trades, TradeExecution{
				TradeID:      uuid.New(),
				MakerOrderID: maker.ID,
				TakerOrderID: takerOrderID,
				MakerAddress: maker.UserAddress,
				Price:        trade_price,
				Amount:       trade_amount,
				MakerFee:     trade_value.Mul(fees.MakerFeeRate),
				TakerFee:     trade_value.Mul(fees.TakerFeeRate),
				Timestamp:    now,
			})

			amount = amount.Sub(trade_amount)
			maker.RemainingAmount = maker.RemainingAmount.Sub(trade_amount)

			ob.setLastTradePrice(trade_price)

			if maker.Filled() {
				level.PopFront()

				ob.indexMu.Lock()
				delete(ob.index, maker.ID)
				ob.indexMu.Unlock()

				atomic.AddInt64(&ob.orderCount, -1)
			}
		}

		if level.Empty() {
			makers.levels.Remove(key)
		}
		atomic.AddUint64(&ob.sequence, 1)
	}

	return trades, amount
}

// Snapshot aggregates remaining amount per price level, limited to depth
// levels per side, best price first on both sides.
func (ob *OrderBook) Snapshot(depth int) *OrderbookSnapshot {
	snapshot := &OrderbookSnapshot{
		Symbol:    ob.Symbol,
		Bids:      make([][]decimal.Decimal, 0, depth),
		Asks:      make([][]decimal.Decimal, 0, depth),
		LastPrice: ob.LastTradePrice(),
		Sequence:  atomic.LoadUint64(&ob.sequence),
		Timestamp: time.Now().UnixMilli(),
	}

	ob.bids.RLock()
	it := ob.bids.levels.Iterator()
	it.End()
	for i := 0; it.Prev() && i < depth; i++ {
		level := it.Value().(*levelQueue)
		snapshot.Bids = append(snapshot.Bids, []decimal.Decimal{level.price, level.Total()})
	}
	ob.bids.RUnlock()

	ob.asks.RLock()
	it = ob.asks.levels.Iterator()
	for i := 0; it.Next() && i < depth; i++ {
		level := it.Value().(*levelQueue)
		snapshot.Asks = append(snapshot.Asks, []decimal.Decimal{level.price, level.Total()})
	}
	ob.asks.RUnlock()

	return snapshot
}

func (ob *OrderBook) BestBid() decimal.NullDecimal {
	ob.bids.RLock()
	defer ob.bids.RUnlock()

	best := ob.bids.levels.Right()
	if best == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(best.Key.(PriceLevel).ToDecimal())
}

func (ob *OrderBook) BestAsk() decimal.NullDecimal {
	ob.asks.RLock()
	defer ob.asks.RUnlock()

	best := ob.asks.levels.Left()
	if best == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(best.Key.(PriceLevel).ToDecimal())
}

func (ob *OrderBook) Spread() decimal.NullDecimal {
	bid := ob.BestBid()
	ask := ob.BestAsk()
	if !bid.Valid || !ask.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(ask.Decimal.Sub(bid.Decimal))
}

// BidDepth is the total remaining amount resting on the bid side.
func (ob *OrderBook) BidDepth() decimal.Decimal {
	ob.bids.RLock()
	defer ob.bids.RUnlock()
	return sideDepth(ob.bids)
}

// AskDepth is the total remaining amount resting on the ask side.
func (ob *OrderBook) AskDepth() decimal.Decimal {
	ob.asks.RLock()
	defer ob.asks.RUnlock()
	return sideDepth(ob.asks)
}

func sideDepth(side *bookSide) decimal.Decimal {
	total := decimal.Zero
	for _, value := range side.levels.Values() {
		total = total.Add(value.(*levelQueue).Total())
	}
	return total
}

func (ob *OrderBook) OrderCount() int64 {
	return atomic.LoadInt64(&ob.orderCount)
}

func (ob *OrderBook) Sequence() uint64 {
	return atomic.LoadUint64(&ob.sequence)
}

func (ob *OrderBook) HasOrder(id uuid.UUID) bool {
	ob.indexMu.RLock()
	defer ob.indexMu.RUnlock()
	_, found := ob.index[id]
	return found
}

// GetOrder returns a copy of a resting order, or nil if unknown.
func (ob *OrderBook) GetOrder(id uuid.UUID) *OrderEntry {
	ob.indexMu.RLock()
	ref, found := ob.index[id]
	ob.indexMu.RUnlock()

	if !found {
		return nil
	}

	side := ob.side(ref.side)
	side.RLock()
	defer side.RUnlock()

	value, found := side.levels.Get(ref.level)
	if !found {
		return nil
	}

	level := value.(*levelQueue)
	for i := 0; i < level.orders.Len(); i++ {
		if o := level.orders.At(i); o.ID == id {
			entry := *o
			return &entry
		}
	}
	return nil
}

func (ob *OrderBook) LastTradePrice() decimal.NullDecimal {
	raw := atomic.LoadInt64(&ob.lastTradePrice)
	if raw == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(PriceLevel(raw).ToDecimal())
}

func (ob *OrderBook) setLastTradePrice(price decimal.Decimal) {
	atomic.StoreInt64(&ob.lastTradePrice, PriceLevelFromDecimal(price).Raw())
}
