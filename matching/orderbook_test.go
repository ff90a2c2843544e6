package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const symbol = "BTCUSDT"

func newTestEntry(price, amount string, side Side) *OrderEntry {
	return &OrderEntry{
		ID:              uuid.New(),
		UserAddress:     "0xmaker",
		Price:           decimal.RequireFromString(price),
		OriginalAmount:  decimal.RequireFromString(amount),
		RemainingAmount: decimal.RequireFromString(amount),
		Side:            side,
		TimeInForce:     TimeInForceGTC,
		Timestamp:       time.Now().UnixMilli(),
	}
}

func limitAt(price string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(price))
}

func TestOrderBook_AddCancel(t *testing.T) {
	ob := NewOrderBook(symbol)

	entry := newTestEntry("100", "1", SideBuy)
	ob.AddOrder(entry)

	if ob.OrderCount() != 1 {
		t.Fatalf("expected 1 order, got %d", ob.OrderCount())
	}
	if !ob.HasOrder(entry.ID) {
		t.Errorf("expected order to be resident")
	}

	removed := ob.CancelOrder(entry.ID)
	if removed == nil || removed.ID != entry.ID {
		t.Fatalf("expected to cancel the resting order")
	}
	if ob.OrderCount() != 0 {
		t.Errorf("expected 0 orders, got %d", ob.OrderCount())
	}

	if ob.CancelOrder(entry.ID) != nil {
		t.Errorf("expected second cancel of the same id to return nil")
	}
	if ob.CancelOrder(uuid.New()) != nil {
		t.Errorf("expected cancel of an unknown id to return nil")
	}
}

func TestOrderBook_BestBidAskSpread(t *testing.T) {
	ob := NewOrderBook(symbol)

	if ob.BestBid().Valid || ob.BestAsk().Valid || ob.Spread().Valid {
		t.Fatal("expected empty book to report no best prices")
	}

	ob.AddOrder(newTestEntry("99.5", "1", SideBuy))
	ob.AddOrder(newTestEntry("99.8", "1", SideBuy))
	ob.AddOrder(newTestEntry("100.2", "1", SideSell))
	ob.AddOrder(newTestEntry("100.6", "1", SideSell))

	if bid := ob.BestBid(); !bid.Decimal.Equal(decimal.RequireFromString("99.8")) {
		t.Errorf("expected best bid 99.8, got %s", bid.Decimal)
	}
	if ask := ob.BestAsk(); !ask.Decimal.Equal(decimal.RequireFromString("100.2")) {
		t.Errorf("expected best ask 100.2, got %s", ask.Decimal)
	}
	if spread := ob.Spread(); !spread.Decimal.Equal(decimal.RequireFromString("0.4")) {
		t.Errorf("expected spread 0.4, got %s", spread.Decimal)
	}
}

func TestOrderBook_MatchWalksLevels(t *testing.T) {
	ob := NewOrderBook(symbol)

	ask_a := newTestEntry("100.0", "1.0", SideSell)
	ask_b := newTestEntry("101.0", "2.0", SideSell)
	ob.AddOrder(ask_a)
	ob.AddOrder(ask_b)

	trades, remaining := ob.MatchOrder(uuid.New(), "0xtaker", SideBuy, decimal.RequireFromString("1.5"), limitAt("101.0"), DefaultFeeConfig())

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if !remaining.IsZero() {
		t.Errorf("expected no remainder, got %s", remaining)
	}

	if !trades[0].Price.Equal(decimal.RequireFromString("100.0")) || !trades[0].Amount.Equal(decimal.RequireFromString("1.0")) {
		t.Errorf("expected first fill 1.0@100.0, got %s@%s", trades[0].Amount, trades[0].Price)
	}
	if !trades[1].Price.Equal(decimal.RequireFromString("101.0")) || !trades[1].Amount.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("expected second fill 0.5@101.0, got %s@%s", trades[1].Amount, trades[1].Price)
	}

	if ob.HasOrder(ask_a.ID) {
		t.Errorf("expected fully filled maker to leave the book")
	}
	partial := ob.GetOrder(ask_b.ID)
	if partial == nil {
		t.Fatal("expected partially filled maker to stay resident")
	}
	if !partial.RemainingAmount.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("expected maker remainder 1.5, got %s", partial.RemainingAmount)
	}

	if last := ob.LastTradePrice(); !last.Decimal.Equal(decimal.RequireFromString("101.0")) {
		t.Errorf("expected last trade price 101.0, got %s", last.Decimal)
	}
}

func TestOrderBook_MakerPriceExecution(t *testing.T) {
	ob := NewOrderBook(symbol)

	ob.AddOrder(newTestEntry("100", "1", SideSell))

	// Taker is willing to pay 102 but executes at the resting 100.
	trades, remaining := ob.MatchOrder(uuid.New(), "0xtaker", SideBuy, decimal.RequireFromString("1"), limitAt("102"), DefaultFeeConfig())

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if !remaining.IsZero() {
		t.Errorf("expected no remainder, got %s", remaining)
	}
	if !trades[0].Price.Equal(decimal.RequireFromString("100")) {
		t.Errorf("expected execution at maker price 100, got %s", trades[0].Price)
	}
}

func TestOrderBook_TimePriorityWithinLevel(t *testing.T) {
	ob := NewOrderBook(symbol)

	older := newTestEntry("100", "1", SideSell)
	newer := newTestEntry("100", "1", SideSell)
	ob.AddOrder(older)
	ob.AddOrder(newer)

	trades, _ := ob.MatchOrder(uuid.New(), "0xtaker", SideBuy, decimal.RequireFromString("1"), limitAt("100"), DefaultFeeConfig())

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if trades[0].MakerOrderID != older.ID {
		t.Errorf("expected the older maker to fill first")
	}
	if ob.HasOrder(older.ID) {
		t.Errorf("expected the older maker to leave the book")
	}
	if !ob.HasOrder(newer.ID) {
		t.Errorf("expected the newer maker to stay resident")
	}
}

func TestOrderBook_LimitPriceStopsWalk(t *testing.T) {
	ob := NewOrderBook(symbol)

	ob.AddOrder(newTestEntry("100", "1", SideSell))
	ob.AddOrder(newTestEntry("105", "1", SideSell))

	trades, remaining := ob.MatchOrder(uuid.New(), "0xtaker", SideBuy, decimal.RequireFromString("2"), limitAt("100"), DefaultFeeConfig())

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if !remaining.Equal(decimal.RequireFromString("1")) {
		t.Errorf("expected remainder 1, got %s", remaining)
	}
}

func TestOrderBook_MarketConsumesAcrossLevels(t *testing.T) {
	ob := NewOrderBook(symbol)

	ob.AddOrder(newTestEntry("100", "1", SideSell))
	ob.AddOrder(newTestEntry("105", "1", SideSell))

	taker_amount := decimal.RequireFromString("3")
	trades, remaining := ob.MatchOrder(uuid.New(), "0xtaker", SideBuy, taker_amount, decimal.NullDecimal{}, DefaultFeeConfig())

	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	if !remaining.Equal(decimal.RequireFromString("1")) {
		t.Errorf("expected remainder 1, got %s", remaining)
	}

	filled := decimal.Zero
	for _, trade := range trades {
		filled = filled.Add(trade.Amount)
	}
	if !filled.Add(remaining).Equal(taker_amount) {
		t.Errorf("expected fills plus remainder to equal %s, got %s", taker_amount, filled.Add(remaining))
	}

	if ob.OrderCount() != 0 {
		t.Errorf("expected empty book, got %d orders", ob.OrderCount())
	}
	if ob.BestAsk().Valid {
		t.Errorf("expected no asks after full consumption")
	}
}

func TestOrderBook_SellMatchesBestBidFirst(t *testing.T) {
	ob := NewOrderBook(symbol)

	ob.AddOrder(newTestEntry("99", "1", SideBuy))
	ob.AddOrder(newTestEntry("100", "1", SideBuy))

	trades, _ := ob.MatchOrder(uuid.New(), "0xtaker", SideSell, decimal.RequireFromString("1"), limitAt("99"), DefaultFeeConfig())

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if !trades[0].Price.Equal(decimal.RequireFromString("100")) {
		t.Errorf("expected the 100 bid to fill first, got %s", trades[0].Price)
	}
}

func TestOrderBook_Fees(t *testing.T) {
	ob := NewOrderBook(symbol)

	ob.AddOrder(newTestEntry("100", "1", SideSell))

	trades, _ := ob.MatchOrder(uuid.New(), "0xtaker", SideBuy, decimal.RequireFromString("1"), limitAt("100"), DefaultFeeConfig())

	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	// 0.02% and 0.05% of a 100 notional.
	if !trades[0].MakerFee.Equal(decimal.RequireFromString("0.02")) {
		t.Errorf("expected maker fee 0.02, got %s", trades[0].MakerFee)
	}
	if !trades[0].TakerFee.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("expected taker fee 0.05, got %s", trades[0].TakerFee)
	}
}

func TestOrderBook_Snapshot(t *testing.T) {
	ob := NewOrderBook(symbol)

	ob.AddOrder(newTestEntry("100", "1.0", SideSell))
	ob.AddOrder(newTestEntry("100", "2.0", SideSell))
	ob.AddOrder(newTestEntry("101", "1.0", SideSell))
	ob.AddOrder(newTestEntry("99", "4.0", SideBuy))
	ob.AddOrder(newTestEntry("98", "1.0", SideBuy))

	snapshot := ob.Snapshot(10)

	if len(snapshot.Asks) != 2 {
		t.Fatalf("expected 2 ask levels, got %d", len(snapshot.Asks))
	}
	if !snapshot.Asks[0][0].Equal(decimal.RequireFromString("100")) || !snapshot.Asks[0][1].Equal(decimal.RequireFromString("3.0")) {
		t.Errorf("expected best ask level [100 3.0], got %s", snapshot.Asks[0])
	}

	if len(snapshot.Bids) != 2 {
		t.Fatalf("expected 2 bid levels, got %d", len(snapshot.Bids))
	}
	if !snapshot.Bids[0][0].Equal(decimal.RequireFromString("99")) {
		t.Errorf("expected best bid level first, got %s", snapshot.Bids[0][0])
	}

	limited := ob.Snapshot(1)
	if len(limited.Asks) != 1 || len(limited.Bids) != 1 {
		t.Errorf("expected depth limit of 1 per side, got %d asks %d bids", len(limited.Asks), len(limited.Bids))
	}

	if !ob.AskDepth().Equal(decimal.RequireFromString("4.0")) {
		t.Errorf("expected ask depth 4.0, got %s", ob.AskDepth())
	}
	if !ob.BidDepth().Equal(decimal.RequireFromString("5.0")) {
		t.Errorf("expected bid depth 5.0, got %s", ob.BidDepth())
	}
}

func TestOrderBook_SequenceAdvances(t *testing.T) {
	ob := NewOrderBook(symbol)

	before := ob.Sequence()
	entry := newTestEntry("100", "1", SideBuy)
	ob.AddOrder(entry)
	if ob.Sequence() <= before {
		t.Errorf("expected sequence to advance on add")
	}

	mid := ob.Sequence()
	ob.CancelOrder(entry.ID)
	if ob.Sequence() <= mid {
		t.Errorf("expected sequence to advance on cancel")
	}
}
