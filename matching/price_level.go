package matching

import (
	"github.com/gammazero/deque"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// priceScale is the number of fractional digits a price key preserves.
const priceScale = 8

// MaxPrice is the largest price that fits a PriceLevel without overflowing
// int64 at 1e8 scale (~9.2e10). Prices above it are rejected upstream.
var MaxPrice = decimal.New(92233720368, 0)

// PriceLevel is an exact integer encoding of a price, scaled by 1e8 and
// truncated. Comparing two levels is plain integer comparison, so ordering
// in the book never goes through floating point.
type PriceLevel int64

func PriceLevelFromDecimal(price decimal.Decimal) PriceLevel {
	return PriceLevel(price.Shift(priceScale).Truncate(0).IntPart())
}

func (p PriceLevel) ToDecimal() decimal.Decimal {
	return decimal.New(int64(p), -priceScale)
}

func (p PriceLevel) Raw() int64 {
	return int64(p)
}

func priceLevelComparator(a, b interface{}) int {
	x := a.(PriceLevel)
	y := b.(PriceLevel)

	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// levelQueue holds the resting orders at one price level in submission
// order. The front of the queue is the oldest order and fills first.
type levelQueue struct {
	price  decimal.Decimal
	orders deque.Deque[*OrderEntry]
}

func newLevelQueue(price decimal.Decimal) *levelQueue {
	return &levelQueue{price: price}
}

func (q *levelQueue) Append(entry *OrderEntry) {
	q.orders.PushBack(entry)
}

func (q *levelQueue) Front() *OrderEntry {
	return q.orders.Front()
}

func (q *levelQueue) PopFront() *OrderEntry {
	return q.orders.PopFront()
}

func (q *levelQueue) Remove(id uuid.UUID) *OrderEntry {
	i := q.orders.Index(func(o *OrderEntry) bool { return o.ID == id })
	if i < 0 {
		return nil
	}
	return q.orders.Remove(i)
}

func (q *levelQueue) Size() int {
	return q.orders.Len()
}

func (q *levelQueue) Empty() bool {
	return q.orders.Len() == 0
}

// Total is the sum of remaining amounts resident at this level.
func (q *levelQueue) Total() decimal.Decimal {
	total := decimal.Zero
	for i := 0; i < q.orders.Len(); i++ {
		total = total.Add(q.orders.At(i).RemainingAmount)
	}
	return total
}
