package matching

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPriceLevel_RoundTrip(t *testing.T) {
	prices := []string{"0.00000001", "1", "100.5", "123.45678901", "92233720368"}

	for _, s := range prices {
		price := decimal.RequireFromString(s)
		key := PriceLevelFromDecimal(price)

		if !key.ToDecimal().Equal(price) {
			t.Errorf("expected %s to round-trip, got %s", price, key.ToDecimal())
		}
	}
}

func TestPriceLevel_TruncatesExcessDigits(t *testing.T) {
	price := decimal.RequireFromString("0.123456789")
	key := PriceLevelFromDecimal(price)

	expected := decimal.RequireFromString("0.12345678")
	if !key.ToDecimal().Equal(expected) {
		t.Errorf("expected %s, got %s", expected, key.ToDecimal())
	}
}

func TestPriceLevel_Ordering(t *testing.T) {
	low := PriceLevelFromDecimal(decimal.RequireFromString("100.1"))
	high := PriceLevelFromDecimal(decimal.RequireFromString("100.2"))

	if priceLevelComparator(low, high) != -1 {
		t.Errorf("expected %d < %d", low, high)
	}
	if priceLevelComparator(high, low) != 1 {
		t.Errorf("expected %d > %d", high, low)
	}
	if priceLevelComparator(low, low) != 0 {
		t.Errorf("expected %d == %d", low, low)
	}
}

func TestPriceLevel_MaxPriceFits(t *testing.T) {
	key := PriceLevelFromDecimal(MaxPrice)

	if key.Raw() <= 0 {
		t.Errorf("expected MaxPrice to encode positive, got %d", key.Raw())
	}
	if !key.ToDecimal().Equal(MaxPrice) {
		t.Errorf("expected %s, got %s", MaxPrice, key.ToDecimal())
	}
}

func TestLevelQueue_FIFOAndRemove(t *testing.T) {
	price := decimal.RequireFromString("100")
	q := newLevelQueue(price)

	first := newTestEntry("100", "1", SideSell)
	second := newTestEntry("100", "2", SideSell)
	q.Append(first)
	q.Append(second)

	if q.Size() != 2 {
		t.Fatalf("expected 2 orders, got %d", q.Size())
	}
	if !q.Total().Equal(decimal.RequireFromString("3")) {
		t.Errorf("expected total 3, got %s", q.Total())
	}
	if q.Front().ID != first.ID {
		t.Errorf("expected first appended order at the front")
	}

	if removed := q.Remove(first.ID); removed == nil || removed.ID != first.ID {
		t.Errorf("expected to remove the first order")
	}
	if q.Front().ID != second.ID {
		t.Errorf("expected second order at the front after removal")
	}
	if q.Remove(first.ID) != nil {
		t.Errorf("expected second removal of the same id to return nil")
	}
}
