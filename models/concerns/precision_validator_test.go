package concerns

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestPrecisionValidator_LessThanOrEqTo(t *testing.T) {
	v := PrecisionValidator{}

	if !v.LessThanOrEqTo(decimal.RequireFromString("100.12"), 2) {
		t.Errorf("expected 100.12 to fit 2 decimals")
	}
	if v.LessThanOrEqTo(decimal.RequireFromString("100.123"), 2) {
		t.Errorf("expected 100.123 to exceed 2 decimals")
	}
	if !v.LessThanOrEqTo(decimal.RequireFromString("100"), 0) {
		t.Errorf("expected a whole number to fit 0 decimals")
	}
}
