package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/perpex/perpex/config"
)

type ReferralCode struct {
	Code           string          `json:"code" gorm:"primaryKey"`
	OwnerAddress   string          `json:"owner_address"`
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"default:0.0"`
	CreatedAt      time.Time       `json:"created_at"`
}

const (
	EarningStatusPending  = "pending"
	EarningStatusReleased = "released"
)

// ReferralEarning is one pending commission entry, written per fee-paying
// side of a trade and released by the daily cron.
type ReferralEarning struct {
	ID              uuid.UUID       `json:"id" gorm:"primaryKey"`
	ReferrerAddress string          `json:"referrer_address"`
	RefereeAddress  string          `json:"referee_address"`
	TradeID         uuid.UUID       `json:"trade_id"`
	EventType       string          `json:"event_type" gorm:"default:trade"`
	Volume          decimal.Decimal `json:"volume"`
	Commission      decimal.Decimal `json:"commission"`
	Token           string          `json:"token" gorm:"default:USDT"`
	Status          string          `json:"status" gorm:"default:pending"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ReferrerFor resolves the referral code whose owner referred the given
// address, or nil when the address has no referrer.
func ReferrerFor(address string) *ReferralCode {
	user := &User{}

	result := config.DataBase.First(&user, "address = ?", strings.ToLower(address))
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			config.Logger.Errorf("Failed to load user %s: %v", address, result.Error)
		}
		return nil
	}

	if !user.ReferrerAddress.Valid {
		return nil
	}

	code := &ReferralCode{}
	result = config.DataBase.First(&code, "owner_address = ?", user.ReferrerAddress.String)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			config.Logger.Errorf("Failed to resolve referral code for %s: %v", user.ReferrerAddress.String, result.Error)
		}
		return nil
	}

	return code
}
