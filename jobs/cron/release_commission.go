package cron

import (
	"time"

	"github.com/perpex/perpex/config"
	"github.com/perpex/perpex/models"
)

// Earnings vest for a week before release so wash-traded commissions can
// still be voided by support.
const commissionVestingDays = 7

// ReleaseCommissions flips pending referral earnings past the vesting
// window to released. Payout against the vault happens downstream.
func ReleaseCommissions() {
	cutoff := time.Now().AddDate(0, 0, -commissionVestingDays)

	result := config.DataBase.Model(&models.ReferralEarning{}).
		Where("status = ?", models.EarningStatusPending).
		Where("created_at <= ?", cutoff).
		Update("status", models.EarningStatusReleased)

	if result.Error != nil {
		config.Logger.Errorf("Failed to release referral earnings: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		config.Logger.Infof("Released %d referral earnings", result.RowsAffected)
	}
}
