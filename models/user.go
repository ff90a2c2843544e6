package models

import (
	"database/sql"
	"time"
)

type User struct {
	Address         string         `json:"address" gorm:"primaryKey"`
	ReferrerAddress sql.NullString `json:"referrer_address"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
