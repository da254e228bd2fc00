package user

import (
	"time"

	"github.com/finview/finview/internal/tier"
)

// User is a profile row. ID is the stable identifier the identity provider
// hands us; this service never mints its own.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"unique;not null"`
	Tier      tier.Tier `json:"tier" gorm:"not null;default:free"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// WatchItem is one symbol on a user's watch list.
type WatchItem struct {
	ID      int       `json:"id" gorm:"primaryKey"`
	UserID  string    `json:"user_id" gorm:"index;not null"`
	Symbol  string    `json:"symbol" gorm:"not null"`
	AddedAt time.Time `json:"added_at" gorm:"autoCreateTime"`
	User    User      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
