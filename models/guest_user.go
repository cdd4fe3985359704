package models

import "time"

type GuestUser struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (g GuestUser) Expired(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}
