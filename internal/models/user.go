package models

import "time"

// User mirrors an identity-provider account. ClerkID is the provider's
// stable identifier; the row is created and deleted by identity webhooks,
// never by the application itself.
type User struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	ClerkID       string `gorm:"uniqueIndex;not null" json:"clerk_id"`
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	Username      string `gorm:"uniqueIndex;not null" json:"username"`
	Photo         string `gorm:"not null" json:"photo"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	PlanID        int    `gorm:"default:1" json:"plan_id"`
	CreditBalance int64  `gorm:"default:10" json:"credit_balance"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
