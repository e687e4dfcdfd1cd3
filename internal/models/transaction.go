package models

import "time"

// Transaction is one settled credit purchase. The table is append-only:
// rows are created once per verified checkout event and never mutated.
// StripeID is the provider's event-level charge id and is unique so a
// redelivered webhook cannot apply twice.
type Transaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"precision:3" json:"created_at"`
	StripeID  string    `gorm:"uniqueIndex;not null" json:"stripe_id"`
	Amount    float64   `gorm:"type:decimal(20,2);not null" json:"amount"`
	Plan      string    `gorm:"type:varchar(100)" json:"plan"`
	Credits   int64     `json:"credits"`
	// BuyerID is the buyer's identity reference (not the local row id);
	// it may dangle after the buyer's account is deleted.
	BuyerID string `gorm:"index" json:"buyer_id"`
}
