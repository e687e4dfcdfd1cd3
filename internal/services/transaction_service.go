package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jm8gw/ai-photo-editor/internal/models"
)

// TransactionService keeps the append-only log of settled credit
// purchases and applies each one to the ledger at most once.
type TransactionService struct {
	db    *gorm.DB
	users *UserService
}

func NewTransactionService(db *gorm.DB, users *UserService) *TransactionService {
	return &TransactionService{db: db, users: users}
}

// CheckoutCompleted is a verified payment event reduced to what the log
// needs.
type CheckoutCompleted struct {
	StripeID    string
	AmountMinor int64 // provider minor unit, i.e. cents
	Plan        string
	Credits     int64
	BuyerID     string // identity reference
}

// RecordCheckout inserts the transaction and credits the buyer in one
// database transaction. The insert uses the provider charge id as the
// conflict key: a redelivered event changes nothing and the credit is not
// re-applied. The returned bool reports whether this delivery took effect.
func (s *TransactionService) RecordCheckout(evt CheckoutCompleted) (*models.Transaction, bool, error) {
	if evt.StripeID == "" {
		return nil, false, errors.New("missing charge id")
	}

	txn := models.Transaction{
		StripeID:  evt.StripeID,
		Amount:    float64(evt.AmountMinor) / 100,
		Plan:      evt.Plan,
		Credits:   evt.Credits,
		BuyerID:   evt.BuyerID,
		CreatedAt: time.Now(),
	}

	applied := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_id"}},
			DoNothing: true,
		}).Create(&txn)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already settled by an earlier delivery
			return tx.Where("stripe_id = ?", evt.StripeID).First(&txn).Error
		}

		applied = true
		if evt.Credits != 0 {
			if _, err := adjustCredits(tx, evt.BuyerID, evt.Credits); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if applied {
		s.users.invalidate(evt.BuyerID)
	}
	return &txn, applied, nil
}

// FindByBuyer lists a buyer's purchases, newest first.
func (s *TransactionService) FindByBuyer(buyerID string, page, limit int) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	query := s.db.Model(&models.Transaction{}).Where("buyer_id = ?", buyerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, total, nil
}
