package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/jm8gw/ai-photo-editor/internal/database"
	"github.com/jm8gw/ai-photo-editor/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserService owns the local mirror of identity-provider accounts and is
// the single mutation point for credit balances.
type UserService struct {
	db  *gorm.DB
	rdb *redis.Client // optional; nil disables the cache
}

func NewUserService(db *gorm.DB, rdb *redis.Client) *UserService {
	return &UserService{db: db, rdb: rdb}
}

func userCacheKey(clerkID string) string {
	return fmt.Sprintf("user:%s", clerkID)
}

// Create inserts a user synced from an identity "created" event.
func (s *UserService) Create(user *models.User) error {
	return s.db.Create(user).Error
}

// FindByClerkID resolves an identity reference to the local record,
// reading through the Redis cache.
func (s *UserService) FindByClerkID(clerkID string) (models.User, error) {
	cacheKey := userCacheKey(clerkID)
	if s.rdb != nil {
		val, err := s.rdb.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return user, nil
			}
		}
	}

	var user models.User
	if err := s.db.Where("clerk_id = ?", clerkID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		return user, err
	}

	if s.rdb != nil {
		if data, err := json.Marshal(user); err == nil {
			s.rdb.Set(database.Ctx, cacheKey, data, time.Hour)
		}
	}

	return user, nil
}

// UserUpdate carries the mutable profile fields patched by identity
// "updated" events.
type UserUpdate struct {
	Username  string
	FirstName string
	LastName  string
	Photo     string
}

// Update patches the profile fields on the record matched by identity id.
func (s *UserService) Update(clerkID string, update UserUpdate) (*models.User, error) {
	result := s.db.Model(&models.User{}).Where("clerk_id = ?", clerkID).Updates(map[string]interface{}{
		"username":   update.Username,
		"first_name": update.FirstName,
		"last_name":  update.LastName,
		"photo":      update.Photo,
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	s.invalidate(clerkID)

	var user models.User
	if err := s.db.Where("clerk_id = ?", clerkID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes the record for a deleted identity. Images and
// transactions referencing it are left in place as orphaned references.
func (s *UserService) Delete(clerkID string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("clerk_id = ?", clerkID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.db.Delete(&models.User{}, user.ID).Error; err != nil {
		return nil, err
	}

	s.invalidate(clerkID)
	return &user, nil
}

// AdjustCredits applies a relative balance change and returns the updated
// record. No floor is enforced here: deltas are relative adjustments, so
// concurrent debits stay correct in aggregate, and the transformation
// workflow gates affordability before it ever reaches this point.
func (s *UserService) AdjustCredits(clerkID string, delta int64) (*models.User, error) {
	user, err := adjustCredits(s.db, clerkID, delta)
	if err != nil {
		return nil, err
	}
	s.invalidate(clerkID)
	return user, nil
}

// adjustCredits is the ledger's single mutation point. Every balance
// change in the codebase funnels through here, usually inside a caller's
// transaction so the adjustment commits or rolls back with the record
// write that justified it.
func adjustCredits(tx *gorm.DB, clerkID string, delta int64) (*models.User, error) {
	result := tx.Model(&models.User{}).Where("clerk_id = ?", clerkID).
		UpdateColumn("credit_balance", gorm.Expr("credit_balance + ?", delta))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := tx.Where("clerk_id = ?", clerkID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) invalidate(clerkID string) {
	if s.rdb != nil {
		s.rdb.Del(database.Ctx, userCacheKey(clerkID))
	}
}
