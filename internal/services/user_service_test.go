package services

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jm8gw/ai-photo-editor/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	db.Migrator().DropTable(&models.User{}, &models.Image{}, &models.Transaction{})
	if err := db.AutoMigrate(&models.User{}, &models.Image{}, &models.Transaction{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestAdjustCredits(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, nil)

	user := models.User{
		ClerkID:       "user_abc",
		Email:         "abc@example.com",
		Username:      "abc",
		CreditBalance: 10,
	}
	db.Create(&user)

	// Credit
	updated, err := svc.AdjustCredits("user_abc", 150)
	assert.NoError(t, err)
	assert.Equal(t, int64(160), updated.CreditBalance)

	// Debit
	updated, err = svc.AdjustCredits("user_abc", -1)
	assert.NoError(t, err)
	assert.Equal(t, int64(159), updated.CreditBalance)

	// No floor: a delta exceeding the balance goes negative, exactly
	updated, err = svc.AdjustCredits("user_abc", -500)
	assert.NoError(t, err)
	assert.Equal(t, int64(-341), updated.CreditBalance)

	// Unresolvable identity reference
	_, err = svc.AdjustCredits("user_missing", 5)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdjustCreditsInvalidatesCache(t *testing.T) {
	db := setupTestDB(t)
	mr, rdb := setupTestRedis(t)
	defer mr.Close()

	svc := NewUserService(db, rdb)

	user := models.User{
		ClerkID:       "user_cached",
		Email:         "cached@example.com",
		Username:      "cached",
		CreditBalance: 10,
	}
	db.Create(&user)

	// Prime the cache
	got, err := svc.FindByClerkID("user_cached")
	assert.NoError(t, err)
	assert.Equal(t, int64(10), got.CreditBalance)
	assert.True(t, mr.Exists("user:user_cached"))

	_, err = svc.AdjustCredits("user_cached", -3)
	assert.NoError(t, err)
	assert.False(t, mr.Exists("user:user_cached"))

	got, err = svc.FindByClerkID("user_cached")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), got.CreditBalance)
}

func TestUserLifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, nil)

	err := svc.Create(&models.User{
		ClerkID:  "user_life",
		Email:    "life@example.com",
		Username: "lifer",
		Photo:    "https://img.example.com/a.png",
	})
	assert.NoError(t, err)

	// Documented default balance
	got, err := svc.FindByClerkID("user_life")
	assert.NoError(t, err)
	assert.Equal(t, int64(10), got.CreditBalance)
	assert.Equal(t, 1, got.PlanID)

	updated, err := svc.Update("user_life", UserUpdate{
		Username:  "renamed",
		FirstName: "Life",
		LastName:  "User",
		Photo:     "https://img.example.com/b.png",
	})
	assert.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, "Life", updated.FirstName)

	deleted, err := svc.Delete("user_life")
	assert.NoError(t, err)
	assert.Equal(t, "user_life", deleted.ClerkID)

	_, err = svc.FindByClerkID("user_life")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Delete("user_life")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteLeavesOrphanedReferences(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db, nil)

	user := models.User{ClerkID: "user_orphan", Email: "o@example.com", Username: "orphan"}
	db.Create(&user)
	db.Create(&models.Image{
		Title:              "kept",
		TransformationType: "restore",
		PublicID:           "folder/kept",
		SecureURL:          "https://img.example.com/kept.png",
		AuthorID:           user.ID,
	})

	_, err := svc.Delete("user_orphan")
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Image{}).Where("author_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
