package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jm8gw/ai-photo-editor/config"
)

// Database owns the process-wide connection handles. It is constructed once
// at startup and passed to every service; the handles are reused for the
// life of the process and never explicitly torn down.
type Database struct {
	DB    *gorm.DB
	Redis *redis.Client
}

var Ctx = context.Background()

func Connect(cfg *config.Config) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisFullAddr(),
		Password: cfg.RedisPassword,
		DB:       0, // use default DB
	})

	if _, err := rdb.Ping(Ctx).Result(); err != nil {
		return nil, err
	}

	return &Database{DB: db, Redis: rdb}, nil
}
