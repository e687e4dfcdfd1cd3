package main

import (
	"log"

	"github.com/jm8gw/ai-photo-editor/config"
	"github.com/jm8gw/ai-photo-editor/internal/api"
	"github.com/jm8gw/ai-photo-editor/internal/database"
	"github.com/jm8gw/ai-photo-editor/internal/models"
	"github.com/jm8gw/ai-photo-editor/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err = logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Migrate the schema
	err = db.DB.AutoMigrate(&models.User{}, &models.Image{}, &models.Transaction{})
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	router, err := api.NewRouter(cfg, db)
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	if err := router.Run(":8080"); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
