//go:build ignore

package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/sonna/artists-backend/internal/database"
	"github.com/sonna/artists-backend/internal/database/models"
	"github.com/sonna/artists-backend/pkg/config"
	"github.com/sonna/artists-backend/pkg/util"
)

// Seeds the streaming platform catalog the distribution fan-out targets.
// Safe to run repeatedly.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	platforms := []models.StreamingPlatform{
		{Name: "Spotify", BaseURL: "https://open.spotify.com", IsActive: true},
		{Name: "Apple Music", BaseURL: "https://music.apple.com", IsActive: true},
		{Name: "YouTube Music", BaseURL: "https://music.youtube.com", IsActive: true},
		{Name: "Deezer", BaseURL: "https://www.deezer.com", IsActive: true},
		{Name: "Tidal", BaseURL: "https://tidal.com", IsActive: false},
	}

	created := 0
	for _, p := range platforms {
		var count int64
		if err := db.Model(&models.StreamingPlatform{}).Where("name = ?", p.Name).Count(&count).Error; err != nil {
			log.Fatalf("failed to check platform %s: %v", p.Name, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			log.Fatalf("failed to create platform %s: %v", p.Name, err)
		}
		created++
	}

	fmt.Printf("Seeded %d streaming platforms\n", created)
}
