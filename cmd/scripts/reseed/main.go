package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/internal/services"
)

// reseed inserts missing cities and categories and drops the cached copies
// so that running servers pick them up.
func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := models.OpenDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer models.CloseDB(db)

	fmt.Println("Connected to database successfully!")

	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var citiesBefore, categoriesBefore int64
	db.Model(&models.City{}).Count(&citiesBefore)
	db.Model(&models.Category{}).Count(&categoriesBefore)

	if err := models.SeedReferenceData(db); err != nil {
		log.Fatalf("Failed to seed reference data: %v", err)
	}

	var citiesAfter, categoriesAfter int64
	db.Model(&models.City{}).Count(&citiesAfter)
	db.Model(&models.Category{}).Count(&categoriesAfter)

	fmt.Printf("Cities:     %d (+%d)\n", citiesAfter, citiesAfter-citiesBefore)
	fmt.Printf("Categories: %d (+%d)\n", categoriesAfter, categoriesAfter-categoriesBefore)

	cache := services.NewCache(&cfg.Redis)
	defer cache.Close()
	if err := services.NewReferenceService(db, cache).Invalidate(context.Background()); err != nil {
		log.Printf("Warning: failed to invalidate reference cache: %v", err)
		return
	}
	fmt.Println("Reference cache invalidated.")
}
