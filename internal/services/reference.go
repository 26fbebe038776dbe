package services

import (
	"context"
	"time"

	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/logger"
	"gorm.io/gorm"
)

const (
	citiesCacheKey     = "reference:cities"
	categoriesCacheKey = "reference:categories"
	referenceCacheTTL  = time.Hour
)

// ReferenceService serves seeded cities and categories and the map layer.
type ReferenceService struct {
	db    *gorm.DB
	cache Cache
}

func NewReferenceService(db *gorm.DB, cache Cache) *ReferenceService {
	return &ReferenceService{db: db, cache: cache}
}

func (s *ReferenceService) Cities(ctx context.Context) ([]models.City, error) {
	cities := make([]models.City, 0)
	err := s.cached(ctx, citiesCacheKey, &cities, func() error {
		return s.db.Order("name ASC").Find(&cities).Error
	})
	return cities, err
}

func (s *ReferenceService) Categories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)
	err := s.cached(ctx, categoriesCacheKey, &categories, func() error {
		return s.db.Order("id ASC").Find(&categories).Error
	})
	return categories, err
}

// Invalidate drops the cached reference lists, used after reseeding.
func (s *ReferenceService) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, citiesCacheKey, categoriesCacheKey)
}

// cached fills dest from the cache, or runs load and stores the result.
// Cache failures only cost a database round trip.
func (s *ReferenceService) cached(ctx context.Context, key string, dest interface{}, load func() error) error {
	if found, err := s.cache.Get(ctx, key, dest); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("[Reference] cache read failed")
	} else if found {
		return nil
	}

	if err := load(); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, key, dest, referenceCacheTTL); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("[Reference] cache write failed")
	}
	return nil
}

type MapPoint struct {
	ID        uint       `json:"id"`
	Kind      string     `json:"kind"` // ngo, event
	Title     string     `json:"title"`
	City      string     `json:"city"`
	Address   string     `json:"address"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	StartDate *time.Time `json:"start_date,omitempty"`
}

type MapData struct {
	NGOs   []MapPoint `json:"ngos"`
	Events []MapPoint `json:"events"`
}

// MapData returns approved NGOs and upcoming published events that have
// coordinates, optionally limited to one city.
func (s *ReferenceService) MapData(city string) (*MapData, error) {
	ngoQuery := s.db.Where("status = ? AND latitude IS NOT NULL AND longitude IS NOT NULL", models.NGOStatusApproved)
	eventQuery := s.db.Where("status = ? AND start_date >= ? AND latitude IS NOT NULL AND longitude IS NOT NULL",
		models.EventStatusPublished, time.Now())
	if city != "" {
		ngoQuery = ngoQuery.Where("city = ?", city)
		eventQuery = eventQuery.Where("city = ?", city)
	}

	var ngos []models.NGO
	if err := ngoQuery.Order("id ASC").Find(&ngos).Error; err != nil {
		return nil, err
	}
	var events []models.Event
	if err := eventQuery.Order("start_date ASC").Find(&events).Error; err != nil {
		return nil, err
	}

	data := &MapData{
		NGOs:   make([]MapPoint, 0, len(ngos)),
		Events: make([]MapPoint, 0, len(events)),
	}
	for _, n := range ngos {
		data.NGOs = append(data.NGOs, MapPoint{
			ID: n.ID, Kind: "ngo", Title: n.BrandName, City: n.City, Address: n.Address,
			Latitude: *n.Latitude, Longitude: *n.Longitude,
		})
	}
	for _, e := range events {
		data.Events = append(data.Events, MapPoint{
			ID: e.ID, Kind: "event", Title: e.Title, City: e.City, Address: e.Address,
			Latitude: *e.Latitude, Longitude: *e.Longitude, StartDate: &e.StartDate,
		})
	}
	return data, nil
}
