package services

import (
	"github.com/volunteerhub/backend/internal/models"
	"gorm.io/gorm"
)

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

type AdminStats struct {
	TotalNGOs       int64 `json:"total_ngos"`
	TotalVolunteers int64 `json:"total_volunteers"`
	TotalEvents     int64 `json:"total_events"`
	PendingNGOs     int64 `json:"pending_ngos"`
	PendingEvents   int64 `json:"pending_events"`
	TotalArticles   int64 `json:"total_articles"`
}

func (s *StatsService) Admin() (*AdminStats, error) {
	stats := &AdminStats{}
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalNGOs, s.db.Model(&models.NGO{})},
		{&stats.TotalVolunteers, s.db.Model(&models.User{}).Where("role = ?", models.RoleVolunteer)},
		{&stats.TotalEvents, s.db.Model(&models.Event{})},
		{&stats.PendingNGOs, s.db.Model(&models.NGO{}).Where("status = ?", models.NGOStatusPending)},
		{&stats.PendingEvents, s.db.Model(&models.Event{}).Where("status = ?", models.EventStatusDraft)},
		{&stats.TotalArticles, s.db.Model(&models.Article{})},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}
