package services

import (
	"strings"
	"unicode/utf8"

	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/internal/utils"
	"gorm.io/gorm"
)

const (
	searchMinQueryLength = 2
	searchResultLimit    = 20
)

type SearchService struct {
	db *gorm.DB
}

func NewSearchService(db *gorm.DB) *SearchService {
	return &SearchService{db: db}
}

type SearchNGO struct {
	ID          uint   `json:"id"`
	BrandName   string `json:"brand_name"`
	Description string `json:"description"`
	City        string `json:"city"`
	Logo        string `json:"logo"`
}

type SearchArticle struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt"`
	Slug       string `json:"slug"`
	CoverImage string `json:"cover_image"`
	Category   string `json:"category"`
}

type SearchResult struct {
	NGOs     []SearchNGO     `json:"ngos"`
	Events   []models.Event  `json:"events"`
	Articles []SearchArticle `json:"articles"`
}

func emptySearchResult() *SearchResult {
	return &SearchResult{
		NGOs:     []SearchNGO{},
		Events:   []models.Event{},
		Articles: []SearchArticle{},
	}
}

// Search matches approved NGOs, published events and published articles by
// case-insensitive substring. Each kind is capped independently.
func (s *SearchService) Search(q string) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < searchMinQueryLength {
		return emptySearchResult(), nil
	}
	pattern := utils.LikePattern(utils.Fold(q))
	result := emptySearchResult()

	var ngos []models.NGO
	if err := s.db.Where("status = ?", models.NGOStatusApproved).
		Where("search_text LIKE ? ESCAPE '!'", pattern).
		Order("id ASC").
		Limit(searchResultLimit).
		Find(&ngos).Error; err != nil {
		return nil, err
	}
	for _, n := range ngos {
		result.NGOs = append(result.NGOs, SearchNGO{
			ID: n.ID, BrandName: n.BrandName, Description: n.Description, City: n.City, Logo: n.Logo,
		})
	}

	if err := s.db.Preload("NGO", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "brand_name")
	}).
		Where("status = ?", models.EventStatusPublished).
		Where("search_text LIKE ? ESCAPE '!'", pattern).
		Order("start_date ASC").
		Limit(searchResultLimit).
		Find(&result.Events).Error; err != nil {
		return nil, err
	}

	var articles []models.Article
	if err := s.db.Where("published = ?", true).
		Where("search_text LIKE ? ESCAPE '!'", pattern).
		Order("created_at DESC").
		Limit(searchResultLimit).
		Find(&articles).Error; err != nil {
		return nil, err
	}
	for _, a := range articles {
		result.Articles = append(result.Articles, SearchArticle{
			ID: a.ID, Title: a.Title, Excerpt: a.Excerpt, Slug: a.Slug, CoverImage: a.CoverImage, Category: a.Category,
		})
	}

	return result, nil
}
