package services

import (
	"strconv"

	"github.com/microcosm-cc/bluemonday"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/internal/utils"
	"github.com/volunteerhub/backend/pkg/logger"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
)

const maxSlugAttempts = 100

type ArticleService struct {
	db     *gorm.DB
	policy *bluemonday.Policy
}

func NewArticleService(db *gorm.DB) *ArticleService {
	return &ArticleService{db: db, policy: bluemonday.UGCPolicy()}
}

type CreateArticleRequest struct {
	Title      string   `json:"title" binding:"required,min=5,max=255"`
	Content    string   `json:"content" binding:"required,min=100"`
	Excerpt    string   `json:"excerpt" binding:"max=1000"`
	Category   string   `json:"category" binding:"required,min=2,max=100"`
	Published  bool     `json:"published"`
	VideoURL   string   `json:"video_url" binding:"omitempty,url"`
	PDFURL     string   `json:"pdf_url" binding:"omitempty,url"`
	CoverImage string   `json:"cover_image" binding:"max=500"`
	FileURL    string   `json:"file_url" binding:"max=500"`
	Tags       []string `json:"tags" binding:"omitempty,dive,notblank"`
	Speaker    string   `json:"speaker" binding:"max=255"`
}

type ArticleListRequest struct {
	Category  string `form:"category"`
	Published *bool  `form:"published"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// List returns newest articles first. Only staff may list unpublished ones.
func (s *ArticleService) List(req *ArticleListRequest, p *Principal) ([]models.Article, error) {
	limit := req.Limit
	if limit == 0 {
		limit = 100
	}

	query := s.db.Model(&models.Article{})
	staff := p != nil && p.IsStaff()
	switch {
	case !staff:
		query = query.Where("published = ?", true)
	case req.Published != nil:
		query = query.Where("published = ?", *req.Published)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}

	articles := make([]models.Article, 0)
	err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&articles).Error
	return articles, err
}

func (s *ArticleService) GetBySlug(slug string, p *Principal) (*models.Article, error) {
	var article models.Article
	if err := s.db.Where("slug = ?", slug).First(&article).Error; err != nil {
		return nil, notFoundOr(err, "article not found")
	}
	if !article.Published && (p == nil || !p.IsStaff()) {
		return nil, response.NewNotFound("article not found")
	}
	return &article, nil
}

// Create stores an article with sanitized content and a unique slug.
func (s *ArticleService) Create(req *CreateArticleRequest, p Principal) (*models.Article, error) {
	if !p.IsAdmin() {
		return nil, response.NewForbidden("admin role required")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(req.Title)
	if err != nil {
		return nil, err
	}

	authorID := p.UserID
	article := &models.Article{
		Title:      req.Title,
		Slug:       slug,
		Content:    s.policy.Sanitize(req.Content),
		Excerpt:    req.Excerpt,
		Category:   req.Category,
		Published:  req.Published,
		VideoURL:   req.VideoURL,
		PDFURL:     req.PDFURL,
		CoverImage: req.CoverImage,
		FileURL:    req.FileURL,
		Tags:       models.StringList(req.Tags),
		Speaker:    req.Speaker,
		AuthorID:   &authorID,
	}
	if err := s.db.Create(article).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return nil, response.NewConflict("article with this slug already exists")
		}
		return nil, err
	}

	logger.Info().Uint("article_id", article.ID).Str("slug", slug).Msg("[Article] created")
	return article, nil
}

// uniqueSlug appends -2, -3, ... until the slug is free.
func (s *ArticleService) uniqueSlug(title string) (string, error) {
	base := utils.Slugify(title)
	if base == "" {
		base = "article"
	}
	slug := base
	for i := 2; i <= maxSlugAttempts; i++ {
		var count int64
		if err := s.db.Model(&models.Article{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(i)
	}
	return "", response.NewConflict("article with this slug already exists")
}

func (s *ArticleService) Delete(articleID uint, p Principal) error {
	if !p.IsAdmin() {
		return response.NewForbidden("admin role required")
	}
	result := s.db.Delete(&models.Article{}, articleID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("article not found")
	}
	return nil
}
