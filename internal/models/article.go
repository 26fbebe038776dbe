package models

import (
	"time"

	"github.com/volunteerhub/backend/internal/utils"
	"gorm.io/gorm"
)

// Article is a knowledge base entry: text, video lecture or document.
type Article struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:255;not null" json:"title"`
	Slug       string     `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Content    string     `gorm:"type:text" json:"content"` // sanitized HTML
	Excerpt    string     `gorm:"type:text" json:"excerpt"`
	Category   string     `gorm:"size:100;index" json:"category"`
	Published  bool       `gorm:"default:false;index" json:"published"`
	VideoURL   string     `gorm:"column:video_url;size:500" json:"video_url"`
	PDFURL     string     `gorm:"column:pdf_url;size:500" json:"pdf_url"`
	FileURL    string     `gorm:"column:file_url;size:500" json:"file_url"`
	CoverImage string     `gorm:"size:500" json:"cover_image"`
	Tags       StringList `json:"tags"`
	Speaker    string     `gorm:"size:255" json:"speaker"`
	AuthorID   *uint      `json:"author_id"`
	SearchText string     `gorm:"type:text" json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Article) TableName() string { return "articles" }

func (a *Article) BeforeSave(tx *gorm.DB) error {
	a.SearchText = utils.FoldJoin(a.Title, a.Content, a.Excerpt, a.Tags.Join(" "), a.Category)
	return nil
}
