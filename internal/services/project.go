package services

import (
	"errors"

	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
)

type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

type CreateProjectRequest struct {
	Title       string   `json:"title" binding:"required,min=3,max=255"`
	Description string   `json:"description" binding:"required,min=10"`
	Images      []string `json:"images" binding:"omitempty,dive,url"`
}

type ProjectListRequest struct {
	NGOID uint `form:"ngo_id"`
}

// List returns projects of approved NGOs, or of one NGO when NGOID is set.
func (s *ProjectService) List(req *ProjectListRequest) ([]models.Project, error) {
	approved := s.db.Model(&models.NGO{}).Select("id").Where("status = ?", models.NGOStatusApproved)
	query := s.db.Preload("NGO", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "brand_name", "logo")
	}).Where("ngo_id IN (?)", approved)
	if req.NGOID != 0 {
		query = query.Where("ngo_id = ?", req.NGOID)
	}

	projects := make([]models.Project, 0)
	err := query.Order("created_at DESC").Order("id DESC").Find(&projects).Error
	return projects, err
}

// Create adds a project to the caller's NGO.
func (s *ProjectService) Create(req *CreateProjectRequest, p Principal) (*models.Project, error) {
	var ngo models.NGO
	if err := s.db.Where("user_id = ?", p.UserID).First(&ngo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewForbidden("only NGO owners can add projects")
		}
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	project := &models.Project{
		NGOID:       ngo.ID,
		Title:       req.Title,
		Description: req.Description,
		Images:      models.StringList(req.Images),
	}
	if err := s.db.Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project. Only the owning NGO or an admin may do so.
func (s *ProjectService) Delete(projectID uint, p Principal) error {
	var project models.Project
	if err := s.db.Preload("NGO").First(&project, projectID).Error; err != nil {
		return notFoundOr(err, "project not found")
	}
	if !p.CanManageNGO(project.NGO) {
		return response.NewForbidden("you cannot delete this project")
	}
	return s.db.Delete(&models.Project{}, project.ID).Error
}
