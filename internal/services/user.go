package services

import (
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/internal/utils"
	"github.com/volunteerhub/backend/pkg/logger"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UserListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Role     string `form:"role" binding:"omitempty,oneof=VOLUNTEER NGO ADMIN MODERATOR"`
	Search   string `form:"search"`
}

type UserListResponse struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Items    []models.User `json:"items"`
}

func (s *UserService) List(req *UserListRequest) (*UserListResponse, error) {
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 20
	}

	query := s.db.Model(&models.User{})
	if req.Role != "" {
		query = query.Where("role = ?", req.Role)
	}
	if req.Search != "" {
		pattern := utils.LikePattern(req.Search)
		query = query.Where("email LIKE ? ESCAPE '!' OR name LIKE ? ESCAPE '!'", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	users := make([]models.User, 0)
	offset := (req.Page - 1) * req.PageSize
	if err := query.Offset(offset).Limit(req.PageSize).Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	return &UserListResponse{
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
		Items:    users,
	}, nil
}

// Delete removes a user with everything they own. Admins cannot delete
// themselves.
func (s *UserService) Delete(userID uint, p Principal) error {
	if !p.IsAdmin() {
		return response.NewForbidden("admin role required")
	}
	if userID == p.UserID {
		return response.NewBadRequest("cannot delete yourself")
	}

	var user models.User
	if err := s.db.Select("id").First(&user, userID).Error; err != nil {
		return notFoundOr(err, "user not found")
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return models.DeleteUserCascade(tx, user.ID)
	}); err != nil {
		return err
	}

	logger.Info().Uint("user_id", userID).Uint("by", p.UserID).Msg("[User] deleted")
	return nil
}
