package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/internal/utils"
	"github.com/volunteerhub/backend/pkg/logger"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NGOService struct {
	db       *gorm.DB
	notifier *NotificationService
	appURL   string
}

func NewNGOService(db *gorm.DB, notifier *NotificationService, appURL string) *NGOService {
	return &NGOService{db: db, notifier: notifier, appURL: appURL}
}

type RegisterNGORequest struct {
	LegalName        string   `json:"legal_name" binding:"required,min=2,max=255"`
	BrandName        string   `json:"brand_name" binding:"required,min=2,max=255"`
	INN              string   `json:"inn" binding:"required,len=10,numeric"`
	Description      string   `json:"description" binding:"required,min=50"`
	Mission          string   `json:"mission" binding:"max=5000"`
	City             string   `json:"city" binding:"required,min=2,max=100"`
	Address          string   `json:"address" binding:"required,min=5,max=500"`
	Latitude         *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude        *float64 `json:"longitude" binding:"omitempty,longitude"`
	Phone            string   `json:"phone" binding:"required,min=10,max=50"`
	Email            string   `json:"email" binding:"required,email"`
	Website          string   `json:"website" binding:"omitempty,url"`
	VKLink           string   `json:"vk_link" binding:"omitempty,url"`
	TelegramLink     string   `json:"telegram_link" binding:"max=500"`
	Logo             string   `json:"logo" binding:"omitempty,url"`
	CoverImage       string   `json:"cover_image" binding:"omitempty,url"`
	Categories       []string `json:"categories" binding:"required,min=1,dive,notblank"`
	OrganizationType string   `json:"organization_type" binding:"required,min=2,max=100"`
}

// UpdateNGORequest carries a partial profile update; nil fields are left as is.
type UpdateNGORequest struct {
	LegalName        *string   `json:"legal_name" binding:"omitempty,min=2,max=255"`
	BrandName        *string   `json:"brand_name" binding:"omitempty,min=2,max=255"`
	Description      *string   `json:"description" binding:"omitempty,min=50"`
	Mission          *string   `json:"mission" binding:"omitempty,max=5000"`
	City             *string   `json:"city" binding:"omitempty,min=2,max=100"`
	Address          *string   `json:"address" binding:"omitempty,min=5,max=500"`
	Latitude         *float64  `json:"latitude" binding:"omitempty,latitude"`
	Longitude        *float64  `json:"longitude" binding:"omitempty,longitude"`
	Phone            *string   `json:"phone" binding:"omitempty,min=10,max=50"`
	Email            *string   `json:"email" binding:"omitempty,email"`
	Website          *string   `json:"website" binding:"omitempty,url|len=0"`
	VKLink           *string   `json:"vk_link" binding:"omitempty,url|len=0"`
	TelegramLink     *string   `json:"telegram_link" binding:"omitempty,max=500"`
	Logo             *string   `json:"logo" binding:"omitempty,url|len=0"`
	CoverImage       *string   `json:"cover_image" binding:"omitempty,url|len=0"`
	Categories       *[]string `json:"categories" binding:"omitempty,min=1,dive,notblank"`
	OrganizationType *string   `json:"organization_type" binding:"omitempty,min=2,max=100"`
}

// NGOStatusRequest moves an NGO through its lifecycle.
type NGOStatusRequest struct {
	Status          string `json:"status" binding:"required,oneof=APPROVED REJECTED BLOCKED"`
	RejectionReason string `json:"rejection_reason" binding:"max=2000"`
}

// NGOPatchRequest is the body of PATCH /ngo/:id. A present status routes the
// call to the moderation path, anything else is a profile update.
type NGOPatchRequest struct {
	UpdateNGORequest
	Status          *string `json:"status" binding:"omitempty,oneof=APPROVED REJECTED BLOCKED"`
	RejectionReason string  `json:"rejection_reason" binding:"max=2000"`
}

// CheckMixed rejects a body that carries both a status and profile fields;
// the two go through different permission checks.
func (r *NGOPatchRequest) CheckMixed() error {
	if r.Status == nil || !r.UpdateNGORequest.hasChanges() {
		return nil
	}
	return response.NewValidation("request validation failed", []response.FieldError{
		{Field: "status", Message: "Cannot be combined with profile fields"},
	})
}

func (r *UpdateNGORequest) hasChanges() bool {
	for _, s := range []*string{
		r.LegalName, r.BrandName, r.Description, r.Mission, r.City, r.Address, r.Phone, r.Email,
		r.Website, r.VKLink, r.TelegramLink, r.Logo, r.CoverImage, r.OrganizationType,
	} {
		if s != nil {
			return true
		}
	}
	return r.Latitude != nil || r.Longitude != nil || r.Categories != nil
}

type NGOListRequest struct {
	City       string   `form:"city"`
	Categories []string `form:"category"`
	Status     string   `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED BLOCKED"`
	Limit      int      `form:"limit" binding:"omitempty,min=1,max=500"`
}

type NGOListItem struct {
	*models.NGO
	EventsCount int64 `json:"events_count"`
}

// Register creates a PENDING NGO owned by the caller.
func (s *NGOService) Register(p Principal, req *RegisterNGORequest) (*models.NGO, error) {
	if p.Role != models.RoleNGO {
		return nil, response.NewForbidden("only NGO accounts can register an organization")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// access tokens outlive account deletion
	var owner models.User
	if err := s.db.Select("id", "is_active").First(&owner, p.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("account no longer exists")
		}
		return nil, err
	}
	if !owner.IsActive {
		return nil, response.NewForbidden("account is disabled")
	}

	var count int64
	if err := s.db.Model(&models.NGO{}).Where("user_id = ?", p.UserID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("user already has an NGO")
	}
	if err := s.db.Model(&models.NGO{}).Where("inn = ?", req.INN).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("NGO with this INN already exists")
	}

	ngo := &models.NGO{
		UserID:           p.UserID,
		LegalName:        req.LegalName,
		BrandName:        req.BrandName,
		INN:              req.INN,
		Description:      req.Description,
		Mission:          req.Mission,
		City:             req.City,
		Address:          req.Address,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Phone:            req.Phone,
		Email:            req.Email,
		Website:          req.Website,
		VKLink:           req.VKLink,
		TelegramLink:     req.TelegramLink,
		Logo:             req.Logo,
		CoverImage:       req.CoverImage,
		Categories:       models.StringList(req.Categories),
		OrganizationType: req.OrganizationType,
		Status:           models.NGOStatusPending,
	}
	if err := s.db.Create(ngo).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return nil, response.NewConflict("NGO with this INN already exists")
		}
		return nil, err
	}

	logger.Info().Uint("ngo_id", ngo.ID).Uint("user_id", p.UserID).Msg("[NGO] registered")
	return ngo, nil
}

// Moderate approves or rejects a PENDING NGO.
func (s *NGOService) Moderate(ngoID uint, req *NGOStatusRequest, p Principal) (*models.NGO, error) {
	if req.Status != models.NGOStatusApproved && req.Status != models.NGOStatusRejected {
		return nil, response.NewBadRequest("invalid status transition")
	}
	return s.changeStatus(ngoID, models.NGOStatusPending, req.Status, req.RejectionReason, p)
}

// Block hides an approved NGO. Its events are left untouched.
func (s *NGOService) Block(ngoID uint, p Principal) (*models.NGO, error) {
	return s.changeStatus(ngoID, models.NGOStatusApproved, models.NGOStatusBlocked, "", p)
}

func (s *NGOService) Unblock(ngoID uint, p Principal) (*models.NGO, error) {
	return s.changeStatus(ngoID, models.NGOStatusBlocked, models.NGOStatusApproved, "", p)
}

// ChangeStatus applies any allowed transition for the NGO's current status.
func (s *NGOService) ChangeStatus(ngoID uint, req *NGOStatusRequest, p Principal) (*models.NGO, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	return s.changeStatus(ngoID, "", req.Status, req.RejectionReason, p)
}

// ngoTransitionRole returns the role check a transition needs, or nil when
// the transition does not exist.
func ngoTransitionRole(from, to string) func(Principal) bool {
	switch {
	case from == models.NGOStatusPending && (to == models.NGOStatusApproved || to == models.NGOStatusRejected):
		return Principal.IsStaff
	case from == models.NGOStatusApproved && to == models.NGOStatusBlocked,
		from == models.NGOStatusBlocked && to == models.NGOStatusApproved:
		return Principal.IsAdmin
	}
	return nil
}

func (s *NGOService) changeStatus(ngoID uint, expectFrom, to, reason string, p Principal) (*models.NGO, error) {
	if !p.IsStaff() {
		return nil, response.NewForbidden("moderator or admin role required")
	}

	var ngo models.NGO
	if err := s.db.Preload("User").First(&ngo, ngoID).Error; err != nil {
		return nil, notFoundOr(err, "NGO not found")
	}

	from := ngo.Status
	if expectFrom != "" && from != expectFrom {
		return nil, response.NewBadRequest("invalid status transition")
	}
	allowed := ngoTransitionRole(from, to)
	if allowed == nil {
		return nil, response.NewBadRequest("invalid status transition")
	}
	if !allowed(p) {
		return nil, response.NewForbidden("admin role required")
	}

	updates := map[string]interface{}{"status": to}
	if to == models.NGOStatusRejected {
		updates["rejection_reason"] = reason
	} else {
		updates["rejection_reason"] = ""
	}

	err := s.notifier.Transaction(func(tx *gorm.DB, n *TxNotifier) error {
		// the status guard makes concurrent moderators race safely
		result := tx.Model(&models.NGO{}).
			Where("id = ? AND status = ?", ngo.ID, from).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewBadRequest("invalid status transition")
		}
		return notifyNGOStatusChange(n, &ngo, from, to, reason)
	})
	if err != nil {
		return nil, err
	}

	ngo.Status = to
	ngo.RejectionReason = updates["rejection_reason"].(string)

	if from == models.NGOStatusPending && to == models.NGOStatusApproved && ngo.User != nil {
		s.notifier.SendEmail(ngo.User.Email, "Ваша организация одобрена", ngoApprovedEmail(s.appURL, ngo.BrandName))
	}

	logger.Info().Uint("ngo_id", ngo.ID).Str("from", from).Str("to", to).Uint("by", p.UserID).Msg("[NGO] status changed")
	return &ngo, nil
}

func notifyNGOStatusChange(n *TxNotifier, ngo *models.NGO, from, to, reason string) error {
	switch {
	case to == models.NGOStatusApproved && from == models.NGOStatusPending:
		return n.Notify(ngo.UserID, models.NotificationNGOApproved,
			"Организация одобрена",
			"Ваша организация «"+ngo.BrandName+"» прошла модерацию. Теперь вы можете создавать события.",
			"/ngo/dashboard")
	case to == models.NGOStatusApproved:
		return n.Notify(ngo.UserID, models.NotificationNGOApproved,
			"Организация разблокирована",
			"Ваша организация «"+ngo.BrandName+"» снова активна.",
			"/ngo/dashboard")
	case to == models.NGOStatusRejected:
		msg := "Ваша организация «" + ngo.BrandName + "» не прошла модерацию."
		if reason != "" {
			msg += " Причина: " + reason
		}
		return n.Notify(ngo.UserID, models.NotificationNGORejected, "Организация отклонена", msg, "/ngo/dashboard")
	case to == models.NGOStatusBlocked:
		return n.Notify(ngo.UserID, models.NotificationNGOBlocked,
			"Организация заблокирована",
			"Ваша организация «"+ngo.BrandName+"» заблокирована администратором.",
			"/ngo/dashboard")
	}
	return nil
}

// UpdateProfile edits profile fields. Status never changes on this path.
func (s *NGOService) UpdateProfile(ngoID uint, req *UpdateNGORequest, p Principal) (*models.NGO, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var ngo models.NGO
	if err := s.db.First(&ngo, ngoID).Error; err != nil {
		return nil, notFoundOr(err, "NGO not found")
	}
	if !p.CanManageNGO(&ngo) {
		return nil, response.NewForbidden("you cannot edit this NGO")
	}

	setString(&ngo.LegalName, req.LegalName)
	setString(&ngo.BrandName, req.BrandName)
	setString(&ngo.Description, req.Description)
	setString(&ngo.Mission, req.Mission)
	setString(&ngo.City, req.City)
	setString(&ngo.Address, req.Address)
	setString(&ngo.Phone, req.Phone)
	setString(&ngo.Email, req.Email)
	setString(&ngo.Website, req.Website)
	setString(&ngo.VKLink, req.VKLink)
	setString(&ngo.TelegramLink, req.TelegramLink)
	setString(&ngo.Logo, req.Logo)
	setString(&ngo.CoverImage, req.CoverImage)
	setString(&ngo.OrganizationType, req.OrganizationType)
	if req.Latitude != nil {
		ngo.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		ngo.Longitude = req.Longitude
	}
	if req.Categories != nil {
		ngo.Categories = models.StringList(*req.Categories)
	}

	// status columns belong to changeStatus; a moderator may have moved the
	// row since it was loaded
	if err := s.db.Omit(clause.Associations, "status", "rejection_reason").Save(&ngo).Error; err != nil {
		return nil, err
	}

	var fresh models.NGO
	if err := s.db.First(&fresh, ngo.ID).Error; err != nil {
		return nil, notFoundOr(err, "NGO not found")
	}
	return &fresh, nil
}

// Delete removes the NGO with its events, participations and projects.
func (s *NGOService) Delete(ngoID uint, p Principal) error {
	if !p.IsAdmin() {
		return response.NewForbidden("admin role required")
	}
	var ngo models.NGO
	if err := s.db.Select("id").First(&ngo, ngoID).Error; err != nil {
		return notFoundOr(err, "NGO not found")
	}
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return models.DeleteNGOCascade(tx, ngo.ID)
	}); err != nil {
		return err
	}
	logger.Info().Uint("ngo_id", ngoID).Uint("by", p.UserID).Msg("[NGO] deleted")
	return nil
}

// List returns NGOs newest first. Anonymous callers and non-staff only ever
// see APPROVED organizations.
func (s *NGOService) List(req *NGOListRequest, p *Principal) ([]NGOListItem, error) {
	status := models.NGOStatusApproved
	if req.Status != "" && p != nil && p.IsStaff() {
		status = req.Status
	}
	limit := req.Limit
	if limit == 0 {
		limit = 100
	}

	query := s.db.Model(&models.NGO{}).Where("status = ?", status)
	if req.City != "" {
		query = query.Where("city = ?", req.City)
	}
	if len(req.Categories) > 0 {
		// categories are stored as a JSON array, match the quoted element
		or := s.db.Where("categories LIKE ? ESCAPE '!'", jsonElementPattern(req.Categories[0]))
		for _, c := range req.Categories[1:] {
			or = or.Or("categories LIKE ? ESCAPE '!'", jsonElementPattern(c))
		}
		query = query.Where(or)
	}

	var ngos []models.NGO
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&ngos).Error; err != nil {
		return nil, err
	}

	counts, err := s.eventCounts(ngos)
	if err != nil {
		return nil, err
	}
	items := make([]NGOListItem, len(ngos))
	for i := range ngos {
		items[i] = NGOListItem{NGO: &ngos[i], EventsCount: counts[ngos[i].ID]}
	}
	return items, nil
}

func (s *NGOService) eventCounts(ngos []models.NGO) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(ngos))
	if len(ngos) == 0 {
		return counts, nil
	}
	ids := make([]uint, len(ngos))
	for i, n := range ngos {
		ids[i] = n.ID
	}

	var rows []struct {
		NGOID uint  `gorm:"column:ngo_id"`
		Total int64 `gorm:"column:total"`
	}
	if err := s.db.Model(&models.Event{}).
		Select("ngo_id, COUNT(*) AS total").
		Where("ngo_id IN ?", ids).
		Group("ngo_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.NGOID] = r.Total
	}
	return counts, nil
}

// Get returns the NGO with its upcoming published events and projects.
func (s *NGOService) Get(ngoID uint, p *Principal) (*models.NGO, error) {
	var ngo models.NGO
	err := s.db.
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Where("status = ? AND start_date >= ?", models.EventStatusPublished, time.Now()).
				Order("start_date ASC")
		}).
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&ngo, ngoID).Error
	if err != nil {
		return nil, notFoundOr(err, "NGO not found")
	}
	if !p.CanSeeNGO(&ngo) {
		return nil, response.NewNotFound("NGO not found")
	}
	return &ngo, nil
}

// Mine returns the caller's NGO, or NotFound when they have none.
func (s *NGOService) Mine(p Principal) (*models.NGO, error) {
	var ngo models.NGO
	if err := s.db.Where("user_id = ?", p.UserID).First(&ngo).Error; err != nil {
		return nil, notFoundOr(err, "NGO not found")
	}
	return &ngo, nil
}

// ListPending is the moderation queue, oldest first.
func (s *NGOService) ListPending(p Principal) ([]models.NGO, error) {
	if !p.IsStaff() {
		return nil, response.NewForbidden("moderator or admin role required")
	}
	ngos := make([]models.NGO, 0)
	err := s.db.Preload("User").
		Where("status = ?", models.NGOStatusPending).
		Order("created_at ASC").
		Find(&ngos).Error
	return ngos, err
}

// jsonElementPattern matches one element inside a StringList column.
func jsonElementPattern(value string) string {
	quoted, _ := json.Marshal(value)
	return utils.LikePattern(string(quoted))
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
