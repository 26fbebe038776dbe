package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/internal/utils"
	"github.com/volunteerhub/backend/pkg/logger"
	"github.com/volunteerhub/backend/pkg/response"
	"gorm.io/gorm"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
	adminCfg  *config.AdminConfig
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig, adminCfg *config.AdminConfig) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg, adminCfg: adminCfg}
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=VOLUNTEER NGO"`
	City     string `json:"city" binding:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResult struct {
	AccessToken     string       `json:"access_token"`
	AccessExpireAt  time.Time    `json:"access_expire_at"`
	RefreshToken    string       `json:"refresh_token"`
	RefreshExpireAt time.Time    `json:"refresh_expire_at"`
	User            *models.User `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a local account. Only VOLUNTEER and NGO can sign up.
func (s *AuthService) Signup(req *SignupRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleVolunteer
	}
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, response.NewConflict("user with this email already exists")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		Password:     hashed,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		City:         req.City,
		AuthProvider: models.AuthProviderLocal,
		IsActive:     true,
	}
	if err := s.db.Create(user).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return nil, response.NewConflict("user with this email already exists")
		}
		return nil, err
	}

	logger.Info().Uint("user_id", user.ID).Str("role", role).Msg("[Auth] user signed up")
	return user, nil
}

// Login checks the credentials and opens a session.
func (s *AuthService) Login(req *LoginRequest, clientIP, userAgent string) (*LoginResult, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}
	if user.Password == "" || !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid email or password")
	}
	if !user.IsActive {
		return nil, response.NewUnauthorized("user is disabled")
	}
	return s.IssueSession(&user, clientIP, userAgent)
}

// IssueSession creates an access token and a stored refresh token for user.
func (s *AuthService) IssueSession(user *models.User, clientIP, userAgent string) (*LoginResult, error) {
	accessHours := s.accessTokenHours()
	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, accessHours)
	if err != nil {
		return nil, err
	}

	refreshToken, refreshHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: refreshHash,
		ExpiresAt: now.Add(s.refreshTokenTTL()),
		IP:        clientIP,
		UserAgent: truncate(userAgent, 255),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}

	user.LastLogin = &now
	if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).UpdateColumn("last_login", now).Error; err != nil {
		logger.Warn().Err(err).Uint("user_id", user.ID).Msg("[Auth] failed to update last login")
	}

	return &LoginResult{
		AccessToken:     token,
		AccessExpireAt:  now.Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    refreshToken,
		RefreshExpireAt: record.ExpiresAt,
		User:            user,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The old token is revoked
// and linked to its replacement.
func (s *AuthService) Refresh(refreshToken, clientIP, userAgent string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, response.NewUnauthorized("refresh token required")
	}

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", hashRefreshToken(refreshToken)).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}
	now := time.Now()
	if !stored.Active(now) {
		return nil, response.NewUnauthorized("refresh token expired or revoked")
	}

	var user models.User
	if err := s.db.First(&user, stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorized("user not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, response.NewUnauthorized("user is disabled")
	}

	accessHours := s.accessTokenHours()
	accessToken, err := utils.GenerateToken(user.ID, user.Email, user.Role, accessHours)
	if err != nil {
		return nil, err
	}
	newToken, newHash, err := generateRefreshToken()
	if err != nil {
		return nil, err
	}
	next := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: newHash,
		ExpiresAt: now.Add(s.refreshTokenTTL()),
		IP:        clientIP,
		UserAgent: truncate(userAgent, 255),
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&next).Error; err != nil {
			return err
		}
		// guarded so that two concurrent refreshes cannot both rotate the token
		result := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", stored.ID).
			Updates(map[string]interface{}{"revoked_at": now, "replaced_by": next.ID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return response.NewUnauthorized("refresh token expired or revoked")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:     accessToken,
		AccessExpireAt:  now.Add(time.Duration(accessHours) * time.Hour),
		RefreshToken:    newToken,
		RefreshExpireAt: next.ExpiresAt,
		User:            &user,
	}, nil
}

// RevokeRefreshToken ends a session. Unknown tokens are ignored.
func (s *AuthService) RevokeRefreshToken(refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hashRefreshToken(refreshToken)).
		Update("revoked_at", time.Now()).Error
}

// Me returns the user with their NGO, if any.
func (s *AuthService) Me(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("NGO").First(&user, userID).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return &user, nil
}

// ChangePassword updates the password of a local account.
func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return notFoundOr(err, "user not found")
	}
	if user.Password == "" {
		return response.NewBadRequest("account has no password, sign in with VK")
	}
	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return response.NewBadRequest("incorrect old password")
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.db.Model(&models.User{}).Where("id = ?", user.ID).Update("password", hashed).Error
}

// OAuthProfile is what an OAuth provider tells us about the user.
type OAuthProfile struct {
	Provider   string
	ProviderID string
	Email      string
	Name       string
	Image      string
}

// FindOrCreateOAuthUser links an OAuth identity to an account. A known
// provider id wins, then a matching email, otherwise a new VOLUNTEER is
// created.
func (s *AuthService) FindOrCreateOAuthUser(profile *OAuthProfile) (*models.User, error) {
	var user models.User
	err := s.db.Where("auth_provider = ? AND provider_id = ?", profile.Provider, profile.ProviderID).First(&user).Error
	if err == nil {
		return &user, s.activeOrError(&user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := normalizeEmail(profile.Email)
	err = s.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		if user.ProviderID == "" {
			if err := s.db.Model(&models.User{}).Where("id = ?", user.ID).
				Updates(map[string]interface{}{"auth_provider": profile.Provider, "provider_id": profile.ProviderID}).Error; err != nil {
				return nil, err
			}
			user.AuthProvider = profile.Provider
			user.ProviderID = profile.ProviderID
		}
		return &user, s.activeOrError(&user)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Email:        email,
		Name:         profile.Name,
		Image:        profile.Image,
		Role:         models.RoleVolunteer,
		AuthProvider: profile.Provider,
		ProviderID:   profile.ProviderID,
		IsActive:     true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		if models.IsUniqueViolation(err) {
			return nil, response.NewConflict("user with this email already exists")
		}
		return nil, err
	}
	logger.Info().Uint("user_id", user.ID).Str("provider", profile.Provider).Msg("[Auth] user created via OAuth")
	return &user, nil
}

func (s *AuthService) activeOrError(user *models.User) error {
	if !user.IsActive {
		return response.NewUnauthorized("user is disabled")
	}
	return nil
}

// CreateAdminIfNotExists creates the configured admin on first start.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword(s.adminCfg.Password)
	if err != nil {
		return err
	}
	admin := models.User{
		Email:        normalizeEmail(s.adminCfg.Email),
		Password:     hashed,
		Name:         s.adminCfg.Name,
		Role:         models.RoleAdmin,
		AuthProvider: models.AuthProviderLocal,
		IsActive:     true,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}
	logger.Warn().Str("email", admin.Email).Msg("[Auth] default admin created, change its password")
	return nil
}

func (s *AuthService) accessTokenHours() int {
	if s.jwtConfig.ExpireHour > 0 {
		return s.jwtConfig.ExpireHour
	}
	return 24
}

func (s *AuthService) refreshTokenTTL() time.Duration {
	days := s.jwtConfig.RefreshExpireDay
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

func generateRefreshToken() (token string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err = rand.Read(randomBytes); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(randomBytes)
	return token, hashRefreshToken(token), nil
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
