package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/internal/middleware"
	"github.com/volunteerhub/backend/internal/services"
	"github.com/volunteerhub/backend/pkg/logger"
	"github.com/volunteerhub/backend/pkg/response"
)

const vkCookiePath = "/api/auth/vk"

type AuthHandler struct {
	authService *services.AuthService
	vkService   *services.VKOAuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, vkService *services.VKOAuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		vkService:   vkService,
		cfg:         cfg,
	}
}

// Signup creates a volunteer or NGO account
// POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Signup(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Refresh rotates the refresh token and issues a new access token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req services.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Logout revokes the refresh token sent in the body, if any. The access
// token simply expires.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.RevokeRefreshToken(req.RefreshToken); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "logged out successfully"})
}

// GetCurrentUser returns the current user with their NGO
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.authService.Me(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

// ChangePassword
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(middleware.GetUserID(c), &req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "password changed"})
}

// GetClientConfig returns what the frontend needs before sign-in
// GET /api/config
func (h *AuthHandler) GetClientConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"app_name":                       h.cfg.App.Name,
		"vk_enabled":                     h.vkService.Enabled(),
		"map_api_key":                    h.cfg.Map.APIKey,
		"participation_require_approval": h.cfg.Participation.RequireApproval,
	})
}

// VKLogin redirects to the VK consent screen
// GET /api/auth/vk/login
func (h *AuthHandler) VKLogin(c *gin.Context) {
	if !h.vkService.Enabled() {
		response.Error(c, response.NewNotFound("VK sign-in is not configured"))
		return
	}

	authURL, state, err := h.vkService.Begin()
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetCookie(services.VKStateCookie, state, 600, vkCookiePath, "", c.Request.TLS != nil, true)
	c.Redirect(302, authURL)
}

// VKCallback completes VK sign-in and answers with a session
// GET /api/auth/vk/callback
func (h *AuthHandler) VKCallback(c *gin.Context) {
	if !h.vkService.Enabled() {
		response.Error(c, response.NewNotFound("VK sign-in is not configured"))
		return
	}

	cookie, _ := c.Cookie(services.VKStateCookie)
	c.SetCookie(services.VKStateCookie, "", -1, vkCookiePath, "", c.Request.TLS != nil, true)

	if errParam := c.Query("error"); errParam != "" {
		response.Error(c, response.NewUnauthorized("VK sign-in was cancelled"))
		return
	}
	if !h.vkService.CheckState(cookie, c.Query("state")) {
		response.Error(c, response.NewBadRequest("invalid oauth state"))
		return
	}
	code := c.Query("code")
	if code == "" {
		response.Error(c, response.NewBadRequest("missing authorization code"))
		return
	}

	profile, err := h.vkService.Exchange(c.Request.Context(), code)
	if err != nil {
		logger.Warn().Err(err).Msg("[OAuth] VK exchange failed")
		response.Error(c, response.NewUnauthorized("VK sign-in failed"))
		return
	}

	user, err := h.authService.FindOrCreateOAuthUser(profile)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.authService.IssueSession(user, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
