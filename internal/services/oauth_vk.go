package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/volunteerhub/backend/internal/config"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/vk"
)

const (
	VKStateCookie   = "vk_oauth_state"
	vkStateMaxAge   = 10 * 60
	vkProfileFields = "photo_200"
)

// VKOAuthService implements the VK sign-in flow. The OAuth state is kept in
// a signed cookie instead of server-side storage.
type VKOAuthService struct {
	cfg        *config.VKConfig
	oauth      *oauth2.Config
	cookies    *securecookie.SecureCookie
	httpClient *http.Client
}

func NewVKOAuthService(cfg *config.OAuthConfig, appURL string) *VKOAuthService {
	hashKey := []byte(cfg.CookieHash)
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
		logger.Warn().Msg("[OAuth] oauth.cookie_hash not set, using a random key")
	}
	cookies := securecookie.New(hashKey, nil)
	cookies.MaxAge(vkStateMaxAge)

	return &VKOAuthService{
		cfg: &cfg.VK,
		oauth: &oauth2.Config{
			ClientID:     cfg.VK.ClientID,
			ClientSecret: cfg.VK.ClientSecret,
			RedirectURL:  strings.TrimRight(appURL, "/") + "/api/auth/vk/callback",
			Scopes:       []string{"email"},
			Endpoint:     vk.Endpoint,
		},
		cookies:    cookies,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *VKOAuthService) Enabled() bool {
	return s.cfg.Enabled()
}

// Begin returns the provider URL to redirect to and the signed state that
// must be stored in the VKStateCookie cookie.
func (s *VKOAuthService) Begin() (authURL, cookieValue string, err error) {
	state := uuid.NewString()
	cookieValue, err = s.cookies.Encode(VKStateCookie, state)
	if err != nil {
		return "", "", err
	}
	return s.oauth.AuthCodeURL(state), cookieValue, nil
}

// CheckState verifies the state echoed by VK against the signed cookie.
func (s *VKOAuthService) CheckState(cookieValue, state string) bool {
	if cookieValue == "" || state == "" {
		return false
	}
	var expected string
	if err := s.cookies.Decode(VKStateCookie, cookieValue, &expected); err != nil {
		logger.Warn().Err(err).Msg("[OAuth] invalid state cookie")
		return false
	}
	return expected == state
}

type vkUsersResponse struct {
	Response []struct {
		ID        int64  `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Photo200  string `json:"photo_200"`
	} `json:"response"`
	Error *struct {
		Code int    `json:"error_code"`
		Msg  string `json:"error_msg"`
	} `json:"error"`
}

// Exchange trades the authorization code for a token and loads the VK
// profile. VK returns the user id and email next to the access token.
func (s *VKOAuthService) Exchange(ctx context.Context, code string) (*OAuthProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("vk token exchange: %w", err)
	}

	vkID := extraString(token.Extra("user_id"))
	if vkID == "" {
		return nil, fmt.Errorf("vk token response has no user_id")
	}
	profile := &OAuthProfile{
		Provider:   models.AuthProviderVK,
		ProviderID: vkID,
		Email:      extraString(token.Extra("email")),
	}
	if profile.Email == "" {
		profile.Email = "vk" + vkID + "@vk.com"
	}

	if err := s.loadProfile(ctx, token.AccessToken, profile); err != nil {
		logger.Warn().Err(err).Str("vk_id", vkID).Msg("[OAuth] failed to load VK profile")
	}
	if profile.Name == "" {
		profile.Name = "VK " + vkID
	}
	return profile, nil
}

func (s *VKOAuthService) loadProfile(ctx context.Context, accessToken string, profile *OAuthProfile) error {
	query := url.Values{}
	query.Set("user_ids", profile.ProviderID)
	query.Set("fields", vkProfileFields)
	query.Set("access_token", accessToken)
	query.Set("v", s.cfg.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.cfg.APIURL, "/")+"/users.get?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vk users.get: status %d", resp.StatusCode)
	}
	var body vkUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return err
	}
	if body.Error != nil {
		return fmt.Errorf("vk users.get: %d %s", body.Error.Code, body.Error.Msg)
	}
	if len(body.Response) == 0 {
		return fmt.Errorf("vk users.get: empty response")
	}

	u := body.Response[0]
	profile.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	profile.Image = u.Photo200
	return nil
}

// extraString reads token extras, which VK sends as numbers or strings.
func extraString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case json.Number:
		return t.String()
	}
	return ""
}
