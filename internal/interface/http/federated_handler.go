package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/eduforge/platform/config"
	app "github.com/eduforge/platform/internal/application"
	"github.com/eduforge/platform/pkg/helpers"
	"github.com/eduforge/platform/pkg/response"
	"github.com/eduforge/platform/pkg/validation"
)

type FederatedHandler struct {
	Svc     *app.Service
	Logger  *logrus.Logger
	Cfg     *config.Config
	Cookies *helpers.CookieManager
}

func NewFederatedHandler(svc *app.Service, logger *logrus.Logger, cfg *config.Config) *FederatedHandler {
	return &FederatedHandler{
		Svc:     svc,
		Logger:  logger,
		Cfg:     cfg,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
	}
}

// Redirect GET /api/oauth/google. Sends the browser to the provider
// authorization URL.
func (h *FederatedHandler) Redirect(c *gin.Context) {
	authURL, err := h.Svc.FederatedAuthURL(c.Request.Context())
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "could not start federated login", nil)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// Callback GET /api/oauth/google/callback. The provider redirects here with
// state and code. Missing-name identities are sent to profile completion
// instead of receiving a token.
func (h *FederatedHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		response.Error[any](c, http.StatusBadRequest, "missing state or code", nil)
		return
	}
	res, err := h.Svc.FederatedCallback(c.Request.Context(), state, code)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	if res.NeedsProfile {
		c.Redirect(http.StatusTemporaryRedirect,
			h.Cfg.ProfileCompletionURL+"?token="+url.QueryEscape(res.CompletionToken))
		return
	}
	h.Cookies.SetToken(c, res.Token, res.TokenExpiry)
	c.Redirect(http.StatusTemporaryRedirect, h.Cfg.LoginSuccessURL)
}

type tokenLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// TokenLogin POST /api/oauth/google/token. Accepts a provider id-token
// directly, no redirect round-trip.
func (h *FederatedHandler) TokenLogin(c *gin.Context) {
	var req tokenLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.FederatedTokenLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	if res.NeedsProfile {
		response.Success(c, http.StatusOK, gin.H{
			"needs_profile":    true,
			"completion_token": res.CompletionToken,
		}, "profile completion required", nil)
		return
	}
	h.Cookies.SetToken(c, res.Token, res.TokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"token": res.Token,
		"role":  res.Account.Role,
	}, "login successful", map[string]any{"expires_at": res.TokenExpiry})
}

type completeProfileRequest struct {
	CompletionToken string `json:"completion_token" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
}

// CompleteProfile POST /api/oauth/profile/complete. Fills in the name
// fields and issues the withheld federated token.
func (h *FederatedHandler) CompleteProfile(c *gin.Context) {
	var req completeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.CompleteProfile(c.Request.Context(), req.CompletionToken, req.FirstName, req.LastName)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	h.Cookies.SetToken(c, res.Token, res.TokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"token": res.Token,
		"role":  res.Account.Role,
	}, "profile completed", map[string]any{"expires_at": res.TokenExpiry})
}
