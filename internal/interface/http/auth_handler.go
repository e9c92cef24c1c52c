package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/eduforge/platform/internal/application"
	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/pkg/helpers"
	"github.com/eduforge/platform/pkg/response"
	"github.com/eduforge/platform/pkg/validation"
)

type AuthHandler struct {
	Svc     *app.Service
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *app.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,pwd"`
	FirstName        string `json:"first_name" binding:"required"`
	LastName         string `json:"last_name" binding:"required"`
	Role             string `json:"role" binding:"required,oneof=student instructor"`
	CVURL            string `json:"cv_url" binding:"omitempty,url"`
	ProfessionCenter string `json:"profession_center"`
}

type emailCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,otp"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,otp"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// Register POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Register(c.Request.Context(), app.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Role:             entity.Role(req.Role),
		CVURL:            req.CVURL,
		ProfessionCenter: req.ProfessionCenter,
	})
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	msg := "account created, check your email for the verification code"
	if res.RequiresApproval {
		msg = "account created, pending instructor approval; check your email for the verification code"
	}
	response.Success(c, http.StatusCreated, gin.H{
		"account_id":        res.AccountID,
		"requires_approval": res.RequiresApproval,
		"code_delivered":    res.CodeDelivered,
	}, msg, nil)
}

// Verify POST /api/verify
func (h *AuthHandler) Verify(c *gin.Context) {
	var req emailCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	a, err := h.Svc.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	// Verified instructors may still be gated on approval; tell them which.
	msg := "email verified"
	usable := true
	if a.IsInstructor() {
		switch a.Approval {
		case entity.ApprovalPending:
			msg = "email verified; your instructor account awaits approval"
			usable = false
		case entity.ApprovalRejected:
			msg = "email verified; your instructor application was rejected"
			usable = false
		}
	}
	response.Success(c, http.StatusOK, gin.H{"verified": true, "usable": usable}, msg, nil)
}

// ResendCode POST /api/verify/resend
func (h *AuthHandler) ResendCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	delivered, err := h.Svc.ResendCode(c.Request.Context(), req.Email)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"code_delivered": delivered}, "verification code resent", nil)
}

// Login POST /api/login. Direct entry point, issues the token right away.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	h.Cookies.SetToken(c, res.Token, res.TokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"token": res.Token,
		"role":  res.Account.Role,
	}, "login successful", map[string]any{"expires_at": res.TokenExpiry})
}

// LoginMFA POST /api/login/mfa. Withholds the token and emails a code.
func (h *AuthHandler) LoginMFA(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.LoginWithMFA(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	if !res.ChallengeSent {
		// Distinguished admin: token issued directly.
		h.Cookies.SetToken(c, res.Token, res.TokenExpiry)
		response.Success(c, http.StatusOK, gin.H{"token": res.Token, "role": res.Account.Role}, "login successful", map[string]any{"expires_at": res.TokenExpiry})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"code_delivered": res.Delivered}, "check your email for the login code", nil)
}

// LoginMFAConfirm POST /api/login/mfa/confirm
func (h *AuthHandler) LoginMFAConfirm(c *gin.Context) {
	var req emailCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.VerifyMFA(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	h.Cookies.SetToken(c, res.Token, res.TokenExpiry)
	response.Success(c, http.StatusOK, gin.H{
		"token": res.Token,
		"role":  res.Account.Role,
	}, "login successful", map[string]any{"expires_at": res.TokenExpiry})
}

// ForgotPassword POST /api/password/forgot
// Always the same acknowledgment, found or not.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		response.Error[any](c, http.StatusInternalServerError, "could not process request", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"sent": true}, "if the email exists, a reset code has been sent", nil)
}

// VerifyResetCode POST /api/password/verify-code. Checks without consuming,
// so the UI can gate navigation before committing the new password.
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req emailCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.VerifyResetCode(req.Email, req.Code); err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"valid": true}, "code valid", nil)
}

// ResetPassword POST /api/password/reset
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "password updated", nil)
}

// Logout POST /api/logout. Clears the cookie; the token itself stays valid
// until expiry (no revocation store).
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// UploadCV POST /api/register/cv. Multipart upload of the CV artifact an
// instructor registration references.
func (h *AuthHandler) UploadCV(c *gin.Context) {
	file, header, err := c.Request.FormFile("cv")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cv file is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	url, err := h.Svc.UploadCV(c.Request.Context(), file, header.Filename, contentType)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("cv upload failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "upload failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"cv_url": url}, "cv uploaded", nil)
}
