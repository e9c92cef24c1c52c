package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/eduforge/platform/internal/interface/http"
)

// AuthModule wires the public identity endpoints: registration with email
// verification, both login entry points, and password recovery.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/register", m.Handler.Register)
	rg.POST("/register/cv", m.Handler.UploadCV)
	rg.POST("/verify", m.Handler.Verify)
	rg.POST("/verify/resend", m.Handler.ResendCode)

	rg.POST("/login", m.Handler.Login)
	rg.POST("/login/mfa", m.Handler.LoginMFA)
	rg.POST("/login/mfa/confirm", m.Handler.LoginMFAConfirm)

	rg.POST("/password/forgot", m.Handler.ForgotPassword)
	rg.POST("/password/verify-code", m.Handler.VerifyResetCode)
	rg.POST("/password/reset", m.Handler.ResetPassword)
}
