package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/eduforge/platform/internal/interface/http"
)

// FederatedModule wires the Google sign-in bridge: the browser redirect
// round-trip plus the token-assertion variant for non-browser clients.
type FederatedModule struct {
	Handler *handlers.FederatedHandler
}

func NewFederatedModule(h *handlers.FederatedHandler) *FederatedModule {
	return &FederatedModule{Handler: h}
}

func (m *FederatedModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/oauth")
	g.GET("/google", m.Handler.Redirect)
	g.GET("/google/callback", m.Handler.Callback)
	g.POST("/google/token", m.Handler.TokenLogin)
	g.POST("/profile/complete", m.Handler.CompleteProfile)
}
