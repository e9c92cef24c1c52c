package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/eduforge/platform/internal/interface/http"
	"github.com/eduforge/platform/internal/interface/middleware"
	"github.com/eduforge/platform/pkg/helpers"
)

// AccountModule exposes the authenticated self-service endpoints.
type AccountModule struct {
	Handler *handlers.AccountHandler
	Auth    *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewAccountModule(h *handlers.AccountHandler, auth *handlers.AuthHandler, jwt *helpers.JWTManager, rdb *redis.Client) *AccountModule {
	return &AccountModule{Handler: h, Auth: auth, JWT: jwt, Redis: rdb}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("")
	g.Use(middleware.Auth(m.Redis, m.JWT))
	g.GET("/me", m.Handler.Me)
	g.POST("/logout", m.Auth.Logout)
}
