package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/eduforge/platform/internal/domain/entity"
	handlers "github.com/eduforge/platform/internal/interface/http"
	"github.com/eduforge/platform/internal/interface/middleware"
	"github.com/eduforge/platform/pkg/helpers"
)

// AdminModule wires the moderation surface: instructor approval decisions,
// account suspension, and the account search backed by Elasticsearch.
type AdminModule struct {
	Handler *handlers.AdminHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
}

func NewAdminModule(h *handlers.AdminHandler, jwt *helpers.JWTManager, rdb *redis.Client) *AdminModule {
	return &AdminModule{Handler: h, JWT: jwt, Redis: rdb}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/admin")
	g.Use(middleware.Auth(m.Redis, m.JWT), middleware.RequireRole(string(entity.RoleAdmin)))

	g.POST("/instructors/:id/approve", m.Handler.ApproveInstructor)
	g.POST("/instructors/:id/reject", m.Handler.RejectInstructor)
	g.POST("/accounts/:id/suspend", m.Handler.Suspend)
	g.POST("/accounts/:id/reinstate", m.Handler.Reinstate)
	g.GET("/accounts/search", m.Handler.Search)
}
