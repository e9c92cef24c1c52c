package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/eduforge/platform/internal/application"
	"github.com/eduforge/platform/pkg/response"
)

type AccountHandler struct {
	Svc    *app.Service
	Logger *logrus.Logger
}

func NewAccountHandler(svc *app.Service, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger}
}

// Me GET /api/me. The "current authenticated identity" surface consumed by
// the catalog/payment subsystems.
func (h *AccountHandler) Me(c *gin.Context) {
	uid := c.GetString("accountID")
	a, err := h.Svc.GetProfile(uid)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"id":         a.ID,
		"email":      a.Email,
		"first_name": a.FirstName,
		"last_name":  a.LastName,
		"role":       a.Role,
		"status":     a.Status,
		"verified":   a.Verified,
		"federated":  a.Federated,
		"approval":   a.Approval,
		"created_at": a.CreatedAt,
	}, "profile", nil)
}
