package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/eduforge/platform/internal/application"
	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/pkg/response"
)

// AdminHandler exposes the operator levers that drive the state machine:
// instructor approval decisions, the suspension kill switch, and account
// search.
type AdminHandler struct {
	Svc    *app.Service
	Logger *logrus.Logger
}

func NewAdminHandler(svc *app.Service, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

// ApproveInstructor POST /api/admin/instructors/:id/approve
func (h *AdminHandler) ApproveInstructor(c *gin.Context) {
	a, err := h.Svc.ApproveInstructor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": a.ID, "approval": a.Approval}, "instructor approved", nil)
}

// RejectInstructor POST /api/admin/instructors/:id/reject
func (h *AdminHandler) RejectInstructor(c *gin.Context) {
	a, err := h.Svc.RejectInstructor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": a.ID, "approval": a.Approval}, "instructor rejected", nil)
}

// Suspend POST /api/admin/accounts/:id/suspend
func (h *AdminHandler) Suspend(c *gin.Context) {
	h.setStatus(c, entity.StatusSuspended, "account suspended")
}

// Reinstate POST /api/admin/accounts/:id/reinstate
func (h *AdminHandler) Reinstate(c *gin.Context) {
	h.setStatus(c, entity.StatusActive, "account reinstated")
}

func (h *AdminHandler) setStatus(c *gin.Context, status entity.AccountStatus, msg string) {
	a, err := h.Svc.SetAccountStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": a.ID, "status": a.Status}, msg, nil)
}

// Search GET /api/admin/accounts/search?q=&size=
func (h *AdminHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchAccounts(c.Request.Context(), q, size)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Warn("account search failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "accounts", map[string]any{"count": len(hits)})
}
