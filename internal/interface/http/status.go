package handlers

import (
	"errors"
	"net/http"

	app "github.com/eduforge/platform/internal/application"
)

// statusFor maps application sentinel errors onto HTTP statuses. The first
// failing gate decided the error; here it only needs translating.
func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrPasswordTooShort),
		errors.Is(err, app.ErrInvalidRole),
		errors.Is(err, app.ErrMissingInstructorProfile),
		errors.Is(err, app.ErrMissingName):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, app.ErrAdminReserved),
		errors.Is(err, app.ErrSuspended),
		errors.Is(err, app.ErrApprovalPending),
		errors.Is(err, app.ErrApprovalRejected):
		return http.StatusForbidden
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrNotVerified),
		errors.Is(err, app.ErrInvalidOrExpiredCode),
		errors.Is(err, app.ErrInvalidAssertion):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrAccountNotFound),
		errors.Is(err, app.ErrNotFoundOrVerified):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
