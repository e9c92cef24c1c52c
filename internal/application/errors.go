package application

import "errors"

// Sentinel errors for the identity flows. Handlers map these onto HTTP
// statuses; the first failing gate wins, failures are never aggregated.
var (
	// Validation
	ErrPasswordTooShort         = errors.New("password must be at least 8 characters")
	ErrInvalidRole              = errors.New("role must be student or instructor")
	ErrMissingInstructorProfile = errors.New("cv and profession center are required for instructors")
	ErrMissingName              = errors.New("first and last name are required")

	// Conflict
	ErrEmailTaken = errors.New("email already in use")

	// Forbidden
	ErrAdminReserved    = errors.New("admin account cannot be created")
	ErrSuspended        = errors.New("account suspended")
	ErrApprovalPending  = errors.New("instructor approval pending")
	ErrApprovalRejected = errors.New("instructor application rejected")

	// Unauthorized
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotVerified          = errors.New("email not verified")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
	ErrInvalidAssertion     = errors.New("invalid identity assertion")

	// NotFound (only where enumeration protection is not required)
	ErrAccountNotFound    = errors.New("account not found")
	ErrNotFoundOrVerified = errors.New("account not found or already verified")
)
