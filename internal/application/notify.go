package application

import (
	"context"

	"github.com/eduforge/platform/internal/domain/entity"
)

// CodeKind selects the email template a one-time code is delivered with.
type CodeKind string

const (
	CodeVerification CodeKind = "verification"
	CodeLoginMFA     CodeKind = "login_mfa"
	CodePasswordRst  CodeKind = "password_reset"
)

// Notifier is the outbound notification gateway. Every call is fire-and-
// forget relative to the state transition that triggered it: the transition
// has already committed, a delivery failure is reported back (and logged)
// but never reverses it. Implementations must not panic.
type Notifier interface {
	// SendCode delivers a one-time code and reports whether delivery was
	// accepted.
	SendCode(ctx context.Context, kind CodeKind, a *entity.Account, code *entity.OneTimeCode) bool

	// SendInstructorApprovalRequest asks the platform operator to review a
	// newly registered instructor.
	SendInstructorApprovalRequest(ctx context.Context, a *entity.Account)

	// SendApprovalDecision tells an instructor their review outcome.
	SendApprovalDecision(ctx context.Context, a *entity.Account, approved bool)
}
