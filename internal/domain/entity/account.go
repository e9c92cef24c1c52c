package entity

import (
	"strings"
	"time"
)

// Role is the authorization role of an account. Exactly one admin account
// exists in the system; it is provisioned out of band, never via self-service.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// AccountStatus is an operator-controlled kill switch, independent of
// email verification.
type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusSuspended AccountStatus = "suspended"
)

// ApprovalState tracks the instructor review workflow. Empty for
// non-instructor accounts.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "pending"
	ApprovalApproved ApprovalState = "approved"
	ApprovalRejected ApprovalState = "rejected"
)

// Account is the aggregate root for the identity domain.
//
// PasswordHash is a bcrypt hash and is nil for federated-only accounts that
// never set a local password. VerificationCode doubles as the login-MFA code:
// issuing a new code overwrites the stored pair, superseding the old one.
type Account struct {
	ID           string
	Email        string
	PasswordHash *string
	FirstName    string
	LastName     string
	Role         Role
	Status       AccountStatus
	Verified     bool
	Federated    bool

	VerificationCode *OneTimeCode
	ResetCode        *OneTimeCode

	// Instructor-only fields.
	Approval            ApprovalState
	CVURL               string
	ProfessionCenter    string
	ApprovalRequestedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeEmail is the canonical form used as the lookup key everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName joins the name fields, trimming when one side is empty.
func (a *Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// HasName reports whether both name fields are present. Federated sign-ins
// without a name are routed to profile completion instead of token issuance.
func (a *Account) HasName() bool {
	return strings.TrimSpace(a.FirstName) != "" && strings.TrimSpace(a.LastName) != ""
}

// IsInstructor reports whether the account participates in the approval
// workflow.
func (a *Account) IsInstructor() bool { return a.Role == RoleInstructor }

// Usable reports whether an instructor account has cleared review. Accounts
// in any other role are always usable once verified and active.
func (a *Account) ApprovalCleared() bool {
	return !a.IsInstructor() || a.Approval == ApprovalApproved
}
