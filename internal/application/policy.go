package application

import "github.com/eduforge/platform/internal/domain/entity"

// AdminPolicy decides which email belongs to the single distinguished admin
// account. It is injected into the service so flows can be tested without
// global state.
type AdminPolicy struct {
	Email string
}

func NewAdminPolicy(email string) AdminPolicy {
	return AdminPolicy{Email: entity.NormalizeEmail(email)}
}

// IsAdminEmail reports whether email is the reserved admin address.
func (p AdminPolicy) IsAdminEmail(email string) bool {
	return p.Email != "" && entity.NormalizeEmail(email) == p.Email
}

// Bypasses reports whether a is the distinguished admin, which skips the
// verified and suspension gates on login.
func (p AdminPolicy) Bypasses(a *entity.Account) bool {
	return a.Role == entity.RoleAdmin && p.IsAdminEmail(a.Email)
}
