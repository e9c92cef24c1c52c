package application

import (
	"context"
	"errors"

	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/internal/domain/repository"
	"github.com/eduforge/platform/pkg/helpers"
)

// ForgotPassword issues a reset code when the email exists. The return is
// always the same generic acknowledgment shape so the endpoint cannot be
// used to enumerate accounts; the delivery outcome is only logged.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	a, err := s.Repo.GetByEmail(email)
	if err != nil || a == nil {
		if s.Logger != nil {
			s.Logger.WithField("email", entity.NormalizeEmail(email)).Debug("password reset requested for unknown email")
		}
		return nil
	}

	code, err := entity.IssueCode(s.Now())
	if err != nil {
		return err
	}
	a.ResetCode = code
	if err := s.Repo.Update(a); err != nil {
		return err
	}
	s.afterCommit(ctx, func(ctx context.Context) {
		if !s.Notifier.SendCode(ctx, CodePasswordRst, a, code) && s.Logger != nil {
			s.Logger.WithField("account_id", a.ID).Warn("reset code delivery failed")
		}
	})
	return nil
}

// VerifyResetCode checks the reset code without consuming it, so a UI can
// gate navigation before the user commits to a new password.
func (s *Service) VerifyResetCode(email, code string) error {
	a, err := s.Repo.GetByEmail(email)
	if err != nil || a == nil {
		return ErrInvalidOrExpiredCode
	}
	if !a.ResetCode.Matches(code, s.Now()) {
		return ErrInvalidOrExpiredCode
	}
	return nil
}

// ResetPassword re-validates the code, replaces the credential hash, and
// clears the reset pair in one atomic step. A successful email-bound reset
// proves mailbox ownership, so verified flips true as a side effect.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	a, err := s.Repo.ConsumeResetCode(email, code, s.Now(), hash)
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return ErrInvalidOrExpiredCode
		}
		return err
	}
	s.afterCommit(ctx, func(ctx context.Context) { _ = s.indexAccount(ctx, a) })
	return nil
}
