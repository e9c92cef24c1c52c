package application

import (
	"context"
	"errors"

	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/internal/domain/repository"
	"github.com/eduforge/platform/pkg/helpers"
)

// authenticate validates credentials and evaluates every state-machine gate.
// Both login entry points and verifyMFA go through here so the gate logic
// exists exactly once. The distinguished admin passes on credentials alone.
func (s *Service) authenticate(email, password string) (*entity.Account, error) {
	a, err := s.Repo.GetByEmail(email)
	if err != nil || a == nil {
		return nil, ErrInvalidCredentials
	}
	if a.PasswordHash == nil || !helpers.CompareHashAndPassword(*a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if s.Admin.Bypasses(a) {
		return a, nil
	}
	if err := s.gates(a); err != nil {
		return nil, err
	}
	return a, nil
}

// gates evaluates the non-credential login gates eagerly and independently;
// the first failure wins.
func (s *Service) gates(a *entity.Account) error {
	if !a.Verified {
		return ErrNotVerified
	}
	if a.Status != entity.StatusActive {
		return ErrSuspended
	}
	if a.IsInstructor() {
		switch a.Approval {
		case entity.ApprovalPending:
			return ErrApprovalPending
		case entity.ApprovalRejected:
			return ErrApprovalRejected
		}
	}
	return nil
}

// Login is the direct entry point: credentials plus gates, then a token
// right away.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	a, err := s.authenticate(email, password)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.issueToken(ctx, a, s.PasswordTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: a, Token: token, TokenExpiry: exp}, nil
}

// LoginWithMFA runs the same gates but withholds the token: a fresh one-time
// code is stored (superseding any previous one) and emailed, and the caller
// gets only an acknowledgment. The distinguished admin skips the challenge
// and receives a token directly.
func (s *Service) LoginWithMFA(ctx context.Context, email, password string) (*AuthResult, error) {
	a, err := s.authenticate(email, password)
	if err != nil {
		return nil, err
	}
	if s.Admin.Bypasses(a) {
		token, exp, err := s.issueToken(ctx, a, s.PasswordTTL)
		if err != nil {
			return nil, err
		}
		return &AuthResult{Account: a, Token: token, TokenExpiry: exp}, nil
	}

	code, err := entity.IssueCode(s.Now())
	if err != nil {
		return nil, err
	}
	a.VerificationCode = code
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}

	res := &AuthResult{Account: a, ChallengeSent: true}
	s.afterCommit(ctx, func(ctx context.Context) {
		res.Delivered = s.Notifier.SendCode(ctx, CodeLoginMFA, a, code)
	})
	return res, nil
}

// VerifyMFA re-evaluates the login gates, consumes the challenge code, and
// issues the session token.
func (s *Service) VerifyMFA(ctx context.Context, email, code string) (*AuthResult, error) {
	a, err := s.Repo.GetByEmail(email)
	if err != nil || a == nil {
		return nil, ErrInvalidOrExpiredCode
	}
	if !s.Admin.Bypasses(a) {
		if err := s.gates(a); err != nil {
			return nil, err
		}
	}
	a, err = s.Repo.ConsumeVerificationCode(email, code, s.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, err
	}
	token, exp, err := s.issueToken(ctx, a, s.PasswordTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: a, Token: token, TokenExpiry: exp}, nil
}
