package application

import (
	"context"
	"errors"

	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/internal/domain/repository"
	"github.com/eduforge/platform/pkg/helpers"
)

type RegisterInput struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	Role             entity.Role
	CVURL            string
	ProfessionCenter string
}

type RegisterResult struct {
	AccountID        string
	RequiresApproval bool
	// CodeDelivered reports the verification email outcome. The account
	// exists either way; a failed delivery can be retried via resend.
	CodeDelivered bool
}

// Register creates an unverified account and emails it a verification code.
// The admin role and the distinguished admin email are rejected outright.
// Instructors additionally need a CV reference and a profession center, and
// start in the pending approval state.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	email := entity.NormalizeEmail(in.Email)

	if in.Role == entity.RoleAdmin || s.Admin.IsAdminEmail(email) {
		return nil, ErrAdminReserved
	}
	if in.Role != entity.RoleStudent && in.Role != entity.RoleInstructor {
		return nil, ErrInvalidRole
	}
	if len(in.Password) < 8 {
		return nil, ErrPasswordTooShort
	}
	if in.FirstName == "" || in.LastName == "" {
		return nil, ErrMissingName
	}
	if in.Role == entity.RoleInstructor && (in.CVURL == "" || in.ProfessionCenter == "") {
		return nil, ErrMissingInstructorProfile
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	code, err := entity.IssueCode(now)
	if err != nil {
		return nil, err
	}

	a := &entity.Account{
		Email:            email,
		PasswordHash:     &hash,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		Role:             in.Role,
		Status:           entity.StatusActive,
		VerificationCode: code,
	}
	if in.Role == entity.RoleInstructor {
		a.Approval = entity.ApprovalPending
		a.CVURL = in.CVURL
		a.ProfessionCenter = in.ProfessionCenter
		a.ApprovalRequestedAt = &now
	}

	if err := s.Repo.Create(a); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// The transition is committed; everything below is best effort.
	res := &RegisterResult{AccountID: a.ID, RequiresApproval: a.IsInstructor()}
	s.afterCommit(ctx,
		func(ctx context.Context) {
			res.CodeDelivered = s.Notifier.SendCode(ctx, CodeVerification, a, code)
		},
		func(ctx context.Context) {
			if a.IsInstructor() {
				s.Notifier.SendInstructorApprovalRequest(ctx, a)
			}
		},
		func(ctx context.Context) { _ = s.indexAccount(ctx, a) },
	)
	return res, nil
}

// Verify flips an account to verified when the code matches strictly before
// its expiry, consuming the code. The same error covers a wrong code, an
// expired code, and an unknown email.
func (s *Service) Verify(ctx context.Context, email, code string) (*entity.Account, error) {
	a, err := s.Repo.ConsumeVerificationCode(email, code, s.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, err
	}
	s.afterCommit(ctx, func(ctx context.Context) { _ = s.indexAccount(ctx, a) })
	return a, nil
}

// ResendCode reissues the verification code for an unverified account,
// superseding the previous one.
func (s *Service) ResendCode(ctx context.Context, email string) (bool, error) {
	a, err := s.Repo.GetByEmail(email)
	if err != nil || a == nil || a.Verified {
		return false, ErrNotFoundOrVerified
	}
	code, err := entity.IssueCode(s.Now())
	if err != nil {
		return false, err
	}
	a.VerificationCode = code
	if err := s.Repo.Update(a); err != nil {
		return false, err
	}
	delivered := false
	s.afterCommit(ctx, func(ctx context.Context) {
		delivered = s.Notifier.SendCode(ctx, CodeVerification, a, code)
	})
	return delivered, nil
}

// afterCommit runs best-effort side effects of an already committed state
// transition. A panicking hook is logged and the remaining hooks still run;
// nothing here can reverse the transition.
func (s *Service) afterCommit(ctx context.Context, hooks ...func(ctx context.Context)) {
	for _, h := range hooks {
		func() {
			defer func() {
				if r := recover(); r != nil && s.Logger != nil {
					s.Logger.WithField("panic", r).Error("post-commit hook panicked")
				}
			}()
			h(ctx)
		}()
	}
}
