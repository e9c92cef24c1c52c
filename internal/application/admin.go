package application

import (
	"context"

	"github.com/eduforge/platform/internal/domain/entity"
)

// ApproveInstructor moves a pending instructor to approved, unlocking login.
func (s *Service) ApproveInstructor(ctx context.Context, id string) (*entity.Account, error) {
	return s.decideInstructor(ctx, id, entity.ApprovalApproved)
}

// RejectInstructor marks an instructor rejected; the account stays unusable
// until an operator revisits the decision.
func (s *Service) RejectInstructor(ctx context.Context, id string) (*entity.Account, error) {
	return s.decideInstructor(ctx, id, entity.ApprovalRejected)
}

func (s *Service) decideInstructor(ctx context.Context, id string, decision entity.ApprovalState) (*entity.Account, error) {
	a, err := s.Repo.GetByID(id)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}
	if !a.IsInstructor() {
		return nil, ErrAccountNotFound
	}
	a.Approval = decision
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	s.afterCommit(ctx,
		func(ctx context.Context) {
			s.Notifier.SendApprovalDecision(ctx, a, decision == entity.ApprovalApproved)
		},
		func(ctx context.Context) { _ = s.indexAccount(ctx, a) },
	)
	return a, nil
}

// SetAccountStatus is the operator kill switch; it is independent of
// verification and takes effect on the next gate evaluation.
func (s *Service) SetAccountStatus(ctx context.Context, id string, status entity.AccountStatus) (*entity.Account, error) {
	a, err := s.Repo.GetByID(id)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}
	a.Status = status
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	s.afterCommit(ctx, func(ctx context.Context) { _ = s.indexAccount(ctx, a) })
	return a, nil
}
