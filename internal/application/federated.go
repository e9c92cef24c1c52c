package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/internal/domain/repository"
	"github.com/eduforge/platform/pkg/helpers"
)

// FederatedProfile is the normalized identity asserted by the provider.
// It contains facts only, no decisions.
type FederatedProfile struct {
	Email     string
	FirstName string
	LastName  string
}

// FederatedProvider abstracts the OAuth provider: the redirect round-trip
// (authorization URL, code exchange plus profile fetch) and the direct
// id-token verification primitive.
type FederatedProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*FederatedProfile, error)
	VerifyIDToken(ctx context.Context, rawToken string) (*FederatedProfile, error)
}

const (
	oauthStateTTL      = 10 * time.Minute
	completionTokenTTL = 15 * time.Minute
)

func oauthStateKey(state string) string { return "oauth:state:" + state }

// FederatedAuthURL builds the provider authorization URL with a fresh
// anti-CSRF state nonce, remembered in Redis for the callback.
func (s *Service) FederatedAuthURL(ctx context.Context) (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	if s.Redis != nil {
		if err := s.Redis.Set(ctx, oauthStateKey(state), "1", oauthStateTTL).Err(); err != nil {
			return "", err
		}
	}
	return s.Provider.AuthCodeURL(state), nil
}

// FederatedCallback finishes the redirect flow: state check, code exchange,
// then find-or-create.
func (s *Service) FederatedCallback(ctx context.Context, state, code string) (*AuthResult, error) {
	if s.Redis != nil {
		n, err := s.Redis.Del(ctx, oauthStateKey(state)).Result()
		if err != nil || n == 0 {
			return nil, ErrInvalidAssertion
		}
	}
	p, err := s.Provider.Exchange(ctx, code)
	if err != nil {
		return nil, ErrInvalidAssertion
	}
	return s.finishFederated(ctx, p)
}

// FederatedTokenLogin accepts a provider identity token directly, verifies
// it against the provider's public keys, and performs the same
// find-or-create logic as the redirect flow.
func (s *Service) FederatedTokenLogin(ctx context.Context, rawToken string) (*AuthResult, error) {
	p, err := s.Provider.VerifyIDToken(ctx, rawToken)
	if err != nil {
		return nil, ErrInvalidAssertion
	}
	return s.finishFederated(ctx, p)
}

// finishFederated maps a provider assertion onto a local account. The
// provider assertion stands in for proof of mailbox ownership, so the
// verification-code and MFA gates are skipped entirely; suspension still
// applies. A local account that signs in this way is retroactively marked
// federated.
func (s *Service) finishFederated(ctx context.Context, p *FederatedProfile) (*AuthResult, error) {
	email := entity.NormalizeEmail(p.Email)
	if email == "" {
		return nil, ErrInvalidAssertion
	}

	a, err := s.Repo.GetByEmail(email)
	switch {
	case err == nil && a != nil:
		if a.Status != entity.StatusActive {
			return nil, ErrSuspended
		}
		if !a.Federated {
			a.Federated = true
			if err := s.Repo.Update(a); err != nil {
				return nil, err
			}
			s.afterCommit(ctx, func(ctx context.Context) { _ = s.indexAccount(ctx, a) })
		}
	case errors.Is(err, repository.ErrNotFound):
		a = &entity.Account{
			Email:     email,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Role:      entity.RoleStudent,
			Status:    entity.StatusActive,
			Verified:  true,
			Federated: true,
		}
		if err := s.Repo.Create(a); err != nil {
			return nil, err
		}
		s.afterCommit(ctx, func(ctx context.Context) { _ = s.indexAccount(ctx, a) })
	default:
		return nil, err
	}

	if !a.HasName() {
		completion, _, err := s.JWT.Generate(a.ID, string(a.Role), helpers.ScopeProfile, completionTokenTTL)
		if err != nil {
			return nil, err
		}
		return &AuthResult{Account: a, NeedsProfile: true, CompletionToken: completion}, nil
	}

	token, exp, err := s.issueToken(ctx, a, s.FederatedTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: a, Token: token, TokenExpiry: exp}, nil
}

// CompleteProfile fills in the missing name fields using a completion token
// from a federated sign-in, then issues the withheld session token.
func (s *Service) CompleteProfile(ctx context.Context, completionToken, firstName, lastName string) (*AuthResult, error) {
	claims, err := s.JWT.Parse(completionToken)
	if err != nil || claims.Scope != helpers.ScopeProfile {
		return nil, ErrInvalidAssertion
	}
	if firstName == "" || lastName == "" {
		return nil, ErrMissingName
	}
	a, err := s.Repo.GetByID(claims.AccountID)
	if err != nil || a == nil {
		return nil, ErrAccountNotFound
	}
	if a.Status != entity.StatusActive {
		return nil, ErrSuspended
	}
	a.FirstName = firstName
	a.LastName = lastName
	if err := s.Repo.Update(a); err != nil {
		return nil, err
	}
	s.afterCommit(ctx, func(ctx context.Context) { _ = s.indexAccount(ctx, a) })

	token, exp, err := s.issueToken(ctx, a, s.FederatedTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: a, Token: token, TokenExpiry: exp}, nil
}
