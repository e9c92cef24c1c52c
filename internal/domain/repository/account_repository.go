package repository

import (
	"errors"
	"time"

	"github.com/eduforge/platform/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no account exists for the given key.
	ErrNotFound = errors.New("account not found")
	// ErrNoMatch is returned by the Consume operations when the code is
	// wrong, expired, or already consumed.
	ErrNoMatch = errors.New("code did not match")
	// ErrDuplicateEmail is returned by Create when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// AccountRepository defines the persistence contract for identity records.
//
// The Consume* operations are single atomic read-modify-writes keyed by
// email: when two callers race on the same code, exactly one observes a
// match and the other gets ErrNoMatch because the code was already cleared.
type AccountRepository interface {
	Create(a *entity.Account) error
	GetByID(id string) (*entity.Account, error)
	GetByEmail(email string) (*entity.Account, error)
	Update(a *entity.Account) error

	// ConsumeVerificationCode clears the verification-code pair and marks
	// the account verified when code matches strictly before its expiry.
	// Returns the updated account, or ErrNoMatch.
	ConsumeVerificationCode(email, code string, now time.Time) (*entity.Account, error)

	// ConsumeResetCode replaces the credential hash, clears the reset-code
	// pair, and marks the account verified when code matches strictly
	// before its expiry. Returns the updated account, or ErrNoMatch.
	ConsumeResetCode(email, code string, now time.Time, newHash string) (*entity.Account, error)
}
