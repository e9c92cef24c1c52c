package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/internal/domain/repository"
)

const accountColumns = `
	id, email, password_hash, first_name, last_name, role, status,
	verified, federated,
	verification_code, verification_code_expires_at,
	reset_code, reset_code_expires_at,
	approval, cv_url, profession_center, approval_requested_at,
	created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(a *entity.Account) error {
	ctx := context.Background()
	code, codeExp := codeCols(a.VerificationCode)
	reset, resetExp := codeCols(a.ResetCode)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (
			email, password_hash, first_name, last_name, role, status,
			verified, federated,
			verification_code, verification_code_expires_at,
			reset_code, reset_code_expires_at,
			approval, cv_url, profession_center, approval_requested_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id, created_at, updated_at
	`, a.Email, a.PasswordHash, a.FirstName, a.LastName, a.Role, a.Status,
		a.Verified, a.Federated,
		code, codeExp, reset, resetExp,
		nullableApproval(a.Approval), a.CVURL, a.ProfessionCenter, a.ApprovalRequestedAt)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByID(id string) (*entity.Account, error) {
	return r.getBy(`WHERE id = $1`, id)
}

func (r *AccountRepository) GetByEmail(email string) (*entity.Account, error) {
	return r.getBy(`WHERE email = $1`, entity.NormalizeEmail(email))
}

func (r *AccountRepository) getBy(where string, arg any) (*entity.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts `+where, arg)
	return scanAccount(row)
}

func (r *AccountRepository) Update(a *entity.Account) error {
	ctx := context.Background()
	a.UpdatedAt = time.Now()
	code, codeExp := codeCols(a.VerificationCode)
	reset, resetExp := codeCols(a.ResetCode)

	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET email = $1, password_hash = $2, first_name = $3, last_name = $4,
			role = $5, status = $6, verified = $7, federated = $8,
			verification_code = $9, verification_code_expires_at = $10,
			reset_code = $11, reset_code_expires_at = $12,
			approval = $13, cv_url = $14, profession_center = $15,
			approval_requested_at = $16, updated_at = $17
		WHERE id = $18
	`, a.Email, a.PasswordHash, a.FirstName, a.LastName,
		a.Role, a.Status, a.Verified, a.Federated,
		code, codeExp, reset, resetExp,
		nullableApproval(a.Approval), a.CVURL, a.ProfessionCenter,
		a.ApprovalRequestedAt, a.UpdatedAt, a.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ConsumeVerificationCode is a single UPDATE so that two concurrent attempts
// against the same code cannot both succeed.
func (r *AccountRepository) ConsumeVerificationCode(email, code string, now time.Time) (*entity.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET verified = TRUE,
			verification_code = NULL,
			verification_code_expires_at = NULL,
			updated_at = now()
		WHERE email = $1
			AND verification_code = $2
			AND verification_code_expires_at > $3
		RETURNING `+accountColumns,
		entity.NormalizeEmail(email), code, now)

	a, err := scanAccount(row)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrNoMatch
	}
	return a, err
}

func (r *AccountRepository) ConsumeResetCode(email, code string, now time.Time, newHash string) (*entity.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET password_hash = $4,
			verified = TRUE,
			reset_code = NULL,
			reset_code_expires_at = NULL,
			updated_at = now()
		WHERE email = $1
			AND reset_code = $2
			AND reset_code_expires_at > $3
		RETURNING `+accountColumns,
		entity.NormalizeEmail(email), code, now, newHash)

	a, err := scanAccount(row)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, repository.ErrNoMatch
	}
	return a, err
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	var (
		code, reset       *string
		codeExp, resetExp *time.Time
		approval          *string
	)
	if err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.Role, &a.Status,
		&a.Verified, &a.Federated,
		&code, &codeExp, &reset, &resetExp,
		&approval, &a.CVURL, &a.ProfessionCenter, &a.ApprovalRequestedAt,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if code != nil && codeExp != nil {
		a.VerificationCode = &entity.OneTimeCode{Value: *code, ExpiresAt: *codeExp}
	}
	if reset != nil && resetExp != nil {
		a.ResetCode = &entity.OneTimeCode{Value: *reset, ExpiresAt: *resetExp}
	}
	if approval != nil {
		a.Approval = entity.ApprovalState(*approval)
	}
	return a, nil
}

func codeCols(c *entity.OneTimeCode) (*string, *time.Time) {
	if c == nil {
		return nil, nil
	}
	return &c.Value, &c.ExpiresAt
}

func nullableApproval(s entity.ApprovalState) *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
