package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/internal/domain/repository"
	"github.com/eduforge/platform/pkg/helpers"
)

// fakeRepo is an in-memory AccountRepository with the same atomicity
// semantics as the SQL implementation: the Consume operations mutate and
// clear the code pair in a single step under a lock.
type fakeRepo struct {
	mu       sync.Mutex
	byEmail  map[string]*entity.Account
	failWith error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byEmail: map[string]*entity.Account{}}
}

func (r *fakeRepo) Create(a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	key := entity.NormalizeEmail(a.Email)
	if _, ok := r.byEmail[key]; ok {
		return repository.ErrDuplicateEmail
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.byEmail[key] = a
	return nil
}

func (r *fakeRepo) GetByID(id string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRepo) GetByEmail(email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byEmail[entity.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (r *fakeRepo) Update(a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	key := entity.NormalizeEmail(a.Email)
	if _, ok := r.byEmail[key]; !ok {
		return repository.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	r.byEmail[key] = a
	return nil
}

func (r *fakeRepo) ConsumeVerificationCode(email, code string, now time.Time) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byEmail[entity.NormalizeEmail(email)]
	if !ok || !a.VerificationCode.Matches(code, now) {
		return nil, repository.ErrNoMatch
	}
	a.Verified = true
	a.VerificationCode = nil
	a.UpdatedAt = now
	return a, nil
}

func (r *fakeRepo) ConsumeResetCode(email, code string, now time.Time, newHash string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byEmail[entity.NormalizeEmail(email)]
	if !ok || !a.ResetCode.Matches(code, now) {
		return nil, repository.ErrNoMatch
	}
	a.PasswordHash = &newHash
	a.Verified = true
	a.ResetCode = nil
	a.UpdatedAt = now
	return a, nil
}

var _ repository.AccountRepository = (*fakeRepo)(nil)

type sentCode struct {
	Kind  CodeKind
	Email string
	Code  string
}

// fakeNotifier records every outbound notification.
type fakeNotifier struct {
	mu        sync.Mutex
	codes     []sentCode
	approvals []string // account IDs of instructor approval requests
	decisions map[string]bool
	delivered bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{decisions: map[string]bool{}, delivered: true}
}

func (n *fakeNotifier) SendCode(_ context.Context, kind CodeKind, a *entity.Account, code *entity.OneTimeCode) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.codes = append(n.codes, sentCode{Kind: kind, Email: a.Email, Code: code.Value})
	return n.delivered
}

func (n *fakeNotifier) SendInstructorApprovalRequest(_ context.Context, a *entity.Account) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approvals = append(n.approvals, a.ID)
}

func (n *fakeNotifier) SendApprovalDecision(_ context.Context, a *entity.Account, approved bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions[a.ID] = approved
}

func (n *fakeNotifier) lastCode() sentCode {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.codes) == 0 {
		return sentCode{}
	}
	return n.codes[len(n.codes)-1]
}

func (n *fakeNotifier) codeCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.codes)
}

// fakeProvider maps opaque assertions to profiles.
type fakeProvider struct {
	profiles map[string]*FederatedProfile
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{profiles: map[string]*FederatedProfile{}}
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://provider.example/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*FederatedProfile, error) {
	if prof, ok := p.profiles[code]; ok {
		return prof, nil
	}
	return nil, errors.New("unknown code")
}

func (p *fakeProvider) VerifyIDToken(_ context.Context, rawToken string) (*FederatedProfile, error) {
	if prof, ok := p.profiles[rawToken]; ok {
		return prof, nil
	}
	return nil, errors.New("signature mismatch")
}

const testAdminEmail = "root@eduforge.test"

type testEnv struct {
	svc      *Service
	repo     *fakeRepo
	notifier *fakeNotifier
	provider *fakeProvider
	now      time.Time
}

func newTestEnv() *testEnv {
	repo := newFakeRepo()
	notifier := newFakeNotifier()
	provider := newFakeProvider()
	svc := NewService(
		repo,
		helpers.NewJWTManager("test-secret"),
		NewAdminPolicy(testAdminEmail),
		notifier,
		provider,
		nil, // redis
		nil, // logger
		nil, // elasticsearch
		"",
		nil, // gcs
		"",
		24*time.Hour,
		168*time.Hour,
	)
	env := &testEnv{svc: svc, repo: repo, notifier: notifier, provider: provider,
		now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc.Now = func() time.Time { return env.now }
	return env
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func (e *testEnv) registerStudent(email string) *entity.Account {
	res, err := e.svc.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "hunter2hunter2",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      entity.RoleStudent,
	})
	if err != nil {
		panic(err)
	}
	a, _ := e.repo.GetByID(res.AccountID)
	return a
}

func (e *testEnv) registerVerifiedStudent(email string) *entity.Account {
	a := e.registerStudent(email)
	verified, err := e.svc.Verify(context.Background(), email, a.VerificationCode.Value)
	if err != nil {
		panic(err)
	}
	return verified
}

func (e *testEnv) seedAdmin() *entity.Account {
	hash, _ := helpers.HashPassword("adminpass123")
	a := &entity.Account{
		Email:        testAdminEmail,
		PasswordHash: &hash,
		FirstName:    "Root",
		Role:         entity.RoleAdmin,
		Status:       entity.StatusActive,
		Verified:     true,
	}
	if err := e.repo.Create(a); err != nil {
		panic(err)
	}
	return a
}
