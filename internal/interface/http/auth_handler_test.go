package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	app "github.com/eduforge/platform/internal/application"
	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/internal/domain/repository"
	"github.com/eduforge/platform/pkg/helpers"
	"github.com/eduforge/platform/pkg/validation"
)

// memRepo is the minimal in-memory AccountRepository the handler tests
// need; only the lookup and verification-consume paths carry behavior.
type memRepo struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
}

func newMemRepo() *memRepo {
	return &memRepo{accounts: make(map[string]*entity.Account)}
}

func (r *memRepo) Create(a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entity.NormalizeEmail(a.Email)
	if _, ok := r.accounts[key]; ok {
		return repository.ErrDuplicateEmail
	}
	a.ID = fmt.Sprintf("acct-%d", len(r.accounts)+1)
	r.accounts[key] = a
	return nil
}

func (r *memRepo) GetByID(id string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRepo) GetByEmail(email string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[entity.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memRepo) Update(a *entity.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := entity.NormalizeEmail(a.Email)
	if _, ok := r.accounts[key]; !ok {
		return repository.ErrNotFound
	}
	cp := *a
	r.accounts[key] = &cp
	return nil
}

func (r *memRepo) ConsumeVerificationCode(email, code string, now time.Time) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[entity.NormalizeEmail(email)]
	if !ok || !a.VerificationCode.Matches(code, now) {
		return nil, repository.ErrNoMatch
	}
	a.VerificationCode = nil
	a.Verified = true
	cp := *a
	return &cp, nil
}

func (r *memRepo) ConsumeResetCode(email, code string, now time.Time, newHash string) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[entity.NormalizeEmail(email)]
	if !ok || !a.ResetCode.Matches(code, now) {
		return nil, repository.ErrNoMatch
	}
	a.ResetCode = nil
	a.Verified = true
	a.PasswordHash = &newHash
	cp := *a
	return &cp, nil
}

type noopNotifier struct{}

func (noopNotifier) SendCode(context.Context, app.CodeKind, *entity.Account, *entity.OneTimeCode) bool {
	return true
}
func (noopNotifier) SendInstructorApprovalRequest(context.Context, *entity.Account) {}
func (noopNotifier) SendApprovalDecision(context.Context, *entity.Account, bool)    {}

func newAuthRouter(repo *memRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()
	svc := app.NewService(
		repo,
		helpers.NewJWTManager("handler-test-secret"),
		app.NewAdminPolicy("root@eduforge.test"),
		noopNotifier{},
		nil, nil, nil, nil, "", nil, "",
		24*time.Hour, 168*time.Hour,
	)
	h := NewAuthHandler(svc, nil, "", false)
	r := gin.New()
	r.POST("/api/verify", h.Verify)
	return r
}

func postJSON(r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyReportsInstructorApprovalState(t *testing.T) {
	cases := []struct {
		name       string
		role       entity.Role
		approval   entity.ApprovalState
		wantMsg    string
		wantUsable bool
	}{
		{
			name:       "pending instructor",
			role:       entity.RoleInstructor,
			approval:   entity.ApprovalPending,
			wantMsg:    "email verified; your instructor account awaits approval",
			wantUsable: false,
		},
		{
			name:       "rejected instructor",
			role:       entity.RoleInstructor,
			approval:   entity.ApprovalRejected,
			wantMsg:    "email verified; your instructor application was rejected",
			wantUsable: false,
		},
		{
			name:       "student",
			role:       entity.RoleStudent,
			wantMsg:    "email verified",
			wantUsable: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemRepo()
			email := strings.ReplaceAll(tc.name, " ", ".") + "@example.com"
			if err := repo.Create(&entity.Account{
				Email:    email,
				Role:     tc.role,
				Status:   entity.StatusActive,
				Approval: tc.approval,
				VerificationCode: &entity.OneTimeCode{
					Value:     "654321",
					ExpiresAt: time.Now().Add(entity.CodeTTL),
				},
			}); err != nil {
				t.Fatalf("seed account: %v", err)
			}

			router := newAuthRouter(repo)
			w := postJSON(router, "/api/verify", map[string]string{"email": email, "code": "654321"})

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			var resp struct {
				Message string `json:"message"`
				Data    struct {
					Verified bool `json:"verified"`
					Usable   bool `json:"usable"`
				} `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Message != tc.wantMsg {
				t.Fatalf("message = %q, want %q", resp.Message, tc.wantMsg)
			}
			if !resp.Data.Verified || resp.Data.Usable != tc.wantUsable {
				t.Fatalf("data = %+v, want verified with usable=%v", resp.Data, tc.wantUsable)
			}
			if strings.Contains(w.Body.String(), "token") {
				t.Fatalf("verification response must not carry a token: %s", w.Body.String())
			}

			a, err := repo.GetByEmail(email)
			if err != nil {
				t.Fatalf("GetByEmail: %v", err)
			}
			if !a.Verified || a.VerificationCode != nil {
				t.Fatalf("account = %+v, want verified with the code consumed", a)
			}
		})
	}
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	repo := newMemRepo()
	if err := repo.Create(&entity.Account{
		Email:  "s@example.com",
		Role:   entity.RoleStudent,
		Status: entity.StatusActive,
		VerificationCode: &entity.OneTimeCode{
			Value:     "654321",
			ExpiresAt: time.Now().Add(entity.CodeTTL),
		},
	}); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	router := newAuthRouter(repo)
	w := postJSON(router, "/api/verify", map[string]string{"email": "s@example.com", "code": "111111"})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	a, _ := repo.GetByEmail("s@example.com")
	if a.Verified || a.VerificationCode == nil {
		t.Fatalf("account = %+v, want still unverified with the code intact", a)
	}
}
