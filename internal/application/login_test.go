package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/pkg/helpers"
)

func TestLoginIssuesToken(t *testing.T) {
	env := newTestEnv()
	a := env.registerVerifiedStudent("s@example.com")

	res, err := env.svc.Login(context.Background(), "s@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" || res.ChallengeSent {
		t.Fatalf("want a direct token, got %+v", res)
	}

	claims, err := env.svc.JWT.Parse(res.Token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.AccountID != a.ID || claims.Role != string(entity.RoleStudent) || claims.Scope != helpers.ScopeAuth {
		t.Fatalf("claims = %+v", claims)
	}
	if d := res.TokenExpiry.Sub(time.Now().Add(24 * time.Hour)); d < -time.Minute || d > time.Minute {
		t.Fatalf("password-login expiry = %v, want ~24h out", res.TokenExpiry)
	}
}

func TestSessionTimestampUsesInjectedClock(t *testing.T) {
	env := newTestEnv()

	got := env.svc.nowRFC3339()
	want := env.now.UTC().Format(time.RFC3339Nano)
	if got != want {
		t.Fatalf("session timestamp = %q, want %q", got, want)
	}

	env.advance(3 * time.Hour)
	if got := env.svc.nowRFC3339(); got != env.now.UTC().Format(time.RFC3339Nano) {
		t.Fatalf("after advance: session timestamp = %q", got)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv()
	env.registerVerifiedStudent("s@example.com")

	if _, err := env.svc.Login(context.Background(), "s@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := env.svc.Login(context.Background(), "nobody@example.com", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", err)
	}
}

func TestLoginGateOrder(t *testing.T) {
	env := newTestEnv()

	// Unverified beats everything else.
	env.registerStudent("new@example.com")
	if _, err := env.svc.Login(context.Background(), "new@example.com", "hunter2hunter2"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("unverified: got %v", err)
	}

	// Suspension after verification.
	a := env.registerVerifiedStudent("sus@example.com")
	a.Status = entity.StatusSuspended
	if err := env.repo.Update(a); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Login(context.Background(), "sus@example.com", "hunter2hunter2"); !errors.Is(err, ErrSuspended) {
		t.Fatalf("suspended: got %v", err)
	}

	// Wrong credentials win over state gates.
	if _, err := env.svc.Login(context.Background(), "sus@example.com", "nope-nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bad creds on suspended: got %v", err)
	}
}

func TestLoginInstructorApprovalGate(t *testing.T) {
	env := newTestEnv()
	res, err := env.svc.Register(context.Background(), RegisterInput{
		Email: "teach@example.com", Password: "hunter2hunter2",
		FirstName: "Grace", LastName: "Hopper", Role: entity.RoleInstructor,
		CVURL: "https://storage.example/cv/1.pdf", ProfessionCenter: "Navy Research",
	})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := env.repo.GetByID(res.AccountID)
	if _, err := env.svc.Verify(context.Background(), a.Email, a.VerificationCode.Value); err != nil {
		t.Fatal(err)
	}

	// Verified but still pending review.
	if _, err := env.svc.Login(context.Background(), "teach@example.com", "hunter2hunter2"); !errors.Is(err, ErrApprovalPending) {
		t.Fatalf("pending: got %v", err)
	}

	if _, err := env.svc.RejectInstructor(context.Background(), a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Login(context.Background(), "teach@example.com", "hunter2hunter2"); !errors.Is(err, ErrApprovalRejected) {
		t.Fatalf("rejected: got %v", err)
	}

	if _, err := env.svc.ApproveInstructor(context.Background(), a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Login(context.Background(), "teach@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("approved instructor should log in: %v", err)
	}
}

func TestAdminBypassesGates(t *testing.T) {
	env := newTestEnv()
	a := env.seedAdmin()
	a.Verified = false
	a.Status = entity.StatusSuspended
	if err := env.repo.Update(a); err != nil {
		t.Fatal(err)
	}

	res, err := env.svc.Login(context.Background(), testAdminEmail, "adminpass123")
	if err != nil {
		t.Fatalf("admin login must bypass gates: %v", err)
	}
	if res.Token == "" {
		t.Fatal("admin login must issue a token")
	}

	// Wrong password still fails; the bypass covers gates, not credentials.
	if _, err := env.svc.Login(context.Background(), testAdminEmail, "not-the-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginWithMFAWithholdsToken(t *testing.T) {
	env := newTestEnv()
	env.registerVerifiedStudent("mfa@example.com")

	res, err := env.svc.LoginWithMFA(context.Background(), "mfa@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("LoginWithMFA: %v", err)
	}
	if !res.ChallengeSent || res.Token != "" {
		t.Fatalf("want a challenge without a token, got %+v", res)
	}
	if !res.Delivered {
		t.Fatal("challenge email should report delivered")
	}

	sent := env.notifier.lastCode()
	if sent.Kind != CodeLoginMFA {
		t.Fatalf("code kind = %q, want login_mfa", sent.Kind)
	}

	confirm, err := env.svc.VerifyMFA(context.Background(), "mfa@example.com", sent.Code)
	if err != nil {
		t.Fatalf("VerifyMFA: %v", err)
	}
	if confirm.Token == "" {
		t.Fatal("confirm must issue a token")
	}

	// The challenge code is single use.
	if _, err := env.svc.VerifyMFA(context.Background(), "mfa@example.com", sent.Code); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("replayed code: got %v", err)
	}
}

func TestLoginWithMFAAdminSkipsChallenge(t *testing.T) {
	env := newTestEnv()
	env.seedAdmin()

	res, err := env.svc.LoginWithMFA(context.Background(), testAdminEmail, "adminpass123")
	if err != nil {
		t.Fatalf("LoginWithMFA: %v", err)
	}
	if res.ChallengeSent || res.Token == "" {
		t.Fatalf("admin must get a direct token, got %+v", res)
	}
	if env.notifier.codeCount() != 0 {
		t.Fatal("no challenge email for the admin")
	}
}

func TestVerifyMFAReEvaluatesGates(t *testing.T) {
	env := newTestEnv()
	env.registerVerifiedStudent("mfa2@example.com")

	if _, err := env.svc.LoginWithMFA(context.Background(), "mfa2@example.com", "hunter2hunter2"); err != nil {
		t.Fatal(err)
	}
	code := env.notifier.lastCode().Code

	// Suspension between the challenge and the confirm closes the door.
	a, _ := env.repo.GetByEmail("mfa2@example.com")
	a.Status = entity.StatusSuspended
	if err := env.repo.Update(a); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.VerifyMFA(context.Background(), "mfa2@example.com", code); !errors.Is(err, ErrSuspended) {
		t.Fatalf("got %v, want ErrSuspended", err)
	}
}

func TestVerifyMFAExpiredChallenge(t *testing.T) {
	env := newTestEnv()
	env.registerVerifiedStudent("slow@example.com")

	if _, err := env.svc.LoginWithMFA(context.Background(), "slow@example.com", "hunter2hunter2"); err != nil {
		t.Fatal(err)
	}
	code := env.notifier.lastCode().Code

	env.advance(entity.CodeTTL)
	if _, err := env.svc.VerifyMFA(context.Background(), "slow@example.com", code); !errors.Is(err, ErrInvalidOrExpiredCode) {
		t.Fatalf("got %v, want ErrInvalidOrExpiredCode", err)
	}
}
