package helpers

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("unit-secret")

	token, exp, err := m.Generate("acc-1", "student", ScopeAuth, time.Hour)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry must be in the future")
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.AccountID != "acc-1" || claims.Role != "student" || claims.Scope != ScopeAuth {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	m := NewJWTManager("secret-a")
	token, _, err := m.Generate("acc-1", "student", ScopeAuth, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	other := &JWTManager{Secret: []byte("secret-b")}
	if _, err := other.Parse(token); err == nil {
		t.Fatal("token signed with a different secret must not parse")
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	m := NewJWTManager("unit-secret")
	token, _, err := m.Generate("acc-1", "student", ScopeAuth, -time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestJWTRejectsGarbage(t *testing.T) {
	m := NewJWTManager("unit-secret")
	if _, err := m.Parse("not.a.token"); err == nil {
		t.Fatal("garbage must not parse")
	}
}
