package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type loginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Code     string `json:"code" binding:"omitempty,otp"`
}

func TestInitAliasesAndTagNames(t *testing.T) {
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		t.Fatal("gin binding validator engine unavailable")
	}

	err := v.Struct(loginPayload{Email: "not-an-email", Password: "short", Code: "12ab56"})
	if err == nil {
		t.Fatal("expected validation errors")
	}

	details := ToDetails(err)
	if details["email"] != "must be a valid email" {
		t.Fatalf("email detail = %q", details["email"])
	}
	if details["password"] != "must be at least 8 characters long" {
		t.Fatalf("password detail = %q", details["password"])
	}
	if details["code"] != "must be a 6-digit code" {
		t.Fatalf("code detail = %q", details["code"])
	}

	if err := v.Struct(loginPayload{Email: "a@b.co", Password: "long-enough", Code: "123456"}); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
}

func TestToDetailsFallback(t *testing.T) {
	if ToDetails(nil) != nil {
		t.Fatal("nil error must produce nil details")
	}
	details := ToDetails(assertError("boom"))
	if details["payload"] != "invalid payload" {
		t.Fatalf("fallback detail = %q", details["payload"])
	}
}

type assertError string

func (e assertError) Error() string { return string(e) }
