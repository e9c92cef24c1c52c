package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. ScopeAuth is a full session token; ScopeProfile only
// authorizes the federated profile-completion step.
const (
	ScopeAuth    = "auth"
	ScopeProfile = "profile"
)

// JWTManager signs and validates bearer tokens. Tokens carry the account id
// and role; lifetime is the caller's choice per flow and there is no
// server-side revocation.
type JWTManager struct {
	Secret []byte
}

var defaultManager *JWTManager

func NewJWTManager(secret string) *JWTManager {
	m := &JWTManager{Secret: []byte(secret)}
	defaultManager = m
	return m
}

// DefaultJWT returns the last constructed JWTManager (used for auto-wiring routes)
func DefaultJWT() *JWTManager { return defaultManager }

type Claims struct {
	AccountID string `json:"uid"`
	Role      string `json:"role"`
	Scope     string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

func (m *JWTManager) Generate(accountID, role, scope string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &Claims{
		AccountID: accountID,
		Role:      role,
		Scope:     scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

func (m *JWTManager) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
