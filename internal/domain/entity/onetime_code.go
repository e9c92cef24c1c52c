package entity

import (
	"crypto/rand"
	"math/big"
	"time"
)

// CodeTTL is how long an issued one-time code stays valid.
const CodeTTL = 10 * time.Minute

// OneTimeCode is a short-lived 6-digit secret proving mailbox ownership,
// used for email verification, login MFA, and password reset. Expiry is
// checked at match time, never at issue time.
type OneTimeCode struct {
	Value     string
	ExpiresAt time.Time
}

var codeRange = big.NewInt(900000)

// IssueCode draws a crypto-random code in [100000, 999999] so the value is
// always exactly six digits, expiring CodeTTL from now.
func IssueCode(now time.Time) (*OneTimeCode, error) {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		return nil, err
	}
	v := n.Int64() + 100000
	return &OneTimeCode{
		Value:     big.NewInt(v).String(),
		ExpiresAt: now.Add(CodeTTL),
	}, nil
}

// Matches reports whether candidate equals the stored value strictly before
// expiry. A nil receiver never matches.
func (c *OneTimeCode) Matches(candidate string, now time.Time) bool {
	if c == nil || c.Value == "" || candidate == "" {
		return false
	}
	return c.Value == candidate && now.Before(c.ExpiresAt)
}
