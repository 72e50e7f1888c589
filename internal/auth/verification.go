package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	VerificationTokenBytes      = 32 // 64 hex chars
	DefaultVerificationTokenTTL = 24 * time.Hour
)

type VerificationToken struct {
	Value     string
	ExpiresAt time.Time
}

// VerificationIssuer mints email-verification tokens. Delivery and the
// confirmation flow live elsewhere.
type VerificationIssuer struct {
	ttl time.Duration
	now func() time.Time
}

func NewVerificationIssuer(ttl time.Duration) *VerificationIssuer {
	if ttl <= 0 {
		ttl = DefaultVerificationTokenTTL
	}
	return &VerificationIssuer{ttl: ttl, now: time.Now}
}

func (v *VerificationIssuer) Issue() (VerificationToken, error) {
	buf := make([]byte, VerificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return VerificationToken{}, fmt.Errorf("read random bytes: %w", err)
	}
	return VerificationToken{
		Value:     hex.EncodeToString(buf),
		ExpiresAt: v.now().Add(v.ttl),
	}, nil
}
