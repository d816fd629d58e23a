package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// TokenIssuer signs HS256 bearer tokens whose subject is the chat user id.
// A chat gateway holding the secret mints one per user it forwards.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for userID and its expiry.
func (t *TokenIssuer) Issue(userID int64) (string, time.Time, error) {
	if userID <= 0 {
		return "", time.Time{}, fmt.Errorf("%w: user id must be positive", domain.ErrInvalidInput)
	}
	if len(t.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("%w: signing secret is empty", domain.ErrInvalidInput)
	}
	now := t.now()
	exp := now.Add(t.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}
