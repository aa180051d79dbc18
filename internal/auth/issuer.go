package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// 管理画面用のアクセストークンを発行する（HS256）
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be > 0")
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}, nil
}

func (i *Issuer) Issue(subject string, role string, now time.Time) (string, time.Time, error) {
	if subject == "" || role == "" {
		return "", time.Time{}, errors.New("subject and role are required")
	}
	expiresAt := now.Add(i.ttl)

	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}
