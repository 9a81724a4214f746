package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL - issued tokens are valid for 30 days.
const DefaultTokenTTL = 30 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Service issues and verifies the bearer tokens carried by every
// authenticated request. Tokens are self-contained (HS256 signed JWT with the
// user identity and expiry in the claims), no session state is kept server-side.
type Service struct {
	secret []byte
	ttl    time.Duration

	// injectable clock for expiry tests
	nowFunc func() time.Time
}

func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret:  []byte(secret),
		ttl:     ttl,
		nowFunc: time.Now,
	}
}

func (s *Service) IssueToken(userID int, email string) (string, error) {
	now := s.nowFunc()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"iat":     now.Unix(),
		"exp":     now.Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken returns the user ID baked into the token. A malformed, expired,
// or wrongly signed token yields ErrInvalidToken, with no further detail for
// the caller.
func (s *Service) VerifyToken(tokenString string) (int, error) {
	token, err := jwt.Parse(
		tokenString,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.nowFunc),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	// numbers come back from the JSON claims as float64
	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return 0, ErrInvalidToken
	}

	return int(userID), nil
}
