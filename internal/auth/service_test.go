package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestService_IssueAndVerifyToken(t *testing.T) {
	service := NewService("test-secret", DefaultTokenTTL)
	require.NotNil(t, service)

	token, err := service.IssueToken(42, "drago@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestService_VerifyToken_Expired(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	issuedAt := time.Now()
	service.nowFunc = func() time.Time { return issuedAt }

	token, err := service.IssueToken(42, "drago@example.com")
	require.NoError(t, err)

	// still valid just before expiry
	service.nowFunc = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	userID, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)

	service.nowFunc = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = service.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_VerifyToken_WrongSecret(t *testing.T) {
	service := NewService("test-secret", time.Hour)
	other := NewService("other-secret", time.Hour)

	token, err := other.IssueToken(42, "drago@example.com")
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_VerifyToken_Garbage(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := service.VerifyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestService_VerifyToken_WrongSigningMethod(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	// unsigned token must never verify, regardless of claims
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_VerifyToken_MissingUserID(t *testing.T) {
	service := NewService("test-secret", time.Hour)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "drago@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = service.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
