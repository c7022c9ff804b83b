package jwt

import (
	"testing"
	"time"

	"clinic-management/config"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(secret string, access time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{Secret: secret, AccessExpiry: access, RefreshExpiry: time.Hour})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newService("s3cret", time.Minute)
	userID := uuid.New()

	token, tokenID, err := s.GenerateAccessToken(userID, "dr.rao@clinic.test", 2)
	require.NoError(t, err)

	claims, err := s.ValidateAs(token, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, 2, claims.RoleID)
	assert.Equal(t, tokenID, claims.TokenID)
	assert.Equal(t, "clinic-management", claims.Issuer)

	_, err = s.ValidateAs(token, RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestValidateRejects(t *testing.T) {
	s := newService("s3cret", time.Minute)
	userID := uuid.New()

	t.Run("other secret", func(t *testing.T) {
		token, _, err := newService("other", time.Minute).GenerateAccessToken(userID, "a@b.c", 1)
		require.NoError(t, err)
		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, _, err := newService("s3cret", -time.Minute).GenerateAccessToken(userID, "a@b.c", 1)
		require.NoError(t, err)
		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		claims := Claims{
			UserID:    userID,
			TokenType: AccessToken,
			RegisteredClaims: gojwt.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
		require.NoError(t, err)
		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := Claims{UserID: userID, RegisteredClaims: gojwt.RegisteredClaims{Issuer: "clinic-management"}}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, claims).SignedString(gojwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestAllowListKeyAndTTL(t *testing.T) {
	s := newService("s3cret", 15*time.Minute)
	userID := uuid.MustParse("7f9c2b1e-2f43-4a8e-9a51-3f5d7d2c0b11")

	assert.Equal(t, "access_token:7f9c2b1e-2f43-4a8e-9a51-3f5d7d2c0b11:abc", AllowListKey(AccessToken, userID, "abc"))
	assert.Equal(t, "refresh_token:7f9c2b1e-2f43-4a8e-9a51-3f5d7d2c0b11:*", AllowListKey(RefreshToken, userID, "*"))
	assert.Equal(t, 15*time.Minute, s.TTL(AccessToken))
	assert.Equal(t, time.Hour, s.TTL(RefreshToken))
}
