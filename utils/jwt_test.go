package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	viper.Set("JWT_SECRET", "test-secret")
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken("user-123", true)
	require.NoError(t, err)

	claims, err := ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.True(t, claims.IsAdmin)
}

func TestParseSessionTokenRejectsTampering(t *testing.T) {
	token, err := GenerateSessionToken("user-123", false)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ParseSessionToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseSessionToken("not a token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"is_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := forged.SignedString([]byte("attacker-secret"))
	require.NoError(t, err)

	_, err = ParseSessionToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionTokenRejectsExpired(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  "user-123",
		"is_admin": false,
		"iat":      time.Now().Add(-2 * SessionDuration).Unix(),
		"exp":      time.Now().Add(-SessionDuration).Unix(),
	})
	signed, err := expired.SignedString([]byte(viper.GetString("JWT_SECRET")))
	require.NoError(t, err)

	_, err = ParseSessionToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionTokenRejectsUnsignedAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseSessionToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, CheckPasswordHash("correct horse battery staple", hash))
	assert.False(t, CheckPasswordHash("wrong password", hash))
}
