package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// SessionDuration is how long a signed session token stays valid.
const SessionDuration = 24 * time.Hour

// SessionClaims are the verified claims carried by a session token.
type SessionClaims struct {
	UserID  string
	IsAdmin bool
}

var ErrInvalidToken = errors.New("invalid session token")

// GenerateSessionToken signs a session claim for the given user.
func GenerateSessionToken(userID string, isAdmin bool) (string, error) {
	jwtSecret := viper.GetString("JWT_SECRET")

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  userID,
		"is_admin": isAdmin,
		"iat":      now.Unix(),
		"exp":      now.Add(SessionDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ParseSessionToken verifies the signature and expiry of a session token
// and returns its claims. Tampered or expired tokens are rejected.
func ParseSessionToken(tokenString string) (*SessionClaims, error) {
	jwtSecret := viper.GetString("JWT_SECRET")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, ErrInvalidToken
	}
	isAdmin, _ := claims["is_admin"].(bool)

	return &SessionClaims{UserID: userID, IsAdmin: isAdmin}, nil
}
